package grpc

import (
	"context"
	"log/slog"

	"github.com/bibbank/credit-service/internal/application/dto"
	"github.com/bibbank/credit-service/internal/application/usecase"
	"github.com/bibbank/credit-service/internal/domain/model"
	"github.com/bibbank/credit-service/internal/domain/service"
	"github.com/bibbank/credit-service/pkg/auth"
)

// CreditReviewHandler implements CreditReviewServiceServer on top of the
// use cases. The actor comes from the verified bearer token, never from the
// request body.
type CreditReviewHandler struct {
	uc     usecase.Suite
	logger *slog.Logger
}

var _ CreditReviewServiceServer = (*CreditReviewHandler)(nil)

// NewCreditReviewHandler creates a new handler with all use-case dependencies.
func NewCreditReviewHandler(uc usecase.Suite, logger *slog.Logger) *CreditReviewHandler {
	return &CreditReviewHandler{uc: uc, logger: logger}
}

// actorFromContext returns the authenticated actor, or the zero Actor for
// public methods. Use cases reject the zero Actor where identity matters.
func actorFromContext(ctx context.Context) dto.Actor {
	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok || claims == nil {
		return dto.Actor{}
	}
	return dto.Actor{ID: claims.ActorID, Roles: claims.Roles}
}

// respond converts a use-case result into a gRPC reply.
func respond[T any](h *CreditReviewHandler, ctx context.Context, method string, v T, err error) (*T, error) {
	if err != nil {
		return nil, h.toStatus(ctx, method, err)
	}
	return &v, nil
}

func (h *CreditReviewHandler) CreateApplication(ctx context.Context, req *dto.CreateApplicationRequest) (*dto.ApplicationResponse, error) {
	req.Actor = actorFromContext(ctx)
	resp, err := h.uc.Create.Execute(ctx, *req)
	return respond(h, ctx, "CreateApplication", resp, err)
}

func (h *CreditReviewHandler) SubmitDraft(ctx context.Context, req *dto.ApplicationRef) (*dto.ApplicationResponse, error) {
	req.Actor = actorFromContext(ctx)
	resp, err := h.uc.SubmitDraft.Execute(ctx, *req)
	return respond(h, ctx, "SubmitDraft", resp, err)
}

func (h *CreditReviewHandler) Resubmit(ctx context.Context, req *dto.ResubmitRequest) (*dto.ApplicationResponse, error) {
	req.Actor = actorFromContext(ctx)
	resp, err := h.uc.Resubmit.Execute(ctx, *req)
	return respond(h, ctx, "Resubmit", resp, err)
}

func (h *CreditReviewHandler) ListInbox(ctx context.Context, req *dto.ListInboxRequest) (*dto.InboxResponse, error) {
	req.Actor = actorFromContext(ctx)
	resp, err := h.uc.ListInbox.Execute(ctx, *req)
	return respond(h, ctx, "ListInbox", resp, err)
}

func (h *CreditReviewHandler) GetApplication(ctx context.Context, req *dto.ApplicationRef) (*dto.ApplicationResponse, error) {
	req.Actor = actorFromContext(ctx)
	resp, err := h.uc.Get.Execute(ctx, *req)
	return respond(h, ctx, "GetApplication", resp, err)
}

func (h *CreditReviewHandler) TrackApplication(ctx context.Context, req *TrackApplicationRequest) (*dto.TrackingResponse, error) {
	resp, err := h.uc.Track.Execute(ctx, req.Radication)
	return respond(h, ctx, "TrackApplication", resp, err)
}

func (h *CreditReviewHandler) StartReview(ctx context.Context, req *dto.ApplicationRef) (*dto.StartReviewResponse, error) {
	req.Actor = actorFromContext(ctx)
	resp, err := h.uc.StartReview.Execute(ctx, *req)
	return respond(h, ctx, "StartReview", resp, err)
}

func (h *CreditReviewHandler) ProcessApplication(ctx context.Context, req *dto.ProcessApplicationRequest) (*dto.ApplicationResponse, error) {
	req.Actor = actorFromContext(ctx)
	resp, err := h.uc.Process.Execute(ctx, *req)
	return respond(h, ctx, "ProcessApplication", resp, err)
}

func (h *CreditReviewHandler) UpdateApplicationData(ctx context.Context, req *dto.UpdateApplicationDataRequest) (*dto.ApplicationResponse, error) {
	req.Actor = actorFromContext(ctx)
	resp, err := h.uc.UpdateData.Execute(ctx, *req)
	return respond(h, ctx, "UpdateApplicationData", resp, err)
}

func (h *CreditReviewHandler) RunValidations(ctx context.Context, req *dto.ApplicationRef) (*model.ValidationResult, error) {
	req.Actor = actorFromContext(ctx)
	resp, err := h.uc.RunValidations.Execute(ctx, *req)
	return respond(h, ctx, "RunValidations", resp, err)
}

func (h *CreditReviewHandler) AddComment(ctx context.Context, req *dto.AddCommentRequest) (*dto.ApplicationResponse, error) {
	req.Actor = actorFromContext(ctx)
	resp, err := h.uc.AddComment.Execute(ctx, *req)
	return respond(h, ctx, "AddComment", resp, err)
}

func (h *CreditReviewHandler) GenerateSignatureLink(ctx context.Context, req *dto.ApplicationRef) (*dto.ApplicationResponse, error) {
	req.Actor = actorFromContext(ctx)
	resp, err := h.uc.SignatureLink.Execute(ctx, *req)
	return respond(h, ctx, "GenerateSignatureLink", resp, err)
}

func (h *CreditReviewHandler) ConfirmDisburse(ctx context.Context, req *dto.ConfirmDisburseRequest) (*dto.ApplicationResponse, error) {
	req.Actor = actorFromContext(ctx)
	resp, err := h.uc.ConfirmDisburse.Execute(ctx, *req)
	return respond(h, ctx, "ConfirmDisburse", resp, err)
}

func (h *CreditReviewHandler) AdvanceLoan(ctx context.Context, req *dto.AdvanceLoanRequest) (*dto.ApplicationResponse, error) {
	req.Actor = actorFromContext(ctx)
	resp, err := h.uc.AdvanceLoan.Execute(ctx, *req)
	return respond(h, ctx, "AdvanceLoan", resp, err)
}

func (h *CreditReviewHandler) EvaluatePreApproval(ctx context.Context, req *dto.PreApprovalRequest) (*dto.PreApprovalResponse, error) {
	resp, err := h.uc.PreApproval.Execute(ctx, *req)
	return respond(h, ctx, "EvaluatePreApproval", resp, err)
}

func (h *CreditReviewHandler) GetRules(ctx context.Context, _ *Empty) (*service.RulesConfig, error) {
	resp, err := h.uc.Rules.Get(ctx, actorFromContext(ctx))
	return respond(h, ctx, "GetRules", resp, err)
}

func (h *CreditReviewHandler) UpdateRules(ctx context.Context, req *dto.UpdateRulesRequest) (*service.RulesConfig, error) {
	req.Actor = actorFromContext(ctx)
	resp, err := h.uc.Rules.Update(ctx, *req)
	return respond(h, ctx, "UpdateRules", resp, err)
}

func (h *CreditReviewHandler) EvaluateAutoApproval(ctx context.Context, req *dto.EvaluateAutoApprovalRequest) (*service.AutoApprovalReport, error) {
	req.Actor = actorFromContext(ctx)
	resp, err := h.uc.Rules.EvaluateAutoApproval(ctx, *req)
	return respond(h, ctx, "EvaluateAutoApproval", resp, err)
}

func (h *CreditReviewHandler) GetRequiredApprovalLevel(ctx context.Context, req *ApprovalLevelRequest) (*dto.ApprovalLevelResponse, error) {
	resp, err := h.uc.Rules.RequiredApprovalLevel(req.Amount)
	return respond(h, ctx, "GetRequiredApprovalLevel", resp, err)
}

func (h *CreditReviewHandler) CalculateAmortization(ctx context.Context, req *dto.AmortizationRequest) (*model.AmortizationPlan, error) {
	resp, err := h.uc.Amortization.Execute(ctx, *req)
	return respond(h, ctx, "CalculateAmortization", resp, err)
}

func (h *CreditReviewHandler) MigrateLegacyStatuses(ctx context.Context, req *dto.MigrateLegacyStatusesRequest) (*dto.MigrationResponse, error) {
	req.Actor = actorFromContext(ctx)
	resp, err := h.uc.Migrate.Execute(ctx, *req)
	return respond(h, ctx, "MigrateLegacyStatuses", resp, err)
}
