package grpc

// service.go describes credit.v1.CreditReviewService by hand. Messages travel
// through the JSON codec, so requests and responses are the application DTOs.

import (
	"context"

	grpclib "google.golang.org/grpc"

	"github.com/bibbank/credit-service/internal/application/dto"
	"github.com/bibbank/credit-service/internal/domain/model"
	"github.com/bibbank/credit-service/internal/domain/service"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "credit.v1.CreditReviewService"

// CreditReviewServiceServer is the server API for CreditReviewService.
type CreditReviewServiceServer interface {
	// Intake
	CreateApplication(context.Context, *dto.CreateApplicationRequest) (*dto.ApplicationResponse, error)
	SubmitDraft(context.Context, *dto.ApplicationRef) (*dto.ApplicationResponse, error)
	Resubmit(context.Context, *dto.ResubmitRequest) (*dto.ApplicationResponse, error)

	// Queries
	ListInbox(context.Context, *dto.ListInboxRequest) (*dto.InboxResponse, error)
	GetApplication(context.Context, *dto.ApplicationRef) (*dto.ApplicationResponse, error)
	TrackApplication(context.Context, *TrackApplicationRequest) (*dto.TrackingResponse, error)

	// Review
	StartReview(context.Context, *dto.ApplicationRef) (*dto.StartReviewResponse, error)
	ProcessApplication(context.Context, *dto.ProcessApplicationRequest) (*dto.ApplicationResponse, error)
	UpdateApplicationData(context.Context, *dto.UpdateApplicationDataRequest) (*dto.ApplicationResponse, error)
	RunValidations(context.Context, *dto.ApplicationRef) (*model.ValidationResult, error)
	AddComment(context.Context, *dto.AddCommentRequest) (*dto.ApplicationResponse, error)
	GenerateSignatureLink(context.Context, *dto.ApplicationRef) (*dto.ApplicationResponse, error)
	ConfirmDisburse(context.Context, *dto.ConfirmDisburseRequest) (*dto.ApplicationResponse, error)
	AdvanceLoan(context.Context, *dto.AdvanceLoanRequest) (*dto.ApplicationResponse, error)

	// Rules and calculators
	EvaluatePreApproval(context.Context, *dto.PreApprovalRequest) (*dto.PreApprovalResponse, error)
	GetRules(context.Context, *Empty) (*service.RulesConfig, error)
	UpdateRules(context.Context, *dto.UpdateRulesRequest) (*service.RulesConfig, error)
	EvaluateAutoApproval(context.Context, *dto.EvaluateAutoApprovalRequest) (*service.AutoApprovalReport, error)
	GetRequiredApprovalLevel(context.Context, *ApprovalLevelRequest) (*dto.ApprovalLevelResponse, error)
	CalculateAmortization(context.Context, *dto.AmortizationRequest) (*model.AmortizationPlan, error)

	// Maintenance
	MigrateLegacyStatuses(context.Context, *dto.MigrateLegacyStatusesRequest) (*dto.MigrationResponse, error)
}

// PublicMethods need no bearer token.
var PublicMethods = []string{
	FullMethod("TrackApplication"),
	FullMethod("EvaluatePreApproval"),
	FullMethod("GetRequiredApprovalLevel"),
	FullMethod("CalculateAmortization"),
}

// FullMethod returns "/credit.v1.CreditReviewService/<method>".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// RegisterCreditReviewServiceServer registers srv with the gRPC server.
func RegisterCreditReviewServiceServer(s grpclib.ServiceRegistrar, srv CreditReviewServiceServer) {
	s.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpclib.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CreditReviewServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		unary("CreateApplication", CreditReviewServiceServer.CreateApplication),
		unary("SubmitDraft", CreditReviewServiceServer.SubmitDraft),
		unary("Resubmit", CreditReviewServiceServer.Resubmit),
		unary("ListInbox", CreditReviewServiceServer.ListInbox),
		unary("GetApplication", CreditReviewServiceServer.GetApplication),
		unary("TrackApplication", CreditReviewServiceServer.TrackApplication),
		unary("StartReview", CreditReviewServiceServer.StartReview),
		unary("ProcessApplication", CreditReviewServiceServer.ProcessApplication),
		unary("UpdateApplicationData", CreditReviewServiceServer.UpdateApplicationData),
		unary("RunValidations", CreditReviewServiceServer.RunValidations),
		unary("AddComment", CreditReviewServiceServer.AddComment),
		unary("GenerateSignatureLink", CreditReviewServiceServer.GenerateSignatureLink),
		unary("ConfirmDisburse", CreditReviewServiceServer.ConfirmDisburse),
		unary("AdvanceLoan", CreditReviewServiceServer.AdvanceLoan),
		unary("EvaluatePreApproval", CreditReviewServiceServer.EvaluatePreApproval),
		unary("GetRules", CreditReviewServiceServer.GetRules),
		unary("UpdateRules", CreditReviewServiceServer.UpdateRules),
		unary("EvaluateAutoApproval", CreditReviewServiceServer.EvaluateAutoApproval),
		unary("GetRequiredApprovalLevel", CreditReviewServiceServer.GetRequiredApprovalLevel),
		unary("CalculateAmortization", CreditReviewServiceServer.CalculateAmortization),
		unary("MigrateLegacyStatuses", CreditReviewServiceServer.MigrateLegacyStatuses),
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "credit/v1/credit_review.proto",
}

// unary builds the MethodDesc that decodes a Req, runs the interceptor
// chain and dispatches to call.
func unary[Req, Resp any](
	name string,
	call func(CreditReviewServiceServer, context.Context, *Req) (*Resp, error),
) grpclib.MethodDesc {
	fullMethod := FullMethod(name)
	return grpclib.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			server := srv.(CreditReviewServiceServer)
			if interceptor == nil {
				return call(server, ctx, in)
			}
			info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(server, ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
