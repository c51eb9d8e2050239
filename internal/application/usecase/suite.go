package usecase

import (
	"log/slog"

	"github.com/bibbank/credit-service/internal/domain/port"
	"github.com/bibbank/credit-service/internal/domain/service"
)

// Dependencies are the driven adapters every use case draws from.
type Dependencies struct {
	Repo      port.ApplicationRepository
	Notifier  port.NotificationSink
	Audit     port.AuditSink
	Metrics   port.Metrics
	Blacklist port.BlacklistChecker
	Risk      port.RiskCentralsChecker
	Signature port.SignatureProvider
	Rules     *service.ApprovalRules
	Logger    *slog.Logger
	// Clock defaults to SystemClock.
	Clock Clock
}

// Suite holds one instance of every operation, sharing a Store and a
// SideEffects dispatcher.
type Suite struct {
	Create          *CreateApplicationUseCase
	SubmitDraft     *SubmitDraftUseCase
	Resubmit        *ResubmitUseCase
	ListInbox       *ListInboxUseCase
	Get             *GetApplicationUseCase
	Track           *TrackApplicationUseCase
	StartReview     *StartReviewUseCase
	Process         *ProcessApplicationUseCase
	UpdateData      *UpdateApplicationDataUseCase
	RunValidations  *RunValidationsUseCase
	AddComment      *AddCommentUseCase
	SignatureLink   *GenerateSignatureLinkUseCase
	ConfirmDisburse *ConfirmDisburseUseCase
	AdvanceLoan     *AdvanceLoanUseCase
	PreApproval     *EvaluatePreApprovalUseCase
	Rules           *ManageRulesUseCase
	Amortization    *CalculateAmortizationUseCase
	Migrate         *MigrateLegacyStatusesUseCase

	Store *Store
}

// NewSuite wires every use case from d.
func NewSuite(d Dependencies) Suite {
	clock := d.Clock
	if clock == nil {
		clock = SystemClock
	}
	store := NewStore(d.Repo, d.Metrics, clock)
	effects := NewSideEffects(d.Notifier, d.Audit, d.Metrics, d.Logger)
	scoring := service.NewScoringEngine(d.Blacklist, d.Risk)

	return Suite{
		Create:          NewCreateApplicationUseCase(store, effects, d.Rules),
		SubmitDraft:     NewSubmitDraftUseCase(store, effects, d.Rules),
		Resubmit:        NewResubmitUseCase(store, effects, d.Rules),
		ListInbox:       NewListInboxUseCase(d.Repo),
		Get:             NewGetApplicationUseCase(store, d.Rules),
		Track:           NewTrackApplicationUseCase(d.Repo),
		StartReview:     NewStartReviewUseCase(store, effects, d.Rules, scoring),
		Process:         NewProcessApplicationUseCase(store, effects, d.Rules),
		UpdateData:      NewUpdateApplicationDataUseCase(store, effects, d.Rules),
		RunValidations:  NewRunValidationsUseCase(store, scoring),
		AddComment:      NewAddCommentUseCase(store, d.Rules),
		SignatureLink:   NewGenerateSignatureLinkUseCase(store, effects, d.Rules, d.Signature),
		ConfirmDisburse: NewConfirmDisburseUseCase(store, effects, d.Rules),
		AdvanceLoan:     NewAdvanceLoanUseCase(store, effects, d.Rules),
		PreApproval:     NewEvaluatePreApprovalUseCase(d.Rules, clock),
		Rules:           NewManageRulesUseCase(d.Rules, effects),
		Amortization:    NewCalculateAmortizationUseCase(clock),
		Migrate:         NewMigrateLegacyStatusesUseCase(store, effects),
		Store:           store,
	}
}
