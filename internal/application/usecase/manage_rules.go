package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bibbank/credit-service/internal/application/dto"
	"github.com/bibbank/credit-service/internal/domain/errs"
	"github.com/bibbank/credit-service/internal/domain/port"
	"github.com/bibbank/credit-service/internal/domain/service"
	"github.com/bibbank/credit-service/pkg/auth"
)

// ManageRulesUseCase reads and replaces the approval thresholds.
type ManageRulesUseCase struct {
	rules   *service.ApprovalRules
	effects *SideEffects
}

// NewManageRulesUseCase wires dependencies.
func NewManageRulesUseCase(rules *service.ApprovalRules, effects *SideEffects) *ManageRulesUseCase {
	return &ManageRulesUseCase{rules: rules, effects: effects}
}

// Get returns the thresholds in force.
func (uc *ManageRulesUseCase) Get(_ context.Context, actor dto.Actor) (service.RulesConfig, error) {
	if err := requireActor("get rules", actor); err != nil {
		return service.RulesConfig{}, err
	}
	return uc.rules.Config(), nil
}

// Update replaces the thresholds. Admins only.
func (uc *ManageRulesUseCase) Update(ctx context.Context, req dto.UpdateRulesRequest) (service.RulesConfig, error) {
	const op = "update rules"
	if err := requireRole(op, req.Actor, auth.RoleAdmin); err != nil {
		return service.RulesConfig{}, err
	}
	previous := uc.rules.Config()
	if err := uc.rules.Update(req.Rules); err != nil {
		return service.RulesConfig{}, err
	}

	uc.effects.Audit(ctx, port.AuditRecord{
		Action:        "UPDATE_RULES",
		ResourceType:  resourceApprovalRules,
		ResourceID:    resourceApprovalRules,
		ActorID:       req.Actor.ID,
		Description:   "approval thresholds replaced",
		PreviousState: fmt.Sprintf("%+v", previous),
		NewState:      fmt.Sprintf("%+v", req.Rules),
	})
	return uc.rules.Config(), nil
}

// EvaluateAutoApproval reports every auto-approval condition for x.
func (uc *ManageRulesUseCase) EvaluateAutoApproval(_ context.Context, req dto.EvaluateAutoApprovalRequest) (service.AutoApprovalReport, error) {
	const op = "evaluate auto-approval"
	if err := requireRole(op, req.Actor, reviewerRoles...); err != nil {
		return service.AutoApprovalReport{}, err
	}
	if req.Score < 0 || req.Score > 100 {
		return service.AutoApprovalReport{}, errs.Validation(op, "score must be within 0..100")
	}
	return uc.rules.EvaluateAutoApproval(service.AutoApprovalContext{
		RequestedAmount:   req.RequestedAmount,
		Score:             req.Score,
		MonthlyIncome:     req.MonthlyIncome,
		CurrentDebt:       req.CurrentDebt,
		DocumentsVerified: req.DocumentsVerified,
	}), nil
}

// RequiredApprovalLevel maps amount to the authority that must grant it.
func (uc *ManageRulesUseCase) RequiredApprovalLevel(amount decimal.Decimal) (dto.ApprovalLevelResponse, error) {
	if amount.IsNegative() {
		return dto.ApprovalLevelResponse{}, errs.Validation("required approval level", "amount cannot be negative")
	}
	level := uc.rules.RequiredApprovalLevel(amount)
	return dto.ApprovalLevelResponse{Amount: amount, Level: level.String(), ExpectedDays: level.ExpectedDays()}, nil
}
