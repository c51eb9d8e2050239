package service

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/bibbank/credit-service/internal/domain/errs"
	vo "github.com/bibbank/credit-service/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// RulesConfig – admin-adjustable thresholds
// ---------------------------------------------------------------------------

// RulesConfig holds the approval thresholds. A zero MinMonthlyIncome or
// MaxDebtToIncomeRatio means the check is not configured.
type RulesConfig struct {
	AutoApproveCeiling   decimal.Decimal `json:"auto_approve_ceiling" toml:"auto_approve_ceiling"`
	ScoreThreshold       int             `json:"score_threshold" toml:"score_threshold"`
	Level1Ceiling        decimal.Decimal `json:"level1_ceiling" toml:"level1_ceiling"`
	Level2Ceiling        decimal.Decimal `json:"level2_ceiling" toml:"level2_ceiling"`
	MinMonthlyIncome     decimal.Decimal `json:"min_monthly_income" toml:"min_monthly_income"`
	MaxDebtToIncomeRatio decimal.Decimal `json:"max_debt_to_income_ratio" toml:"max_debt_to_income_ratio"`
}

// DefaultRulesConfig returns the thresholds used when nothing is configured.
func DefaultRulesConfig() RulesConfig {
	return RulesConfig{
		AutoApproveCeiling:   decimal.NewFromInt(5_000),
		ScoreThreshold:       70,
		Level1Ceiling:        decimal.NewFromInt(20_000),
		Level2Ceiling:        decimal.NewFromInt(100_000),
		MinMonthlyIncome:     decimal.NewFromInt(1_000),
		MaxDebtToIncomeRatio: decimal.RequireFromString("0.4"),
	}
}

// Validate rejects negative thresholds and unordered ceilings.
func (c RulesConfig) Validate() error {
	const op = "validate rules"
	for name, v := range map[string]decimal.Decimal{
		"auto_approve_ceiling":     c.AutoApproveCeiling,
		"level1_ceiling":           c.Level1Ceiling,
		"level2_ceiling":           c.Level2Ceiling,
		"min_monthly_income":       c.MinMonthlyIncome,
		"max_debt_to_income_ratio": c.MaxDebtToIncomeRatio,
	} {
		if v.IsNegative() {
			return errs.Validation(op, "%s cannot be negative", name)
		}
	}
	if c.ScoreThreshold < 0 || c.ScoreThreshold > 100 {
		return errs.Validation(op, "score_threshold must be between 0 and 100")
	}
	if c.AutoApproveCeiling.GreaterThan(c.Level1Ceiling) || c.Level1Ceiling.GreaterThan(c.Level2Ceiling) {
		return errs.Validation(op, "ceilings must satisfy auto_approve <= level1 <= level2")
	}
	return nil
}

// ---------------------------------------------------------------------------
// Auto-approval evaluation
// ---------------------------------------------------------------------------

// AutoApprovalContext is the input to the auto-approval rules.
type AutoApprovalContext struct {
	RequestedAmount   decimal.Decimal
	Score             int
	MonthlyIncome     decimal.Decimal
	CurrentDebt       decimal.Decimal
	DocumentsVerified bool
}

// Rule names reported by EvaluateAutoApproval.
const (
	RuleAmountCeiling     = "amount_within_auto_approve_ceiling"
	RuleScoreThreshold    = "score_meets_threshold"
	RuleMinimumIncome     = "income_meets_minimum"
	RuleDebtToIncome      = "debt_to_income_within_limit"
	RuleDocumentsVerified = "documents_verified"
)

// RuleCheck is the outcome of a single auto-approval condition.
type RuleCheck struct {
	Rule   string `json:"rule"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// AutoApprovalReport lists every condition, so callers can explain a refusal.
type AutoApprovalReport struct {
	Eligible bool        `json:"eligible"`
	Checks   []RuleCheck `json:"checks"`
}

// Failed returns the checks that did not pass.
func (r AutoApprovalReport) Failed() []RuleCheck {
	var out []RuleCheck
	for _, c := range r.Checks {
		if !c.Passed {
			out = append(out, c)
		}
	}
	return out
}

type autoRule struct {
	name  string
	check func(RulesConfig, AutoApprovalContext) (bool, string)
}

// autoRules run in order; the amount ceiling comes first so CanAutoApprove
// stops there for large amounts regardless of score.
var autoRules = []autoRule{
	{RuleAmountCeiling, func(c RulesConfig, x AutoApprovalContext) (bool, string) {
		return x.RequestedAmount.LessThanOrEqual(c.AutoApproveCeiling),
			fmt.Sprintf("requested %s, ceiling %s", x.RequestedAmount, c.AutoApproveCeiling)
	}},
	{RuleScoreThreshold, func(c RulesConfig, x AutoApprovalContext) (bool, string) {
		return x.Score >= c.ScoreThreshold, fmt.Sprintf("score %d, threshold %d", x.Score, c.ScoreThreshold)
	}},
	{RuleMinimumIncome, func(c RulesConfig, x AutoApprovalContext) (bool, string) {
		if c.MinMonthlyIncome.IsZero() {
			return true, "not configured"
		}
		return x.MonthlyIncome.GreaterThanOrEqual(c.MinMonthlyIncome),
			fmt.Sprintf("income %s, minimum %s", x.MonthlyIncome, c.MinMonthlyIncome)
	}},
	{RuleDebtToIncome, func(c RulesConfig, x AutoApprovalContext) (bool, string) {
		if c.MaxDebtToIncomeRatio.IsZero() {
			return true, "not configured"
		}
		if !x.MonthlyIncome.IsPositive() {
			return false, "no income to measure debt against"
		}
		ratio := x.CurrentDebt.Div(x.MonthlyIncome)
		return ratio.LessThanOrEqual(c.MaxDebtToIncomeRatio),
			fmt.Sprintf("ratio %s, maximum %s", ratio.Round(ratioDisplayPlaces), c.MaxDebtToIncomeRatio)
	}},
	{RuleDocumentsVerified, func(_ RulesConfig, x AutoApprovalContext) (bool, string) {
		if x.DocumentsVerified {
			return true, "documents verified"
		}
		return false, "required documents not verified"
	}},
}

// ---------------------------------------------------------------------------
// ApprovalRules – the rules engine
// ---------------------------------------------------------------------------

// ApprovalRules evaluates auto-approval and approval levels against a
// configuration that admins may replace at runtime.
type ApprovalRules struct {
	mu  sync.RWMutex
	cfg RulesConfig
}

// NewApprovalRules validates cfg and returns an engine holding it.
func NewApprovalRules(cfg RulesConfig) (*ApprovalRules, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &ApprovalRules{cfg: cfg}, nil
}

// Config returns the current thresholds.
func (r *ApprovalRules) Config() RulesConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cfg
}

// Update replaces the thresholds after validating them.
func (r *ApprovalRules) Update(cfg RulesConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	r.cfg = cfg
	r.mu.Unlock()
	return nil
}

// CanAutoApprove is true iff every auto-approval condition holds. It stops
// at the first failing condition.
func (r *ApprovalRules) CanAutoApprove(x AutoApprovalContext) bool {
	cfg := r.Config()
	for _, rule := range autoRules {
		if ok, _ := rule.check(cfg, x); !ok {
			return false
		}
	}
	return true
}

// EvaluateAutoApproval runs every condition and reports each outcome.
func (r *ApprovalRules) EvaluateAutoApproval(x AutoApprovalContext) AutoApprovalReport {
	cfg := r.Config()
	report := AutoApprovalReport{Eligible: true, Checks: make([]RuleCheck, 0, len(autoRules))}
	for _, rule := range autoRules {
		ok, detail := rule.check(cfg, x)
		report.Checks = append(report.Checks, RuleCheck{Rule: rule.name, Passed: ok, Detail: detail})
		report.Eligible = report.Eligible && ok
	}
	return report
}

// RequiredApprovalLevel maps an amount to the authority that must grant it.
func (r *ApprovalRules) RequiredApprovalLevel(amount decimal.Decimal) vo.ApprovalLevel {
	cfg := r.Config()
	switch {
	case amount.LessThanOrEqual(cfg.AutoApproveCeiling):
		return vo.ApprovalLevelAuto
	case amount.LessThanOrEqual(cfg.Level1Ceiling):
		return vo.ApprovalLevelLevel1
	case amount.LessThanOrEqual(cfg.Level2Ceiling):
		return vo.ApprovalLevelLevel2
	default:
		return vo.ApprovalLevelCommittee
	}
}

// NextStatus resolves a transition. When x is given, every auto-approval
// condition is evaluated, the report is returned and its verdict decides
// edges that depend on it.
func (r *ApprovalRules) NextStatus(from vo.CreditStatus, action vo.Action, tc TransitionContext, x *AutoApprovalContext) (vo.Transition, AutoApprovalReport, bool) {
	var report AutoApprovalReport
	if x != nil {
		report = r.EvaluateAutoApproval(*x)
		tc.AutoApprovable = report.Eligible
	}
	t, ok := NextStatus(from, action, tc)
	return t, report, ok
}
