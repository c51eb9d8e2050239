package valueobject

import (
	"fmt"
	"strings"
)

// Action is a lifecycle verb applied to a credit application.
type Action struct {
	value string
}

var (
	ActionSubmit   = Action{value: "SUBMIT"}
	ActionReview   = Action{value: "REVIEW"}
	ActionApprove  = Action{value: "APPROVE"}
	ActionReject   = Action{value: "REJECT"}
	ActionReturn   = Action{value: "RETURN"}
	ActionResubmit = Action{value: "RESUBMIT"}
	ActionDisburse = Action{value: "DISBURSE"}
	ActionActivate = Action{value: "ACTIVATE"}
	ActionComplete = Action{value: "COMPLETE"}
	ActionDefault  = Action{value: "DEFAULT"}
)

var validActions = map[string]Action{
	"SUBMIT":   ActionSubmit,
	"REVIEW":   ActionReview,
	"APPROVE":  ActionApprove,
	"REJECT":   ActionReject,
	"RETURN":   ActionReturn,
	"RESUBMIT": ActionResubmit,
	"DISBURSE": ActionDisburse,
	"ACTIVATE": ActionActivate,
	"COMPLETE": ActionComplete,
	"DEFAULT":  ActionDefault,
}

// NewAction parses an action name, case-insensitively.
func NewAction(s string) (Action, error) {
	v, ok := validActions[strings.ToUpper(strings.TrimSpace(s))]
	if !ok {
		return Action{}, fmt.Errorf("invalid action: %q", s)
	}
	return v, nil
}

func (a Action) String() string { return a.value }

func (a Action) IsZero() bool { return a.value == "" }

// IsReviewDecision reports whether a is one of APPROVE, REJECT or RETURN.
func (a Action) IsReviewDecision() bool {
	return a == ActionApprove || a == ActionReject || a == ActionReturn
}

// IsServicing reports whether a moves a funded loan along its life.
func (a Action) IsServicing() bool {
	return a == ActionDisburse || a == ActionActivate || a == ActionComplete || a == ActionDefault
}

// Transition is a legal (from, action) -> to step of the lifecycle.
type Transition struct {
	From   CreditStatus
	Action Action
	To     CreditStatus
}

func (t Transition) String() string {
	return fmt.Sprintf("%s --%s--> %s", t.From, t.Action, t.To)
}
