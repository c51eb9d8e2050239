package valueobject

import (
	"fmt"
	"slices"
)

// CreditStatus is the lifecycle state of a credit application.
type CreditStatus struct {
	value string
}

const (
	statusDraft              = "DRAFT"
	statusIncomplete         = "INCOMPLETE"
	statusSubmitted          = "SUBMITTED"
	statusAnalyst1Review     = "ANALYST1_REVIEW"
	statusAnalyst1Approved   = "ANALYST1_APPROVED"
	statusAnalyst1Returned   = "ANALYST1_RETURNED"
	statusAnalyst2Review     = "ANALYST2_REVIEW"
	statusAnalyst2Approved   = "ANALYST2_APPROVED"
	statusAnalyst2Returned   = "ANALYST2_RETURNED"
	statusAnalyst3Review     = "ANALYST3_REVIEW"
	statusAnalyst3Approved   = "ANALYST3_APPROVED"
	statusAnalyst3Returned   = "ANALYST3_RETURNED"
	statusCommercialReturned = "COMMERCIAL_RETURNED"
	statusPendingSignature   = "PENDING_SIGNATURE"
	statusReadyToDisburse    = "READY_TO_DISBURSE"
	statusDisbursed          = "DISBURSED"
	statusActive             = "ACTIVE"
	statusPaid               = "PAID"
	statusDefaulted          = "DEFAULTED"
	statusRejected           = "REJECTED"
)

var (
	StatusDraft              = CreditStatus{value: statusDraft}
	StatusIncomplete         = CreditStatus{value: statusIncomplete}
	StatusSubmitted          = CreditStatus{value: statusSubmitted}
	StatusAnalyst1Review     = CreditStatus{value: statusAnalyst1Review}
	StatusAnalyst1Approved   = CreditStatus{value: statusAnalyst1Approved}
	StatusAnalyst1Returned   = CreditStatus{value: statusAnalyst1Returned}
	StatusAnalyst2Review     = CreditStatus{value: statusAnalyst2Review}
	StatusAnalyst2Approved   = CreditStatus{value: statusAnalyst2Approved}
	StatusAnalyst2Returned   = CreditStatus{value: statusAnalyst2Returned}
	StatusAnalyst3Review     = CreditStatus{value: statusAnalyst3Review}
	StatusAnalyst3Approved   = CreditStatus{value: statusAnalyst3Approved}
	StatusAnalyst3Returned   = CreditStatus{value: statusAnalyst3Returned}
	StatusCommercialReturned = CreditStatus{value: statusCommercialReturned}
	StatusPendingSignature   = CreditStatus{value: statusPendingSignature}
	StatusReadyToDisburse    = CreditStatus{value: statusReadyToDisburse}
	StatusDisbursed          = CreditStatus{value: statusDisbursed}
	StatusActive             = CreditStatus{value: statusActive}
	StatusPaid               = CreditStatus{value: statusPaid}
	StatusDefaulted          = CreditStatus{value: statusDefaulted}
	StatusRejected           = CreditStatus{value: statusRejected}
)

var validCreditStatuses = map[string]CreditStatus{
	statusDraft:              StatusDraft,
	statusIncomplete:         StatusIncomplete,
	statusSubmitted:          StatusSubmitted,
	statusAnalyst1Review:     StatusAnalyst1Review,
	statusAnalyst1Approved:   StatusAnalyst1Approved,
	statusAnalyst1Returned:   StatusAnalyst1Returned,
	statusAnalyst2Review:     StatusAnalyst2Review,
	statusAnalyst2Approved:   StatusAnalyst2Approved,
	statusAnalyst2Returned:   StatusAnalyst2Returned,
	statusAnalyst3Review:     StatusAnalyst3Review,
	statusAnalyst3Approved:   StatusAnalyst3Approved,
	statusAnalyst3Returned:   StatusAnalyst3Returned,
	statusCommercialReturned: StatusCommercialReturned,
	statusPendingSignature:   StatusPendingSignature,
	statusReadyToDisburse:    StatusReadyToDisburse,
	statusDisbursed:          StatusDisbursed,
	statusActive:             StatusActive,
	statusPaid:               StatusPaid,
	statusDefaulted:          StatusDefaulted,
	statusRejected:           StatusRejected,
}

// legacyStatuses maps the deprecated flat statuses to their nearest
// lifecycle equivalent.
var legacyStatuses = map[string]CreditStatus{
	"pending":   StatusSubmitted,
	"approved":  StatusAnalyst3Approved,
	"disbursed": StatusDisbursed,
	"rejected":  StatusRejected,
}

// NewCreditStatus parses a canonical status. Legacy values are rejected; use
// NormalizeStatus at read boundaries.
func NewCreditStatus(s string) (CreditStatus, error) {
	v, ok := validCreditStatuses[s]
	if !ok {
		return CreditStatus{}, fmt.Errorf("invalid credit status: %q", s)
	}
	return v, nil
}

// NormalizeStatus resolves a stored status value, mapping legacy flat
// statuses onto the lifecycle. It is a pure lookup and never writes back.
func NormalizeStatus(raw string) (CreditStatus, error) {
	if v, ok := validCreditStatuses[raw]; ok {
		return v, nil
	}
	if v, ok := legacyStatuses[raw]; ok {
		return v, nil
	}
	return CreditStatus{}, fmt.Errorf("invalid credit status: %q", raw)
}

// IsLegacyStatus reports whether raw is one of the deprecated flat statuses.
func IsLegacyStatus(raw string) bool {
	_, ok := legacyStatuses[raw]
	return ok
}

// LegacyStatusValues returns every deprecated raw status value, sorted.
func LegacyStatusValues() []string {
	out := make([]string, 0, len(legacyStatuses))
	for raw := range legacyStatuses {
		out = append(out, raw)
	}
	slices.Sort(out)
	return out
}

// StoredValuesFor expands canonical statuses into every raw value that
// normalizes to one of them, so storage filters also match legacy rows.
func StoredValuesFor(statuses []CreditStatus) []string {
	out := make([]string, 0, len(statuses)+len(legacyStatuses))
	for _, s := range statuses {
		out = append(out, s.value)
	}
	for raw, s := range legacyStatuses {
		if slices.Contains(statuses, s) {
			out = append(out, raw)
		}
	}
	slices.Sort(out)
	return out
}

// String returns the string representation of the status.
func (s CreditStatus) String() string { return s.value }

// IsZero returns true if the status has not been initialised.
func (s CreditStatus) IsZero() bool { return s.value == "" }

// Equal returns true when both statuses carry the same value.
func (s CreditStatus) Equal(other CreditStatus) bool { return s.value == other.value }

// IsTerminal reports whether no further transition leaves s.
func (s CreditStatus) IsTerminal() bool {
	switch s {
	case StatusRejected, StatusPaid, StatusDefaulted:
		return true
	}
	return false
}

// IsReturned reports whether s is one of the returned states.
func (s CreditStatus) IsReturned() bool {
	switch s {
	case StatusAnalyst1Returned, StatusAnalyst2Returned, StatusAnalyst3Returned, StatusCommercialReturned:
		return true
	}
	return false
}

// AllCreditStatuses lists every canonical status.
func AllCreditStatuses() []CreditStatus {
	out := make([]CreditStatus, 0, len(validCreditStatuses))
	for _, s := range validCreditStatuses {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b CreditStatus) int {
		switch {
		case a.value < b.value:
			return -1
		case a.value > b.value:
			return 1
		}
		return 0
	})
	return out
}

// MarshalText encodes the canonical value.
func (s CreditStatus) MarshalText() ([]byte, error) { return []byte(s.value), nil }

// UnmarshalText decodes a stored value, normalizing legacy statuses.
func (s *CreditStatus) UnmarshalText(b []byte) error {
	v, err := NormalizeStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
