package adapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/bibbank/credit-service/internal/domain/model"
)

// StubBlacklistChecker is a development/test adapter that flags every
// document number ending in "000". It implements port.BlacklistChecker.
type StubBlacklistChecker struct{}

// NewStubBlacklistChecker creates a new stub adapter.
func NewStubBlacklistChecker() *StubBlacklistChecker {
	return &StubBlacklistChecker{}
}

// IsBlacklisted is deterministic so scoring scenarios are repeatable.
func (c *StubBlacklistChecker) IsBlacklisted(_ context.Context, documentType, documentNumber string) (bool, error) {
	documentNumber = strings.TrimSpace(documentNumber)
	if documentNumber == "" {
		return false, fmt.Errorf("document number is required")
	}
	return strings.HasSuffix(documentNumber, "000"), nil
}

// adverseMarkers are phrases in the declared credit experience that the
// stub treats as a report in the risk centrals.
var adverseMarkers = []string{"default", "delinquent", "mora", "reportado"}

// StubRiskCentralsChecker is a development/test adapter that inspects the
// applicant's declared credit experience. It implements
// port.RiskCentralsChecker.
type StubRiskCentralsChecker struct{}

// NewStubRiskCentralsChecker creates a new stub adapter.
func NewStubRiskCentralsChecker() *StubRiskCentralsChecker {
	return &StubRiskCentralsChecker{}
}

// HasAdverseRecords reports true when the credit experience mentions any
// adverse marker.
func (c *StubRiskCentralsChecker) HasAdverseRecords(_ context.Context, applicant model.Applicant) (bool, error) {
	if applicant.DocumentNumber == "" {
		return false, fmt.Errorf("document number is required")
	}
	experience := strings.ToLower(applicant.CreditExperience)
	for _, marker := range adverseMarkers {
		if strings.Contains(experience, marker) {
			return true, nil
		}
	}
	return false, nil
}
