package usecase

import (
	"context"

	"github.com/bibbank/credit-service/internal/application/dto"
	"github.com/bibbank/credit-service/internal/domain/model"
)

// CalculateAmortizationUseCase quotes a fixed-payment schedule.
type CalculateAmortizationUseCase struct {
	clock Clock
}

// NewCalculateAmortizationUseCase wires dependencies. A nil clock means
// SystemClock.
func NewCalculateAmortizationUseCase(clock Clock) *CalculateAmortizationUseCase {
	if clock == nil {
		clock = SystemClock
	}
	return &CalculateAmortizationUseCase{clock: clock}
}

// Execute computes the plan. The first payment falls one month after the
// start date.
func (uc *CalculateAmortizationUseCase) Execute(_ context.Context, req dto.AmortizationRequest) (model.AmortizationPlan, error) {
	const op = "calculate amortization"
	start, err := parseDate(op, "start_date", req.StartDate)
	if err != nil {
		return model.AmortizationPlan{}, err
	}
	if start.IsZero() {
		start = uc.clock()
	}
	return model.CalculateAmortization(req.Principal, req.AnnualRatePercent, req.TermMonths, start)
}
