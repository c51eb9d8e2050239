package grpc

import (
	"github.com/shopspring/decimal"
)

// Messages with no counterpart in the application DTOs.

// Empty is the request of parameterless methods.
type Empty struct{}

// TrackApplicationRequest looks an application up by radication number.
type TrackApplicationRequest struct {
	Radication string `json:"radication"`
}

// ApprovalLevelRequest asks which authority must grant an amount.
type ApprovalLevelRequest struct {
	Amount decimal.Decimal `json:"amount"`
}
