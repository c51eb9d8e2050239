package port

import (
	"context"

	"github.com/bibbank/credit-service/internal/domain/model"
)

// ---------------------------------------------------------------------------
// Repository ports (driven/secondary adapters)
// ---------------------------------------------------------------------------

// ListFilter selects applications for an inbox.
type ListFilter struct {
	// StoredStatuses are raw status values, legacy ones included.
	StoredStatuses []string
	// Search is a case-insensitive substring matched against first name,
	// last name, document number and radication number.
	Search string
	Limit  int
	// Offset skips that many matches in (created_at, radication) order.
	Offset int
}

// ApplicationRepository persists credit applications.
//
// Update is a compare-and-swap on Version: it must fail with an errs.Conflict
// error when the stored version differs from app.Version(), and it persists
// the aggregate's pending domain events atomically with the row.
type ApplicationRepository interface {
	// NextSequence atomically reserves the next radication sequence value.
	NextSequence(ctx context.Context) (int64, error)
	Create(ctx context.Context, app model.CreditApplication) error
	Update(ctx context.Context, app model.CreditApplication) error
	FindByID(ctx context.Context, id string) (model.CreditApplication, error)
	FindByRadication(ctx context.Context, radication string) (model.CreditApplication, error)
	List(ctx context.Context, filter ListFilter) ([]model.CreditApplication, error)
}
