package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/bibbank/credit-service/internal/domain/errs"
	"github.com/bibbank/credit-service/internal/domain/model"
	"github.com/bibbank/credit-service/internal/domain/port"
)

// Clock returns the current instant.
type Clock func() time.Time

// SystemClock is the wall clock in UTC.
func SystemClock() time.Time { return time.Now().UTC() }

const (
	defaultMaxAttempts     = 3
	defaultInitialInterval = 25 * time.Millisecond
	defaultMaxInterval     = 250 * time.Millisecond
)

// errUnchanged is returned by a mutation that has nothing to write.
var errUnchanged = errors.New("application unchanged")

// Mutation computes the next state of app. It must not perform writes.
type Mutation func(app model.CreditApplication, now time.Time) (model.CreditApplication, error)

// Store reads, mutates and writes applications under optimistic locking.
type Store struct {
	repo            port.ApplicationRepository
	metrics         port.Metrics
	clock           Clock
	maxAttempts     int
	initialInterval time.Duration
}

// NewStore wires a store. A nil clock means SystemClock.
func NewStore(repo port.ApplicationRepository, metrics port.Metrics, clock Clock) *Store {
	if clock == nil {
		clock = SystemClock
	}
	return &Store{
		repo:            repo,
		metrics:         metrics,
		clock:           clock,
		maxAttempts:     defaultMaxAttempts,
		initialInterval: defaultInitialInterval,
	}
}

// WithRetry overrides how many times a version conflict is attempted and
// the first backoff interval.
func (s *Store) WithRetry(maxAttempts int, initial time.Duration) *Store {
	if maxAttempts > 0 {
		s.maxAttempts = maxAttempts
	}
	if initial > 0 {
		s.initialInterval = initial
	}
	return s
}

// Now returns the store's clock reading.
func (s *Store) Now() time.Time { return s.clock() }

// Repository exposes the underlying repository for reads.
func (s *Store) Repository() port.ApplicationRepository { return s.repo }

// Load fetches an application by id.
func (s *Store) Load(ctx context.Context, op, id string) (model.CreditApplication, error) {
	if err := validateID(op, id); err != nil {
		return model.CreditApplication{}, err
	}
	return s.repo.FindByID(ctx, id)
}

// Mutate applies fn to the latest stored state of id and writes the result
// with a compare-and-swap on the version. On a version conflict the
// application is re-read and fn re-validated against the fresh state.
// Every other error aborts at once. It returns the state fn saw and the
// state it wrote.
func (s *Store) Mutate(ctx context.Context, op, id string, fn Mutation) (before, after model.CreditApplication, err error) {
	if err := validateID(op, id); err != nil {
		return before, after, err
	}

	attempt := func() error {
		current, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return backoff.Permanent(err)
		}
		next, err := fn(current, s.clock())
		if errors.Is(err, errUnchanged) {
			before, after = current, current
			return backoff.Permanent(err)
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		if err := s.repo.Update(ctx, next); err != nil {
			if errors.Is(err, errs.ErrConflict) {
				return err
			}
			return backoff.Permanent(err)
		}
		before, after = current, next.Committed()
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.initialInterval
	policy.MaxInterval = defaultMaxInterval
	b := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(s.maxAttempts-1)), ctx)

	err = backoff.RetryNotify(attempt, b, func(error, time.Duration) {
		s.metrics.ConflictRetried()
	})
	if errors.Is(err, errs.ErrConflict) {
		return before, after, errs.Conflict(op, "application %s kept changing concurrently after %d attempts", id, s.maxAttempts)
	}
	return before, after, err
}

func validateID(op, id string) error {
	if id == "" {
		return errs.Validation(op, "application id is required")
	}
	if _, err := uuid.Parse(id); err != nil {
		return errs.Validation(op, "malformed application id %q", id)
	}
	return nil
}
