// Package memory holds in-process repositories used by tests and by the
// service when STORAGE_DRIVER=memory.
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bibbank/credit-service/internal/domain/errs"
	"github.com/bibbank/credit-service/internal/domain/model"
	"github.com/bibbank/credit-service/internal/domain/port"
	"github.com/bibbank/credit-service/pkg/events"
)

// ApplicationRepo implements port.ApplicationRepository and
// events.OutboxRepository in memory with the same CAS semantics as the
// Postgres repository.
type ApplicationRepo struct {
	mu           sync.RWMutex
	apps         map[string]model.CreditApplicationSnapshot
	byRadication map[string]string
	outbox       []events.OutboxEntry
	seq          atomic.Int64
}

// NewApplicationRepo returns an empty repository.
func NewApplicationRepo() *ApplicationRepo {
	return &ApplicationRepo{
		apps:         make(map[string]model.CreditApplicationSnapshot),
		byRadication: make(map[string]string),
	}
}

// NextSequence reserves the next radication sequence value.
func (r *ApplicationRepo) NextSequence(context.Context) (int64, error) {
	return r.seq.Add(1), nil
}

// Create stores a new application.
func (r *ApplicationRepo) Create(_ context.Context, app model.CreditApplication) error {
	entries, err := events.NewOutboxEntries(app.DomainEvents())
	if err != nil {
		return err
	}
	snap := app.Snapshot()

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.apps[snap.ID]; ok {
		return errs.Conflict("create application", "application %s already exists", snap.ID)
	}
	if _, ok := r.byRadication[snap.Radication]; ok {
		return errs.Conflict("create application", "radication %s already exists", snap.Radication)
	}
	r.apps[snap.ID] = snap
	r.byRadication[snap.Radication] = snap.ID
	r.outbox = append(r.outbox, entries...)
	return nil
}

// Update writes app when the stored version still equals app.Version().
func (r *ApplicationRepo) Update(_ context.Context, app model.CreditApplication) error {
	const op = "update application"
	entries, err := events.NewOutboxEntries(app.DomainEvents())
	if err != nil {
		return err
	}
	snap := app.Snapshot()

	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.apps[snap.ID]
	if !ok {
		return errs.NotFound(op, "application %s not found", snap.ID)
	}
	if current.Version != snap.Version {
		return errs.Conflict(op, "application %s is at version %d, not %d", snap.ID, current.Version, snap.Version)
	}
	snap.Version++
	r.apps[snap.ID] = snap
	r.outbox = append(r.outbox, entries...)
	return nil
}

// FindByID loads an application, normalising legacy statuses.
func (r *ApplicationRepo) FindByID(_ context.Context, id string) (model.CreditApplication, error) {
	r.mu.RLock()
	snap, ok := r.apps[id]
	r.mu.RUnlock()
	if !ok {
		return model.CreditApplication{}, errs.NotFound("find application", "application %s not found", id)
	}
	return model.ReconstructCreditApplication(snap)
}

// FindByRadication loads an application by its radication number.
func (r *ApplicationRepo) FindByRadication(ctx context.Context, radication string) (model.CreditApplication, error) {
	r.mu.RLock()
	id, ok := r.byRadication[radication]
	r.mu.RUnlock()
	if !ok {
		return model.CreditApplication{}, errs.NotFound("find application", "radication %s not found", radication)
	}
	return r.FindByID(ctx, id)
}

// List returns matching applications, oldest first.
func (r *ApplicationRepo) List(_ context.Context, f port.ListFilter) ([]model.CreditApplication, error) {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	r.mu.RLock()
	snaps := make([]model.CreditApplicationSnapshot, 0, len(r.apps))
	for _, s := range r.apps {
		if len(f.StoredStatuses) > 0 && !slices.Contains(f.StoredStatuses, s.Status) {
			continue
		}
		if search != "" && !matches(s, search) {
			continue
		}
		snaps = append(snaps, s)
	}
	r.mu.RUnlock()

	sort.Slice(snaps, func(i, j int) bool {
		if snaps[i].CreatedAt.Equal(snaps[j].CreatedAt) {
			return snaps[i].Radication < snaps[j].Radication
		}
		return snaps[i].CreatedAt.Before(snaps[j].CreatedAt)
	})
	snaps = snaps[min(max(f.Offset, 0), len(snaps)):]
	if f.Limit > 0 && len(snaps) > f.Limit {
		snaps = snaps[:f.Limit]
	}

	out := make([]model.CreditApplication, 0, len(snaps))
	for _, s := range snaps {
		app, err := model.ReconstructCreditApplication(s)
		if err != nil {
			return nil, err
		}
		out = append(out, app)
	}
	return out, nil
}

// Put stores a snapshot verbatim. It seeds fixtures such as rows written
// with legacy statuses.
func (r *ApplicationRepo) Put(snap model.CreditApplicationSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.apps[snap.ID] = snap
	r.byRadication[snap.Radication] = snap.ID
}

// StoredStatus returns the raw status value held for id.
func (r *ApplicationRepo) StoredStatus(id string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.apps[id]
	return s.Status, ok
}

// FetchUnpublished returns up to batchSize pending outbox entries in
// insertion order.
func (r *ApplicationRepo) FetchUnpublished(_ context.Context, batchSize int) ([]events.OutboxEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]events.OutboxEntry, 0, batchSize)
	for _, e := range r.outbox {
		if e.PublishedAt != nil {
			continue
		}
		out = append(out, e)
		if len(out) == batchSize {
			break
		}
	}
	return out, nil
}

// MarkPublished stamps the given entries.
func (r *ApplicationRepo) MarkPublished(_ context.Context, ids []string) error {
	now := time.Now().UTC()
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.outbox {
		if r.outbox[i].PublishedAt == nil && slices.Contains(ids, r.outbox[i].ID) {
			r.outbox[i].PublishedAt = &now
		}
	}
	return nil
}

func matches(s model.CreditApplicationSnapshot, search string) bool {
	for _, field := range []string{s.Applicant.FirstName, s.Applicant.LastName, s.Applicant.DocumentNumber, s.Radication} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}
