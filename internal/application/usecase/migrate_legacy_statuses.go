package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bibbank/credit-service/internal/application/dto"
	"github.com/bibbank/credit-service/internal/domain/model"
	"github.com/bibbank/credit-service/internal/domain/port"
	vo "github.com/bibbank/credit-service/internal/domain/valueobject"
	"github.com/bibbank/credit-service/pkg/auth"
)

const defaultMigrationBatch = 500

// MigrateLegacyStatusesUseCase rewrites deprecated flat statuses to their
// lifecycle equivalents. It is the only path that persists normalisation;
// reads normalise in memory and leave storage untouched.
type MigrateLegacyStatusesUseCase struct {
	store   *Store
	effects *SideEffects
	batch   int
}

// NewMigrateLegacyStatusesUseCase wires dependencies.
func NewMigrateLegacyStatusesUseCase(store *Store, effects *SideEffects) *MigrateLegacyStatusesUseCase {
	return &MigrateLegacyStatusesUseCase{store: store, effects: effects, batch: defaultMigrationBatch}
}

// WithBatchSize sets how many candidates are loaded per query.
func (uc *MigrateLegacyStatusesUseCase) WithBatchSize(n int) *MigrateLegacyStatusesUseCase {
	if n > 0 {
		uc.batch = n
	}
	return uc
}

// Execute pages through every application stored with a legacy status until
// a short batch shows the table is exhausted.
func (uc *MigrateLegacyStatusesUseCase) Execute(ctx context.Context, req dto.MigrateLegacyStatusesRequest) (dto.MigrationResponse, error) {
	const op = "migrate legacy statuses"
	if err := requireRole(op, req.Actor, auth.RoleAdmin); err != nil {
		return dto.MigrationResponse{}, err
	}

	resp := dto.MigrationResponse{IDs: []string{}, DryRun: req.DryRun}
	offset := 0
	for {
		// 1. Find candidates. Migrated rows drop out of the filter, so a real
		// run always reads from the top; a dry run has to page.
		apps, err := uc.store.Repository().List(ctx, port.ListFilter{
			StoredStatuses: vo.LegacyStatusValues(),
			Limit:          uc.batch,
			Offset:         offset,
		})
		if err != nil {
			return resp, fmt.Errorf("list legacy applications: %w", err)
		}
		resp.Scanned += len(apps)

		if req.DryRun {
			for _, app := range apps {
				resp.IDs = append(resp.IDs, app.ID())
			}
			resp.Migrated = len(resp.IDs)
			offset += len(apps)
		} else {
			migrated, err := uc.migrateBatch(ctx, op, req.Actor.ID, apps, &resp)
			if err != nil {
				return resp, err
			}
			if migrated == 0 && len(apps) > 0 {
				// Nothing changed, so the next query would return the same rows.
				break
			}
		}

		if len(apps) < uc.batch {
			break
		}
		if err := ctx.Err(); err != nil {
			return resp, err
		}
	}
	return resp, nil
}

// migrateBatch rewrites apps one by one; each write is its own CAS.
func (uc *MigrateLegacyStatusesUseCase) migrateBatch(ctx context.Context, op, actorID string, apps []model.CreditApplication, resp *dto.MigrationResponse) (int, error) {
	migrated := 0
	for _, app := range apps {
		before, after, err := uc.store.Mutate(ctx, op, app.ID(), func(a model.CreditApplication, now time.Time) (model.CreditApplication, error) {
			next, changed := a.NormalizeStoredStatus(now)
			if !changed {
				return a, errUnchanged
			}
			return next, nil
		})
		if errors.Is(err, errUnchanged) {
			continue
		}
		if err != nil {
			return migrated, fmt.Errorf("migrate %s: %w", app.ID(), err)
		}
		resp.IDs = append(resp.IDs, after.ID())
		resp.Migrated++
		migrated++

		uc.effects.Audit(ctx, port.AuditRecord{
			Action:        "MIGRATE_STATUS",
			ResourceType:  resourceCreditApplication,
			ResourceID:    after.ID(),
			ActorID:       actorID,
			Description:   "legacy status rewritten",
			PreviousState: before.StoredStatus(),
			NewState:      after.StoredStatus(),
		})
	}
	return migrated, nil
}
