package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bibbank/credit-service/internal/domain/errs"
	"github.com/bibbank/credit-service/internal/domain/model"
	"github.com/bibbank/credit-service/internal/domain/port"
	"github.com/bibbank/credit-service/pkg/events"
	pgutil "github.com/bibbank/credit-service/pkg/postgres"
)

// Compile-time interface checks.
var (
	_ port.ApplicationRepository = (*CreditApplicationRepo)(nil)
	_ events.OutboxRepository    = (*CreditApplicationRepo)(nil)
)

const uniqueViolation = "23505"

const selectColumns = `
	id::text, radication, radication_date, source, submitter_id, status,
	applicant, status_history, return_history, reviews, validations,
	comments, signature, disbursement, version, created_at, updated_at`

// CreditApplicationRepo implements port.ApplicationRepository and
// events.OutboxRepository on PostgreSQL. Nested parts of the aggregate are
// stored as JSONB; the status column keeps the raw stored value.
type CreditApplicationRepo struct {
	pool *pgxpool.Pool
}

// NewCreditApplicationRepo creates a new repository backed by PostgreSQL.
func NewCreditApplicationRepo(pool *pgxpool.Pool) *CreditApplicationRepo {
	return &CreditApplicationRepo{pool: pool}
}

// NextSequence draws from radication_seq, which is atomic across replicas.
func (r *CreditApplicationRepo) NextSequence(ctx context.Context) (int64, error) {
	var seq int64
	if err := r.pool.QueryRow(ctx, `SELECT nextval('radication_seq')`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next radication sequence: %w", err)
	}
	return seq, nil
}

// Create inserts a new application and its pending events in one transaction.
func (r *CreditApplicationRepo) Create(ctx context.Context, app model.CreditApplication) error {
	const op = "create application"
	snap := app.Snapshot()
	cols, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}

	return pgutil.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO credit_applications (
				id, radication, radication_date, source, submitter_id, status,
				first_name, last_name, document_number,
				applicant, status_history, return_history, reviews, validations,
				comments, signature, disbursement, version, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
		`, snap.ID, snap.Radication, snap.RadicationDate, snap.Source, snap.SubmitterID, snap.Status,
			snap.Applicant.FirstName, snap.Applicant.LastName, snap.Applicant.DocumentNumber,
			cols.applicant, cols.statusHistory, cols.returnHistory, cols.reviews, cols.validations,
			cols.comments, cols.signature, cols.disbursement, snap.Version, snap.CreatedAt, snap.UpdatedAt,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return errs.Conflict(op, "application %s or radication %s already exists", snap.ID, snap.Radication)
			}
			return fmt.Errorf("insert credit application: %w", err)
		}
		return writeOutbox(ctx, tx, app)
	})
}

// Update is a compare-and-swap on version. The row, the bumped version and
// the pending events commit together or not at all.
func (r *CreditApplicationRepo) Update(ctx context.Context, app model.CreditApplication) error {
	const op = "update application"
	snap := app.Snapshot()
	cols, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}

	return pgutil.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE credit_applications SET
				status          = $2,
				first_name      = $3,
				last_name       = $4,
				document_number = $5,
				applicant       = $6,
				status_history  = $7,
				return_history  = $8,
				reviews         = $9,
				validations     = $10,
				comments        = $11,
				signature       = $12,
				disbursement    = $13,
				updated_at      = $14,
				version         = credit_applications.version + 1
			WHERE id = $1 AND version = $15
		`, snap.ID, snap.Status,
			snap.Applicant.FirstName, snap.Applicant.LastName, snap.Applicant.DocumentNumber,
			cols.applicant, cols.statusHistory, cols.returnHistory, cols.reviews, cols.validations,
			cols.comments, cols.signature, cols.disbursement, snap.UpdatedAt, snap.Version,
		)
		if err != nil {
			return fmt.Errorf("update credit application: %w", err)
		}
		if tag.RowsAffected() == 0 {
			var current int
			err := tx.QueryRow(ctx, `SELECT version FROM credit_applications WHERE id = $1`, snap.ID).Scan(&current)
			if errors.Is(err, pgx.ErrNoRows) {
				return errs.NotFound(op, "application %s not found", snap.ID)
			}
			if err != nil {
				return fmt.Errorf("read credit application version: %w", err)
			}
			return errs.Conflict(op, "application %s is at version %d, not %d", snap.ID, current, snap.Version)
		}
		return writeOutbox(ctx, tx, app)
	})
}

// FindByID loads an application, normalising legacy statuses.
func (r *CreditApplicationRepo) FindByID(ctx context.Context, id string) (model.CreditApplication, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+selectColumns+` FROM credit_applications WHERE id = $1`, id)
	app, err := scanApplication(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.CreditApplication{}, errs.NotFound("find application", "application %s not found", id)
	}
	return app, err
}

// FindByRadication loads an application by its radication number.
func (r *CreditApplicationRepo) FindByRadication(ctx context.Context, radication string) (model.CreditApplication, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+selectColumns+` FROM credit_applications WHERE radication = $1`, radication)
	app, err := scanApplication(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.CreditApplication{}, errs.NotFound("find application", "radication %s not found", radication)
	}
	return app, err
}

// List returns matching applications, oldest first. An empty status filter
// matches every status and a zero limit returns every row.
func (r *CreditApplicationRepo) List(ctx context.Context, f port.ListFilter) ([]model.CreditApplication, error) {
	var statuses []string
	if len(f.StoredStatuses) > 0 {
		statuses = f.StoredStatuses
	}
	var limit any
	if f.Limit > 0 {
		limit = f.Limit
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+selectColumns+`
		FROM credit_applications
		WHERE ($1::text[] IS NULL OR status = ANY($1))
		  AND ($2 = '' OR first_name ILIKE $3 OR last_name ILIKE $3
		       OR document_number ILIKE $3 OR radication ILIKE $3)
		ORDER BY created_at, radication
		LIMIT $4 OFFSET $5
	`, statuses, strings.TrimSpace(f.Search), likePattern(f.Search), limit, max(f.Offset, 0))
	if err != nil {
		return nil, fmt.Errorf("query credit applications: %w", err)
	}
	defer rows.Close()

	var result []model.CreditApplication
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, app)
	}
	return result, rows.Err()
}

// FetchUnpublished returns up to batchSize pending outbox entries in
// insertion order.
func (r *CreditApplicationRepo) FetchUnpublished(ctx context.Context, batchSize int) ([]events.OutboxEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, aggregate_id, aggregate_type, event_type, payload, created_at
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY seq
		LIMIT $1
	`, batchSize)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var entries []events.OutboxEntry
	for rows.Next() {
		var e events.OutboxEntry
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.AggregateType, &e.EventType, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// MarkPublished stamps the given entries.
func (r *CreditApplicationRepo) MarkPublished(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx, `
		UPDATE outbox SET published_at = $2
		WHERE id = ANY($1::uuid[]) AND published_at IS NULL
	`, ids, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}

// writeOutbox writes domain events to the outbox table within tx.
func writeOutbox(ctx context.Context, tx pgx.Tx, app model.CreditApplication) error {
	entries, err := events.NewOutboxEntries(app.DomainEvents())
	if err != nil {
		return fmt.Errorf("marshal outbox event: %w", err)
	}
	for _, e := range entries {
		_, err := tx.Exec(ctx, `
			INSERT INTO outbox (id, aggregate_id, aggregate_type, event_type, payload, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, e.ID, e.AggregateID, e.AggregateType, e.EventType, e.Payload, e.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert outbox event: %w", err)
		}
	}
	return nil
}

func likePattern(search string) string {
	search = strings.TrimSpace(search)
	if search == "" {
		return ""
	}
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(search)
	return "%" + escaped + "%"
}
