// Package outbox moves committed domain events from the outbox table to the
// message broker.
package outbox

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bibbank/credit-service/pkg/events"
)

const sinkName = "outbox"

// Publisher delivers outbox entries to the broker.
type Publisher interface {
	Publish(ctx context.Context, entries ...events.OutboxEntry) error
}

// FailureRecorder counts failed relay passes.
type FailureRecorder interface {
	SideEffectFailed(sink string)
}

// Relay polls the outbox and publishes pending entries. Entries are marked
// published only after the broker acknowledged them, so delivery is
// at-least-once.
type Relay struct {
	repo      events.OutboxRepository
	publisher Publisher
	metrics   FailureRecorder
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
}

func NewRelay(repo events.OutboxRepository, publisher Publisher, metrics FailureRecorder, logger *slog.Logger, interval time.Duration, batchSize int) *Relay {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Relay{
		repo:      repo,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		interval:  interval,
		batchSize: batchSize,
	}
}

// Run relays until ctx is cancelled. A failed pass is logged and retried on
// the next tick.
func (r *Relay) Run(ctx context.Context) {
	r.logger.Info("outbox relay starting", "interval", r.interval, "batch_size", r.batchSize)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("outbox relay stopping")
			return
		case <-ticker.C:
			if _, err := r.Drain(ctx); err != nil && ctx.Err() == nil {
				r.metrics.SideEffectFailed(sinkName)
				r.logger.Warn("outbox relay pass failed", "error", err)
			}
		}
	}
}

// Drain publishes batches until the outbox is empty and returns how many
// entries were relayed.
func (r *Relay) Drain(ctx context.Context) (int, error) {
	total := 0
	for {
		n, err := r.RelayOnce(ctx)
		total += n
		if err != nil || n < r.batchSize {
			return total, err
		}
	}
}

// RelayOnce publishes a single batch.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	entries, err := r.repo.FetchUnpublished(ctx, r.batchSize)
	if err != nil {
		return 0, fmt.Errorf("fetch outbox: %w", err)
	}
	if len(entries) == 0 {
		return 0, nil
	}

	if err := r.publisher.Publish(ctx, entries...); err != nil {
		return 0, fmt.Errorf("publish outbox batch: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	if err := r.repo.MarkPublished(ctx, ids); err != nil {
		return 0, fmt.Errorf("mark outbox published: %w", err)
	}

	r.logger.Debug("outbox batch relayed", "count", len(entries))
	return len(entries), nil
}
