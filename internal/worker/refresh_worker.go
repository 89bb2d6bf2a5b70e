// Package worker materializes the aggregate tables read by the billboard
// resolver. It refreshes on job-completion events and on a periodic sweep,
// so a lost message only delays a refresh instead of losing it.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"opsboard/internal/amqp"
	"opsboard/internal/billboard"
	"opsboard/internal/core"
)

// AggregateStore is the storage surface the worker needs: raw rows in,
// materialized aggregate tables out.
type AggregateStore interface {
	billboard.RowReader
	MaterializeAggregate(ctx context.Context, view, dateColumn string, buckets []core.PeriodBucket) error
}

// RefreshWorker recomputes aggregates over a trailing window of base rows.
type RefreshWorker struct {
	store      AggregateStore
	windowDays int
	now        func() time.Time
}

func NewRefreshWorker(store AggregateStore, windowDays int) *RefreshWorker {
	return &RefreshWorker{store: store, windowDays: windowDays, now: time.Now}
}

// RefreshAll rematerializes every aggregate table for both sources. Failures
// are collected per view so one bad table does not block the rest.
func (w *RefreshWorker) RefreshAll(ctx context.Context) error {
	var failed []string
	for _, source := range []billboard.Source{billboard.SourceServiceJobs, billboard.SourceDeliveryTickets} {
		if err := w.RefreshSource(ctx, source); err != nil {
			slog.ErrorContext(ctx, "Source refresh failed", "source", source, "error", err)
			failed = append(failed, string(source))
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("refresh failed for sources: %v", failed)
	}
	return nil
}

// RefreshSource rematerializes the daily, weekly and monthly aggregates of
// one source from a single base-table read.
func (w *RefreshWorker) RefreshSource(ctx context.Context, source billboard.Source) error {
	from, to := w.window()

	var byGranularity func(g core.Granularity) []core.PeriodBucket
	switch source {
	case billboard.SourceServiceJobs:
		jobs, err := w.store.ServiceJobs(ctx, from, to)
		if err != nil {
			return fmt.Errorf("fetch service jobs: %w", err)
		}
		byGranularity = func(g core.Granularity) []core.PeriodBucket {
			return billboard.AggregateServiceJobs(jobs, g)
		}
	case billboard.SourceDeliveryTickets:
		tickets, err := w.store.DeliveryTickets(ctx, from, to)
		if err != nil {
			return fmt.Errorf("fetch delivery tickets: %w", err)
		}
		byGranularity = func(g core.Granularity) []core.PeriodBucket {
			return billboard.AggregateDeliveryTickets(tickets, g)
		}
	default:
		return fmt.Errorf("%w: %q", billboard.ErrUnknownSource, source)
	}

	for _, g := range []core.Granularity{core.Daily, core.Weekly, core.Monthly} {
		view := billboard.ViewName(source, g)
		buckets := byGranularity(g)
		if err := w.store.MaterializeAggregate(ctx, view, g.DateColumn(), buckets); err != nil {
			return fmt.Errorf("materialize %s: %w", view, err)
		}
		slog.InfoContext(ctx, "Aggregate refreshed",
			"view", view,
			"buckets", len(buckets),
			"from", from.Format("2006-01-02"),
			"to", to.Format("2006-01-02"))
	}
	return nil
}

// HandleJobCompleted reacts to a completion event. Only service-job
// aggregates change when a job flips status.
func (w *RefreshWorker) HandleJobCompleted(ctx context.Context, msg *amqp.JobCompletedMessage) error {
	slog.InfoContext(ctx, "Refreshing service job aggregates after completion",
		"job_id", msg.JobID, "event_id", msg.EventID)
	return w.RefreshSource(ctx, billboard.SourceServiceJobs)
}

// Run refreshes on startup, then on every tick and on shutdown signal exit.
func (w *RefreshWorker) Run(ctx context.Context, interval time.Duration) error {
	if err := w.RefreshAll(ctx); err != nil {
		slog.ErrorContext(ctx, "Startup refresh failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Refresh worker stopping", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			if err := w.RefreshAll(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic refresh failed", "error", err)
			}
		}
	}
}

// window returns the trailing refresh range, widened to whole weeks so the
// weekly aggregate never holds a partial first bucket.
func (w *RefreshWorker) window() (time.Time, time.Time) {
	now := w.now()
	to := core.WeekEnd(now)
	from := core.WeekStart(now.AddDate(0, 0, -w.windowDays))
	return from, to
}
