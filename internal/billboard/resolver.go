package billboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"opsboard/internal/core"
)

// Result carries resolved buckets plus fallback diagnostics so callers can
// surface a degraded/slow-mode notice without treating fallback as an error.
type Result struct {
	Buckets        []core.PeriodBucket
	UsedFallback   bool
	FallbackReason string
	Hint           string
}

// Resolver reads precomputed aggregate views and transparently recomputes
// the same shape from base tables when a view does not exist yet.
type Resolver struct {
	views ViewReader
	rows  RowReader
}

func NewResolver(views ViewReader, rows RowReader) *Resolver {
	return &Resolver{views: views, rows: rows}
}

// Aggregates resolves buckets for a source and granularity over an inclusive
// date range. Only a missing view triggers fallback; permission errors,
// timeouts and malformed queries propagate as hard failures.
func (r *Resolver) Aggregates(ctx context.Context, source Source, g core.Granularity, from, to time.Time) (Result, error) {
	if !source.IsValid() {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}
	if !g.IsValid() {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownGranularity, g)
	}

	view := ViewName(source, g)

	if r.views != nil {
		buckets, err := r.views.ReadAggregateView(ctx, view, g.DateColumn(), from, to)
		if err == nil {
			return Result{Buckets: buckets}, nil
		}
		if !errors.Is(err, ErrMissingRelation) {
			return Result{}, fmt.Errorf("read aggregate view %s: %w", view, err)
		}
		slog.WarnContext(ctx, "Aggregate view missing, recomputing from base table",
			"view", view, "from", from.Format("2006-01-02"), "to", to.Format("2006-01-02"))
	}

	buckets, err := r.recompute(ctx, source, g, from, to)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Buckets:        buckets,
		UsedFallback:   true,
		FallbackReason: fmt.Sprintf("aggregate view %s does not exist", view),
		Hint:           fmt.Sprintf("run opsboard-worker (or an aggregate refresh) to materialize %s and avoid base-table scans", view),
	}, nil
}

func (r *Resolver) recompute(ctx context.Context, source Source, g core.Granularity, from, to time.Time) ([]core.PeriodBucket, error) {
	switch source {
	case SourceServiceJobs:
		jobs, err := r.rows.ServiceJobs(ctx, from, to)
		if err != nil {
			return nil, fmt.Errorf("fetch service jobs: %w", err)
		}
		return AggregateServiceJobs(jobs, g), nil
	default:
		tickets, err := r.rows.DeliveryTickets(ctx, from, to)
		if err != nil {
			return nil, fmt.Errorf("fetch delivery tickets: %w", err)
		}
		return AggregateDeliveryTickets(tickets, g), nil
	}
}
