// Package billboard computes the dashboard KPIs: it folds raw service-job
// and delivery-ticket rows into period buckets, resolves aggregates from
// precomputed views with a transparent base-table fallback, and composes the
// weekly billboard summary.
package billboard

import (
	"context"
	"errors"
	"time"

	"opsboard/internal/core"
)

const (
	SourceServiceJobs     Source = "service_jobs"
	SourceDeliveryTickets Source = "delivery_tickets"
)

// Source names an aggregation input.
type Source string

// IsValid returns true if the source is one of the known inputs.
func (s Source) IsValid() bool {
	switch s {
	case SourceServiceJobs, SourceDeliveryTickets:
		return true
	default:
		return false
	}
}

// ViewName returns the aggregate view for a source and granularity, e.g.
// service_jobs_daily or delivery_tickets_weekly.
func ViewName(s Source, g core.Granularity) string {
	return string(s) + "_" + string(g)
}

// Ports for outbound adapters.
type (
	// RowReader fetches raw rows restricted to an inclusive date range.
	RowReader interface {
		ServiceJobs(ctx context.Context, from, to time.Time) ([]core.ServiceJob, error)
		DeliveryTickets(ctx context.Context, from, to time.Time) ([]core.DeliveryTicket, error)
	}

	// ViewReader fetches precomputed buckets from a named aggregate view.
	// A missing view must surface as ErrMissingRelation; every other failure
	// class keeps its own identity.
	ViewReader interface {
		ReadAggregateView(ctx context.Context, view, dateColumn string, from, to time.Time) ([]core.PeriodBucket, error)
	}
)

var (
	// ErrMissingRelation marks a read against an aggregate view that does not
	// exist yet. It is the expected first-run condition and triggers
	// base-table fallback, never a hard failure.
	ErrMissingRelation = errors.New("aggregate view does not exist")

	// ErrSourceUnavailable marks a store that is unreachable or unconfigured.
	// Callers recover by serving an all-zero payload.
	ErrSourceUnavailable = errors.New("data source unavailable")

	// ErrUnknownSource and ErrUnknownGranularity reject malformed requests
	// before any store round-trip.
	ErrUnknownSource      = errors.New("unknown aggregation source")
	ErrUnknownGranularity = errors.New("unknown granularity")
)
