package billboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"opsboard/internal/core"
)

type fakeViews struct {
	buckets []core.PeriodBucket
	err     error
	calls   int
}

func (f *fakeViews) ReadAggregateView(ctx context.Context, view, dateColumn string, from, to time.Time) ([]core.PeriodBucket, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.buckets, nil
}

type fakeRows struct {
	jobs    []core.ServiceJob
	tickets []core.DeliveryTicket
	err     error
}

func (f *fakeRows) ServiceJobs(ctx context.Context, from, to time.Time) ([]core.ServiceJob, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.jobs, nil
}

func (f *fakeRows) DeliveryTickets(ctx context.Context, from, to time.Time) ([]core.DeliveryTicket, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tickets, nil
}

func TestResolverAggregates(t *testing.T) {
	ctx := context.Background()
	from, _ := core.ParseDate("2025-03-03")
	to, _ := core.ParseDate("2025-03-09")

	t.Run("serves from view when present", func(t *testing.T) {
		views := &fakeViews{buckets: []core.PeriodBucket{{Key: "2025-03-03"}}}
		r := NewResolver(views, &fakeRows{})

		res, err := r.Aggregates(ctx, SourceServiceJobs, core.Weekly, from.Time, to.Time)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.UsedFallback {
			t.Error("expected no fallback when view exists")
		}
		if len(res.Buckets) != 1 || res.Buckets[0].Key != "2025-03-03" {
			t.Errorf("unexpected buckets: %+v", res.Buckets)
		}
	})

	t.Run("missing view falls back to base rows", func(t *testing.T) {
		rows := &fakeRows{jobs: []core.ServiceJob{
			job(t, "2025-03-03", core.JobCompleted, "500"),
			job(t, "2025-03-05", core.JobScheduled, "200"),
		}}
		views := &fakeViews{err: ErrMissingRelation}
		r := NewResolver(views, rows)

		res, err := r.Aggregates(ctx, SourceServiceJobs, core.Weekly, from.Time, to.Time)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.UsedFallback {
			t.Fatal("expected fallback")
		}
		if res.FallbackReason == "" || res.Hint == "" {
			t.Error("expected fallback reason and hint to be set")
		}

		// Fallback must produce the same shape direct aggregation would.
		want := AggregateServiceJobs(rows.jobs, core.Weekly)
		if len(res.Buckets) != len(want) {
			t.Fatalf("expected %d buckets, got %d", len(want), len(res.Buckets))
		}
		if res.Buckets[0].Key != want[0].Key {
			t.Errorf("expected key %s, got %s", want[0].Key, res.Buckets[0].Key)
		}
		if !res.Buckets[0].Metrics.CompletedRevenue.Equal(want[0].Metrics.CompletedRevenue) {
			t.Errorf("fallback metrics diverge from direct aggregation")
		}
	})

	t.Run("missing view falls back for delivery tickets too", func(t *testing.T) {
		rows := &fakeRows{tickets: []core.DeliveryTicket{
			ticket(t, "2025-03-03", core.TicketNormal, "250", "100"),
			ticket(t, "2025-03-04", core.TicketVoid, "100", "50"),
		}}
		r := NewResolver(&fakeViews{err: ErrMissingRelation}, rows)

		res, err := r.Aggregates(ctx, SourceDeliveryTickets, core.Weekly, from.Time, to.Time)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.UsedFallback {
			t.Fatal("expected fallback")
		}
		if got := SumBuckets(res.Buckets); got.Tickets != 1 || got.Gallons.String() != "100" {
			t.Errorf("unexpected totals: %+v", got)
		}
	})

	t.Run("non-missing view error propagates without fallback", func(t *testing.T) {
		permErr := errors.New("permission denied for relation service_jobs_weekly")
		rows := &fakeRows{jobs: []core.ServiceJob{job(t, "2025-03-03", core.JobCompleted, "500")}}
		r := NewResolver(&fakeViews{err: permErr}, rows)

		_, err := r.Aggregates(ctx, SourceServiceJobs, core.Weekly, from.Time, to.Time)
		if err == nil {
			t.Fatal("expected error")
		}
		if !errors.Is(err, permErr) {
			t.Errorf("expected wrapped permission error, got %v", err)
		}
	})

	t.Run("base row error during fallback propagates", func(t *testing.T) {
		rowErr := errors.New("connection reset")
		r := NewResolver(&fakeViews{err: ErrMissingRelation}, &fakeRows{err: rowErr})

		_, err := r.Aggregates(ctx, SourceServiceJobs, core.Weekly, from.Time, to.Time)
		if !errors.Is(err, rowErr) {
			t.Errorf("expected wrapped row error, got %v", err)
		}
	})

	t.Run("nil view reader goes straight to base rows", func(t *testing.T) {
		rows := &fakeRows{jobs: []core.ServiceJob{job(t, "2025-03-03", core.JobCompleted, "10")}}
		r := NewResolver(nil, rows)

		res, err := r.Aggregates(ctx, SourceServiceJobs, core.Weekly, from.Time, to.Time)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.UsedFallback {
			t.Error("expected fallback result")
		}
	})

	t.Run("rejects unknown source and granularity", func(t *testing.T) {
		r := NewResolver(&fakeViews{}, &fakeRows{})

		if _, err := r.Aggregates(ctx, "invoices", core.Weekly, from.Time, to.Time); !errors.Is(err, ErrUnknownSource) {
			t.Errorf("expected ErrUnknownSource, got %v", err)
		}
		if _, err := r.Aggregates(ctx, SourceServiceJobs, "hourly", from.Time, to.Time); !errors.Is(err, ErrUnknownGranularity) {
			t.Errorf("expected ErrUnknownGranularity, got %v", err)
		}
	})
}

func TestViewName(t *testing.T) {
	cases := []struct {
		source Source
		g      core.Granularity
		want   string
	}{
		{SourceServiceJobs, core.Daily, "service_jobs_daily"},
		{SourceServiceJobs, core.Weekly, "service_jobs_weekly"},
		{SourceDeliveryTickets, core.Monthly, "delivery_tickets_monthly"},
	}
	for _, c := range cases {
		if got := ViewName(c.source, c.g); got != c.want {
			t.Errorf("ViewName(%s, %s) = %s, want %s", c.source, c.g, got, c.want)
		}
	}
}
