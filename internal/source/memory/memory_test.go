package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"opsboard/internal/billboard"
	"opsboard/internal/core"
)

func date(t *testing.T, s string) core.Date {
	t.Helper()
	d, err := core.ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}

func TestStoreRangeReads(t *testing.T) {
	s := New(
		[]core.ServiceJob{
			{Status: core.JobCompleted, Amount: core.ParseAmount("500"), Date: date(t, "2025-03-03")},
			{Status: core.JobScheduled, Amount: core.ParseAmount("200"), Date: date(t, "2025-04-10")},
		},
		[]core.DeliveryTicket{
			{Status: core.TicketNormal, Amount: core.ParseAmount("250"), Gallons: core.ParseAmount("100"), Date: date(t, "2025-03-05")},
		},
	)

	from := date(t, "2025-03-01")
	to := date(t, "2025-03-31")

	jobs, err := s.ServiceJobs(context.Background(), from.Time, to.Time)
	if err != nil {
		t.Fatalf("ServiceJobs: %v", err)
	}
	if len(jobs) != 1 || jobs[0].Status != core.JobCompleted {
		t.Errorf("unexpected jobs: %+v", jobs)
	}

	tickets, err := s.DeliveryTickets(context.Background(), from.Time, to.Time)
	if err != nil {
		t.Fatalf("DeliveryTickets: %v", err)
	}
	if len(tickets) != 1 {
		t.Errorf("expected 1 ticket, got %d", len(tickets))
	}
}

func TestStoreHasNoAggregateViews(t *testing.T) {
	s := New(nil, nil)
	from := date(t, "2025-03-01")
	to := date(t, "2025-03-31")

	_, err := s.ReadAggregateView(context.Background(), "service_jobs_weekly", "week_start", from.Time, to.Time)
	if !errors.Is(err, billboard.ErrMissingRelation) {
		t.Errorf("expected ErrMissingRelation, got %v", err)
	}
}

func TestStoreCompleteJob(t *testing.T) {
	s := New(nil, nil)
	id := s.AddJob(core.ServiceJob{Status: core.JobScheduled, Amount: core.ParseAmount("100"), Date: date(t, "2025-03-03")})

	if err := s.CompleteJob(context.Background(), id); err != nil {
		t.Fatalf("CompleteJob: %v", err)
	}

	from := date(t, "2025-03-01")
	to := date(t, "2025-03-31")
	jobs, _ := s.ServiceJobs(context.Background(), from.Time, to.Time)
	if len(jobs) != 1 || jobs[0].Status != core.JobCompleted {
		t.Errorf("expected completed job, got %+v", jobs)
	}

	if err := s.CompleteJob(context.Background(), 999); err == nil {
		t.Error("expected error for unknown id")
	}
}

func TestNewFromFiles(t *testing.T) {
	dir := t.TempDir()
	jobs := "# seed\n2025-03-03,completed,500\n2025-03-05,scheduled,200\n\nmalformed\n"
	tickets := "2025-03-04,normal,250,100\n2025-03-06,void,100,50\n"
	if err := os.WriteFile(filepath.Join(dir, "seed_service_jobs.txt"), []byte(jobs), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "seed_delivery_tickets.txt"), []byte(tickets), 0644); err != nil {
		t.Fatal(err)
	}

	s := NewFromFiles(dir)

	from := date(t, "2025-03-01")
	to := date(t, "2025-03-31")
	js, _ := s.ServiceJobs(context.Background(), from.Time, to.Time)
	if len(js) != 2 {
		t.Errorf("expected 2 seeded jobs, got %d", len(js))
	}
	ts, _ := s.DeliveryTickets(context.Background(), from.Time, to.Time)
	if len(ts) != 2 {
		t.Errorf("expected 2 seeded tickets, got %d", len(ts))
	}

	// Missing seed files yield an empty, usable store.
	empty := NewFromFiles(t.TempDir())
	js, _ = empty.ServiceJobs(context.Background(), from.Time, to.Time)
	if len(js) != 0 {
		t.Errorf("expected empty store, got %d jobs", len(js))
	}
}
