package sheets

import (
	"testing"
	"time"

	"opsboard/internal/core"
)

func window(t *testing.T, from, to string) (time.Time, time.Time) {
	t.Helper()
	f, err := core.ParseDate(from)
	if err != nil {
		t.Fatal(err)
	}
	u, err := core.ParseDate(to)
	if err != nil {
		t.Fatal(err)
	}
	return f.Time, u.Time
}

func TestParseServiceJobs(t *testing.T) {
	from, to := window(t, "2025-03-01", "2025-03-31")

	t.Run("header mapping is order and case insensitive", func(t *testing.T) {
		values := [][]interface{}{
			{"Amount", "date", "STATUS", "Id"},
			{"500", "2025-03-03", "completed", "7"},
			{"200.50", "2025-03-05", "scheduled", "8"},
		}

		jobs, skipped := parseServiceJobs(values, from, to)
		if skipped != 0 {
			t.Errorf("expected 0 skipped, got %d", skipped)
		}
		if len(jobs) != 2 {
			t.Fatalf("expected 2 jobs, got %d", len(jobs))
		}
		if jobs[0].ID != 7 || jobs[0].Status != core.JobCompleted {
			t.Errorf("unexpected first job: %+v", jobs[0])
		}
		if jobs[1].Amount.String() != "200.5" {
			t.Errorf("expected amount 200.5, got %s", jobs[1].Amount)
		}
	})

	t.Run("rows outside the window are dropped silently", func(t *testing.T) {
		values := [][]interface{}{
			{"Date", "Status", "Amount"},
			{"2025-02-28", "completed", "100"},
			{"2025-03-03", "completed", "200"},
			{"2025-04-01", "completed", "300"},
		}

		jobs, skipped := parseServiceJobs(values, from, to)
		if skipped != 0 {
			t.Errorf("expected 0 skipped, got %d", skipped)
		}
		if len(jobs) != 1 || jobs[0].Amount.String() != "200" {
			t.Errorf("unexpected jobs: %+v", jobs)
		}
	})

	t.Run("malformed dates are counted and skipped", func(t *testing.T) {
		values := [][]interface{}{
			{"Date", "Status", "Amount"},
			{"not-a-date", "completed", "100"},
			{"2025-03-03", "completed", "200"},
			{"", "scheduled", "50"},
		}

		jobs, skipped := parseServiceJobs(values, from, to)
		if skipped != 2 {
			t.Errorf("expected 2 skipped, got %d", skipped)
		}
		if len(jobs) != 1 {
			t.Errorf("expected 1 job, got %d", len(jobs))
		}
	})

	t.Run("missing required headers skips everything", func(t *testing.T) {
		values := [][]interface{}{
			{"When", "State", "Total"},
			{"2025-03-03", "completed", "200"},
		}

		jobs, skipped := parseServiceJobs(values, from, to)
		if len(jobs) != 0 || skipped != 1 {
			t.Errorf("expected all rows skipped, got jobs=%d skipped=%d", len(jobs), skipped)
		}
	})

	t.Run("empty sheet", func(t *testing.T) {
		jobs, skipped := parseServiceJobs(nil, from, to)
		if len(jobs) != 0 || skipped != 0 {
			t.Errorf("expected nothing, got jobs=%d skipped=%d", len(jobs), skipped)
		}
	})
}

func TestParseDeliveryTickets(t *testing.T) {
	from, to := window(t, "2025-03-01", "2025-03-31")

	t.Run("gallons prefer explicit delivered value", func(t *testing.T) {
		values := [][]interface{}{
			{"Date", "Status", "Amount", "GallonsDelivered", "Qty"},
			{"2025-03-03", "normal", "250", "100", "90"},
			{"2025-03-04", "normal", "120", "", "45"},
		}

		tickets, skipped := parseDeliveryTickets(values, from, to)
		if skipped != 0 {
			t.Errorf("expected 0 skipped, got %d", skipped)
		}
		if len(tickets) != 2 {
			t.Fatalf("expected 2 tickets, got %d", len(tickets))
		}
		if tickets[0].Gallons.String() != "100" {
			t.Errorf("expected delivered gallons 100, got %s", tickets[0].Gallons)
		}
		if tickets[1].Gallons.String() != "45" {
			t.Errorf("expected qty fallback 45, got %s", tickets[1].Gallons)
		}
	})

	t.Run("numeric cells from the API are coerced", func(t *testing.T) {
		// Sheets returns unformatted numbers as float64.
		values := [][]interface{}{
			{"Date", "Status", "Amount", "GallonsDelivered"},
			{"2025-03-03", "normal", float64(250.5), float64(100)},
		}

		tickets, _ := parseDeliveryTickets(values, from, to)
		if len(tickets) != 1 {
			t.Fatalf("expected 1 ticket, got %d", len(tickets))
		}
		if tickets[0].Amount.String() != "250.5" || tickets[0].Gallons.String() != "100" {
			t.Errorf("unexpected ticket: %+v", tickets[0])
		}
	})

	t.Run("status text passes through for the aggregator to judge", func(t *testing.T) {
		values := [][]interface{}{
			{"Date", "Status", "Amount"},
			{"2025-03-03", "VOID", "100"},
		}

		tickets, _ := parseDeliveryTickets(values, from, to)
		if len(tickets) != 1 {
			t.Fatalf("expected 1 ticket, got %d", len(tickets))
		}
		if !tickets[0].Status.Excluded() {
			t.Error("expected VOID to be flagged excluded downstream")
		}
	})
}
