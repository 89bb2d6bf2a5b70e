// Package memory provides an in-memory row source for local development and
// tests. It never has aggregate views, so every read goes through the
// resolver's base-table fallback.
package memory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"opsboard/internal/billboard"
	"opsboard/internal/core"
)

type Store struct {
	mu      sync.Mutex
	jobs    []core.ServiceJob
	tickets []core.DeliveryTicket
}

func New(jobs []core.ServiceJob, tickets []core.DeliveryTicket) *Store {
	s := &Store{}
	for _, j := range jobs {
		s.addJob(j)
	}
	for _, t := range tickets {
		s.addTicket(t)
	}
	return s
}

// NewFromFiles seeds the store from plain-text files next to the binary.
// Missing files are fine; the store starts empty and fills via the API.
func NewFromFiles(base string) *Store {
	s := &Store{}
	for _, line := range readLines(filepath.Join(base, "seed_service_jobs.txt")) {
		if j, err := parseJobLine(line); err == nil {
			s.addJob(j)
		}
	}
	for _, line := range readLines(filepath.Join(base, "seed_delivery_tickets.txt")) {
		if t, err := parseTicketLine(line); err == nil {
			s.addTicket(t)
		}
	}
	return s
}

func (s *Store) addJob(j core.ServiceJob) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	j.ID = int64(len(s.jobs) + 1)
	s.jobs = append(s.jobs, j)
	return j.ID
}

func (s *Store) addTicket(t core.DeliveryTicket) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = int64(len(s.tickets) + 1)
	s.tickets = append(s.tickets, t)
	return t.ID
}

// AddJob stores a job and returns its id.
func (s *Store) AddJob(j core.ServiceJob) int64 {
	return s.addJob(j)
}

// AddTicket stores a ticket and returns its id.
func (s *Store) AddTicket(t core.DeliveryTicket) int64 {
	return s.addTicket(t)
}

// ServiceJobs implements billboard.RowReader.
func (s *Store) ServiceJobs(_ context.Context, from, to time.Time) ([]core.ServiceJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.ServiceJob
	for _, j := range s.jobs {
		if inRange(j.Date.Time, from, to) {
			out = append(out, j)
		}
	}
	return out, nil
}

// DeliveryTickets implements billboard.RowReader.
func (s *Store) DeliveryTickets(_ context.Context, from, to time.Time) ([]core.DeliveryTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.DeliveryTicket
	for _, t := range s.tickets {
		if inRange(t.Date.Time, from, to) {
			out = append(out, t)
		}
	}
	return out, nil
}

// ReadAggregateView implements billboard.ViewReader. The memory store keeps
// no materialized aggregates, so the resolver always recomputes.
func (s *Store) ReadAggregateView(_ context.Context, view, _ string, _, _ time.Time) ([]core.PeriodBucket, error) {
	return nil, fmt.Errorf("%w: %s", billboard.ErrMissingRelation, view)
}

// CompleteJob marks a stored job completed.
func (s *Store) CompleteJob(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.jobs {
		if s.jobs[i].ID == id {
			s.jobs[i].Status = core.JobCompleted
			return nil
		}
	}
	return fmt.Errorf("service job %d not found", id)
}

// parseJobLine parses "date,status,amount".
func parseJobLine(line string) (core.ServiceJob, error) {
	parts := strings.Split(line, ",")
	if len(parts) < 3 {
		return core.ServiceJob{}, fmt.Errorf("malformed job line: %q", line)
	}
	d, err := core.ParseDate(strings.TrimSpace(parts[0]))
	if err != nil {
		return core.ServiceJob{}, err
	}
	return core.ServiceJob{
		Status: core.JobStatus(strings.TrimSpace(parts[1])),
		Amount: core.ParseAmount(parts[2]),
		Date:   d,
	}, nil
}

// parseTicketLine parses "date,status,amount,gallons[,qty]".
func parseTicketLine(line string) (core.DeliveryTicket, error) {
	parts := strings.Split(line, ",")
	if len(parts) < 4 {
		return core.DeliveryTicket{}, fmt.Errorf("malformed ticket line: %q", line)
	}
	d, err := core.ParseDate(strings.TrimSpace(parts[0]))
	if err != nil {
		return core.DeliveryTicket{}, err
	}
	qty := ""
	if len(parts) > 4 {
		qty = parts[4]
	}
	return core.DeliveryTicket{
		Status:  core.TicketStatus(strings.TrimSpace(parts[1])),
		Amount:  core.ParseAmount(parts[2]),
		Gallons: core.ResolveGallons(parts[3], qty),
		Date:    d,
	}, nil
}

func inRange(d, from, to time.Time) bool {
	return !d.Before(from) && !d.After(to)
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}
