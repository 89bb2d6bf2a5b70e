// Package storage implements the SQLite backend: base tables for service
// jobs and delivery tickets, plus worker-materialized aggregate tables that
// serve as the precomputed views read by the billboard resolver.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"opsboard/internal/billboard"
	"opsboard/internal/core"

	_ "modernc.org/sqlite"
)

// ErrJobNotFound is returned when a completion targets an id with no row.
var ErrJobNotFound = errors.New("service job not found")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ServiceJobs implements billboard.RowReader. Dates are stored as ISO-8601
// text, so lexicographic BETWEEN matches chronological order.
func (r *SQLiteRepository) ServiceJobs(ctx context.Context, from, to time.Time) ([]core.ServiceJob, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, status, amount, job_date
		 FROM service_jobs
		 WHERE job_date BETWEEN ? AND ?
		 ORDER BY job_date`,
		from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("query service jobs: %w", err)
	}
	defer rows.Close()

	var jobs []core.ServiceJob
	for rows.Next() {
		var (
			id           int64
			status       string
			amount, date string
		)
		if err := rows.Scan(&id, &status, &amount, &date); err != nil {
			return nil, fmt.Errorf("scan service job: %w", err)
		}
		d, err := core.ParseDate(date)
		if err != nil {
			slog.WarnContext(ctx, "Skipping service job with malformed date", "id", id, "date", date)
			continue
		}
		jobs = append(jobs, core.ServiceJob{
			ID:     id,
			Status: core.JobStatus(status),
			Amount: core.ParseAmount(amount),
			Date:   d,
		})
	}
	return jobs, rows.Err()
}

// DeliveryTickets implements billboard.RowReader.
func (r *SQLiteRepository) DeliveryTickets(ctx context.Context, from, to time.Time) ([]core.DeliveryTicket, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, status, amount, gallons_delivered, qty, ticket_date
		 FROM delivery_tickets
		 WHERE ticket_date BETWEEN ? AND ?
		 ORDER BY ticket_date`,
		from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("query delivery tickets: %w", err)
	}
	defer rows.Close()

	var tickets []core.DeliveryTicket
	for rows.Next() {
		var (
			id           int64
			status       string
			amount, date string
			gallons, qty sql.NullString
		)
		if err := rows.Scan(&id, &status, &amount, &gallons, &qty, &date); err != nil {
			return nil, fmt.Errorf("scan delivery ticket: %w", err)
		}
		d, err := core.ParseDate(date)
		if err != nil {
			slog.WarnContext(ctx, "Skipping delivery ticket with malformed date", "id", id, "date", date)
			continue
		}
		tickets = append(tickets, core.DeliveryTicket{
			ID:      id,
			Status:  core.TicketStatus(status),
			Amount:  core.ParseAmount(amount),
			Gallons: core.ResolveGallons(gallons.String, qty.String),
			Date:    d,
		})
	}
	return tickets, rows.Err()
}

// ReadAggregateView implements billboard.ViewReader against the materialized
// aggregate tables. A table the worker has not materialized yet surfaces as
// billboard.ErrMissingRelation so the resolver can fall back.
func (r *SQLiteRepository) ReadAggregateView(ctx context.Context, view, dateColumn string, from, to time.Time) ([]core.PeriodBucket, error) {
	if err := validateViewName(view); err != nil {
		return nil, err
	}

	var query string
	if strings.HasPrefix(view, string(billboard.SourceServiceJobs)) {
		query = fmt.Sprintf(
			`SELECT %s, completed, scheduled, deferred,
			        completed_revenue, scheduled_revenue, pipeline_revenue
			 FROM %s WHERE %s BETWEEN ? AND ? ORDER BY %s`,
			dateColumn, view, dateColumn, dateColumn)
	} else {
		query = fmt.Sprintf(
			`SELECT %s, total_tickets, total_gallons, revenue
			 FROM %s WHERE %s BETWEEN ? AND ? ORDER BY %s`,
			dateColumn, view, dateColumn, dateColumn)
	}

	rows, err := r.db.QueryContext(ctx, query,
		from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		if isMissingRelation(err) {
			return nil, fmt.Errorf("%w: %s", billboard.ErrMissingRelation, view)
		}
		return nil, fmt.Errorf("query %s: %w", view, err)
	}
	defer rows.Close()

	var buckets []core.PeriodBucket
	for rows.Next() {
		var b core.PeriodBucket
		if strings.HasPrefix(view, string(billboard.SourceServiceJobs)) {
			var completedRev, scheduledRev, pipelineRev string
			if err := rows.Scan(&b.Key,
				&b.Metrics.Completed, &b.Metrics.Scheduled, &b.Metrics.Deferred,
				&completedRev, &scheduledRev, &pipelineRev); err != nil {
				return nil, fmt.Errorf("scan %s: %w", view, err)
			}
			b.Metrics.CompletedRevenue = core.ParseAmount(completedRev)
			b.Metrics.ScheduledRevenue = core.ParseAmount(scheduledRev)
			b.Metrics.PipelineRevenue = core.ParseAmount(pipelineRev)
		} else {
			var gallons, revenue string
			if err := rows.Scan(&b.Key, &b.Metrics.Tickets, &gallons, &revenue); err != nil {
				return nil, fmt.Errorf("scan %s: %w", view, err)
			}
			b.Metrics.Gallons = core.ParseAmount(gallons)
			b.Metrics.Revenue = core.ParseAmount(revenue)
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

// MaterializeAggregate replaces the contents of one aggregate table with the
// given buckets, creating the table on first refresh. The swap runs in a
// transaction so readers never observe a half-refreshed table.
func (r *SQLiteRepository) MaterializeAggregate(ctx context.Context, view, dateColumn string, buckets []core.PeriodBucket) error {
	if err := validateViewName(view); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin refresh tx: %w", err)
	}
	defer tx.Rollback()

	serviceView := strings.HasPrefix(view, string(billboard.SourceServiceJobs))

	var createStmt string
	if serviceView {
		createStmt = fmt.Sprintf(
			`CREATE TABLE IF NOT EXISTS %s (
			    %s TEXT PRIMARY KEY,
			    completed INTEGER NOT NULL DEFAULT 0,
			    scheduled INTEGER NOT NULL DEFAULT 0,
			    deferred INTEGER NOT NULL DEFAULT 0,
			    completed_revenue TEXT NOT NULL DEFAULT '0',
			    scheduled_revenue TEXT NOT NULL DEFAULT '0',
			    pipeline_revenue TEXT NOT NULL DEFAULT '0'
			)`, view, dateColumn)
	} else {
		createStmt = fmt.Sprintf(
			`CREATE TABLE IF NOT EXISTS %s (
			    %s TEXT PRIMARY KEY,
			    total_tickets INTEGER NOT NULL DEFAULT 0,
			    total_gallons TEXT NOT NULL DEFAULT '0',
			    revenue TEXT NOT NULL DEFAULT '0'
			)`, view, dateColumn)
	}
	if _, err := tx.ExecContext(ctx, createStmt); err != nil {
		return fmt.Errorf("create %s: %w", view, err)
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", view)); err != nil {
		return fmt.Errorf("clear %s: %w", view, err)
	}

	for _, b := range buckets {
		if serviceView {
			_, err = tx.ExecContext(ctx, fmt.Sprintf(
				`INSERT INTO %s (%s, completed, scheduled, deferred,
				                 completed_revenue, scheduled_revenue, pipeline_revenue)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`, view, dateColumn),
				b.Key, b.Metrics.Completed, b.Metrics.Scheduled, b.Metrics.Deferred,
				b.Metrics.CompletedRevenue.String(),
				b.Metrics.ScheduledRevenue.String(),
				b.Metrics.PipelineRevenue.String())
		} else {
			_, err = tx.ExecContext(ctx, fmt.Sprintf(
				`INSERT INTO %s (%s, total_tickets, total_gallons, revenue)
				 VALUES (?, ?, ?, ?)`, view, dateColumn),
				b.Key, b.Metrics.Tickets,
				b.Metrics.Gallons.String(), b.Metrics.Revenue.String())
		}
		if err != nil {
			return fmt.Errorf("insert into %s: %w", view, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit refresh tx: %w", err)
	}

	slog.InfoContext(ctx, "Aggregate table materialized", "view", view, "buckets", len(buckets))
	return nil
}

// CompleteJob marks a service job completed.
func (r *SQLiteRepository) CompleteJob(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE service_jobs
		 SET status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		string(core.JobCompleted), id)
	if err != nil {
		return fmt.Errorf("complete job %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("complete job %d: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: id %d", ErrJobNotFound, id)
	}

	slog.InfoContext(ctx, "Service job completed", "id", id)
	return nil
}

// InsertServiceJob stores one row and returns its id.
func (r *SQLiteRepository) InsertServiceJob(ctx context.Context, job core.ServiceJob) (int64, error) {
	if err := job.Validate(); err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO service_jobs (status, amount, job_date) VALUES (?, ?, ?)`,
		string(job.Status), job.Amount.String(), job.Date.Key())
	if err != nil {
		return 0, fmt.Errorf("insert service job: %w", err)
	}
	return res.LastInsertId()
}

// InsertDeliveryTicket stores one row and returns its id.
func (r *SQLiteRepository) InsertDeliveryTicket(ctx context.Context, ticket core.DeliveryTicket) (int64, error) {
	if err := ticket.Validate(); err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO delivery_tickets (status, amount, gallons_delivered, ticket_date)
		 VALUES (?, ?, ?, ?)`,
		string(ticket.Status), ticket.Amount.String(), ticket.Gallons.String(), ticket.Date.Key())
	if err != nil {
		return 0, fmt.Errorf("insert delivery ticket: %w", err)
	}
	return res.LastInsertId()
}

func validateViewName(view string) error {
	for _, s := range []billboard.Source{billboard.SourceServiceJobs, billboard.SourceDeliveryTickets} {
		for _, g := range []core.Granularity{core.Daily, core.Weekly, core.Monthly} {
			if view == billboard.ViewName(s, g) {
				return nil
			}
		}
	}
	return fmt.Errorf("%w: %q is not an aggregate view", billboard.ErrUnknownSource, view)
}

// modernc.org/sqlite reports a missing relation through the error text; the
// driver exposes no typed code for it.
func isMissingRelation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "no such table") || strings.Contains(msg, "no such view")
}
