// Package sheets reads service jobs and delivery tickets from a Google
// spreadsheet. It is a row source only; aggregates are always recomputed.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"opsboard/internal/billboard"
	"opsboard/internal/core"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	jobsSheet     string
	ticketsSheet  string
}

var (
	_ billboard.RowReader  = (*Client)(nil)
	_ billboard.ViewReader = (*Client)(nil)
)

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID plus service-account credentials via
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
// Optional sheet names: GOOGLE_JOBS_SHEET_NAME (default "ServiceJobs") and
// GOOGLE_TICKETS_SHEET_NAME (default "DeliveryTickets").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	jobsSheet := strings.TrimSpace(os.Getenv("GOOGLE_JOBS_SHEET_NAME"))
	if jobsSheet == "" {
		jobsSheet = "ServiceJobs"
	}
	ticketsSheet := strings.TrimSpace(os.Getenv("GOOGLE_TICKETS_SHEET_NAME"))
	if ticketsSheet == "" {
		ticketsSheet = "DeliveryTickets"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		jobsSheet:     jobsSheet,
		ticketsSheet:  ticketsSheet,
	}, nil
}

// newSheetsService initializes a Sheets service from Service Account
// credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return service, nil
}

// ServiceJobs implements billboard.RowReader. The whole sheet is fetched and
// filtered in code; the Sheets API has no server-side range predicate.
func (c *Client) ServiceJobs(ctx context.Context, from, to time.Time) ([]core.ServiceJob, error) {
	values, err := c.readSheet(ctx, c.jobsSheet)
	if err != nil {
		return nil, err
	}

	jobs, skipped := parseServiceJobs(values, from, to)
	if skipped > 0 {
		slog.WarnContext(ctx, "Skipped malformed service job rows",
			"sheet", c.jobsSheet, "skipped", skipped)
	}
	return jobs, nil
}

// DeliveryTickets implements billboard.RowReader.
func (c *Client) DeliveryTickets(ctx context.Context, from, to time.Time) ([]core.DeliveryTicket, error) {
	values, err := c.readSheet(ctx, c.ticketsSheet)
	if err != nil {
		return nil, err
	}

	tickets, skipped := parseDeliveryTickets(values, from, to)
	if skipped > 0 {
		slog.WarnContext(ctx, "Skipped malformed delivery ticket rows",
			"sheet", c.ticketsSheet, "skipped", skipped)
	}
	return tickets, nil
}

// ReadAggregateView implements billboard.ViewReader. A spreadsheet carries no
// precomputed aggregates, so the resolver always recomputes.
func (c *Client) ReadAggregateView(_ context.Context, view, _ string, _, _ time.Time) ([]core.PeriodBucket, error) {
	return nil, fmt.Errorf("%w: %s", billboard.ErrMissingRelation, view)
}

func (c *Client) readSheet(ctx context.Context, sheet string) ([][]interface{}, error) {
	rng := fmt.Sprintf("%s!A:Z", sheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %s: %v", billboard.ErrSourceUnavailable, sheet, err)
	}
	return resp.Values, nil
}
