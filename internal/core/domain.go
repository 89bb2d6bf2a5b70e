package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	JobCompleted   JobStatus = "completed"
	JobScheduled   JobStatus = "scheduled"
	JobAssigned    JobStatus = "assigned"
	JobConfirmed   JobStatus = "confirmed"
	JobDeferred    JobStatus = "deferred"
	JobUnscheduled JobStatus = "unscheduled"
	JobInProgress  JobStatus = "in_progress"
	JobCanceled    JobStatus = "canceled"
)

const (
	TicketNormal   TicketStatus = "normal"
	TicketVoid     TicketStatus = "void"
	TicketCanceled TicketStatus = "canceled"
)

type (
	JobStatus    string
	TicketStatus string

	Date struct {
		time.Time
	}

	// ServiceJob is a normalized service-job row. Rows are immutable once
	// fetched; the source of truth lives in the external store.
	ServiceJob struct {
		ID     int64
		Status JobStatus
		Amount decimal.Decimal
		Date   Date
	}

	// DeliveryTicket is a normalized delivery-ticket row. Gallons is already
	// resolved from whichever quantity field the source carried.
	DeliveryTicket struct {
		ID      int64
		Status  TicketStatus
		Amount  decimal.Decimal
		Gallons decimal.Decimal
		Date    Date
	}
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidAmount = errors.New("invalid amount")
)

// NewDate creates a Date at UTC midnight from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string into a Date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Key formats the date as a YYYY-MM-DD bucket key.
func (d Date) Key() string {
	return d.Format("2006-01-02")
}

// Excluded reports whether a ticket must be omitted from aggregation
// entirely (not bucketed as zero).
func (s TicketStatus) Excluded() bool {
	switch strings.ToLower(strings.TrimSpace(string(s))) {
	case string(TicketVoid), string(TicketCanceled), "cancelled":
		return true
	}
	return false
}

// ParseAmount coerces a free-form numeric string to a decimal. Missing or
// non-numeric values become zero rather than an error: the dashboard favors
// availability over strict validation.
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return v
}

// ResolveGallons picks the gallons figure for a delivery ticket, preferring
// the explicit gallons-delivered field and falling back to the generic
// quantity field. Non-numeric input coerces to zero.
func ResolveGallons(gallonsDelivered, qty string) decimal.Decimal {
	if strings.TrimSpace(gallonsDelivered) != "" {
		return ParseAmount(gallonsDelivered)
	}
	return ParseAmount(qty)
}

func (j ServiceJob) Validate() error {
	if err := j.Date.Validate(); err != nil {
		return err
	}
	if j.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

func (t DeliveryTicket) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if t.Amount.IsNegative() || t.Gallons.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}
