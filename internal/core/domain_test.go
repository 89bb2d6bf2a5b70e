package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain integer", "250", "250"},
		{"decimal", "512.50", "512.5"},
		{"currency prefix", "$1,250.00", "1250"},
		{"empty coerces to zero", "", "0"},
		{"garbage coerces to zero", "n/a", "0"},
		{"whitespace coerces to zero", "   ", "0"},
		{"negative preserved", "-10.5", "-10.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAmount(tt.in)
			if got.String() != tt.want {
				t.Errorf("ParseAmount(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestResolveGallons(t *testing.T) {
	tests := []struct {
		name             string
		gallonsDelivered string
		qty              string
		want             string
	}{
		{"prefers explicit gallons", "100", "50", "100"},
		{"falls back to qty", "", "50", "50"},
		{"non-numeric gallons coerces to zero, no qty fallback", "abc", "50", "0"},
		{"both empty", "", "", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveGallons(tt.gallonsDelivered, tt.qty)
			if got.String() != tt.want {
				t.Errorf("ResolveGallons(%q, %q) = %s, want %s", tt.gallonsDelivered, tt.qty, got, tt.want)
			}
		})
	}
}

func TestTicketStatusExcluded(t *testing.T) {
	tests := []struct {
		status TicketStatus
		want   bool
	}{
		{TicketNormal, false},
		{TicketVoid, true},
		{TicketCanceled, true},
		{TicketStatus("VOID"), true},
		{TicketStatus("cancelled"), true},
		{TicketStatus(""), false},
		{TicketStatus("delivered"), false},
	}
	for _, tt := range tests {
		if got := tt.status.Excluded(); got != tt.want {
			t.Errorf("TicketStatus(%q).Excluded() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestServiceJobValidate(t *testing.T) {
	job := ServiceJob{Status: JobCompleted, Amount: decimal.NewFromInt(500), Date: NewDate(2025, 8, 18)}
	if err := job.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}

	job.Date = Date{}
	if err := job.Validate(); err == nil {
		t.Error("Validate() with zero date should fail")
	}
}
