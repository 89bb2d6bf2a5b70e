package core

import (
	"testing"
	"time"
)

func TestWeekStart(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "monday resolves to itself",
			in:   time.Date(2025, 8, 18, 14, 30, 0, 0, time.UTC),
			want: time.Date(2025, 8, 18, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "wednesday resolves to preceding monday",
			in:   time.Date(2025, 8, 20, 9, 0, 0, 0, time.UTC),
			want: time.Date(2025, 8, 18, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "sunday resolves to monday six days earlier",
			in:   time.Date(2025, 8, 24, 23, 59, 0, 0, time.UTC),
			want: time.Date(2025, 8, 18, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "week spanning month boundary",
			in:   time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), // Friday
			want: time.Date(2025, 7, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "week spanning year boundary",
			in:   time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC), // Wednesday
			want: time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WeekStart(tt.in)
			if !got.Equal(tt.want) {
				t.Errorf("WeekStart(%v) = %v, want %v", tt.in, got, tt.want)
			}
			if got.Weekday() != time.Monday {
				t.Errorf("WeekStart(%v) fell on %v, want Monday", tt.in, got.Weekday())
			}
		})
	}
}

func TestWeekStartBracketsDate(t *testing.T) {
	// weekStart(d) <= d <= weekEnd(weekStart(d)) for a full year of dates.
	d := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 365; i++ {
		start := WeekStart(d)
		end := WeekEnd(start)
		if start.After(d) {
			t.Fatalf("WeekStart(%v) = %v is after the date itself", d, start)
		}
		if end.Before(d) {
			t.Fatalf("WeekEnd(%v) = %v is before the date itself", d, end)
		}
		if got := end.Sub(start); got != 6*24*time.Hour+23*time.Hour+59*time.Minute+59*time.Second+999*time.Millisecond {
			t.Fatalf("week span = %v for %v", got, d)
		}
		d = d.AddDate(0, 0, 1)
	}
}

func TestWeekStartSundayEqualsSixDaysBack(t *testing.T) {
	// Every Sunday in 2025.
	d := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)
	for d.Year() == 2025 {
		if got, want := WeekStart(d), WeekStart(d.AddDate(0, 0, -6)); !got.Equal(want) {
			t.Fatalf("WeekStart(%v) = %v, want %v", d, got, want)
		}
		d = d.AddDate(0, 0, 7)
	}
}

func TestTruncate(t *testing.T) {
	in := time.Date(2025, 8, 24, 18, 45, 12, 0, time.UTC) // Sunday

	tests := []struct {
		name string
		g    Granularity
		want time.Time
	}{
		{"daily", Daily, time.Date(2025, 8, 24, 0, 0, 0, 0, time.UTC)},
		{"weekly", Weekly, time.Date(2025, 8, 18, 0, 0, 0, 0, time.UTC)},
		{"monthly", Monthly, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)},
		{"unknown falls back to daily", Granularity("hourly"), time.Date(2025, 8, 24, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(in, tt.g); !got.Equal(tt.want) {
				t.Errorf("Truncate(%v, %s) = %v, want %v", in, tt.g, got, tt.want)
			}
		})
	}
}

func TestGranularityDateColumn(t *testing.T) {
	tests := []struct {
		g    Granularity
		want string
	}{
		{Daily, "day"},
		{Weekly, "week_start"},
		{Monthly, "month_start"},
	}
	for _, tt := range tests {
		if got := tt.g.DateColumn(); got != tt.want {
			t.Errorf("%s.DateColumn() = %q, want %q", tt.g, got, tt.want)
		}
	}
}
