package dates

import (
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
)

func fixedResolver(t *testing.T, at time.Time) *Resolver {
	t.Helper()
	r, err := NewResolver(DefaultTimezone)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	r.now = func() time.Time { return at }
	return r
}

func TestResolve(t *testing.T) {
	// 2025-10-15 12:00 UTC is still 2025-10-15 in Sao Paulo (UTC-3).
	r := fixedResolver(t, time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC))

	want := civil.Date{Year: 2025, Month: 10, Day: 15}

	tests := []struct {
		input   string
		want    civil.Date
		wantErr bool
	}{
		{"today", want, false},
		{"TODAY", want, false},
		{"", want, false},
		{"yesterday", want.AddDays(-1), false},
		{"Yesterday", want.AddDays(-1), false},
		{"2025-10-15", want, false},
		{"15/10/2025", want, false},
		{"15-10-2025", want, false},
		{"2025/10/15", want, false},
		{"not-a-date", civil.Date{}, true},
		{"2025-13-01", civil.Date{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := r.Resolve(tt.input)
			if tt.wantErr {
				var derr *InvalidDateError
				if !errors.As(err, &derr) {
					t.Fatalf("Resolve(%q) error = %v, want InvalidDateError", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestResolve_TimezoneBoundary(t *testing.T) {
	// 01:00 UTC on the 16th is still the 15th in Sao Paulo.
	r := fixedResolver(t, time.Date(2025, 10, 16, 1, 0, 0, 0, time.UTC))

	got, err := r.Resolve("today")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := civil.Date{Year: 2025, Month: 10, Day: 15}
	if got != want {
		t.Errorf("today = %v, want %v", got, want)
	}
}

func TestMonthLabel(t *testing.T) {
	d := civil.Date{Year: 2025, Month: 3, Day: 7}
	if got := MonthLabel(d); got != "2025-03" {
		t.Errorf("MonthLabel = %q, want 2025-03", got)
	}
	// Resolving the same date twice yields an identical label.
	if MonthLabel(d) != MonthLabel(d) {
		t.Error("MonthLabel is not deterministic")
	}
}

func TestParseMonthLabel(t *testing.T) {
	r := fixedResolver(t, time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC))

	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"", "2025-10", false},
		{"2024-01", "2024-01", false},
		{"1/2024", "2024-01", false},
		{"03/2024", "2024-03", false},
		{"2024", "2024-01", false},
		{"2024-13", "", true},
		{"13/2024", "", true},
		{"january", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := r.ParseMonthLabel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMonthLabel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMonthLabel(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsMonthLabel(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"2025-10", true},
		{"2024-01", true},
		{"users", false},
		{"2025-13", false},
		{"2025-1", false},
		{"25-10", false},
	}
	for _, tt := range tests {
		if got := IsMonthLabel(tt.name); got != tt.want {
			t.Errorf("IsMonthLabel(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
