package services

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestParseMonth(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{"valid month", "2025-03", time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), false},
		{"with whitespace", " 2025-03 ", time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), false},
		{"month out of range", "2025-13", time.Time{}, true},
		{"missing month part", "2025", time.Time{}, true},
		{"full date rejected", "2025-03-15", time.Time{}, true},
		{"empty", "", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMonth(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseMonth(%q) expected error, got %v", tt.input, got)
				}
				if !errors.Is(err, ErrValidation) {
					t.Errorf("ParseMonth(%q) error not a validation error: %v", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMonth(%q) unexpected error: %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseMonth(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidUntilForMonth(t *testing.T) {
	tests := []struct {
		name  string
		month time.Time
		want  time.Time
	}{
		{"march", date(2025, time.March, 1), date(2025, time.April, 1)},
		{"december rolls to next year", date(2025, time.December, 1), date(2026, time.January, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidUntilForMonth(tt.month); !got.Equal(tt.want) {
				t.Errorf("ValidUntilForMonth(%v) = %v, want %v", tt.month, got, tt.want)
			}
		})
	}
}

func TestOutstandingMonths(t *testing.T) {
	now := date(2025, time.May, 15)

	tests := []struct {
		name  string
		paid  map[string]bool
		lastN int
		want  []string
	}{
		{
			name:  "nothing paid",
			paid:  map[string]bool{},
			lastN: 3,
			want:  []string{"2025-05", "2025-04", "2025-03"},
		},
		{
			name:  "gaps only",
			paid:  map[string]bool{"2025-05": true, "2025-03": true},
			lastN: 4,
			want:  []string{"2025-04", "2025-02"},
		},
		{
			name:  "fully paid window",
			paid:  map[string]bool{"2025-05": true, "2025-04": true},
			lastN: 2,
			want:  []string{},
		},
		{
			name:  "window crosses year boundary",
			paid:  map[string]bool{},
			lastN: 6,
			want:  []string{"2025-05", "2025-04", "2025-03", "2025-02", "2025-01", "2024-12"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := outstandingMonths(tt.paid, tt.lastN, now)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("outstandingMonths = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMonthKey(t *testing.T) {
	if got := MonthKey(date(2025, time.March, 17)); got != "2025-03" {
		t.Errorf("MonthKey = %q, want %q", got, "2025-03")
	}
}
