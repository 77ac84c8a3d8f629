package services

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFirstPaymentMonth(t *testing.T) {
	tests := []struct {
		name       string
		enrolledAt time.Time
		want       time.Time
	}{
		{"mid month", date(2025, time.January, 10), date(2025, time.February, 1)},
		{"first of month", date(2025, time.March, 1), date(2025, time.April, 1)},
		{"last of month", date(2025, time.January, 31), date(2025, time.February, 1)},
		{"december rolls over", date(2024, time.December, 15), date(2025, time.January, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FirstPaymentMonth(tt.enrolledAt)
			if !got.Equal(tt.want) {
				t.Errorf("FirstPaymentMonth(%v) = %v, want %v", tt.enrolledAt, got, tt.want)
			}
		})
	}
}

func TestResolvePaymentStatus(t *testing.T) {
	enrolled := date(2025, time.January, 10)
	validMarch := date(2025, time.April, 1)

	tests := []struct {
		name          string
		enrolledAt    *time.Time
		validUntil    *time.Time
		storedStatus  string
		now           time.Time
		wantStatus    string
		wantExpired   bool
		wantRemaining int
	}{
		{
			name:         "no payments after grace is expired unpaid",
			enrolledAt:   &enrolled,
			validUntil:   nil,
			storedStatus: PaymentStatusUnpaid,
			now:          date(2025, time.February, 15),
			wantStatus:   PaymentStatusUnpaid,
			wantExpired:  true,
		},
		{
			name:         "grace period is never expired",
			enrolledAt:   &enrolled,
			validUntil:   nil,
			storedStatus: PaymentStatusUnpaid,
			now:          date(2025, time.January, 25),
			wantStatus:   PaymentStatusUnpaid,
			wantExpired:  false,
		},
		{
			name:          "paid with future window",
			enrolledAt:    &enrolled,
			validUntil:    &validMarch,
			storedStatus:  PaymentStatusPaid,
			now:           date(2025, time.March, 20),
			wantStatus:    PaymentStatusPaid,
			wantExpired:   false,
			wantRemaining: 12,
		},
		{
			name:         "stale paid flag past window forces unpaid",
			enrolledAt:   &enrolled,
			validUntil:   &validMarch,
			storedStatus: PaymentStatusPaid,
			now:          date(2025, time.April, 10),
			wantStatus:   PaymentStatusUnpaid,
			wantExpired:  true,
		},
		{
			name:         "unknown stored status normalizes to unpaid",
			enrolledAt:   &enrolled,
			validUntil:   &validMarch,
			storedStatus: "pending",
			now:          date(2025, time.March, 20),
			wantStatus:   PaymentStatusUnpaid,
			wantExpired:  false,
		},
		{
			name:         "nil enrollment is out of grace",
			enrolledAt:   nil,
			validUntil:   nil,
			storedStatus: PaymentStatusPaid,
			now:          date(2025, time.March, 20),
			wantStatus:   PaymentStatusUnpaid,
			wantExpired:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolvePaymentStatus(tt.enrolledAt, tt.validUntil, tt.storedStatus, tt.now)
			if got.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", got.Status, tt.wantStatus)
			}
			if got.IsExpired != tt.wantExpired {
				t.Errorf("IsExpired = %v, want %v", got.IsExpired, tt.wantExpired)
			}
			if tt.wantRemaining != 0 && got.DaysRemaining != tt.wantRemaining {
				t.Errorf("DaysRemaining = %d, want %d", got.DaysRemaining, tt.wantRemaining)
			}
		})
	}
}

func TestDaysRemainingRoundsUp(t *testing.T) {
	validUntil := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"exactly one day", time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC), 1},
		{"partial day counts as one", time.Date(2025, time.March, 31, 18, 0, 0, 0, time.UTC), 1},
		{"just over a day rounds to two", time.Date(2025, time.March, 30, 18, 0, 0, 0, time.UTC), 2},
		{"past window is zero", time.Date(2025, time.April, 2, 0, 0, 0, 0, time.UTC), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := daysRemaining(&validUntil, tt.now); got != tt.want {
				t.Errorf("daysRemaining = %d, want %d", got, tt.want)
			}
		})
	}
}
