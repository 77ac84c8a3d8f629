package services

import (
	"time"
)

// Payment status values shared by the resolver and the stored student flag.
const (
	PaymentStatusPaid   = "paid"
	PaymentStatusUnpaid = "unpaid"
)

// PaymentState is the derived standing of a student's tuition at an instant.
// Status is the effective status: the stored flag with expiry rules applied.
type PaymentState struct {
	Status        string `json:"status"`
	IsExpired     bool   `json:"is_expired"`
	DaysRemaining int    `json:"days_remaining"`
}

// FirstPaymentMonth returns the first day of the month following enrollment.
// Until that date the student is in a grace period and is never reported as
// expired.
func FirstPaymentMonth(enrolledAt time.Time) time.Time {
	y, m, _ := enrolledAt.Date()
	return time.Date(y, m+1, 1, 0, 0, 0, 0, enrolledAt.Location())
}

// ResolvePaymentStatus derives the effective payment standing of a student.
// It is pure: the only clock it sees is the now argument.
//
//   - Before FirstPaymentMonth(enrolledAt) the student is in a grace period
//     and IsExpired is false regardless of validUntil.
//   - After that, expired means validUntil is missing or in the past, and an
//     expired student is unpaid no matter what the stored flag says (the
//     stored flag is a cache that may lag).
//   - A nil enrollment date is treated as out of grace: expired unless a
//     future validUntil exists.
func ResolvePaymentStatus(enrolledAt, validUntil *time.Time, storedStatus string, now time.Time) PaymentState {
	inGrace := false
	if enrolledAt != nil {
		inGrace = now.Before(FirstPaymentMonth(*enrolledAt))
	}

	expired := false
	if !inGrace {
		expired = validUntil == nil || validUntil.Before(now)
	}

	status := storedStatus
	if status != PaymentStatusPaid {
		status = PaymentStatusUnpaid
	}
	if expired {
		status = PaymentStatusUnpaid
	}

	return PaymentState{
		Status:        status,
		IsExpired:     expired,
		DaysRemaining: daysRemaining(validUntil, now),
	}
}

func daysRemaining(validUntil *time.Time, now time.Time) int {
	if validUntil == nil {
		return 0
	}
	d := validUntil.Sub(now)
	if d <= 0 {
		return 0
	}
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	return days
}
