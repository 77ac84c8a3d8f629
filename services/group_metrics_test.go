package services

import (
	"testing"
	"time"

	"oquvmarkaz_go/models"
)

func studentWith(monthly float64, status string, validUntil *time.Time, enrolledAt time.Time) models.Student {
	s := models.Student{
		MonthlyPayment:    monthly,
		PaymentStatus:     status,
		PaymentValidUntil: validUntil,
	}
	s.CreatedAt = enrolledAt
	return s
}

func TestComputeGroupMetrics(t *testing.T) {
	now := date(2025, time.March, 15)
	enrolled := date(2024, time.September, 1)
	validApril := date(2025, time.April, 1)
	validFeb := date(2025, time.February, 1)

	tests := []struct {
		name        string
		students    []models.Student
		wantCount   int
		wantRevenue float64
	}{
		{
			name:        "empty group",
			students:    nil,
			wantCount:   0,
			wantRevenue: 0,
		},
		{
			name: "mixed statuses count only effective paid",
			students: []models.Student{
				studentWith(300000, PaymentStatusPaid, &validApril, enrolled),
				studentWith(400000, PaymentStatusUnpaid, nil, enrolled),
				studentWith(500000, PaymentStatusPaid, &validApril, enrolled),
			},
			wantCount:   3,
			wantRevenue: 800000,
		},
		{
			name: "stale paid flag excluded from revenue",
			students: []models.Student{
				studentWith(300000, PaymentStatusPaid, &validFeb, enrolled),
			},
			wantCount:   1,
			wantRevenue: 0,
		},
		{
			name: "grace student counts as member but not revenue",
			students: []models.Student{
				studentWith(450000, PaymentStatusUnpaid, nil, date(2025, time.March, 5)),
			},
			wantCount:   1,
			wantRevenue: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count, revenue := ComputeGroupMetrics(tt.students, now)
			if count != tt.wantCount {
				t.Errorf("count = %d, want %d", count, tt.wantCount)
			}
			if revenue != tt.wantRevenue {
				t.Errorf("revenue = %v, want %v", revenue, tt.wantRevenue)
			}
		})
	}
}

func TestComputeGroupMetricsIdempotent(t *testing.T) {
	now := date(2025, time.March, 15)
	validApril := date(2025, time.April, 1)
	students := []models.Student{
		studentWith(300000, PaymentStatusPaid, &validApril, date(2024, time.September, 1)),
		studentWith(400000, PaymentStatusUnpaid, nil, date(2024, time.September, 1)),
	}

	c1, r1 := ComputeGroupMetrics(students, now)
	c2, r2 := ComputeGroupMetrics(students, now)
	if c1 != c2 || r1 != r2 {
		t.Errorf("recompute diverged: (%d, %v) vs (%d, %v)", c1, r1, c2, r2)
	}
}
