package services

import (
	"testing"

	"oquvmarkaz_go/config"
	"oquvmarkaz_go/models"
)

func teacher(id uint, name, status string) models.Teacher {
	t := models.Teacher{FirstName: name, Status: status}
	t.ID = id
	return t
}

func TestClampPayoutRate(t *testing.T) {
	tests := []struct {
		name string
		rate float64
		want float64
	}{
		{"below minimum", 0.10, config.MinPayoutRate},
		{"at minimum", 0.20, 0.20},
		{"inside range", 0.35, 0.35},
		{"at maximum", 0.60, 0.60},
		{"above maximum", 0.90, config.MaxPayoutRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampPayoutRate(tt.rate); got != tt.want {
				t.Errorf("ClampPayoutRate(%v) = %v, want %v", tt.rate, got, tt.want)
			}
		})
	}
}

func TestValidPayoutRate(t *testing.T) {
	if ValidPayoutRate(0.19) {
		t.Error("0.19 should be invalid")
	}
	if !ValidPayoutRate(0.20) || !ValidPayoutRate(0.60) {
		t.Error("bounds should be valid")
	}
	if ValidPayoutRate(0.61) {
		t.Error("0.61 should be invalid")
	}
}

func TestComputePayouts(t *testing.T) {
	teachers := []models.Teacher{
		teacher(1, "Dilnoza", "active"),
		teacher(2, "Botir", "active"),
	}
	groups := map[uint][]models.Group{
		1: {{CurrentStudents: 4, MonthlyRevenue: 1000000}},
		2: {{CurrentStudents: 6, MonthlyRevenue: 2000000}, {CurrentStudents: 5, MonthlyRevenue: 1000000}},
	}

	rows := ComputePayouts(teachers, groups, 0.35)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	// Sorted by revenue descending: Botir (3M) first.
	if rows[0].TeacherID != 2 {
		t.Errorf("expected teacher 2 first, got %d", rows[0].TeacherID)
	}
	if rows[0].Payout != 3000000*0.35 {
		t.Errorf("payout = %v, want %v", rows[0].Payout, 3000000*0.35)
	}
	if rows[0].GroupCount != 2 || rows[0].StudentCount != 11 {
		t.Errorf("group/student counts = %d/%d, want 2/11", rows[0].GroupCount, rows[0].StudentCount)
	}

	// Average share is 2M: 3M >= 1.2x avg is ahead, 1M <= 0.6x avg is delayed.
	if rows[0].Status != PayoutStatusAhead {
		t.Errorf("high earner status = %q, want %q", rows[0].Status, PayoutStatusAhead)
	}
	if rows[1].Status != PayoutStatusDelayed {
		t.Errorf("low earner status = %q, want %q", rows[1].Status, PayoutStatusDelayed)
	}
	if rows[1].Payout != 1000000*0.35 {
		t.Errorf("payout = %v, want %v", rows[1].Payout, 1000000*0.35)
	}
}

func TestComputePayoutsClampsRate(t *testing.T) {
	teachers := []models.Teacher{teacher(1, "Dilnoza", "active")}
	groups := map[uint][]models.Group{1: {{MonthlyRevenue: 1000000}}}

	rows := ComputePayouts(teachers, groups, 0.90)
	if rows[0].Payout != 1000000*config.MaxPayoutRate {
		t.Errorf("payout = %v, want clamped %v", rows[0].Payout, 1000000*config.MaxPayoutRate)
	}
}

func TestComputePayoutsSkipsInactive(t *testing.T) {
	teachers := []models.Teacher{
		teacher(1, "Dilnoza", "active"),
		teacher(2, "Botir", "inactive"),
	}
	groups := map[uint][]models.Group{
		1: {{MonthlyRevenue: 1000000}},
		2: {{MonthlyRevenue: 5000000}},
	}

	rows := ComputePayouts(teachers, groups, 0.35)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].TeacherID != 1 {
		t.Errorf("expected teacher 1, got %d", rows[0].TeacherID)
	}
}

func TestComputePayoutsZeroRevenue(t *testing.T) {
	teachers := []models.Teacher{
		teacher(1, "Dilnoza", "active"),
		teacher(2, "Botir", "active"),
	}
	groups := map[uint][]models.Group{}

	rows := ComputePayouts(teachers, groups, 0.35)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	for _, row := range rows {
		if row.Status != PayoutStatusOnTime {
			t.Errorf("zero-revenue status = %q, want %q", row.Status, PayoutStatusOnTime)
		}
		if row.Payout != 0 {
			t.Errorf("payout = %v, want 0", row.Payout)
		}
	}
}

func TestComputePayoutsEmpty(t *testing.T) {
	rows := ComputePayouts(nil, nil, 0.35)
	if len(rows) != 0 {
		t.Errorf("expected no rows, got %d", len(rows))
	}
}

func TestTeacherDisplayName(t *testing.T) {
	full := models.Teacher{FirstName: "Dilnoza", LastName: "Karimova"}
	if got := teacherDisplayName(full); got != "Dilnoza Karimova" {
		t.Errorf("got %q", got)
	}
	single := models.Teacher{FirstName: "Dilnoza"}
	if got := teacherDisplayName(single); got != "Dilnoza" {
		t.Errorf("got %q", got)
	}
}
