package services

import (
	"errors"
	"testing"
	"time"

	"oquvmarkaz_go/models"
)

func application(courseID uint, at time.Time) models.Application {
	id := courseID
	app := models.Application{CourseID: &id}
	app.CreatedAt = at
	return app
}

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{"plain number", "500000", 500000},
		{"spaced with suffix", "1 200 000 so'm", 1200000},
		{"comma thousands", "1,200,000", 1200000},
		{"dot thousands", "1.200.000", 1200000},
		{"decimal", "450000.50", 450000.50},
		{"currency prefix", "UZS 800000", 800000},
		{"empty", "", 0},
		{"garbage", "free!", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseCurrency(tt.input); got != tt.want {
				t.Errorf("ParseCurrency(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTrendBucketCounts(t *testing.T) {
	now := date(2025, time.May, 15)

	tests := []struct {
		rng  string
		want int
	}{
		{Range7d, 7},
		{Range30d, 30},
		{Range90d, 13},
		{Range12m, 12},
	}

	for _, tt := range tests {
		t.Run(tt.rng, func(t *testing.T) {
			points, err := BuildTrend(tt.rng, nil, nil, now)
			if err != nil {
				t.Fatalf("BuildTrend(%q) error: %v", tt.rng, err)
			}
			if len(points) != tt.want {
				t.Errorf("len(points) = %d, want %d", len(points), tt.want)
			}
			// Empty buckets are still emitted.
			for _, p := range points {
				if p.Revenue != 0 || p.Enrollment != 0 {
					t.Errorf("bucket %s not empty: %+v", p.Label, p)
				}
			}
		})
	}
}

func TestBuildTrendUnknownRange(t *testing.T) {
	_, err := BuildTrend("90x", nil, nil, date(2025, time.May, 15))
	if err == nil {
		t.Fatal("expected error for unknown range")
	}
	if !errors.Is(err, ErrValidation) {
		t.Errorf("error not a validation error: %v", err)
	}
}

func TestBuildTrendDailyBucketing(t *testing.T) {
	now := date(2025, time.May, 15)
	prices := map[uint]float64{1: 500000, 2: 800000}

	events := []models.Application{
		application(1, date(2025, time.May, 15)),
		application(1, date(2025, time.May, 15)),
		application(2, date(2025, time.May, 10)),
		// Outside the 7-day window, must be ignored.
		application(1, date(2025, time.May, 1)),
		// No course, must be ignored.
		{},
	}

	points, err := BuildTrend(Range7d, events, prices, now)
	if err != nil {
		t.Fatalf("BuildTrend error: %v", err)
	}

	byLabel := map[string]TrendPoint{}
	for _, p := range points {
		byLabel[p.Label] = p
	}

	today := byLabel["2025-05-15"]
	if today.Enrollment != 2 || today.Revenue != 1000000 {
		t.Errorf("today bucket = %+v, want 2 enrollments / 1000000", today)
	}
	may10 := byLabel["2025-05-10"]
	if may10.Enrollment != 1 || may10.Revenue != 800000 {
		t.Errorf("2025-05-10 bucket = %+v, want 1 enrollment / 800000", may10)
	}

	var totalEnrollment int
	for _, p := range points {
		totalEnrollment += p.Enrollment
	}
	if totalEnrollment != 3 {
		t.Errorf("total enrollments = %d, want 3", totalEnrollment)
	}
}

func TestBuildTrendWeeklyBucketing(t *testing.T) {
	// 2025-05-15 is a Thursday; its ISO week starts Monday 2025-05-12.
	now := date(2025, time.May, 15)
	prices := map[uint]float64{1: 500000}

	events := []models.Application{
		application(1, date(2025, time.May, 12)),
		application(1, date(2025, time.May, 15)),
		// Previous week, Sunday.
		application(1, date(2025, time.May, 11)),
	}

	points, err := BuildTrend(Range90d, events, prices, now)
	if err != nil {
		t.Fatalf("BuildTrend error: %v", err)
	}
	if len(points) != 13 {
		t.Fatalf("len(points) = %d, want 13", len(points))
	}

	last := points[len(points)-1]
	if last.Label != "2025-05-12" {
		t.Fatalf("last bucket label = %q, want 2025-05-12", last.Label)
	}
	if last.Enrollment != 2 {
		t.Errorf("current week enrollment = %d, want 2", last.Enrollment)
	}
	prev := points[len(points)-2]
	if prev.Enrollment != 1 {
		t.Errorf("previous week enrollment = %d, want 1", prev.Enrollment)
	}
}

func TestBuildTrendMonthlyBucketing(t *testing.T) {
	now := date(2025, time.May, 15)
	prices := map[uint]float64{1: 500000}

	events := []models.Application{
		application(1, date(2025, time.May, 2)),
		application(1, date(2024, time.June, 20)),
		// Before the 12-month window.
		application(1, date(2024, time.May, 20)),
	}

	points, err := BuildTrend(Range12m, events, prices, now)
	if err != nil {
		t.Fatalf("BuildTrend error: %v", err)
	}
	if len(points) != 12 {
		t.Fatalf("len(points) = %d, want 12", len(points))
	}
	if points[0].Label != "2024-06" {
		t.Errorf("first bucket = %q, want 2024-06", points[0].Label)
	}
	if points[len(points)-1].Label != "2025-05" {
		t.Errorf("last bucket = %q, want 2025-05", points[len(points)-1].Label)
	}
	if points[0].Enrollment != 1 {
		t.Errorf("2024-06 enrollment = %d, want 1", points[0].Enrollment)
	}
	if points[len(points)-1].Enrollment != 1 {
		t.Errorf("2025-05 enrollment = %d, want 1", points[len(points)-1].Enrollment)
	}
}

func TestSummarizeTrend(t *testing.T) {
	points := []TrendPoint{
		{Revenue: 100, Enrollment: 1},
		{Revenue: 100, Enrollment: 1},
		{Revenue: 200, Enrollment: 2},
		{Revenue: 200, Enrollment: 2},
	}

	sum := SummarizeTrend(points)
	if sum.TotalRevenue != 600 {
		t.Errorf("TotalRevenue = %v, want 600", sum.TotalRevenue)
	}
	if sum.TotalEnrollments != 6 {
		t.Errorf("TotalEnrollments = %d, want 6", sum.TotalEnrollments)
	}
	if sum.AvgTicket != 100 {
		t.Errorf("AvgTicket = %v, want 100", sum.AvgTicket)
	}
	// First half 200, second half 400: growth is +100%.
	if sum.PipelineGrowth != 100 {
		t.Errorf("PipelineGrowth = %v, want 100", sum.PipelineGrowth)
	}
}

func TestSummarizeTrendEmptyFirstHalf(t *testing.T) {
	points := []TrendPoint{
		{Revenue: 0},
		{Revenue: 500},
	}
	sum := SummarizeTrend(points)
	if sum.PipelineGrowth != 0 {
		t.Errorf("PipelineGrowth = %v, want 0 when first half is empty", sum.PipelineGrowth)
	}
}

func TestTopCourses(t *testing.T) {
	courses := make([]models.Course, 7)
	for i := range courses {
		courses[i].ID = uint(i + 1)
		courses[i].Title = "Course"
		courses[i].Price = "100 000 so'm"
	}

	now := date(2025, time.May, 15)
	var events []models.Application
	// Course i+1 gets i+1 enrollments; course 7 never appears.
	for i := 0; i < 6; i++ {
		for n := 0; n <= i; n++ {
			events = append(events, application(uint(i+1), now))
		}
	}

	rows := TopCourses(events, courses, 5)
	if len(rows) != 5 {
		t.Fatalf("len(rows) = %d, want 5", len(rows))
	}
	if rows[0].CourseID != 6 || rows[0].Enrollments != 6 {
		t.Errorf("top row = %+v, want course 6 with 6 enrollments", rows[0])
	}
	if rows[0].Revenue != 600000 {
		t.Errorf("top revenue = %v, want 600000", rows[0].Revenue)
	}
	for i := 1; i < len(rows); i++ {
		if rows[i].Revenue > rows[i-1].Revenue {
			t.Errorf("rows not sorted descending at %d", i)
		}
	}
	for _, row := range rows {
		if row.Enrollments == 0 {
			t.Errorf("zero-enrollment course leaked into ranking: %+v", row)
		}
	}
}

func TestTeacherRevenueByCourse(t *testing.T) {
	t1, t2 := uint(1), uint(2)
	courses := []models.Course{
		{Title: "A", Price: "100000", TeacherID: &t1},
		{Title: "B", Price: "200000", TeacherID: &t1},
		{Title: "C", Price: "400000", TeacherID: &t2},
		{Title: "Orphan", Price: "900000"},
	}
	for i := range courses {
		courses[i].ID = uint(i + 1)
	}

	now := date(2025, time.May, 15)
	events := []models.Application{
		application(1, now),
		application(2, now),
		application(3, now),
		application(4, now),
	}

	rows := TeacherRevenueByCourse(events, courses)
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if rows[0].TeacherID != 2 || rows[0].Revenue != 400000 {
		t.Errorf("top teacher = %+v, want teacher 2 / 400000", rows[0])
	}
	if rows[1].TeacherID != 1 || rows[1].Revenue != 300000 {
		t.Errorf("second teacher = %+v, want teacher 1 / 300000", rows[1])
	}
}

func TestStartOfISOWeek(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"monday maps to itself", date(2025, time.May, 12), date(2025, time.May, 12)},
		{"thursday", date(2025, time.May, 15), date(2025, time.May, 12)},
		{"sunday belongs to preceding monday", date(2025, time.May, 11), date(2025, time.May, 5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := startOfISOWeek(tt.in); !got.Equal(tt.want) {
				t.Errorf("startOfISOWeek(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
