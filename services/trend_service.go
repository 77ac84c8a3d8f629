package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"oquvmarkaz_go/models"
)

// Supported dashboard time ranges.
const (
	Range7d  = "7d"
	Range30d = "30d"
	Range90d = "90d"
	Range12m = "12m"
)

// TrendPoint is one time-aligned bucket of the financial series. Buckets with
// no events are still emitted so every series has a uniform point count for
// charting.
type TrendPoint struct {
	Label      string    `json:"label"`
	Start      time.Time `json:"start"`
	Revenue    float64   `json:"revenue"`
	Enrollment int       `json:"enrollment"`
}

// TrendSummary aggregates a bucket series.
type TrendSummary struct {
	TotalRevenue     float64 `json:"total_revenue"`
	TotalEnrollments int     `json:"total_enrollments"`
	AvgTicket        float64 `json:"avg_ticket"`
	PipelineGrowth   float64 `json:"pipeline_growth"`
}

// CourseRevenue is the course-attribution rollup: enrollments in range times
// the course price.
type CourseRevenue struct {
	CourseID    uint    `json:"course_id"`
	Title       string  `json:"title"`
	Enrollments int     `json:"enrollments"`
	Revenue     float64 `json:"revenue"`
}

// TeacherCourseRevenue aggregates course revenue per teacher via the
// course->teacher reference. This view is independent of the group-based
// payout view and the two are not required to reconcile: a teacher may teach
// courses not tied to any active group.
type TeacherCourseRevenue struct {
	TeacherID uint    `json:"teacher_id"`
	Revenue   float64 `json:"revenue"`
}

// ParseCurrency parses a string-encoded price defensively: everything except
// digits and separators is stripped before parsing, and anything still
// unparsable counts as zero.
func ParseCurrency(s string) float64 {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	cleaned := strings.ReplaceAll(b.String(), ",", "")
	if cleaned == "" {
		return 0
	}
	if v, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return v
	}
	// Thousands-dotted values ("1.200.000") fail ParseFloat; digits only then.
	digits := strings.ReplaceAll(cleaned, ".", "")
	if digits == "" {
		return 0
	}
	v, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0
	}
	return v
}

// TrendRangeStart returns the start instant of the oldest bucket for a range,
// so callers can scope their event query to the window.
func TrendRangeStart(rng string, now time.Time) (time.Time, error) {
	buckets, err := trendBuckets(rng, now)
	if err != nil {
		return time.Time{}, err
	}
	return buckets[0].Start, nil
}

// BuildTrend buckets enrollment events into the fixed series for a range:
// one bucket per calendar day for 7d/30d, per ISO week (Monday start) for
// 90d, per calendar month for 12m including the current one. An event counts
// when it has a course and its CreatedAt falls inside the window; it adds one
// enrollment and the course price to its bucket.
func BuildTrend(rng string, events []models.Application, priceByCourse map[uint]float64, now time.Time) ([]TrendPoint, error) {
	buckets, err := trendBuckets(rng, now)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(buckets))
	keyOf := bucketKeyFunc(rng)
	for i, b := range buckets {
		index[keyOf(b.Start)] = i
	}

	windowStart := buckets[0].Start
	for _, ev := range events {
		if ev.CourseID == nil {
			continue
		}
		at := ev.CreatedAt
		if at.Before(windowStart) || at.After(now) {
			continue
		}
		i, ok := index[keyOf(at)]
		if !ok {
			continue
		}
		buckets[i].Enrollment++
		buckets[i].Revenue += priceByCourse[*ev.CourseID]
	}

	return buckets, nil
}

// SummarizeTrend derives totals, the average ticket and the pipeline growth
// (revenue change between the first and second half of the series, in
// percent; zero when the first half is empty).
func SummarizeTrend(points []TrendPoint) TrendSummary {
	var sum TrendSummary
	for _, p := range points {
		sum.TotalRevenue += p.Revenue
		sum.TotalEnrollments += p.Enrollment
	}
	if sum.TotalEnrollments > 0 {
		sum.AvgTicket = sum.TotalRevenue / float64(sum.TotalEnrollments)
	}

	half := len(points) / 2
	var firstHalf, secondHalf float64
	for i, p := range points {
		if i < half {
			firstHalf += p.Revenue
		} else {
			secondHalf += p.Revenue
		}
	}
	if firstHalf > 0 {
		sum.PipelineGrowth = (secondHalf - firstHalf) / firstHalf * 100
	}
	return sum
}

// TopCourses ranks courses by in-window revenue (enrollment count times the
// parsed price) and returns up to limit rows, best first.
func TopCourses(events []models.Application, courses []models.Course, limit int) []CourseRevenue {
	counts := map[uint]int{}
	for _, ev := range events {
		if ev.CourseID != nil {
			counts[*ev.CourseID]++
		}
	}

	rows := make([]CourseRevenue, 0, len(courses))
	for _, course := range courses {
		n := counts[course.ID]
		if n == 0 {
			continue
		}
		rows = append(rows, CourseRevenue{
			CourseID:    course.ID,
			Title:       course.Title,
			Enrollments: n,
			Revenue:     float64(n) * ParseCurrency(course.Price),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Revenue > rows[j].Revenue })
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

// TeacherRevenueByCourse aggregates in-window course revenue onto the course
// teachers. Courses without a teacher are skipped.
func TeacherRevenueByCourse(events []models.Application, courses []models.Course) []TeacherCourseRevenue {
	perCourse := TopCourses(events, courses, 0)
	teacherByCourse := map[uint]*uint{}
	for _, c := range courses {
		teacherByCourse[c.ID] = c.TeacherID
	}

	totals := map[uint]float64{}
	for _, row := range perCourse {
		tid := teacherByCourse[row.CourseID]
		if tid == nil {
			continue
		}
		totals[*tid] += row.Revenue
	}

	rows := make([]TeacherCourseRevenue, 0, len(totals))
	for tid, revenue := range totals {
		rows = append(rows, TeacherCourseRevenue{TeacherID: tid, Revenue: revenue})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Revenue > rows[j].Revenue })
	return rows
}

func trendBuckets(rng string, now time.Time) ([]TrendPoint, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch rng {
	case Range7d, Range30d:
		n := 7
		if rng == Range30d {
			n = 30
		}
		points := make([]TrendPoint, n)
		start := today.AddDate(0, 0, -(n - 1))
		for i := range points {
			day := start.AddDate(0, 0, i)
			points[i] = TrendPoint{Label: day.Format("2006-01-02"), Start: day}
		}
		return points, nil

	case Range90d:
		const weeks = 13
		points := make([]TrendPoint, weeks)
		start := startOfISOWeek(today).AddDate(0, 0, -7*(weeks-1))
		for i := range points {
			wk := start.AddDate(0, 0, 7*i)
			points[i] = TrendPoint{Label: wk.Format("2006-01-02"), Start: wk}
		}
		return points, nil

	case Range12m:
		const months = 12
		points := make([]TrendPoint, months)
		start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location()).AddDate(0, -(months - 1), 0)
		for i := range points {
			mo := start.AddDate(0, i, 0)
			points[i] = TrendPoint{Label: mo.Format("2006-01"), Start: mo}
		}
		return points, nil
	}

	return nil, validationError(fmt.Sprintf("unknown time range %q", rng))
}

func bucketKeyFunc(rng string) func(time.Time) string {
	switch rng {
	case Range90d:
		return func(t time.Time) string { return startOfISOWeek(t).Format("2006-01-02") }
	case Range12m:
		return func(t time.Time) string { return t.Format("2006-01") }
	default:
		return func(t time.Time) string { return t.Format("2006-01-02") }
	}
}

// startOfISOWeek truncates to the Monday of t's week.
func startOfISOWeek(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	wd := int(day.Weekday())
	if wd == 0 {
		wd = 7
	}
	return day.AddDate(0, 0, -(wd - 1))
}
