package services

import (
	"sort"

	"oquvmarkaz_go/config"
	"oquvmarkaz_go/models"
)

// Teacher standing relative to peers, by share of total group revenue.
const (
	PayoutStatusAhead   = "ahead"
	PayoutStatusOnTime  = "ontime"
	PayoutStatusDelayed = "delayed"
)

// TeacherFinancial is one row of the payout view: the revenue a teacher's
// groups generate, the payout owed at the current rate, and the standing
// classification. Never persisted - recomputed on every read.
type TeacherFinancial struct {
	TeacherID    uint    `json:"teacher_id"`
	TeacherName  string  `json:"teacher_name"`
	GroupCount   int     `json:"group_count"`
	StudentCount int     `json:"student_count"`
	TotalRevenue float64 `json:"total_revenue"`
	Payout       float64 `json:"payout"`
	Status       string  `json:"status"`
}

// ClampPayoutRate bounds a rate to the allowed payout range.
func ClampPayoutRate(rate float64) float64 {
	if rate < config.MinPayoutRate {
		return config.MinPayoutRate
	}
	if rate > config.MaxPayoutRate {
		return config.MaxPayoutRate
	}
	return rate
}

// ValidPayoutRate reports whether a rate is inside the allowed range.
// Out-of-range rates are rejected at the API boundary and the previous valid
// value retained; ClampPayoutRate is the defensive floor under computation.
func ValidPayoutRate(rate float64) bool {
	return rate >= config.MinPayoutRate && rate <= config.MaxPayoutRate
}

// ComputePayouts builds the payout view for the active teachers. Each
// teacher's revenue is the sum of the cached monthly revenue of their groups;
// payout is that revenue times the rate. Standing compares the teacher's
// revenue to the average share: at or above 1.2x the average is ahead, at or
// below 0.6x is delayed, in between is ontime. With no teachers or no revenue
// at all, everyone is ontime.
func ComputePayouts(teachers []models.Teacher, groupsByTeacher map[uint][]models.Group, rate float64) []TeacherFinancial {
	rate = ClampPayoutRate(rate)

	rows := make([]TeacherFinancial, 0, len(teachers))
	var totalRevenue float64
	for _, t := range teachers {
		if t.Status != "active" {
			continue
		}
		row := TeacherFinancial{
			TeacherID:   t.ID,
			TeacherName: teacherDisplayName(t),
		}
		for _, g := range groupsByTeacher[t.ID] {
			row.GroupCount++
			row.StudentCount += g.CurrentStudents
			row.TotalRevenue += g.MonthlyRevenue
		}
		row.Payout = row.TotalRevenue * rate
		totalRevenue += row.TotalRevenue
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return rows
	}

	averageShare := totalRevenue / float64(len(rows))
	for i := range rows {
		rows[i].Status = classifyPayout(rows[i].TotalRevenue, averageShare)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TotalRevenue > rows[j].TotalRevenue
	})
	return rows
}

func classifyPayout(revenue, averageShare float64) string {
	if averageShare <= 0 {
		return PayoutStatusOnTime
	}
	switch {
	case revenue >= 1.2*averageShare:
		return PayoutStatusAhead
	case revenue <= 0.6*averageShare:
		return PayoutStatusDelayed
	default:
		return PayoutStatusOnTime
	}
}

func teacherDisplayName(t models.Teacher) string {
	if t.LastName == "" {
		return t.FirstName
	}
	return t.FirstName + " " + t.LastName
}
