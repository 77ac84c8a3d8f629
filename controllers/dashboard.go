package controllers

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"oquvmarkaz_go/database"
	"oquvmarkaz_go/middleware"
	"oquvmarkaz_go/models"
	"oquvmarkaz_go/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

type DashboardController struct{}

// financialView bundles everything the dashboard endpoint and the export
// share: the bucket series, the rollups and the payout table.
type financialView struct {
	TimeRange  string                          `json:"time_range"`
	PayoutRate float64                         `json:"payout_rate"`
	Currency   float64                         `json:"currency"`
	Trend      []services.TrendPoint           `json:"trend"`
	Summary    services.TrendSummary           `json:"summary"`
	TopCourses []services.CourseRevenue        `json:"top_courses"`
	ByTeacher  []services.TeacherCourseRevenue `json:"revenue_by_teacher"`
	Payouts    []services.TeacherFinancial     `json:"payouts"`
}

// scale applies a display-only currency multiplier to every monetary figure.
// Nothing persisted changes; amounts stay in the base currency in the store.
func (v *financialView) scale(multiplier float64) {
	if multiplier == 1 {
		return
	}
	v.Currency = multiplier
	for i := range v.Trend {
		v.Trend[i].Revenue *= multiplier
	}
	v.Summary.TotalRevenue *= multiplier
	v.Summary.AvgTicket *= multiplier
	for i := range v.TopCourses {
		v.TopCourses[i].Revenue *= multiplier
	}
	for i := range v.ByTeacher {
		v.ByTeacher[i].Revenue *= multiplier
	}
	for i := range v.Payouts {
		v.Payouts[i].TotalRevenue *= multiplier
		v.Payouts[i].Payout *= multiplier
	}
}

// GetFinancialDashboard returns the full financial view for a time range.
// An optional payout_rate query overrides the session rate for this response
// only (what-if view); it never changes the stored rate.
func (dc *DashboardController) GetFinancialDashboard(c *fiber.Ctx) error {
	timeRange := c.Query("time_range", services.Range30d)

	rate := services.GetPayoutRateStore().Get()
	if raw := c.Query("payout_rate"); raw != "" {
		override, err := strconv.ParseFloat(raw, 64)
		if err != nil || !services.ValidPayoutRate(override) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid payout_rate",
			})
		}
		rate = override
	}

	currency := 1.0
	if raw := c.Query("currency"); raw != "" {
		mult, err := strconv.ParseFloat(raw, 64)
		if err != nil || mult <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid currency multiplier",
			})
		}
		currency = mult
	}

	view, err := dc.buildFinancialView(timeRange, rate, time.Now())
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		logrus.WithError(err).Error("failed to build financial dashboard")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build financial dashboard",
		})
	}

	view.scale(currency)
	return c.JSON(view)
}

func (dc *DashboardController) buildFinancialView(timeRange string, rate float64, now time.Time) (*financialView, error) {
	windowStart, err := services.TrendRangeStart(timeRange, now)
	if err != nil {
		return nil, err
	}

	var events []models.Application
	if err := database.DB.
		Where("created_at >= ? AND course_id IS NOT NULL", windowStart).
		Find(&events).Error; err != nil {
		return nil, err
	}

	var courses []models.Course
	if err := database.DB.Find(&courses).Error; err != nil {
		return nil, err
	}
	priceByCourse := make(map[uint]float64, len(courses))
	for _, course := range courses {
		priceByCourse[course.ID] = services.ParseCurrency(course.Price)
	}

	trend, err := services.BuildTrend(timeRange, events, priceByCourse, now)
	if err != nil {
		return nil, err
	}

	var teachers []models.Teacher
	if err := database.DB.Where("status = ?", "active").Find(&teachers).Error; err != nil {
		return nil, err
	}

	var groups []models.Group
	if err := database.DB.Where("teacher_id IS NOT NULL").Find(&groups).Error; err != nil {
		return nil, err
	}
	groupsByTeacher := make(map[uint][]models.Group)
	for _, g := range groups {
		groupsByTeacher[*g.TeacherID] = append(groupsByTeacher[*g.TeacherID], g)
	}

	return &financialView{
		TimeRange:  timeRange,
		PayoutRate: services.ClampPayoutRate(rate),
		Currency:   1,
		Trend:      trend,
		Summary:    services.SummarizeTrend(trend),
		TopCourses: services.TopCourses(events, courses, 5),
		ByTeacher:  services.TeacherRevenueByCourse(events, courses),
		Payouts:    services.ComputePayouts(teachers, groupsByTeacher, rate),
	}, nil
}

// GetPayoutRate returns the current session payout rate
func (dc *DashboardController) GetPayoutRate(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"rate": services.GetPayoutRateStore().Get(),
	})
}

// SetPayoutRate updates the session payout rate. Out-of-range values are
// rejected and the previous rate stays in force.
func (dc *DashboardController) SetPayoutRate(c *fiber.Ctx) error {
	var req struct {
		Rate float64 `json:"rate"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	rate, err := services.GetPayoutRateStore().Set(req.Rate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
			"rate":  rate,
		})
	}

	middleware.LogActivity(c, "UPDATE", "dashboard", 0,
		map[string]float64{"payout_rate": rate})

	return c.JSON(fiber.Map{
		"rate": rate,
	})
}

// ExportFinancialReport streams the financial view as an xlsx workbook with
// a trend sheet and a payouts sheet.
func (dc *DashboardController) ExportFinancialReport(c *fiber.Ctx) error {
	timeRange := c.Query("time_range", services.Range30d)

	view, err := dc.buildFinancialView(timeRange, services.GetPayoutRateStore().Get(), time.Now())
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build report",
		})
	}

	f := excelize.NewFile()
	defer f.Close()

	trendSheet := "Trend"
	f.SetSheetName(f.GetSheetName(0), trendSheet)
	headers := []string{"Period", "Revenue", "Enrollments"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(trendSheet, cell, h)
	}
	for i, p := range view.Trend {
		row := i + 2
		f.SetCellValue(trendSheet, fmt.Sprintf("A%d", row), p.Label)
		f.SetCellValue(trendSheet, fmt.Sprintf("B%d", row), p.Revenue)
		f.SetCellValue(trendSheet, fmt.Sprintf("C%d", row), p.Enrollment)
	}

	payoutSheet := "Payouts"
	f.NewSheet(payoutSheet)
	payoutHeaders := []string{"Teacher", "Groups", "Students", "Revenue", "Payout", "Status"}
	for i, h := range payoutHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(payoutSheet, cell, h)
	}
	for i, row := range view.Payouts {
		r := i + 2
		f.SetCellValue(payoutSheet, fmt.Sprintf("A%d", r), row.TeacherName)
		f.SetCellValue(payoutSheet, fmt.Sprintf("B%d", r), row.GroupCount)
		f.SetCellValue(payoutSheet, fmt.Sprintf("C%d", r), row.StudentCount)
		f.SetCellValue(payoutSheet, fmt.Sprintf("D%d", r), row.TotalRevenue)
		f.SetCellValue(payoutSheet, fmt.Sprintf("E%d", r), row.Payout)
		f.SetCellValue(payoutSheet, fmt.Sprintf("F%d", r), row.Status)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate report",
		})
	}

	filename := fmt.Sprintf("financial-report-%s-%s.xlsx", timeRange, time.Now().Format("2006-01-02"))
	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	return c.Send(buf.Bytes())
}

// GetOverview returns the headline numbers for the admin home screen
func (dc *DashboardController) GetOverview(c *fiber.Ctx) error {
	var studentCount, teacherCount, groupCount, newApplications int64

	database.DB.Model(&models.Student{}).Count(&studentCount)
	database.DB.Model(&models.Teacher{}).Where("status = ?", "active").Count(&teacherCount)
	database.DB.Model(&models.Group{}).Where("status <> ?", "archived").Count(&groupCount)
	database.DB.Model(&models.Application{}).Where("status = ?", "new").Count(&newApplications)

	var groups []models.Group
	if err := database.DB.Find(&groups).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch groups",
		})
	}
	var monthlyRevenue float64
	for _, g := range groups {
		monthlyRevenue += g.MonthlyRevenue
	}

	return c.JSON(fiber.Map{
		"students":         studentCount,
		"teachers":         teacherCount,
		"groups":           groupCount,
		"new_applications": newApplications,
		"monthly_revenue":  monthlyRevenue,
	})
}
