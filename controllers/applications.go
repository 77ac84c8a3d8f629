package controllers

import (
	"strconv"
	"strings"

	"oquvmarkaz_go/database"
	"oquvmarkaz_go/middleware"
	"oquvmarkaz_go/models"
	"oquvmarkaz_go/services"
	"oquvmarkaz_go/services/notifications"
	"oquvmarkaz_go/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type ApplicationController struct {
	line *services.LineMessagingService
}

func NewApplicationController() *ApplicationController {
	return &ApplicationController{line: services.NewLineMessagingService()}
}

// SubmitApplication accepts an enrollment request from the marketing site.
// Public endpoint, no auth. Admin notification is best-effort; the request is
// stored regardless.
func (ac *ApplicationController) SubmitApplication(c *fiber.Ctx) error {
	var req struct {
		FullName string `json:"full_name"`
		Phone    string `json:"phone"`
		CourseID *uint  `json:"course_id"`
		Message  string `json:"message"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	req.FullName = utils.SanitizeString(req.FullName)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.FullName == "" || req.Phone == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Full name and phone are required",
		})
	}

	var courseTitle string
	if req.CourseID != nil {
		var course models.Course
		if err := database.DB.First(&course, *req.CourseID).Error; err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Course not found",
			})
		}
		courseTitle = course.Title
	}

	app := models.Application{
		FullName: req.FullName,
		Phone:    req.Phone,
		CourseID: req.CourseID,
		Message:  utils.SanitizeString(req.Message),
		Status:   "new",
	}

	if err := database.DB.Create(&app).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to submit application",
		})
	}

	go ac.notifyStaff(app, courseTitle)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":        "Application submitted successfully",
		"application_id": app.ID,
	})
}

func (ac *ApplicationController) notifyStaff(app models.Application, courseTitle string) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("panic", r).Error("panic recovered in application notification")
		}
	}()

	if ac.line.Enabled() {
		if err := ac.line.NotifyNewApplication(app, courseTitle); err != nil {
			logrus.WithError(err).Warn("LINE notification for new application failed")
		}
	}

	notifService := notifications.NewService()
	n := notifications.QueuedWithData(
		"New application",
		"Yangi ariza",
		"New enrollment application from "+app.FullName,
		app.FullName+" dan yangi ariza keldi",
		"info",
		map[string]interface{}{"application_id": app.ID, "course": courseTitle},
	)
	if err := notifService.NotifyAdmins(n); err != nil {
		logrus.WithError(err).Warn("admin notification for new application failed")
	}
}

// GetApplications returns applications for the back office
func (ac *ApplicationController) GetApplications(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	var apps []models.Application
	var total int64

	query := database.DB.Model(&models.Application{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	query.Count(&total)

	if err := query.Preload("Course").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&apps).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch applications",
		})
	}

	return c.JSON(fiber.Map{
		"applications": apps,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// UpdateApplicationStatus moves an application through the pipeline
func (ac *ApplicationController) UpdateApplicationStatus(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid application ID",
		})
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	switch req.Status {
	case "new", "contacted", "enrolled", "rejected":
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid status",
		})
	}

	var app models.Application
	if err := database.DB.First(&app, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Application not found",
		})
	}

	if err := database.DB.Model(&app).Update("status", req.Status).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update application",
		})
	}

	middleware.LogActivity(c, "UPDATE", "applications", app.ID,
		map[string]string{"status": req.Status})

	return c.JSON(fiber.Map{
		"application": app,
	})
}

// DeleteApplication removes an application
func (ac *ApplicationController) DeleteApplication(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid application ID",
		})
	}

	var app models.Application
	if err := database.DB.First(&app, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Application not found",
		})
	}

	if err := database.DB.Delete(&app).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete application",
		})
	}

	middleware.LogActivity(c, "DELETE", "applications", app.ID, nil)

	return c.JSON(fiber.Map{
		"message": "Application deleted successfully",
	})
}
