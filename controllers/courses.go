package controllers

import (
	"strconv"

	"oquvmarkaz_go/database"
	"oquvmarkaz_go/middleware"
	"oquvmarkaz_go/models"

	"github.com/gofiber/fiber/v2"
)

type CourseController struct{}

// GetPublicCourses returns active courses for the marketing site
func (cc *CourseController) GetPublicCourses(c *fiber.Ctx) error {
	var courses []models.Course
	if err := database.DB.Where("active = ?", true).
		Preload("Teacher").
		Order("title").Find(&courses).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch courses",
		})
	}

	return c.JSON(fiber.Map{
		"courses": courses,
	})
}

// GetCourses returns all courses for the back office
func (cc *CourseController) GetCourses(c *fiber.Ctx) error {
	var courses []models.Course

	query := database.DB.Model(&models.Course{})
	if active := c.Query("active"); active != "" {
		query = query.Where("active = ?", active == "true")
	}

	if err := query.Preload("Teacher").Order("title").Find(&courses).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch courses",
		})
	}

	return c.JSON(fiber.Map{
		"courses": courses,
	})
}

// GetCourse returns a specific course
func (cc *CourseController) GetCourse(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
	}

	var course models.Course
	if err := database.DB.Preload("Teacher").First(&course, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Course not found",
		})
	}

	return c.JSON(fiber.Map{
		"course": course,
	})
}

// CreateCourse creates a new course
func (cc *CourseController) CreateCourse(c *fiber.Ctx) error {
	var req struct {
		Title          string `json:"title"`
		TitleUz        string `json:"title_uz"`
		Description    string `json:"description"`
		Price          string `json:"price"`
		DurationMonths int    `json:"duration_months"`
		TeacherID      *uint  `json:"teacher_id"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Course title is required",
		})
	}

	if req.TeacherID != nil {
		var teacher models.Teacher
		if err := database.DB.First(&teacher, *req.TeacherID).Error; err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Teacher not found",
			})
		}
	}

	course := models.Course{
		Title:          req.Title,
		TitleUz:        req.TitleUz,
		Description:    req.Description,
		Price:          req.Price,
		DurationMonths: req.DurationMonths,
		TeacherID:      req.TeacherID,
		Active:         true,
	}

	if err := database.DB.Create(&course).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create course",
		})
	}

	middleware.LogActivity(c, "CREATE", "courses", course.ID, nil)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"course": course,
	})
}

// UpdateCourse modifies a course
func (cc *CourseController) UpdateCourse(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
	}

	var course models.Course
	if err := database.DB.First(&course, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Course not found",
		})
	}

	var req struct {
		Title          *string `json:"title"`
		TitleUz        *string `json:"title_uz"`
		Description    *string `json:"description"`
		Price          *string `json:"price"`
		DurationMonths *int    `json:"duration_months"`
		TeacherID      *uint   `json:"teacher_id"`
		Active         *bool   `json:"active"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.TitleUz != nil {
		course.TitleUz = *req.TitleUz
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.Price != nil {
		course.Price = *req.Price
	}
	if req.DurationMonths != nil {
		course.DurationMonths = *req.DurationMonths
	}
	if req.TeacherID != nil {
		if *req.TeacherID == 0 {
			course.TeacherID = nil
		} else {
			var teacher models.Teacher
			if err := database.DB.First(&teacher, *req.TeacherID).Error; err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Teacher not found",
				})
			}
			course.TeacherID = req.TeacherID
		}
	}
	if req.Active != nil {
		course.Active = *req.Active
	}

	if err := database.DB.Save(&course).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update course",
		})
	}

	middleware.LogActivity(c, "UPDATE", "courses", course.ID, nil)

	return c.JSON(fiber.Map{
		"course": course,
	})
}

// DeleteCourse soft-deletes a course
func (cc *CourseController) DeleteCourse(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid course ID",
		})
	}

	var course models.Course
	if err := database.DB.First(&course, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Course not found",
		})
	}

	if err := database.DB.Delete(&course).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete course",
		})
	}

	middleware.LogActivity(c, "DELETE", "courses", course.ID, nil)

	return c.JSON(fiber.Map{
		"message": "Course deleted successfully",
	})
}
