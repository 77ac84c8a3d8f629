package controllers

import (
	"strconv"
	"time"

	"oquvmarkaz_go/database"
	"oquvmarkaz_go/middleware"
	"oquvmarkaz_go/models"
	"oquvmarkaz_go/services"
	"oquvmarkaz_go/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// groupSyncer is what the controllers need from GroupMetricsService.
type groupSyncer interface {
	Sync(groupID *uint) error
}

type StudentController struct {
	metrics groupSyncer
}

func NewStudentController() *StudentController {
	return &StudentController{metrics: services.NewGroupMetricsService()}
}

// GetStudents returns students with pagination and filters. Every row carries
// the effective payment state resolved at request time.
func (sc *StudentController) GetStudents(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	var students []models.Student
	var total int64

	query := database.DB.Model(&models.Student{})

	if groupID := c.Query("group_id"); groupID != "" {
		query = query.Where("group_id = ?", groupID)
	}
	if search := c.Query("search"); search != "" {
		like := "%" + utils.SanitizeString(search) + "%"
		query = query.Where("first_name LIKE ? OR last_name LIKE ? OR phone LIKE ?", like, like, like)
	}

	now := time.Now()

	// Filtering on the effective status only works after resolution, so the
	// page has to be cut from the resolved set rather than in SQL. Stale
	// stored flags never leak through, and total counts the filtered set.
	if status := c.Query("payment_status"); status != "" {
		if err := query.Preload("Group").
			Order("created_at DESC").
			Find(&students).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to fetch students",
			})
		}

		filtered := filterByPaymentStatus(utils.ToStudentDTOs(students, now), status)
		return c.JSON(fiber.Map{
			"students": pageOf(filtered, offset, limit),
			"pagination": fiber.Map{
				"page":  page,
				"limit": limit,
				"total": int64(len(filtered)),
			},
		})
	}

	query.Count(&total)

	if err := query.Preload("Group").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&students).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch students",
		})
	}

	return c.JSON(fiber.Map{
		"students": utils.ToStudentDTOs(students, now),
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetStudent returns a single student with the resolved payment state
func (sc *StudentController) GetStudent(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid student ID",
		})
	}

	var student models.Student
	if err := database.DB.Preload("Group").Preload("Group.Teacher").
		First(&student, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Student not found",
		})
	}

	return c.JSON(fiber.Map{
		"student": utils.ToStudentDTO(student, time.Now()),
	})
}

// CreateStudent enrolls a new student. The creation timestamp starts the
// grace period; the stored payment status starts unpaid.
func (sc *StudentController) CreateStudent(c *fiber.Ctx) error {
	var req struct {
		FirstName      string  `json:"first_name"`
		LastName       string  `json:"last_name"`
		Phone          string  `json:"phone"`
		ParentPhone    string  `json:"parent_phone"`
		GroupID        *uint   `json:"group_id"`
		MonthlyPayment float64 `json:"monthly_payment"`
		Notes          string  `json:"notes"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if utils.SanitizeString(req.FirstName) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "First name is required",
		})
	}
	if req.MonthlyPayment < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Monthly payment cannot be negative",
		})
	}

	if req.GroupID != nil {
		var group models.Group
		if err := database.DB.First(&group, *req.GroupID).Error; err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Group not found",
			})
		}
		if group.MaxStudents > 0 && group.CurrentStudents >= group.MaxStudents {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Group is full",
			})
		}
	}

	student := models.Student{
		FirstName:      utils.SanitizeString(req.FirstName),
		LastName:       utils.SanitizeString(req.LastName),
		Phone:          req.Phone,
		ParentPhone:    req.ParentPhone,
		GroupID:        req.GroupID,
		MonthlyPayment: req.MonthlyPayment,
		PaymentStatus:  services.PaymentStatusUnpaid,
		Notes:          req.Notes,
	}

	if err := database.DB.Create(&student).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create student",
		})
	}

	if student.GroupID != nil {
		sc.resync(student.GroupID)
	}

	middleware.LogActivity(c, "CREATE", "students", student.ID, nil)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"student": utils.ToStudentDTO(student, time.Now()),
	})
}

// UpdateStudent modifies a student. Moving a student between groups resyncs
// both the old and the new group's cached metrics.
func (sc *StudentController) UpdateStudent(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid student ID",
		})
	}

	var student models.Student
	if err := database.DB.First(&student, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Student not found",
		})
	}

	var req struct {
		FirstName      *string  `json:"first_name"`
		LastName       *string  `json:"last_name"`
		Phone          *string  `json:"phone"`
		ParentPhone    *string  `json:"parent_phone"`
		GroupID        *uint    `json:"group_id"`
		MonthlyPayment *float64 `json:"monthly_payment"`
		Notes          *string  `json:"notes"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	oldGroupID := student.GroupID

	if req.FirstName != nil {
		student.FirstName = utils.SanitizeString(*req.FirstName)
	}
	if req.LastName != nil {
		student.LastName = utils.SanitizeString(*req.LastName)
	}
	if req.Phone != nil {
		student.Phone = *req.Phone
	}
	if req.ParentPhone != nil {
		student.ParentPhone = *req.ParentPhone
	}
	if req.MonthlyPayment != nil {
		if *req.MonthlyPayment < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Monthly payment cannot be negative",
			})
		}
		student.MonthlyPayment = *req.MonthlyPayment
	}
	if req.Notes != nil {
		student.Notes = *req.Notes
	}
	if req.GroupID != nil {
		if *req.GroupID == 0 {
			student.GroupID = nil
		} else {
			var group models.Group
			if err := database.DB.First(&group, *req.GroupID).Error; err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Group not found",
				})
			}
			moving := oldGroupID == nil || *oldGroupID != *req.GroupID
			if moving && group.MaxStudents > 0 && group.CurrentStudents >= group.MaxStudents {
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{
					"error": "Group is full",
				})
			}
			student.GroupID = req.GroupID
		}
	}

	if err := database.DB.Save(&student).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update student",
		})
	}

	sc.resync(oldGroupID)
	if !sameGroup(oldGroupID, student.GroupID) {
		sc.resync(student.GroupID)
	}

	middleware.LogActivity(c, "UPDATE", "students", student.ID, nil)

	return c.JSON(fiber.Map{
		"student": utils.ToStudentDTO(student, time.Now()),
	})
}

// DeleteStudent soft-deletes a student and resyncs their group
func (sc *StudentController) DeleteStudent(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid student ID",
		})
	}

	var student models.Student
	if err := database.DB.First(&student, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Student not found",
		})
	}

	groupID := student.GroupID

	if err := database.DB.Delete(&student).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete student",
		})
	}

	sc.resync(groupID)

	middleware.LogActivity(c, "DELETE", "students", student.ID, nil)

	return c.JSON(fiber.Map{
		"message": "Student deleted successfully",
	})
}

// resync is best-effort; the nightly job reconciles anything missed here,
// but a failure leaves the group metrics stale until then, so it warns.
func (sc *StudentController) resync(groupID *uint) {
	if groupID == nil {
		return
	}
	if err := sc.metrics.Sync(groupID); err != nil {
		logrus.WithError(err).WithField("group_id", *groupID).Warn("group metrics resync failed")
	}
}

func sameGroup(a, b *uint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// filterByPaymentStatus keeps students whose resolved payment status matches.
func filterByPaymentStatus(dtos []utils.StudentDTO, status string) []utils.StudentDTO {
	filtered := dtos[:0]
	for _, dto := range dtos {
		if dto.Payment.Status == status {
			filtered = append(filtered, dto)
		}
	}
	return filtered
}

// pageOf cuts one page out of an in-memory result set.
func pageOf(dtos []utils.StudentDTO, offset, limit int) []utils.StudentDTO {
	if offset >= len(dtos) {
		return []utils.StudentDTO{}
	}
	end := offset + limit
	if end > len(dtos) {
		end = len(dtos)
	}
	return dtos[offset:end]
}
