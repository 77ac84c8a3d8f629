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

type GroupController struct {
	metrics groupSyncer
}

func NewGroupController() *GroupController {
	return &GroupController{metrics: services.NewGroupMetricsService()}
}

// GetGroups returns groups with teacher and course preloaded
func (gc *GroupController) GetGroups(c *fiber.Ctx) error {
	var groups []models.Group

	query := database.DB.Model(&models.Group{})

	if teacherID := c.Query("teacher_id"); teacherID != "" {
		query = query.Where("teacher_id = ?", teacherID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Preload("Teacher").Preload("Course").
		Order("name").Find(&groups).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch groups",
		})
	}

	return c.JSON(fiber.Map{
		"groups": utils.ToGroupDTOs(groups, time.Now()),
	})
}

// GetGroup returns a group with its students
func (gc *GroupController) GetGroup(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid group ID",
		})
	}

	var group models.Group
	if err := database.DB.Preload("Teacher").Preload("Course").Preload("Students").
		First(&group, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Group not found",
		})
	}

	return c.JSON(fiber.Map{
		"group": utils.ToGroupDTO(group, time.Now()),
	})
}

// CreateGroup creates a new group
func (gc *GroupController) CreateGroup(c *fiber.Ctx) error {
	var req struct {
		Name        string `json:"name"`
		TeacherID   *uint  `json:"teacher_id"`
		CourseID    *uint  `json:"course_id"`
		Schedule    string `json:"schedule"`
		MaxStudents int    `json:"max_students"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Group name is required",
		})
	}
	if req.MaxStudents <= 0 {
		req.MaxStudents = 12
	}

	if req.TeacherID != nil {
		var teacher models.Teacher
		if err := database.DB.First(&teacher, *req.TeacherID).Error; err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Teacher not found",
			})
		}
	}
	if req.CourseID != nil {
		var course models.Course
		if err := database.DB.First(&course, *req.CourseID).Error; err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Course not found",
			})
		}
	}

	group := models.Group{
		Name:        req.Name,
		TeacherID:   req.TeacherID,
		CourseID:    req.CourseID,
		Schedule:    req.Schedule,
		MaxStudents: req.MaxStudents,
		Status:      "empty",
	}

	if err := database.DB.Create(&group).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create group",
		})
	}

	middleware.LogActivity(c, "CREATE", "groups", group.ID, nil)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"group": utils.ToGroupDTO(group, time.Now()),
	})
}

// UpdateGroup modifies a group
func (gc *GroupController) UpdateGroup(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid group ID",
		})
	}

	var group models.Group
	if err := database.DB.First(&group, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Group not found",
		})
	}

	var req struct {
		Name           *string  `json:"name"`
		TeacherID      *uint    `json:"teacher_id"`
		CourseID       *uint    `json:"course_id"`
		Schedule       *string  `json:"schedule"`
		MaxStudents    *int     `json:"max_students"`
		AttendanceRate *float64 `json:"attendance_rate"`
		Status         *string  `json:"status"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Name != nil {
		group.Name = *req.Name
	}
	if req.TeacherID != nil {
		if *req.TeacherID == 0 {
			group.TeacherID = nil
		} else {
			var teacher models.Teacher
			if err := database.DB.First(&teacher, *req.TeacherID).Error; err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Teacher not found",
				})
			}
			group.TeacherID = req.TeacherID
		}
	}
	if req.CourseID != nil {
		if *req.CourseID == 0 {
			group.CourseID = nil
		} else {
			var course models.Course
			if err := database.DB.First(&course, *req.CourseID).Error; err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Course not found",
				})
			}
			group.CourseID = req.CourseID
		}
	}
	if req.Schedule != nil {
		group.Schedule = *req.Schedule
	}
	if req.MaxStudents != nil && *req.MaxStudents > 0 {
		group.MaxStudents = *req.MaxStudents
	}
	if req.AttendanceRate != nil {
		if *req.AttendanceRate < 0 || *req.AttendanceRate > 100 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Attendance rate must be between 0 and 100",
			})
		}
		group.AttendanceRate = *req.AttendanceRate
	}
	if req.Status != nil {
		switch *req.Status {
		case "active", "full", "empty", "archived":
			group.Status = *req.Status
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid status",
			})
		}
	}

	if err := database.DB.Save(&group).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update group",
		})
	}

	middleware.LogActivity(c, "UPDATE", "groups", group.ID, nil)

	return c.JSON(fiber.Map{
		"group": utils.ToGroupDTO(group, time.Now()),
	})
}

// DeleteGroup soft-deletes a group and detaches its students
func (gc *GroupController) DeleteGroup(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid group ID",
		})
	}

	var group models.Group
	if err := database.DB.First(&group, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Group not found",
		})
	}

	if err := database.DB.Model(&models.Student{}).
		Where("group_id = ?", group.ID).
		Update("group_id", nil).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to detach students",
		})
	}

	if err := database.DB.Delete(&group).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete group",
		})
	}

	middleware.LogActivity(c, "DELETE", "groups", group.ID, nil)

	return c.JSON(fiber.Map{
		"message": "Group deleted successfully",
	})
}

// AddStudent assigns an existing student to the group
func (gc *GroupController) AddStudent(c *fiber.Ctx) error {
	groupID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid group ID",
		})
	}

	var req struct {
		StudentID uint `json:"student_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.StudentID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "student_id is required",
		})
	}

	var group models.Group
	if err := database.DB.First(&group, uint(groupID)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Group not found",
		})
	}
	if group.MaxStudents > 0 && group.CurrentStudents >= group.MaxStudents {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Group is full",
		})
	}

	var student models.Student
	if err := database.DB.First(&student, req.StudentID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Student not found",
		})
	}

	oldGroupID := student.GroupID
	gid := uint(groupID)
	if err := database.DB.Model(&student).Update("group_id", gid).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to add student to group",
		})
	}

	gc.resync(&gid)
	if oldGroupID != nil && *oldGroupID != gid {
		gc.resync(oldGroupID)
	}
	gc.refreshStatus(&group)

	middleware.LogActivity(c, "UPDATE", "groups", group.ID,
		map[string]uint{"added_student": student.ID})

	return c.JSON(fiber.Map{
		"message": "Student added to group",
	})
}

// RemoveStudent detaches a student from the group
func (gc *GroupController) RemoveStudent(c *fiber.Ctx) error {
	groupID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid group ID",
		})
	}
	studentID, err := strconv.ParseUint(c.Params("studentId"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid student ID",
		})
	}

	var group models.Group
	if err := database.DB.First(&group, uint(groupID)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Group not found",
		})
	}

	var student models.Student
	if err := database.DB.Where("id = ? AND group_id = ?", uint(studentID), uint(groupID)).
		First(&student).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Student not found in this group",
		})
	}

	if err := database.DB.Model(&student).Update("group_id", nil).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to remove student from group",
		})
	}

	gid := uint(groupID)
	gc.resync(&gid)
	gc.refreshStatus(&group)

	middleware.LogActivity(c, "UPDATE", "groups", group.ID,
		map[string]uint{"removed_student": student.ID})

	return c.JSON(fiber.Map{
		"message": "Student removed from group",
	})
}

// resync is best-effort like the student controller's; failures are warned
// so a stale dashboard has a trace in the logs.
func (gc *GroupController) resync(groupID *uint) {
	if groupID == nil {
		return
	}
	if err := gc.metrics.Sync(groupID); err != nil {
		logrus.WithError(err).WithField("group_id", *groupID).Warn("group metrics resync failed")
	}
}

// refreshStatus moves a non-archived group between empty/active/full based on
// the freshly synced membership count.
func (gc *GroupController) refreshStatus(group *models.Group) {
	var fresh models.Group
	if err := database.DB.First(&fresh, group.ID).Error; err != nil {
		return
	}
	if fresh.Status == "archived" {
		return
	}

	status := "active"
	switch {
	case fresh.CurrentStudents == 0:
		status = "empty"
	case fresh.MaxStudents > 0 && fresh.CurrentStudents >= fresh.MaxStudents:
		status = "full"
	}
	if status != fresh.Status {
		database.DB.Model(&fresh).Update("status", status)
	}
}
