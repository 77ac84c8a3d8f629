package utils

import (
	"time"

	"oquvmarkaz_go/models"
	"oquvmarkaz_go/services"
)

// Compact representations used across APIs
type TeacherShort struct {
	ID        uint   `json:"id"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Subject   string `json:"subject,omitempty"`
}

type CourseShort struct {
	ID    uint   `json:"id"`
	Title string `json:"title,omitempty"`
	Price string `json:"price,omitempty"`
}

type GroupShort struct {
	ID   uint   `json:"id"`
	Name string `json:"name,omitempty"`
}

// StudentDTO carries both the stored payment flag and the resolver's
// effective state, so clients never have to re-derive expiry themselves.
type StudentDTO struct {
	ID             uint                  `json:"id"`
	FirstName      string                `json:"first_name"`
	LastName       string                `json:"last_name"`
	Phone          string                `json:"phone,omitempty"`
	ParentPhone    string                `json:"parent_phone,omitempty"`
	Group          *GroupShort           `json:"group,omitempty"`
	MonthlyPayment float64               `json:"monthly_payment"`
	StoredStatus   string                `json:"stored_status"`
	Payment        services.PaymentState `json:"payment"`
	ValidUntil     *time.Time            `json:"payment_valid_until,omitempty"`
	LastPaidMonth  *string               `json:"last_paid_month,omitempty"`
	EnrolledAt     time.Time             `json:"enrolled_at"`
	Notes          string                `json:"notes,omitempty"`
}

type GroupDTO struct {
	ID              uint          `json:"id"`
	Name            string        `json:"name"`
	Teacher         *TeacherShort `json:"teacher,omitempty"`
	Course          *CourseShort  `json:"course,omitempty"`
	Schedule        string        `json:"schedule,omitempty"`
	MaxStudents     int           `json:"max_students"`
	CurrentStudents int           `json:"current_students"`
	MonthlyRevenue  float64       `json:"monthly_revenue"`
	AttendanceRate  float64       `json:"attendance_rate"`
	Status          string        `json:"status"`
	Students        []StudentDTO  `json:"students,omitempty"`
}

// ToStudentDTO maps a student, resolving the effective payment state at now.
func ToStudentDTO(s models.Student, now time.Time) StudentDTO {
	enrolledAt := s.CreatedAt
	dto := StudentDTO{
		ID:             s.ID,
		FirstName:      s.FirstName,
		LastName:       s.LastName,
		Phone:          s.Phone,
		ParentPhone:    s.ParentPhone,
		MonthlyPayment: s.MonthlyPayment,
		StoredStatus:   s.PaymentStatus,
		Payment:        services.ResolvePaymentStatus(&enrolledAt, s.PaymentValidUntil, s.PaymentStatus, now),
		ValidUntil:     s.PaymentValidUntil,
		LastPaidMonth:  s.LastPaidMonth,
		EnrolledAt:     s.CreatedAt,
		Notes:          s.Notes,
	}
	if s.Group != nil {
		dto.Group = &GroupShort{ID: s.Group.ID, Name: s.Group.Name}
	}
	return dto
}

func ToStudentDTOs(students []models.Student, now time.Time) []StudentDTO {
	dtos := make([]StudentDTO, 0, len(students))
	for _, s := range students {
		dtos = append(dtos, ToStudentDTO(s, now))
	}
	return dtos
}

// ToGroupDTO maps a group. Assumes the caller preloaded Teacher, Course and
// Students where needed.
func ToGroupDTO(g models.Group, now time.Time) GroupDTO {
	dto := GroupDTO{
		ID:              g.ID,
		Name:            g.Name,
		Schedule:        g.Schedule,
		MaxStudents:     g.MaxStudents,
		CurrentStudents: g.CurrentStudents,
		MonthlyRevenue:  g.MonthlyRevenue,
		AttendanceRate:  g.AttendanceRate,
		Status:          g.Status,
	}
	if g.Teacher != nil {
		dto.Teacher = &TeacherShort{
			ID:        g.Teacher.ID,
			FirstName: g.Teacher.FirstName,
			LastName:  g.Teacher.LastName,
			Subject:   g.Teacher.Subject,
		}
	}
	if g.Course != nil {
		dto.Course = &CourseShort{ID: g.Course.ID, Title: g.Course.Title, Price: g.Course.Price}
	}
	if len(g.Students) > 0 {
		dto.Students = ToStudentDTOs(g.Students, now)
	}
	return dto
}

func ToGroupDTOs(groups []models.Group, now time.Time) []GroupDTO {
	dtos := make([]GroupDTO, 0, len(groups))
	for _, g := range groups {
		dtos = append(dtos, ToGroupDTO(g, now))
	}
	return dtos
}
