package models

import (
	"database/sql/driver"
	"time"

	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSON field type for GORM
type JSON []byte

func (j JSON) Value() (driver.Value, error) {
	if j.IsNull() {
		return nil, nil
	}
	return string(j), nil
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	s, ok := value.([]byte)
	if !ok {
		return nil
	}
	*j = append((*j)[0:0], s...)
	return nil
}

func (j JSON) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return nil
	}
	*j = append((*j)[0:0], data...)
	return nil
}

func (j JSON) IsNull() bool {
	return len(j) == 0 || string(j) == "null"
}

// User model for back-office accounts
type User struct {
	BaseModel
	Username string `json:"username" gorm:"size:100;not null;uniqueIndex"`
	Password string `json:"-" gorm:"size:255;not null"`
	Email    string `json:"email" gorm:"size:255"`
	Phone    string `json:"phone" gorm:"size:20"`
	Role     string `json:"role" gorm:"size:50;not null;default:'admin';type:enum('owner','admin','teacher')"` // owner, admin, teacher
	Status   string `json:"status" gorm:"size:50;not null;default:'active';type:enum('active','inactive')"`    // active, inactive
	Avatar   string `json:"avatar" gorm:"size:500"`
}

// Teacher model. Payout is never stored on the row; it is always recomputed
// from current group revenue and the session payout rate.
type Teacher struct {
	BaseModel
	UserID    *uint  `json:"user_id" gorm:"uniqueIndex"`
	FirstName string `json:"first_name" gorm:"size:100;not null"`
	LastName  string `json:"last_name" gorm:"size:100"`
	Phone     string `json:"phone" gorm:"size:20"`
	Subject   string `json:"subject" gorm:"size:100"`
	Status    string `json:"status" gorm:"size:50;not null;default:'active';type:enum('active','inactive')"` // active, inactive

	// Relationships
	User   *User   `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Groups []Group `json:"groups,omitempty" gorm:"foreignKey:TeacherID"`
}

// Group model. CurrentStudents and MonthlyRevenue are caches recomputed by the
// group metrics service from the student membership, never hand-edited.
// TeacherID is a weak back-reference: deleting a teacher keeps the group.
type Group struct {
	BaseModel
	Name            string  `json:"name" gorm:"size:100;not null"`
	TeacherID       *uint   `json:"teacher_id" gorm:"index"`
	CourseID        *uint   `json:"course_id" gorm:"index"`
	Schedule        string  `json:"schedule" gorm:"size:200"`
	MaxStudents     int     `json:"max_students" gorm:"not null;default:12"`
	CurrentStudents int     `json:"current_students" gorm:"not null;default:0"`
	MonthlyRevenue  float64 `json:"monthly_revenue" gorm:"not null;default:0"`
	AttendanceRate  float64 `json:"attendance_rate" gorm:"not null;default:0"`
	Status          string  `json:"status" gorm:"size:50;not null;default:'active';type:enum('active','full','empty','archived')"`

	// Relationships
	Teacher  *Teacher  `json:"teacher,omitempty" gorm:"foreignKey:TeacherID"`
	Course   *Course   `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	Students []Student `json:"students,omitempty" gorm:"foreignKey:GroupID"`
}

// Student model. CreatedAt doubles as the enrollment timestamp.
// PaymentStatus is a stored cache that may lag behind the effective status;
// anything financial goes through the payment status resolver instead of
// reading this flag directly.
// Invariant: PaymentValidUntil, when present, is the first day of the month
// following LastPaidMonth.
type Student struct {
	BaseModel
	FirstName         string     `json:"first_name" gorm:"size:100;not null"`
	LastName          string     `json:"last_name" gorm:"size:100"`
	Phone             string     `json:"phone" gorm:"size:20"`
	ParentPhone       string     `json:"parent_phone" gorm:"size:20"`
	GroupID           *uint      `json:"group_id" gorm:"index"`
	MonthlyPayment    float64    `json:"monthly_payment" gorm:"not null;default:0"`
	PaymentStatus     string     `json:"payment_status" gorm:"size:50;not null;default:'unpaid';type:enum('paid','unpaid')"` // paid, unpaid
	PaymentValidUntil *time.Time `json:"payment_valid_until"`
	LastPaidMonth     *string    `json:"last_paid_month" gorm:"size:7"` // YYYY-MM
	Notes             string     `json:"notes" gorm:"type:text"`

	// Relationships
	Group *Group `json:"group,omitempty" gorm:"foreignKey:GroupID"`
}

// Course model. Price is stored the way the marketing site entered it
// ("1 200 000 so'm") and parsed defensively wherever it feeds a number.
type Course struct {
	BaseModel
	Title          string `json:"title" gorm:"size:255;not null"`
	TitleUz        string `json:"title_uz" gorm:"size:255"`
	Description    string `json:"description" gorm:"type:text"`
	Price          string `json:"price" gorm:"size:100"`
	DurationMonths int    `json:"duration_months"`
	TeacherID      *uint  `json:"teacher_id" gorm:"index"`
	Active         bool   `json:"active" gorm:"default:true"`

	// Relationships
	Teacher *Teacher `json:"teacher,omitempty" gorm:"foreignKey:TeacherID"`
}

// MonthlyPayment is the ledger row: exactly one record per (student, month).
// Recording a payment for an existing month replaces the old values.
type MonthlyPayment struct {
	BaseModel
	StudentID   uint      `json:"student_id" gorm:"not null;uniqueIndex:idx_student_month"`
	Month       string    `json:"month" gorm:"size:7;not null;uniqueIndex:idx_student_month"` // YYYY-MM
	Amount      float64   `json:"amount" gorm:"not null"`
	Method      string    `json:"method" gorm:"size:50;not null;type:enum('cash','card','transfer')"`
	Status      string    `json:"status" gorm:"size:50;not null;default:'paid';type:enum('paid','pending','cancelled')"`
	Note        string    `json:"note" gorm:"size:500"`
	PaymentDate time.Time `json:"payment_date"`
	ReceiptURL  string    `json:"receipt_url" gorm:"size:500"`

	// Relationships
	Student Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}

// PaymentHistory is the append-only audit log of payment events. Rows are
// never updated; history views read it, status derivation does not.
type PaymentHistory struct {
	BaseModel
	StudentID  uint    `json:"student_id" gorm:"not null;index"`
	Month      string  `json:"month" gorm:"size:7;not null"`
	Amount     float64 `json:"amount" gorm:"not null"`
	Method     string  `json:"method" gorm:"size:50"`
	Note       string  `json:"note" gorm:"size:500"`
	RecordedBy uint    `json:"recorded_by"`

	// Relationships
	Student Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}

// Application is an enrollment request from the marketing site. The financial
// dashboard treats each application with a course as one unit of that course's
// price realized at CreatedAt.
type Application struct {
	BaseModel
	FullName string `json:"full_name" gorm:"size:200;not null"`
	Phone    string `json:"phone" gorm:"size:20;not null"`
	CourseID *uint  `json:"course_id" gorm:"index"`
	Message  string `json:"message" gorm:"size:500"`
	Status   string `json:"status" gorm:"size:50;not null;default:'new';type:enum('new','contacted','enrolled','rejected')"`

	// Relationships
	Course *Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

// Log model for activity tracking
type ActivityLog struct {
	BaseModel
	UserID     uint   `json:"user_id"`
	Action     string `json:"action" gorm:"size:100;not null"`
	Resource   string `json:"resource" gorm:"size:100;not null"`
	ResourceID uint   `json:"resource_id"`
	Details    JSON   `json:"details" gorm:"type:json"`
	IPAddress  string `json:"ip_address" gorm:"size:45"`
	UserAgent  string `json:"user_agent" gorm:"size:500"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// Notification model
type Notification struct {
	BaseModel
	UserID    uint       `json:"user_id" gorm:"not null"`
	Title     string     `json:"title" gorm:"size:255;not null"`
	TitleUz   string     `json:"title_uz" gorm:"size:255"`
	Message   string     `json:"message" gorm:"type:text;not null"`
	MessageUz string     `json:"message_uz" gorm:"type:text"`
	Type      string     `json:"type" gorm:"size:50;not null;type:enum('info','warning','error','success')"` // info, warning, error, success
	Read      bool       `json:"read" gorm:"default:false"`
	ReadAt    *time.Time `json:"read_at"`
	Data      JSON       `json:"data,omitempty" gorm:"type:json"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
