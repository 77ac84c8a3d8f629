package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"oquvmarkaz_go/database"
	"oquvmarkaz_go/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Payment methods accepted by the back office.
var allowedPaymentMethods = map[string]struct{}{
	"cash":     {},
	"card":     {},
	"transfer": {},
}

// LedgerService owns the monthly payment ledger: one row per (student, month),
// upserted on repeat recordings, with the student's validity window derived
// from the paid month.
type LedgerService struct {
	metrics *GroupMetricsService
}

func NewLedgerService() *LedgerService {
	return &LedgerService{metrics: NewGroupMetricsService()}
}

// RecordPaymentInput describes a single tuition payment event.
type RecordPaymentInput struct {
	StudentID  uint
	Month      string // YYYY-MM
	Amount     float64
	Method     string
	Note       string
	RecordedBy uint
}

// LedgerUpdate reports what a successful recording changed.
type LedgerUpdate struct {
	Payment    models.MonthlyPayment `json:"payment"`
	Student    models.Student        `json:"student"`
	ValidUntil time.Time             `json:"valid_until"`
	Replaced   bool                  `json:"replaced"`
}

// ParseMonth validates a YYYY-MM ledger month.
func ParseMonth(month string) (time.Time, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(month))
	if err != nil {
		return time.Time{}, validationError(fmt.Sprintf("invalid month %q, expected YYYY-MM", month))
	}
	return t, nil
}

// MonthKey formats a time as a YYYY-MM ledger month.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// ValidUntilForMonth returns the first day of the month following the paid
// month: paying for 2025-03 keeps the student paid until 2025-04-01.
func ValidUntilForMonth(month time.Time) time.Time {
	return time.Date(month.Year(), month.Month()+1, 1, 0, 0, 0, 0, month.Location())
}

// RecordPayment upserts the (student, month) ledger row and moves the
// student's validity window forward. The ledger upsert and the student update
// run in one transaction: either both land or neither does. The audit history
// append happens after commit and is best-effort only - the primary financial
// state is already correct, so a failure there is logged, never surfaced.
func (s *LedgerService) RecordPayment(in RecordPaymentInput) (*LedgerUpdate, error) {
	if in.StudentID == 0 {
		return nil, validationError("student id is required")
	}
	monthStart, err := ParseMonth(in.Month)
	if err != nil {
		return nil, err
	}
	month := MonthKey(monthStart)
	if in.Amount <= 0 {
		return nil, validationError("amount must be positive")
	}
	method := strings.ToLower(strings.TrimSpace(in.Method))
	if _, ok := allowedPaymentMethods[method]; !ok {
		return nil, validationError(fmt.Sprintf("unsupported payment method %q", in.Method))
	}

	validUntil := ValidUntilForMonth(monthStart)

	var student models.Student
	if err := database.DB.First(&student, in.StudentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, validationError("student not found")
		}
		return nil, err
	}

	update := &LedgerUpdate{ValidUntil: validUntil}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		// Upsert on the (student_id, month) uniqueness key: a second
		// recording for the same month replaces the first, never duplicates.
		var payment models.MonthlyPayment
		ferr := tx.Where("student_id = ? AND month = ?", in.StudentID, month).First(&payment).Error
		switch {
		case ferr == nil:
			update.Replaced = true
			payment.Amount = in.Amount
			payment.Method = method
			payment.Status = "paid"
			payment.Note = in.Note
			payment.PaymentDate = time.Now()
			if err := tx.Save(&payment).Error; err != nil {
				return err
			}
		case errors.Is(ferr, gorm.ErrRecordNotFound):
			payment = models.MonthlyPayment{
				StudentID:   in.StudentID,
				Month:       month,
				Amount:      in.Amount,
				Method:      method,
				Status:      "paid",
				Note:        in.Note,
				PaymentDate: time.Now(),
			}
			if err := tx.Create(&payment).Error; err != nil {
				return err
			}
		default:
			return ferr
		}
		update.Payment = payment

		// The student row only moves if the ledger write landed.
		studentUpdates := map[string]interface{}{
			"payment_status":      PaymentStatusPaid,
			"payment_valid_until": validUntil,
			"last_paid_month":     month,
		}
		if err := tx.Model(&models.Student{}).Where("id = ?", in.StudentID).Updates(studentUpdates).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, &InternalError{Code: "ledger_tx_failed", Err: err}
	}

	if err := database.DB.First(&update.Student, in.StudentID).Error; err != nil {
		return nil, err
	}

	// Audit trail, best-effort after the primary writes committed.
	history := models.PaymentHistory{
		StudentID:  in.StudentID,
		Month:      month,
		Amount:     in.Amount,
		Method:     method,
		Note:       in.Note,
		RecordedBy: in.RecordedBy,
	}
	if herr := database.DB.Create(&history).Error; herr != nil {
		logrus.WithError(herr).WithFields(logrus.Fields{
			"student_id": in.StudentID,
			"month":      month,
		}).Warn("payment recorded but history append failed")
	}

	// Payment status changed, so the group's cached revenue did too.
	if update.Student.GroupID != nil {
		if serr := s.metrics.Sync(update.Student.GroupID); serr != nil {
			logrus.WithError(serr).WithField("group_id", *update.Student.GroupID).
				Warn("group metrics resync failed after payment")
		}
	}

	return update, nil
}

// OutstandingMonths returns the most recent lastN calendar months for which
// the student has no paid ledger row, most recent first. Pure computation
// over the fetched rows; nothing is mutated.
func (s *LedgerService) OutstandingMonths(studentID uint, lastN int, now time.Time) ([]string, error) {
	if lastN <= 0 {
		return nil, validationError("months window must be positive")
	}

	var payments []models.MonthlyPayment
	if err := database.DB.
		Where("student_id = ? AND status = ?", studentID, "paid").
		Find(&payments).Error; err != nil {
		return nil, err
	}

	paid := make(map[string]bool, len(payments))
	for _, p := range payments {
		paid[p.Month] = true
	}
	return outstandingMonths(paid, lastN, now), nil
}

func outstandingMonths(paid map[string]bool, lastN int, now time.Time) []string {
	owed := make([]string, 0, lastN)
	cursor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	for i := 0; i < lastN; i++ {
		key := MonthKey(cursor)
		if !paid[key] {
			owed = append(owed, key)
		}
		cursor = cursor.AddDate(0, -1, 0)
	}
	return owed
}

// History returns the append-only audit entries for a student, newest first.
func (s *LedgerService) History(studentID uint) ([]models.PaymentHistory, error) {
	var entries []models.PaymentHistory
	err := database.DB.
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&entries).Error
	return entries, err
}

// Payments returns the ledger rows for a student, newest month first.
func (s *LedgerService) Payments(studentID uint) ([]models.MonthlyPayment, error) {
	var rows []models.MonthlyPayment
	err := database.DB.
		Where("student_id = ?", studentID).
		Order("month DESC").
		Find(&rows).Error
	return rows, err
}
