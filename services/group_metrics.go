package services

import (
	"time"

	"oquvmarkaz_go/database"
	"oquvmarkaz_go/models"

	"github.com/sirupsen/logrus"
)

// GroupMetricsService keeps Group.CurrentStudents and Group.MonthlyRevenue
// consistent with the student membership. The two fields are caches: every
// mutation of membership or payment state goes through Sync so no call site
// can leave them stale. Sync is idempotent.
type GroupMetricsService struct{}

func NewGroupMetricsService() *GroupMetricsService {
	return &GroupMetricsService{}
}

// ComputeGroupMetrics derives the member count and monthly revenue for a
// group from its students. Revenue counts a student's monthly payment only
// when the effective status (expiry rules applied) is paid, not the stored
// flag.
func ComputeGroupMetrics(students []models.Student, now time.Time) (count int, revenue float64) {
	count = len(students)
	for _, st := range students {
		enrolledAt := st.CreatedAt
		state := ResolvePaymentStatus(&enrolledAt, st.PaymentValidUntil, st.PaymentStatus, now)
		if state.Status == PaymentStatusPaid {
			revenue += st.MonthlyPayment
		}
	}
	return count, revenue
}

// Sync recomputes the cached metrics for one group, or for every group when
// groupID is nil. Must be called after student create/delete, group moves
// (both old and new group) and payment recording.
func (s *GroupMetricsService) Sync(groupID *uint) error {
	if groupID != nil {
		return s.syncOne(*groupID)
	}

	var ids []uint
	if err := database.DB.Model(&models.Group{}).Pluck("id", &ids).Error; err != nil {
		return err
	}
	for _, id := range ids {
		if err := s.syncOne(id); err != nil {
			return err
		}
	}
	return nil
}

func (s *GroupMetricsService) syncOne(groupID uint) error {
	var students []models.Student
	if err := database.DB.Where("group_id = ?", groupID).Find(&students).Error; err != nil {
		return err
	}

	count, revenue := ComputeGroupMetrics(students, time.Now())

	updates := map[string]interface{}{
		"current_students": count,
		"monthly_revenue":  revenue,
	}
	if err := database.DB.Model(&models.Group{}).Where("id = ?", groupID).Updates(updates).Error; err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"group_id":         groupID,
		"current_students": count,
		"monthly_revenue":  revenue,
	}).Debug("group metrics synced")

	return nil
}
