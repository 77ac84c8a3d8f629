package services

import (
	"time"

	"oquvmarkaz_go/database"
	"oquvmarkaz_go/models"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// MetricsScheduler runs the nightly reconciliation: flip stored payment
// flags of students whose validity window lapsed, then recompute every
// group's cached metrics. The stored flag is only a cache, but letting it
// converge overnight keeps list views honest between resyncs.
type MetricsScheduler struct {
	cron    *cron.Cron
	metrics *GroupMetricsService
}

func NewMetricsScheduler() *MetricsScheduler {
	return &MetricsScheduler{
		cron:    cron.New(),
		metrics: NewGroupMetricsService(),
	}
}

// Start schedules the nightly job at 02:00 server time.
func (s *MetricsScheduler) Start() {
	_, err := s.cron.AddFunc("0 2 * * *", s.runNightly)
	if err != nil {
		logrus.WithError(err).Error("failed to schedule nightly metrics job")
		return
	}
	s.cron.Start()
	logrus.Info("metrics scheduler started (nightly at 02:00)")
}

// Stop halts the scheduler, waiting for a running job to finish.
func (s *MetricsScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *MetricsScheduler) runNightly() {
	start := time.Now()
	expired := s.reconcileStoredStatuses(start)
	if err := s.metrics.Sync(nil); err != nil {
		logrus.WithError(err).Error("nightly group metrics sync failed")
		return
	}
	logrus.WithFields(logrus.Fields{
		"expired_flipped": expired,
		"duration":        time.Since(start).String(),
	}).Info("nightly metrics reconciliation done")
}

// reconcileStoredStatuses marks students unpaid whose window has lapsed.
// Grace-period students (enrolled this month) are left alone.
func (s *MetricsScheduler) reconcileStoredStatuses(now time.Time) int64 {
	graceCutoff := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	res := database.DB.Model(&models.Student{}).
		Where("payment_status = ?", PaymentStatusPaid).
		Where("payment_valid_until IS NULL OR payment_valid_until < ?", now).
		Where("created_at < ?", graceCutoff).
		Update("payment_status", PaymentStatusUnpaid)
	if res.Error != nil {
		logrus.WithError(res.Error).Error("failed to reconcile stored payment statuses")
		return 0
	}
	return res.RowsAffected
}
