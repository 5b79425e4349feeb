package services

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CronService manages the scheduled maintenance sweeps
type CronService struct {
	cron           *cron.Cron
	maintenanceSvc *MaintenanceService
}

// NewCronService creates a new CronService
func NewCronService(maintenanceSvc *MaintenanceService) *CronService {
	return &CronService{
		cron:           cron.New(),
		maintenanceSvc: maintenanceSvc,
	}
}

// Start registers and starts all scheduled jobs.
// Cron format: minute hour day month weekday.
func (s *CronService) Start() error {
	logrus.Info("Starting cron service")

	// Purge archived notifications daily at 2 AM
	_, err := s.cron.AddFunc("0 2 * * *", s.cleanupNotificationsJob)
	if err != nil {
		return fmt.Errorf("failed to schedule notification cleanup job: %w", err)
	}

	// Hard-delete expired soft-deleted accounts daily at 3 AM
	_, err = s.cron.AddFunc("0 3 * * *", s.deleteAccountsJob)
	if err != nil {
		return fmt.Errorf("failed to schedule account purge job: %w", err)
	}

	// Overdue stage reminders daily at 8 AM
	_, err = s.cron.AddFunc("0 8 * * *", s.overdueRemindersJob)
	if err != nil {
		return fmt.Errorf("failed to schedule overdue reminders job: %w", err)
	}

	// Refresh token cleanup weekly on Sunday at 4 AM
	_, err = s.cron.AddFunc("0 4 * * 0", s.cleanupTokensJob)
	if err != nil {
		return fmt.Errorf("failed to schedule token cleanup job: %w", err)
	}

	s.cron.Start()
	logrus.Info("Cron service started")

	return nil
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *CronService) Stop() {
	logrus.Info("Stopping cron service")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logrus.Info("Cron service stopped")
}

func (s *CronService) cleanupNotificationsJob() {
	startTime := time.Now()

	purged, err := s.maintenanceSvc.CleanupNotifications()
	if err != nil {
		logrus.WithError(err).Error("Notification cleanup job failed")
		return
	}

	logrus.WithFields(logrus.Fields{
		"purged":   purged,
		"duration": time.Since(startTime).String(),
	}).Info("Notification cleanup job finished")
}

func (s *CronService) deleteAccountsJob() {
	startTime := time.Now()

	deleted, err := s.maintenanceSvc.DeleteAccounts()
	if err != nil {
		logrus.WithError(err).Error("Account purge job failed")
		return
	}

	logrus.WithFields(logrus.Fields{
		"deleted":  deleted,
		"duration": time.Since(startTime).String(),
	}).Info("Account purge job finished")
}

func (s *CronService) overdueRemindersJob() {
	startTime := time.Now()

	reminders, err := s.maintenanceSvc.SendOverdueReminders()
	if err != nil {
		logrus.WithError(err).Error("Overdue reminders job failed")
		return
	}

	logrus.WithFields(logrus.Fields{
		"reminders": reminders,
		"duration":  time.Since(startTime).String(),
	}).Info("Overdue reminders job finished")
}

func (s *CronService) cleanupTokensJob() {
	removed, err := s.maintenanceSvc.CleanupExpiredTokens()
	if err != nil {
		logrus.WithError(err).Error("Token cleanup job failed")
		return
	}

	logrus.WithField("removed", removed).Info("Token cleanup job finished")
}

// RunCleanupNotificationsNow runs the notification cleanup immediately
func (s *CronService) RunCleanupNotificationsNow() (int64, error) {
	return s.maintenanceSvc.CleanupNotifications()
}

// RunDeleteAccountsNow runs the account purge immediately
func (s *CronService) RunDeleteAccountsNow() (int, error) {
	return s.maintenanceSvc.DeleteAccounts()
}

// RunOverdueRemindersNow runs the overdue reminders sweep immediately
func (s *CronService) RunOverdueRemindersNow() (int, error) {
	return s.maintenanceSvc.SendOverdueReminders()
}

// GetJobStatus returns the status of scheduled jobs
func (s *CronService) GetJobStatus() map[string]interface{} {
	entries := s.cron.Entries()

	jobs := make([]map[string]interface{}, 0, len(entries))
	for _, entry := range entries {
		jobs = append(jobs, map[string]interface{}{
			"id":       entry.ID,
			"next_run": entry.Next,
			"prev_run": entry.Prev,
		})
	}

	return map[string]interface{}{
		"running":   len(entries) > 0,
		"job_count": len(entries),
		"jobs":      jobs,
	}
}
