package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/talentbridge/placement-backend/internal/config"
	"github.com/talentbridge/placement-backend/internal/database"
)

// MaintenanceService runs the recurring sweeps: notification retention,
// account purge, overdue stage reminders and token cleanup. Each sweep is
// idempotent so the scheduler and the manual endpoints can both fire it.
type MaintenanceService struct {
	cfg              config.CronConfig
	userRepo         *database.UserRepository
	agencyRepo       *database.AgencyRepository
	labourRepo       *database.LabourRepository
	refreshTokenRepo *database.RefreshTokenRepository
	notificationRepo *database.NotificationRepository
	notificationSvc  *NotificationService
}

// NewMaintenanceService creates a new MaintenanceService
func NewMaintenanceService(
	cfg config.CronConfig,
	userRepo *database.UserRepository,
	agencyRepo *database.AgencyRepository,
	labourRepo *database.LabourRepository,
	refreshTokenRepo *database.RefreshTokenRepository,
	notificationRepo *database.NotificationRepository,
	notificationSvc *NotificationService,
) *MaintenanceService {
	return &MaintenanceService{
		cfg:              cfg,
		userRepo:         userRepo,
		agencyRepo:       agencyRepo,
		labourRepo:       labourRepo,
		refreshTokenRepo: refreshTokenRepo,
		notificationRepo: notificationRepo,
		notificationSvc:  notificationSvc,
	}
}

// CleanupNotifications permanently deletes notifications archived longer
// than the retention window. Unarchived notifications are never touched.
func (s *MaintenanceService) CleanupNotifications() (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -s.cfg.ArchivedRetentionDay)

	purged, err := s.notificationRepo.PurgeArchivedBefore(cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge archived notifications: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"purged": purged,
		"cutoff": cutoff,
	}).Info("Archived notifications purged")

	return purged, nil
}

// DeleteAccounts hard-deletes accounts whose soft-delete grace period has
// elapsed, cascading through the user's dependent rows first.
func (s *MaintenanceService) DeleteAccounts() (int, error) {
	cutoff := time.Now().AddDate(0, 0, -s.cfg.DeletedRetentionDay)

	userIDs, err := s.userRepo.GetPurgeableUserIDs(cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list purgeable accounts: %w", err)
	}

	deleted := 0
	for _, userID := range userIDs {
		if err := s.refreshTokenRepo.RevokeAllUserTokens(userID); err != nil {
			logrus.WithError(err).WithField("user_id", userID).Error("Failed to revoke tokens during purge")
			continue
		}
		if _, err := s.notificationRepo.DeleteByRecipient(userID); err != nil {
			logrus.WithError(err).WithField("user_id", userID).Error("Failed to delete notifications during purge")
			continue
		}

		// Agency accounts also own labour profiles and their stage ledgers.
		if agency, err := s.agencyRepo.GetByUserID(userID); err == nil {
			if _, err := s.labourRepo.DeleteByAgencyID(agency.ID); err != nil {
				logrus.WithError(err).WithField("agency_id", agency.ID).Error("Failed to delete labour profiles during purge")
				continue
			}
		} else if !errors.Is(err, database.ErrNotFound) {
			logrus.WithError(err).WithField("user_id", userID).Error("Failed to resolve agency during purge")
			continue
		}

		if err := s.userRepo.HardDelete(userID); err != nil {
			logrus.WithError(err).WithField("user_id", userID).Error("Failed to hard-delete account")
			continue
		}
		deleted++
	}

	logrus.WithFields(logrus.Fields{
		"candidates": len(userIDs),
		"deleted":    deleted,
	}).Info("Account purge completed")

	return deleted, nil
}

// SendOverdueReminders notifies agencies about labour stuck in a PENDING
// stage past the reminder window.
func (s *MaintenanceService) SendOverdueReminders() (int, error) {
	cutoff := time.Now().AddDate(0, 0, -s.cfg.OverdueStageDays)

	overdue, err := s.labourRepo.GetOverduePendingStages(cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list overdue stages: %w", err)
	}

	for _, row := range overdue {
		daysPending := int(time.Since(row.PendingFrom).Hours() / 24)
		s.notificationSvc.NotifyStageOverdue(row.AgencyUser, row.LabourName, row.Stage, daysPending)
	}

	logrus.WithField("reminders", len(overdue)).Info("Overdue stage reminders sent")
	return len(overdue), nil
}

// CleanupExpiredTokens removes expired and long-revoked refresh tokens.
func (s *MaintenanceService) CleanupExpiredTokens() (int64, error) {
	removed, err := s.refreshTokenRepo.CleanupExpiredTokens()
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup refresh tokens: %w", err)
	}

	logrus.WithField("removed", removed).Info("Expired refresh tokens cleaned up")
	return removed, nil
}
