package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/talentbridge/placement-backend/internal/database"
	"github.com/talentbridge/placement-backend/internal/models"
)

// NotificationService persists workflow notifications and pushes them to
// live SSE subscribers. The insert is the delivery guarantee; the push is
// best effort and always happens after the row is committed.
type NotificationService struct {
	notificationRepo *database.NotificationRepository
	userRepo         *database.UserRepository
	hub              *NotificationHub
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notificationRepo *database.NotificationRepository, userRepo *database.UserRepository, hub *NotificationHub) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		hub:              hub,
	}
}

// Notify persists a notification and pushes it to the recipient's live
// connections. A failed insert is returned; a failed push is not an error.
func (s *NotificationService) Notify(recipientID uuid.UUID, nType models.NotificationType, priority models.NotificationPriority, title, message string, actionURL, actionText *string) (*models.Notification, error) {
	n := &models.Notification{
		RecipientID: recipientID,
		Type:        nType,
		Title:       title,
		Message:     message,
		Priority:    priority,
	}
	if actionURL != nil {
		n.ActionURL = models.NewNullString(*actionURL)
	}
	if actionText != nil {
		n.ActionText = models.NewNullString(*actionText)
	}

	if err := s.notificationRepo.Create(n); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	s.hub.Publish(n)
	return n, nil
}

// NotifyAdmins fans one notification out to every admin account.
func (s *NotificationService) NotifyAdmins(nType models.NotificationType, priority models.NotificationPriority, title, message string) {
	adminIDs, err := s.userRepo.GetAdminUserIDs()
	if err != nil {
		logrus.WithError(err).Error("Failed to load admin recipients")
		return
	}

	for _, adminID := range adminIDs {
		if _, err := s.Notify(adminID, nType, priority, title, message, nil, nil); err != nil {
			logrus.WithError(err).WithField("recipient_id", adminID).Error("Failed to notify admin")
		}
	}
}

// NotifyStageAdvanced tells the agency that a labour moved to a new stage.
func (s *NotificationService) NotifyStageAdvanced(agencyUserID uuid.UUID, labourName string, stage models.Stage) {
	title := "Stage updated"
	message := fmt.Sprintf("%s has moved to stage %s", labourName, stage)

	if _, err := s.Notify(agencyUserID, models.NotificationStageAdvanced, models.PriorityNormal, title, message, nil, nil); err != nil {
		logrus.WithError(err).Error("Failed to send stage notification")
	}
}

// NotifyAssignmentStatus tells the agency that a review track changed on one
// of its submissions.
func (s *NotificationService) NotifyAssignmentStatus(agencyUserID uuid.UUID, labourName string, party string, status models.PartyStatus, note *string) {
	priority := models.PriorityNormal
	if status == models.PartyStatusRejected {
		priority = models.PriorityHigh
	}

	title := "Submission reviewed"
	message := fmt.Sprintf("%s review for %s: %s", party, labourName, status)
	if note != nil && *note != "" {
		message = fmt.Sprintf("%s (%s)", message, *note)
	}

	if _, err := s.Notify(agencyUserID, models.NotificationAssignmentStatus, priority, title, message, nil, nil); err != nil {
		logrus.WithError(err).Error("Failed to send assignment status notification")
	}
}

// NotifyBackupPromoted tells the agency that a backup candidate was moved
// into the active pool after a rejection.
func (s *NotificationService) NotifyBackupPromoted(agencyUserID uuid.UUID, labourName string) {
	title := "Backup candidate promoted"
	message := fmt.Sprintf("Backup candidate %s has been submitted for client review", labourName)

	if _, err := s.Notify(agencyUserID, models.NotificationBackupPromoted, models.PriorityHigh, title, message, nil, nil); err != nil {
		logrus.WithError(err).Error("Failed to send promotion notification")
	}
}

// NotifyAgencyStatus tells an agency account about a verification decision.
func (s *NotificationService) NotifyAgencyStatus(agencyUserID uuid.UUID, status models.VerificationStatus, note *string) {
	priority := models.PriorityNormal
	if status == models.VerificationRejected || status == models.VerificationSuspended {
		priority = models.PriorityHigh
	}

	title := "Agency verification updated"
	message := fmt.Sprintf("Your agency verification status is now %s", status)
	if note != nil && *note != "" {
		message = fmt.Sprintf("%s: %s", message, *note)
	}

	if _, err := s.Notify(agencyUserID, models.NotificationAgencyStatus, priority, title, message, nil, nil); err != nil {
		logrus.WithError(err).Error("Failed to send agency status notification")
	}
}

// NotifyRequirementStatus tells a client about a review decision on their
// labour requirement.
func (s *NotificationService) NotifyRequirementStatus(clientUserID uuid.UUID, requirementTitle string, status models.RequirementStatus, note *string) {
	title := "Requirement reviewed"
	message := fmt.Sprintf("Requirement %q is now %s", requirementTitle, status)
	if note != nil && *note != "" {
		message = fmt.Sprintf("%s: %s", message, *note)
	}

	if _, err := s.Notify(clientUserID, models.NotificationRequirementStatus, models.PriorityNormal, title, message, nil, nil); err != nil {
		logrus.WithError(err).Error("Failed to send requirement status notification")
	}
}

// NotifyStageOverdue reminds an agency about a labour stuck in a pending
// stage past the reminder window.
func (s *NotificationService) NotifyStageOverdue(agencyUserID uuid.UUID, labourName string, stage models.Stage, daysPending int) {
	title := "Stage overdue"
	message := fmt.Sprintf("%s has been pending at stage %s for %d days", labourName, stage, daysPending)

	if _, err := s.Notify(agencyUserID, models.NotificationStageOverdue, models.PriorityHigh, title, message, nil, nil); err != nil {
		logrus.WithError(err).Error("Failed to send overdue reminder")
	}
}
