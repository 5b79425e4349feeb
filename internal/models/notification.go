package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// NotificationType categorizes workflow notifications
type NotificationType string

const (
	NotificationStageAdvanced     NotificationType = "STAGE_ADVANCED"
	NotificationStageOverdue      NotificationType = "STAGE_OVERDUE"
	NotificationAssignmentStatus  NotificationType = "ASSIGNMENT_STATUS"
	NotificationBackupPromoted    NotificationType = "BACKUP_PROMOTED"
	NotificationRequirementStatus NotificationType = "REQUIREMENT_STATUS"
	NotificationAgencyStatus      NotificationType = "AGENCY_STATUS"
	NotificationSystem            NotificationType = "SYSTEM"
)

// NotificationPriority is the display priority of a notification
type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityNormal NotificationPriority = "normal"
	PriorityHigh   NotificationPriority = "high"
)

// Notification is a persisted per-user message. The live push is best
// effort; the row is the delivery guarantee.
type Notification struct {
	ID          uuid.UUID            `json:"id" db:"id"`
	RecipientID uuid.UUID            `json:"recipient_id" db:"recipient_id"`
	Type        NotificationType     `json:"type" db:"type"`
	Title       string               `json:"title" db:"title"`
	Message     string               `json:"message" db:"message"`
	Priority    NotificationPriority `json:"priority" db:"priority"`
	ActionURL   NullString           `json:"action_url,omitempty" db:"action_url"`
	ActionText  NullString           `json:"action_text,omitempty" db:"action_text"`
	IsRead      bool                 `json:"is_read" db:"is_read"`
	ReadAt      NullTime             `json:"read_at,omitempty" db:"read_at"`
	IsArchived  bool                 `json:"is_archived" db:"is_archived"`
	ArchivedAt  NullTime             `json:"archived_at,omitempty" db:"archived_at"`
	CreatedAt   time.Time            `json:"created_at" db:"created_at"`
}

// Notification patch actions accepted by PATCH /notifications
const (
	NotificationActionMarkAsRead    = "markAsRead"
	NotificationActionMarkAllAsRead = "markAllAsRead"
	NotificationActionArchive       = "archive"
	NotificationActionUnarchive     = "unarchive"
)

// PatchNotificationRequest is the payload for PATCH /notifications
type PatchNotificationRequest struct {
	Action         string     `json:"action" binding:"required"`
	NotificationID *uuid.UUID `json:"notification_id,omitempty"`
}

// Validate checks the action and its required fields
func (r *PatchNotificationRequest) Validate() error {
	switch r.Action {
	case NotificationActionMarkAllAsRead:
		return nil
	case NotificationActionMarkAsRead, NotificationActionArchive, NotificationActionUnarchive:
		if r.NotificationID == nil {
			return errors.New("notification_id is required for this action")
		}
		return nil
	}
	return errors.New("invalid notification action")
}

// BulkPatchNotificationRequest is the payload for PATCH /notifications/bulk
type BulkPatchNotificationRequest struct {
	Action          string      `json:"action" binding:"required"`
	NotificationIDs []uuid.UUID `json:"notification_ids" binding:"required,min=1"`
}

// Validate checks the bulk action
func (r *BulkPatchNotificationRequest) Validate() error {
	switch r.Action {
	case NotificationActionMarkAsRead, NotificationActionArchive, NotificationActionUnarchive:
		if len(r.NotificationIDs) == 0 {
			return errors.New("notification_ids cannot be empty")
		}
		return nil
	}
	return errors.New("invalid bulk notification action")
}
