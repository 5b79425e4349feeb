package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/talentbridge/placement-backend/internal/models"
)

// NotificationRepository handles database operations for notifications
type NotificationRepository struct {
	db DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

const notificationColumns = `id, recipient_id, type, title, message, priority,
	action_url, action_text, is_read, read_at, is_archived, archived_at, created_at`

// Create inserts a notification row
func (r *NotificationRepository) Create(n *models.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.Priority == "" {
		n.Priority = models.PriorityNormal
	}

	query := `
		INSERT INTO notifications (id, recipient_id, type, title, message, priority, action_url, action_text)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	err := r.db.QueryRow(query,
		n.ID, n.RecipientID, n.Type, n.Title, n.Message, n.Priority,
		n.ActionURL, n.ActionText,
	).Scan(&n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// GetByRecipient lists a user's notifications, newest first. Archived rows
// are excluded unless includeArchived is set.
func (r *NotificationRepository) GetByRecipient(recipientID uuid.UUID, includeArchived bool, limit, offset int) ([]models.Notification, error) {
	// Single place that bounds page size; callers pass the raw query value.
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE recipient_id = $1 AND ($2 OR is_archived = FALSE)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	notifications := []models.Notification{}
	if err := r.db.Select(&notifications, query, recipientID, includeArchived, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}

	return notifications, nil
}

// CountUnread counts unread, unarchived notifications for a user
func (r *NotificationRepository) CountUnread(recipientID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*)
		FROM notifications
		WHERE recipient_id = $1 AND is_read = FALSE AND is_archived = FALSE`,
		recipientID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return count, nil
}

// MarkAsRead marks one notification read, scoped to the recipient.
// Re-marking a read notification succeeds and keeps the original read_at.
func (r *NotificationRepository) MarkAsRead(notificationID, recipientID uuid.UUID) error {
	return r.execScoped(`
		UPDATE notifications
		SET is_read = TRUE, read_at = COALESCE(read_at, NOW())
		WHERE id = $1 AND recipient_id = $2`,
		notificationID, recipientID)
}

// MarkAllAsRead marks every unread notification read for a user
func (r *NotificationRepository) MarkAllAsRead(recipientID uuid.UUID) (int64, error) {
	result, err := r.db.Exec(`
		UPDATE notifications
		SET is_read = TRUE, read_at = NOW()
		WHERE recipient_id = $1 AND is_read = FALSE`, recipientID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}

	return result.RowsAffected()
}

// Archive archives one notification, scoped to the recipient
func (r *NotificationRepository) Archive(notificationID, recipientID uuid.UUID) error {
	return r.execScoped(`
		UPDATE notifications
		SET is_archived = TRUE, archived_at = COALESCE(archived_at, NOW())
		WHERE id = $1 AND recipient_id = $2`,
		notificationID, recipientID)
}

// Unarchive restores one archived notification, scoped to the recipient
func (r *NotificationRepository) Unarchive(notificationID, recipientID uuid.UUID) error {
	return r.execScoped(`
		UPDATE notifications
		SET is_archived = FALSE, archived_at = NULL
		WHERE id = $1 AND recipient_id = $2`,
		notificationID, recipientID)
}

// BulkUpdate applies a patch action to a set of the recipient's notifications
func (r *NotificationRepository) BulkUpdate(action string, notificationIDs []uuid.UUID, recipientID uuid.UUID) (int64, error) {
	var query string
	switch action {
	case models.NotificationActionMarkAsRead:
		query = `
			UPDATE notifications
			SET is_read = TRUE, read_at = NOW()
			WHERE id = ANY($1) AND recipient_id = $2 AND is_read = FALSE`
	case models.NotificationActionArchive:
		query = `
			UPDATE notifications
			SET is_archived = TRUE, archived_at = NOW()
			WHERE id = ANY($1) AND recipient_id = $2 AND is_archived = FALSE`
	case models.NotificationActionUnarchive:
		query = `
			UPDATE notifications
			SET is_archived = FALSE, archived_at = NULL
			WHERE id = ANY($1) AND recipient_id = $2 AND is_archived = TRUE`
	default:
		return 0, fmt.Errorf("unsupported bulk action: %s", action)
	}

	ids := make([]string, len(notificationIDs))
	for i, id := range notificationIDs {
		ids[i] = id.String()
	}

	result, err := r.db.Exec(query, pq.Array(ids), recipientID)
	if err != nil {
		return 0, fmt.Errorf("failed to bulk update notifications: %w", err)
	}

	return result.RowsAffected()
}

// PurgeArchivedBefore deletes notifications archived before the cutoff
func (r *NotificationRepository) PurgeArchivedBefore(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(`
		DELETE FROM notifications
		WHERE is_archived = TRUE AND archived_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge archived notifications: %w", err)
	}

	return result.RowsAffected()
}

// DeleteByRecipient removes all of a user's notifications (account purge)
func (r *NotificationRepository) DeleteByRecipient(recipientID uuid.UUID) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM notifications WHERE recipient_id = $1`, recipientID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete notifications: %w", err)
	}

	return result.RowsAffected()
}

func (r *NotificationRepository) execScoped(query string, args ...interface{}) error {
	result, err := r.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to update notification: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// GetByID retrieves a notification scoped to its recipient
func (r *NotificationRepository) GetByID(notificationID, recipientID uuid.UUID) (*models.Notification, error) {
	n := &models.Notification{}
	err := r.db.Get(n, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE id = $1 AND recipient_id = $2`, notificationID, recipientID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch notification: %w", err)
	}

	return n, nil
}
