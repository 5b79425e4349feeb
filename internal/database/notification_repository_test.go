package database

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupNotificationRepoTest(t *testing.T) (*NotificationRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewNotificationRepository(&PostgresDB{DB: sqlxDB})

	return repo, mock, func() { db.Close() }
}

func notificationRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "recipient_id", "type", "title", "message", "priority",
		"action_url", "action_text", "is_read", "read_at", "is_archived", "archived_at", "created_at",
	}).AddRow(uuid.New(), uuid.New(), "STAGE_ADVANCED", "Stage updated", "moved", "normal",
		nil, nil, false, nil, false, nil, now)
}

func TestGetByRecipient_LimitPassedThrough(t *testing.T) {
	repo, mock, cleanup := setupNotificationRepoTest(t)
	defer cleanup()

	recipientID := uuid.New()
	mock.ExpectQuery("FROM notifications").
		WithArgs(recipientID, false, 150, 0).
		WillReturnRows(notificationRows())

	_, err := repo.GetByRecipient(recipientID, false, 150, 0)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByRecipient_LimitClamped(t *testing.T) {
	repo, mock, cleanup := setupNotificationRepoTest(t)
	defer cleanup()

	recipientID := uuid.New()
	for _, limit := range []int{0, -1, 201, 500} {
		mock.ExpectQuery("FROM notifications").
			WithArgs(recipientID, true, 50, 0).
			WillReturnRows(notificationRows())

		_, err := repo.GetByRecipient(recipientID, true, limit, 0)
		require.NoError(t, err, "limit %d", limit)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkAsRead_KeepsOriginalReadAt(t *testing.T) {
	repo, mock, cleanup := setupNotificationRepoTest(t)
	defer cleanup()

	notificationID := uuid.New()
	recipientID := uuid.New()

	// Marking twice succeeds both times. The update matches on existence
	// only and COALESCE preserves the first read_at.
	for i := 0; i < 2; i++ {
		mock.ExpectExec(`SET is_read = TRUE, read_at = COALESCE`).
			WithArgs(notificationID, recipientID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.MarkAsRead(notificationID, recipientID))
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkAsRead_UnknownNotification(t *testing.T) {
	repo, mock, cleanup := setupNotificationRepoTest(t)
	defer cleanup()

	mock.ExpectExec("UPDATE notifications").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkAsRead(uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestArchive_AlreadyArchived(t *testing.T) {
	repo, mock, cleanup := setupNotificationRepoTest(t)
	defer cleanup()

	notificationID := uuid.New()
	recipientID := uuid.New()

	mock.ExpectExec(`SET is_archived = TRUE, archived_at = COALESCE`).
		WithArgs(notificationID, recipientID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Archive(notificationID, recipientID))
	assert.NoError(t, mock.ExpectationsWereMet())
}
