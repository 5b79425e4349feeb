package services

import (
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentbridge/placement-backend/internal/config"
	"github.com/talentbridge/placement-backend/internal/database"
)

func setupMaintenanceTest(t *testing.T) (*MaintenanceService, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	postgresDB := &database.PostgresDB{DB: sqlxDB}

	cfg := config.CronConfig{
		OverdueStageDays:     7,
		ArchivedRetentionDay: 30,
		DeletedRetentionDay:  30,
	}

	userRepo := database.NewUserRepository(postgresDB)
	agencyRepo := database.NewAgencyRepository(postgresDB)
	labourRepo := database.NewLabourRepository(sqlxDB)
	refreshTokenRepo := database.NewRefreshTokenRepository(postgresDB)
	notificationRepo := database.NewNotificationRepository(postgresDB)
	hub := NewNotificationHub(4)
	notificationSvc := NewNotificationService(notificationRepo, userRepo, hub)

	svc := NewMaintenanceService(cfg, userRepo, agencyRepo, labourRepo, refreshTokenRepo, notificationRepo, notificationSvc)

	return svc, mock, func() { db.Close() }
}

// cutoffNear matches a time.Time argument close to the expected retention
// cutoff, so a sweep with the wrong window fails the test.
type cutoffNear struct {
	want time.Time
}

func (m cutoffNear) Match(v driver.Value) bool {
	ts, ok := v.(time.Time)
	if !ok {
		return false
	}
	diff := ts.Sub(m.want)
	if diff < 0 {
		diff = -diff
	}
	return diff < time.Minute
}

func retentionCutoff(days int) cutoffNear {
	return cutoffNear{want: time.Now().AddDate(0, 0, -days)}
}

func TestCleanupNotifications(t *testing.T) {
	svc, mock, cleanup := setupMaintenanceTest(t)
	defer cleanup()

	// Anything archived more than 30 days ago goes; newer rows stay.
	mock.ExpectExec("DELETE FROM notifications").
		WithArgs(retentionCutoff(30)).
		WillReturnResult(sqlmock.NewResult(0, 12))

	purged, err := svc.CleanupNotifications()
	require.NoError(t, err)
	assert.Equal(t, int64(12), purged)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCleanupNotifications_NothingToPurge(t *testing.T) {
	svc, mock, cleanup := setupMaintenanceTest(t)
	defer cleanup()

	mock.ExpectExec("DELETE FROM notifications").
		WithArgs(retentionCutoff(30)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	purged, err := svc.CleanupNotifications()
	require.NoError(t, err)
	assert.Equal(t, int64(0), purged)
}

func TestDeleteAccounts_NoCandidates(t *testing.T) {
	svc, mock, cleanup := setupMaintenanceTest(t)
	defer cleanup()

	mock.ExpectQuery("SELECT id FROM users").
		WithArgs(retentionCutoff(30)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	deleted, err := svc.DeleteAccounts()
	require.NoError(t, err)
	assert.Equal(t, 0, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCleanupExpiredTokens(t *testing.T) {
	svc, mock, cleanup := setupMaintenanceTest(t)
	defer cleanup()

	mock.ExpectExec("DELETE FROM refresh_tokens").
		WillReturnResult(sqlmock.NewResult(0, 5))

	removed, err := svc.CleanupExpiredTokens()
	require.NoError(t, err)
	assert.Equal(t, int64(5), removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
