package database

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentbridge/placement-backend/internal/models"
)

var assignmentTestColumns = []string{
	"id", "job_role_id", "labour_id", "agency_id",
	"agency_status", "admin_status", "client_status", "placement_status",
	"is_backup", "status_note", "created_at", "updated_at",
}

func setupAssignmentRepoTest(t *testing.T) (*AssignmentRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewAssignmentRepository(sqlxDB)

	return repo, mock, func() { db.Close() }
}

func assignmentRow(id uuid.UUID, agencyStatus, adminStatus, clientStatus, placement string, isBackup bool) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(assignmentTestColumns).
		AddRow(id, uuid.New(), uuid.New(), uuid.New(),
			agencyStatus, adminStatus, clientStatus, placement,
			isBackup, nil, now, now)
}

func TestUpdatePartyStatus_RecomputesPlacement(t *testing.T) {
	repo, mock, cleanup := setupAssignmentRepoTest(t)
	defer cleanup()

	assignmentID := uuid.New()

	// Client accepts the last outstanding track: the write returns all three
	// ACCEPTED, so placement flips to PLACED in the same transaction.
	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE labour_assignments").
		WithArgs(assignmentID, models.PartyStatusAccepted, nil).
		WillReturnRows(assignmentRow(assignmentID, "ACCEPTED", "ACCEPTED", "ACCEPTED", "IN_PROGRESS", false))
	mock.ExpectExec("UPDATE labour_assignments").
		WithArgs(assignmentID, models.PlacementPlaced).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	updated, err := repo.UpdatePartyStatus(assignmentID, PartyClient, models.PartyStatusAccepted, nil)
	require.NoError(t, err)
	assert.Equal(t, models.PlacementPlaced, updated.PlacementStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePartyStatus_NoRecomputeWhenUnchanged(t *testing.T) {
	repo, mock, cleanup := setupAssignmentRepoTest(t)
	defer cleanup()

	assignmentID := uuid.New()

	// One track accepted out of three: placement stays IN_PROGRESS and no
	// second write happens.
	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE labour_assignments").
		WithArgs(assignmentID, models.PartyStatusAccepted, nil).
		WillReturnRows(assignmentRow(assignmentID, "ACCEPTED", "PENDING", "SUBMITTED", "IN_PROGRESS", false))
	mock.ExpectCommit()

	updated, err := repo.UpdatePartyStatus(assignmentID, PartyAgency, models.PartyStatusAccepted, nil)
	require.NoError(t, err)
	assert.Equal(t, models.PlacementInProgress, updated.PlacementStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePartyStatus_Rejection(t *testing.T) {
	repo, mock, cleanup := setupAssignmentRepoTest(t)
	defer cleanup()

	assignmentID := uuid.New()
	note := "documents incomplete"

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE labour_assignments").
		WithArgs(assignmentID, models.PartyStatusRejected, &note).
		WillReturnRows(assignmentRow(assignmentID, "SUBMITTED", "REJECTED", "PENDING", "IN_PROGRESS", false))
	mock.ExpectExec("UPDATE labour_assignments").
		WithArgs(assignmentID, models.PlacementRejected).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	updated, err := repo.UpdatePartyStatus(assignmentID, PartyAdmin, models.PartyStatusRejected, &note)
	require.NoError(t, err)
	assert.Equal(t, models.PlacementRejected, updated.PlacementStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePartyStatus_UnknownParty(t *testing.T) {
	repo, _, cleanup := setupAssignmentRepoTest(t)
	defer cleanup()

	_, err := repo.UpdatePartyStatus(uuid.New(), Party("reviewer"), models.PartyStatusAccepted, nil)
	assert.Error(t, err)
}

func TestPromoteOldestBackup_Promotes(t *testing.T) {
	repo, mock, cleanup := setupAssignmentRepoTest(t)
	defer cleanup()

	jobRoleID := uuid.New()
	candidateID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id").
		WithArgs(jobRoleID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(candidateID))
	mock.ExpectQuery("UPDATE labour_assignments").
		WithArgs(candidateID).
		WillReturnRows(assignmentRow(candidateID, "SUBMITTED", "PENDING", "SUBMITTED", "IN_PROGRESS", false))
	mock.ExpectCommit()

	promoted, err := repo.PromoteOldestBackup(jobRoleID)
	require.NoError(t, err)
	require.NotNil(t, promoted)
	assert.Equal(t, candidateID, promoted.ID)
	assert.False(t, promoted.IsBackup)
	assert.Equal(t, models.PartyStatusSubmitted, promoted.ClientStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPromoteOldestBackup_NoEligibleCandidate(t *testing.T) {
	repo, mock, cleanup := setupAssignmentRepoTest(t)
	defer cleanup()

	jobRoleID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id").
		WithArgs(jobRoleID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	promoted, err := repo.PromoteOldestBackup(jobRoleID)
	require.NoError(t, err)
	assert.Nil(t, promoted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountAccepted(t *testing.T) {
	repo, mock, cleanup := setupAssignmentRepoTest(t)
	defer cleanup()

	jobRoleID := uuid.New()

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(jobRoleID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountAccepted(jobRoleID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
