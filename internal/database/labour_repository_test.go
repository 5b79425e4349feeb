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

func setupLabourRepoTest(t *testing.T) (*LabourRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewLabourRepository(sqlxDB)

	return repo, mock, func() { db.Close() }
}

func TestAdvanceStage_Success(t *testing.T) {
	repo, mock, cleanup := setupLabourRepoTest(t)
	defer cleanup()

	labourID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE labour_stage_history").
		WithArgs(labourID, models.StageMedicalStatus, models.StageRecordCompleted).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE labour_profiles").
		WithArgs(labourID, models.StageMedicalStatus, models.StageFingerprint).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO labour_stage_history").
		WithArgs(sqlmock.AnyArg(), labourID, models.StageFingerprint, "medical cleared").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.AdvanceStage(labourID, models.StageMedicalStatus, models.StageFingerprint, models.StageRecordCompleted, "medical cleared")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdvanceStage_NoPendingRow(t *testing.T) {
	repo, mock, cleanup := setupLabourRepoTest(t)
	defer cleanup()

	labourID := uuid.New()

	// Second submit of the same transition: the PENDING row was already
	// closed, so the conditional close touches nothing and the transaction
	// rolls back.
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE labour_stage_history").
		WithArgs(labourID, models.StageMedicalStatus, models.StageRecordCompleted).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.AdvanceStage(labourID, models.StageMedicalStatus, models.StageFingerprint, models.StageRecordCompleted, "")
	assert.ErrorIs(t, err, ErrStageConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdvanceStage_ProfileMovedOn(t *testing.T) {
	repo, mock, cleanup := setupLabourRepoTest(t)
	defer cleanup()

	labourID := uuid.New()

	// Ledger row closes but the profile mirror no longer matches the
	// from-stage; no new PENDING row may be opened.
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE labour_stage_history").
		WithArgs(labourID, models.StageFingerprint, models.StageRecordCompleted).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE labour_profiles").
		WithArgs(labourID, models.StageFingerprint, models.StageVisaPrinting).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.AdvanceStage(labourID, models.StageFingerprint, models.StageVisaPrinting, models.StageRecordCompleted, "")
	assert.ErrorIs(t, err, ErrStageConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpenInitialStage_AlreadyInPipeline(t *testing.T) {
	repo, mock, cleanup := setupLabourRepoTest(t)
	defer cleanup()

	labourID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE labour_profiles").
		WithArgs(labourID, models.StageMedicalStatus).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	tx, err := repo.db.Beginx()
	require.NoError(t, err)
	defer tx.Rollback()

	err = repo.OpenInitialStage(tx, labourID, models.StageMedicalStatus, "submitted")
	assert.ErrorIs(t, err, ErrStageConflict)
}

func timeDaysAgo(d int) time.Time {
	return time.Now().AddDate(0, 0, -d)
}

func TestGetOverduePendingStages(t *testing.T) {
	repo, mock, cleanup := setupLabourRepoTest(t)
	defer cleanup()

	labourID := uuid.New()
	agencyID := uuid.New()
	agencyUser := uuid.New()
	cutoff := timeDaysAgo(7)

	rows := sqlmock.NewRows([]string{"labour_id", "full_name", "stage", "agency_id", "agency_user_id", "created_at"}).
		AddRow(labourID, "Arun Perera", "FINGERPRINT", agencyID, agencyUser, timeDaysAgo(10))

	mock.ExpectQuery("FROM labour_stage_history").
		WithArgs(cutoff).
		WillReturnRows(rows)

	overdue, err := repo.GetOverduePendingStages(cutoff)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, labourID, overdue[0].LabourID)
	assert.Equal(t, models.Stage("FINGERPRINT"), overdue[0].Stage)
	assert.Equal(t, agencyUser, overdue[0].AgencyUser)
	assert.NoError(t, mock.ExpectationsWereMet())
}
