package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/talentbridge/placement-backend/internal/models"
)

// LabourRepository handles labour profiles and their stage-history ledger.
// It holds *sqlx.DB directly because stage transitions are multi-statement
// transactions.
type LabourRepository struct {
	db *sqlx.DB
}

// NewLabourRepository creates a new LabourRepository
func NewLabourRepository(db *sqlx.DB) *LabourRepository {
	return &LabourRepository{db: db}
}

const labourColumns = `id, agency_id, full_name, passport_number, nationality,
	date_of_birth, photo_path, current_stage, created_at, updated_at`

const stageHistoryColumns = `id, labour_id, stage, status, notes, completed_at, created_at`

// Create creates a new labour profile
func (r *LabourRepository) Create(agencyID uuid.UUID, req *models.CreateLabourRequest, passportNumber string) (*models.LabourProfile, error) {
	var dob interface{}
	if req.DateOfBirth != nil {
		parsed, err := time.Parse("2006-01-02", *req.DateOfBirth)
		if err != nil {
			return nil, fmt.Errorf("invalid date_of_birth: %w", err)
		}
		dob = parsed
	}

	query := `
		INSERT INTO labour_profiles (id, agency_id, full_name, passport_number, nationality, date_of_birth)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + labourColumns

	labour := &models.LabourProfile{}
	err := r.db.Get(labour, query, uuid.New(), agencyID, req.FullName, passportNumber, req.Nationality, dob)
	if err != nil {
		return nil, fmt.Errorf("failed to create labour profile: %w", err)
	}

	return labour, nil
}

// GetByID retrieves a labour profile by ID
func (r *LabourRepository) GetByID(labourID uuid.UUID) (*models.LabourProfile, error) {
	labour := &models.LabourProfile{}
	err := r.db.Get(labour, `SELECT `+labourColumns+` FROM labour_profiles WHERE id = $1`, labourID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch labour profile: %w", err)
	}

	return labour, nil
}

// GetByAgencyID lists labour profiles owned by an agency
func (r *LabourRepository) GetByAgencyID(agencyID uuid.UUID) ([]models.LabourProfile, error) {
	labours := []models.LabourProfile{}
	err := r.db.Select(&labours, `
		SELECT `+labourColumns+`
		FROM labour_profiles
		WHERE agency_id = $1
		ORDER BY created_at DESC`, agencyID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch labour profiles: %w", err)
	}

	return labours, nil
}

// GetStageHistory returns the full ledger for a labour, oldest first
func (r *LabourRepository) GetStageHistory(labourID uuid.UUID) ([]models.LabourStageHistory, error) {
	history := []models.LabourStageHistory{}
	err := r.db.Select(&history, `
		SELECT `+stageHistoryColumns+`
		FROM labour_stage_history
		WHERE labour_id = $1
		ORDER BY created_at`, labourID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stage history: %w", err)
	}

	return history, nil
}

// OpenInitialStage opens the first PENDING ledger row and mirrors the stage
// onto the profile. Runs inside the caller's transaction so assignment
// creation and ledger opening commit together.
func (r *LabourRepository) OpenInitialStage(tx *sqlx.Tx, labourID uuid.UUID, stage models.Stage, note string) error {
	result, err := tx.Exec(`
		UPDATE labour_profiles
		SET current_stage = $2, updated_at = NOW()
		WHERE id = $1 AND current_stage IS NULL`, labourID, stage)
	if err != nil {
		return fmt.Errorf("failed to set initial stage: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		// Already in the pipeline; opening a second ledger would violate
		// the one-PENDING-row invariant.
		return ErrStageConflict
	}

	_, err = tx.Exec(`
		INSERT INTO labour_stage_history (id, labour_id, stage, status, notes)
		VALUES ($1, $2, $3, 'PENDING', $4)`, uuid.New(), labourID, stage, note)
	if err != nil {
		return fmt.Errorf("failed to open initial stage record: %w", err)
	}

	return nil
}

// AdvanceStage atomically closes the PENDING from-stage row, mirrors the
// to-stage onto the profile and opens the to-stage PENDING row. Both updates
// are conditional: if the PENDING row is gone or the profile already moved
// on, the transaction aborts with ErrStageConflict instead of opening a
// duplicate PENDING row. A double-submit therefore fails cleanly on the
// second call.
func (r *LabourRepository) AdvanceStage(labourID uuid.UUID, from, to models.Stage, closeStatus models.StageRecordStatus, note string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		UPDATE labour_stage_history
		SET status = $3, completed_at = NOW()
		WHERE labour_id = $1 AND stage = $2 AND status = 'PENDING'`,
		labourID, from, closeStatus)
	if err != nil {
		return fmt.Errorf("failed to close stage record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrStageConflict
	}

	result, err = tx.Exec(`
		UPDATE labour_profiles
		SET current_stage = $3, updated_at = NOW()
		WHERE id = $1 AND current_stage = $2`,
		labourID, from, to)
	if err != nil {
		return fmt.Errorf("failed to update current stage: %w", err)
	}

	rows, err = result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrStageConflict
	}

	_, err = tx.Exec(`
		INSERT INTO labour_stage_history (id, labour_id, stage, status, notes)
		VALUES ($1, $2, $3, 'PENDING', $4)`,
		uuid.New(), labourID, to, note)
	if err != nil {
		return fmt.Errorf("failed to open stage record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit stage transition: %w", err)
	}

	return nil
}

// OverduePendingStage is a PENDING ledger row older than the reminder window
type OverduePendingStage struct {
	LabourID    uuid.UUID    `db:"labour_id"`
	LabourName  string       `db:"full_name"`
	Stage       models.Stage `db:"stage"`
	AgencyID    uuid.UUID    `db:"agency_id"`
	AgencyUser  uuid.UUID    `db:"agency_user_id"`
	PendingFrom time.Time    `db:"created_at"`
}

// GetOverduePendingStages returns PENDING stage rows created before the cutoff
func (r *LabourRepository) GetOverduePendingStages(cutoff time.Time) ([]OverduePendingStage, error) {
	overdue := []OverduePendingStage{}
	err := r.db.Select(&overdue, `
		SELECT h.labour_id, l.full_name, h.stage, l.agency_id,
			   a.user_id AS agency_user_id, h.created_at
		FROM labour_stage_history h
		JOIN labour_profiles l ON l.id = h.labour_id
		JOIN agency_profiles a ON a.id = l.agency_id
		WHERE h.status = 'PENDING' AND h.created_at < $1
		ORDER BY h.created_at`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch overdue stages: %w", err)
	}

	return overdue, nil
}

// DeleteByAgencyID removes an agency's labour profiles, ledger rows and
// assignments. Part of the account-purge cascade.
func (r *LabourRepository) DeleteByAgencyID(agencyID uuid.UUID) (int64, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		DELETE FROM labour_stage_history
		WHERE labour_id IN (SELECT id FROM labour_profiles WHERE agency_id = $1)`, agencyID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stage history: %w", err)
	}

	_, err = tx.Exec(`DELETE FROM labour_assignments WHERE agency_id = $1`, agencyID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete assignments: %w", err)
	}

	result, err := tx.Exec(`DELETE FROM labour_profiles WHERE agency_id = $1`, agencyID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete labour profiles: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit purge: %w", err)
	}

	return rows, nil
}
