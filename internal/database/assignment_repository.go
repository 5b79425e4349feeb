package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/talentbridge/placement-backend/internal/models"
)

// AssignmentRepository handles labour assignments and the tri-status tracker.
// Party-status writes recompute the derived placement status inside the same
// transaction so no reader ever evaluates the three-way conjunction itself.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository creates a new AssignmentRepository
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

const assignmentColumns = `id, job_role_id, labour_id, agency_id,
	agency_status, admin_status, client_status, placement_status,
	is_backup, status_note, created_at, updated_at`

// Party identifies which of the three review tracks a write targets
type Party string

const (
	PartyAgency Party = "agency"
	PartyAdmin  Party = "admin"
	PartyClient Party = "client"
)

func (p Party) column() string {
	switch p {
	case PartyAgency:
		return "agency_status"
	case PartyAdmin:
		return "admin_status"
	case PartyClient:
		return "client_status"
	}
	return ""
}

// Create inserts an assignment and opens the labour's first stage in one
// transaction. Direct submissions start the agency track at SUBMITTED;
// backups stay PENDING on the client track until promoted.
func (r *AssignmentRepository) Create(jobRoleID, labourID, agencyID uuid.UUID, isBackup bool, labourRepo *LabourRepository) (*models.LabourAssignment, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	clientStatus := models.PartyStatusSubmitted
	if isBackup {
		clientStatus = models.PartyStatusPending
	}

	assignment := &models.LabourAssignment{}
	err = tx.Get(assignment, `
		INSERT INTO labour_assignments (
			id, job_role_id, labour_id, agency_id,
			agency_status, admin_status, client_status, placement_status, is_backup
		) VALUES ($1, $2, $3, $4, 'SUBMITTED', 'PENDING', $5, 'IN_PROGRESS', $6)
		RETURNING `+assignmentColumns,
		uuid.New(), jobRoleID, labourID, agencyID, clientStatus, isBackup)
	if err != nil {
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}

	if err := labourRepo.OpenInitialStage(tx, labourID, models.StageMedicalStatus, "Entered pipeline on assignment"); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit assignment: %w", err)
	}

	return assignment, nil
}

// GetByID retrieves an assignment by ID
func (r *AssignmentRepository) GetByID(assignmentID uuid.UUID) (*models.LabourAssignment, error) {
	assignment := &models.LabourAssignment{}
	err := r.db.Get(assignment, `SELECT `+assignmentColumns+` FROM labour_assignments WHERE id = $1`, assignmentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch assignment: %w", err)
	}

	return assignment, nil
}

// GetByJobRoleID lists assignments for a job role, oldest first
func (r *AssignmentRepository) GetByJobRoleID(jobRoleID uuid.UUID) ([]models.LabourAssignment, error) {
	assignments := []models.LabourAssignment{}
	err := r.db.Select(&assignments, `
		SELECT `+assignmentColumns+`
		FROM labour_assignments
		WHERE job_role_id = $1
		ORDER BY created_at`, jobRoleID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignments: %w", err)
	}

	return assignments, nil
}

// GetByAgencyID lists assignments submitted by an agency, newest first
func (r *AssignmentRepository) GetByAgencyID(agencyID uuid.UUID) ([]models.LabourAssignment, error) {
	assignments := []models.LabourAssignment{}
	err := r.db.Select(&assignments, `
		SELECT `+assignmentColumns+`
		FROM labour_assignments
		WHERE agency_id = $1
		ORDER BY created_at DESC`, agencyID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignments: %w", err)
	}

	return assignments, nil
}

// UpdatePartyStatus mutates one review track and recomputes the derived
// placement status in the same transaction. Returns the updated assignment.
func (r *AssignmentRepository) UpdatePartyStatus(assignmentID uuid.UUID, party Party, status models.PartyStatus, note *string) (*models.LabourAssignment, error) {
	column := party.column()
	if column == "" {
		return nil, fmt.Errorf("unknown review party: %s", party)
	}

	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	assignment := &models.LabourAssignment{}
	err = tx.Get(assignment, fmt.Sprintf(`
		UPDATE labour_assignments
		SET %s = $2, status_note = COALESCE($3, status_note), updated_at = NOW()
		WHERE id = $1
		RETURNING `+assignmentColumns, column),
		assignmentID, status, note)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update %s: %w", column, err)
	}

	placement := models.ComputePlacement(assignment.AgencyStatus, assignment.AdminStatus, assignment.ClientStatus)
	if placement != assignment.PlacementStatus {
		_, err = tx.Exec(`
			UPDATE labour_assignments
			SET placement_status = $2, updated_at = NOW()
			WHERE id = $1`, assignmentID, placement)
		if err != nil {
			return nil, fmt.Errorf("failed to recompute placement status: %w", err)
		}
		assignment.PlacementStatus = placement
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit status update: %w", err)
	}

	return assignment, nil
}

// CountAccepted counts client-accepted assignments for a job role. Promoted
// backups count too; they hold a quota slot once accepted.
func (r *AssignmentRepository) CountAccepted(jobRoleID uuid.UUID) (int, error) {
	var count int
	err := r.db.Get(&count, `
		SELECT COUNT(*)
		FROM labour_assignments
		WHERE job_role_id = $1 AND client_status = 'ACCEPTED'`, jobRoleID)
	if err != nil {
		return 0, fmt.Errorf("failed to count accepted assignments: %w", err)
	}

	return count, nil
}

// PromoteOldestBackup promotes the oldest eligible backup candidate for a
// job role: client_status PENDING, is_backup, and neither of the other two
// tracks already REJECTED. FIFO by creation time. Returns nil when no
// eligible backup exists; the caller reports "no replacement available".
func (r *AssignmentRepository) PromoteOldestBackup(jobRoleID uuid.UUID) (*models.LabourAssignment, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var candidateID uuid.UUID
	err = tx.Get(&candidateID, `
		SELECT id
		FROM labour_assignments
		WHERE job_role_id = $1
		  AND client_status = 'PENDING'
		  AND is_backup = TRUE
		  AND agency_status != 'REJECTED'
		  AND admin_status != 'REJECTED'
		ORDER BY created_at
		LIMIT 1
		FOR UPDATE SKIP LOCKED`, jobRoleID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to select backup candidate: %w", err)
	}

	promoted := &models.LabourAssignment{}
	err = tx.Get(promoted, `
		UPDATE labour_assignments
		SET client_status = 'SUBMITTED', is_backup = FALSE, updated_at = NOW()
		WHERE id = $1
		RETURNING `+assignmentColumns, candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to promote backup: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit promotion: %w", err)
	}

	return promoted, nil
}

// PlacementCounts summarizes assignments by derived placement status
type PlacementCounts struct {
	InProgress int `db:"in_progress"`
	Placed     int `db:"placed"`
	Rejected   int `db:"rejected"`
}

// CountByPlacementStatus aggregates the derived placement column. An
// assignment with any non-ACCEPTED track is IN_PROGRESS here, never placed.
func (r *AssignmentRepository) CountByPlacementStatus() (*PlacementCounts, error) {
	counts := &PlacementCounts{}
	err := r.db.Get(counts, `
		SELECT
			COUNT(*) FILTER (WHERE placement_status = 'IN_PROGRESS') AS in_progress,
			COUNT(*) FILTER (WHERE placement_status = 'PLACED') AS placed,
			COUNT(*) FILTER (WHERE placement_status = 'REJECTED') AS rejected
		FROM labour_assignments`)
	if err != nil {
		return nil, fmt.Errorf("failed to count placements: %w", err)
	}

	return counts, nil
}
