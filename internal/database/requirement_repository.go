package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/talentbridge/placement-backend/internal/models"
)

// RequirementRepository handles database operations for requirements and
// their job roles
type RequirementRepository struct {
	db *sqlx.DB
}

// NewRequirementRepository creates a new RequirementRepository
func NewRequirementRepository(db *sqlx.DB) *RequirementRepository {
	return &RequirementRepository{db: db}
}

const requirementColumns = `id, client_id, title, description, status,
	status_note, created_at, updated_at`

const jobRoleColumns = `id, requirement_id, title, quantity, salary_range,
	assigned_agency_id, agency_status, needs_more_labour, created_at, updated_at`

// Create inserts a requirement and its job roles in one transaction
func (r *RequirementRepository) Create(clientID uuid.UUID, req *models.CreateRequirementRequest) (*models.Requirement, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	requirement := &models.Requirement{}
	err = tx.Get(requirement, `
		INSERT INTO requirements (id, client_id, title, description, status)
		VALUES ($1, $2, $3, $4, 'UNDER_REVIEW')
		RETURNING `+requirementColumns,
		uuid.New(), clientID, req.Title, req.Description)
	if err != nil {
		return nil, fmt.Errorf("failed to create requirement: %w", err)
	}

	for _, jr := range req.JobRoles {
		role := models.JobRole{}
		err = tx.Get(&role, `
			INSERT INTO job_roles (id, requirement_id, title, quantity, salary_range, agency_status)
			VALUES ($1, $2, $3, $4, $5, 'PENDING')
			RETURNING `+jobRoleColumns,
			uuid.New(), requirement.ID, jr.Title, jr.Quantity, jr.SalaryRange)
		if err != nil {
			return nil, fmt.Errorf("failed to create job role: %w", err)
		}
		requirement.JobRoles = append(requirement.JobRoles, role)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit requirement: %w", err)
	}

	return requirement, nil
}

// GetByID retrieves a requirement with its job roles
func (r *RequirementRepository) GetByID(requirementID uuid.UUID) (*models.Requirement, error) {
	requirement := &models.Requirement{}
	err := r.db.Get(requirement, `SELECT `+requirementColumns+` FROM requirements WHERE id = $1`, requirementID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch requirement: %w", err)
	}

	roles := []models.JobRole{}
	err = r.db.Select(&roles, `
		SELECT `+jobRoleColumns+`
		FROM job_roles
		WHERE requirement_id = $1
		ORDER BY created_at`, requirementID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch job roles: %w", err)
	}
	requirement.JobRoles = roles

	return requirement, nil
}

// GetByClientID lists requirements owned by a client, newest first
func (r *RequirementRepository) GetByClientID(clientID uuid.UUID) ([]models.Requirement, error) {
	requirements := []models.Requirement{}
	err := r.db.Select(&requirements, `
		SELECT `+requirementColumns+`
		FROM requirements
		WHERE client_id = $1
		ORDER BY created_at DESC`, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch requirements: %w", err)
	}

	return requirements, nil
}

// GetPendingReview lists requirements awaiting admin review
func (r *RequirementRepository) GetPendingReview() ([]models.Requirement, error) {
	requirements := []models.Requirement{}
	err := r.db.Select(&requirements, `
		SELECT `+requirementColumns+`
		FROM requirements
		WHERE status = 'UNDER_REVIEW'
		ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending requirements: %w", err)
	}

	return requirements, nil
}

// UpdateStatus mutates the requirement lifecycle status
func (r *RequirementRepository) UpdateStatus(requirementID uuid.UUID, status models.RequirementStatus, note *string) error {
	result, err := r.db.Exec(`
		UPDATE requirements
		SET status = $2, status_note = $3, updated_at = NOW()
		WHERE id = $1`, requirementID, status, note)
	if err != nil {
		return fmt.Errorf("failed to update requirement status: %w", err)
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
