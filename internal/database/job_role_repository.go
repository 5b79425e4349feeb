package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/talentbridge/placement-backend/internal/models"
)

// JobRoleRepository handles database operations for job roles
type JobRoleRepository struct {
	db DB
}

// NewJobRoleRepository creates a new JobRoleRepository
func NewJobRoleRepository(db DB) *JobRoleRepository {
	return &JobRoleRepository{db: db}
}

// GetByID retrieves a job role by ID
func (r *JobRoleRepository) GetByID(jobRoleID uuid.UUID) (*models.JobRole, error) {
	query := `SELECT ` + jobRoleColumns + ` FROM job_roles WHERE id = $1`

	role := &models.JobRole{}
	err := r.db.Get(role, query, jobRoleID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch job role: %w", err)
	}

	return role, nil
}

// GetByAgencyID lists job roles assigned to an agency
func (r *JobRoleRepository) GetByAgencyID(agencyID uuid.UUID) ([]models.JobRole, error) {
	query := `
		SELECT ` + jobRoleColumns + `
		FROM job_roles
		WHERE assigned_agency_id = $1
		ORDER BY created_at DESC
	`

	roles := []models.JobRole{}
	if err := r.db.Select(&roles, query, agencyID); err != nil {
		return nil, fmt.Errorf("failed to fetch job roles: %w", err)
	}

	return roles, nil
}

// GetRequirementClientID resolves the client that owns the requirement a
// job role belongs to. Used for ownership checks on client-side reviews.
func (r *JobRoleRepository) GetRequirementClientID(requirementID uuid.UUID) (uuid.UUID, error) {
	var clientID uuid.UUID
	err := r.db.Get(&clientID, `SELECT client_id FROM requirements WHERE id = $1`, requirementID)
	if err != nil {
		if err == sql.ErrNoRows {
			return uuid.Nil, ErrNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to resolve requirement owner: %w", err)
	}

	return clientID, nil
}

// AssignAgency hands a job role to an agency for sourcing
func (r *JobRoleRepository) AssignAgency(jobRoleID, agencyID uuid.UUID) error {
	query := `
		UPDATE job_roles
		SET assigned_agency_id = $2, agency_status = 'SUBMITTED', updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(query, jobRoleID, agencyID)
	if err != nil {
		return fmt.Errorf("failed to assign agency: %w", err)
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

// SetNeedsMoreLabour flags a job role as under-filled
func (r *JobRoleRepository) SetNeedsMoreLabour(jobRoleID uuid.UUID, needsMore bool) error {
	query := `
		UPDATE job_roles
		SET needs_more_labour = $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(query, jobRoleID, needsMore)
	if err != nil {
		return fmt.Errorf("failed to update job role flag: %w", err)
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
