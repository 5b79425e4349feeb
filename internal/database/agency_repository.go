package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/talentbridge/placement-backend/internal/models"
)

// AgencyRepository handles database operations for agency profiles
type AgencyRepository struct {
	db DB
}

// NewAgencyRepository creates a new AgencyRepository
func NewAgencyRepository(db DB) *AgencyRepository {
	return &AgencyRepository{db: db}
}

const agencyColumns = `id, user_id, agency_name, license_number, country,
	contact_phone, verification_status, status_note, created_at, updated_at`

// Create creates a new agency profile in PENDING verification state
func (r *AgencyRepository) Create(userID uuid.UUID, agencyName string, licenseNumber, country, contactPhone *string) (*models.AgencyProfile, error) {
	query := `
		INSERT INTO agency_profiles (id, user_id, agency_name, license_number, country, contact_phone, verification_status)
		VALUES ($1, $2, $3, $4, $5, $6, 'PENDING')
		RETURNING ` + agencyColumns

	agency := &models.AgencyProfile{}
	err := r.db.Get(agency, query, uuid.New(), userID, agencyName, licenseNumber, country, contactPhone)
	if err != nil {
		return nil, fmt.Errorf("failed to create agency profile: %w", err)
	}

	return agency, nil
}

// GetByID retrieves an agency profile by ID
func (r *AgencyRepository) GetByID(agencyID uuid.UUID) (*models.AgencyProfile, error) {
	query := `SELECT ` + agencyColumns + ` FROM agency_profiles WHERE id = $1`

	agency := &models.AgencyProfile{}
	err := r.db.Get(agency, query, agencyID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch agency profile: %w", err)
	}

	return agency, nil
}

// GetByUserID retrieves the agency profile owned by a user
func (r *AgencyRepository) GetByUserID(userID uuid.UUID) (*models.AgencyProfile, error) {
	query := `SELECT ` + agencyColumns + ` FROM agency_profiles WHERE user_id = $1`

	agency := &models.AgencyProfile{}
	err := r.db.Get(agency, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch agency profile: %w", err)
	}

	return agency, nil
}

// UpdateVerificationStatus mutates the admin verification track of an agency
func (r *AgencyRepository) UpdateVerificationStatus(agencyID uuid.UUID, status models.VerificationStatus, note *string) error {
	query := `
		UPDATE agency_profiles
		SET verification_status = $2, status_note = $3, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(query, agencyID, status, note)
	if err != nil {
		return fmt.Errorf("failed to update agency status: %w", err)
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

// GetPendingVerification lists agencies awaiting admin review
func (r *AgencyRepository) GetPendingVerification() ([]models.AgencyProfile, error) {
	query := `
		SELECT ` + agencyColumns + `
		FROM agency_profiles
		WHERE verification_status = 'PENDING'
		ORDER BY created_at
	`

	agencies := []models.AgencyProfile{}
	if err := r.db.Select(&agencies, query); err != nil {
		return nil, fmt.Errorf("failed to fetch pending agencies: %w", err)
	}

	return agencies, nil
}
