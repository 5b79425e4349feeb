package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/talentbridge/placement-backend/internal/models"
)

// ClientRepository handles database operations for client profiles
type ClientRepository struct {
	db DB
}

// NewClientRepository creates a new ClientRepository
func NewClientRepository(db DB) *ClientRepository {
	return &ClientRepository{db: db}
}

const clientColumns = `id, user_id, company_name, industry, country,
	contact_phone, created_at, updated_at`

// Create creates a new client profile
func (r *ClientRepository) Create(userID uuid.UUID, companyName string, industry, country, contactPhone *string) (*models.ClientProfile, error) {
	query := `
		INSERT INTO client_profiles (id, user_id, company_name, industry, country, contact_phone)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + clientColumns

	client := &models.ClientProfile{}
	err := r.db.Get(client, query, uuid.New(), userID, companyName, industry, country, contactPhone)
	if err != nil {
		return nil, fmt.Errorf("failed to create client profile: %w", err)
	}

	return client, nil
}

// GetByID retrieves a client profile by ID
func (r *ClientRepository) GetByID(clientID uuid.UUID) (*models.ClientProfile, error) {
	query := `SELECT ` + clientColumns + ` FROM client_profiles WHERE id = $1`

	client := &models.ClientProfile{}
	err := r.db.Get(client, query, clientID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch client profile: %w", err)
	}

	return client, nil
}

// GetByUserID retrieves the client profile owned by a user
func (r *ClientRepository) GetByUserID(userID uuid.UUID) (*models.ClientProfile, error) {
	query := `SELECT ` + clientColumns + ` FROM client_profiles WHERE user_id = $1`

	client := &models.ClientProfile{}
	err := r.db.Get(client, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch client profile: %w", err)
	}

	return client, nil
}
