package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/talentbridge/placement-backend/internal/models"
)

// UserRepository handles database operations for the users table
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, password_hash, first_name, last_name, phone,
	avatar_path, roles, status, deleted_at, created_at, updated_at`

// CreateUser creates a new user with the given roles
func (r *UserRepository) CreateUser(email, passwordHash string, roles []string) (*models.User, error) {
	query := `
		INSERT INTO users (id, email, password_hash, roles, status)
		VALUES ($1, $2, $3, $4, 'active')
		RETURNING ` + userColumns

	user := &models.User{}
	err := r.db.Get(user, query, uuid.New(), strings.ToLower(email), passwordHash, pq.StringArray(roles))
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return nil, fmt.Errorf("email already registered")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetByEmail retrieves an active user by email
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1 AND deleted_at IS NULL
	`

	user := &models.User{}
	err := r.db.Get(user, query, strings.ToLower(email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	return user, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(userID uuid.UUID) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1 AND deleted_at IS NULL
	`

	user := &models.User{}
	err := r.db.Get(user, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	return user, nil
}

// UpdateProfile updates the mutable profile fields of a user
func (r *UserRepository) UpdateProfile(userID uuid.UUID, req *models.UpdateProfileRequest) (*models.User, error) {
	query := `
		UPDATE users
		SET first_name = COALESCE($2, first_name),
			last_name = COALESCE($3, last_name),
			phone = COALESCE($4, phone),
			updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING ` + userColumns

	user := &models.User{}
	err := r.db.Get(user, query, userID, req.FirstName, req.LastName, req.Phone)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return user, nil
}

// UpdateAvatarPath stores the uploaded avatar location
func (r *UserRepository) UpdateAvatarPath(userID uuid.UUID, path string) error {
	query := `
		UPDATE users
		SET avatar_path = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, userID, path)
	if err != nil {
		return fmt.Errorf("failed to update avatar: %w", err)
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

// SoftDelete marks an account for purge by the scheduled sweep
func (r *UserRepository) SoftDelete(userID uuid.UUID) error {
	query := `
		UPDATE users
		SET status = 'deleted', deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, userID)
	if err != nil {
		return fmt.Errorf("failed to soft-delete user: %w", err)
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

// GetPurgeableUserIDs returns accounts soft-deleted before the cutoff
func (r *UserRepository) GetPurgeableUserIDs(cutoff time.Time) ([]uuid.UUID, error) {
	query := `
		SELECT id
		FROM users
		WHERE deleted_at IS NOT NULL AND deleted_at < $1
	`

	ids := []uuid.UUID{}
	if err := r.db.Select(&ids, query, cutoff); err != nil {
		return nil, fmt.Errorf("failed to fetch purgeable users: %w", err)
	}

	return ids, nil
}

// HardDelete removes a purged account row. The labour/assignment/notification
// cascade runs first in the maintenance sweep so foreign keys never dangle.
func (r *UserRepository) HardDelete(userID uuid.UUID) error {
	_, err := r.db.Exec(`DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to purge user: %w", err)
	}
	return nil
}

// GetAdminUserIDs returns all active admin user ids (notification fan-out targets)
func (r *UserRepository) GetAdminUserIDs() ([]uuid.UUID, error) {
	query := `
		SELECT id
		FROM users
		WHERE 'admin' = ANY(roles) AND deleted_at IS NULL AND status = 'active'
	`

	ids := []uuid.UUID{}
	if err := r.db.Select(&ids, query); err != nil {
		return nil, fmt.Errorf("failed to fetch admin users: %w", err)
	}

	return ids, nil
}
