package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// VerificationStatus represents admin verification of an agency profile
type VerificationStatus string

const (
	VerificationPending   VerificationStatus = "PENDING"
	VerificationVerified  VerificationStatus = "VERIFIED"
	VerificationRejected  VerificationStatus = "REJECTED"
	VerificationSuspended VerificationStatus = "SUSPENDED"
)

// AgencyProfile represents a recruitment agency tenant
type AgencyProfile struct {
	ID                 uuid.UUID          `json:"id" db:"id"`
	UserID             uuid.UUID          `json:"user_id" db:"user_id"`
	AgencyName         string             `json:"agency_name" db:"agency_name"`
	LicenseNumber      NullString         `json:"license_number,omitempty" db:"license_number"`
	Country            NullString         `json:"country,omitempty" db:"country"`
	ContactPhone       NullString         `json:"contact_phone,omitempty" db:"contact_phone"`
	VerificationStatus VerificationStatus `json:"verification_status" db:"verification_status"`
	StatusNote         NullString         `json:"status_note,omitempty" db:"status_note"`
	CreatedAt          time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at" db:"updated_at"`
}

// UpdateAgencyStatusRequest is the admin payload for PUT /agencies/:id/status
type UpdateAgencyStatusRequest struct {
	Status VerificationStatus `json:"status" binding:"required"`
	Note   *string            `json:"note,omitempty"`
}

// Validate checks that the requested status is a known value
func (r *UpdateAgencyStatusRequest) Validate() error {
	switch r.Status {
	case VerificationPending, VerificationVerified, VerificationRejected, VerificationSuspended:
		return nil
	}
	return errors.New("invalid verification status")
}

// ClientProfile represents an employer tenant submitting requirements
type ClientProfile struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	UserID       uuid.UUID  `json:"user_id" db:"user_id"`
	CompanyName  string     `json:"company_name" db:"company_name"`
	Industry     NullString `json:"industry,omitempty" db:"industry"`
	Country      NullString `json:"country,omitempty" db:"country"`
	ContactPhone NullString `json:"contact_phone,omitempty" db:"contact_phone"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}
