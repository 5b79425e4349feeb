package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// RequirementStatus represents the lifecycle of a client hiring request
type RequirementStatus string

const (
	RequirementUnderReview  RequirementStatus = "UNDER_REVIEW"
	RequirementClientReview RequirementStatus = "CLIENT_REVIEW"
	RequirementAccepted     RequirementStatus = "ACCEPTED"
	RequirementRejected     RequirementStatus = "REJECTED"
)

// Requirement represents a client-submitted hiring request aggregating job roles
type Requirement struct {
	ID          uuid.UUID         `json:"id" db:"id"`
	ClientID    uuid.UUID         `json:"client_id" db:"client_id"`
	Title       string            `json:"title" db:"title"`
	Description NullString        `json:"description,omitempty" db:"description"`
	Status      RequirementStatus `json:"status" db:"status"`
	StatusNote  NullString        `json:"status_note,omitempty" db:"status_note"`
	CreatedAt   time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at" db:"updated_at"`

	// Populated on detail reads, not a column
	JobRoles []JobRole `json:"job_roles,omitempty" db:"-"`
}

// JobRole is a requisitioned position within a requirement
type JobRole struct {
	ID               uuid.UUID   `json:"id" db:"id"`
	RequirementID    uuid.UUID   `json:"requirement_id" db:"requirement_id"`
	Title            string      `json:"title" db:"title"`
	Quantity         int         `json:"quantity" db:"quantity"`
	SalaryRange      NullString  `json:"salary_range,omitempty" db:"salary_range"`
	AssignedAgencyID *uuid.UUID  `json:"assigned_agency_id,omitempty" db:"assigned_agency_id"`
	AgencyStatus     PartyStatus `json:"agency_status" db:"agency_status"`
	NeedsMoreLabour  bool        `json:"needs_more_labour" db:"needs_more_labour"`
	CreatedAt        time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at" db:"updated_at"`
}

// CreateJobRoleRequest is a job role inside a requirement submission
type CreateJobRoleRequest struct {
	Title       string  `json:"title" binding:"required"`
	Quantity    int     `json:"quantity" binding:"required,min=1"`
	SalaryRange *string `json:"salary_range,omitempty"`
}

// CreateRequirementRequest is the client payload for POST /requirements
type CreateRequirementRequest struct {
	Title       string                 `json:"title" binding:"required"`
	Description *string                `json:"description,omitempty"`
	JobRoles    []CreateJobRoleRequest `json:"job_roles" binding:"required,min=1,dive"`
}

// Validate validates the requirement submission
func (r *CreateRequirementRequest) Validate() error {
	if len(r.JobRoles) == 0 {
		return errors.New("at least one job role is required")
	}
	for _, jr := range r.JobRoles {
		if jr.Quantity < 1 {
			return errors.New("job role quantity must be at least 1")
		}
		if jr.Quantity > 500 {
			return errors.New("job role quantity cannot exceed 500")
		}
	}
	return nil
}

// UpdateRequirementStatusRequest is the admin payload for PUT /requirements/:id/status
type UpdateRequirementStatusRequest struct {
	Status RequirementStatus `json:"status" binding:"required"`
	Note   *string           `json:"note,omitempty"`
}

// Validate checks that the requested status is a known value
func (r *UpdateRequirementStatusRequest) Validate() error {
	switch r.Status {
	case RequirementUnderReview, RequirementClientReview, RequirementAccepted, RequirementRejected:
		return nil
	}
	return errors.New("invalid requirement status")
}

// AssignAgencyRequest assigns a job role to an agency
type AssignAgencyRequest struct {
	AgencyID uuid.UUID `json:"agency_id" binding:"required"`
}
