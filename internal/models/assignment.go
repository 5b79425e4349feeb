package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// PartyStatus is one of the three independent review tracks on an assignment
type PartyStatus string

const (
	PartyStatusPending       PartyStatus = "PENDING"
	PartyStatusSubmitted     PartyStatus = "SUBMITTED"
	PartyStatusAccepted      PartyStatus = "ACCEPTED"
	PartyStatusRejected      PartyStatus = "REJECTED"
	PartyStatusNeedsRevision PartyStatus = "NEEDS_REVISION"
)

// IsValidPartyStatus reports whether s is a known review status
func IsValidPartyStatus(s PartyStatus) bool {
	switch s {
	case PartyStatusPending, PartyStatusSubmitted, PartyStatusAccepted,
		PartyStatusRejected, PartyStatusNeedsRevision:
		return true
	}
	return false
}

// PlacementStatus is the derived terminal state of the three review tracks.
// It is recomputed inside the same transaction as any party-status write so
// aggregate reads never re-evaluate the conjunction themselves.
type PlacementStatus string

const (
	PlacementInProgress PlacementStatus = "IN_PROGRESS"
	PlacementPlaced     PlacementStatus = "PLACED"
	PlacementRejected   PlacementStatus = "REJECTED"
)

// ComputePlacement derives the placement status from the three tracks.
// Placed requires all three ACCEPTED; any REJECTED track is terminal.
func ComputePlacement(agency, admin, client PartyStatus) PlacementStatus {
	if agency == PartyStatusRejected || admin == PartyStatusRejected || client == PartyStatusRejected {
		return PlacementRejected
	}
	if agency == PartyStatusAccepted && admin == PartyStatusAccepted && client == PartyStatusAccepted {
		return PlacementPlaced
	}
	return PlacementInProgress
}

// LabourAssignment joins a labour profile to a job role via an agency
type LabourAssignment struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	JobRoleID       uuid.UUID       `json:"job_role_id" db:"job_role_id"`
	LabourID        uuid.UUID       `json:"labour_id" db:"labour_id"`
	AgencyID        uuid.UUID       `json:"agency_id" db:"agency_id"`
	AgencyStatus    PartyStatus     `json:"agency_status" db:"agency_status"`
	AdminStatus     PartyStatus     `json:"admin_status" db:"admin_status"`
	ClientStatus    PartyStatus     `json:"client_status" db:"client_status"`
	PlacementStatus PlacementStatus `json:"placement_status" db:"placement_status"`
	IsBackup        bool            `json:"is_backup" db:"is_backup"`
	StatusNote      NullString      `json:"status_note,omitempty" db:"status_note"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// SubmitAssignmentRequest is the agency payload for POST /assignments
type SubmitAssignmentRequest struct {
	JobRoleID uuid.UUID `json:"job_role_id" binding:"required"`
	LabourID  uuid.UUID `json:"labour_id" binding:"required"`
	IsBackup  bool      `json:"is_backup"`
}

// UpdatePartyStatusRequest mutates one review track on an assignment
type UpdatePartyStatusRequest struct {
	Status PartyStatus `json:"status" binding:"required"`
	Note   *string     `json:"note,omitempty"`
}

// Validate checks that the requested status is a known value
func (r *UpdatePartyStatusRequest) Validate() error {
	if !IsValidPartyStatus(r.Status) {
		return errors.New("invalid assignment status")
	}
	return nil
}
