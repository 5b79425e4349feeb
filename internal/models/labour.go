package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Stage represents a step in the labour placement lifecycle
type Stage string

const (
	StageMedicalStatus   Stage = "MEDICAL_STATUS"
	StageFingerprint     Stage = "FINGERPRINT"
	StageVisaPrinting    Stage = "VISA_PRINTING"
	StageContractSign    Stage = "CONTRACT_SIGN"
	StageOfferLetterSign Stage = "OFFER_LETTER_SIGN"
	StageDeployed        Stage = "DEPLOYED"
)

// StageRecordStatus represents the state of a single ledger entry
type StageRecordStatus string

const (
	StageRecordPending   StageRecordStatus = "PENDING"
	StageRecordCompleted StageRecordStatus = "COMPLETED"
	StageRecordSigned    StageRecordStatus = "SIGNED"
)

// IsValidStage reports whether s names a known lifecycle stage
func IsValidStage(s Stage) bool {
	switch s {
	case StageMedicalStatus, StageFingerprint, StageVisaPrinting,
		StageContractSign, StageOfferLetterSign, StageDeployed:
		return true
	}
	return false
}

// LabourProfile represents one recruited worker owned by an agency
type LabourProfile struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	AgencyID       uuid.UUID  `json:"agency_id" db:"agency_id"`
	FullName       string     `json:"full_name" db:"full_name"`
	PassportNumber string     `json:"passport_number" db:"passport_number"`
	Nationality    NullString `json:"nationality,omitempty" db:"nationality"`
	DateOfBirth    NullTime   `json:"date_of_birth,omitempty" db:"date_of_birth"`
	PhotoPath      NullString `json:"photo_path,omitempty" db:"photo_path"`
	CurrentStage   *Stage     `json:"current_stage,omitempty" db:"current_stage"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// LabourStageHistory is one append-only ledger entry per stage transition.
// Invariant: at most one PENDING row per (labour_id, stage).
type LabourStageHistory struct {
	ID          uuid.UUID         `json:"id" db:"id"`
	LabourID    uuid.UUID         `json:"labour_id" db:"labour_id"`
	Stage       Stage             `json:"stage" db:"stage"`
	Status      StageRecordStatus `json:"status" db:"status"`
	Notes       NullString        `json:"notes,omitempty" db:"notes"`
	CompletedAt NullTime          `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt   time.Time         `json:"created_at" db:"created_at"`
}

// CreateLabourRequest is the agency payload for POST /labours
type CreateLabourRequest struct {
	FullName       string  `json:"full_name" binding:"required"`
	PassportNumber string  `json:"passport_number" binding:"required"`
	Nationality    *string `json:"nationality,omitempty"`
	DateOfBirth    *string `json:"date_of_birth,omitempty"` // YYYY-MM-DD
}

// Validate validates the labour submission
func (r *CreateLabourRequest) Validate() error {
	if r.FullName == "" {
		return errors.New("full_name is required")
	}
	if r.DateOfBirth != nil {
		if _, err := time.Parse("2006-01-02", *r.DateOfBirth); err != nil {
			return errors.New("date_of_birth must be in YYYY-MM-DD format")
		}
	}
	return nil
}
