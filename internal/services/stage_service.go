package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/talentbridge/placement-backend/internal/database"
	"github.com/talentbridge/placement-backend/internal/models"
)

// ErrNotOwner is returned when an agency operates on a labour it does not own
var ErrNotOwner = errors.New("labour does not belong to this agency")

// StageTransition is one fixed step of the placement lifecycle
type StageTransition struct {
	From        models.Stage
	To          models.Stage
	CloseStatus models.StageRecordStatus
}

// The lifecycle is a fixed chain; each endpoint maps to exactly one
// transition so a double-submit cannot skip or repeat a step.
var (
	TransitionMedicalFit = StageTransition{
		From: models.StageMedicalStatus, To: models.StageFingerprint,
		CloseStatus: models.StageRecordCompleted,
	}
	TransitionFingerprintPass = StageTransition{
		From: models.StageFingerprint, To: models.StageVisaPrinting,
		CloseStatus: models.StageRecordCompleted,
	}
	TransitionVisaPrinted = StageTransition{
		From: models.StageVisaPrinting, To: models.StageContractSign,
		CloseStatus: models.StageRecordCompleted,
	}
	TransitionContractApproved = StageTransition{
		From: models.StageContractSign, To: models.StageOfferLetterSign,
		CloseStatus: models.StageRecordSigned,
	}
	TransitionOfferLetterSigned = StageTransition{
		From: models.StageOfferLetterSign, To: models.StageDeployed,
		CloseStatus: models.StageRecordSigned,
	}
)

// StageService advances labour profiles through the placement lifecycle.
// Ownership is checked against the caller's agency before any write.
type StageService struct {
	labourRepo      *database.LabourRepository
	assignmentRepo  *database.AssignmentRepository
	notificationSvc *NotificationService
}

// NewStageService creates a new StageService
func NewStageService(labourRepo *database.LabourRepository, assignmentRepo *database.AssignmentRepository, notificationSvc *NotificationService) *StageService {
	return &StageService{
		labourRepo:      labourRepo,
		assignmentRepo:  assignmentRepo,
		notificationSvc: notificationSvc,
	}
}

// Advance applies one lifecycle transition to the labour behind an
// assignment. The agency must own the labour. Returns ErrStageConflict when
// the labour is not currently pending at the transition's from-stage.
func (s *StageService) Advance(assignmentID, agencyID, agencyUserID uuid.UUID, t StageTransition, note string) (*models.LabourProfile, error) {
	assignment, err := s.assignmentRepo.GetByID(assignmentID)
	if err != nil {
		return nil, err
	}

	if assignment.AgencyID != agencyID {
		return nil, ErrNotOwner
	}

	if err := s.labourRepo.AdvanceStage(assignment.LabourID, t.From, t.To, t.CloseStatus, note); err != nil {
		return nil, err
	}

	labour, err := s.labourRepo.GetByID(assignment.LabourID)
	if err != nil {
		return nil, fmt.Errorf("stage advanced but failed to reload labour: %w", err)
	}

	// Push after the transition committed.
	s.notificationSvc.NotifyStageAdvanced(agencyUserID, labour.FullName, t.To)

	logrus.WithFields(logrus.Fields{
		"labour_id":  labour.ID,
		"from_stage": t.From,
		"to_stage":   t.To,
	}).Info("Labour stage advanced")

	return labour, nil
}

// History returns the stage ledger for a labour owned by the agency.
func (s *StageService) History(labourID, agencyID uuid.UUID) ([]models.LabourStageHistory, error) {
	labour, err := s.labourRepo.GetByID(labourID)
	if err != nil {
		return nil, err
	}

	if labour.AgencyID != agencyID {
		return nil, ErrNotOwner
	}

	return s.labourRepo.GetStageHistory(labourID)
}
