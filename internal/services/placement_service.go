package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/talentbridge/placement-backend/internal/database"
	"github.com/talentbridge/placement-backend/internal/models"
)

// ErrJobRoleFilled is returned when a replacement is requested for a job
// role whose quota is already met.
var ErrJobRoleFilled = errors.New("job role quota already filled")

// PlacementService owns assignment submission, the tri-status review
// tracks, and backup promotion after a client rejection.
type PlacementService struct {
	assignmentRepo  *database.AssignmentRepository
	labourRepo      *database.LabourRepository
	jobRoleRepo     *database.JobRoleRepository
	agencyRepo      *database.AgencyRepository
	notificationSvc *NotificationService
}

// NewPlacementService creates a new PlacementService
func NewPlacementService(
	assignmentRepo *database.AssignmentRepository,
	labourRepo *database.LabourRepository,
	jobRoleRepo *database.JobRoleRepository,
	agencyRepo *database.AgencyRepository,
	notificationSvc *NotificationService,
) *PlacementService {
	return &PlacementService{
		assignmentRepo:  assignmentRepo,
		labourRepo:      labourRepo,
		jobRoleRepo:     jobRoleRepo,
		agencyRepo:      agencyRepo,
		notificationSvc: notificationSvc,
	}
}

// SubmitLabour creates an assignment for a labour the agency owns against a
// job role assigned to that agency. The labour enters the lifecycle at
// MEDICAL_STATUS in the same transaction.
func (s *PlacementService) SubmitLabour(agencyID uuid.UUID, req *models.SubmitAssignmentRequest) (*models.LabourAssignment, error) {
	labour, err := s.labourRepo.GetByID(req.LabourID)
	if err != nil {
		return nil, err
	}
	if labour.AgencyID != agencyID {
		return nil, ErrNotOwner
	}

	jobRole, err := s.jobRoleRepo.GetByID(req.JobRoleID)
	if err != nil {
		return nil, err
	}
	if jobRole.AssignedAgencyID == nil || *jobRole.AssignedAgencyID != agencyID {
		return nil, ErrNotOwner
	}

	assignment, err := s.assignmentRepo.Create(req.JobRoleID, req.LabourID, agencyID, req.IsBackup, s.labourRepo)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"assignment_id": assignment.ID,
		"job_role_id":   req.JobRoleID,
		"labour_id":     req.LabourID,
		"is_backup":     req.IsBackup,
	}).Info("Labour submitted to job role")

	return assignment, nil
}

// SetPartyStatus writes one review track and notifies the owning agency
// after the derived placement status has been committed.
func (s *PlacementService) SetPartyStatus(assignmentID uuid.UUID, party database.Party, status models.PartyStatus, note *string) (*models.LabourAssignment, error) {
	assignment, err := s.assignmentRepo.UpdatePartyStatus(assignmentID, party, status, note)
	if err != nil {
		return nil, err
	}

	s.notifyOwningAgency(assignment, party, status, note)
	return assignment, nil
}

// SetClientStatus is SetPartyStatus restricted to assignments under the
// client's own job roles.
func (s *PlacementService) SetClientStatus(assignmentID, clientID uuid.UUID, status models.PartyStatus, note *string) (*models.LabourAssignment, error) {
	assignment, err := s.assignmentRepo.GetByID(assignmentID)
	if err != nil {
		return nil, err
	}

	jobRole, err := s.jobRoleRepo.GetByID(assignment.JobRoleID)
	if err != nil {
		return nil, err
	}
	requirementClient, err := s.jobRoleRepo.GetRequirementClientID(jobRole.RequirementID)
	if err != nil {
		return nil, err
	}
	if requirementClient != clientID {
		return nil, ErrNotOwner
	}

	return s.SetPartyStatus(assignmentID, database.PartyClient, status, note)
}

// ReplaceRejected promotes the oldest eligible backup for a job role after a
// client rejection. Returns (nil, nil) when the quota is met or no backup is
// eligible; callers report that as a successful no-op.
func (s *PlacementService) ReplaceRejected(jobRoleID, clientID uuid.UUID) (*models.LabourAssignment, error) {
	jobRole, err := s.jobRoleRepo.GetByID(jobRoleID)
	if err != nil {
		return nil, err
	}
	requirementClient, err := s.jobRoleRepo.GetRequirementClientID(jobRole.RequirementID)
	if err != nil {
		return nil, err
	}
	if requirementClient != clientID {
		return nil, ErrNotOwner
	}

	accepted, err := s.assignmentRepo.CountAccepted(jobRoleID)
	if err != nil {
		return nil, err
	}
	if accepted >= jobRole.Quantity {
		return nil, ErrJobRoleFilled
	}

	promoted, err := s.assignmentRepo.PromoteOldestBackup(jobRoleID)
	if err != nil {
		return nil, err
	}
	if promoted == nil {
		// No eligible backup left; flag the role so the agency tops up.
		if err := s.jobRoleRepo.SetNeedsMoreLabour(jobRoleID, true); err != nil {
			logrus.WithError(err).WithField("job_role_id", jobRoleID).Error("Failed to flag job role for more labour")
		}
		return nil, nil
	}

	labour, err := s.labourRepo.GetByID(promoted.LabourID)
	if err == nil {
		if agency, aerr := s.agencyRepo.GetByID(promoted.AgencyID); aerr == nil {
			s.notificationSvc.NotifyBackupPromoted(agency.UserID, labour.FullName)
		}
	}

	logrus.WithFields(logrus.Fields{
		"assignment_id": promoted.ID,
		"job_role_id":   jobRoleID,
	}).Info("Backup candidate promoted")

	return promoted, nil
}

// ListJobRoleAssignments returns the assignments for a job role owned by the
// client's requirement. Other clients' job roles are not visible.
func (s *PlacementService) ListJobRoleAssignments(jobRoleID, clientID uuid.UUID) ([]models.LabourAssignment, error) {
	jobRole, err := s.jobRoleRepo.GetByID(jobRoleID)
	if err != nil {
		return nil, err
	}
	requirementClient, err := s.jobRoleRepo.GetRequirementClientID(jobRole.RequirementID)
	if err != nil {
		return nil, err
	}
	if requirementClient != clientID {
		return nil, ErrNotOwner
	}

	return s.assignmentRepo.GetByJobRoleID(jobRoleID)
}

// DashboardCounts returns aggregate placement counts for the admin dashboard.
func (s *PlacementService) DashboardCounts() (*database.PlacementCounts, error) {
	counts, err := s.assignmentRepo.CountByPlacementStatus()
	if err != nil {
		return nil, fmt.Errorf("failed to load placement counts: %w", err)
	}
	return counts, nil
}

// notifyOwningAgency pushes a review decision to the agency that submitted
// the assignment. Failures are logged, never surfaced to the reviewer.
func (s *PlacementService) notifyOwningAgency(assignment *models.LabourAssignment, party database.Party, status models.PartyStatus, note *string) {
	agency, err := s.agencyRepo.GetByID(assignment.AgencyID)
	if err != nil {
		logrus.WithError(err).WithField("agency_id", assignment.AgencyID).Error("Failed to load agency for notification")
		return
	}

	labourName := assignment.LabourID.String()
	if labour, err := s.labourRepo.GetByID(assignment.LabourID); err == nil {
		labourName = labour.FullName
	}

	s.notificationSvc.NotifyAssignmentStatus(agency.UserID, labourName, string(party), status, note)
}
