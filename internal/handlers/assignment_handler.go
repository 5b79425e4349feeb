package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/talentbridge/placement-backend/internal/database"
	"github.com/talentbridge/placement-backend/internal/middleware"
	"github.com/talentbridge/placement-backend/internal/models"
	"github.com/talentbridge/placement-backend/internal/services"
)

// AssignmentHandler handles agency-side assignment endpoints: submitting
// labour to job roles and advancing the placement lifecycle.
type AssignmentHandler struct {
	assignmentRepo   *database.AssignmentRepository
	placementService *services.PlacementService
	stageService     *services.StageService
	auditService     *services.AuditService
}

// NewAssignmentHandler creates a new assignment handler
func NewAssignmentHandler(
	assignmentRepo *database.AssignmentRepository,
	placementService *services.PlacementService,
	stageService *services.StageService,
	auditService *services.AuditService,
) *AssignmentHandler {
	return &AssignmentHandler{
		assignmentRepo:   assignmentRepo,
		placementService: placementService,
		stageService:     stageService,
		auditService:     auditService,
	}
}

// SubmitLabour handles POST /api/v1/assignments
func (h *AssignmentHandler) SubmitLabour(c *gin.Context) {
	agency, ok := middleware.GetAgencyProfile(c)
	if !ok {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "Agency profile required",
		})
		return
	}

	var req models.SubmitAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	assignment, err := h.placementService.SubmitLabour(agency.ID, &req)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Labour or job role not found",
			})
		case errors.Is(err, services.ErrNotOwner):
			c.JSON(http.StatusForbidden, ErrorResponse{
				Error:   "forbidden",
				Message: "Labour or job role does not belong to this agency",
			})
		case errors.Is(err, database.ErrStageConflict):
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "already_submitted",
				Message: "This labour is already in the placement pipeline",
			})
		default:
			logrus.WithError(err).Error("Failed to submit labour")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to submit labour",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Labour submitted",
		"assignment": assignment,
	})
}

// ListAssignments handles GET /api/v1/assignments
func (h *AssignmentHandler) ListAssignments(c *gin.Context) {
	agency, ok := middleware.GetAgencyProfile(c)
	if !ok {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "Agency profile required",
		})
		return
	}

	assignments, err := h.assignmentRepo.GetByAgencyID(agency.ID)
	if err != nil {
		logrus.WithError(err).Error("Failed to list assignments")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to list assignments",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"assignments": assignments,
		"count":       len(assignments),
	})
}

// stageRequest is the optional body accepted by the stage endpoints
type stageRequest struct {
	Note string `json:"note"`
}

// MarkMedicalFit handles POST /api/v1/assignments/:id/mark-medical-fit
func (h *AssignmentHandler) MarkMedicalFit(c *gin.Context) {
	h.advance(c, services.TransitionMedicalFit, "Medical status marked fit")
}

// MarkFingerprintPass handles POST /api/v1/assignments/:id/mark-fingerprint-pass
func (h *AssignmentHandler) MarkFingerprintPass(c *gin.Context) {
	h.advance(c, services.TransitionFingerprintPass, "Fingerprint clearance recorded")
}

// MarkVisaPrinted handles POST /api/v1/assignments/:id/mark-visa-printed
func (h *AssignmentHandler) MarkVisaPrinted(c *gin.Context) {
	h.advance(c, services.TransitionVisaPrinted, "Visa printing recorded")
}

// ApproveContract handles POST /api/v1/assignments/:id/approve-contract
func (h *AssignmentHandler) ApproveContract(c *gin.Context) {
	h.advance(c, services.TransitionContractApproved, "Contract signed")
}

// SignOfferLetter handles POST /api/v1/assignments/:id/sign-offer-letter
func (h *AssignmentHandler) SignOfferLetter(c *gin.Context) {
	h.advance(c, services.TransitionOfferLetterSigned, "Offer letter signed")
}

func (h *AssignmentHandler) advance(c *gin.Context, transition services.StageTransition, successMessage string) {
	agency, ok := middleware.GetAgencyProfile(c)
	if !ok {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "Agency profile required",
		})
		return
	}
	userCtx, _ := middleware.GetUserContext(c)

	assignmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid assignment ID",
		})
		return
	}

	var req stageRequest
	_ = c.ShouldBindJSON(&req) // note is optional

	labour, err := h.stageService.Advance(assignmentID, agency.ID, userCtx.UserID, transition, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Assignment not found",
			})
		case errors.Is(err, services.ErrNotOwner):
			c.JSON(http.StatusForbidden, ErrorResponse{
				Error:   "forbidden",
				Message: "Assignment does not belong to this agency",
			})
		case errors.Is(err, database.ErrStageConflict):
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"message": "Labour is not pending at the required stage",
			})
		default:
			logrus.WithError(err).Error("Failed to advance stage")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to advance stage",
			})
		}
		return
	}

	h.auditService.LogStageAdvance(userCtx.UserID, labour.ID, string(transition.From), string(transition.To), c.ClientIP())

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       successMessage,
		"current_stage": labour.CurrentStage,
	})
}
