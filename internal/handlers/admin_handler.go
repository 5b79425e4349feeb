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

// AdminHandler handles admin review endpoints: agency verification,
// requirement review, the admin track of assignments and dashboard stats.
type AdminHandler struct {
	agencyRepo       *database.AgencyRepository
	clientRepo       *database.ClientRepository
	requirementRepo  *database.RequirementRepository
	jobRoleRepo      *database.JobRoleRepository
	placementService *services.PlacementService
	notificationSvc  *services.NotificationService
	auditService     *services.AuditService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	agencyRepo *database.AgencyRepository,
	clientRepo *database.ClientRepository,
	requirementRepo *database.RequirementRepository,
	jobRoleRepo *database.JobRoleRepository,
	placementService *services.PlacementService,
	notificationSvc *services.NotificationService,
	auditService *services.AuditService,
) *AdminHandler {
	return &AdminHandler{
		agencyRepo:       agencyRepo,
		clientRepo:       clientRepo,
		requirementRepo:  requirementRepo,
		jobRoleRepo:      jobRoleRepo,
		placementService: placementService,
		notificationSvc:  notificationSvc,
		auditService:     auditService,
	}
}

// UpdateAgencyStatus handles PUT /api/v1/agencies/:id/status
func (h *AdminHandler) UpdateAgencyStatus(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	agencyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid agency ID",
		})
		return
	}

	var req models.UpdateAgencyStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	agency, err := h.agencyRepo.GetByID(agencyID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Agency not found",
			})
			return
		}
		logrus.WithError(err).Error("Failed to fetch agency")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to fetch agency",
		})
		return
	}

	if err := h.agencyRepo.UpdateVerificationStatus(agencyID, req.Status, req.Note); err != nil {
		logrus.WithError(err).Error("Failed to update agency status")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to update agency status",
		})
		return
	}

	h.auditService.LogAgencyVerification(userCtx.UserID, agencyID, string(req.Status), c.ClientIP())
	h.notificationSvc.NotifyAgencyStatus(agency.UserID, req.Status, req.Note)

	c.JSON(http.StatusOK, gin.H{
		"message": "Agency status updated",
		"status":  req.Status,
	})
}

// ListPendingAgencies handles GET /api/v1/admin/agencies/pending
func (h *AdminHandler) ListPendingAgencies(c *gin.Context) {
	agencies, err := h.agencyRepo.GetPendingVerification()
	if err != nil {
		logrus.WithError(err).Error("Failed to list pending agencies")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to list pending agencies",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"agencies": agencies,
		"count":    len(agencies),
	})
}

// UpdateRequirementStatus handles PUT /api/v1/requirements/:id/status
func (h *AdminHandler) UpdateRequirementStatus(c *gin.Context) {
	requirementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid requirement ID",
		})
		return
	}

	var req models.UpdateRequirementStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	requirement, err := h.requirementRepo.GetByID(requirementID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Requirement not found",
			})
			return
		}
		logrus.WithError(err).Error("Failed to fetch requirement")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to fetch requirement",
		})
		return
	}

	if err := h.requirementRepo.UpdateStatus(requirementID, req.Status, req.Note); err != nil {
		logrus.WithError(err).Error("Failed to update requirement status")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to update requirement status",
		})
		return
	}

	if client, cerr := h.clientRepo.GetByID(requirement.ClientID); cerr == nil {
		h.notificationSvc.NotifyRequirementStatus(client.UserID, requirement.Title, req.Status, req.Note)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Requirement status updated",
		"status":  req.Status,
	})
}

// ListPendingRequirements handles GET /api/v1/admin/requirements/pending
func (h *AdminHandler) ListPendingRequirements(c *gin.Context) {
	requirements, err := h.requirementRepo.GetPendingReview()
	if err != nil {
		logrus.WithError(err).Error("Failed to list pending requirements")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to list pending requirements",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requirements": requirements,
		"count":        len(requirements),
	})
}

// AssignAgency handles POST /api/v1/admin/job-roles/:id/assign-agency
func (h *AdminHandler) AssignAgency(c *gin.Context) {
	jobRoleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid job role ID",
		})
		return
	}

	var req models.AssignAgencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	agency, err := h.agencyRepo.GetByID(req.AgencyID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Agency not found",
			})
			return
		}
		logrus.WithError(err).Error("Failed to fetch agency")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to fetch agency",
		})
		return
	}

	if agency.VerificationStatus != models.VerificationVerified {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "agency_not_verified",
			Message: "Only verified agencies can be assigned job roles",
		})
		return
	}

	if err := h.jobRoleRepo.AssignAgency(jobRoleID, req.AgencyID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Job role not found",
			})
			return
		}
		logrus.WithError(err).Error("Failed to assign agency")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to assign agency",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Agency assigned to job role"})
}

// UpdateAdminStatus handles PUT /api/v1/assignments/:id/admin-status
func (h *AdminHandler) UpdateAdminStatus(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	assignmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid assignment ID",
		})
		return
	}

	var req models.UpdatePartyStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	assignment, err := h.placementService.SetPartyStatus(assignmentID, database.PartyAdmin, req.Status, req.Note)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Assignment not found",
			})
			return
		}
		logrus.WithError(err).Error("Failed to update admin status")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to update admin status",
		})
		return
	}

	h.auditService.LogStatusDecision(userCtx.UserID, assignmentID, string(database.PartyAdmin), string(req.Status), c.ClientIP())

	c.JSON(http.StatusOK, gin.H{
		"message":    "Admin status updated",
		"assignment": assignment,
	})
}

// DashboardStats handles GET /api/v1/admin/dashboard/stats.
// Counts read the derived placement_status column only.
func (h *AdminHandler) DashboardStats(c *gin.Context) {
	counts, err := h.placementService.DashboardCounts()
	if err != nil {
		logrus.WithError(err).Error("Failed to load dashboard stats")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to load dashboard stats",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"placements": gin.H{
			"in_progress": counts.InProgress,
			"placed":      counts.Placed,
			"rejected":    counts.Rejected,
			"total":       counts.InProgress + counts.Placed + counts.Rejected,
		},
	})
}
