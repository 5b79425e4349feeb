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

// ClientHandler handles the client review track and backup replacement
type ClientHandler struct {
	clientRepo       *database.ClientRepository
	placementService *services.PlacementService
	auditService     *services.AuditService
}

// NewClientHandler creates a new client handler
func NewClientHandler(
	clientRepo *database.ClientRepository,
	placementService *services.PlacementService,
	auditService *services.AuditService,
) *ClientHandler {
	return &ClientHandler{
		clientRepo:       clientRepo,
		placementService: placementService,
		auditService:     auditService,
	}
}

func (h *ClientHandler) clientProfile(c *gin.Context) (*models.ClientProfile, bool) {
	userCtx, _ := middleware.GetUserContext(c)

	client, err := h.clientRepo.GetByUserID(userCtx.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusForbidden, ErrorResponse{
				Error:   "forbidden",
				Message: "No client profile found for this account",
			})
		} else {
			logrus.WithError(err).Error("Failed to load client profile")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to load client profile",
			})
		}
		return nil, false
	}

	return client, true
}

// UpdateClientStatus handles PUT /api/v1/assignments/:id/client-status
func (h *ClientHandler) UpdateClientStatus(c *gin.Context) {
	client, ok := h.clientProfile(c)
	if !ok {
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

	assignment, err := h.placementService.SetClientStatus(assignmentID, client.ID, req.Status, req.Note)
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
				Message: "Assignment does not belong to your requirements",
			})
		default:
			logrus.WithError(err).Error("Failed to update client status")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to update client status",
			})
		}
		return
	}

	h.auditService.LogStatusDecision(userCtx.UserID, assignmentID, string(database.PartyClient), string(req.Status), c.ClientIP())

	c.JSON(http.StatusOK, gin.H{
		"message":    "Client status updated",
		"assignment": assignment,
	})
}

// ListJobRoleAssignments handles GET /api/v1/clients/job-role/:id/assignments
func (h *ClientHandler) ListJobRoleAssignments(c *gin.Context) {
	client, ok := h.clientProfile(c)
	if !ok {
		return
	}

	jobRoleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid job role ID",
		})
		return
	}

	assignments, err := h.placementService.ListJobRoleAssignments(jobRoleID, client.ID)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Job role not found",
			})
		case errors.Is(err, services.ErrNotOwner):
			c.JSON(http.StatusForbidden, ErrorResponse{
				Error:   "forbidden",
				Message: "Job role does not belong to your requirements",
			})
		default:
			logrus.WithError(err).Error("Failed to list job role assignments")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to list assignments",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"assignments": assignments,
		"count":       len(assignments),
	})
}

// ReplaceRejected handles POST /api/v1/clients/job-role/:id/replace-rejected.
// No eligible backup is a successful no-op, not an error.
func (h *ClientHandler) ReplaceRejected(c *gin.Context) {
	client, ok := h.clientProfile(c)
	if !ok {
		return
	}

	jobRoleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid job role ID",
		})
		return
	}

	promoted, err := h.placementService.ReplaceRejected(jobRoleID, client.ID)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Job role not found",
			})
		case errors.Is(err, services.ErrNotOwner):
			c.JSON(http.StatusForbidden, ErrorResponse{
				Error:   "forbidden",
				Message: "Job role does not belong to your requirements",
			})
		case errors.Is(err, services.ErrJobRoleFilled):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "quota_filled",
				Message: "Job role quota is already filled",
			})
		default:
			logrus.WithError(err).Error("Failed to replace rejected labour")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to replace rejected labour",
			})
		}
		return
	}

	if promoted == nil {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "no replacement available",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Backup candidate promoted",
		"assignment": promoted,
	})
}
