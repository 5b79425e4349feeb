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
)

// RequirementHandler handles client-side requirement endpoints
type RequirementHandler struct {
	requirementRepo *database.RequirementRepository
	clientRepo      *database.ClientRepository
}

// NewRequirementHandler creates a new requirement handler
func NewRequirementHandler(requirementRepo *database.RequirementRepository, clientRepo *database.ClientRepository) *RequirementHandler {
	return &RequirementHandler{
		requirementRepo: requirementRepo,
		clientRepo:      clientRepo,
	}
}

// clientProfile resolves the caller's client profile or writes the error
func (h *RequirementHandler) clientProfile(c *gin.Context) (*models.ClientProfile, bool) {
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

// CreateRequirement handles POST /api/v1/requirements
func (h *RequirementHandler) CreateRequirement(c *gin.Context) {
	client, ok := h.clientProfile(c)
	if !ok {
		return
	}

	var req models.CreateRequirementRequest
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

	requirement, err := h.requirementRepo.Create(client.ID, &req)
	if err != nil {
		logrus.WithError(err).Error("Failed to create requirement")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to create requirement",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Requirement submitted for review",
		"requirement": requirement,
	})
}

// ListRequirements handles GET /api/v1/requirements
func (h *RequirementHandler) ListRequirements(c *gin.Context) {
	client, ok := h.clientProfile(c)
	if !ok {
		return
	}

	requirements, err := h.requirementRepo.GetByClientID(client.ID)
	if err != nil {
		logrus.WithError(err).Error("Failed to list requirements")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to list requirements",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requirements": requirements,
		"count":        len(requirements),
	})
}

// GetRequirement handles GET /api/v1/requirements/:id
func (h *RequirementHandler) GetRequirement(c *gin.Context) {
	client, ok := h.clientProfile(c)
	if !ok {
		return
	}

	requirementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid requirement ID",
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

	if requirement.ClientID != client.ID {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Requirement not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"requirement": requirement})
}
