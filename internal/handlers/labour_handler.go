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
	"github.com/talentbridge/placement-backend/pkg/validator"
)

// LabourHandler handles labour profile endpoints for agencies
type LabourHandler struct {
	labourRepo        *database.LabourRepository
	stageService      *services.StageService
	passportValidator *validator.PassportValidator
}

// NewLabourHandler creates a new labour handler
func NewLabourHandler(labourRepo *database.LabourRepository, stageService *services.StageService, passportValidator *validator.PassportValidator) *LabourHandler {
	return &LabourHandler{
		labourRepo:        labourRepo,
		stageService:      stageService,
		passportValidator: passportValidator,
	}
}

// CreateLabour handles POST /api/v1/labours
func (h *LabourHandler) CreateLabour(c *gin.Context) {
	agency, ok := middleware.GetAgencyProfile(c)
	if !ok {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "Agency profile required",
		})
		return
	}

	var req models.CreateLabourRequest
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

	passport, err := h.passportValidator.Validate(req.PassportNumber)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_passport",
			Message: err.Error(),
		})
		return
	}

	labour, err := h.labourRepo.Create(agency.ID, &req, passport)
	if err != nil {
		logrus.WithError(err).Error("Failed to create labour profile")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to create labour profile",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Labour profile created",
		"labour":  labour,
	})
}

// ListLabours handles GET /api/v1/labours
func (h *LabourHandler) ListLabours(c *gin.Context) {
	agency, ok := middleware.GetAgencyProfile(c)
	if !ok {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "Agency profile required",
		})
		return
	}

	labours, err := h.labourRepo.GetByAgencyID(agency.ID)
	if err != nil {
		logrus.WithError(err).Error("Failed to list labour profiles")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to list labour profiles",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"labours": labours,
		"count":   len(labours),
	})
}

// GetLabour handles GET /api/v1/labours/:id
func (h *LabourHandler) GetLabour(c *gin.Context) {
	agency, ok := middleware.GetAgencyProfile(c)
	if !ok {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "Agency profile required",
		})
		return
	}

	labourID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid labour ID",
		})
		return
	}

	labour, err := h.labourRepo.GetByID(labourID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Labour profile not found",
			})
			return
		}
		logrus.WithError(err).Error("Failed to fetch labour profile")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to fetch labour profile",
		})
		return
	}

	if labour.AgencyID != agency.ID {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Labour profile not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"labour": labour})
}

// GetStageHistory handles GET /api/v1/labours/:id/stages
func (h *LabourHandler) GetStageHistory(c *gin.Context) {
	agency, ok := middleware.GetAgencyProfile(c)
	if !ok {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "Agency profile required",
		})
		return
	}

	labourID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid labour ID",
		})
		return
	}

	history, err := h.stageService.History(labourID, agency.ID)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Labour profile not found",
			})
		case errors.Is(err, services.ErrNotOwner):
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Labour profile not found",
			})
		default:
			logrus.WithError(err).Error("Failed to fetch stage history")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to fetch stage history",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"history": history,
		"count":   len(history),
	})
}
