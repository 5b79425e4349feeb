package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/talentbridge/placement-backend/internal/database"
	"github.com/talentbridge/placement-backend/internal/middleware"
	"github.com/talentbridge/placement-backend/internal/models"
	"github.com/talentbridge/placement-backend/internal/services"
)

// NotificationHandler handles notification reads, state changes and the SSE
// stream.
type NotificationHandler struct {
	notificationRepo *database.NotificationRepository
	hub              *services.NotificationHub
	maintenanceSvc   *services.MaintenanceService
	keepAlive        time.Duration
}

// NewNotificationHandler creates a new notification handler. keepAlive is
// how often an idle stream emits a keep-alive so proxies do not drop the
// connection.
func NewNotificationHandler(notificationRepo *database.NotificationRepository, hub *services.NotificationHub, maintenanceSvc *services.MaintenanceService, keepAlive time.Duration) *NotificationHandler {
	return &NotificationHandler{
		notificationRepo: notificationRepo,
		hub:              hub,
		maintenanceSvc:   maintenanceSvc,
		keepAlive:        keepAlive,
	}
}

// ListNotifications handles GET /api/v1/notifications
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	includeArchived := c.Query("include_archived") == "true"
	// The repository bounds the page size.
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil {
		limit = 50
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	notifications, err := h.notificationRepo.GetByRecipient(userCtx.UserID, includeArchived, limit, offset)
	if err != nil {
		logrus.WithError(err).Error("Failed to list notifications")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to list notifications",
		})
		return
	}

	unread, err := h.notificationRepo.CountUnread(userCtx.UserID)
	if err != nil {
		logrus.WithError(err).Error("Failed to count unread notifications")
		unread = 0
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"count":         len(notifications),
		"unread_count":  unread,
	})
}

// PatchNotification handles PATCH /api/v1/notifications
func (h *NotificationHandler) PatchNotification(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	var req models.PatchNotificationRequest
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

	var opErr error
	switch req.Action {
	case models.NotificationActionMarkAllAsRead:
		_, opErr = h.notificationRepo.MarkAllAsRead(userCtx.UserID)
	case models.NotificationActionMarkAsRead:
		opErr = h.notificationRepo.MarkAsRead(*req.NotificationID, userCtx.UserID)
	case models.NotificationActionArchive:
		opErr = h.notificationRepo.Archive(*req.NotificationID, userCtx.UserID)
	case models.NotificationActionUnarchive:
		opErr = h.notificationRepo.Unarchive(*req.NotificationID, userCtx.UserID)
	}

	if opErr != nil {
		if errors.Is(opErr, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Notification not found",
			})
			return
		}
		logrus.WithError(opErr).Error("Failed to update notification")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to update notification",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification updated"})
}

// PatchNotificationsBulk handles PATCH /api/v1/notifications/bulk
func (h *NotificationHandler) PatchNotificationsBulk(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	var req models.BulkPatchNotificationRequest
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

	updated, err := h.notificationRepo.BulkUpdate(req.Action, req.NotificationIDs, userCtx.UserID)
	if err != nil {
		logrus.WithError(err).Error("Failed to bulk update notifications")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to update notifications",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Notifications updated",
		"updated_count": updated,
	})
}

// Stream handles GET /api/v1/notifications/stream (Server-Sent Events).
// Sends a hello event on connect, notification events as they arrive and
// keep-alives while idle. Closes when the client disconnects.
func (h *NotificationHandler) Stream(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	sub := h.hub.Subscribe(userCtx.UserID)
	defer h.hub.Unsubscribe(sub)

	c.SSEvent("hello", gin.H{
		"user_id":      userCtx.UserID,
		"connected_at": time.Now().UTC(),
	})
	c.Writer.Flush()

	keepalive := time.NewTicker(h.keepAlive)
	defer keepalive.Stop()

	clientGone := c.Request.Context().Done()

	c.Stream(func(w io.Writer) bool {
		select {
		case n, ok := <-sub.Ch:
			if !ok {
				return false
			}
			c.SSEvent("notification", n)
			return true
		case <-keepalive.C:
			c.SSEvent("keepalive", time.Now().Unix())
			return true
		case <-clientGone:
			return false
		}
	})
}

// Cleanup handles POST /api/v1/notifications/cleanup (cron-secret gated)
func (h *NotificationHandler) Cleanup(c *gin.Context) {
	purged, err := h.maintenanceSvc.CleanupNotifications()
	if err != nil {
		logrus.WithError(err).Error("Notification cleanup failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to purge archived notifications",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Archived notifications purged",
		"purged_count": purged,
	})
}
