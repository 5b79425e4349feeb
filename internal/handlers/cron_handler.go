package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/talentbridge/placement-backend/internal/services"
)

// CronHandler exposes the maintenance sweeps over HTTP. All routes are
// gated by the cron secret middleware.
type CronHandler struct {
	cronService *services.CronService
}

// NewCronHandler creates a new cron handler
func NewCronHandler(cronService *services.CronService) *CronHandler {
	return &CronHandler{cronService: cronService}
}

// Cleanup handles POST /api/v1/cron/cleanup
func (h *CronHandler) Cleanup(c *gin.Context) {
	purged, err := h.cronService.RunCleanupNotificationsNow()
	if err != nil {
		logrus.WithError(err).Error("Manual notification cleanup failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Cleanup failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Cleanup completed",
		"purged_count": purged,
	})
}

// DeleteAccounts handles POST /api/v1/cron/delete-accounts
func (h *CronHandler) DeleteAccounts(c *gin.Context) {
	deleted, err := h.cronService.RunDeleteAccountsNow()
	if err != nil {
		logrus.WithError(err).Error("Manual account purge failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Account purge failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Account purge completed",
		"deleted_count": deleted,
	})
}

// OverdueLabourReminders handles POST /api/v1/cron/overdue-labour-reminders
func (h *CronHandler) OverdueLabourReminders(c *gin.Context) {
	reminders, err := h.cronService.RunOverdueRemindersNow()
	if err != nil {
		logrus.WithError(err).Error("Manual overdue reminders sweep failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Overdue reminders sweep failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Overdue reminders sent",
		"reminder_count": reminders,
	})
}

// Status handles GET /api/v1/cron/status
func (h *CronHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.cronService.GetJobStatus())
}
