package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CronSecretHeader carries the shared secret for maintenance endpoints.
const CronSecretHeader = "X-Cron-Secret"

// RequireCronSecret gates the manual maintenance endpoints behind a shared
// secret so only the scheduler (or an operator who knows the secret) can
// trigger sweeps. When no secret is configured the endpoints are disabled.
func RequireCronSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":   "cron_disabled",
				"message": "Maintenance endpoints are not configured",
			})
			c.Abort()
			return
		}

		provided := c.GetHeader(CronSecretHeader)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			logrus.WithFields(logrus.Fields{
				"path": c.Request.URL.Path,
				"ip":   c.ClientIP(),
			}).Warn("Cron secret mismatch")
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Invalid or missing cron secret",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
