package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/talentbridge/placement-backend/internal/database"
	"github.com/talentbridge/placement-backend/internal/models"
)

// AgencyProfileKey is the key used to store the caller's agency profile
// in Gin context once verification has been checked.
const AgencyProfileKey = "agency_profile"

// RequireVerifiedAgency ensures the authenticated user owns an agency
// profile whose verification status is VERIFIED. Agencies that are still
// pending, rejected, or suspended cannot submit labour or manage stages.
func RequireVerifiedAgency(agencyRepo *database.AgencyRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userCtx, exists := GetUserContext(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "User context not found. Auth middleware may not be applied.",
				"code":    "MISSING_USER_CONTEXT",
			})
			c.Abort()
			return
		}

		profile, err := agencyRepo.GetByUserID(userCtx.UserID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				c.JSON(http.StatusForbidden, gin.H{
					"error":   "forbidden",
					"message": "No agency profile found for this account",
					"code":    "AGENCY_PROFILE_MISSING",
				})
			} else {
				logrus.WithError(err).Error("Failed to load agency profile")
				c.JSON(http.StatusInternalServerError, gin.H{
					"error":   "internal_error",
					"message": "Failed to verify agency status",
				})
			}
			c.Abort()
			return
		}

		if profile.VerificationStatus != models.VerificationVerified {
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "agency_not_verified",
				"message": "Agency must be verified before performing this action",
				"code":    "AGENCY_NOT_VERIFIED",
				"status":  profile.VerificationStatus,
			})
			c.Abort()
			return
		}

		c.Set(AgencyProfileKey, profile)
		c.Next()
	}
}

// GetAgencyProfile retrieves the agency profile stored by RequireVerifiedAgency.
func GetAgencyProfile(c *gin.Context) (*models.AgencyProfile, bool) {
	value, exists := c.Get(AgencyProfileKey)
	if !exists {
		return nil, false
	}

	profile, ok := value.(*models.AgencyProfile)
	if !ok {
		return nil, false
	}

	return profile, true
}
