package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/talentbridge/placement-backend/internal/config"
	"github.com/talentbridge/placement-backend/internal/database"
	"github.com/talentbridge/placement-backend/internal/middleware"
	"github.com/talentbridge/placement-backend/internal/models"
	"github.com/talentbridge/placement-backend/internal/services"
	"github.com/talentbridge/placement-backend/pkg/jwt"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	jwtService       *jwt.Service
	auditService     *services.AuditService
	userRepo         *database.UserRepository
	refreshTokenRepo *database.RefreshTokenRepository
	agencyRepo       *database.AgencyRepository
	clientRepo       *database.ClientRepository
	config           *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	jwtService *jwt.Service,
	auditService *services.AuditService,
	userRepo *database.UserRepository,
	refreshTokenRepo *database.RefreshTokenRepository,
	agencyRepo *database.AgencyRepository,
	clientRepo *database.ClientRepository,
	cfg *config.Config,
) *AuthHandler {
	return &AuthHandler{
		jwtService:       jwtService,
		auditService:     auditService,
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		agencyRepo:       agencyRepo,
		clientRepo:       clientRepo,
		config:           cfg,
	}
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// LoginResponse represents a successful login or token refresh
type LoginResponse struct {
	Message      string   `json:"message"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int      `json:"expires_in_seconds"`
	Roles        []string `json:"roles"`
}

// Register handles POST /api/v1/auth/register. The user row and the
// matching agency or client profile are created together; new agencies
// start in PENDING verification.
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
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

	if _, err := h.userRepo.GetByEmail(req.Email); err == nil {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "email_taken",
			Message: "An account with this email already exists",
		})
		return
	} else if !errors.Is(err, database.ErrNotFound) {
		logrus.WithError(err).Error("Failed to check existing email")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to process registration",
		})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.config.Security.BcryptCost)
	if err != nil {
		logrus.WithError(err).Error("Failed to hash password")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to process registration",
		})
		return
	}

	user, err := h.userRepo.CreateUser(req.Email, string(hash), []string{req.Role})
	if err != nil {
		logrus.WithError(err).Error("Failed to create user")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to create account",
		})
		return
	}

	switch req.Role {
	case models.RoleAgency:
		if _, err := h.agencyRepo.Create(user.ID, *req.AgencyName, req.LicenseNumber, req.Country, req.ContactPhone); err != nil {
			logrus.WithError(err).Error("Failed to create agency profile")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to create agency profile",
			})
			return
		}
	case models.RoleClient:
		if _, err := h.clientRepo.Create(user.ID, *req.CompanyName, req.Industry, req.Country, req.ContactPhone); err != nil {
			logrus.WithError(err).Error("Failed to create client profile")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to create client profile",
			})
			return
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created",
		"user":    user,
	})
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
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

	user, err := h.userRepo.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			h.auditService.LogLoginFailure(req.Email, c.ClientIP(), c.Request.UserAgent(), "unknown_email")
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "invalid_credentials",
				Message: "Invalid email or password",
			})
			return
		}
		logrus.WithError(err).Error("Failed to fetch user for login")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to process login",
		})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		h.auditService.LogLoginFailure(req.Email, c.ClientIP(), c.Request.UserAgent(), "wrong_password")
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_credentials",
			Message: "Invalid email or password",
		})
		return
	}

	if user.Status != models.UserStatusActive {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "account_inactive",
			Message: "This account is not active",
		})
		return
	}

	accessToken, err := h.jwtService.GenerateAccessToken(user.ID, user.Email, user.Roles)
	if err != nil {
		logrus.WithError(err).Error("Failed to generate access token")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "token_error",
			Message: "Failed to generate tokens",
		})
		return
	}

	refreshToken, err := h.jwtService.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		logrus.WithError(err).Error("Failed to generate refresh token")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "token_error",
			Message: "Failed to generate tokens",
		})
		return
	}

	expiresAt := time.Now().Add(h.config.JWT.RefreshTokenExpiry)
	if err := h.refreshTokenRepo.StoreRefreshToken(user.ID, refreshToken, c.ClientIP(), c.Request.UserAgent(), expiresAt); err != nil {
		logrus.WithError(err).Error("Failed to store refresh token")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "token_error",
			Message: "Failed to store session",
		})
		return
	}

	h.auditService.LogLogin(user.ID, user.Email, c.ClientIP(), c.Request.UserAgent())

	c.JSON(http.StatusOK, LoginResponse{
		Message:      "Login successful",
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(h.config.JWT.AccessTokenExpiry.Seconds()),
		Roles:        user.Roles,
	})
}

// RefreshToken handles POST /api/v1/auth/refresh.
// The old refresh token is revoked and replaced in the same request.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req models.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_token",
			Message: "Invalid or expired refresh token",
		})
		return
	}

	stored, err := h.refreshTokenRepo.GetRefreshToken(req.RefreshToken)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "invalid_token",
				Message: "Refresh token is not recognized",
			})
			return
		}
		logrus.WithError(err).Error("Failed to look up refresh token")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "token_check_failed",
			Message: "Failed to verify token status",
		})
		return
	}

	if stored.Revoked || time.Now().After(stored.ExpiresAt) {
		h.auditService.LogTokenRefresh(claims.UserID, c.ClientIP(), c.Request.UserAgent(), false)
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "token_revoked",
			Message: "Refresh token has been revoked or expired",
		})
		return
	}

	user, err := h.userRepo.GetByID(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_token",
			Message: "Account no longer exists",
		})
		return
	}

	accessToken, err := h.jwtService.GenerateAccessToken(user.ID, user.Email, user.Roles)
	if err != nil {
		logrus.WithError(err).Error("Failed to generate access token")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "token_error",
			Message: "Failed to generate tokens",
		})
		return
	}

	newRefreshToken, err := h.jwtService.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		logrus.WithError(err).Error("Failed to generate refresh token")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "token_error",
			Message: "Failed to generate tokens",
		})
		return
	}

	// Rotate: revoke the old token, store the new one.
	if err := h.refreshTokenRepo.RevokeToken(req.RefreshToken); err != nil {
		logrus.WithError(err).Error("Failed to revoke old refresh token")
	}

	expiresAt := time.Now().Add(h.config.JWT.RefreshTokenExpiry)
	if err := h.refreshTokenRepo.StoreRefreshToken(user.ID, newRefreshToken, c.ClientIP(), c.Request.UserAgent(), expiresAt); err != nil {
		logrus.WithError(err).Error("Failed to store rotated refresh token")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "token_error",
			Message: "Failed to store session",
		})
		return
	}

	h.auditService.LogTokenRefresh(user.ID, c.ClientIP(), c.Request.UserAgent(), true)

	c.JSON(http.StatusOK, LoginResponse{
		Message:      "Token refreshed",
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		ExpiresIn:    int(h.config.JWT.AccessTokenExpiry.Seconds()),
		Roles:        user.Roles,
	})
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	var req struct {
		RefreshToken string `json:"refresh_token"`
		LogoutAll    bool   `json:"logout_all"`
	}
	// Body is optional; missing token with logout_all=false is still a 200.
	_ = c.ShouldBindJSON(&req)

	if req.LogoutAll {
		if err := h.refreshTokenRepo.RevokeAllUserTokens(userCtx.UserID); err != nil {
			logrus.WithError(err).Error("Failed to revoke user tokens")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to log out",
			})
			return
		}
	} else if req.RefreshToken != "" {
		if err := h.refreshTokenRepo.RevokeToken(req.RefreshToken); err != nil && !errors.Is(err, database.ErrNotFound) {
			logrus.WithError(err).Error("Failed to revoke refresh token")
		}
	}

	h.auditService.LogLogout(userCtx.UserID, c.ClientIP(), c.Request.UserAgent(), req.LogoutAll)

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// GetProfile handles GET /api/v1/user/profile
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	user, err := h.userRepo.GetByID(userCtx.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "User not found",
			})
			return
		}
		logrus.WithError(err).Error("Failed to fetch profile")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to fetch profile",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateProfile handles PUT /api/v1/user/profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	user, err := h.userRepo.UpdateProfile(userCtx.UserID, &req)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "User not found",
			})
			return
		}
		logrus.WithError(err).Error("Failed to update profile")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to update profile",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated",
		"user":    user,
	})
}

// DeleteAccount handles DELETE /api/v1/user/account (soft delete).
// The row is purged after the retention window by the account purge sweep.
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	if err := h.userRepo.SoftDelete(userCtx.UserID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "User not found",
			})
			return
		}
		logrus.WithError(err).Error("Failed to delete account")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to delete account",
		})
		return
	}

	if err := h.refreshTokenRepo.RevokeAllUserTokens(userCtx.UserID); err != nil {
		logrus.WithError(err).Error("Failed to revoke tokens on account deletion")
	}

	h.auditService.LogAccountDeletion(userCtx.UserID, c.ClientIP(), c.Request.UserAgent())

	c.JSON(http.StatusOK, gin.H{"message": "Account scheduled for deletion"})
}
