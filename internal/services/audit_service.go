package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/talentbridge/placement-backend/internal/database"
	"github.com/talentbridge/placement-backend/internal/utils"
)

// AuditService writes security and workflow events to the audit_logs table
type AuditService struct {
	db database.DB
}

// NewAuditService creates a new audit service
func NewAuditService(db database.DB) *AuditService {
	return &AuditService{db: db}
}

// AuditEvent represents an event to be logged
type AuditEvent struct {
	UserID     *uuid.UUID             // nil for pre-authentication events
	Action     string                 // e.g. "login", "stage_advance", "agency_verify"
	EntityType string                 // e.g. "user", "labour", "assignment"
	EntityID   *uuid.UUID             // affected entity, if any
	IPAddress  string
	UserAgent  string
	Details    map[string]interface{} // stored as JSONB
}

// LogLogin logs a successful login event
func (s *AuditService) LogLogin(userID uuid.UUID, email, ipAddress, userAgent string) error {
	return s.logEvent(AuditEvent{
		UserID:     &userID,
		Action:     "login",
		EntityType: "user",
		EntityID:   &userID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details: map[string]interface{}{
			"email":       email,
			"device_info": utils.ParseUserAgent(userAgent),
		},
	})
}

// LogLoginFailure logs a failed login attempt
func (s *AuditService) LogLoginFailure(email, ipAddress, userAgent, reason string) error {
	return s.logEvent(AuditEvent{
		Action:     "login_failed",
		EntityType: "user",
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details: map[string]interface{}{
			"email":       email,
			"reason":      reason,
			"device_info": utils.ParseUserAgent(userAgent),
		},
	})
}

// LogLogout logs a logout event
func (s *AuditService) LogLogout(userID uuid.UUID, ipAddress, userAgent string, logoutAll bool) error {
	return s.logEvent(AuditEvent{
		UserID:     &userID,
		Action:     "logout",
		EntityType: "user",
		EntityID:   &userID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details: map[string]interface{}{
			"logout_all": logoutAll,
		},
	})
}

// LogTokenRefresh logs a refresh token usage event
func (s *AuditService) LogTokenRefresh(userID uuid.UUID, ipAddress, userAgent string, success bool) error {
	action := "token_refresh_success"
	if !success {
		action = "token_refresh_failed"
	}

	return s.logEvent(AuditEvent{
		UserID:     &userID,
		Action:     action,
		EntityType: "token",
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details: map[string]interface{}{
			"success": success,
		},
	})
}

// LogStageAdvance logs a stage transition on a labour profile
func (s *AuditService) LogStageAdvance(userID, labourID uuid.UUID, fromStage, toStage, ipAddress string) error {
	return s.logEvent(AuditEvent{
		UserID:     &userID,
		Action:     "stage_advance",
		EntityType: "labour",
		EntityID:   &labourID,
		IPAddress:  ipAddress,
		Details: map[string]interface{}{
			"from_stage": fromStage,
			"to_stage":   toStage,
		},
	})
}

// LogStatusDecision logs a review decision on an assignment track
func (s *AuditService) LogStatusDecision(userID, assignmentID uuid.UUID, party, status, ipAddress string) error {
	return s.logEvent(AuditEvent{
		UserID:     &userID,
		Action:     "assignment_review",
		EntityType: "assignment",
		EntityID:   &assignmentID,
		IPAddress:  ipAddress,
		Details: map[string]interface{}{
			"party":  party,
			"status": status,
		},
	})
}

// LogAgencyVerification logs an admin verification decision on an agency
func (s *AuditService) LogAgencyVerification(adminID, agencyID uuid.UUID, status, ipAddress string) error {
	return s.logEvent(AuditEvent{
		UserID:     &adminID,
		Action:     "agency_verify",
		EntityType: "agency",
		EntityID:   &agencyID,
		IPAddress:  ipAddress,
		Details: map[string]interface{}{
			"status": status,
		},
	})
}

// LogAccountDeletion logs an account soft-delete request
func (s *AuditService) LogAccountDeletion(userID uuid.UUID, ipAddress, userAgent string) error {
	return s.logEvent(AuditEvent{
		UserID:     &userID,
		Action:     "account_delete",
		EntityType: "user",
		EntityID:   &userID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details:    map[string]interface{}{},
	})
}

// logEvent is the internal method that writes to the audit_logs table
func (s *AuditService) logEvent(event AuditEvent) error {
	query := `
		INSERT INTO audit_logs (user_id, action, entity_type, entity_id, ip_address, user_agent, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`

	detailsJSON, err := json.Marshal(event.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal audit details: %w", err)
	}

	_, err = s.db.Exec(
		query,
		event.UserID,
		event.Action,
		event.EntityType,
		event.EntityID,
		event.IPAddress,
		event.UserAgent,
		detailsJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to log audit event: %w", err)
	}

	return nil
}

// CleanupOldAuditLogs removes audit logs older than the specified duration
func (s *AuditService) CleanupOldAuditLogs(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)

	result, err := s.db.Exec(`DELETE FROM audit_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup old audit logs: %w", err)
	}

	return result.RowsAffected()
}
