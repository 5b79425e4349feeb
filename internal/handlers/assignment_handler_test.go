package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentbridge/placement-backend/internal/database"
	"github.com/talentbridge/placement-backend/internal/middleware"
	"github.com/talentbridge/placement-backend/internal/models"
	"github.com/talentbridge/placement-backend/internal/services"
)

type assignmentTestEnv struct {
	router   *gin.Engine
	mock     sqlmock.Sqlmock
	agencyID uuid.UUID
	userID   uuid.UUID
	cleanup  func()
}

// setupAssignmentTest wires the handler behind stub auth/verification
// middleware so requests carry an authenticated, verified agency.
func setupAssignmentTest(t *testing.T) *assignmentTestEnv {
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	postgresDB := &database.PostgresDB{DB: sqlxDB}

	userRepo := database.NewUserRepository(postgresDB)
	agencyRepo := database.NewAgencyRepository(postgresDB)
	jobRoleRepo := database.NewJobRoleRepository(postgresDB)
	notificationRepo := database.NewNotificationRepository(postgresDB)
	labourRepo := database.NewLabourRepository(sqlxDB)
	assignmentRepo := database.NewAssignmentRepository(sqlxDB)

	hub := services.NewNotificationHub(4)
	notificationSvc := services.NewNotificationService(notificationRepo, userRepo, hub)
	stageService := services.NewStageService(labourRepo, assignmentRepo, notificationSvc)
	placementService := services.NewPlacementService(assignmentRepo, labourRepo, jobRoleRepo, agencyRepo, notificationSvc)
	auditService := services.NewAuditService(postgresDB)

	handler := NewAssignmentHandler(assignmentRepo, placementService, stageService, auditService)

	env := &assignmentTestEnv{
		mock:     mock,
		agencyID: uuid.New(),
		userID:   uuid.New(),
		cleanup:  func() { db.Close() },
	}

	router := gin.New()
	authed := router.Group("")
	authed.Use(func(c *gin.Context) {
		c.Set(middleware.UserContextKey, middleware.UserContext{
			UserID: env.userID,
			Email:  "agency@example.com",
			Roles:  []string{models.RoleAgency},
		})
		c.Set(middleware.AgencyProfileKey, &models.AgencyProfile{
			ID:                 env.agencyID,
			UserID:             env.userID,
			AgencyName:         "Test Agency",
			VerificationStatus: models.VerificationVerified,
		})
		c.Next()
	})
	authed.POST("/assignments/:id/mark-medical-fit", handler.MarkMedicalFit)

	// Unverified route: no profile in context.
	router.POST("/bare/assignments/:id/mark-medical-fit", handler.MarkMedicalFit)

	env.router = router
	return env
}

func (env *assignmentTestEnv) expectAssignmentFetch(assignmentID, labourID uuid.UUID) {
	now := time.Now()
	env.mock.ExpectQuery("FROM labour_assignments").
		WithArgs(assignmentID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "job_role_id", "labour_id", "agency_id",
			"agency_status", "admin_status", "client_status", "placement_status",
			"is_backup", "status_note", "created_at", "updated_at",
		}).AddRow(assignmentID, uuid.New(), labourID, env.agencyID,
			"SUBMITTED", "PENDING", "SUBMITTED", "IN_PROGRESS",
			false, nil, now, now))
}

func TestMarkMedicalFit_Success(t *testing.T) {
	env := setupAssignmentTest(t)
	defer env.cleanup()

	assignmentID := uuid.New()
	labourID := uuid.New()

	env.expectAssignmentFetch(assignmentID, labourID)

	// Stage transition: close MEDICAL_STATUS, mirror FINGERPRINT, open row.
	env.mock.ExpectBegin()
	env.mock.ExpectExec("UPDATE labour_stage_history").
		WithArgs(labourID, models.StageMedicalStatus, models.StageRecordCompleted).
		WillReturnResult(sqlmock.NewResult(0, 1))
	env.mock.ExpectExec("UPDATE labour_profiles").
		WithArgs(labourID, models.StageMedicalStatus, models.StageFingerprint).
		WillReturnResult(sqlmock.NewResult(0, 1))
	env.mock.ExpectExec("INSERT INTO labour_stage_history").
		WillReturnResult(sqlmock.NewResult(0, 1))
	env.mock.ExpectCommit()

	// Reload for the response body.
	now := time.Now()
	stage := string(models.StageFingerprint)
	env.mock.ExpectQuery("FROM labour_profiles").
		WithArgs(labourID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "agency_id", "full_name", "passport_number", "nationality",
			"date_of_birth", "photo_path", "current_stage", "created_at", "updated_at",
		}).AddRow(labourID, env.agencyID, "Arun Perera", "N1234567", nil,
			nil, nil, stage, now, now))

	// Post-commit notification insert.
	env.mock.ExpectQuery("INSERT INTO notifications").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

	// Audit trail.
	env.mock.ExpectExec("INSERT INTO audit_logs").
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest(http.MethodPost, "/assignments/"+assignmentID.String()+"/mark-medical-fit", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
	assert.Contains(t, w.Body.String(), "FINGERPRINT")
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestMarkMedicalFit_StageConflict(t *testing.T) {
	env := setupAssignmentTest(t)
	defer env.cleanup()

	assignmentID := uuid.New()
	labourID := uuid.New()

	env.expectAssignmentFetch(assignmentID, labourID)

	// Double submit: the PENDING row is already closed.
	env.mock.ExpectBegin()
	env.mock.ExpectExec("UPDATE labour_stage_history").
		WithArgs(labourID, models.StageMedicalStatus, models.StageRecordCompleted).
		WillReturnResult(sqlmock.NewResult(0, 0))
	env.mock.ExpectRollback()

	req := httptest.NewRequest(http.MethodPost, "/assignments/"+assignmentID.String()+"/mark-medical-fit", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestMarkMedicalFit_WrongAgency(t *testing.T) {
	env := setupAssignmentTest(t)
	defer env.cleanup()

	assignmentID := uuid.New()
	otherAgency := uuid.New()
	now := time.Now()

	env.mock.ExpectQuery("FROM labour_assignments").
		WithArgs(assignmentID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "job_role_id", "labour_id", "agency_id",
			"agency_status", "admin_status", "client_status", "placement_status",
			"is_backup", "status_note", "created_at", "updated_at",
		}).AddRow(assignmentID, uuid.New(), uuid.New(), otherAgency,
			"SUBMITTED", "PENDING", "SUBMITTED", "IN_PROGRESS",
			false, nil, now, now))

	req := httptest.NewRequest(http.MethodPost, "/assignments/"+assignmentID.String()+"/mark-medical-fit", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestMarkMedicalFit_MissingAgencyProfile(t *testing.T) {
	env := setupAssignmentTest(t)
	defer env.cleanup()

	req := httptest.NewRequest(http.MethodPost, "/bare/assignments/"+uuid.New().String()+"/mark-medical-fit", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMarkMedicalFit_InvalidID(t *testing.T) {
	env := setupAssignmentTest(t)
	defer env.cleanup()

	req := httptest.NewRequest(http.MethodPost, "/assignments/not-a-uuid/mark-medical-fit", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
