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
	"github.com/talentbridge/placement-backend/internal/services"
)

type clientTestEnv struct {
	router   *gin.Engine
	mock     sqlmock.Sqlmock
	clientID uuid.UUID
	userID   uuid.UUID
	cleanup  func()
}

func setupClientTest(t *testing.T) *clientTestEnv {
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	postgresDB := &database.PostgresDB{DB: sqlxDB}

	userRepo := database.NewUserRepository(postgresDB)
	agencyRepo := database.NewAgencyRepository(postgresDB)
	clientRepo := database.NewClientRepository(postgresDB)
	jobRoleRepo := database.NewJobRoleRepository(postgresDB)
	notificationRepo := database.NewNotificationRepository(postgresDB)
	labourRepo := database.NewLabourRepository(sqlxDB)
	assignmentRepo := database.NewAssignmentRepository(sqlxDB)

	hub := services.NewNotificationHub(4)
	notificationSvc := services.NewNotificationService(notificationRepo, userRepo, hub)
	placementService := services.NewPlacementService(assignmentRepo, labourRepo, jobRoleRepo, agencyRepo, notificationSvc)
	auditService := services.NewAuditService(postgresDB)

	handler := NewClientHandler(clientRepo, placementService, auditService)

	env := &clientTestEnv{
		mock:     mock,
		clientID: uuid.New(),
		userID:   uuid.New(),
		cleanup:  func() { db.Close() },
	}

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.UserContextKey, middleware.UserContext{
			UserID: env.userID,
			Email:  "client@example.com",
			Roles:  []string{"client"},
		})
		c.Next()
	})
	router.GET("/clients/job-role/:id/assignments", handler.ListJobRoleAssignments)

	env.router = router
	return env
}

func (env *clientTestEnv) expectClientProfile() {
	now := time.Now()
	env.mock.ExpectQuery("FROM client_profiles").
		WithArgs(env.userID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "company_name", "industry", "country",
			"contact_phone", "created_at", "updated_at",
		}).AddRow(env.clientID, env.userID, "Acme Hospitality", nil, nil, nil, now, now))
}

func (env *clientTestEnv) expectJobRole(jobRoleID, requirementID uuid.UUID) {
	now := time.Now()
	env.mock.ExpectQuery("FROM job_roles").
		WithArgs(jobRoleID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "requirement_id", "title", "quantity", "salary_range",
			"assigned_agency_id", "agency_status", "needs_more_labour", "created_at", "updated_at",
		}).AddRow(jobRoleID, requirementID, "Housekeeper", 3, nil,
			nil, "PENDING", false, now, now))
}

func TestListJobRoleAssignments_OwnedJobRole(t *testing.T) {
	env := setupClientTest(t)
	defer env.cleanup()

	jobRoleID := uuid.New()
	requirementID := uuid.New()
	now := time.Now()

	env.expectClientProfile()
	env.expectJobRole(jobRoleID, requirementID)
	env.mock.ExpectQuery("SELECT client_id FROM requirements").
		WithArgs(requirementID).
		WillReturnRows(sqlmock.NewRows([]string{"client_id"}).AddRow(env.clientID))
	env.mock.ExpectQuery("FROM labour_assignments").
		WithArgs(jobRoleID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "job_role_id", "labour_id", "agency_id",
			"agency_status", "admin_status", "client_status", "placement_status",
			"is_backup", "status_note", "created_at", "updated_at",
		}).AddRow(uuid.New(), jobRoleID, uuid.New(), uuid.New(),
			"SUBMITTED", "ACCEPTED", "PENDING", "IN_PROGRESS",
			false, nil, now, now))

	req := httptest.NewRequest(http.MethodGet, "/clients/job-role/"+jobRoleID.String()+"/assignments", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestListJobRoleAssignments_ForeignJobRole(t *testing.T) {
	env := setupClientTest(t)
	defer env.cleanup()

	jobRoleID := uuid.New()
	requirementID := uuid.New()
	otherClient := uuid.New()

	env.expectClientProfile()
	env.expectJobRole(jobRoleID, requirementID)
	// Requirement belongs to a different client. No assignments query
	// may follow.
	env.mock.ExpectQuery("SELECT client_id FROM requirements").
		WithArgs(requirementID).
		WillReturnRows(sqlmock.NewRows([]string{"client_id"}).AddRow(otherClient))

	req := httptest.NewRequest(http.MethodGet, "/clients/job-role/"+jobRoleID.String()+"/assignments", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NotContains(t, w.Body.String(), "assignments")
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestListJobRoleAssignments_UnknownJobRole(t *testing.T) {
	env := setupClientTest(t)
	defer env.cleanup()

	jobRoleID := uuid.New()

	env.expectClientProfile()
	env.mock.ExpectQuery("FROM job_roles").
		WithArgs(jobRoleID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	req := httptest.NewRequest(http.MethodGet, "/clients/job-role/"+jobRoleID.String()+"/assignments", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}
