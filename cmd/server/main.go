package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/talentbridge/placement-backend/internal/config"
	"github.com/talentbridge/placement-backend/internal/database"
	"github.com/talentbridge/placement-backend/internal/handlers"
	"github.com/talentbridge/placement-backend/internal/middleware"
	"github.com/talentbridge/placement-backend/internal/models"
	"github.com/talentbridge/placement-backend/internal/services"
	"github.com/talentbridge/placement-backend/pkg/jwt"
	"github.com/talentbridge/placement-backend/pkg/validator"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting TalentBridge Placement Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Transactional repositories need the underlying sqlx handle
	sqlxDB, ok := db.(*database.PostgresDB)
	if !ok {
		logger.Fatal("Failed to cast database connection to PostgresDB")
	}

	// Repositories
	userRepo := database.NewUserRepository(db)
	refreshTokenRepo := database.NewRefreshTokenRepository(db)
	agencyRepo := database.NewAgencyRepository(db)
	clientRepo := database.NewClientRepository(db)
	jobRoleRepo := database.NewJobRoleRepository(db)
	notificationRepo := database.NewNotificationRepository(db)
	requirementRepo := database.NewRequirementRepository(sqlxDB.DB)
	labourRepo := database.NewLabourRepository(sqlxDB.DB)
	assignmentRepo := database.NewAssignmentRepository(sqlxDB.DB)

	// Services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	passportValidator := validator.NewPassportValidator()
	auditService := services.NewAuditService(db)
	notificationHub := services.NewNotificationHub(cfg.Notification.SubscriberBuffer)
	notificationService := services.NewNotificationService(notificationRepo, userRepo, notificationHub)
	stageService := services.NewStageService(labourRepo, assignmentRepo, notificationService)
	placementService := services.NewPlacementService(assignmentRepo, labourRepo, jobRoleRepo, agencyRepo, notificationService)
	maintenanceService := services.NewMaintenanceService(
		cfg.Cron,
		userRepo,
		agencyRepo,
		labourRepo,
		refreshTokenRepo,
		notificationRepo,
		notificationService,
	)

	cronService := services.NewCronService(maintenanceService)
	if cfg.Cron.EnableScheduler {
		if err := cronService.Start(); err != nil {
			logger.Fatalf("Failed to start cron service: %v", err)
		}
	} else {
		logger.Info("Cron scheduler disabled; maintenance runs via HTTP triggers only")
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(jwtService, auditService, userRepo, refreshTokenRepo, agencyRepo, clientRepo, cfg)
	labourHandler := handlers.NewLabourHandler(labourRepo, stageService, passportValidator)
	assignmentHandler := handlers.NewAssignmentHandler(assignmentRepo, placementService, stageService, auditService)
	requirementHandler := handlers.NewRequirementHandler(requirementRepo, clientRepo)
	adminHandler := handlers.NewAdminHandler(agencyRepo, clientRepo, requirementRepo, jobRoleRepo, placementService, notificationService, auditService)
	clientHandler := handlers.NewClientHandler(clientRepo, placementService, auditService)
	notificationHandler := handlers.NewNotificationHandler(notificationRepo, notificationHub, maintenanceService, cfg.Notification.KeepAliveInterval)
	cronHandler := handlers.NewCronHandler(cronService)
	uploadHandler := handlers.NewUploadHandler(cfg.Upload, userRepo)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", healthCheckHandler(db))
	router.GET("/uploads/*filepath", uploadHandler.Serve)

	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh-token", authHandler.RefreshToken)
	}

	// Authenticated routes
	authed := v1.Group("")
	authed.Use(middleware.AuthMiddleware(jwtService))
	{
		authed.POST("/auth/logout", authHandler.Logout)
		authed.GET("/user/profile", authHandler.GetProfile)
		authed.PUT("/user/profile", authHandler.UpdateProfile)
		authed.DELETE("/user/account", authHandler.DeleteAccount)
		authed.POST("/uploads", uploadHandler.Upload)

		// Notifications, any role
		authed.GET("/notifications", notificationHandler.ListNotifications)
		authed.PATCH("/notifications", notificationHandler.PatchNotification)
		authed.PATCH("/notifications/bulk", notificationHandler.PatchNotificationsBulk)
		authed.GET("/notifications/stream", notificationHandler.Stream)
	}

	// Agency routes: agency role + verified profile
	agency := v1.Group("")
	agency.Use(middleware.AuthMiddleware(jwtService))
	agency.Use(middleware.RequireRole(models.RoleAgency))
	agency.Use(middleware.RequireVerifiedAgency(agencyRepo))
	{
		agency.POST("/labours", labourHandler.CreateLabour)
		agency.GET("/labours", labourHandler.ListLabours)
		agency.GET("/labours/:id", labourHandler.GetLabour)
		agency.GET("/labours/:id/stages", labourHandler.GetStageHistory)

		agency.POST("/assignments", assignmentHandler.SubmitLabour)
		agency.GET("/assignments", assignmentHandler.ListAssignments)
		agency.POST("/assignments/:id/mark-medical-fit", assignmentHandler.MarkMedicalFit)
		agency.POST("/assignments/:id/mark-fingerprint-pass", assignmentHandler.MarkFingerprintPass)
		agency.POST("/assignments/:id/mark-visa-printed", assignmentHandler.MarkVisaPrinted)
		agency.POST("/assignments/:id/approve-contract", assignmentHandler.ApproveContract)
		agency.POST("/assignments/:id/sign-offer-letter", assignmentHandler.SignOfferLetter)
	}

	// Admin routes
	admin := v1.Group("")
	admin.Use(middleware.AuthMiddleware(jwtService))
	admin.Use(middleware.RequireRole(models.RoleAdmin))
	{
		admin.PUT("/agencies/:id/status", adminHandler.UpdateAgencyStatus)
		admin.PUT("/requirements/:id/status", adminHandler.UpdateRequirementStatus)
		admin.PUT("/assignments/:id/admin-status", adminHandler.UpdateAdminStatus)
		admin.GET("/admin/dashboard/stats", adminHandler.DashboardStats)
		admin.GET("/admin/requirements/pending", adminHandler.ListPendingRequirements)
		admin.GET("/admin/agencies/pending", adminHandler.ListPendingAgencies)
		admin.POST("/admin/job-roles/:id/assign-agency", adminHandler.AssignAgency)
	}

	// Client routes
	client := v1.Group("")
	client.Use(middleware.AuthMiddleware(jwtService))
	client.Use(middleware.RequireRole(models.RoleClient))
	{
		client.POST("/requirements", requirementHandler.CreateRequirement)
		client.GET("/requirements", requirementHandler.ListRequirements)
		client.GET("/requirements/:id", requirementHandler.GetRequirement)
		client.PUT("/assignments/:id/client-status", clientHandler.UpdateClientStatus)
		client.GET("/clients/job-role/:id/assignments", clientHandler.ListJobRoleAssignments)
		client.POST("/clients/job-role/:id/replace-rejected", clientHandler.ReplaceRejected)
	}

	// Maintenance triggers, gated by the shared cron secret
	cronRoutes := v1.Group("")
	cronRoutes.Use(middleware.RequireCronSecret(cfg.Cron.Secret))
	{
		cronRoutes.POST("/cron/cleanup", cronHandler.Cleanup)
		cronRoutes.POST("/cron/delete-accounts", cronHandler.DeleteAccounts)
		cronRoutes.POST("/cron/overdue-labour-reminders", cronHandler.OverdueLabourReminders)
		cronRoutes.GET("/cron/status", cronHandler.Status)
		cronRoutes.POST("/notifications/cleanup", notificationHandler.Cleanup)
	}

	// HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	if cfg.Cron.EnableScheduler {
		cronService.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		if userCtx, exists := middleware.GetUserContext(c); exists {
			fields["user_id"] = userCtx.UserID
			fields["roles"] = userCtx.Roles
		}

		entry := logger.WithFields(fields)

		status := c.Writer.Status()
		switch {
		case len(c.Errors) > 0:
			entry.WithField("errors", c.Errors.String()).Error("Request failed with errors")
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
