package routes

import (
	"time"

	"taskboard-backend/internal/api/handlers"
	"taskboard-backend/internal/api/middleware"
	"taskboard-backend/internal/auth"
	"taskboard-backend/internal/config"
	"taskboard-backend/internal/logger"
	"taskboard-backend/internal/repository"
	"taskboard-backend/internal/service"
	"taskboard-backend/internal/storage"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// inviteBurst is the burst size of the per-user limiter on invite endpoints
const inviteBurst = 5

// SetupRoutes configures all the routes for the application
func SetupRoutes(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Create router
	router := gin.New()
	router.MaxMultipartMemory = cfg.MaxUploadMB << 20

	// Add middleware
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(cfg))
	router.Use(middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, middleware.ClientIPKey).Middleware())

	// Initialize validator
	validator := service.NewValidator()

	// Initialize repositories
	repos := repository.NewRepositories(db)
	tx := repository.NewTxManager(db)

	var store storage.Storage
	if local, err := storage.NewLocalStorage(cfg.StoragePath); err != nil {
		logger.New().WithError(err).WithField("path", cfg.StoragePath).Warn("Attachment storage unavailable, uploads disabled")
	} else {
		store = local
	}

	// Initialize services
	tokens := auth.NewTokenService(cfg.JWTSecret, time.Duration(cfg.JWTTTLMinutes)*time.Minute)
	userService := service.NewUserService(repos.Users, tokens, validator)
	teamService := service.NewTeamService(repos, tx, validator)
	projectService := service.NewProjectService(repos, tx, validator)
	taskService := service.NewTaskService(repos, tx, validator, cfg.ReorderStrict)
	labelService := service.NewLabelService(repos, validator)
	commentService := service.NewCommentService(repos, validator)
	attachmentService := service.NewAttachmentService(repos, tx, store, cfg.MaxUploadMB)
	inviteService := service.NewInviteService(repos, tx, service.LogNotifier{}, validator)
	auditService := service.NewAuditService(repos)
	dashboardService := service.NewDashboardService(repos, auditService)
	searchService := service.NewSearchService(repos)
	exportService := service.NewExportService(repos)

	// Initialize handlers
	authMiddleware := auth.NewAuthMiddleware(tokens)
	healthHandler := handlers.NewHealthHandler(db)
	userHandler := handlers.NewUserHandler(userService)
	teamHandler := handlers.NewTeamHandler(teamService)
	projectHandler := handlers.NewProjectHandler(projectService)
	taskHandler := handlers.NewTaskHandler(taskService)
	labelHandler := handlers.NewLabelHandler(labelService)
	commentHandler := handlers.NewCommentHandler(commentService)
	attachmentHandler := handlers.NewAttachmentHandler(attachmentService)
	inviteHandler := handlers.NewInviteHandler(inviteService)
	reportingHandler := handlers.NewReportingHandler(dashboardService, searchService, auditService)
	exportHandler := handlers.NewExportHandler(exportService)

	// Health check routes
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/health/live", healthHandler.Live)

	// Swagger documentation route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Public auth routes
	authRoutes := router.Group("/api/auth")
	{
		authRoutes.POST("/register", userHandler.Register)
		authRoutes.POST("/login", userHandler.Login)
	}

	// API v1 routes - All endpoints require authentication
	v1 := router.Group("/api/v1")
	v1.Use(authMiddleware.RequireAuth())

	inviteLimit := middleware.NewRateLimiter(cfg.InviteRateLimitRPS, inviteBurst, middleware.UserKey).Middleware()

	{
		v1.GET("/me", userHandler.Me)
		v1.GET("/dashboard", reportingHandler.UserDashboard)
		v1.GET("/search", reportingHandler.Search)
		v1.GET("/audit-logs", reportingHandler.AuditLogs)
		v1.GET("/my-tasks", taskHandler.MyTasks)

		// Team routes
		teams := v1.Group("/teams")
		{
			teams.GET("", teamHandler.ListTeams)
			teams.POST("", teamHandler.CreateTeam)
			teams.GET("/:id", teamHandler.GetTeam)
			teams.PUT("/:id", teamHandler.UpdateTeam)
			teams.PATCH("/:id", teamHandler.UpdateTeam)
			teams.DELETE("/:id", teamHandler.DeleteTeam)
			teams.POST("/:id/leave", teamHandler.LeaveTeam)
			teams.POST("/:id/transfer-ownership", teamHandler.TransferOwnership)
			teams.PATCH("/:id/members/role", teamHandler.UpdateMemberRole)
			teams.DELETE("/:id/members", teamHandler.RemoveMember)
			teams.GET("/:id/dashboard", reportingHandler.TeamDashboard)
			teams.GET("/:id/labels", labelHandler.ListTeamLabels)
			teams.GET("/:id/invites", inviteHandler.ListTeamInvites)
		}

		// Project routes
		projects := v1.Group("/projects")
		{
			projects.GET("", projectHandler.ListProjects)
			projects.POST("", projectHandler.CreateProject)
			projects.GET("/:id", projectHandler.GetProject)
			projects.PUT("/:id", projectHandler.UpdateProject)
			projects.PATCH("/:id", projectHandler.UpdateProject)
			projects.DELETE("/:id", projectHandler.DeleteProject)
			projects.POST("/:id/restore", projectHandler.RestoreProject)
			projects.POST("/:id/members", projectHandler.AddMember)
			projects.DELETE("/:id/members", projectHandler.RemoveMember)
			projects.GET("/:id/kanban", projectHandler.Board)
		}

		// Task routes; static segments are registered before /:id
		tasks := v1.Group("/tasks")
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.POST("/reorder", taskHandler.ReorderTasks)
			tasks.GET("/export/csv", exportHandler.ExportCSV)
			tasks.GET("/export/pdf", exportHandler.ExportPDF)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PUT("/:id", taskHandler.UpdateTask)
			tasks.PATCH("/:id", taskHandler.UpdateTask)
			tasks.PATCH("/:id/status", taskHandler.UpdateTaskStatus)
			tasks.PUT("/:id/status", taskHandler.UpdateTaskStatus)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
			tasks.GET("/:id/comments", commentHandler.ListTaskComments)
			tasks.POST("/:id/comments", commentHandler.AddTaskComment)
			tasks.GET("/:id/attachments", attachmentHandler.ListTaskAttachments)
		}

		// Comment routes
		comments := v1.Group("/task-comments")
		{
			comments.POST("", commentHandler.CreateComment)
			comments.PATCH("/:id", commentHandler.UpdateComment)
			comments.DELETE("/:id", commentHandler.DeleteComment)
		}

		// Attachment routes
		attachments := v1.Group("/task-attachments")
		{
			attachments.POST("", attachmentHandler.Upload)
			attachments.GET("/:id/download", attachmentHandler.Download)
			attachments.DELETE("/:id", attachmentHandler.Delete)
		}

		// Label routes
		labels := v1.Group("/labels")
		{
			labels.POST("", labelHandler.CreateLabel)
			labels.PATCH("/:id", labelHandler.UpdateLabel)
			labels.DELETE("/:id", labelHandler.DeleteLabel)
		}

		// Invite routes
		v1.GET("/invites", inviteHandler.MyInvites)
		invites := v1.Group("/invites", inviteLimit)
		{
			invites.POST("/:id/accept", inviteHandler.AcceptInvite)
			invites.POST("/:id/reject", inviteHandler.DeclineInvite)
		}
		teamInvites := v1.Group("/team-invites", inviteLimit)
		{
			teamInvites.POST("", inviteHandler.CreateInvite)
			teamInvites.GET("/:id", inviteHandler.GetInvite)
			teamInvites.POST("/:id/revoke", inviteHandler.RevokeInvite)
		}
	}

	// Catch-all route for undefined endpoints
	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"error":      "Endpoint not found",
			"path":       c.Request.URL.Path,
			"method":     c.Request.Method,
			"request_id": c.GetString("request_id"),
		})
	})

	return router
}

// SetupHealthRoutes sets up only health check routes (useful for testing)
func SetupHealthRoutes(db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	healthHandler := handlers.NewHealthHandler(db)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/health/live", healthHandler.Live)

	return router
}
