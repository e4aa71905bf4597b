package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/voxpopuly/voxpopuly-api/docs" // Swagger docs
	"github.com/voxpopuly/voxpopuly-api/internal/cache"
	"github.com/voxpopuly/voxpopuly-api/internal/config"
	"github.com/voxpopuly/voxpopuly-api/internal/database"
	"github.com/voxpopuly/voxpopuly-api/internal/handlers"
	"github.com/voxpopuly/voxpopuly-api/internal/jobs"
	"github.com/voxpopuly/voxpopuly-api/internal/middleware"
	"github.com/voxpopuly/voxpopuly-api/internal/models"
	"github.com/voxpopuly/voxpopuly-api/internal/repository"
	"github.com/voxpopuly/voxpopuly-api/internal/services"
	"github.com/voxpopuly/voxpopuly-api/internal/storage"
	"github.com/voxpopuly/voxpopuly-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// @title VoxPopuly API
// @version 1.0
// @description REST API for the VoxPopuly electronic voting administration

// @contact.name API Support
// @contact.email soporte@voxpopuly.app

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Setup(cfg.Environment)

	// Initialize Sentry when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	if cfg.ResendAPIKey == "" {
		logger.Warn("Resend email disabled: RESEND_API_KEY not set")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL, cfg.Environment)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	if cfg.RunMigrations {
		if err := database.Migrate(db); err != nil {
			logger.Error("Failed to run migrations", "error", err)
			os.Exit(1)
		}
		logger.Info("Database migrations applied")
	}

	// Statistics cache; the API runs without it when Redis is not configured
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisClient, err = cache.Connect(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			logger.Warn("Redis unavailable, statistics cache disabled", "error", err)
			redisClient = nil
		} else {
			logger.Info("Connected to Redis")
		}
	}
	statsCache := cache.NewStatsCache(redisClient, cfg.StatsCacheTTL)

	// Initialize storage
	store, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	logger.Info("Initialized local storage", "path", store.BasePath())

	repos := repository.NewRepositories(db)

	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	svcs := services.NewServices(repos, worker, store, statsCache, cfg)
	svcs.Job.Start()
	logger.Info("Scheduled recurring jobs")

	h := handlers.NewHandlers(svcs)
	router := setupRouter(h, cfg, store)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	worker.Shutdown()
	logger.Info("Background worker stopped")

	if redisClient != nil {
		_ = redisClient.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config, store *storage.LocalStorage) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Slate logos
	router.Static("/uploads", store.BasePath())

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", h.Health.Index)

		// Authentication (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(cfg.LoginRateLimit, time.Minute), h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
			auth.POST("/logout", h.Auth.Logout)
		}

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			protected.GET("/auth/me", h.Auth.Me)
			protected.PATCH("/users/me/password", h.User.ChangePassword)

			// Voter
			voter := protected.Group("/vote")
			voter.Use(middleware.RequireRole(models.RoleVoter))
			{
				voter.GET("/ballot", h.Vote.Ballot)
				voter.POST("", middleware.RateLimit(cfg.VoteRateLimit, time.Minute), h.Vote.Cast)
			}

			// Delegate + Admin (delegates are scoped to their own voting point)
			staff := protected.Group("")
			staff.Use(middleware.RequireRole(models.RoleAdmin, models.RoleDelegate))
			{
				staff.GET("/voting_points/:voting_point_id", h.VotingPoint.Show)
				staff.GET("/voting_points/:voting_point_id/voters", h.Voter.Index)
				staff.GET("/voting_points/:voting_point_id/voters/export", h.Voter.ExportCSV)
			}

			protected.GET("/dashboard/delegate", middleware.RequireRole(models.RoleDelegate), h.Statistics.DelegateDashboard)

			// Admin-only routes
			admin := protected.Group("")
			admin.Use(middleware.RequireAdmin())
			{
				admin.GET("/dashboard/admin", h.Statistics.AdminDashboard)

				// Elections
				admin.GET("/elections", h.Election.Index)
				admin.POST("/elections", h.Election.Create)
				admin.GET("/elections/:election_id", h.Election.Show)
				admin.PUT("/elections/:election_id", h.Election.Update)
				admin.DELETE("/elections/:election_id", h.Election.Delete)
				admin.POST("/elections/:election_id/toggle_active", h.Election.ToggleActive)
				admin.GET("/elections/:election_id/statistics", h.Statistics.Election)
				admin.GET("/elections/:election_id/statistics/export", h.Statistics.Export)
				admin.GET("/elections/:election_id/certificate", h.Statistics.Certificate)

				// Voting points
				admin.GET("/elections/:election_id/voting_points", h.VotingPoint.Index)
				admin.POST("/elections/:election_id/voting_points", h.VotingPoint.Create)
				admin.PUT("/voting_points/:voting_point_id", h.VotingPoint.Update)
				admin.DELETE("/voting_points/:voting_point_id", h.VotingPoint.Delete)

				// Candidates
				admin.GET("/voting_points/:voting_point_id/candidates", h.Candidate.Index)
				admin.POST("/voting_points/:voting_point_id/candidates", h.Candidate.Create)
				admin.PUT("/candidates/:candidate_id", h.Candidate.Update)
				admin.DELETE("/candidates/:candidate_id", h.Candidate.Delete)

				// Slates
				admin.GET("/voting_points/:voting_point_id/slates", h.Slate.Index)
				admin.POST("/voting_points/:voting_point_id/slates", h.Slate.Create)
				admin.GET("/slates/:slate_id", h.Slate.Show)
				admin.PUT("/slates/:slate_id", h.Slate.Update)
				admin.DELETE("/slates/:slate_id", h.Slate.Delete)
				admin.POST("/slates/:slate_id/logo", h.Slate.UploadLogo)

				// Voters
				admin.POST("/voting_points/:voting_point_id/voters", h.Voter.Assign)
				admin.POST("/voting_points/:voting_point_id/voters/import", h.Voter.Import)
				admin.DELETE("/voters/:voter_id", h.Voter.Remove)

				// Delegates; static route before :delegate_id
				admin.GET("/delegates", h.Delegate.Index)
				admin.GET("/delegates/available", h.VotingPoint.AvailableDelegates)
				admin.POST("/delegates", h.Delegate.Create)
				admin.DELETE("/delegates/:delegate_id", h.Delegate.Delete)

				// Users
				admin.GET("/users", h.User.Index)
				admin.GET("/users/:user_id", h.User.Show)
				admin.POST("/users/:user_id/reset_pin", h.User.ResetPIN)

				// Audit, maintenance and jobs
				admin.GET("/audits", h.Audit.Index)
				admin.POST("/maintenance/duplicates", h.Maintenance.CleanupDuplicates)
				admin.POST("/maintenance/orphans", h.Maintenance.CleanupOrphans)
				admin.GET("/jobs/status", h.Job.Status)
			}
		}
	}

	return router
}
