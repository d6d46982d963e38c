package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/noscite/crm-api/docs"
	"github.com/noscite/crm-api/internal/analysis"
	"github.com/noscite/crm-api/internal/auth"
	"github.com/noscite/crm-api/internal/config"
	"github.com/noscite/crm-api/internal/database"
	"github.com/noscite/crm-api/internal/http/handler"
	"github.com/noscite/crm-api/internal/http/middleware"
	"github.com/noscite/crm-api/internal/http/router"
	"github.com/noscite/crm-api/internal/jobs"
	"github.com/noscite/crm-api/internal/logger"
	"github.com/noscite/crm-api/internal/repository"
	"github.com/noscite/crm-api/internal/service"
	"github.com/noscite/crm-api/internal/storage"
	"go.uber.org/zap"
)

// @title Noscite CRM API
// @version 1.0
// @description CRM and project management API: companies, service catalog, sales pipeline and project execution
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@noscite.it

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API Key for system operations
// @Security BearerAuth
// @Security ApiKeyAuth

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	// Configure Swagger host based on environment
	switch basicCfg.App.Environment {
	case "staging":
		docs.SwaggerInfo.Host = "crm-api-staging.noscite.it"
	case "production":
		docs.SwaggerInfo.Host = "crm-api.noscite.it"
	default:
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Load full configuration with secrets
	// In development: uses environment variables
	// In staging/production: fetches from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	// Connect to database
	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Initialize storage
	fileStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Initialize the document analysis client (optional collaborator).
	// NewClient returns nil when disabled; document classification then
	// degrades to marking uploads unprocessed.
	analysisClient := analysis.NewClient(&cfg.Analysis, log)

	// Initialize repositories
	companyRepo := repository.NewCompanyRepository(db)
	contactRepo := repository.NewContactRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	opportunityRepo := repository.NewOpportunityRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	milestoneRepo := repository.NewMilestoneRepository(db)
	timesheetRepo := repository.NewTimesheetRepository(db)
	teamMemberRepo := repository.NewTeamMemberRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	userRepo := repository.NewUserRepository(db)
	numberSequenceRepo := repository.NewNumberSequenceRepository(db)

	// Initialize services
	// Number sequence service first (opportunities, orders and projects all draw from it)
	numberSequenceService := service.NewNumberSequenceService(numberSequenceRepo, log)

	companyService := service.NewCompanyService(companyRepo, log)
	contactService := service.NewContactService(contactRepo, companyRepo, log)
	catalogService := service.NewCatalogService(serviceRepo, log)
	opportunityService := service.NewOpportunityService(db, opportunityRepo, orderRepo, companyRepo, serviceRepo, numberSequenceService, log)
	orderService := service.NewOrderService(db, orderRepo, projectRepo, companyRepo, serviceRepo, numberSequenceService, log)
	projectService := service.NewProjectService(db, projectRepo, taskRepo, milestoneRepo, timesheetRepo, numberSequenceService, log)
	taskService := service.NewTaskService(db, taskRepo, projectRepo, teamMemberRepo, log)
	milestoneService := service.NewMilestoneService(milestoneRepo, projectRepo, log)
	timesheetService := service.NewTimesheetService(timesheetRepo, taskRepo, projectRepo, log)
	teamService := service.NewTeamService(teamMemberRepo, companyRepo, projectRepo, timesheetRepo, log)
	documentService := service.NewDocumentService(documentRepo, projectRepo, fileStorage, analysisClient, log)
	userService := service.NewUserService(userRepo, log)

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(cfg, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize handlers
	companyHandler := handler.NewCompanyHandler(companyService, contactService, log)
	contactHandler := handler.NewContactHandler(contactService, log)
	serviceHandler := handler.NewServiceHandler(catalogService, log)
	opportunityHandler := handler.NewOpportunityHandler(opportunityService, log)
	orderHandler := handler.NewOrderHandler(orderService, log)
	projectHandler := handler.NewProjectHandler(projectService, analysisClient, log)
	taskHandler := handler.NewTaskHandler(taskService, log)
	milestoneHandler := handler.NewMilestoneHandler(milestoneService, log)
	timesheetHandler := handler.NewTimesheetHandler(timesheetService, log)
	teamHandler := handler.NewTeamHandler(teamService, log)
	documentHandler := handler.NewDocumentHandler(documentService, log)
	userHandler := handler.NewUserHandler(userService, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		authMiddleware,
		rateLimiter,
		analysisClient,
		companyHandler,
		contactHandler,
		serviceHandler,
		opportunityHandler,
		orderHandler,
		projectHandler,
		taskHandler,
		milestoneHandler,
		timesheetHandler,
		teamHandler,
		documentHandler,
		userHandler,
	)

	// Initialize and start scheduler for background jobs
	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewScheduler(log)

		// Register the overdue milestone sweep
		// runOnStartup=true catches milestones that went overdue while the API was down
		if err := jobs.RegisterMilestoneSweepJob(
			scheduler,
			milestoneService,
			log,
			cfg.Jobs.MilestoneSweepSchedule,
			true,
		); err != nil {
			log.Error("Failed to register milestone sweep job", zap.Error(err))
		} else {
			scheduler.Start()
			log.Info("Scheduler started with milestone sweep job",
				zap.String("cron_expr", cfg.Jobs.MilestoneSweepSchedule),
			)
		}
	} else {
		log.Info("Background jobs disabled")
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Stop scheduler if running
		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
