package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/noscite/crm-api/internal/analysis"
	"github.com/noscite/crm-api/internal/auth"
	"github.com/noscite/crm-api/internal/config"
	"github.com/noscite/crm-api/internal/database"
	"github.com/noscite/crm-api/internal/domain"
	"github.com/noscite/crm-api/internal/http/handler"
	"github.com/noscite/crm-api/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/noscite/crm-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg                *config.Config
	logger             *zap.Logger
	db                 *gorm.DB
	authMiddleware     *auth.Middleware
	rateLimiter        *middleware.RateLimiter
	analysisClient     *analysis.Client
	companyHandler     *handler.CompanyHandler
	contactHandler     *handler.ContactHandler
	serviceHandler     *handler.ServiceHandler
	opportunityHandler *handler.OpportunityHandler
	orderHandler       *handler.OrderHandler
	projectHandler     *handler.ProjectHandler
	taskHandler        *handler.TaskHandler
	milestoneHandler   *handler.MilestoneHandler
	timesheetHandler   *handler.TimesheetHandler
	teamHandler        *handler.TeamHandler
	documentHandler    *handler.DocumentHandler
	userHandler        *handler.UserHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	analysisClient *analysis.Client,
	companyHandler *handler.CompanyHandler,
	contactHandler *handler.ContactHandler,
	serviceHandler *handler.ServiceHandler,
	opportunityHandler *handler.OpportunityHandler,
	orderHandler *handler.OrderHandler,
	projectHandler *handler.ProjectHandler,
	taskHandler *handler.TaskHandler,
	milestoneHandler *handler.MilestoneHandler,
	timesheetHandler *handler.TimesheetHandler,
	teamHandler *handler.TeamHandler,
	documentHandler *handler.DocumentHandler,
	userHandler *handler.UserHandler,
) *Router {
	return &Router{
		cfg:                cfg,
		logger:             logger,
		db:                 db,
		authMiddleware:     authMiddleware,
		rateLimiter:        rateLimiter,
		analysisClient:     analysisClient,
		companyHandler:     companyHandler,
		contactHandler:     contactHandler,
		serviceHandler:     serviceHandler,
		opportunityHandler: opportunityHandler,
		orderHandler:       orderHandler,
		projectHandler:     projectHandler,
		taskHandler:        taskHandler,
		milestoneHandler:   milestoneHandler,
		timesheetHandler:   timesheetHandler,
		teamHandler:        teamHandler,
		documentHandler:    documentHandler,
		userHandler:        userHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with detailed stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
				"max_idle_closed":      stats.MaxIdleClosed,
				"max_lifetime_closed":  stats.MaxLifetimeClosed,
			},
		})
	})

	// Combined readiness check (checks all dependencies)
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		// Check database
		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		// Check the analysis service. A degraded analysis service does not
		// fail readiness: uploads still work, classification is deferred.
		checks["analysis"] = rt.analysisClient.HealthCheck(r.Context())

		w.Header().Set("Content-Type", "application/json")
		status := "healthy"
		code := http.StatusOK
		if !allHealthy {
			status = "unhealthy"
			code = http.StatusServiceUnavailable
		}
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": status,
			"checks": checks,
		})
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.authMiddleware.Authenticate)

		// Users
		r.Route("/users", func(r chi.Router) {
			r.Get("/me", rt.userHandler.Me)
			r.Get("/", rt.userHandler.List)
			r.Get("/{id}", rt.userHandler.GetByID)

			// User administration is admin-only
			r.Group(func(r chi.Router) {
				r.Use(rt.authMiddleware.RequireAdmin)
				r.Post("/", rt.userHandler.Create)
				r.Put("/{id}", rt.userHandler.Update)
				r.Delete("/{id}", rt.userHandler.Deactivate)
			})
		})

		// Companies
		r.Route("/companies", func(r chi.Router) {
			r.Get("/", rt.companyHandler.List)
			r.Post("/", rt.companyHandler.Create)
			r.Get("/search", rt.companyHandler.Search)
			r.Get("/{id}", rt.companyHandler.GetByID)
			r.Put("/{id}", rt.companyHandler.Update)
			r.Delete("/{id}", rt.companyHandler.Deactivate)
			r.Get("/{id}/contacts", rt.companyHandler.ListContacts)
			r.Post("/{id}/contacts", rt.companyHandler.CreateContact)
		})

		// Contacts
		r.Route("/contacts", func(r chi.Router) {
			r.Get("/", rt.contactHandler.List)
			r.Post("/", rt.contactHandler.Create)
			r.Get("/search", rt.contactHandler.Search)
			r.Get("/{id}", rt.contactHandler.GetByID)
			r.Put("/{id}", rt.contactHandler.Update)
			r.Delete("/{id}", rt.contactHandler.Delete)
		})

		// Service catalog
		r.Route("/services", func(r chi.Router) {
			r.Get("/", rt.serviceHandler.List)
			r.Post("/", rt.serviceHandler.Create)
			r.Get("/search", rt.serviceHandler.Search)
			r.Get("/{id}", rt.serviceHandler.GetByID)
			r.Put("/{id}", rt.serviceHandler.Update)
			r.Delete("/{id}", rt.serviceHandler.Delete)
			r.Get("/{id}/effective-price", rt.serviceHandler.EffectivePrice)
			r.Get("/{id}/components", rt.serviceHandler.ListComponents)
			r.Post("/{id}/components", rt.serviceHandler.AddComponent)
			r.Put("/{id}/components/{componentId}", rt.serviceHandler.UpdateComponent)
			r.Delete("/{id}/components/{componentId}", rt.serviceHandler.RemoveComponent)
		})

		// Sales pipeline management
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.RequireRole(
				domain.RoleAdmin, domain.RoleManager, domain.RoleAccountManager,
			))

			// Opportunities
			r.Route("/opportunities", func(r chi.Router) {
				r.Get("/", rt.opportunityHandler.List)
				r.Post("/", rt.opportunityHandler.Create)
				r.Get("/search", rt.opportunityHandler.Search)
				r.Get("/{id}", rt.opportunityHandler.GetByID)
				r.Put("/{id}", rt.opportunityHandler.Update)
				r.Delete("/{id}", rt.opportunityHandler.Delete)
				r.Put("/{id}/status", rt.opportunityHandler.UpdateStatus)
				r.Post("/{id}/items", rt.opportunityHandler.AddItem)
				r.Put("/{id}/items/{itemId}", rt.opportunityHandler.UpdateItem)
				r.Delete("/{id}/items/{itemId}", rt.opportunityHandler.RemoveItem)
			})

			// Orders
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", rt.orderHandler.List)
				r.Post("/", rt.orderHandler.Create)
				r.Get("/search", rt.orderHandler.Search)
				r.Get("/{id}", rt.orderHandler.GetByID)
				r.Put("/{id}", rt.orderHandler.Update)
				r.Delete("/{id}", rt.orderHandler.Delete)
				r.Put("/{id}/status", rt.orderHandler.UpdateStatus)
				r.Post("/{id}/items", rt.orderHandler.AddItem)
				r.Delete("/{id}/items/{itemId}", rt.orderHandler.RemoveItem)
			})
		})

		// Projects and their sub-resources
		r.Route("/projects", func(r chi.Router) {
			r.Get("/", rt.projectHandler.List)
			r.Post("/", rt.projectHandler.Create)
			r.Post("/bootstrap", rt.projectHandler.Bootstrap)
			r.Get("/search", rt.projectHandler.Search)
			r.Get("/{id}", rt.projectHandler.GetByID)
			r.Put("/{id}", rt.projectHandler.Update)
			r.Delete("/{id}", rt.projectHandler.Delete)
			r.Get("/{id}/rollup", rt.projectHandler.Rollup)

			// Work breakdown structure
			r.Route("/{id}/tasks", func(r chi.Router) {
				r.Get("/", rt.taskHandler.Tree)
				r.Post("/", rt.taskHandler.Create)
				r.Get("/{taskId}", rt.taskHandler.GetByID)
				r.Put("/{taskId}", rt.taskHandler.Update)
				r.Delete("/{taskId}", rt.taskHandler.Delete)
				r.Post("/{taskId}/move", rt.taskHandler.Move)
				r.Put("/{taskId}/assignments", rt.taskHandler.ReplaceAssignments)
			})

			// Milestones
			r.Route("/{id}/milestones", func(r chi.Router) {
				r.Get("/", rt.milestoneHandler.List)
				r.Post("/", rt.milestoneHandler.Create)
				r.Get("/{milestoneId}", rt.milestoneHandler.GetByID)
				r.Put("/{milestoneId}", rt.milestoneHandler.Update)
				r.Delete("/{milestoneId}", rt.milestoneHandler.Delete)
				r.Put("/{milestoneId}/status", rt.milestoneHandler.UpdateStatus)
			})

			// Timesheets
			r.Route("/{id}/timesheets", func(r chi.Router) {
				r.Get("/", rt.timesheetHandler.List)
				r.Post("/", rt.timesheetHandler.Create)
				r.Get("/{timesheetId}", rt.timesheetHandler.GetByID)
				r.Put("/{timesheetId}", rt.timesheetHandler.Update)
				r.Delete("/{timesheetId}", rt.timesheetHandler.Delete)
				r.Put("/{timesheetId}/status", rt.timesheetHandler.UpdateStatus)
			})

			// Team
			r.Route("/{id}/team", func(r chi.Router) {
				r.Get("/", rt.teamHandler.List)
				r.Post("/", rt.teamHandler.Add)
				r.Put("/{memberId}", rt.teamHandler.Update)
				r.Delete("/{memberId}", rt.teamHandler.Remove)
			})

			// Documents
			r.Route("/{id}/documents", func(r chi.Router) {
				r.Get("/", rt.documentHandler.List)
				r.Post("/", rt.documentHandler.Upload)
				r.Get("/{documentId}", rt.documentHandler.GetByID)
				r.Delete("/{documentId}", rt.documentHandler.Delete)
				r.Get("/{documentId}/download", rt.documentHandler.Download)
				r.Post("/{documentId}/reclassify", rt.documentHandler.Reclassify)
			})
		})
	})

	return r
}
