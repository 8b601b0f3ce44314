package rest

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"tabula-backend/application/commands/bus"
	querybus "tabula-backend/application/queries/bus"
	"tabula-backend/interfaces/http/rest/handlers"
	"tabula-backend/interfaces/http/rest/middleware"
	"tabula-backend/pkg/auth"
)

// Router creates and configures the HTTP router
type Router struct {
	commandBus  *bus.CommandBus
	queryBus    *querybus.QueryBus
	validator   *auth.JWTValidator
	corsOrigins []string
	logger      *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	validator *auth.JWTValidator,
	corsOrigins []string,
	logger *zap.Logger,
) *Router {
	return &Router{
		commandBus:  commandBus,
		queryBus:    queryBus,
		validator:   validator,
		corsOrigins: corsOrigins,
		logger:      logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	// API v1 routes
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(rt.validator, rt.logger))

		r.Route("/boards", func(r chi.Router) {
			boardHandler := handlers.NewBoardHandler(rt.commandBus, rt.queryBus, rt.logger)
			r.Get("/", boardHandler.ListBoards)
			r.Post("/", boardHandler.CreateBoard)
			r.Get("/{boardID}", boardHandler.GetBoard)
			r.Put("/{boardID}", boardHandler.UpdateBoard)
			r.Delete("/{boardID}", boardHandler.DeleteBoard)

			// Onboarding guide progress
			r.Get("/{boardID}/onboarding", boardHandler.GetGuideStatus)
			r.Put("/{boardID}/onboarding", boardHandler.MarkGuideShown)
		})
	})

	return router
}

// healthCheck handles the health check endpoint
func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

// readinessCheck handles the readiness check endpoint
func (rt *Router) readinessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
}
