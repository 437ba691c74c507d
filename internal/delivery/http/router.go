package http

import (
	"context"
	"net/http"
	"time"

	"github.com/bdticketpro/ticketpro/internal/delivery/http/middleware"
	"github.com/bdticketpro/ticketpro/internal/domain"
	"github.com/bdticketpro/ticketpro/internal/pkg/config"
	"github.com/bdticketpro/ticketpro/internal/pkg/logger"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// HealthCheck проверяет доступность одной зависимости (БД, Redis)
type HealthCheck func(ctx context.Context) error

// Router содержит все зависимости для HTTP роутера
type Router struct {
	authHandler        *AuthHandler
	groupTicketHandler *GroupTicketHandler
	passengerHandler   *PassengerHandler
	financeHandler     *FinanceHandler
	tokens             middleware.TokenValidator
	healthChecks       map[string]HealthCheck
	config             *config.Config
	logger             logger.Logger
}

// NewRouter создает новый HTTP router
func NewRouter(
	authHandler *AuthHandler,
	groupTicketHandler *GroupTicketHandler,
	passengerHandler *PassengerHandler,
	financeHandler *FinanceHandler,
	tokens middleware.TokenValidator,
	healthChecks map[string]HealthCheck,
	config *config.Config,
	logger logger.Logger,
) *Router {
	return &Router{
		authHandler:        authHandler,
		groupTicketHandler: groupTicketHandler,
		passengerHandler:   passengerHandler,
		financeHandler:     financeHandler,
		tokens:             tokens,
		healthChecks:       healthChecks,
		config:             config,
		logger:             logger,
	}
}

// Setup настраивает все маршруты
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Глобальные middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.RecoveryMiddleware(rt.logger))
	r.Use(middleware.LoggingMiddleware(rt.logger))
	r.Use(middleware.CORSMiddleware(middleware.CORSConfig{
		AllowedOrigins: rt.config.CORS.AllowedOrigins,
		AllowedMethods: rt.config.CORS.AllowedMethods,
		AllowedHeaders: rt.config.CORS.AllowedHeaders,
	}))

	r.Get("/health", rt.health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", rt.authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(rt.tokens))

			r.Get("/auth/me", rt.authHandler.GetMe)
			r.With(middleware.RequireRole(domain.RoleAdmin)).
				Post("/auth/register", rt.authHandler.Register)

			r.Route("/group-tickets", func(r chi.Router) {
				r.Get("/", rt.groupTicketHandler.List)
				r.Post("/", rt.groupTicketHandler.Create)
				r.Get("/grouped", rt.groupTicketHandler.Grouped)
				r.Get("/available", rt.groupTicketHandler.Available)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", rt.groupTicketHandler.GetByID)
					r.Get("/summary", rt.groupTicketHandler.Summary)
					r.Get("/manifest", rt.groupTicketHandler.Manifest)

					// Изменение и удаление партии - только администратор
					r.Group(func(r chi.Router) {
						r.Use(middleware.RequireRole(domain.RoleAdmin))
						r.Put("/", rt.groupTicketHandler.Update)
						r.Delete("/", rt.groupTicketHandler.Delete)
					})
				})
			})

			r.Route("/passengers", func(r chi.Router) {
				r.Get("/", rt.passengerHandler.List)
				r.Post("/", rt.passengerHandler.Create)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", rt.passengerHandler.GetByID)
					r.Put("/", rt.passengerHandler.Update)
					r.Delete("/", rt.passengerHandler.Delete)
					r.Patch("/status", rt.passengerHandler.ChangeStatus)
					r.Put("/group-ticket", rt.passengerHandler.Assign)
					r.Delete("/group-ticket", rt.passengerHandler.Unassign)
				})
			})

			r.Route("/finance", func(r chi.Router) {
				r.Post("/preview", rt.financeHandler.Preview)
				r.Post("/validate-batch", rt.financeHandler.ValidateBatch)
			})
		})
	})

	return r
}

// health проверяет зависимости сервиса, при недоступности любой из них отвечает 503
func (rt *Router) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(rt.healthChecks))
	for name, check := range rt.healthChecks {
		if err := check(ctx); err != nil {
			rt.logger.Warn("Health check failed", map[string]interface{}{
				"dependency": name,
				"error":      err.Error(),
			})
			checks[name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	state := "healthy"
	if status != http.StatusOK {
		state = "degraded"
	}

	respondJSON(w, status, map[string]interface{}{
		"success": status == http.StatusOK,
		"status":  state,
		"checks":  checks,
	})
}
