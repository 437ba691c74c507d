package http

import (
	"context"
	"net/http"

	"github.com/bdticketpro/ticketpro/internal/delivery/http/middleware"
	"github.com/bdticketpro/ticketpro/internal/domain"
	"github.com/bdticketpro/ticketpro/internal/pkg/logger"
	"github.com/bdticketpro/ticketpro/internal/usecase/auth"
	"github.com/google/uuid"
)

// AuthService - операции аутентификации, нужные обработчику
type AuthService interface {
	Register(ctx context.Context, req *auth.RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, req *auth.LoginRequest) (*auth.LoginResponse, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// AuthHandler обрабатывает запросы аутентификации
type AuthHandler struct {
	authService AuthService
	logger      logger.Logger
}

// NewAuthHandler создает новый handler
func NewAuthHandler(authService AuthService, logger logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Register создает оператора (только администратор)
// POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to register user")
		return
	}

	respondData(w, http.StatusCreated, user)
}

// Login обрабатывает вход оператора
// POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	response, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to login")
		return
	}

	respondData(w, http.StatusOK, response)
}

// GetMe возвращает текущего оператора
// GET /api/v1/auth/me
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.authService.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		handleServiceError(w, h.logger, err, "Failed to get user")
		return
	}

	respondData(w, http.StatusOK, user)
}
