package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bdticketpro/ticketpro/internal/domain"
	"github.com/bdticketpro/ticketpro/internal/pkg/hash"
	"github.com/bdticketpro/ticketpro/internal/pkg/jwt"
	"github.com/bdticketpro/ticketpro/internal/pkg/logger"
	"github.com/bdticketpro/ticketpro/internal/repository"
	"github.com/google/uuid"
)

// RegisterRequest - запрос на создание оператора (выполняет администратор)
type RegisterRequest struct {
	Email    string          `json:"email" validate:"required,email"`
	Password string          `json:"password" validate:"required,min=8,max=72"`
	FullName string          `json:"full_name" validate:"required,max=100"`
	Phone    string          `json:"phone,omitempty"`
	Role     domain.UserRole `json:"role,omitempty" validate:"omitempty,oneof=admin staff"`
}

// LoginRequest - запрос на вход
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse - ответ на вход
type LoginResponse struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"access_token"`
	ExpiresAt   string       `json:"expires_at"`
}

// LoginLimiter ограничивает перебор паролей
type LoginLimiter interface {
	Allow(ctx context.Context, email string) (bool, error)
	RegisterFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

// Service содержит бизнес-логику аутентификации операторов
type Service struct {
	userRepo     repository.UserRepository
	tokenService *jwt.TokenService
	limiter      LoginLimiter
	logger       logger.Logger
}

// NewService создает новый экземпляр AuthService
// limiter может быть nil - тогда попытки входа не ограничиваются
func NewService(
	userRepo repository.UserRepository,
	tokenService *jwt.TokenService,
	limiter LoginLimiter,
	logger logger.Logger,
) *Service {
	return &Service{
		userRepo:     userRepo,
		tokenService: tokenService,
		limiter:      limiter,
		logger:       logger,
	}
}

// Register создает нового оператора
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*domain.User, error) {
	email := domain.NormalizeEmail(req.Email)

	s.logger.Info("Registering new operator", map[string]interface{}{
		"email": email,
		"role":  req.Role,
	})

	// Проверяем, что оператор с таким email еще не существует
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		s.logger.Warn("Operator already exists", map[string]interface{}{
			"email": email,
		})
		return nil, domain.ErrUserAlreadyExists
	}

	user := &domain.User{
		Email:    email,
		FullName: req.FullName,
		Phone:    req.Phone,
		Role:     req.Role,
		IsActive: true,
	}

	// Если роль не указана - обычный сотрудник
	if user.Role == "" {
		user.Role = domain.RoleStaff
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	passwordHash, err := hash.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPassword) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = passwordHash

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return nil, err
		}
		s.logger.Error("Failed to create operator", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("Operator registered successfully", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})

	// Не возвращаем password_hash
	user.PasswordHash = ""

	return user, nil
}

// Login аутентифицирует оператора и возвращает access token
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	email := domain.NormalizeEmail(req.Email)

	s.logger.Info("Operator login attempt", map[string]interface{}{
		"email": email,
	})

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, email)
		if err != nil {
			// Redis недоступен - не блокируем вход, только фиксируем
			s.logger.Warn("Login limiter unavailable", map[string]interface{}{
				"error": err.Error(),
			})
		} else if !allowed {
			s.logger.Warn("Login blocked: too many attempts", map[string]interface{}{
				"email": email,
			})
			return nil, domain.ErrTooManyAttempts
		}
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.logger.Warn("Login failed: user not found", map[string]interface{}{
				"email": email,
			})
			s.registerFailure(ctx, email)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !user.IsActive {
		s.logger.Warn("Login failed: user inactive", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, domain.ErrUserInactive
	}

	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		s.logger.Warn("Login failed: invalid password", map[string]interface{}{
			"user_id": user.ID,
		})
		s.registerFailure(ctx, email)
		return nil, domain.ErrInvalidCredentials
	}

	accessToken, expiresAt, err := s.tokenService.GenerateAccessToken(user)
	if err != nil {
		s.logger.Error("Failed to generate token", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, email); err != nil {
			s.logger.Warn("Failed to reset login attempts", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Error("Failed to update last login", map[string]interface{}{
			"error": err.Error(),
		})
	}

	s.logger.Info("Operator logged in successfully", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})

	// Не возвращаем password_hash
	user.PasswordHash = ""

	return &LoginResponse{
		User:        user,
		AccessToken: accessToken,
		ExpiresAt:   expiresAt.Format(time.RFC3339),
	}, nil
}

func (s *Service) registerFailure(ctx context.Context, email string) {
	if s.limiter == nil {
		return
	}
	if err := s.limiter.RegisterFailure(ctx, email); err != nil {
		s.logger.Warn("Failed to count login attempt", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// GetUserByID возвращает оператора по ID
func (s *Service) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Не возвращаем password_hash
	user.PasswordHash = ""

	return user, nil
}

// EnsureAdmin создает первого администратора, если оператора с таким email нет
// Вызывается при старте, чтобы было кому регистрировать остальных
func (s *Service) EnsureAdmin(ctx context.Context, email, password, fullName string) error {
	_, err := s.userRepo.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("failed to check admin: %w", err)
	}

	_, err = s.Register(ctx, &RegisterRequest{
		Email:    email,
		Password: password,
		FullName: fullName,
		Role:     domain.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	return nil
}
