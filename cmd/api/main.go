package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	deliveryHTTP "github.com/bdticketpro/ticketpro/internal/delivery/http"
	"github.com/bdticketpro/ticketpro/internal/pkg/config"
	"github.com/bdticketpro/ticketpro/internal/pkg/database"
	"github.com/bdticketpro/ticketpro/internal/pkg/jwt"
	"github.com/bdticketpro/ticketpro/internal/pkg/logger"
	"github.com/bdticketpro/ticketpro/internal/pkg/ratelimit"
	"github.com/bdticketpro/ticketpro/internal/pkg/redis"
	"github.com/bdticketpro/ticketpro/internal/repository/postgres"
	"github.com/bdticketpro/ticketpro/internal/usecase/auth"
	"github.com/bdticketpro/ticketpro/internal/usecase/groupticket"
	"github.com/bdticketpro/ticketpro/internal/usecase/passenger"
)

func main() {
	// =========================================================================
	// Загрузка конфигурации
	// =========================================================================

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// =========================================================================
	// Инициализация logger
	// =========================================================================

	log := logger.New(cfg.Logger.Level, cfg.Logger.Format, cfg.Logger.Output)
	logger.SetGlobalLogger(log)
	log.Info("Starting TicketPro API server", map[string]interface{}{
		"version": "1.0.0",
	})

	// =========================================================================
	// Подключение к PostgreSQL
	// =========================================================================

	ctx := context.Background()
	db, err := database.Connect(ctx, &cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer database.Close(db)

	log.Info("Connected to PostgreSQL", map[string]interface{}{
		"host":     cfg.Database.Host,
		"port":     cfg.Database.Port,
		"database": cfg.Database.Database,
	})

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatal("Failed to apply schema", map[string]interface{}{
				"error": err.Error(),
			})
		}
		log.Info("Database schema applied")
	}

	// =========================================================================
	// Подключение к Redis (счетчик попыток входа)
	// =========================================================================

	healthChecks := map[string]deliveryHTTP.HealthCheck{
		"database": db.Ping,
	}

	// Без Redis сервис работает, но перебор паролей не ограничивается
	var loginLimiter auth.LoginLimiter
	redisClient, err := redis.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Warn("Redis is not available, login attempts are not limited", map[string]interface{}{
			"error":   err.Error(),
			"address": cfg.Redis.Address(),
		})
	} else {
		defer redisClient.Close()
		loginLimiter = ratelimit.NewLoginLimiter(redisClient, cfg.Auth.MaxLoginAttempts, cfg.Auth.LoginWindow)
		healthChecks["redis"] = redisClient.Ping

		log.Info("Connected to Redis", map[string]interface{}{
			"address": cfg.Redis.Address(),
		})
	}

	// =========================================================================
	// Создание repositories
	// =========================================================================

	userRepo := postgres.NewUserRepository(db)
	groupTicketRepo := postgres.NewGroupTicketRepository(db)
	passengerRepo := postgres.NewPassengerRepository(db)

	log.Info("Repositories initialized")

	// =========================================================================
	// Создание JWT token service
	// =========================================================================

	tokenService := jwt.NewTokenService(
		cfg.JWT.SecretKey,
		cfg.JWT.AccessExpiry,
		cfg.JWT.Issuer,
	)

	// =========================================================================
	// Создание use case services
	// =========================================================================

	authService := auth.NewService(userRepo, tokenService, loginLimiter, log)
	groupTicketService := groupticket.NewService(groupTicketRepo, passengerRepo, log)
	passengerService := passenger.NewService(passengerRepo, groupTicketService, log)

	if cfg.Auth.AdminEmail != "" {
		if err := authService.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword, cfg.Auth.AdminFullName); err != nil {
			log.Fatal("Failed to bootstrap admin", map[string]interface{}{
				"error": err.Error(),
			})
		}
		log.Info("Admin account ensured", map[string]interface{}{
			"email": cfg.Auth.AdminEmail,
		})
	}

	log.Info("Use case services initialized")

	// =========================================================================
	// Создание HTTP handlers и router
	// =========================================================================

	router := deliveryHTTP.NewRouter(
		deliveryHTTP.NewAuthHandler(authService, log),
		deliveryHTTP.NewGroupTicketHandler(groupTicketService, log),
		deliveryHTTP.NewPassengerHandler(passengerService, log),
		deliveryHTTP.NewFinanceHandler(cfg.Finance.DefaultMarkupPercentage, log),
		tokenService,
		healthChecks,
		cfg,
		log,
	)

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// =========================================================================
	// Запуск сервера в goroutine
	// =========================================================================

	serverErrors := make(chan error, 1)

	go func() {
		log.Info("API server listening", map[string]interface{}{
			"address": srv.Addr,
		})
		serverErrors <- srv.ListenAndServe()
	}()

	// =========================================================================
	// Graceful shutdown
	// =========================================================================

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error", map[string]interface{}{
				"error": err.Error(),
			})
		}

	case sig := <-shutdown:
		log.Info("Shutdown signal received", map[string]interface{}{
			"signal": sig.String(),
		})

		// Даем незавершенным бронированиям 30 секунд
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Graceful shutdown failed", map[string]interface{}{
				"error": err.Error(),
			})

			if err := srv.Close(); err != nil {
				log.Error("Failed to close server", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}

		log.Info("Server stopped gracefully")
	}
}
