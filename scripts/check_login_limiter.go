package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/bdticketpro/ticketpro/internal/pkg/config"
	"github.com/bdticketpro/ticketpro/internal/pkg/ratelimit"
	"github.com/bdticketpro/ticketpro/internal/pkg/redis"
)

// Проверка ограничителя входа на живом Redis:
// REDIS_HOST=... REDIS_PORT=... go run ./scripts
func main() {
	fmt.Println("=========================================")
	fmt.Println("Login limiter check")
	fmt.Println("=========================================")
	fmt.Println()

	ctx := context.Background()

	client, err := redis.NewClient(ctx, &config.RedisConfig{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       0,
	})
	if err != nil {
		fail("Failed to connect to Redis", err)
	}
	defer client.Close()

	fmt.Println("✅ Connected to Redis")
	fmt.Println()

	maxAttempts, _ := strconv.Atoi(getEnv("AUTH_MAX_LOGIN_ATTEMPTS", "5"))
	limiter := ratelimit.NewLoginLimiter(client, maxAttempts, time.Minute)
	email := fmt.Sprintf("limiter-check-%d@ticketpro.local", time.Now().UnixNano())

	// Шаг 1: новый email не заблокирован
	fmt.Println("Step 1: fresh email is allowed")
	mustAllow(ctx, limiter, email, true)
	fmt.Println()

	// Шаг 2: maxAttempts неудач блокируют вход
	fmt.Printf("Step 2: %d failures block the email\n", maxAttempts)
	for i := 0; i < maxAttempts; i++ {
		if err := limiter.RegisterFailure(ctx, email); err != nil {
			fail("RegisterFailure failed", err)
		}
	}
	mustAllow(ctx, limiter, email, false)
	fmt.Println()

	// Шаг 3: успешный вход сбрасывает счетчик
	fmt.Println("Step 3: reset unblocks the email")
	if err := limiter.Reset(ctx, email); err != nil {
		fail("Reset failed", err)
	}
	mustAllow(ctx, limiter, email, true)
	fmt.Println()

	fmt.Println("=========================================")
	fmt.Println("✅ Login limiter works against Redis")
	fmt.Println("=========================================")
}

func mustAllow(ctx context.Context, limiter *ratelimit.LoginLimiter, email string, want bool) {
	allowed, err := limiter.Allow(ctx, email)
	if err != nil {
		fail("Allow failed", err)
	}
	if allowed != want {
		fmt.Printf("❌ Allow = %v, expected %v\n", allowed, want)
		os.Exit(1)
	}
	fmt.Printf("✅ Allow = %v\n", allowed)
}

func fail(msg string, err error) {
	fmt.Printf("❌ %s: %v\n", msg, err)
	os.Exit(1)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
