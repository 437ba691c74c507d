package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORSConfig - разрешенные источники, методы и заголовки
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// CORSMiddleware выставляет CORS заголовки для разрешенных источников
// и сам отвечает на preflight OPTIONS запросы
func CORSMiddleware(cfg CORSConfig) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: cfg.AllowedMethods,
		AllowedHeaders: cfg.AllowedHeaders,
		// имя файла манифеста и id запроса нужны фронтенду
		ExposedHeaders: []string{"Content-Disposition", "X-Request-Id"},
		MaxAge:         600,
	}).Handler
}
