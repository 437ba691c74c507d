package middleware

import (
	"net/http"
	"time"

	"github.com/bdticketpro/ticketpro/internal/pkg/logger"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// responseWriter обертка для захвата status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += n
	return n, err
}

// LoggingMiddleware логирует все HTTP запросы
// 5xx пишутся как ошибки, 4xx как предупреждения
func LoggingMiddleware(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rw, r)

			fields := map[string]interface{}{
				"request_id":  chiMiddleware.GetReqID(r.Context()),
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      rw.statusCode,
				"duration_ms": time.Since(start).Milliseconds(),
				"bytes":       rw.written,
				"remote_addr": r.RemoteAddr,
			}
			if claims, ok := GetUserClaims(r.Context()); ok {
				fields["operator_id"] = claims.UserID
			}

			switch {
			case rw.statusCode >= http.StatusInternalServerError:
				log.Error("HTTP request", fields)
			case rw.statusCode >= http.StatusBadRequest:
				log.Warn("HTTP request", fields)
			default:
				log.Info("HTTP request", fields)
			}
		})
	}
}
