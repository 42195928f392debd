package middleware

import (
	"net/http"
	"strings"
	"time"

	"ecobot/internal/logger"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// RequestLogger logs one line per request. Static assets and metric
// scrapes are logged at debug level.
func RequestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			line := "%s %s -> %d (%d bytes, %s) [%s]"
			args := []interface{}{r.Method, r.URL.Path, status, ww.BytesWritten(), time.Since(start).Round(time.Microsecond), chimw.GetReqID(r.Context())}

			switch {
			case status >= 500:
				log.Error(line, args...)
			case strings.HasPrefix(r.URL.Path, "/static/") || r.URL.Path == "/metrics" || r.URL.Path == "/healthz":
				log.Debug(line, args...)
			default:
				log.Info(line, args...)
			}
		})
	}
}
