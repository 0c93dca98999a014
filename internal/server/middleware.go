package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/youtubefy/internal/auth"
	"github.com/desertthunder/youtubefy/internal/web"
	"golang.org/x/time/rate"
)

// LoggingMiddleware logs method, path, status, and duration for every request.
func LoggingMiddleware(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(recorder, r)

			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", recorder.status,
				"duration", time.Since(start),
			)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// SetupGateMiddleware short-circuits public routes with the not-ready page
// until the admin credential exists. Admin bootstrap routes pass through so
// setup itself stays reachable. An inconsistent admin table reads as not set
// up; the gate logs it and keeps the site closed.
func SetupGateMiddleware(gate *auth.AdminGate, pages *web.Pages, logger *log.Logger) Middleware {
	bypass := map[string]bool{
		"/handshake":               true,
		"/adm-login":               true,
		"/adm-logout":              true,
		"/youtube-oauth2-callback": true,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if bypass[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			isSetUp, err := gate.IsSetUp()
			if err != nil {
				logger.Error("setup check failed", "error", err)
			}
			if !isSetUp {
				w.WriteHeader(http.StatusServiceUnavailable)
				if err := pages.Render(w, "notready", nil); err != nil {
					logger.Error("failed to render page", "error", err)
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitMiddleware rejects requests to the listed paths beyond the
// limiter's budget with 429. Paths not listed pass through uncounted. The
// limiter is process-wide, matching the single-tenant deployment.
func RateLimitMiddleware(limiter *rate.Limiter, paths ...string) Middleware {
	limited := make(map[string]bool, len(paths))
	for _, path := range paths {
		limited[path] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limited[r.URL.Path] && !limiter.Allow() {
				http.Error(w, "Too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PerHour builds a limiter allowing n requests per hour with burst n.
func PerHour(n int) *rate.Limiter {
	return rate.NewLimiter(rate.Every(time.Hour/time.Duration(n)), n)
}
