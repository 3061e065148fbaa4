package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"edpsych-connect/internal/common/errors"
	"edpsych-connect/internal/common/metrics"
	"edpsych-connect/internal/models"
)

type contextKey string

const adminUserKey contextKey = "adminUser"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Flush keeps streaming responses working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the connection's writer.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// streaming lifts the server write deadline for long-lived responses such as
// the MCP event stream. Other routes keep server.write_timeout.
func (s *Server) streaming(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
			s.log.Debug("write deadline not cleared", map[string]interface{}{
				"path":  r.URL.Path,
				"error": err.Error(),
			})
		}
		next.ServeHTTP(w, r)
	})
}

func metricsHandler() http.Handler {
	return promhttp.Handler()
}

// observe records a span, Prometheus and OpenTelemetry metrics and a log line
// for every request. The route label is the matched mux pattern.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		if s.deps.Observability != nil {
			spanCtx, span := s.deps.Observability.StartSpan(ctx, "http.request",
				attribute.String("http.method", r.Method),
				attribute.String("http.target", r.URL.Path),
			)
			defer func() {
				span.SetAttributes(attribute.Int("http.status_code", rec.status))
				if rec.status >= http.StatusInternalServerError {
					span.SetStatus(codes.Error, http.StatusText(rec.status))
				}
				span.End()
			}()
			r = r.WithContext(spanCtx)
		}

		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		duration := time.Since(start)
		metrics.HTTPRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(duration.Seconds())
		if s.deps.Observability != nil {
			s.deps.Observability.RecordRequest(ctx, route, rec.status, duration)
		}

		if r.URL.Path == "/health" || r.URL.Path == "/metrics" {
			return
		}
		s.log.Info("http request", map[string]interface{}{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rec.status,
			"duration_ms": duration.Milliseconds(),
		})
	})
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				s.writeError(w, r, errors.NewInternalError("Unexpected server error", fmt.Errorf("panic: %v", v)))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// requireAdmin introspects the bearer token and checks the username against
// auth.admin_usernames. Without an identity provider every request passes.
func (s *Server) requireAdmin(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.deps.Auth == nil {
			next(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			s.writeError(w, r, errors.NewAuthenticationError("missing bearer token"))
			return
		}

		info, err := s.deps.Auth.ValidateToken(r.Context(), strings.TrimSpace(token))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if !s.admins[info.Username] {
			s.writeError(w, r, errors.NewForbiddenError(fmt.Sprintf("user %q is not an administrator", info.Username)))
			return
		}

		user := &models.AdminUser{Username: info.Username, Subject: info.Sub}
		next(w, r.WithContext(context.WithValue(r.Context(), adminUserKey, user)))
	})
}

// actor names who performed an admin action, for the audit trail.
func actor(ctx context.Context) string {
	if user, ok := ctx.Value(adminUserKey).(*models.AdminUser); ok && user.Username != "" {
		return user.Username
	}
	return "admin"
}
