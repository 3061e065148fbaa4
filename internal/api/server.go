// Package api serves the platform's HTTP endpoints.
package api

import (
	"context"
	"net/http"
	"time"

	"edpsych-connect/internal/assessment"
	"edpsych-connect/internal/common/auth"
	"edpsych-connect/internal/common/config"
	"edpsych-connect/internal/common/logger"
	"edpsych-connect/internal/common/observability"
	"edpsych-connect/internal/contact"
	"edpsych-connect/internal/content"
	"edpsych-connect/internal/records"
)

const maxBodyBytes = 1 << 20

// Authenticator is the identity provider used for login and admin checks.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*auth.TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	ValidateToken(ctx context.Context, token string) (*auth.TokenInfo, error)
}

type RecordLister interface {
	Recent(ctx context.Context, limit int) ([]records.Record, error)
}

type ContactSubmitter interface {
	Submit(ctx context.Context, msg contact.Message) (*contact.Receipt, error)
}

// ReadinessCheck is reported by GET /ready; any failure makes the service not ready.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Dependencies are the collaborators behind the routes. Assessments and
// Content are required; a nil optional dependency makes its routes answer 503.
type Dependencies struct {
	Assessments   *assessment.Service
	Content       *content.Service
	Records       RecordLister
	Contact       ContactSubmitter
	Auth          Authenticator
	MCP           http.Handler
	Observability *observability.Observability
	Readiness     []ReadinessCheck
}

type Server struct {
	cfg    *config.Config
	deps   Dependencies
	log    logger.Logger
	admins map[string]bool
	now    func() time.Time
	mux    *http.ServeMux
}

func NewServer(cfg *config.Config, deps Dependencies, log logger.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		deps:   deps,
		log:    log.WithFields(map[string]interface{}{"component": "http"}),
		admins: make(map[string]bool, len(cfg.Auth.AdminUsernames)),
		now:    time.Now,
		mux:    http.NewServeMux(),
	}
	for _, name := range cfg.Auth.AdminUsernames {
		s.admins[name] = true
	}
	if deps.Auth == nil {
		s.log.Warn("identity provider not configured, admin routes are open", nil)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /api/mcp/{tool}", s.handleAssess)
	s.mux.HandleFunc("GET /api/mcp/servers", s.handleServers)
	s.mux.HandleFunc("GET /api/assessments/{id}/questions", s.handleQuestions)

	s.mux.Handle("GET /api/admin/blog/drafts", s.requireAdmin(s.handleListDrafts))
	s.mux.Handle("GET /api/admin/blog/draft/{filename}", s.requireAdmin(s.handleGetDraft))
	s.mux.Handle("POST /api/admin/blog/approve", s.requireAdmin(s.handleApprove))
	s.mux.Handle("GET /api/admin/assessments", s.requireAdmin(s.handleRecentAssessments))

	s.mux.HandleFunc("GET /api/blog/posts", s.handleListPosts)
	s.mux.HandleFunc("GET /api/blog/posts/{slug}", s.handleGetPost)
	s.mux.HandleFunc("GET /api/blog/search", s.handleSearch)

	s.mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	s.mux.HandleFunc("POST /api/auth/logout", s.handleLogout)
	s.mux.HandleFunc("POST /api/contact", s.handleContact)

	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /ready", s.handleReady)
	s.mux.Handle("GET /metrics", metricsHandler())

	if s.deps.MCP != nil {
		s.mux.Handle(s.cfg.MCP.Path, s.streaming(s.deps.MCP))
	}
}

// Handler returns the routes wrapped in recovery, tracing, metrics and request logging.
func (s *Server) Handler() http.Handler {
	return s.recoverer(s.observe(s.mux))
}

// HTTPServer builds the listener with the configured timeouts. The MCP
// endpoint is exempt from WriteTimeout.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  config.GetDuration(s.cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(s.cfg.Server.WriteTimeout),
	}
}
