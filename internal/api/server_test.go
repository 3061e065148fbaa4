package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edpsych-connect/internal/assessment"
	"edpsych-connect/internal/common/auth"
	"edpsych-connect/internal/common/config"
	"edpsych-connect/internal/common/errors"
	"edpsych-connect/internal/common/logger"
	"edpsych-connect/internal/common/observability"
	"edpsych-connect/internal/contact"
	"edpsych-connect/internal/content"
	"edpsych-connect/internal/models"
	"edpsych-connect/internal/records"
	"edpsych-connect/pkg/registry"
)

type fakeAuth struct {
	users  map[string]string // token -> username
	logins map[string]string // username -> password
}

func (f *fakeAuth) Login(ctx context.Context, username, password string) (*auth.TokenResponse, error) {
	if pw, ok := f.logins[username]; !ok || pw != password {
		return nil, errors.NewAuthenticationError("invalid user credentials")
	}
	return &auth.TokenResponse{AccessToken: "token-" + username, RefreshToken: "refresh-" + username, ExpiresIn: 300}, nil
}

func (f *fakeAuth) Logout(ctx context.Context, refreshToken string) error {
	if !strings.HasPrefix(refreshToken, "refresh-") {
		return errors.NewAuthenticationError("invalid refresh token")
	}
	return nil
}

func (f *fakeAuth) ValidateToken(ctx context.Context, token string) (*auth.TokenInfo, error) {
	username, ok := f.users[token]
	if !ok {
		return nil, errors.NewAuthenticationError("token is not active")
	}
	return &auth.TokenInfo{Active: true, Username: username}, nil
}

type fakeRecords struct {
	recs  []records.Record
	limit int
}

func (f *fakeRecords) Recent(ctx context.Context, limit int) ([]records.Record, error) {
	f.limit = limit
	return f.recs, nil
}

type fakeContact struct {
	got []contact.Message
}

func (f *fakeContact) Submit(ctx context.Context, msg contact.Message) (*contact.Receipt, error) {
	f.got = append(f.got, msg)
	return &contact.Receipt{Success: true, Message: "Thank you"}, nil
}

type auditLog struct {
	entries []string
}

func (a *auditLog) RecordApproval(ctx context.Context, filename, actor string) error {
	a.entries = append(a.entries, filename+"@"+actor)
	return nil
}

type testEnv struct {
	server *Server
	http   *httptest.Server
	store  *content.Store
	audit  *auditLog
	cfg    *config.Config
}

func newTestEnv(t *testing.T, deps Dependencies) *testEnv {
	t.Helper()
	log := logger.NewTestLogger(t)
	root := t.TempDir()

	cfg := &config.Config{}
	cfg.App.Name = "edpsych-connect"
	cfg.App.Version = "test"
	cfg.MCP.Path = "/mcp"
	cfg.MCP.RegistryPath = filepath.Join(root, "tool-registry.json")
	cfg.Auth.AdminUsernames = []string{"sarah"}

	engine, err := assessment.NewEngine(assessment.DefaultCatalogs())
	require.NoError(t, err)

	store := content.NewStore(filepath.Join(root, "drafts"), filepath.Join(root, "approved"), log)
	audit := &auditLog{}
	deps.Assessments = assessment.NewService(engine, nil, log)
	deps.Content = content.NewService(store, log, content.WithAuditRecorder(audit))

	s := NewServer(cfg, deps, log)
	s.now = func() time.Time { return time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC) }

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return &testEnv{server: s, http: ts, store: store, audit: audit, cfg: cfg}
}

func (e *testEnv) do(t *testing.T, method, path, body string, header map[string]string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, e.http.URL+path, reader)
	require.NoError(t, err)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := e.http.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func writeDraft(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func anxietyBody(t *testing.T) string {
	t.Helper()
	responses := map[string]int{}
	for i := 1; i <= 12; i++ {
		rating := 1
		if i <= 4 {
			rating = 5
		}
		responses[fmt.Sprintf("q%d", i)] = rating
	}
	raw, err := json.Marshal(map[string]interface{}{"age": 15, "gender": "female", "responses": responses})
	require.NoError(t, err)
	return string(raw)
}

func decodeError(t *testing.T, raw []byte) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &resp), string(raw))
	return resp
}

func TestAssessEndpoint(t *testing.T) {
	env := newTestEnv(t, Dependencies{})

	status, raw := env.do(t, http.MethodPost, "/api/mcp/anxiety-assessment", anxietyBody(t), nil)
	require.Equal(t, http.StatusOK, status, string(raw))

	var result assessment.Result
	require.NoError(t, json.Unmarshal(raw, &result))
	approx := cmpopts.EquateApprox(0, 0.001)
	assert.True(t, cmp.Equal(2.333, result.OverallScore, approx), result.OverallScore)
	assert.True(t, cmp.Equal(5.0, result.Categories["physiological"].Score, approx))
	assert.Equal(t, assessment.BandHigh, result.Categories["physiological"].Severity)
	assert.Equal(t, assessment.BandLow, result.Categories["cognitive"].Severity)
	assert.Equal(t, assessment.BandLow, result.Categories["behavioral"].Severity)
	assert.NotEmpty(t, result.Summary)
}

func TestAssessEndpointErrors(t *testing.T) {
	env := newTestEnv(t, Dependencies{})

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   errors.ErrorCode
	}{
		{"empty body", "/api/mcp/anxiety-assessment", "", http.StatusBadRequest, errors.ErrCodeValidationFailed},
		{"not json", "/api/mcp/anxiety-assessment", "{", http.StatusBadRequest, errors.ErrCodeValidationFailed},
		{"absent responses", "/api/mcp/anxiety-assessment", `{"age": 12}`, http.StatusBadRequest, errors.ErrCodeValidationFailed},
		{"empty responses", "/api/mcp/anxiety-assessment", `{"age": 12, "responses": {}}`, http.StatusBadRequest, errors.ErrCodeValidationFailed},
		{"fractional rating", "/api/mcp/anxiety-assessment", `{"age": 12, "responses": {"q1": 2.5}}`, http.StatusBadRequest, errors.ErrCodeValidationFailed},
		{"out of range", "/api/mcp/anxiety-assessment", `{"age": 12, "responses": {"q1": 9}}`, http.StatusBadRequest, errors.ErrCodeInvalidRating},
		{"incomplete", "/api/mcp/anxiety-assessment", `{"age": 12, "responses": {"q1": 3}}`, http.StatusBadRequest, errors.ErrCodeIncompleteSubmission},
		{"unknown tool", "/api/mcp/dyslexia-screener", anxietyBody(t), http.StatusNotFound, errors.ErrCodeAssessmentNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, raw := env.do(t, http.MethodPost, tt.path, tt.body, nil)
			assert.Equal(t, tt.status, status, string(raw))
			assert.Equal(t, string(tt.code), decodeError(t, raw).Code)
		})
	}

	status, _ := env.do(t, http.MethodGet, "/api/mcp/anxiety-assessment", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, status)
}

func TestServersEndpoint(t *testing.T) {
	env := newTestEnv(t, Dependencies{})

	t.Run("built from catalogs without a registry file", func(t *testing.T) {
		status, raw := env.do(t, http.MethodGet, "/api/mcp/servers", "", nil)
		require.Equal(t, http.StatusOK, status)

		var reg registry.ToolRegistry
		require.NoError(t, json.Unmarshal(raw, &reg))
		srv, ok := reg.Server("psychology-tools")
		require.True(t, ok)
		var names []string
		for _, tool := range srv.Tools {
			names = append(names, tool.Name)
		}
		assert.Equal(t, []string{"anxiety-assessment", "executive-function-assessment", "semh-assessment"}, names)
	})

	t.Run("served from the registry file", func(t *testing.T) {
		reg := &registry.ToolRegistry{Version: "9.9.9", Servers: []registry.Server{{Name: "vr-environments"}}}
		require.NoError(t, registry.SaveRegistry(reg, env.cfg.MCP.RegistryPath))

		status, raw := env.do(t, http.MethodGet, "/api/mcp/servers", "", nil)
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, string(raw), `"vr-environments"`)
		assert.Contains(t, string(raw), `"9.9.9"`)
	})
}

func TestQuestionsEndpoint(t *testing.T) {
	env := newTestEnv(t, Dependencies{})

	for _, id := range []string{"anxiety", "anxiety-assessment"} {
		status, raw := env.do(t, http.MethodGet, "/api/assessments/"+id+"/questions", "", nil)
		require.Equal(t, http.StatusOK, status)

		var q assessment.Questionnaire
		require.NoError(t, json.Unmarshal(raw, &q))
		assert.Equal(t, "anxiety", q.ID)
		require.Len(t, q.Categories, 3)
		assert.Equal(t, "physiological", q.Categories[0].Name)
	}

	status, _ := env.do(t, http.MethodGet, "/api/assessments/unknown/questions", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestBlogApprovalFlow(t *testing.T) {
	env := newTestEnv(t, Dependencies{})
	writeDraft(t, env.store.DraftsDir(), "exam_stress.md", "---\ntitle: Exam Stress\ndate: 2025-01-10\n---\n# Tips\n\nBreathe.")

	status, raw := env.do(t, http.MethodGet, "/api/admin/blog/drafts", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[{"filename":"exam_stress.md","title":"exam stress"}]`, string(raw))

	status, raw = env.do(t, http.MethodGet, "/api/admin/blog/draft/exam_stress.md", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(raw), `"filename":"exam_stress.md"`)

	status, _ = env.do(t, http.MethodGet, "/api/admin/blog/draft/missing.md", "", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, raw = env.do(t, http.MethodPost, "/api/admin/blog/approve", `{"filename":"exam_stress.md"}`, nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.JSONEq(t, `{"message":"Successfully approved and moved exam_stress.md to approved posts."}`, string(raw))
	assert.Equal(t, []string{"exam_stress.md@admin"}, env.audit.entries)

	status, raw = env.do(t, http.MethodGet, "/api/blog/posts", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[{"slug":"exam_stress","title":"Exam Stress","date":"2025-01-10","excerpt":""}]`, string(raw))

	status, raw = env.do(t, http.MethodGet, "/api/blog/posts/exam_stress", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(raw), "Tips</h1>")

	status, raw = env.do(t, http.MethodGet, "/api/blog/search?q=exam", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(raw), `"exam_stress"`)

	status, raw = env.do(t, http.MethodPost, "/api/admin/blog/approve", `{"filename":"exam_stress.md"}`, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, string(errors.ErrCodeDraftNotFound), decodeError(t, raw).Code)
}

func TestApproveValidation(t *testing.T) {
	env := newTestEnv(t, Dependencies{})

	tests := []struct {
		body string
		code errors.ErrorCode
	}{
		{"", errors.ErrCodeValidationFailed},
		{`{}`, errors.ErrCodeValidationFailed},
		{`{"filename": 42}`, errors.ErrCodeValidationFailed},
		{`{"filename": "../../etc/passwd.md"}`, errors.ErrCodeInvalidFilename},
		{`{"filename": "post.txt"}`, errors.ErrCodeInvalidFilename},
	}
	for _, tt := range tests {
		status, raw := env.do(t, http.MethodPost, "/api/admin/blog/approve", tt.body, nil)
		assert.Equal(t, http.StatusBadRequest, status, tt.body)
		assert.Equal(t, string(tt.code), decodeError(t, raw).Code, tt.body)
	}

	status, _ := env.do(t, http.MethodGet, "/api/blog/posts/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = env.do(t, http.MethodGet, "/api/blog/search?limit=zero", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAdminAuth(t *testing.T) {
	fa := &fakeAuth{users: map[string]string{"admin-token": "sarah", "user-token": "tom"}}
	env := newTestEnv(t, Dependencies{Auth: fa})
	writeDraft(t, env.store.DraftsDir(), "post.md", "Body")

	status, raw := env.do(t, http.MethodGet, "/api/admin/blog/drafts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, string(errors.ErrCodeAuthenticationFailed), decodeError(t, raw).Code)

	status, _ = env.do(t, http.MethodGet, "/api/admin/blog/drafts", "", map[string]string{"Authorization": "Bearer expired"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, raw = env.do(t, http.MethodGet, "/api/admin/blog/drafts", "", map[string]string{"Authorization": "Bearer user-token"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, string(errors.ErrCodeForbidden), decodeError(t, raw).Code)

	admin := map[string]string{"Authorization": "Bearer admin-token"}
	status, _ = env.do(t, http.MethodGet, "/api/admin/blog/drafts", "", admin)
	assert.Equal(t, http.StatusOK, status)

	status, _ = env.do(t, http.MethodPost, "/api/admin/blog/approve", `{"filename":"post.md"}`, admin)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"post.md@sarah"}, env.audit.entries)

	status, _ = env.do(t, http.MethodGet, "/api/blog/posts", "", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestLoginLogout(t *testing.T) {
	fa := &fakeAuth{logins: map[string]string{"sarah": "s3cret"}}
	env := newTestEnv(t, Dependencies{Auth: fa})

	status, raw := env.do(t, http.MethodPost, "/api/auth/login", `{"username":"sarah","password":"s3cret"}`, nil)
	require.Equal(t, http.StatusOK, status)
	var login models.LoginResponse
	require.NoError(t, json.Unmarshal(raw, &login))
	assert.Equal(t, models.LoginResponse{
		Success: true, Message: "Login successful", Token: "token-sarah", RefreshToken: "refresh-sarah", ExpiresIn: 300,
	}, login)

	status, _ = env.do(t, http.MethodPost, "/api/auth/login", `{"username":"sarah","password":"wrong"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = env.do(t, http.MethodPost, "/api/auth/login", `{"username":"sarah"}`, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = env.do(t, http.MethodPost, "/api/auth/logout", `{"refreshToken":"refresh-sarah"}`, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestLoginWithoutIdentityProvider(t *testing.T) {
	env := newTestEnv(t, Dependencies{})

	status, raw := env.do(t, http.MethodPost, "/api/auth/login", `{"username":"a","password":"b"}`, nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, string(errors.ErrCodeServiceUnavailable), decodeError(t, raw).Code)
}

func TestContactEndpoint(t *testing.T) {
	fc := &fakeContact{}
	env := newTestEnv(t, Dependencies{Contact: fc})

	body := `{"name":"Ann Lee","email":"ann@example.com","subject":"Assessment","message":"Hello"}`
	status, raw := env.do(t, http.MethodPost, "/api/contact", body, nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	require.Len(t, fc.got, 1)
	assert.Equal(t, "ann@example.com", fc.got[0].Email)

	status, _ = env.do(t, http.MethodPost, "/api/contact", `{"name":"Ann"}`, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRecentAssessments(t *testing.T) {
	t.Run("without records store", func(t *testing.T) {
		env := newTestEnv(t, Dependencies{})
		status, _ := env.do(t, http.MethodGet, "/api/admin/assessments", "", nil)
		assert.Equal(t, http.StatusServiceUnavailable, status)
	})

	t.Run("with records store", func(t *testing.T) {
		fr := &fakeRecords{recs: []records.Record{{ID: "r1", Assessment: "anxiety"}}}
		env := newTestEnv(t, Dependencies{Records: fr})

		status, raw := env.do(t, http.MethodGet, "/api/admin/assessments?limit=5", "", nil)
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, string(raw), `"r1"`)
		assert.Equal(t, 5, fr.limit)

		status, _ = env.do(t, http.MethodGet, "/api/admin/assessments?limit=-1", "", nil)
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestHealthAndReady(t *testing.T) {
	var failing bool
	env := newTestEnv(t, Dependencies{Readiness: []ReadinessCheck{
		{Name: "redis", Check: func(context.Context) error {
			if failing {
				return fmt.Errorf("connection refused")
			}
			return nil
		}},
	}})

	status, raw := env.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(raw), `"healthy"`)

	status, raw = env.do(t, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(raw), `"redis":"ok"`)

	failing = true
	status, raw = env.do(t, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Contains(t, string(raw), "connection refused")

	status, raw = env.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, bytes.Contains(raw, []byte("http_requests_total")))
}

func TestMCPEndpointMounted(t *testing.T) {
	called := false
	mcp := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusAccepted)
	})
	env := newTestEnv(t, Dependencies{MCP: mcp})

	status, _ := env.do(t, http.MethodPost, "/mcp", `{}`, nil)
	assert.Equal(t, http.StatusAccepted, status)
	assert.True(t, called)
}

func TestMCPStreamOutlivesWriteTimeout(t *testing.T) {
	mcp := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		time.Sleep(150 * time.Millisecond)
		_, _ = io.WriteString(w, "event: message\ndata: {}\n\n")
	})
	env := newTestEnv(t, Dependencies{MCP: mcp})

	ts := httptest.NewUnstartedServer(env.server.Handler())
	ts.Config.WriteTimeout = 50 * time.Millisecond
	ts.Start()
	t.Cleanup(ts.Close)

	resp, err := ts.Client().Get(ts.URL + "/mcp")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "data: {}")
}

func TestStatusRecorderUnwrap(t *testing.T) {
	inner := httptest.NewRecorder()
	rec := &statusRecorder{ResponseWriter: inner, status: http.StatusOK}

	assert.Same(t, inner, rec.Unwrap().(*httptest.ResponseRecorder))
	require.NoError(t, http.NewResponseController(rec).Flush())
	assert.True(t, inner.Flushed)
}

func TestRecovererReturnsJSON(t *testing.T) {
	env := newTestEnv(t, Dependencies{})
	h := env.server.recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeError(t, rec.Body.Bytes())
	assert.Equal(t, string(errors.ErrCodeInternal), resp.Code)
	assert.Contains(t, resp.Details, "boom")
}

func TestRequestsAreTraced(t *testing.T) {
	obs := observability.New("edpsych-connect-test", logger.NewTestLogger(t))
	t.Cleanup(func() { obs.Shutdown(context.Background()) })
	env := newTestEnv(t, Dependencies{Observability: obs})

	status, _ := env.do(t, http.MethodGet, "/api/blog/posts", "", nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = env.do(t, http.MethodGet, "/no/such/route", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}
