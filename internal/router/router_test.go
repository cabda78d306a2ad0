package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/changedesk-api/internal/handler"
	"github.com/noah-isme/changedesk-api/internal/middleware"
	"github.com/noah-isme/changedesk-api/internal/models"
	appErrors "github.com/noah-isme/changedesk-api/pkg/errors"
)

type resolverStub map[string]*models.Session

func (r resolverStub) Resolve(_ context.Context, id string) (*models.Session, error) {
	if sess, ok := r[id]; ok {
		return sess, nil
	}
	return nil, appErrors.ErrUnauthorized
}

func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	source := middleware.SessionSource{Header: "X-Session-ID", Cookie: "changedesk_session"}
	h := Handlers{
		Auth:           handler.NewAuthHandler(nil, handler.CookieConfig{Source: source}),
		ChangeRequests: handler.NewChangeRequestHandler(nil, nil),
		Tasks:          handler.NewTaskHandler(nil),
		Projects:       handler.NewProjectHandler(nil, nil),
		Admin:          handler.NewAdminHandler(nil, nil),
		Reports:        handler.NewReportHandler(nil),
		Health:         handler.NewHealthHandler(nil, nil),
	}
	sessions := resolverStub{
		"plain": {ID: "plain", User: models.User{ID: "u-1", Roles: []string{models.RoleUser}}},
	}
	return New(h, sessions, Options{Source: source})
}

func serve(r *gin.Engine, method, path, session, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set("X-Session-ID", session)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestProbesArePublic(t *testing.T) {
	r := newTestEngine()
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/health", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/ready", "", "").Code)
}

func TestLoginIsPublic(t *testing.T) {
	r := newTestEngine()
	w := serve(r, http.MethodPost, "/api/v1/auth/login", "", "{")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPIRequiresSession(t *testing.T) {
	r := newTestEngine()
	for _, path := range []string{"/api/v1/change-requests", "/api/v1/tasks/t-1", "/api/v1/dashboard", "/api/v1/reports/tasks/summary"} {
		assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, path, "", "").Code, path)
	}
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/api/v1/auth/me", "expired", "").Code)
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	r := newTestEngine()
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/api/v1/admin/roles", "plain", "").Code)
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/api/v1/admin/action-log", "plain", "").Code)
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodPost, "/api/v1/departments", "plain", `{"name":"Ops"}`).Code)
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	r := newTestEngine()
	w := serve(r, http.MethodOptions, "/api/v1/tasks", "", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "X-Session-ID")
}
