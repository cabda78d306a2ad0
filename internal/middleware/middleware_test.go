package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/changedesk-api/internal/models"
	appErrors "github.com/noah-isme/changedesk-api/pkg/errors"
	"github.com/noah-isme/changedesk-api/pkg/logger"
)

type resolverStub struct {
	sessions map[string]*models.Session
	asked    []string
}

func (r *resolverStub) Resolve(_ context.Context, id string) (*models.Session, error) {
	r.asked = append(r.asked, id)
	if sess, ok := r.sessions[id]; ok {
		return sess, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session not found or expired")
}

type observerStub struct {
	routes   []string
	statuses []int
}

func (o *observerStub) ObserveHTTPRequest(_ string, path string, status int, _ time.Duration) {
	o.routes = append(o.routes, path)
	o.statuses = append(o.statuses, status)
}

var source = SessionSource{Header: "X-Session-ID", Cookie: "changedesk_session"}

func newEngine(resolver SessionResolver, handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	chain := append([]gin.HandlerFunc{Session(resolver, source)}, handlers...)
	chain = append(chain, func(c *gin.Context) {
		sess := CurrentSession(c)
		c.JSON(http.StatusOK, gin.H{
			"session": sess.ID,
			"logSess": c.GetString(logger.SessionIDKey),
			"logUser": c.GetString(logger.UserIDKey),
		})
	})
	r.GET("/private", chain...)
	return r
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestSessionFromHeader(t *testing.T) {
	resolver := &resolverStub{sessions: map[string]*models.Session{
		"s-1": {ID: "s-1", User: models.User{ID: "u-1"}},
	}}
	r := newEngine(resolver)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("X-Session-ID", "s-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "s-1", body["session"])
	assert.Equal(t, "s-1", body["logSess"])
	assert.Equal(t, "u-1", body["logUser"])
}

func TestSessionFromCookie(t *testing.T) {
	resolver := &resolverStub{sessions: map[string]*models.Session{
		"s-2": {ID: "s-2", User: models.User{ID: "u-2"}},
	}}
	r := newEngine(resolver)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(&http.Cookie{Name: "changedesk_session", Value: "s-2"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"s-2"}, resolver.asked)
}

func TestSessionMissing(t *testing.T) {
	resolver := &resolverStub{}
	r := newEngine(resolver)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/private", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, resolver.asked)
	body := decode(t, rec)
	errBody := body["error"].(map[string]interface{})
	assert.Equal(t, "missing session", errBody["message"])
}

func TestSessionUnknown(t *testing.T) {
	r := newEngine(&resolverStub{})

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("X-Session-ID", "gone")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoles(t *testing.T) {
	resolver := &resolverStub{sessions: map[string]*models.Session{
		"admin": {ID: "admin", User: models.User{ID: "u-1", Roles: []string{"admin"}}},
		"plain": {ID: "plain", User: models.User{ID: "u-2", Roles: []string{models.RoleUser}}},
	}}
	r := newEngine(resolver, RequireRoles(models.RoleAdmin))

	cases := map[string]int{"admin": http.StatusOK, "plain": http.StatusForbidden}
	for id, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		req.Header.Set("X-Session-ID", id)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, id)
	}
}

func TestRequireRolesWithoutSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	RequireRoles(models.RoleAdmin)(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMetricsLabelsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	observer := &observerStub{}
	r := gin.New()
	r.Use(Metrics(observer, "/metrics"))
	r.GET("/tasks/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/tasks/42", "/metrics", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, []string{"/tasks/:id", unmatchedRoute}, observer.routes)
	assert.Equal(t, []int{http.StatusOK, http.StatusNotFound}, observer.statuses)
}

func TestResponseMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var meta map[string]interface{}
	r := gin.New()
	r.Use(WithResponseMeta())
	r.GET("/hit", func(c *gin.Context) {
		SetCacheHit(c, true)
		meta = ResponseMeta(c)
		c.Status(http.StatusOK)
	})
	r.GET("/plain", func(c *gin.Context) {
		meta = ResponseMeta(c)
		c.Status(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/hit", nil))
	require.NotNil(t, meta)
	assert.Equal(t, true, meta[cacheHitKey])
	assert.Contains(t, meta, processingKey)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/plain", nil))
	assert.Nil(t, meta)
}
