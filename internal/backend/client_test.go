package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/changedesk-api/internal/models"
	"github.com/noah-isme/changedesk-api/pkg/config"
	appErrors "github.com/noah-isme/changedesk-api/pkg/errors"
	"github.com/noah-isme/changedesk-api/pkg/middleware/requestid"
)

type observation struct {
	method string
	route  string
	status int
}

type recordingObserver struct {
	calls []observation
}

func (r *recordingObserver) ObserveUpstream(method, route string, status int, _ time.Duration) {
	r.calls = append(r.calls, observation{method, route, status})
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(config.BackendConfig{BaseURL: server.URL + "/api/", Timeout: time.Second}, opts...)
}

func TestExtractMessagePriority(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"errors first", `{"message":"m","errors":["first","second"],"validationErrors":[{"identifier":"x","errorMessage":"v"}]}`, "first"},
		{"validation before message", `{"message":"m","validationErrors":[{"identifier":"Reason","errorMessage":"Reason is required"}]}`, "Reason is required"},
		{"message", `{"message":"Change request not found"}`, "Change request not found"},
		{"problem details errors object ignored", `{"errors":{"Title":["too long"]},"message":"bad"}`, "bad"},
		{"empty errors array", `{"errors":[],"message":"bad"}`, "bad"},
		{"blank entries skipped", `{"errors":["  "],"message":""}`, appErrors.GenericMessage},
		{"not json", `<html>502</html>`, appErrors.GenericMessage},
		{"empty", ``, appErrors.GenericMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractMessage([]byte(tt.body)))
		})
	}
}

func TestDoSendsBearerAndRequestID(t *testing.T) {
	observer := &recordingObserver{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/change-requests/cr%201", r.URL.EscapedPath())
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "req-9", r.Header.Get(requestid.HeaderKey))
		_ = json.NewEncoder(w).Encode(models.ChangeRequest{ID: "cr 1", Title: "DB Migration", Status: models.ChangeDraft})
	}, WithObserver(observer))

	ctx := requestid.WithValue(context.Background(), "req-9")
	cr, err := client.GetChangeRequest(ctx, &models.Session{Token: "tok"}, "cr 1")
	require.NoError(t, err)
	assert.Equal(t, "DB Migration", cr.Title)
	require.Len(t, observer.calls, 1)
	assert.Equal(t, observation{http.MethodGet, "/change-requests/{id}", http.StatusOK}, observer.calls[0])
}

func TestDoUnauthorizedInvalidatesSession(t *testing.T) {
	var cleared *models.Session
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Token expired"}`))
	}, WithUnauthorizedHandler(func(_ context.Context, sess *models.Session) { cleared = sess }))

	sess := &models.Session{ID: "s1", Token: "tok"}
	_, err := client.ListTasks(context.Background(), sess, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
	assert.Equal(t, "Token expired", appErrors.Message(err))
	assert.Same(t, sess, cleared)
}

func TestDoForbiddenIsSurfacedNotCleared(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}, WithUnauthorizedHandler(func(context.Context, *models.Session) { called = true }))

	_, err := client.ListRoles(context.Background(), &models.Session{Token: "tok"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
	assert.False(t, called)
}

func TestDoRejectionKeepsStatusAndMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"validationErrors":[{"identifier":"ScheduledEndDate","errorMessage":"End must be after start"}]}`))
	})

	err := client.Do(context.Background(), &models.Session{Token: "tok"}, ChangeRequestAction("1", "schedule", map[string]string{}), nil)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrBackendRejected.Code, appErr.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.Status)
	assert.Equal(t, "End must be after start", appErr.Message)
}

func TestDoTransportFailureFallsBackToGenericMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()
	client := New(config.BackendConfig{BaseURL: server.URL, Timeout: time.Second})

	_, err := client.ListProjects(context.Background(), &models.Session{Token: "tok"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrBackendUnavailable))
	assert.Equal(t, appErrors.GenericMessage, appErrors.Message(err))
}

func TestDoServerErrorUsesExtractedMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"errors":["Database unavailable"]}`))
	})
	_, err := client.ListDepartments(context.Background(), &models.Session{Token: "tok"})
	assert.True(t, errors.Is(err, appErrors.ErrBackendUnavailable))
	assert.Equal(t, "Database unavailable", appErrors.Message(err))
}

func TestLoginSendsNoAuthorization(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		var creds models.Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "ada@example.com", creds.Email)
		_ = json.NewEncoder(w).Encode(models.AuthResult{Token: "tok", User: models.User{ID: "u1"}})
	})

	result, err := client.Login(context.Background(), models.Credentials{Email: "ada@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "tok", result.Token)
	assert.Equal(t, "u1", result.User.ID)
}

func TestReportPassesQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/reports/change-requests/summary", r.URL.Path)
		assert.Equal(t, "2025", r.URL.Query().Get("year"))
		_, _ = w.Write([]byte(`{"total":3}`))
	})

	raw, err := client.Report(context.Background(), &models.Session{Token: "tok"}, "change-requests/summary", map[string][]string{"year": {"2025"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":3}`, string(raw))
}
