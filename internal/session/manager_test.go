package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/changedesk-api/internal/models"
	appErrors "github.com/noah-isme/changedesk-api/pkg/errors"
)

type stubAuth struct {
	result *models.AuthResult
	err    error
}

func (s stubAuth) Login(context.Context, models.Credentials) (*models.AuthResult, error) {
	return s.result, s.err
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := token.SignedString([]byte("upstream-secret"))
	require.NoError(t, err)
	return signed
}

func TestLoginCapsLifetimeAtTokenExpiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	token := signedToken(t, now.Add(time.Hour))
	store := NewMemoryStore()
	store.now = func() time.Time { return now }
	m := NewManager(store, stubAuth{result: &models.AuthResult{Token: token, User: models.User{ID: "u1"}}}, 8*time.Hour,
		WithClock(func() time.Time { return now }))

	sess, err := m.Login(context.Background(), models.Credentials{Email: "a@b.c", Password: "x"})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, now.Add(time.Hour), sess.ExpiresAt)

	resolved, err := m.Resolve(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, token, resolved.Token)
	assert.Equal(t, "u1", resolved.UserID())
}

func TestLoginWithOpaqueTokenUsesConfiguredTTL(t *testing.T) {
	now := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	m := NewManager(NewMemoryStore(), stubAuth{result: &models.AuthResult{Token: "opaque"}}, 2*time.Hour,
		WithClock(func() time.Time { return now }))

	sess, err := m.Login(context.Background(), models.Credentials{})
	require.NoError(t, err)
	assert.Equal(t, now.Add(2*time.Hour), sess.ExpiresAt)
}

func TestLoginRejectsExpiredToken(t *testing.T) {
	now := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	token := signedToken(t, now.Add(-time.Minute))
	m := NewManager(NewMemoryStore(), stubAuth{result: &models.AuthResult{Token: token}}, time.Hour,
		WithClock(func() time.Time { return now }))

	_, err := m.Login(context.Background(), models.Credentials{})
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}

func TestLoginPropagatesUpstreamRejection(t *testing.T) {
	rejected := appErrors.Clone(appErrors.ErrUnauthorized, "Invalid email or password")
	m := NewManager(NewMemoryStore(), stubAuth{err: rejected}, time.Hour)
	_, err := m.Login(context.Background(), models.Credentials{})
	assert.Equal(t, "Invalid email or password", appErrors.Message(err))
}

func TestLogoutAndInvalidateClearSession(t *testing.T) {
	store := NewMemoryStore()
	m := NewManager(store, stubAuth{result: &models.AuthResult{Token: "opaque"}}, time.Hour)
	ctx := context.Background()

	first, err := m.Login(ctx, models.Credentials{})
	require.NoError(t, err)
	second, err := m.Login(ctx, models.Credentials{})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	require.NoError(t, m.Logout(ctx, first.ID))
	_, err = m.Resolve(ctx, first.ID)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	m.Invalidate(ctx, second)
	_, err = m.Resolve(ctx, second.ID)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
	assert.Equal(t, 0, store.Len())
}

func TestResolveDropsExpiredSession(t *testing.T) {
	now := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	clock := now
	store := NewMemoryStore()
	m := NewManager(store, stubAuth{result: &models.AuthResult{Token: "opaque"}}, time.Hour,
		WithClock(func() time.Time { return clock }))

	sess, err := m.Login(context.Background(), models.Credentials{})
	require.NoError(t, err)

	clock = now.Add(2 * time.Hour)
	_, err = m.Resolve(context.Background(), sess.ID)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
	_, err = m.Resolve(context.Background(), "")
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}

func TestUpdateProfile(t *testing.T) {
	m := NewManager(NewMemoryStore(), stubAuth{result: &models.AuthResult{Token: "opaque", User: models.User{ID: "u1"}}}, time.Hour)
	ctx := context.Background()
	sess, err := m.Login(ctx, models.Credentials{})
	require.NoError(t, err)

	require.NoError(t, m.UpdateProfile(ctx, sess, models.User{ID: "u1", FirstName: "Ada"}))
	resolved, err := m.Resolve(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", resolved.User.FirstName)
}

func TestTokenExpiry(t *testing.T) {
	_, ok := TokenExpiry("not-a-jwt")
	assert.False(t, ok)

	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	got, ok := TokenExpiry(signedToken(t, exp))
	require.True(t, ok)
	assert.True(t, exp.Equal(got))
}
