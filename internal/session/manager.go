// Package session owns the lifecycle of the explicit authentication context:
// created on login, resolved on every request, cleared on logout or when the
// upstream answers 401.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/changedesk-api/internal/models"
	appErrors "github.com/noah-isme/changedesk-api/pkg/errors"
)

// Store persists sessions by id.
type Store interface {
	Save(ctx context.Context, sess *models.Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
}

// Authenticator exchanges credentials with the upstream.
type Authenticator interface {
	Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error)
}

var (
	errSessionMissing = appErrors.Clone(appErrors.ErrUnauthorized, "session not found or expired")
	errTokenExpired   = appErrors.Clone(appErrors.ErrUnauthorized, "upstream token already expired")
)

// Manager creates, resolves and clears sessions.
type Manager struct {
	store  Store
	auth   Authenticator
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// Option configures the manager.
type Option func(*Manager)

// WithLogger sets the manager logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager builds a session manager. ttl bounds every session; a shorter
// upstream token expiry wins.
func NewManager(store Store, auth Authenticator, ttl time.Duration, opts ...Option) *Manager {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	m := &Manager{store: store, auth: auth, ttl: ttl, logger: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Login authenticates upstream and opens a session holding the token and profile.
func (m *Manager) Login(ctx context.Context, creds models.Credentials) (*models.Session, error) {
	result, err := m.auth.Login(ctx, creds)
	if err != nil {
		return nil, err
	}

	now := m.now().UTC()
	expiresAt := now.Add(m.ttl)
	if exp, ok := TokenExpiry(result.Token); ok {
		if !exp.After(now) {
			return nil, errTokenExpired
		}
		if exp.Before(expiresAt) {
			expiresAt = exp
		}
	}

	sess := &models.Session{
		ID:        uuid.NewString(),
		Token:     result.Token,
		User:      result.User,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}
	if err := m.store.Save(ctx, sess, expiresAt.Sub(now)); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store session")
	}

	m.logger.Info("session opened", zap.String("session_id", sess.ID), zap.String("user_id", sess.User.ID), zap.Time("expires_at", expiresAt))
	return sess, nil
}

// Resolve returns the live session for id.
func (m *Manager) Resolve(ctx context.Context, id string) (*models.Session, error) {
	if id == "" {
		return nil, errSessionMissing
	}
	sess, err := m.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) || errors.Is(err, appErrors.ErrCacheMiss) {
			return nil, errSessionMissing
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if sess.Expired(m.now()) {
		_ = m.store.Delete(ctx, id)
		return nil, errSessionMissing
	}
	return sess, nil
}

// UpdateProfile replaces the cached user profile of a session.
func (m *Manager) UpdateProfile(ctx context.Context, sess *models.Session, user models.User) error {
	if sess == nil {
		return errSessionMissing
	}
	remaining := sess.ExpiresAt.Sub(m.now())
	if remaining <= 0 {
		return errSessionMissing
	}
	sess.User = user
	return m.store.Save(ctx, sess, remaining)
}

// Logout clears a session on explicit user request.
func (m *Manager) Logout(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear session")
	}
	m.logger.Info("session closed", zap.String("session_id", id))
	return nil
}

// Invalidate clears a session the upstream no longer accepts.
// Its signature matches backend.UnauthorizedHandler.
func (m *Manager) Invalidate(ctx context.Context, sess *models.Session) {
	if sess == nil || sess.ID == "" {
		return
	}
	if err := m.store.Delete(ctx, sess.ID); err != nil {
		m.logger.Warn("failed to invalidate session", zap.String("session_id", sess.ID), zap.Error(err))
		return
	}
	m.logger.Info("session invalidated by upstream 401", zap.String("session_id", sess.ID), zap.String("user_id", sess.User.ID))
}

// TokenExpiry reads the exp claim of an upstream JWT without verifying it.
// Verification belongs to the upstream; the gateway only needs the deadline.
func TokenExpiry(token string) (time.Time, bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
