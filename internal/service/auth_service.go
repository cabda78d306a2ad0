package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/changedesk-api/internal/models"
	"github.com/noah-isme/changedesk-api/internal/validation"
)

type sessionManager interface {
	Login(ctx context.Context, creds models.Credentials) (*models.Session, error)
	UpdateProfile(ctx context.Context, sess *models.Session, user models.User) error
	Logout(ctx context.Context, id string) error
}

type profileBackend interface {
	Me(ctx context.Context, sess *models.Session) (*models.User, error)
}

type reportInvalidator interface {
	InvalidateUser(ctx context.Context, userID string) error
}

// AuthService provides login, logout and profile refresh on top of the session manager.
type AuthService struct {
	sessions  sessionManager
	backend   profileBackend
	reports   reportInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAuthService constructs an AuthService instance. reports may be nil.
func NewAuthService(sessions sessionManager, backend profileBackend, reports reportInvalidator, validate *validator.Validate, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validation.New()
	}
	return &AuthService{sessions: sessions, backend: backend, reports: reports, validator: validate, logger: logger}
}

// Login validates credentials and opens a session.
func (s *AuthService) Login(ctx context.Context, creds models.Credentials) (*models.Session, error) {
	if err := validation.Struct(s.validator, creds); err != nil {
		return nil, err
	}
	return s.sessions.Login(ctx, creds)
}

// Me refreshes the cached profile from the upstream and returns it.
func (s *AuthService) Me(ctx context.Context, sess *models.Session) (*models.User, error) {
	user, err := s.backend.Me(ctx, sess)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.UpdateProfile(ctx, sess, *user); err != nil {
		s.logger.Warn("failed to cache refreshed profile", zap.String("session_id", sess.ID), zap.Error(err))
	}
	return user, nil
}

// Logout closes the session and drops the user's cached reports.
func (s *AuthService) Logout(ctx context.Context, sess *models.Session) error {
	if err := s.sessions.Logout(ctx, sess.ID); err != nil {
		return err
	}
	if s.reports != nil {
		if err := s.reports.InvalidateUser(ctx, sess.UserID()); err != nil {
			s.logger.Warn("failed to drop cached reports", zap.String("user_id", sess.UserID()), zap.Error(err))
		}
	}
	return nil
}
