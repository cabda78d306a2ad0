package models

import "time"

// Credentials are relayed to the upstream login endpoint.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is the upstream login response.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Session is the explicit authentication context handed to every upstream call.
// It replaces a process-wide token slot: one record per browser session.
type Session struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	User      User      `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session has outlived its deadline.
func (s *Session) Expired(now time.Time) bool {
	return s == nil || (!s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt))
}

// UserID returns the session owner's id.
func (s *Session) UserID() string {
	if s == nil {
		return ""
	}
	return s.User.ID
}
