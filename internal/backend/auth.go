package backend

import (
	"context"
	"net/http"

	"github.com/noah-isme/changedesk-api/internal/models"
)

// Login exchanges credentials for an upstream bearer token.
func (c *Client) Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error) {
	var result models.AuthResult
	if err := c.Do(ctx, nil, Call{Method: http.MethodPost, Path: "/auth/login", Body: creds}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Me returns the profile of the session owner.
func (c *Client) Me(ctx context.Context, sess *models.Session) (*models.User, error) {
	var user models.User
	if err := c.Do(ctx, sess, Call{Method: http.MethodGet, Path: "/users/me"}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
