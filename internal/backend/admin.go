package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/noah-isme/changedesk-api/internal/models"
)

// ListDepartments fetches every department.
func (c *Client) ListDepartments(ctx context.Context, sess *models.Session) ([]models.Department, error) {
	items := []models.Department{}
	if err := c.Do(ctx, sess, Call{Method: http.MethodGet, Path: "/departments"}, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// CreateDepartment creates a department.
func (c *Client) CreateDepartment(ctx context.Context, sess *models.Session, in models.DepartmentInput) (*models.Department, error) {
	var d models.Department
	if err := c.Do(ctx, sess, Call{Method: http.MethodPost, Path: "/departments", Body: in}, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// ListUsers fetches every user.
func (c *Client) ListUsers(ctx context.Context, sess *models.Session) ([]models.User, error) {
	items := []models.User{}
	if err := c.Do(ctx, sess, Call{Method: http.MethodGet, Path: "/users"}, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ListRoles fetches the assignable roles.
func (c *Client) ListRoles(ctx context.Context, sess *models.Session) ([]models.Role, error) {
	items := []models.Role{}
	if err := c.Do(ctx, sess, Call{Method: http.MethodGet, Path: "/admin/roles"}, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// UserRoles fetches the role names held by a user.
func (c *Client) UserRoles(ctx context.Context, sess *models.Session, userID string) ([]string, error) {
	roles := []string{}
	call := Call{Method: http.MethodGet, Path: "/admin/users/" + escape(userID) + "/roles", Route: "/admin/users/{id}/roles"}
	if err := c.Do(ctx, sess, call, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

// SetUserRoles replaces the role set of a user.
func (c *Client) SetUserRoles(ctx context.Context, sess *models.Session, userID string, in models.RoleAssignment) error {
	call := Call{Method: http.MethodPut, Path: "/admin/users/" + escape(userID) + "/roles", Route: "/admin/users/{id}/roles", Body: in}
	return c.Do(ctx, sess, call, nil)
}

// Report fetches an analytics report as raw JSON.
func (c *Client) Report(ctx context.Context, sess *models.Session, name string, query url.Values) (json.RawMessage, error) {
	var raw json.RawMessage
	call := Call{Method: http.MethodGet, Path: "/reports/" + name, Route: "/reports/" + name, Query: query}
	if err := c.Do(ctx, sess, call, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
