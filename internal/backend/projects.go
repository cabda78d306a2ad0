package backend

import (
	"context"
	"net/http"

	"github.com/noah-isme/changedesk-api/internal/models"
)

// ListProjects fetches every project.
func (c *Client) ListProjects(ctx context.Context, sess *models.Session) ([]models.Project, error) {
	items := []models.Project{}
	if err := c.Do(ctx, sess, Call{Method: http.MethodGet, Path: "/projects"}, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetProject fetches one project.
func (c *Client) GetProject(ctx context.Context, sess *models.Session, id string) (*models.Project, error) {
	var p models.Project
	if err := c.Do(ctx, sess, Call{Method: http.MethodGet, Path: "/projects/" + escape(id), Route: "/projects/{id}"}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ProjectAction builds the call for a project action sub-path.
func ProjectAction(id, subPath string, body interface{}) Call {
	return Call{
		Method: http.MethodPost,
		Path:   "/projects/" + escape(id) + "/" + subPath,
		Route:  "/projects/{id}/" + subPath,
		Body:   body,
	}
}

// ListProjectRequests fetches every project request.
func (c *Client) ListProjectRequests(ctx context.Context, sess *models.Session) ([]models.ProjectRequest, error) {
	items := []models.ProjectRequest{}
	if err := c.Do(ctx, sess, Call{Method: http.MethodGet, Path: "/project-requests"}, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetProjectRequest fetches one project request.
func (c *Client) GetProjectRequest(ctx context.Context, sess *models.Session, id string) (*models.ProjectRequest, error) {
	var pr models.ProjectRequest
	call := Call{Method: http.MethodGet, Path: "/project-requests/" + escape(id), Route: "/project-requests/{id}"}
	if err := c.Do(ctx, sess, call, &pr); err != nil {
		return nil, err
	}
	return &pr, nil
}

// CreateProjectRequest creates a Draft project request.
func (c *Client) CreateProjectRequest(ctx context.Context, sess *models.Session, in models.ProjectRequestInput) (*models.ProjectRequest, error) {
	var pr models.ProjectRequest
	if err := c.Do(ctx, sess, Call{Method: http.MethodPost, Path: "/project-requests", Body: in}, &pr); err != nil {
		return nil, err
	}
	return &pr, nil
}

// ProjectRequestAction builds the call for a project request action sub-path.
func ProjectRequestAction(id, subPath string, body interface{}) Call {
	return Call{
		Method: http.MethodPost,
		Path:   "/project-requests/" + escape(id) + "/" + subPath,
		Route:  "/project-requests/{id}/" + subPath,
		Body:   body,
	}
}
