package backend

import (
	"context"
	"net/http"

	"github.com/noah-isme/changedesk-api/internal/models"
)

// ListChangeRequests fetches the full change request collection.
func (c *Client) ListChangeRequests(ctx context.Context, sess *models.Session) ([]models.ChangeRequest, error) {
	items := []models.ChangeRequest{}
	if err := c.Do(ctx, sess, Call{Method: http.MethodGet, Path: "/change-requests"}, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetChangeRequest fetches one change request.
func (c *Client) GetChangeRequest(ctx context.Context, sess *models.Session, id string) (*models.ChangeRequest, error) {
	var cr models.ChangeRequest
	call := Call{Method: http.MethodGet, Path: "/change-requests/" + escape(id), Route: "/change-requests/{id}"}
	if err := c.Do(ctx, sess, call, &cr); err != nil {
		return nil, err
	}
	return &cr, nil
}

// CreateChangeRequest creates a Draft change request.
func (c *Client) CreateChangeRequest(ctx context.Context, sess *models.Session, in models.ChangeRequestInput) (*models.ChangeRequest, error) {
	var cr models.ChangeRequest
	if err := c.Do(ctx, sess, Call{Method: http.MethodPost, Path: "/change-requests", Body: in}, &cr); err != nil {
		return nil, err
	}
	return &cr, nil
}

// UpdateChangeRequest replaces the editable fields of a Draft change request.
func (c *Client) UpdateChangeRequest(ctx context.Context, sess *models.Session, id string, in models.ChangeRequestInput) error {
	call := Call{Method: http.MethodPut, Path: "/change-requests/" + escape(id), Route: "/change-requests/{id}", Body: in}
	return c.Do(ctx, sess, call, nil)
}

// ChangeRequestAction builds the call for a change request action sub-path.
func ChangeRequestAction(id, subPath string, body interface{}) Call {
	return Call{
		Method: http.MethodPost,
		Path:   "/change-requests/" + escape(id) + "/" + subPath,
		Route:  "/change-requests/{id}/" + subPath,
		Body:   body,
	}
}
