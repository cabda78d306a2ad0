package backend

import (
	"context"
	"net/http"

	"github.com/noah-isme/changedesk-api/internal/models"
)

// ListTasks fetches tasks, optionally scoped to a project.
func (c *Client) ListTasks(ctx context.Context, sess *models.Session, projectID string) ([]models.Task, error) {
	items := []models.Task{}
	call := Call{Method: http.MethodGet, Path: "/tasks"}
	if projectID != "" {
		call = Call{Method: http.MethodGet, Path: "/projects/" + escape(projectID) + "/tasks", Route: "/projects/{id}/tasks"}
	}
	if err := c.Do(ctx, sess, call, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetTask fetches one task.
func (c *Client) GetTask(ctx context.Context, sess *models.Session, id string) (*models.Task, error) {
	var task models.Task
	if err := c.Do(ctx, sess, Call{Method: http.MethodGet, Path: "/tasks/" + escape(id), Route: "/tasks/{id}"}, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// CreateTask creates a NotStarted task.
func (c *Client) CreateTask(ctx context.Context, sess *models.Session, in models.TaskInput) (*models.Task, error) {
	var task models.Task
	if err := c.Do(ctx, sess, Call{Method: http.MethodPost, Path: "/tasks", Body: in}, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Checklist fetches the ordered checklist of a task.
func (c *Client) Checklist(ctx context.Context, sess *models.Session, taskID string) ([]models.ChecklistItem, error) {
	items := []models.ChecklistItem{}
	call := Call{Method: http.MethodGet, Path: "/tasks/" + escape(taskID) + "/checklist", Route: "/tasks/{id}/checklist"}
	if err := c.Do(ctx, sess, call, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Activities fetches the task timeline.
func (c *Client) Activities(ctx context.Context, sess *models.Session, taskID string) ([]models.TaskActivity, error) {
	items := []models.TaskActivity{}
	call := Call{Method: http.MethodGet, Path: "/tasks/" + escape(taskID) + "/activities", Route: "/tasks/{id}/activities"}
	if err := c.Do(ctx, sess, call, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// TaskAction builds the call for a task action sub-path.
func TaskAction(id, subPath string, body interface{}) Call {
	return Call{
		Method: http.MethodPost,
		Path:   "/tasks/" + escape(id) + "/" + subPath,
		Route:  "/tasks/{id}/" + subPath,
		Body:   body,
	}
}

// ToggleChecklistItem builds the call flipping one checklist item.
func ToggleChecklistItem(taskID, itemID string) Call {
	return Call{
		Method: http.MethodPost,
		Path:   "/tasks/" + escape(taskID) + "/checklist/" + escape(itemID) + "/toggle",
		Route:  "/tasks/{id}/checklist/{itemId}/toggle",
	}
}
