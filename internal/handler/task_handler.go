package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/changedesk-api/internal/dto"
	"github.com/noah-isme/changedesk-api/internal/filter"
	"github.com/noah-isme/changedesk-api/internal/models"
	"github.com/noah-isme/changedesk-api/pkg/response"
)

type taskService interface {
	List(ctx context.Context, sess *models.Session, f filter.TaskFilter) ([]models.Task, error)
	Get(ctx context.Context, sess *models.Session, id string) (*dto.TaskView, error)
	Create(ctx context.Context, sess *models.Session, in models.TaskInput) (*dto.TaskView, error)
	Act(ctx context.Context, sess *models.Session, id, action string, body json.RawMessage) (*dto.TaskView, error)
	Checklist(ctx context.Context, sess *models.Session, id string) ([]models.ChecklistItem, error)
	Activities(ctx context.Context, sess *models.Session, id string) ([]models.TaskActivity, error)
}

// TaskHandler exposes task endpoints.
type TaskHandler struct {
	service taskService
}

// NewTaskHandler constructs the handler.
func NewTaskHandler(svc taskService) *TaskHandler {
	return &TaskHandler{service: svc}
}

// List godoc
// @Summary List tasks
// @Tags Tasks
// @Produce json
// @Param projectId query string false "Project scope"
// @Param status query []string false "Status filter" collectionFormat(multi)
// @Param priority query []string false "Priority filter" collectionFormat(multi)
// @Param assigneeId query string false "Assigned user"
// @Param search query string false "Free text"
// @Success 200 {object} response.Envelope{data=[]models.Task}
// @Router /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	f, err := filter.ParseTaskFilter(c.Request.URL.Query())
	if err != nil {
		response.Error(c, err)
		return
	}
	items, err := h.service.List(c.Request.Context(), sess, f)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil, listMeta(len(items), f.Values()))
}

// Get godoc
// @Summary Get task
// @Tags Tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} response.Envelope{data=dto.TaskView}
// @Router /tasks/{id} [get]
func (h *TaskHandler) Get(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	view, err := h.service.Get(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Create godoc
// @Summary Create task
// @Tags Tasks
// @Accept json
// @Produce json
// @Param payload body models.TaskInput true "Task"
// @Success 201 {object} response.Envelope{data=dto.TaskView}
// @Router /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var in models.TaskInput
	if !bindJSON(c, &in, "invalid task payload") {
		return
	}
	view, err := h.service.Create(c.Request.Context(), sess, in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, view)
}

// Act godoc
// @Summary Run a task action or operation
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param action path string true "Action name, e.g. claim or log-time"
// @Success 200 {object} response.Envelope{data=dto.TaskView}
// @Failure 409 {object} response.Envelope
// @Router /tasks/{id}/actions/{action} [post]
func (h *TaskHandler) Act(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	body, ok := actionBody(c)
	if !ok {
		return
	}
	view, err := h.service.Act(c.Request.Context(), sess, c.Param("id"), c.Param("action"), body)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Checklist godoc
// @Summary Task checklist
// @Tags Tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} response.Envelope{data=[]models.ChecklistItem}
// @Router /tasks/{id}/checklist [get]
func (h *TaskHandler) Checklist(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	items, err := h.service.Checklist(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Activities godoc
// @Summary Task activity feed
// @Tags Tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} response.Envelope{data=[]models.TaskActivity}
// @Router /tasks/{id}/activities [get]
func (h *TaskHandler) Activities(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	items, err := h.service.Activities(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}
