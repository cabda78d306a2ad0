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

type projectRequestService interface {
	List(ctx context.Context, sess *models.Session, f filter.ProjectRequestFilter) ([]models.ProjectRequest, error)
	Get(ctx context.Context, sess *models.Session, id string) (*dto.ProjectRequestView, error)
	Create(ctx context.Context, sess *models.Session, in models.ProjectRequestInput) (*dto.ProjectRequestView, error)
	Act(ctx context.Context, sess *models.Session, id, action string, body json.RawMessage) (*dto.ProjectRequestView, error)
}

type projectService interface {
	List(ctx context.Context, sess *models.Session, f filter.ProjectFilter) ([]models.Project, error)
	Get(ctx context.Context, sess *models.Session, id string) (*dto.ProjectView, error)
	Act(ctx context.Context, sess *models.Session, id, action string, body json.RawMessage) (*dto.ProjectView, error)
}

// ProjectHandler exposes project request and project endpoints.
type ProjectHandler struct {
	requests projectRequestService
	projects projectService
}

// NewProjectHandler constructs the handler.
func NewProjectHandler(requests projectRequestService, projects projectService) *ProjectHandler {
	return &ProjectHandler{requests: requests, projects: projects}
}

// ListRequests godoc
// @Summary List project requests
// @Tags Projects
// @Produce json
// @Param status query []string false "Status filter" collectionFormat(multi)
// @Param priority query []string false "Priority filter" collectionFormat(multi)
// @Param search query string false "Free text"
// @Success 200 {object} response.Envelope{data=[]models.ProjectRequest}
// @Router /project-requests [get]
func (h *ProjectHandler) ListRequests(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	f, err := filter.ParseProjectRequestFilter(c.Request.URL.Query())
	if err != nil {
		response.Error(c, err)
		return
	}
	items, err := h.requests.List(c.Request.Context(), sess, f)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil, listMeta(len(items), f.Values()))
}

// GetRequest godoc
// @Summary Get project request
// @Tags Projects
// @Produce json
// @Param id path string true "Project request ID"
// @Success 200 {object} response.Envelope{data=dto.ProjectRequestView}
// @Router /project-requests/{id} [get]
func (h *ProjectHandler) GetRequest(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	view, err := h.requests.Get(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// CreateRequest godoc
// @Summary Submit a project request
// @Tags Projects
// @Accept json
// @Produce json
// @Param payload body models.ProjectRequestInput true "Project request"
// @Success 201 {object} response.Envelope{data=dto.ProjectRequestView}
// @Router /project-requests [post]
func (h *ProjectHandler) CreateRequest(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var in models.ProjectRequestInput
	if !bindJSON(c, &in, "invalid project request payload") {
		return
	}
	view, err := h.requests.Create(c.Request.Context(), sess, in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, view)
}

// ActRequest godoc
// @Summary Run a project request action
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project request ID"
// @Param action path string true "Action name"
// @Success 200 {object} response.Envelope{data=dto.ProjectRequestView}
// @Router /project-requests/{id}/actions/{action} [post]
func (h *ProjectHandler) ActRequest(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	body, ok := actionBody(c)
	if !ok {
		return
	}
	view, err := h.requests.Act(c.Request.Context(), sess, c.Param("id"), c.Param("action"), body)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// ListProjects godoc
// @Summary List projects
// @Tags Projects
// @Produce json
// @Success 200 {object} response.Envelope{data=[]models.Project}
// @Router /projects [get]
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	f, err := filter.ParseProjectFilter(c.Request.URL.Query())
	if err != nil {
		response.Error(c, err)
		return
	}
	items, err := h.projects.List(c.Request.Context(), sess, f)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil, listMeta(len(items), f.Values()))
}

// GetProject godoc
// @Summary Get project with derived progress
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} response.Envelope{data=dto.ProjectView}
// @Router /projects/{id} [get]
func (h *ProjectHandler) GetProject(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	view, err := h.projects.Get(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// ActProject godoc
// @Summary Run a project action
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param action path string true "Action name"
// @Success 200 {object} response.Envelope{data=dto.ProjectView}
// @Router /projects/{id}/actions/{action} [post]
func (h *ProjectHandler) ActProject(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	body, ok := actionBody(c)
	if !ok {
		return
	}
	view, err := h.projects.Act(c.Request.Context(), sess, c.Param("id"), c.Param("action"), body)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}
