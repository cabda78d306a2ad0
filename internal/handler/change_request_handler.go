package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/changedesk-api/internal/dto"
	"github.com/noah-isme/changedesk-api/internal/filter"
	"github.com/noah-isme/changedesk-api/internal/models"
	"github.com/noah-isme/changedesk-api/internal/service"
	"github.com/noah-isme/changedesk-api/pkg/response"
)

type changeRequestService interface {
	List(ctx context.Context, sess *models.Session, f filter.ChangeRequestFilter) ([]models.ChangeRequest, error)
	Get(ctx context.Context, sess *models.Session, id string) (*dto.ChangeRequestView, error)
	Create(ctx context.Context, sess *models.Session, in models.ChangeRequestInput) (*dto.ChangeRequestView, error)
	Update(ctx context.Context, sess *models.Session, id string, in models.ChangeRequestInput) (*dto.ChangeRequestView, error)
	Act(ctx context.Context, sess *models.Session, id, action string, body json.RawMessage) (*dto.ChangeRequestView, error)
}

type changeRequestExporter interface {
	ChangeRequests(ctx context.Context, sess *models.Session, f filter.ChangeRequestFilter, rawFormat string) (*service.ExportFile, error)
}

// ChangeRequestHandler exposes change request endpoints.
type ChangeRequestHandler struct {
	service  changeRequestService
	exporter changeRequestExporter
}

// NewChangeRequestHandler constructs the handler.
func NewChangeRequestHandler(svc changeRequestService, exporter changeRequestExporter) *ChangeRequestHandler {
	return &ChangeRequestHandler{service: svc, exporter: exporter}
}

// List godoc
// @Summary List change requests
// @Tags ChangeRequests
// @Produce json
// @Param search query string false "Free text over title and description"
// @Param status query []string false "Status filter" collectionFormat(multi)
// @Param changeType query []string false "Change type filter" collectionFormat(multi)
// @Param priority query []string false "Priority filter" collectionFormat(multi)
// @Param riskLevel query []string false "Risk level filter" collectionFormat(multi)
// @Param startDate query string false "Created on or after"
// @Param endDate query string false "Created on or before"
// @Success 200 {object} response.Envelope{data=[]models.ChangeRequest}
// @Router /change-requests [get]
func (h *ChangeRequestHandler) List(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	f, err := filter.ParseChangeRequestFilter(c.Request.URL.Query())
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

// Export godoc
// @Summary Export change requests
// @Tags ChangeRequests
// @Produce octet-stream
// @Param format query string false "csv, pdf or xlsx"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /change-requests/export [get]
func (h *ChangeRequestHandler) Export(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	f, err := filter.ParseChangeRequestFilter(c.Request.URL.Query())
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exporter.ChangeRequests(c.Request.Context(), sess, f, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

// Get godoc
// @Summary Get change request
// @Tags ChangeRequests
// @Produce json
// @Param id path string true "Change request ID"
// @Success 200 {object} response.Envelope{data=dto.ChangeRequestView}
// @Failure 404 {object} response.Envelope
// @Router /change-requests/{id} [get]
func (h *ChangeRequestHandler) Get(c *gin.Context) {
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
// @Summary Create change request
// @Tags ChangeRequests
// @Accept json
// @Produce json
// @Param payload body models.ChangeRequestInput true "Change request"
// @Success 201 {object} response.Envelope{data=dto.ChangeRequestView}
// @Failure 400 {object} response.Envelope
// @Router /change-requests [post]
func (h *ChangeRequestHandler) Create(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var in models.ChangeRequestInput
	if !bindJSON(c, &in, "invalid change request payload") {
		return
	}
	view, err := h.service.Create(c.Request.Context(), sess, in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, view)
}

// Update godoc
// @Summary Edit a draft change request
// @Tags ChangeRequests
// @Accept json
// @Produce json
// @Param id path string true "Change request ID"
// @Param payload body models.ChangeRequestInput true "Change request"
// @Success 200 {object} response.Envelope{data=dto.ChangeRequestView}
// @Failure 409 {object} response.Envelope
// @Router /change-requests/{id} [put]
func (h *ChangeRequestHandler) Update(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var in models.ChangeRequestInput
	if !bindJSON(c, &in, "invalid change request payload") {
		return
	}
	view, err := h.service.Update(c.Request.Context(), sess, c.Param("id"), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Act godoc
// @Summary Run a workflow action
// @Description Dispatches the action, then returns the reloaded change request
// @Tags ChangeRequests
// @Accept json
// @Produce json
// @Param id path string true "Change request ID"
// @Param action path string true "Action name, e.g. approve"
// @Success 200 {object} response.Envelope{data=dto.ChangeRequestView}
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /change-requests/{id}/actions/{action} [post]
func (h *ChangeRequestHandler) Act(c *gin.Context) {
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
