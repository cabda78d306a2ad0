package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/changedesk-api/internal/dto"
	"github.com/noah-isme/changedesk-api/internal/middleware"
	"github.com/noah-isme/changedesk-api/internal/models"
	"github.com/noah-isme/changedesk-api/pkg/response"
)

type reportService interface {
	Report(ctx context.Context, sess *models.Session, name string, query url.Values) (json.RawMessage, bool, error)
	Dashboard(ctx context.Context, sess *models.Session) (*dto.DashboardResponse, error)
}

// ReportHandler exposes reporting endpoints.
type ReportHandler struct {
	reports reportService
}

// NewReportHandler constructs handler.
func NewReportHandler(reports reportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Report godoc
// @Summary Upstream report
// @Description Relays a named report; responses are cached per user
// @Tags Reports
// @Produce json
// @Param name path string true "Report name, e.g. change-requests/summary"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /reports/{name} [get]
func (h *ReportHandler) Report(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	raw, hit, err := h.reports.Report(c.Request.Context(), sess, c.Param("name"), c.Request.URL.Query())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, raw, nil, middleware.ResponseMeta(c))
}

// Dashboard godoc
// @Summary Landing page reports
// @Description Fetches the configured reports in parallel; failed reports are listed under errors
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope{data=dto.DashboardResponse}
// @Router /dashboard [get]
func (h *ReportHandler) Dashboard(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	dashboard, err := h.reports.Dashboard(c.Request.Context(), sess)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dashboard, nil, middleware.ResponseMeta(c))
}
