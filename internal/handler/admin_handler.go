package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/changedesk-api/internal/dto"
	"github.com/noah-isme/changedesk-api/internal/models"
	"github.com/noah-isme/changedesk-api/internal/repository"
	"github.com/noah-isme/changedesk-api/pkg/response"
)

type adminService interface {
	Departments(ctx context.Context, sess *models.Session) ([]models.Department, error)
	CreateDepartment(ctx context.Context, sess *models.Session, in models.DepartmentInput) (*models.Department, error)
	SearchUsers(ctx context.Context, sess *models.Session, search string, limit int) ([]dto.UserMatch, error)
	Roles(ctx context.Context, sess *models.Session) ([]models.Role, error)
	UserRoles(ctx context.Context, sess *models.Session, userID string) ([]string, error)
	SetUserRoles(ctx context.Context, sess *models.Session, userID string, in models.RoleAssignment) ([]string, error)
}

type actionLogReader interface {
	List(ctx context.Context, filter repository.ActionLogFilter) ([]models.ActionLog, error)
}

// AdminHandler exposes departments, the user picker, role management and the action log.
type AdminHandler struct {
	service adminService
	audit   actionLogReader
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(svc adminService, audit actionLogReader) *AdminHandler {
	return &AdminHandler{service: svc, audit: audit}
}

// Departments godoc
// @Summary List departments
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope{data=[]models.Department}
// @Router /departments [get]
func (h *AdminHandler) Departments(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	items, err := h.service.Departments(c.Request.Context(), sess)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// CreateDepartment godoc
// @Summary Create department
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body models.DepartmentInput true "Department"
// @Success 201 {object} response.Envelope{data=models.Department}
// @Router /departments [post]
func (h *AdminHandler) CreateDepartment(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var in models.DepartmentInput
	if !bindJSON(c, &in, "invalid department payload") {
		return
	}
	dept, err := h.service.CreateDepartment(c.Request.Context(), sess, in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dept)
}

// SearchUsers godoc
// @Summary Assignee picker
// @Description Fuzzy match active users by name or email
// @Tags Admin
// @Produce json
// @Param search query string false "Partial name or email"
// @Param limit query int false "Maximum matches"
// @Success 200 {object} response.Envelope{data=[]dto.UserMatch}
// @Router /users [get]
func (h *AdminHandler) SearchUsers(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	matches, err := h.service.SearchUsers(c.Request.Context(), sess, c.Query("search"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, matches, nil)
}

// Roles godoc
// @Summary Assignable roles
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope{data=[]models.Role}
// @Router /admin/roles [get]
func (h *AdminHandler) Roles(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	roles, err := h.service.Roles(c.Request.Context(), sess)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roles, nil)
}

// UserRoles godoc
// @Summary Roles of a user
// @Tags Admin
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope{data=[]string}
// @Router /admin/users/{id}/roles [get]
func (h *AdminHandler) UserRoles(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	roles, err := h.service.UserRoles(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roles, nil)
}

// SetUserRoles godoc
// @Summary Replace the roles of a user
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param payload body models.RoleAssignment true "Roles"
// @Success 200 {object} response.Envelope{data=[]string}
// @Router /admin/users/{id}/roles [put]
func (h *AdminHandler) SetUserRoles(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var in models.RoleAssignment
	if !bindJSON(c, &in, "invalid role payload") {
		return
	}
	roles, err := h.service.SetUserRoles(c.Request.Context(), sess, c.Param("id"), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roles, nil)
}

// ActionLog godoc
// @Summary Dispatched action history
// @Tags Admin
// @Produce json
// @Param entity query string false "Entity kind"
// @Param entityId query string false "Entity ID"
// @Param userId query string false "Acting user"
// @Param limit query int false "Maximum rows"
// @Success 200 {object} response.Envelope{data=[]models.ActionLog}
// @Failure 404 {object} response.Envelope
// @Router /admin/action-log [get]
func (h *AdminHandler) ActionLog(c *gin.Context) {
	if _, ok := sessionFromContext(c); !ok {
		return
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	entries, err := h.audit.List(c.Request.Context(), repository.ActionLogFilter{
		Entity:   c.Query("entity"),
		EntityID: c.Query("entityId"),
		UserID:   c.Query("userId"),
		Limit:    limit,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil, listMeta(len(entries), nil))
}
