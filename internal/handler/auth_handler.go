package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/changedesk-api/internal/dto"
	"github.com/noah-isme/changedesk-api/internal/middleware"
	"github.com/noah-isme/changedesk-api/internal/models"
	"github.com/noah-isme/changedesk-api/pkg/response"
)

type authService interface {
	Login(ctx context.Context, creds models.Credentials) (*models.Session, error)
	Me(ctx context.Context, sess *models.Session) (*models.User, error)
	Logout(ctx context.Context, sess *models.Session) error
}

// CookieConfig controls the session cookie written on login.
type CookieConfig struct {
	Source middleware.SessionSource
	Secure bool
}

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service authService
	cookie  CookieConfig
	now     func() time.Time
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authService, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{service: svc, cookie: cookie, now: time.Now}
}

// Login godoc
// @Summary Open a session
// @Description Relay credentials upstream and open a gateway session
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.Credentials true "Login payload"
// @Success 200 {object} response.Envelope{data=dto.SessionResponse}
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var creds models.Credentials
	if !bindJSON(c, &creds, "invalid login payload") {
		return
	}

	sess, err := h.service.Login(c.Request.Context(), creds)
	if err != nil {
		response.Error(c, err)
		return
	}

	if h.cookie.Source.Header != "" {
		c.Header(h.cookie.Source.Header, sess.ID)
	}
	h.setCookie(c, sess.ID, int(sess.ExpiresAt.Sub(h.now()).Seconds()))
	response.JSON(c, http.StatusOK, dto.SessionResponse{
		SessionID: sess.ID,
		ExpiresAt: sess.ExpiresAt.UTC().Format(time.RFC3339),
		User:      sess.User,
	}, nil)
}

// Me godoc
// @Summary Current user
// @Description Refresh and return the profile bound to the session
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope{data=models.User}
// @Failure 401 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	user, err := h.service.Me(c.Request.Context(), sess)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// Logout godoc
// @Summary Close the session
// @Tags Authentication
// @Success 204
// @Failure 401 {object} response.Envelope
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	if err := h.service.Logout(c.Request.Context(), sess); err != nil {
		response.Error(c, err)
		return
	}
	h.setCookie(c, "", -1)
	response.NoContent(c)
}

func (h *AuthHandler) setCookie(c *gin.Context, value string, maxAge int) {
	if h.cookie.Source.Cookie == "" {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Source.Cookie, value, maxAge, "/", "", h.cookie.Secure, true)
}
