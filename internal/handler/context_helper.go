package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/changedesk-api/internal/middleware"
	"github.com/noah-isme/changedesk-api/internal/models"
	appErrors "github.com/noah-isme/changedesk-api/pkg/errors"
	"github.com/noah-isme/changedesk-api/pkg/response"
)

// sessionFromContext returns the resolved session or writes a 401.
func sessionFromContext(c *gin.Context) (*models.Session, bool) {
	sess := middleware.CurrentSession(c)
	if sess == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}
	return sess, true
}

func bindJSON(c *gin.Context, dest interface{}, message string) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message))
		return false
	}
	return true
}

// maxActionBodyBytes caps the JSON payload of a single workflow action.
const maxActionBodyBytes = 1 << 20

// actionBody reads the optional JSON payload of a workflow action.
func actionBody(c *gin.Context) (json.RawMessage, bool) {
	if c.Request.Body != nil {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxActionBodyBytes)
	}
	raw, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusRequestEntityTooLarge, "action payload too large"))
			return nil, false
		}
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable action payload"))
		return nil, false
	}
	return json.RawMessage(raw), true
}

func queryInt(c *gin.Context, key string) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, key+" must be a non-negative integer"))
		return 0, false
	}
	return v, true
}

// listMeta reports the result size and the normalised filter that produced it.
func listMeta(count int, applied url.Values) map[string]interface{} {
	meta := map[string]interface{}{"count": count}
	if len(applied) > 0 {
		meta["filter"] = applied.Encode()
	}
	return meta
}
