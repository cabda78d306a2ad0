// Package backend is the gateway's only path to the upstream REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/changedesk-api/internal/models"
	"github.com/noah-isme/changedesk-api/pkg/config"
	appErrors "github.com/noah-isme/changedesk-api/pkg/errors"
	"github.com/noah-isme/changedesk-api/pkg/middleware/requestid"
)

const maxResponseBytes = 8 << 20

// Observer receives one sample per upstream round trip.
type Observer interface {
	ObserveUpstream(method, route string, status int, duration time.Duration)
}

// UnauthorizedHandler is invoked when the upstream rejects a session's token.
type UnauthorizedHandler func(ctx context.Context, sess *models.Session)

// Call describes exactly one upstream request.
type Call struct {
	Method string
	Path   string
	Query  url.Values
	Body   interface{}

	// Route is the templated path used as a metrics label; Path is used when empty.
	Route string
}

// Client issues authenticated JSON calls to the upstream API.
type Client struct {
	baseURL        string
	http           *http.Client
	logger         *zap.Logger
	observer       Observer
	onUnauthorized UnauthorizedHandler
}

// Option customises the client.
type Option func(*Client)

// WithHTTPClient overrides the transport, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver records round-trip metrics.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// WithUnauthorizedHandler registers the hook that clears a session on 401.
func WithUnauthorizedHandler(h UnauthorizedHandler) Option {
	return func(c *Client) {
		c.onUnauthorized = h
	}
}

// New constructs a client against cfg.BaseURL with a single client-wide timeout.
func New(cfg config.BackendConfig, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetUnauthorizedHandler wires the session hook after construction.
func (c *Client) SetUnauthorizedHandler(h UnauthorizedHandler) {
	c.onUnauthorized = h
}

// Do performs call on behalf of sess and decodes a successful body into out.
// sess may be nil only for unauthenticated endpoints such as login.
func (c *Client) Do(ctx context.Context, sess *models.Session, call Call, out interface{}) error {
	req, err := c.newRequest(ctx, sess, call)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build upstream request")
	}

	route := call.Route
	if route == "" {
		route = call.Path
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(call.Method, route, 0, time.Since(start))
		c.logger.Warn("upstream call failed",
			zap.String("method", call.Method),
			zap.String("route", route),
			zap.Error(err),
		)
		return appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, appErrors.GenericMessage)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	c.observe(call.Method, route, resp.StatusCode, time.Since(start))
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, appErrors.GenericMessage)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || len(bytes.TrimSpace(body)) == 0 {
			return nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			return appErrors.Wrap(err, appErrors.ErrBackendUnavailable.Code, appErrors.ErrBackendUnavailable.Status, "unexpected response from backend")
		}
		return nil
	}

	return c.failure(ctx, sess, call, route, resp.StatusCode, body)
}

func (c *Client) newRequest(ctx context.Context, sess *models.Session, call Call) (*http.Request, error) {
	target := c.baseURL + "/" + strings.TrimLeft(call.Path, "/")
	if len(call.Query) > 0 {
		target += "?" + call.Query.Encode()
	}

	var body io.Reader
	if call.Body != nil {
		payload, err := json.Marshal(call.Body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", call.Method, call.Path, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, call.Method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sess != nil && sess.Token != "" {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}
	if id := requestid.FromContext(ctx); id != "" {
		req.Header.Set(requestid.HeaderKey, id)
	}
	return req, nil
}

func (c *Client) failure(ctx context.Context, sess *models.Session, call Call, route string, status int, body []byte) error {
	message := ExtractMessage(body)

	switch {
	case status == http.StatusUnauthorized:
		if sess != nil && c.onUnauthorized != nil {
			c.onUnauthorized(ctx, sess)
		}
		return appErrors.Clone(appErrors.ErrUnauthorized, message)
	case status == http.StatusForbidden:
		c.logger.Warn("upstream forbade call",
			zap.String("method", call.Method),
			zap.String("route", route),
			zap.String("user_id", sess.UserID()),
			zap.String("message", message),
		)
		return appErrors.Clone(appErrors.ErrForbidden, message)
	case status == http.StatusNotFound:
		return appErrors.Clone(appErrors.ErrNotFound, message)
	case status >= http.StatusInternalServerError:
		c.logger.Error("upstream server error",
			zap.String("method", call.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.String("message", message),
		)
		return appErrors.Clone(appErrors.ErrBackendUnavailable, message)
	default:
		return appErrors.Clone(appErrors.WithStatus(appErrors.ErrBackendRejected, status), message)
	}
}

func (c *Client) observe(method, route string, status int, d time.Duration) {
	if c.observer != nil {
		c.observer.ObserveUpstream(method, route, status, d)
	}
}

// errorBody covers the three error shapes the upstream produces.
type errorBody struct {
	Message          string          `json:"message"`
	Errors           json.RawMessage `json:"errors"`
	ValidationErrors []struct {
		Identifier   string `json:"identifier"`
		ErrorMessage string `json:"errorMessage"`
	} `json:"validationErrors"`
}

// ExtractMessage picks the human readable message from an upstream error
// body: errors[0], then validationErrors[0].errorMessage, then message, then
// the generic fallback.
func ExtractMessage(body []byte) string {
	var parsed errorBody
	if len(bytes.TrimSpace(body)) == 0 || json.Unmarshal(body, &parsed) != nil {
		return appErrors.GenericMessage
	}

	var general []string
	if len(parsed.Errors) > 0 && json.Unmarshal(parsed.Errors, &general) == nil {
		if len(general) > 0 && strings.TrimSpace(general[0]) != "" {
			return general[0]
		}
	}
	if len(parsed.ValidationErrors) > 0 && strings.TrimSpace(parsed.ValidationErrors[0].ErrorMessage) != "" {
		return parsed.ValidationErrors[0].ErrorMessage
	}
	if strings.TrimSpace(parsed.Message) != "" {
		return parsed.Message
	}
	return appErrors.GenericMessage
}

func escape(id string) string {
	return url.PathEscape(id)
}
