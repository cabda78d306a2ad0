package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/changedesk-api/internal/dto"
	"github.com/noah-isme/changedesk-api/internal/models"
	appErrors "github.com/noah-isme/changedesk-api/pkg/errors"
)

var reportName = regexp.MustCompile(`^[a-z0-9-]+(/[a-z0-9-]+)*$`)

type reportBackend interface {
	Report(ctx context.Context, sess *models.Session, name string, query url.Values) (json.RawMessage, error)
}

// ReportServiceConfig tunes report caching and the dashboard composition.
type ReportServiceConfig struct {
	CacheTTL  time.Duration
	Dashboard []string
}

// ReportService proxies upstream analytics reports through a per-user cache.
type ReportService struct {
	backend reportBackend
	cache   *CacheService
	logger  *zap.Logger
	cfg     ReportServiceConfig
}

// NewReportService constructs the service. cache may be nil.
func NewReportService(backend reportBackend, cache *CacheService, logger *zap.Logger, cfg ReportServiceConfig) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{backend: backend, cache: cache, logger: logger, cfg: cfg}
}

// Report returns one named report. The second result reports a cache hit.
func (s *ReportService) Report(ctx context.Context, sess *models.Session, name string, query url.Values) (json.RawMessage, bool, error) {
	name = strings.Trim(name, "/")
	if !reportName.MatchString(name) {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid report name %q", name))
	}
	key := reportCacheKey(sess.UserID(), name, query)
	raw, hit, err := Remember(ctx, s.cache, key, s.cfg.CacheTTL, func(ctx context.Context) (json.RawMessage, error) {
		return s.backend.Report(ctx, sess, name, query)
	})
	if err != nil {
		return nil, false, err
	}
	return raw, hit, nil
}

// Dashboard fetches the configured reports concurrently. A failing report is
// reported in Errors without failing the others; 401 fails the whole call.
func (s *ReportService) Dashboard(ctx context.Context, sess *models.Session) (*dto.DashboardResponse, error) {
	resp := &dto.DashboardResponse{
		Reports: make(map[string]json.RawMessage, len(s.cfg.Dashboard)),
		Errors:  map[string]string{},
	}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, name := range s.cfg.Dashboard {
		name := name
		g.Go(func() error {
			raw, _, err := s.Report(gctx, sess, name, nil)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if appErrors.FromError(err).Code == appErrors.ErrUnauthorized.Code {
					return err
				}
				s.logger.Warn("dashboard report failed", zap.String("report", name), zap.Error(err))
				resp.Errors[name] = appErrors.Message(err)
				return nil
			}
			resp.Reports[name] = raw
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if len(resp.Errors) == 0 {
		resp.Errors = nil
	}
	return resp, nil
}

// InvalidateUser drops every cached report for a user, used on logout.
func (s *ReportService) InvalidateUser(ctx context.Context, userID string) error {
	return s.cache.Invalidate(ctx, "reports:"+userID+":*")
}

func reportCacheKey(userID, name string, query url.Values) string {
	key := "reports:" + userID + ":" + name
	if encoded := query.Encode(); encoded != "" {
		key += "?" + encoded
	}
	return key
}
