package service

import (
	"context"
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/changedesk-api/internal/dispatch"
	"github.com/noah-isme/changedesk-api/internal/dto"
	"github.com/noah-isme/changedesk-api/internal/filter"
	"github.com/noah-isme/changedesk-api/internal/models"
	"github.com/noah-isme/changedesk-api/internal/validation"
)

type projectRequestBackend interface {
	ListProjectRequests(ctx context.Context, sess *models.Session) ([]models.ProjectRequest, error)
	GetProjectRequest(ctx context.Context, sess *models.Session, id string) (*models.ProjectRequest, error)
	CreateProjectRequest(ctx context.Context, sess *models.Session, in models.ProjectRequestInput) (*models.ProjectRequest, error)
}

type projectBackend interface {
	ListProjects(ctx context.Context, sess *models.Session) ([]models.Project, error)
	GetProject(ctx context.Context, sess *models.Session, id string) (*models.Project, error)
	ListTasks(ctx context.Context, sess *models.Session, projectID string) ([]models.Task, error)
}

type projectDispatcher interface {
	ProjectRequest(ctx context.Context, sess *models.Session, id string, cmd dispatch.ProjectRequestCommand) (models.ProjectRequest, error)
	Project(ctx context.Context, sess *models.Session, id string, cmd dispatch.ProjectCommand) (models.Project, error)
}

// ProjectRequestService serves project intake.
type ProjectRequestService struct {
	backend    projectRequestBackend
	dispatcher projectDispatcher
	validate   *validator.Validate
	logger     *zap.Logger
}

// NewProjectRequestService constructs the service.
func NewProjectRequestService(backend projectRequestBackend, dispatcher projectDispatcher, validate *validator.Validate, logger *zap.Logger) *ProjectRequestService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProjectRequestService{backend: backend, dispatcher: dispatcher, validate: validate, logger: logger}
}

// List fetches and filters project requests.
func (s *ProjectRequestService) List(ctx context.Context, sess *models.Session, f filter.ProjectRequestFilter) ([]models.ProjectRequest, error) {
	items, err := s.backend.ListProjectRequests(ctx, sess)
	if err != nil {
		return nil, err
	}
	return f.Apply(items), nil
}

// Get returns one project request with its actions.
func (s *ProjectRequestService) Get(ctx context.Context, sess *models.Session, id string) (*dto.ProjectRequestView, error) {
	pr, err := s.backend.GetProjectRequest(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	return projectRequestView(*pr), nil
}

// Create validates and creates a Draft project request.
func (s *ProjectRequestService) Create(ctx context.Context, sess *models.Session, in models.ProjectRequestInput) (*dto.ProjectRequestView, error) {
	if err := validation.Struct(s.validate, in); err != nil {
		return nil, err
	}
	pr, err := s.backend.CreateProjectRequest(ctx, sess, in)
	if err != nil {
		return nil, err
	}
	s.logger.Info("project request created", zap.String("project_request_id", pr.ID))
	return projectRequestView(*pr), nil
}

// Act decodes and dispatches an intake action.
func (s *ProjectRequestService) Act(ctx context.Context, sess *models.Session, id, action string, body json.RawMessage) (*dto.ProjectRequestView, error) {
	cmd, err := dispatch.DecodeProjectRequestCommand(action, body)
	if err != nil {
		return nil, err
	}
	pr, err := s.dispatcher.ProjectRequest(ctx, sess, id, cmd)
	if err != nil {
		return nil, err
	}
	return projectRequestView(pr), nil
}

// ProjectService serves projects and their derived progress.
type ProjectService struct {
	backend    projectBackend
	dispatcher projectDispatcher
	logger     *zap.Logger
}

// NewProjectService constructs the service.
func NewProjectService(backend projectBackend, dispatcher projectDispatcher, logger *zap.Logger) *ProjectService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProjectService{backend: backend, dispatcher: dispatcher, logger: logger}
}

// List fetches and filters projects.
func (s *ProjectService) List(ctx context.Context, sess *models.Session, f filter.ProjectFilter) ([]models.Project, error) {
	items, err := s.backend.ListProjects(ctx, sess)
	if err != nil {
		return nil, err
	}
	return f.Apply(items), nil
}

// Get fetches the project and its tasks concurrently and derives progress.
func (s *ProjectService) Get(ctx context.Context, sess *models.Session, id string) (*dto.ProjectView, error) {
	var (
		project *models.Project
		tasks   []models.Task
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.backend.GetProject(gctx, sess, id)
		project = p
		return err
	})
	g.Go(func() error {
		t, err := s.backend.ListTasks(gctx, sess, id)
		tasks = t
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	progress := models.ComputeProgress(tasks)
	return projectView(*project, &progress), nil
}

// Act decodes and dispatches a delivery action. Progress is not recomputed
// here; the caller reloads the project view when it needs it.
func (s *ProjectService) Act(ctx context.Context, sess *models.Session, id, action string, body json.RawMessage) (*dto.ProjectView, error) {
	cmd, err := dispatch.DecodeProjectCommand(action, body)
	if err != nil {
		return nil, err
	}
	p, err := s.dispatcher.Project(ctx, sess, id, cmd)
	if err != nil {
		return nil, err
	}
	return projectView(p, nil), nil
}
