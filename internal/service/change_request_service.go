package service

import (
	"context"
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/changedesk-api/internal/dispatch"
	"github.com/noah-isme/changedesk-api/internal/dto"
	"github.com/noah-isme/changedesk-api/internal/filter"
	"github.com/noah-isme/changedesk-api/internal/models"
	"github.com/noah-isme/changedesk-api/internal/refresh"
	"github.com/noah-isme/changedesk-api/internal/validation"
	"github.com/noah-isme/changedesk-api/internal/workflow"
	appErrors "github.com/noah-isme/changedesk-api/pkg/errors"
)

type changeRequestBackend interface {
	ListChangeRequests(ctx context.Context, sess *models.Session) ([]models.ChangeRequest, error)
	GetChangeRequest(ctx context.Context, sess *models.Session, id string) (*models.ChangeRequest, error)
	CreateChangeRequest(ctx context.Context, sess *models.Session, in models.ChangeRequestInput) (*models.ChangeRequest, error)
	UpdateChangeRequest(ctx context.Context, sess *models.Session, id string, in models.ChangeRequestInput) error
}

type changeDispatcher interface {
	ChangeRequest(ctx context.Context, sess *models.Session, id string, cmd dispatch.ChangeCommand) (models.ChangeRequest, error)
}

var errNotEditable = appErrors.Clone(appErrors.ErrActionNotAllowed, "only draft change requests can be edited")

// ChangeRequestService serves change request reads, edits and workflow actions.
type ChangeRequestService struct {
	backend    changeRequestBackend
	dispatcher changeDispatcher
	validate   *validator.Validate
	logger     *zap.Logger
}

// NewChangeRequestService constructs the service.
func NewChangeRequestService(backend changeRequestBackend, dispatcher changeDispatcher, validate *validator.Validate, logger *zap.Logger) *ChangeRequestService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChangeRequestService{backend: backend, dispatcher: dispatcher, validate: validate, logger: logger}
}

// List fetches the whole collection and applies f locally.
func (s *ChangeRequestService) List(ctx context.Context, sess *models.Session, f filter.ChangeRequestFilter) ([]models.ChangeRequest, error) {
	items, err := s.backend.ListChangeRequests(ctx, sess)
	if err != nil {
		return nil, err
	}
	if f.Empty() {
		return items, nil
	}
	return f.Apply(items), nil
}

// Get returns one change request with its available actions.
func (s *ChangeRequestService) Get(ctx context.Context, sess *models.Session, id string) (*dto.ChangeRequestView, error) {
	cr, err := s.backend.GetChangeRequest(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	return changeRequestView(*cr), nil
}

// Create validates and creates a Draft change request.
func (s *ChangeRequestService) Create(ctx context.Context, sess *models.Session, in models.ChangeRequestInput) (*dto.ChangeRequestView, error) {
	if err := validation.Struct(s.validate, in); err != nil {
		return nil, err
	}
	cr, err := s.backend.CreateChangeRequest(ctx, sess, in)
	if err != nil {
		return nil, err
	}
	s.logger.Info("change request created", zap.String("change_request_id", cr.ID), zap.String("user_id", sess.UserID()))
	return changeRequestView(*cr), nil
}

// Update replaces the content of a Draft change request, then reloads it once.
func (s *ChangeRequestService) Update(ctx context.Context, sess *models.Session, id string, in models.ChangeRequestInput) (*dto.ChangeRequestView, error) {
	if err := validation.Struct(s.validate, in); err != nil {
		return nil, err
	}
	view := refresh.New(func(ctx context.Context) (models.ChangeRequest, error) {
		cr, err := s.backend.GetChangeRequest(ctx, sess, id)
		if err != nil {
			return models.ChangeRequest{}, err
		}
		return *cr, nil
	})
	current, err := view.Load(ctx)
	if err != nil {
		return nil, err
	}
	if !workflow.Editable(current) {
		return nil, errNotEditable
	}
	updated, err := view.Mutate(ctx, func(ctx context.Context, _ models.ChangeRequest) error {
		return s.backend.UpdateChangeRequest(ctx, sess, id, in)
	})
	if err != nil {
		return nil, err
	}
	return changeRequestView(updated), nil
}

// Act decodes and dispatches a workflow action, returning the reloaded view.
func (s *ChangeRequestService) Act(ctx context.Context, sess *models.Session, id, action string, body json.RawMessage) (*dto.ChangeRequestView, error) {
	cmd, err := dispatch.DecodeChangeCommand(action, body)
	if err != nil {
		return nil, err
	}
	cr, err := s.dispatcher.ChangeRequest(ctx, sess, id, cmd)
	if err != nil {
		return nil, err
	}
	return changeRequestView(cr), nil
}
