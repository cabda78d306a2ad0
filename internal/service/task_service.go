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
	"github.com/noah-isme/changedesk-api/internal/validation"
)

type taskBackend interface {
	ListTasks(ctx context.Context, sess *models.Session, projectID string) ([]models.Task, error)
	GetTask(ctx context.Context, sess *models.Session, id string) (*models.Task, error)
	CreateTask(ctx context.Context, sess *models.Session, in models.TaskInput) (*models.Task, error)
	Checklist(ctx context.Context, sess *models.Session, taskID string) ([]models.ChecklistItem, error)
	Activities(ctx context.Context, sess *models.Session, taskID string) ([]models.TaskActivity, error)
}

type taskDispatcher interface {
	Task(ctx context.Context, sess *models.Session, id string, cmd dispatch.TaskCommand) (models.Task, error)
}

// TaskService serves task reads, creation, status actions and operations.
type TaskService struct {
	backend    taskBackend
	dispatcher taskDispatcher
	validate   *validator.Validate
	logger     *zap.Logger
}

// NewTaskService constructs the service.
func NewTaskService(backend taskBackend, dispatcher taskDispatcher, validate *validator.Validate, logger *zap.Logger) *TaskService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{backend: backend, dispatcher: dispatcher, validate: validate, logger: logger}
}

// List fetches tasks, scoped to a project when the filter names one, and filters them locally.
func (s *TaskService) List(ctx context.Context, sess *models.Session, f filter.TaskFilter) ([]models.Task, error) {
	items, err := s.backend.ListTasks(ctx, sess, f.ProjectID)
	if err != nil {
		return nil, err
	}
	return f.Apply(items), nil
}

// Get returns one task with its actions and operations.
func (s *TaskService) Get(ctx context.Context, sess *models.Session, id string) (*dto.TaskView, error) {
	task, err := s.backend.GetTask(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	return taskView(*task), nil
}

// Create validates and creates a task.
func (s *TaskService) Create(ctx context.Context, sess *models.Session, in models.TaskInput) (*dto.TaskView, error) {
	if err := validation.Struct(s.validate, in); err != nil {
		return nil, err
	}
	task, err := s.backend.CreateTask(ctx, sess, in)
	if err != nil {
		return nil, err
	}
	s.logger.Info("task created", zap.String("task_id", task.ID), zap.String("project_id", task.ProjectID))
	return taskView(*task), nil
}

// Act decodes and dispatches a status action or operation.
func (s *TaskService) Act(ctx context.Context, sess *models.Session, id, action string, body json.RawMessage) (*dto.TaskView, error) {
	cmd, err := dispatch.DecodeTaskCommand(action, body)
	if err != nil {
		return nil, err
	}
	task, err := s.dispatcher.Task(ctx, sess, id, cmd)
	if err != nil {
		return nil, err
	}
	return taskView(task), nil
}

// Checklist returns the task checklist in upstream order.
func (s *TaskService) Checklist(ctx context.Context, sess *models.Session, id string) ([]models.ChecklistItem, error) {
	return s.backend.Checklist(ctx, sess, id)
}

// Activities returns the read-only task timeline.
func (s *TaskService) Activities(ctx context.Context, sess *models.Session, id string) ([]models.TaskActivity, error) {
	return s.backend.Activities(ctx, sess, id)
}
