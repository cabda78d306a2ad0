// Package dispatch turns typed action commands into exactly one upstream call
// followed by exactly one reload of the affected entity.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/changedesk-api/internal/backend"
	"github.com/noah-isme/changedesk-api/internal/models"
	"github.com/noah-isme/changedesk-api/internal/refresh"
	"github.com/noah-isme/changedesk-api/internal/validation"
	"github.com/noah-isme/changedesk-api/internal/workflow"
	appErrors "github.com/noah-isme/changedesk-api/pkg/errors"
)

// Entity names used in outcomes, logs and metrics.
const (
	EntityChangeRequest  = "change_request"
	EntityTask           = "task"
	EntityProjectRequest = "project_request"
	EntityProject        = "project"
)

// Backend is the slice of the upstream client the dispatcher needs.
type Backend interface {
	Do(ctx context.Context, sess *models.Session, call backend.Call, out interface{}) error
	GetChangeRequest(ctx context.Context, sess *models.Session, id string) (*models.ChangeRequest, error)
	GetTask(ctx context.Context, sess *models.Session, id string) (*models.Task, error)
	GetProjectRequest(ctx context.Context, sess *models.Session, id string) (*models.ProjectRequest, error)
	GetProject(ctx context.Context, sess *models.Session, id string) (*models.Project, error)
}

// Outcome describes one finished dispatch.
type Outcome struct {
	Session    *models.Session
	Entity     string
	EntityID   string
	Action     string
	FromStatus string
	ToStatus   string
	Result     string
	Err        error
	Duration   time.Duration
}

// Recorder observes dispatch outcomes. Implementations must not block.
type Recorder interface {
	RecordDispatch(ctx context.Context, outcome Outcome)
}

// Dispatcher validates, permission-checks and executes commands.
type Dispatcher struct {
	backend   Backend
	validate  *validator.Validate
	flight    *refresh.Flight
	recorders []Recorder
	logger    *zap.Logger
}

// Option configures the dispatcher.
type Option func(*Dispatcher)

// WithRecorder adds an outcome recorder.
func WithRecorder(r Recorder) Option {
	return func(d *Dispatcher) {
		if r != nil {
			d.recorders = append(d.recorders, r)
		}
	}
}

// WithLogger sets the dispatcher logger.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithValidator replaces the default validator.
func WithValidator(v *validator.Validate) Option {
	return func(d *Dispatcher) {
		if v != nil {
			d.validate = v
		}
	}
}

// New builds a dispatcher.
func New(b Backend, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		backend: b,
		flight:  refresh.NewFlight(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.validate == nil {
		d.validate = validation.New()
	}
	d.validate.RegisterStructValidation(validateSchedule, ScheduleChange{})
	return d
}

// target bundles everything the generic loop needs about one entity instance.
type target[T any] struct {
	entity  string
	id      string
	action  string
	payload interface{}
	call    backend.Call
	load    refresh.Loader[T]
	status  func(T) string
	allowed func(T) bool
	next    func(T) string
}

// ChangeRequest dispatches cmd against change request id.
func (d *Dispatcher) ChangeRequest(ctx context.Context, sess *models.Session, id string, cmd ChangeCommand) (models.ChangeRequest, error) {
	if cmd == nil {
		return models.ChangeRequest{}, appErrors.Clone(appErrors.ErrValidation, "missing action")
	}
	action := cmd.Action()
	return run(ctx, d, sess, target[models.ChangeRequest]{
		entity:  EntityChangeRequest,
		id:      id,
		action:  string(action),
		payload: cmd,
		call:    cmd.upstream(id),
		load: func(ctx context.Context) (models.ChangeRequest, error) {
			cr, err := d.backend.GetChangeRequest(ctx, sess, id)
			if err != nil {
				return models.ChangeRequest{}, err
			}
			return *cr, nil
		},
		status:  func(cr models.ChangeRequest) string { return string(cr.Status) },
		allowed: func(cr models.ChangeRequest) bool { return workflow.ChangeRequestFlow.Can(cr.Status, action) },
		next: func(cr models.ChangeRequest) string {
			to, _ := workflow.ChangeRequestFlow.Next(cr.Status, action)
			return string(to)
		},
	})
}

// Task dispatches cmd against task id.
func (d *Dispatcher) Task(ctx context.Context, sess *models.Session, id string, cmd TaskCommand) (models.Task, error) {
	if cmd == nil {
		return models.Task{}, appErrors.Clone(appErrors.ErrValidation, "missing action")
	}
	return run(ctx, d, sess, target[models.Task]{
		entity:  EntityTask,
		id:      id,
		action:  cmd.Name(),
		payload: cmd,
		call:    cmd.upstream(id),
		load: func(ctx context.Context) (models.Task, error) {
			t, err := d.backend.GetTask(ctx, sess, id)
			if err != nil {
				return models.Task{}, err
			}
			return *t, nil
		},
		status:  func(t models.Task) string { return string(t.Status) },
		allowed: cmd.allowed,
		next: func(t models.Task) string {
			if to, ok := workflow.TaskFlow.Next(t.Status, workflow.TaskAction(cmd.Name())); ok {
				return string(to)
			}
			return string(t.Status)
		},
	})
}

// ProjectRequest dispatches cmd against project request id.
func (d *Dispatcher) ProjectRequest(ctx context.Context, sess *models.Session, id string, cmd ProjectRequestCommand) (models.ProjectRequest, error) {
	if cmd == nil {
		return models.ProjectRequest{}, appErrors.Clone(appErrors.ErrValidation, "missing action")
	}
	action := cmd.Action()
	return run(ctx, d, sess, target[models.ProjectRequest]{
		entity:  EntityProjectRequest,
		id:      id,
		action:  string(action),
		payload: cmd,
		call:    cmd.upstream(id),
		load: func(ctx context.Context) (models.ProjectRequest, error) {
			pr, err := d.backend.GetProjectRequest(ctx, sess, id)
			if err != nil {
				return models.ProjectRequest{}, err
			}
			return *pr, nil
		},
		status:  func(pr models.ProjectRequest) string { return string(pr.Status) },
		allowed: func(pr models.ProjectRequest) bool { return workflow.ProjectRequestFlow.Can(pr.Status, action) },
		next: func(pr models.ProjectRequest) string {
			to, _ := workflow.ProjectRequestFlow.Next(pr.Status, action)
			return string(to)
		},
	})
}

// Project dispatches cmd against project id.
func (d *Dispatcher) Project(ctx context.Context, sess *models.Session, id string, cmd ProjectCommand) (models.Project, error) {
	if cmd == nil {
		return models.Project{}, appErrors.Clone(appErrors.ErrValidation, "missing action")
	}
	action := cmd.Action()
	return run(ctx, d, sess, target[models.Project]{
		entity:  EntityProject,
		id:      id,
		action:  string(action),
		payload: cmd,
		call:    cmd.upstream(id),
		load: func(ctx context.Context) (models.Project, error) {
			p, err := d.backend.GetProject(ctx, sess, id)
			if err != nil {
				return models.Project{}, err
			}
			return *p, nil
		},
		status:  func(p models.Project) string { return string(p.Status) },
		allowed: func(p models.Project) bool { return workflow.ProjectFlow.Can(p.Status, action) },
		next: func(p models.Project) string {
			to, _ := workflow.ProjectFlow.Next(p.Status, action)
			return string(to)
		},
	})
}

// run is the shared loop: validate, load, check the table, call once, reload once.
func run[T any](ctx context.Context, d *Dispatcher, sess *models.Session, t target[T]) (T, error) {
	start := time.Now()
	outcome := Outcome{Session: sess, Entity: t.entity, EntityID: t.id, Action: t.action}
	finish := func(result string, err error) {
		outcome.Result = result
		outcome.Err = err
		outcome.Duration = time.Since(start)
		d.record(ctx, outcome)
	}

	var zero T
	if err := validation.Struct(d.validate, t.payload); err != nil {
		finish(models.OutcomeInvalid, err)
		return zero, err
	}

	key := flightKey(sess, t.entity, t.id)
	if d.flight.InFlight(key) {
		err := appErrors.ErrRequestInFlight
		finish(models.OutcomeFailed, err)
		return zero, err
	}

	view := refresh.New(t.load, refresh.WithFlight(d.flight, key))
	current, err := view.Load(ctx)
	if err != nil {
		finish(models.OutcomeFailed, err)
		return zero, err
	}
	outcome.FromStatus = t.status(current)

	if !t.allowed(current) {
		err := appErrors.Clone(appErrors.ErrActionNotAllowed,
			fmt.Sprintf("%s is not available for a %s in status %s", t.action, humanEntity(t.entity), outcome.FromStatus))
		finish(models.OutcomeNotAllowed, err)
		return current, err
	}
	outcome.ToStatus = t.next(current)

	refreshed, err := view.Mutate(ctx, func(ctx context.Context, _ T) error {
		return d.backend.Do(ctx, sess, t.call, nil)
	})
	switch {
	case err == nil:
		outcome.ToStatus = t.status(refreshed)
		finish(models.OutcomeSucceeded, nil)
		d.logger.Info("action dispatched",
			zap.String("entity", t.entity),
			zap.String("entity_id", t.id),
			zap.String("action", t.action),
			zap.String("from", outcome.FromStatus),
			zap.String("to", outcome.ToStatus),
			zap.Int("reloads", view.Reloads()),
		)
		return refreshed, nil
	case errors.Is(err, appErrors.ErrRefreshFailed):
		finish(models.OutcomeRefreshFailed, err)
		d.logger.Warn("reload after action failed",
			zap.String("entity", t.entity),
			zap.String("entity_id", t.id),
			zap.String("action", t.action),
			zap.String("alert", view.Alert()),
			zap.Error(err),
		)
		return refreshed, err
	default:
		outcome.ToStatus = ""
		finish(models.OutcomeFailed, err)
		return refreshed, err
	}
}

func (d *Dispatcher) record(ctx context.Context, outcome Outcome) {
	for _, r := range d.recorders {
		r.RecordDispatch(ctx, outcome)
	}
}

func flightKey(sess *models.Session, entity, id string) string {
	sessionID := ""
	if sess != nil {
		sessionID = sess.ID
	}
	return sessionID + "|" + entity + "|" + id
}

func humanEntity(entity string) string {
	switch entity {
	case EntityChangeRequest:
		return "change request"
	case EntityProjectRequest:
		return "project request"
	default:
		return entity
	}
}
