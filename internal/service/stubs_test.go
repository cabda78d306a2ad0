package service

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"
	"time"

	"github.com/noah-isme/changedesk-api/internal/dispatch"
	"github.com/noah-isme/changedesk-api/internal/models"
	"github.com/noah-isme/changedesk-api/internal/repository"
	appErrors "github.com/noah-isme/changedesk-api/pkg/errors"
)

// backendStub answers every upstream read the services need from fixed data.
type backendStub struct {
	mu sync.Mutex

	changes       []models.ChangeRequest
	tasks         []models.Task
	projects      []models.Project
	requests      []models.ProjectRequest
	users         []models.User
	roles         map[string][]string
	reports       map[string]json.RawMessage
	reportErrs    map[string]error
	reportCalls   int
	updates       int
	tasksProject  string
	roleWrites    int
	createdChange *models.ChangeRequestInput
}

func (b *backendStub) ListChangeRequests(context.Context, *models.Session) ([]models.ChangeRequest, error) {
	return b.changes, nil
}

func (b *backendStub) GetChangeRequest(_ context.Context, _ *models.Session, id string) (*models.ChangeRequest, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.changes {
		if b.changes[i].ID == id {
			cr := b.changes[i]
			return &cr, nil
		}
	}
	return nil, appErrors.ErrNotFound
}

func (b *backendStub) CreateChangeRequest(_ context.Context, _ *models.Session, in models.ChangeRequestInput) (*models.ChangeRequest, error) {
	b.createdChange = &in
	return &models.ChangeRequest{ID: "cr-new", Title: in.Title, Status: models.ChangeDraft}, nil
}

func (b *backendStub) UpdateChangeRequest(_ context.Context, _ *models.Session, id string, in models.ChangeRequestInput) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updates++
	for i := range b.changes {
		if b.changes[i].ID == id {
			b.changes[i].Title = in.Title
		}
	}
	return nil
}

func (b *backendStub) ListTasks(_ context.Context, _ *models.Session, projectID string) ([]models.Task, error) {
	b.mu.Lock()
	b.tasksProject = projectID
	b.mu.Unlock()
	if projectID == "missing" {
		return nil, appErrors.ErrNotFound
	}
	return b.tasks, nil
}

func (b *backendStub) GetTask(_ context.Context, _ *models.Session, id string) (*models.Task, error) {
	for i := range b.tasks {
		if b.tasks[i].ID == id {
			task := b.tasks[i]
			return &task, nil
		}
	}
	return nil, appErrors.ErrNotFound
}

func (b *backendStub) CreateTask(_ context.Context, _ *models.Session, in models.TaskInput) (*models.Task, error) {
	return &models.Task{ID: "t-new", ProjectID: in.ProjectID, Title: in.Title, Status: models.TaskNotStarted}, nil
}

func (b *backendStub) Checklist(context.Context, *models.Session, string) ([]models.ChecklistItem, error) {
	return []models.ChecklistItem{}, nil
}

func (b *backendStub) Activities(context.Context, *models.Session, string) ([]models.TaskActivity, error) {
	return []models.TaskActivity{}, nil
}

func (b *backendStub) ListProjects(context.Context, *models.Session) ([]models.Project, error) {
	return b.projects, nil
}

func (b *backendStub) GetProject(_ context.Context, _ *models.Session, id string) (*models.Project, error) {
	for i := range b.projects {
		if b.projects[i].ID == id {
			p := b.projects[i]
			return &p, nil
		}
	}
	return nil, appErrors.ErrNotFound
}

func (b *backendStub) ListProjectRequests(context.Context, *models.Session) ([]models.ProjectRequest, error) {
	return b.requests, nil
}

func (b *backendStub) GetProjectRequest(_ context.Context, _ *models.Session, id string) (*models.ProjectRequest, error) {
	for i := range b.requests {
		if b.requests[i].ID == id {
			pr := b.requests[i]
			return &pr, nil
		}
	}
	return nil, appErrors.ErrNotFound
}

func (b *backendStub) CreateProjectRequest(_ context.Context, _ *models.Session, in models.ProjectRequestInput) (*models.ProjectRequest, error) {
	return &models.ProjectRequest{ID: "pr-new", Title: in.Title, Status: models.ProjectRequestDraft}, nil
}

func (b *backendStub) ListDepartments(context.Context, *models.Session) ([]models.Department, error) {
	return []models.Department{{ID: "dep-ops", Name: "Operations"}}, nil
}

func (b *backendStub) CreateDepartment(_ context.Context, _ *models.Session, in models.DepartmentInput) (*models.Department, error) {
	return &models.Department{ID: "dep-new", Name: in.Name}, nil
}

func (b *backendStub) ListUsers(context.Context, *models.Session) ([]models.User, error) {
	return b.users, nil
}

func (b *backendStub) ListRoles(context.Context, *models.Session) ([]models.Role, error) {
	return []models.Role{{ID: "r-1", Name: models.RoleAdmin}}, nil
}

func (b *backendStub) UserRoles(_ context.Context, _ *models.Session, userID string) ([]string, error) {
	return b.roles[userID], nil
}

func (b *backendStub) SetUserRoles(_ context.Context, _ *models.Session, userID string, in models.RoleAssignment) error {
	b.roleWrites++
	if b.roles == nil {
		b.roles = map[string][]string{}
	}
	b.roles[userID] = in.Roles
	return nil
}

func (b *backendStub) Report(_ context.Context, _ *models.Session, name string, _ url.Values) (json.RawMessage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reportCalls++
	if err := b.reportErrs[name]; err != nil {
		return nil, err
	}
	return b.reports[name], nil
}

// dispatcherStub returns the entity with the status the action leads to.
type dispatcherStub struct {
	changeStatus models.ChangeRequestStatus
	err          error
	lastAction   string
}

func (d *dispatcherStub) ChangeRequest(_ context.Context, _ *models.Session, id string, cmd dispatch.ChangeCommand) (models.ChangeRequest, error) {
	d.lastAction = string(cmd.Action())
	if d.err != nil {
		return models.ChangeRequest{}, d.err
	}
	return models.ChangeRequest{ID: id, Status: d.changeStatus}, nil
}

func (d *dispatcherStub) Task(_ context.Context, _ *models.Session, id string, cmd dispatch.TaskCommand) (models.Task, error) {
	d.lastAction = cmd.Name()
	return models.Task{ID: id, Status: models.TaskInProgress}, d.err
}

func (d *dispatcherStub) ProjectRequest(_ context.Context, _ *models.Session, id string, cmd dispatch.ProjectRequestCommand) (models.ProjectRequest, error) {
	d.lastAction = string(cmd.Action())
	return models.ProjectRequest{ID: id, Status: models.ProjectRequestPending}, d.err
}

func (d *dispatcherStub) Project(_ context.Context, _ *models.Session, id string, cmd dispatch.ProjectCommand) (models.Project, error) {
	d.lastAction = string(cmd.Action())
	return models.Project{ID: id, Status: models.ProjectOnHold}, d.err
}

// memoryCache is a CacheRepository over a map.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (m *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = raw
	return nil
}

func (m *memoryCache) DeleteByPattern(_ context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := pattern
	if n := len(prefix); n > 0 && prefix[n-1] == '*' {
		prefix = prefix[:n-1]
	}
	for key := range m.entries {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(m.entries, key)
		}
	}
	return nil
}

type actionLogStoreStub struct {
	mu      sync.Mutex
	created []models.ActionLog
	err     error
}

func (s *actionLogStoreStub) Create(_ context.Context, entry *models.ActionLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, *entry)
	return nil
}

func (s *actionLogStoreStub) List(context.Context, repository.ActionLogFilter) ([]models.ActionLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.created, nil
}

var testSession = &models.Session{ID: "s-1", Token: "token", User: models.User{ID: "u-1"}}
