package service

import (
	"context"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"go.uber.org/zap"

	"github.com/noah-isme/changedesk-api/internal/dto"
	"github.com/noah-isme/changedesk-api/internal/models"
	"github.com/noah-isme/changedesk-api/internal/validation"
)

const defaultPickerLimit = 20

type adminBackend interface {
	ListDepartments(ctx context.Context, sess *models.Session) ([]models.Department, error)
	CreateDepartment(ctx context.Context, sess *models.Session, in models.DepartmentInput) (*models.Department, error)
	ListUsers(ctx context.Context, sess *models.Session) ([]models.User, error)
	ListRoles(ctx context.Context, sess *models.Session) ([]models.Role, error)
	UserRoles(ctx context.Context, sess *models.Session, userID string) ([]string, error)
	SetUserRoles(ctx context.Context, sess *models.Session, userID string, in models.RoleAssignment) error
}

// AdminService passes department, user and role administration through to the
// upstream and ranks users for the assignee picker.
type AdminService struct {
	backend  adminBackend
	validate *validator.Validate
	logger   *zap.Logger
}

// NewAdminService constructs the service.
func NewAdminService(backend adminBackend, validate *validator.Validate, logger *zap.Logger) *AdminService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{backend: backend, validate: validate, logger: logger}
}

// Departments lists departments.
func (s *AdminService) Departments(ctx context.Context, sess *models.Session) ([]models.Department, error) {
	return s.backend.ListDepartments(ctx, sess)
}

// CreateDepartment validates and creates a department.
func (s *AdminService) CreateDepartment(ctx context.Context, sess *models.Session, in models.DepartmentInput) (*models.Department, error) {
	if err := validation.Struct(s.validate, in); err != nil {
		return nil, err
	}
	return s.backend.CreateDepartment(ctx, sess, in)
}

// SearchUsers ranks active users by fuzzy distance between search and
// "<full name> <email>". An empty search returns users alphabetically.
func (s *AdminService) SearchUsers(ctx context.Context, sess *models.Session, search string, limit int) ([]dto.UserMatch, error) {
	users, err := s.backend.ListUsers(ctx, sess)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultPickerLimit
	}

	active := make([]models.User, 0, len(users))
	for _, u := range users {
		if u.IsActive {
			active = append(active, u)
		}
	}

	search = strings.TrimSpace(search)
	matches := make([]dto.UserMatch, 0, len(active))
	if search == "" {
		sort.SliceStable(active, func(i, j int) bool {
			return strings.ToLower(active[i].FullName()) < strings.ToLower(active[j].FullName())
		})
		for _, u := range active {
			matches = append(matches, userMatch(u, 0))
		}
	} else {
		words := make([]string, len(active))
		for i, u := range active {
			words[i] = u.FullName() + " " + u.Email
		}
		ranks := fuzzy.RankFindNormalizedFold(search, words)
		sort.Stable(ranks)
		for _, rank := range ranks {
			matches = append(matches, userMatch(active[rank.OriginalIndex], rank.Distance))
		}
	}

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func userMatch(u models.User, distance int) dto.UserMatch {
	return dto.UserMatch{ID: u.ID, FullName: u.FullName(), Email: u.Email, Distance: distance}
}

// Roles lists assignable roles.
func (s *AdminService) Roles(ctx context.Context, sess *models.Session) ([]models.Role, error) {
	return s.backend.ListRoles(ctx, sess)
}

// UserRoles lists the roles held by a user.
func (s *AdminService) UserRoles(ctx context.Context, sess *models.Session, userID string) ([]string, error) {
	return s.backend.UserRoles(ctx, sess, userID)
}

// SetUserRoles replaces a user's roles and returns the resulting set.
func (s *AdminService) SetUserRoles(ctx context.Context, sess *models.Session, userID string, in models.RoleAssignment) ([]string, error) {
	if err := validation.Struct(s.validate, in); err != nil {
		return nil, err
	}
	if err := s.backend.SetUserRoles(ctx, sess, userID, in); err != nil {
		return nil, err
	}
	s.logger.Info("user roles replaced",
		zap.String("user_id", sess.UserID()),
		zap.String("target_user_id", userID),
		zap.Strings("roles", in.Roles),
	)
	return s.backend.UserRoles(ctx, sess, userID)
}
