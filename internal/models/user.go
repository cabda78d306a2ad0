package models

import (
	"strings"
	"time"
)

// Role names recognised by the upstream authorization rules.
const (
	RoleAdmin          = "Admin"
	RoleManager        = "Manager"
	RoleCABMember      = "CABMember"
	RoleProjectManager = "ProjectManager"
	RoleUser           = "User"
)

// User mirrors the upstream user resource.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	DepartmentID *string   `json:"departmentId,omitempty"`
	Roles        []string  `json:"roles,omitempty"`
	IsActive     bool      `json:"isActive"`
	CreatedDate  time.Time `json:"createdDate"`
}

// FullName joins the name parts, falling back to the email.
func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// HasRole reports whether the user carries the named role.
func (u User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

// Role is an assignable upstream role.
type Role struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// RoleAssignment replaces the role set of a user.
type RoleAssignment struct {
	Roles []string `json:"roles" validate:"required,min=1,dive,required"`
}

// Department groups users and receives department-level task assignments.
type Department struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ManagerID   *string   `json:"managerUserId,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedDate time.Time `json:"createdDate"`
}

// DepartmentInput is the payload for creating a department.
type DepartmentInput struct {
	Name        string  `json:"name" validate:"required,nonblank,max=100"`
	Description string  `json:"description,omitempty"`
	ManagerID   *string `json:"managerUserId,omitempty"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
