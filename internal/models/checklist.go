package models

import "time"

// ChecklistItem is a step inside a task. Items are added and toggled, never deleted.
type ChecklistItem struct {
	ID                string     `json:"id"`
	TaskID            string     `json:"taskId"`
	Description       string     `json:"description"`
	IsCompleted       bool       `json:"isCompleted"`
	Order             int        `json:"order"`
	CompletedByUserID *string    `json:"completedByUserId,omitempty"`
	CompletedDate     *time.Time `json:"completedDate,omitempty"`
}
