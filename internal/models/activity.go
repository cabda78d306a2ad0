package models

import "time"

// ActivityType labels a task timeline entry.
type ActivityType string

const (
	ActivityCreated                ActivityType = "Created"
	ActivityUpdated                ActivityType = "Updated"
	ActivityAssigned               ActivityType = "Assigned"
	ActivityClaimed                ActivityType = "Claimed"
	ActivityStarted                ActivityType = "Started"
	ActivityBlocked                ActivityType = "Blocked"
	ActivityUnblocked              ActivityType = "Unblocked"
	ActivityCompleted              ActivityType = "Completed"
	ActivityCancelled              ActivityType = "Cancelled"
	ActivityTimeLogged             ActivityType = "TimeLogged"
	ActivityCommentAdded           ActivityType = "CommentAdded"
	ActivityChecklistItemAdded     ActivityType = "ChecklistItemAdded"
	ActivityChecklistItemCompleted ActivityType = "ChecklistItemCompleted"
	ActivityNotesUpdated           ActivityType = "NotesUpdated"
)

// ActivityTypes lists every timeline entry type in display order.
var ActivityTypes = []ActivityType{
	ActivityCreated, ActivityUpdated, ActivityAssigned, ActivityClaimed,
	ActivityStarted, ActivityBlocked, ActivityUnblocked, ActivityCompleted,
	ActivityCancelled, ActivityTimeLogged, ActivityCommentAdded,
	ActivityChecklistItemAdded, ActivityChecklistItemCompleted, ActivityNotesUpdated,
}

// TaskActivity is an append-only timeline entry.
type TaskActivity struct {
	ID          string       `json:"id"`
	TaskID      string       `json:"taskId"`
	Type        ActivityType `json:"activityType"`
	Description string       `json:"description,omitempty"`
	UserID      string       `json:"userId,omitempty"`
	UserName    string       `json:"userName,omitempty"`
	Timestamp   time.Time    `json:"timestamp"`
}
