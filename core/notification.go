package core

import "time"

// NotificationType distinguishes the terminal outcomes a user is told about.
type NotificationType string

const (
	// NotifyEvaluationReady signals a completed evaluation.
	NotifyEvaluationReady NotificationType = "evaluation_ready"
	// NotifyEvaluationFailed signals a terminal pipeline failure.
	NotifyEvaluationFailed NotificationType = "evaluation_failed"
)

// Notification is a fire-once user-facing record created on both terminal
// paths of a pipeline run.
type Notification struct {
	ID      string           `json:"id"`
	UserID  string           `json:"user_id"`
	Type    NotificationType `json:"type"`
	Title   string           `json:"title"`
	Message string           `json:"message"`
	Data    map[string]any   `json:"data,omitempty"`
	Created time.Time        `json:"created"`
}
