package events

import (
	"time"

	"github.com/spec-kit/task-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered        EventType = "user_registered"
	EventTaskCreated           EventType = "task_created"
	EventTaskStatusChanged     EventType = "task_status_changed"
	EventTaskDeleted           EventType = "task_deleted"
	EventProfilePictureUpdated EventType = "profile_picture_updated"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// TaskCreatedPayload payload.
type TaskCreatedPayload struct {
	TaskID   string              `json:"task_id"`
	Title    string              `json:"title"`
	Priority domain.TaskPriority `json:"priority"`
}

// TaskStatusChangedPayload payload.
type TaskStatusChangedPayload struct {
	TaskID    string            `json:"task_id"`
	OldStatus domain.TaskStatus `json:"old_status"`
	NewStatus domain.TaskStatus `json:"new_status"`
}

// TaskDeletedPayload payload.
type TaskDeletedPayload struct {
	TaskID string `json:"task_id"`
}

// ProfilePictureUpdatedPayload payload.
type ProfilePictureUpdatedPayload struct {
	ContentType string  `json:"content_type"`
	SizeBytes   int     `json:"size_bytes"`
	MirrorURL   *string `json:"mirror_url,omitempty"`
}
