package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/task-service/internal/domain"
	"github.com/spec-kit/task-service/internal/events"
	"github.com/spec-kit/task-service/internal/repository"
	apperrors "github.com/spec-kit/task-service/pkg/util"
)

const defaultPageSize = 10

// TaskCreateInput carries fields for new tasks.
type TaskCreateInput struct {
	Title       string
	Description string
	Priority    domain.TaskPriority
	Deadline    *time.Time
}

// TaskUpdateInput carries partial updates; nil fields are left unchanged.
type TaskUpdateInput struct {
	Title       *string
	Description *string
	Priority    *domain.TaskPriority
	Deadline    *time.Time
	Status      *domain.TaskStatus
}

// TaskPage is one page of a user's tasks.
type TaskPage struct {
	Tasks       []domain.Task
	TotalTasks  int64
	TotalPages  int
	CurrentPage int
}

// TaskService implements owner-scoped task CRUD.
type TaskService struct {
	tasks      repository.TaskRepository
	dispatcher events.Dispatcher
}

// NewTaskService builds the service.
func NewTaskService(tasks repository.TaskRepository, dispatcher events.Dispatcher) *TaskService {
	return &TaskService{tasks: tasks, dispatcher: dispatcher}
}

// Create stores a new task owned by ownerID. Status always starts Pending.
func (s *TaskService) Create(ctx context.Context, ownerID string, input TaskCreateInput) (*domain.Task, error) {
	details := map[string]any{}
	if input.Title == "" {
		details["title"] = "title is required"
	}
	if input.Priority == "" {
		details["priority"] = "priority is required"
	} else if !input.Priority.Valid() {
		details["priority"] = "priority must be one of High, Medium, Low"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("title and priority are required", details)
	}

	task := &domain.Task{
		OwnerID:     ownerID,
		Title:       input.Title,
		Description: input.Description,
		Priority:    input.Priority,
		Deadline:    input.Deadline,
		Status:      domain.TaskStatusPending,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventTaskCreated, ownerID, events.TaskCreatedPayload{
		TaskID:   task.ID,
		Title:    task.Title,
		Priority: task.Priority,
	})
	return task, nil
}

// List returns the page-th page (1-indexed) of the owner's tasks in insertion
// order, with totals for the pagination envelope.
func (s *TaskService) List(ctx context.Context, ownerID string, page, pageSize int) (*TaskPage, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	tasks, err := s.tasks.ListByOwner(ctx, ownerID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	total, err := s.tasks.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &TaskPage{
		Tasks:       tasks,
		TotalTasks:  total,
		TotalPages:  totalPages,
		CurrentPage: page,
	}, nil
}

// Update applies the provided fields to an owned task. A task id that exists
// under a different owner is reported as not found, same as a missing id.
func (s *TaskService) Update(ctx context.Context, ownerID, taskID string, input TaskUpdateInput) (*domain.Task, error) {
	task, err := s.tasks.GetByOwner(ctx, ownerID, taskID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("task", nil)
		}
		return nil, err
	}

	oldStatus := task.Status
	if input.Title != nil {
		if *input.Title == "" {
			return nil, apperrors.NewValidationError("title cannot be empty", map[string]any{"title": "title is required"})
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": "priority must be one of High, Medium, Low"})
		}
		task.Priority = *input.Priority
	}
	if input.Deadline != nil {
		task.Deadline = input.Deadline
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": "status must be one of Pending, In Progress, Completed"})
		}
		task.Status = *input.Status
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("task", nil)
		}
		return nil, err
	}
	task.UpdatedAt = time.Now()

	if task.Status != oldStatus {
		s.publish(ctx, events.EventTaskStatusChanged, ownerID, events.TaskStatusChangedPayload{
			TaskID:    task.ID,
			OldStatus: oldStatus,
			NewStatus: task.Status,
		})
	}
	return task, nil
}

// Delete removes an owned task.
func (s *TaskService) Delete(ctx context.Context, ownerID, taskID string) error {
	if err := s.tasks.Delete(ctx, ownerID, taskID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("task", nil)
		}
		return err
	}

	s.publish(ctx, events.EventTaskDeleted, ownerID, events.TaskDeletedPayload{TaskID: taskID})
	return nil
}

func (s *TaskService) publish(ctx context.Context, eventType events.EventType, userID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
