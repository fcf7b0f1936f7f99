package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/task-service/internal/domain"
	"github.com/spec-kit/task-service/internal/events"
	"github.com/spec-kit/task-service/internal/repository"
)

// fakeUserRepo is an in-memory repository.UserRepository with the same error
// contract as the Postgres implementation.
type fakeUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*domain.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	f.seq++
	user.ID = fmt.Sprintf("user-%d", f.seq)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) SetProfilePicture(_ context.Context, id string, picture *domain.ProfilePicture) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	clone := *picture
	user.Picture = &clone
	return nil
}

func (f *fakeUserRepo) GetProfilePicture(_ context.Context, id string) (*domain.ProfilePicture, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok || user.Picture == nil {
		return nil, pgx.ErrNoRows
	}
	clone := *user.Picture
	return &clone, nil
}

// fakeTaskRepo keeps tasks in insertion order, mirroring the stable creation
// ordering of the Postgres listing query.
type fakeTaskRepo struct {
	mu    sync.Mutex
	seq   int
	tasks []*domain.Task
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{}
}

func (f *fakeTaskRepo) Create(_ context.Context, task *domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	task.ID = fmt.Sprintf("task-%d", f.seq)
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt
	clone := *task
	f.tasks = append(f.tasks, &clone)
	return nil
}

func (f *fakeTaskRepo) GetByOwner(_ context.Context, ownerID, id string) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, task := range f.tasks {
		if task.ID == id && task.OwnerID == ownerID {
			clone := *task
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeTaskRepo) ListByOwner(_ context.Context, ownerID string, limit, offset int) ([]domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	var owned []domain.Task
	for _, task := range f.tasks {
		if task.OwnerID == ownerID {
			owned = append(owned, *task)
		}
	}
	if offset >= len(owned) {
		return nil, nil
	}
	end := offset + limit
	if end > len(owned) {
		end = len(owned)
	}
	return owned[offset:end], nil
}

func (f *fakeTaskRepo) CountByOwner(_ context.Context, ownerID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, task := range f.tasks {
		if task.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

func (f *fakeTaskRepo) Update(_ context.Context, updated *domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, task := range f.tasks {
		if task.ID == updated.ID && task.OwnerID == updated.OwnerID {
			clone := *updated
			clone.CreatedAt = task.CreatedAt
			clone.UpdatedAt = time.Now()
			f.tasks[i] = &clone
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeTaskRepo) Delete(_ context.Context, ownerID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, task := range f.tasks {
		if task.ID == id && task.OwnerID == ownerID {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) byType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var matched []events.Event
	for _, event := range d.events {
		if event.Type == eventType {
			matched = append(matched, event)
		}
	}
	return matched
}
