package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/aidar/taskmanager/internal/domain"
)

// TaskRepository implements repository.TaskRepository.
type TaskRepository struct {
	s *Store
}

// NewTaskRepository creates a TaskRepository over the store.
func NewTaskRepository(s *Store) *TaskRepository {
	return &TaskRepository{s: s}
}

func (r *TaskRepository) Create(_ context.Context, task *domain.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[task.OwnerEmail]; !ok {
		return domain.ErrUserNotFound
	}

	r.s.nextTaskID++
	task.ID = r.s.nextTaskID
	task.Version = 1
	r.s.tasks[task.ID] = task.Clone()
	return nil
}

func (r *TaskRepository) GetByID(_ context.Context, taskID int64) (*domain.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tasks[taskID]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return t.Clone(), nil
}

func (r *TaskRepository) Update(_ context.Context, task *domain.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.tasks[task.ID]
	if !ok {
		return domain.ErrTaskNotFound
	}
	if current.Version != task.Version {
		return domain.ErrStaleVersion
	}

	task.Version++
	r.s.tasks[task.ID] = task.Clone()
	return nil
}

func (r *TaskRepository) Delete(_ context.Context, taskID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tasks[taskID]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.s.tasks, taskID)
	return nil
}

func (r *TaskRepository) ListByOwner(_ context.Context, ownerEmail string) ([]*domain.Task, error) {
	return r.filter(func(t *domain.Task) bool { return t.OwnerEmail == ownerEmail }), nil
}

func (r *TaskRepository) ListByTeamAndOwner(_ context.Context, teamID int64, ownerEmail string) ([]*domain.Task, error) {
	return r.filter(func(t *domain.Task) bool {
		return t.TeamID != nil && *t.TeamID == teamID && t.OwnerEmail == ownerEmail
	}), nil
}

func (r *TaskRepository) ListAll(_ context.Context) ([]*domain.Task, error) {
	return r.filter(func(*domain.Task) bool { return true }), nil
}

func (r *TaskRepository) ListDue(_ context.Context, now time.Time) ([]*domain.Task, error) {
	return r.filter(func(t *domain.Task) bool {
		return t.IsDue(now) && t.Progress.CanBecomeOverdue()
	}), nil
}

// filter returns copies of matching tasks ordered by ID.
func (r *TaskRepository) filter(match func(*domain.Task) bool) []*domain.Task {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.Task, 0)
	for _, t := range r.s.tasks {
		if match(t) {
			out = append(out, t.Clone())
		}
	}
	slices.SortFunc(out, func(a, b *domain.Task) int { return cmp.Compare(a.ID, b.ID) })
	return out
}
