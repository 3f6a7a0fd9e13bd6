package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aidar/taskmanager/internal/domain"
	"github.com/aidar/taskmanager/internal/permission"
	"github.com/aidar/taskmanager/internal/repository"
)

// DeletePolicy decides what deleting a task does. One policy applies to every delete path.
type DeletePolicy string

// Delete policies
const (
	DeletePolicyClose DeletePolicy = "close" // soft-close: progress becomes CLOSED
	DeletePolicyPurge DeletePolicy = "purge" // the record is removed
)

// TaskInput holds the fields of a new task. OwnerEmail is only read on the team path.
type TaskInput struct {
	Name        string
	Description string
	From        time.Time
	To          time.Time
	Priority    domain.TaskPriority
	Progress    domain.TaskProgress
	OwnerEmail  string
}

// TaskService manages tasks of individual users and team members
type TaskService struct {
	taskRepo     repository.TaskRepository
	teamRepo     repository.TeamRepository
	userRepo     repository.UserRepository
	deletePolicy DeletePolicy
	now          func() time.Time
	logger       *slog.Logger
}

// NewTaskService creates a new TaskService
func NewTaskService(
	taskRepo repository.TaskRepository,
	teamRepo repository.TeamRepository,
	userRepo repository.UserRepository,
	deletePolicy DeletePolicy,
	logger *slog.Logger,
) *TaskService {
	if deletePolicy == "" {
		deletePolicy = DeletePolicyClose
	}
	return &TaskService{
		taskRepo:     taskRepo,
		teamRepo:     teamRepo,
		userRepo:     userRepo,
		deletePolicy: deletePolicy,
		now:          time.Now,
		logger:       logger,
	}
}

// WithClock replaces the time source used by the overdue sweep
func (s *TaskService) WithClock(now func() time.Time) *TaskService {
	s.now = now
	return s
}

// AddTask creates a task owned by the caller
func (s *TaskService) AddTask(ctx context.Context, actingEmail string, in TaskInput) (*domain.Task, error) {
	actor, err := resolveActor(ctx, s.userRepo, actingEmail)
	if err != nil {
		return nil, err
	}

	task, err := newTask(in, actor.Email, nil)
	if err != nil {
		return nil, err
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// AddTeamTask creates a task for a team member on behalf of a team admin.
// in.OwnerEmail names the member the task is for.
func (s *TaskService) AddTeamTask(ctx context.Context, teamID int64, in TaskInput, actingEmail string) (*domain.Task, error) {
	actor, err := resolveActor(ctx, s.userRepo, actingEmail)
	if err != nil {
		return nil, err
	}

	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}

	if err := permission.CanManageTeamTask(actor, in.OwnerEmail, team); err != nil {
		return nil, err
	}

	task, err := newTask(in, in.OwnerEmail, &team.ID)
	if err != nil {
		return nil, err
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}

	s.logger.Info("team task created", "team_id", team.ID, "task_id", task.ID, "owner", task.OwnerEmail, "by", actor.Email)
	return task, nil
}

// EditTask overwrites the editable fields of a task
func (s *TaskService) EditTask(ctx context.Context, taskID int64, patch domain.TaskPatch, actingEmail string) (*domain.Task, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	task, err := s.authorizedTask(ctx, taskID, actingEmail)
	if err != nil {
		return nil, err
	}

	patch.Apply(task)
	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// ChangeProgress assigns a progress value. Any declared value may follow any other.
func (s *TaskService) ChangeProgress(ctx context.Context, taskID int64, progress domain.TaskProgress, actingEmail string) (*domain.Task, error) {
	if !progress.Valid() {
		return nil, domain.ErrInvalidProgress
	}

	task, err := s.authorizedTask(ctx, taskID, actingEmail)
	if err != nil {
		return nil, err
	}

	task.Progress = progress
	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask closes or purges a task according to the configured policy
func (s *TaskService) DeleteTask(ctx context.Context, taskID int64, actingEmail string) error {
	task, err := s.authorizedTask(ctx, taskID, actingEmail)
	if err != nil {
		return err
	}

	switch s.deletePolicy {
	case DeletePolicyPurge:
		err = s.taskRepo.Delete(ctx, task.ID)
	default:
		task.Progress = domain.ProgressClosed
		err = s.taskRepo.Update(ctx, task)
	}
	if err != nil {
		return err
	}

	s.logger.Info("task deleted", "task_id", task.ID, "policy", s.deletePolicy, "by", actingEmail)
	return nil
}

// ListTasks returns the caller's tasks, or targetEmail's tasks for elevated callers.
// An elevated caller without a target gets every task in the store.
// The overdue sweep runs before the result is sorted.
func (s *TaskService) ListTasks(ctx context.Context, actingEmail, targetEmail string) ([]*domain.Task, error) {
	actor, err := resolveActor(ctx, s.userRepo, actingEmail)
	if err != nil {
		return nil, err
	}

	if err := permission.CanListUserTasks(actor, targetEmail); err != nil {
		return nil, err
	}

	var tasks []*domain.Task
	switch {
	case targetEmail == "" && actor.IsElevated():
		tasks, err = s.taskRepo.ListAll(ctx)
	case targetEmail == "" || targetEmail == actor.Email:
		tasks, err = s.taskRepo.ListByOwner(ctx, actor.Email)
	default:
		if _, err := s.userRepo.GetByEmail(ctx, targetEmail); err != nil {
			return nil, err
		}
		tasks, err = s.taskRepo.ListByOwner(ctx, targetEmail)
	}
	if err != nil {
		return nil, err
	}

	return s.sweepAndSort(ctx, tasks)
}

// ListMemberTasks returns the tasks a team assigned to one of its members
func (s *TaskService) ListMemberTasks(ctx context.Context, teamID int64, targetEmail, actingEmail string) ([]*domain.Task, error) {
	actor, err := resolveActor(ctx, s.userRepo, actingEmail)
	if err != nil {
		return nil, err
	}

	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}

	if err := permission.CanListMemberTasks(actor, targetEmail, team); err != nil {
		return nil, err
	}

	tasks, err := s.taskRepo.ListByTeamAndOwner(ctx, team.ID, targetEmail)
	if err != nil {
		return nil, err
	}

	return s.sweepAndSort(ctx, tasks)
}

// SweepOverdue marks every due task in the store OVERDUE. Elevated users only.
func (s *TaskService) SweepOverdue(ctx context.Context, actingEmail string) (int, error) {
	actor, err := resolveActor(ctx, s.userRepo, actingEmail)
	if err != nil {
		return 0, err
	}
	if err := permission.CanRunMaintenance(actor); err != nil {
		return 0, err
	}

	now := s.now()
	tasks, err := s.taskRepo.ListDue(ctx, now)
	if err != nil {
		return 0, err
	}

	n, err := s.markOverdue(ctx, tasks, now)
	if err != nil {
		return n, err
	}

	s.logger.Info("overdue sweep finished", "marked", n, "by", actor.Email)
	return n, nil
}

func (s *TaskService) sweepAndSort(ctx context.Context, tasks []*domain.Task) ([]*domain.Task, error) {
	n, err := s.markOverdue(ctx, tasks, s.now())
	if err != nil {
		return nil, err
	}
	if n > 0 {
		s.logger.Debug("tasks marked overdue", "count", n)
	}

	SortTasks(tasks)
	return tasks, nil
}

// markOverdue persists OVERDUE for every due task of the slice, one write per
// task, updating the slice in place. A task changed concurrently is re-read
// and re-evaluated once.
func (s *TaskService) markOverdue(ctx context.Context, tasks []*domain.Task, now time.Time) (int, error) {
	marked := 0
	for i, task := range tasks {
		if !task.IsDue(now) || !task.Progress.CanBecomeOverdue() {
			continue
		}

		task.Progress = domain.ProgressOverdue
		err := s.taskRepo.Update(ctx, task)
		if errors.Is(err, domain.ErrStaleVersion) {
			fresh, getErr := s.taskRepo.GetByID(ctx, task.ID)
			if getErr != nil {
				return marked, getErr
			}
			tasks[i] = fresh
			if !fresh.IsDue(now) || !fresh.Progress.CanBecomeOverdue() {
				continue
			}
			fresh.Progress = domain.ProgressOverdue
			err = s.taskRepo.Update(ctx, fresh)
		}
		if err != nil {
			return marked, err
		}
		marked++
	}
	return marked, nil
}

// authorizedTask loads a task and checks that the caller may act on it
func (s *TaskService) authorizedTask(ctx context.Context, taskID int64, actingEmail string) (*domain.Task, error) {
	actor, err := resolveActor(ctx, s.userRepo, actingEmail)
	if err != nil {
		return nil, err
	}

	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	var team *domain.Team
	if task.TeamID != nil {
		team, err = s.teamRepo.GetByTaskID(ctx, task.ID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	if err := permission.CanActOnTask(actor, task, team); err != nil {
		return nil, err
	}
	return task, nil
}

func newTask(in TaskInput, owner string, teamID *int64) (*domain.Task, error) {
	progress := in.Progress
	if progress == "" {
		progress = domain.ProgressTodo
	}

	patch := domain.TaskPatch{
		Name:        in.Name,
		Description: in.Description,
		From:        in.From,
		To:          in.To,
		Priority:    in.Priority,
		Progress:    progress,
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	task := &domain.Task{OwnerEmail: owner, TeamID: teamID}
	patch.Apply(task)
	return task, nil
}
