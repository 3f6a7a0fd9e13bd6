package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidar/taskmanager/internal/domain"
)

func TestTaskService_AddTask(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	task, err := env.task.AddTask(ctx, memberEmail, taskInput("write docs", domain.PriorityHigh, testNow.Add(time.Hour)))
	require.NoError(t, err)

	assert.NotZero(t, task.ID)
	assert.Equal(t, memberEmail, task.OwnerEmail)
	assert.Equal(t, domain.ProgressTodo, task.Progress)
	assert.Nil(t, task.TeamID)

	bad := taskInput("bad", domain.PriorityHigh, testNow)
	bad.From = testNow.Add(time.Hour)
	_, err = env.task.AddTask(ctx, memberEmail, bad)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = env.task.AddTask(ctx, memberEmail, taskInput("bad", "URGENT", testNow))
	assert.ErrorIs(t, err, domain.ErrInvalidPriority)
}

func TestTaskService_ListTasksSortedByPriority(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	due := testNow.Add(48 * time.Hour)

	for _, p := range []domain.TaskPriority{domain.PriorityLow, domain.PriorityHighest, domain.PriorityMedium} {
		_, err := env.task.AddTask(ctx, memberEmail, taskInput(string(p), p, due))
		require.NoError(t, err)
	}

	tasks, err := env.task.ListTasks(ctx, memberEmail, "")
	require.NoError(t, err)
	require.Len(t, tasks, 3)

	got := []domain.TaskPriority{tasks[0].Priority, tasks[1].Priority, tasks[2].Priority}
	assert.Equal(t, []domain.TaskPriority{domain.PriorityHighest, domain.PriorityMedium, domain.PriorityLow}, got)
}

func TestSortTasks_TieBreakers(t *testing.T) {
	base := testNow
	a := &domain.Task{ID: 1, Priority: domain.PriorityHigh, To: base, From: base.Add(-time.Hour), Progress: domain.ProgressTodo}
	b := &domain.Task{ID: 2, Priority: domain.PriorityHigh, To: base.Add(time.Hour), From: base.Add(-time.Hour), Progress: domain.ProgressTodo}
	c := &domain.Task{ID: 3, Priority: domain.PriorityHigh, To: base, From: base, Progress: domain.ProgressTodo}
	d := &domain.Task{ID: 4, Priority: domain.PriorityHigh, To: base, From: base, Progress: domain.ProgressFinished}
	e := &domain.Task{ID: 5, Priority: domain.PriorityHigh, To: base, From: base, Progress: domain.ProgressTodo}

	tasks := []*domain.Task{d, a, e, c, b}
	SortTasks(tasks)

	ids := make([]int64, 0, len(tasks))
	for _, task := range tasks {
		ids = append(ids, task.ID)
	}
	// b: позже срок; c, e: позже начало и меньший прогресс, порядок входа сохраняется
	assert.Equal(t, []int64{2, 5, 3, 4, 1}, ids)
}

func TestTaskService_ListingMarksOverdueIdempotently(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	past, err := env.task.AddTask(ctx, memberEmail, taskInput("late", domain.PriorityLow, testNow.Add(-time.Hour)))
	require.NoError(t, err)
	future, err := env.task.AddTask(ctx, memberEmail, taskInput("soon", domain.PriorityLow, testNow.Add(time.Hour)))
	require.NoError(t, err)
	finished, err := env.task.AddTask(ctx, memberEmail, taskInput("done", domain.PriorityLow, testNow.Add(-time.Hour)))
	require.NoError(t, err)
	_, err = env.task.ChangeProgress(ctx, finished.ID, domain.ProgressFinished, memberEmail)
	require.NoError(t, err)

	for range 2 {
		tasks, err := env.task.ListTasks(ctx, memberEmail, "")
		require.NoError(t, err)
		require.Len(t, tasks, 3)

		assert.Equal(t, domain.ProgressOverdue, env.loadTask(t, past.ID).Progress)
		assert.Equal(t, domain.ProgressTodo, env.loadTask(t, future.ID).Progress)
		assert.Equal(t, domain.ProgressFinished, env.loadTask(t, finished.ID).Progress)
	}
}

func TestTaskService_SweepOverdue(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.task.AddTask(ctx, memberEmail, taskInput("a", domain.PriorityLow, testNow.Add(-time.Hour)))
	require.NoError(t, err)
	_, err = env.task.AddTask(ctx, ownerEmail, taskInput("b", domain.PriorityLow, testNow))
	require.NoError(t, err)
	_, err = env.task.AddTask(ctx, ownerEmail, taskInput("c", domain.PriorityLow, testNow.Add(time.Hour)))
	require.NoError(t, err)

	_, err = env.task.SweepOverdue(ctx, memberEmail)
	assert.ErrorIs(t, err, domain.ErrNoPermission)

	marked, err := env.task.SweepOverdue(ctx, supportEmail)
	require.NoError(t, err)
	assert.Equal(t, 2, marked)

	marked, err = env.task.SweepOverdue(ctx, supportEmail)
	require.NoError(t, err)
	assert.Zero(t, marked)
}

func TestTaskService_MarkOverdueRetriesStaleVersion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.task.AddTask(ctx, memberEmail, taskInput("late", domain.PriorityLow, testNow.Add(-time.Hour)))
	require.NoError(t, err)

	// Копия устаревает после параллельной правки
	stale := env.loadTask(t, created.ID)
	_, err = env.task.EditTask(ctx, created.ID, domain.TaskPatch{
		Name:     "renamed",
		From:     stale.From,
		To:       stale.To,
		Priority: domain.PriorityHigh,
		Progress: domain.ProgressPlanning,
	}, memberEmail)
	require.NoError(t, err)

	tasks := []*domain.Task{stale}
	marked, err := env.task.markOverdue(ctx, tasks, testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, marked)

	stored := env.loadTask(t, created.ID)
	assert.Equal(t, domain.ProgressOverdue, stored.Progress)
	assert.Equal(t, "renamed", stored.Name)
	assert.Equal(t, stored.Version, tasks[0].Version)
}

func TestTaskService_ListTasksScopes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	due := testNow.Add(time.Hour)

	_, err := env.task.AddTask(ctx, memberEmail, taskInput("m", domain.PriorityLow, due))
	require.NoError(t, err)
	_, err = env.task.AddTask(ctx, ownerEmail, taskInput("o", domain.PriorityLow, due))
	require.NoError(t, err)

	_, err = env.task.ListTasks(ctx, memberEmail, ownerEmail)
	assert.ErrorIs(t, err, domain.ErrNoPermission)

	tasks, err := env.task.ListTasks(ctx, supportEmail, ownerEmail)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, ownerEmail, tasks[0].OwnerEmail)

	all, err := env.task.ListTasks(ctx, rootEmail, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = env.task.ListTasks(ctx, rootEmail, "ghost@x.io")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestTaskService_DeleteWithoutPermissionLeavesTask(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	task, err := env.task.AddTask(ctx, memberEmail, taskInput("mine", domain.PriorityLow, testNow.Add(time.Hour)))
	require.NoError(t, err)
	_, err = env.task.ChangeProgress(ctx, task.ID, domain.ProgressInProgress, memberEmail)
	require.NoError(t, err)

	err = env.task.DeleteTask(ctx, task.ID, outsiderEmail)
	assert.ErrorIs(t, err, domain.ErrNoPermission)
	assert.Equal(t, domain.ProgressInProgress, env.loadTask(t, task.ID).Progress)

	_, err = env.task.ChangeProgress(ctx, task.ID, domain.ProgressFinished, outsiderEmail)
	assert.ErrorIs(t, err, domain.ErrNoPermission)

	err = env.task.DeleteTask(ctx, 999, memberEmail)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestTaskService_DeletePolicies(t *testing.T) {
	ctx := context.Background()

	t.Run("close", func(t *testing.T) {
		env := newTestEnvWithPolicy(t, DeletePolicyClose)
		task, err := env.task.AddTask(ctx, memberEmail, taskInput("x", domain.PriorityLow, testNow.Add(time.Hour)))
		require.NoError(t, err)

		require.NoError(t, env.task.DeleteTask(ctx, task.ID, memberEmail))
		assert.Equal(t, domain.ProgressClosed, env.loadTask(t, task.ID).Progress)
	})

	t.Run("purge", func(t *testing.T) {
		env := newTestEnvWithPolicy(t, DeletePolicyPurge)
		task, err := env.task.AddTask(ctx, memberEmail, taskInput("x", domain.PriorityLow, testNow.Add(time.Hour)))
		require.NoError(t, err)

		require.NoError(t, env.task.DeleteTask(ctx, task.ID, supportEmail))
		_, err = env.taskRepo.GetByID(ctx, task.ID)
		assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	})
}

func TestTaskService_TeamTasks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	team := env.privateTeam(t)

	in := taskInput("review", domain.PriorityMedium, testNow.Add(time.Hour))
	in.OwnerEmail = memberEmail

	_, err := env.task.AddTeamTask(ctx, team.ID, in, memberEmail)
	assert.ErrorIs(t, err, domain.ErrNoPermission)

	outsiderIn := in
	outsiderIn.OwnerEmail = outsiderEmail
	_, err = env.task.AddTeamTask(ctx, team.ID, outsiderIn, adminEmail)
	assert.ErrorIs(t, err, domain.ErrNotTeamMember)

	task, err := env.task.AddTeamTask(ctx, team.ID, in, adminEmail)
	require.NoError(t, err)
	require.NotNil(t, task.TeamID)
	assert.Equal(t, team.ID, *task.TeamID)
	assert.Equal(t, memberEmail, task.OwnerEmail)

	// Задача команды видна и в личном списке участника
	personal, err := env.task.ListTasks(ctx, memberEmail, "")
	require.NoError(t, err)
	assert.Len(t, personal, 1)

	listed, err := env.task.ListMemberTasks(ctx, team.ID, memberEmail, adminEmail)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	_, err = env.task.ListMemberTasks(ctx, team.ID, adminEmail, memberEmail)
	assert.ErrorIs(t, err, domain.ErrNoPermission)

	// Администратор команды управляет задачей через владельца-команду
	_, err = env.task.ChangeProgress(ctx, task.ID, domain.ProgressPlanning, adminEmail)
	require.NoError(t, err)
	require.NoError(t, env.task.DeleteTask(ctx, task.ID, adminEmail))
	assert.Equal(t, domain.ProgressClosed, env.loadTask(t, task.ID).Progress)

	// После исключения из команды права администратора на задачу пропадают
	require.NoError(t, env.team.RemoveMember(ctx, adminEmail, team.ID, ownerEmail))
	_, err = env.task.ChangeProgress(ctx, task.ID, domain.ProgressTodo, adminEmail)
	assert.ErrorIs(t, err, domain.ErrNoPermission)
}

func TestTaskService_ChangeProgressRejectsUnknownValue(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	task, err := env.task.AddTask(ctx, memberEmail, taskInput("x", domain.PriorityLow, testNow.Add(time.Hour)))
	require.NoError(t, err)

	_, err = env.task.ChangeProgress(ctx, task.ID, "DONE", memberEmail)
	assert.ErrorIs(t, err, domain.ErrInvalidProgress)

	// Любое объявленное значение может сменить любое другое
	for _, p := range []domain.TaskProgress{domain.ProgressClosed, domain.ProgressTodo, domain.ProgressOverdue, domain.ProgressPlanning} {
		_, err = env.task.ChangeProgress(ctx, task.ID, p, memberEmail)
		require.NoError(t, err)
		assert.Equal(t, p, env.loadTask(t, task.ID).Progress)
	}
}
