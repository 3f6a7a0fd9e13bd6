package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/aidar/taskmanager/internal/domain"
	"github.com/aidar/taskmanager/internal/repository/memory"
)

const (
	ownerEmail    = "owner@x.io"
	adminEmail    = "admin@x.io"
	memberEmail   = "member@x.io"
	outsiderEmail = "outsider@x.io"
	supportEmail  = "support@x.io"
	rootEmail     = "root@x.io"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	store    *memory.Store
	users    *memory.UserRepository
	teamRepo *memory.TeamRepository
	taskRepo *memory.TaskRepository
	requests *memory.JoinRequestRepository

	auth  *AuthService
	user  *UserService
	team  *TeamService
	task  *TaskService
	stats *StatsService

	codes atomic.Int64
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestEnv builds services over a fresh memory store with a fixed clock and
// predictable join codes (code01, code02, ...).
func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithPolicy(t, DeletePolicyClose)
}

func newTestEnvWithPolicy(t *testing.T, policy DeletePolicy) *testEnv {
	t.Helper()

	env := &testEnv{store: memory.NewStore()}
	env.users = memory.NewUserRepository(env.store)
	env.teamRepo = memory.NewTeamRepository(env.store)
	env.taskRepo = memory.NewTaskRepository(env.store)
	env.requests = memory.NewJoinRequestRepository(env.store)

	logger := discardLogger()
	codes := NewJoinCodeGenerator(DefaultJoinCodeLength, 0).WithSource(func() string {
		return fmt.Sprintf("code%02d", env.codes.Add(1))
	})

	env.auth = NewAuthService(env.users, "test-secret", time.Hour, logger).WithHashCost(bcrypt.MinCost)
	env.user = NewUserService(env.users, logger)
	env.team = NewTeamService(env.teamRepo, env.users, env.requests, codes, logger)
	env.task = NewTaskService(env.taskRepo, env.teamRepo, env.users, policy, logger).
		WithClock(func() time.Time { return testNow })
	env.stats = NewStatsService(memory.NewStatsRepository(env.store), env.teamRepo, env.users)

	ctx := context.Background()
	for email, role := range map[string]domain.Role{
		ownerEmail:    domain.RoleUser,
		adminEmail:    domain.RoleUser,
		memberEmail:   domain.RoleUser,
		outsiderEmail: domain.RoleUser,
		supportEmail:  domain.RoleSupport,
		rootEmail:     domain.RoleAdmin,
	} {
		require.NoError(t, env.users.Create(ctx, &domain.User{Email: email, FirstName: "F", LastName: "L", Role: role}))
	}

	return env
}

// privateTeam creates a PRIVATE team of owner with admin promoted and member added.
func (e *testEnv) privateTeam(t *testing.T) *domain.Team {
	t.Helper()
	return e.teamOf(t, domain.TeamPrivate)
}

func (e *testEnv) teamOf(t *testing.T, teamType domain.TeamType) *domain.Team {
	t.Helper()
	ctx := context.Background()

	team, err := e.team.CreateTeam(ctx, TeamInput{Name: "core", Type: teamType}, ownerEmail)
	require.NoError(t, err)
	require.NoError(t, e.team.AddMember(ctx, team.JoinCode, adminEmail, ownerEmail))
	require.NoError(t, e.team.AddMember(ctx, team.JoinCode, memberEmail, ownerEmail))
	require.NoError(t, e.team.ChangeRole(ctx, adminEmail, team.ID, domain.TeamRoleAdmin, ownerEmail))

	team, err = e.teamRepo.GetByID(ctx, team.ID)
	require.NoError(t, err)
	return team
}

func (e *testEnv) loadTeam(t *testing.T, id int64) *domain.Team {
	t.Helper()
	team, err := e.teamRepo.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NoError(t, team.CheckInvariants())
	return team
}

func (e *testEnv) loadTask(t *testing.T, id int64) *domain.Task {
	t.Helper()
	task, err := e.taskRepo.GetByID(context.Background(), id)
	require.NoError(t, err)
	return task
}

func taskInput(name string, priority domain.TaskPriority, to time.Time) TaskInput {
	return TaskInput{
		Name:     name,
		From:     to.Add(-24 * time.Hour),
		To:       to,
		Priority: priority,
	}
}
