package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidar/taskmanager/internal/domain"
	"github.com/aidar/taskmanager/internal/permission"
)

func TestTeamService_CreateTeam(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	team, err := env.team.CreateTeam(ctx, TeamInput{Name: "core", Description: "d", Type: domain.TeamPublic}, ownerEmail)
	require.NoError(t, err)

	assert.Len(t, team.JoinCode, DefaultJoinCodeLength)
	assert.Equal(t, ownerEmail, team.Owner)
	assert.Equal(t, []string{ownerEmail}, team.Members)
	assert.Equal(t, []string{ownerEmail}, team.Admins)
	assert.Equal(t, 1, team.NumberOfMembers)

	_, err = env.team.CreateTeam(ctx, TeamInput{Name: "x", Type: "SECRET"}, ownerEmail)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = env.team.CreateTeam(ctx, TeamInput{Name: "x", Type: domain.TeamPublic}, "ghost@x.io")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestTeamService_CreateTeamRedrawsCollidingCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Занимаем код, который генератор выдаст первым
	seeded := domain.NewTeam("seed", "", domain.TeamPublic, ownerEmail, "abc123")
	require.NoError(t, env.teamRepo.Create(ctx, seeded))

	draws := []string{"abc123", "def456"}
	drawn := 0
	codes := NewJoinCodeGenerator(6, 0).WithSource(func() string {
		code := draws[drawn]
		drawn++
		return code
	})
	svc := NewTeamService(env.teamRepo, env.users, env.requests, codes, discardLogger())

	team, err := svc.CreateTeam(ctx, TeamInput{Name: "core", Type: domain.TeamPublic}, ownerEmail)
	require.NoError(t, err)

	assert.Equal(t, 2, drawn)
	assert.Equal(t, "def456", team.JoinCode)
}

func TestJoinCodeGenerator_Exhausted(t *testing.T) {
	codes := NewJoinCodeGenerator(6, 3).WithSource(func() string { return "same00" })

	_, err := codes.Generate(context.Background(), func(context.Context, string) (bool, error) { return true, nil })
	assert.ErrorIs(t, err, domain.ErrJoinCodeExhausted)
}

func TestJoinCodeGenerator_DefaultSourceLength(t *testing.T) {
	codes := NewJoinCodeGenerator(8, 0)

	code, err := codes.Generate(context.Background(), func(context.Context, string) (bool, error) { return false, nil })
	require.NoError(t, err)
	assert.Len(t, code, 8)
}

func TestTeamService_JoinByCodePublic(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	team := env.teamOf(t, domain.TeamPublic)

	outcome, err := env.team.JoinByCode(ctx, team.JoinCode, outsiderEmail)
	require.NoError(t, err)
	assert.Equal(t, JoinOutcomeJoined, outcome)

	stored := env.loadTeam(t, team.ID)
	assert.True(t, stored.IsMember(outsiderEmail))
	assert.False(t, stored.IsAdmin(outsiderEmail))
	assert.Equal(t, 4, stored.NumberOfMembers)

	_, err = env.team.JoinByCode(ctx, team.JoinCode, outsiderEmail)
	assert.ErrorIs(t, err, domain.ErrAlreadyMember)
}

func TestTeamService_JoinByCodePrivate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	team := env.privateTeam(t)

	outcome, err := env.team.JoinByCode(ctx, team.JoinCode, outsiderEmail)
	require.NoError(t, err)
	assert.Equal(t, JoinOutcomeRequested, outcome)

	requests, err := env.requests.ListByTeam(ctx, team.ID)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, outsiderEmail, requests[0].UserEmail)
	assert.False(t, env.loadTeam(t, team.ID).IsMember(outsiderEmail))

	_, err = env.team.JoinByCode(ctx, team.JoinCode, outsiderEmail)
	assert.ErrorIs(t, err, domain.ErrConflict)

	requests, err = env.requests.ListByTeam(ctx, team.ID)
	require.NoError(t, err)
	assert.Len(t, requests, 1)
}

func TestTeamService_JoinByUnknownCode(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.team.JoinByCode(context.Background(), "nope00", outsiderEmail)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTeamService_AddMemberConsumesRequest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	team := env.privateTeam(t)

	_, err := env.team.JoinByCode(ctx, team.JoinCode, outsiderEmail)
	require.NoError(t, err)

	// Обычный участник добавлять не может
	err = env.team.AddMember(ctx, team.JoinCode, outsiderEmail, memberEmail)
	assert.ErrorIs(t, err, domain.ErrNoPermission)

	require.NoError(t, env.team.AddMember(ctx, team.JoinCode, outsiderEmail, adminEmail))
	assert.True(t, env.loadTeam(t, team.ID).IsMember(outsiderEmail))

	_, err = env.requests.FindByUserAndTeam(ctx, outsiderEmail, team.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = env.team.AddMember(ctx, team.JoinCode, "ghost@x.io", adminEmail)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestTeamService_ApproveJoinRequest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	team := env.privateTeam(t)

	_, err := env.team.JoinByCode(ctx, team.JoinCode, outsiderEmail)
	require.NoError(t, err)

	requests, err := env.team.ListJoinRequests(ctx, team.ID, adminEmail)
	require.NoError(t, err)
	require.Len(t, requests, 1)

	_, err = env.team.ListJoinRequests(ctx, team.ID, memberEmail)
	assert.ErrorIs(t, err, domain.ErrNoPermission)

	assert.ErrorIs(t, env.team.ApproveJoinRequest(ctx, requests[0].ID, memberEmail), domain.ErrNoPermission)
	require.NoError(t, env.team.ApproveJoinRequest(ctx, requests[0].ID, adminEmail))

	assert.True(t, env.loadTeam(t, team.ID).IsMember(outsiderEmail))
	left, err := env.team.ListJoinRequests(ctx, team.ID, adminEmail)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestTeamService_DeleteJoinRequest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	team := env.privateTeam(t)

	_, err := env.team.JoinByCode(ctx, team.JoinCode, outsiderEmail)
	require.NoError(t, err)
	req, err := env.requests.FindByUserAndTeam(ctx, outsiderEmail, team.ID)
	require.NoError(t, err)

	err = env.team.DeleteJoinRequest(ctx, req.ID, memberEmail, permission.CanDeleteJoinRequest)
	assert.ErrorIs(t, err, domain.ErrNoPermission)

	require.NoError(t, env.team.DeleteJoinRequest(ctx, req.ID, outsiderEmail, permission.CanDeleteJoinRequest))

	err = env.team.DeleteJoinRequest(ctx, req.ID, outsiderEmail, nil)
	assert.ErrorIs(t, err, domain.ErrJoinRequestNotFound)

	// После отзыва заявку можно подать снова
	outcome, err := env.team.JoinByCode(ctx, team.JoinCode, outsiderEmail)
	require.NoError(t, err)
	assert.Equal(t, JoinOutcomeRequested, outcome)

	again, err := env.requests.FindByUserAndTeam(ctx, outsiderEmail, team.ID)
	require.NoError(t, err)
	require.NoError(t, env.team.DeleteJoinRequest(ctx, again.ID, memberEmail, nil))
}

func TestTeamService_ChangeRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	team := env.privateTeam(t)

	err := env.team.ChangeRole(ctx, memberEmail, team.ID, domain.TeamRoleAdmin, adminEmail)
	assert.ErrorIs(t, err, domain.ErrNoPermission)
	assert.False(t, env.loadTeam(t, team.ID).IsAdmin(memberEmail))

	require.NoError(t, env.team.ChangeRole(ctx, memberEmail, team.ID, domain.TeamRoleAdmin, ownerEmail))
	assert.Contains(t, env.loadTeam(t, team.ID).Admins, memberEmail)

	// Любой администратор может понизить другого администратора
	require.NoError(t, env.team.ChangeRole(ctx, memberEmail, team.ID, domain.TeamRoleMember, adminEmail))
	assert.NotContains(t, env.loadTeam(t, team.ID).Admins, memberEmail)

	err = env.team.ChangeRole(ctx, ownerEmail, team.ID, domain.TeamRoleMember, ownerEmail)
	assert.ErrorIs(t, err, domain.ErrNoPermission)
	assert.True(t, env.loadTeam(t, team.ID).IsAdmin(ownerEmail))

	err = env.team.ChangeRole(ctx, outsiderEmail, team.ID, domain.TeamRoleAdmin, ownerEmail)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTeamService_RemoveOwnerAlwaysFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	team := env.privateTeam(t)

	for _, actor := range []string{ownerEmail, adminEmail, memberEmail, outsiderEmail, rootEmail} {
		err := env.team.RemoveMember(ctx, ownerEmail, team.ID, actor)
		assert.ErrorIs(t, err, domain.ErrNoPermission, actor)
	}
	assert.True(t, env.loadTeam(t, team.ID).IsMember(ownerEmail))
}

func TestTeamService_RemoveMember(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	team := env.privateTeam(t)

	assert.ErrorIs(t, env.team.RemoveMember(ctx, adminEmail, team.ID, memberEmail), domain.ErrNoPermission)

	require.NoError(t, env.team.RemoveMember(ctx, memberEmail, team.ID, adminEmail))
	stored := env.loadTeam(t, team.ID)
	assert.False(t, stored.IsMember(memberEmail))
	assert.Equal(t, 2, stored.NumberOfMembers)

	require.NoError(t, env.team.RemoveMember(ctx, adminEmail, team.ID, ownerEmail))
	stored = env.loadTeam(t, team.ID)
	assert.Equal(t, []string{ownerEmail}, stored.Members)
	assert.Equal(t, []string{ownerEmail}, stored.Admins)
}

func TestTeamService_InvariantsHoldAcrossOperations(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	team := env.teamOf(t, domain.TeamPublic)

	steps := []func() error{
		func() error { _, err := env.team.JoinByCode(ctx, team.JoinCode, outsiderEmail); return err },
		func() error { return env.team.ChangeRole(ctx, outsiderEmail, team.ID, domain.TeamRoleAdmin, ownerEmail) },
		func() error { return env.team.RemoveMember(ctx, outsiderEmail, team.ID, ownerEmail) },
		func() error { return env.team.AddMember(ctx, team.JoinCode, outsiderEmail, adminEmail) },
		func() error { return env.team.ChangeRole(ctx, adminEmail, team.ID, domain.TeamRoleMember, ownerEmail) },
		func() error { return env.team.RemoveMember(ctx, adminEmail, team.ID, ownerEmail) },
	}

	for i, step := range steps {
		require.NoError(t, step(), "step %d", i)
		env.loadTeam(t, team.ID)
	}

	stored := env.loadTeam(t, team.ID)
	assert.ElementsMatch(t, []string{ownerEmail, memberEmail, outsiderEmail}, stored.Members)
	assert.Equal(t, []string{ownerEmail}, stored.Admins)
}

func TestTeamService_GetAndEditTeam(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	team := env.privateTeam(t)

	_, err := env.team.GetTeam(ctx, team.ID, outsiderEmail)
	assert.ErrorIs(t, err, domain.ErrNoPermission)

	got, err := env.team.GetTeam(ctx, team.ID, supportEmail)
	require.NoError(t, err)
	assert.Equal(t, team.JoinCode, got.JoinCode)

	_, err = env.team.EditTeam(ctx, team.ID, TeamInput{Name: "renamed", Type: domain.TeamPublic}, memberEmail)
	assert.ErrorIs(t, err, domain.ErrNoPermission)

	edited, err := env.team.EditTeam(ctx, team.ID, TeamInput{Name: "renamed", Description: "new", Type: domain.TeamPublic}, adminEmail)
	require.NoError(t, err)
	assert.Equal(t, "renamed", edited.Name)
	assert.Equal(t, domain.TeamPublic, env.loadTeam(t, team.ID).Type)

	_, err = env.team.GetTeam(ctx, 999, ownerEmail)
	assert.ErrorIs(t, err, domain.ErrTeamNotFound)
}
