package service

import (
	"context"

	"github.com/aidar/taskmanager/internal/permission"
	"github.com/aidar/taskmanager/internal/repository"
)

// StatsService handles statistics queries
type StatsService struct {
	statsRepo repository.StatsRepository
	teamRepo  repository.TeamRepository
	userRepo  repository.UserRepository
}

// NewStatsService creates a new StatsService
func NewStatsService(
	statsRepo repository.StatsRepository,
	teamRepo repository.TeamRepository,
	userRepo repository.UserRepository,
) *StatsService {
	return &StatsService{
		statsRepo: statsRepo,
		teamRepo:  teamRepo,
		userRepo:  userRepo,
	}
}

// GetStats returns task statistics over the whole store. Elevated users only.
func (s *StatsService) GetStats(ctx context.Context, actingEmail string) (*repository.TaskStats, error) {
	actor, err := resolveActor(ctx, s.userRepo, actingEmail)
	if err != nil {
		return nil, err
	}
	if err := permission.CanRunMaintenance(actor); err != nil {
		return nil, err
	}

	return s.statsRepo.TaskStats(ctx)
}

// GetTeamStats returns statistics over the tasks a team created
func (s *StatsService) GetTeamStats(ctx context.Context, teamID int64, actingEmail string) (*repository.TaskStats, error) {
	actor, err := resolveActor(ctx, s.userRepo, actingEmail)
	if err != nil {
		return nil, err
	}

	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if err := permission.CanViewTeam(actor, team); err != nil {
		return nil, err
	}

	return s.statsRepo.TeamTaskStats(ctx, team.ID)
}
