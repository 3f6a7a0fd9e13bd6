package memory

import (
	"context"

	"github.com/aidar/taskmanager/internal/domain"
	"github.com/aidar/taskmanager/internal/repository"
)

var (
	allProgress = []domain.TaskProgress{
		domain.ProgressTodo, domain.ProgressPlanning, domain.ProgressInProgress,
		domain.ProgressFinished, domain.ProgressOverdue, domain.ProgressClosed,
	}
	allPriorities = []domain.TaskPriority{
		domain.PriorityHighest, domain.PriorityHigh, domain.PriorityMedium, domain.PriorityLow,
	}
)

// StatsRepository implements repository.StatsRepository.
type StatsRepository struct {
	s *Store
}

// NewStatsRepository creates a StatsRepository over the store.
func NewStatsRepository(s *Store) *StatsRepository {
	return &StatsRepository{s: s}
}

func (r *StatsRepository) TaskStats(_ context.Context) (*repository.TaskStats, error) {
	return r.count(func(*domain.Task) bool { return true }), nil
}

func (r *StatsRepository) TeamTaskStats(_ context.Context, teamID int64) (*repository.TaskStats, error) {
	r.s.mu.RLock()
	_, ok := r.s.teams[teamID]
	r.s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrTeamNotFound
	}
	return r.count(func(t *domain.Task) bool { return t.TeamID != nil && *t.TeamID == teamID }), nil
}

// count omits zero buckets, like the GROUP BY queries in postgres.
func (r *StatsRepository) count(match func(*domain.Task) bool) *repository.TaskStats {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	byProgress := make(map[domain.TaskProgress]int)
	byPriority := make(map[domain.TaskPriority]int)
	stats := &repository.TaskStats{
		ByProgress: []repository.ProgressCount{},
		ByPriority: []repository.PriorityCount{},
	}
	for _, t := range r.s.tasks {
		if !match(t) {
			continue
		}
		stats.Total++
		byProgress[t.Progress]++
		byPriority[t.Priority]++
	}

	for _, p := range allProgress {
		if n := byProgress[p]; n > 0 {
			stats.ByProgress = append(stats.ByProgress, repository.ProgressCount{Progress: p, Count: n})
		}
	}
	for _, p := range allPriorities {
		if n := byPriority[p]; n > 0 {
			stats.ByPriority = append(stats.ByPriority, repository.PriorityCount{Priority: p, Count: n})
		}
	}
	return stats
}
