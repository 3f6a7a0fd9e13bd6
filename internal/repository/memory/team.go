package memory

import (
	"context"

	"github.com/aidar/taskmanager/internal/domain"
)

// TeamRepository implements repository.TeamRepository.
type TeamRepository struct {
	s *Store
}

// NewTeamRepository creates a TeamRepository over the store.
func NewTeamRepository(s *Store) *TeamRepository {
	return &TeamRepository{s: s}
}

func (r *TeamRepository) Create(_ context.Context, team *domain.Team) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.findByCode(team.JoinCode) != nil {
		return domain.ErrJoinCodeTaken
	}

	r.s.nextTeamID++
	team.ID = r.s.nextTeamID
	team.Version = 1
	r.s.teams[team.ID] = team.Clone()
	return nil
}

func (r *TeamRepository) GetByID(_ context.Context, teamID int64) (*domain.Team, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.teams[teamID]
	if !ok {
		return nil, domain.ErrTeamNotFound
	}
	return t.Clone(), nil
}

func (r *TeamRepository) GetByJoinCode(_ context.Context, code string) (*domain.Team, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t := r.findByCode(code)
	if t == nil {
		return nil, domain.ErrInvalidJoinCode
	}
	return t.Clone(), nil
}

func (r *TeamRepository) GetByTaskID(_ context.Context, taskID int64) (*domain.Team, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	task, ok := r.s.tasks[taskID]
	if !ok || task.TeamID == nil {
		return nil, domain.ErrTeamNotFound
	}
	t, ok := r.s.teams[*task.TeamID]
	if !ok {
		return nil, domain.ErrTeamNotFound
	}
	return t.Clone(), nil
}

func (r *TeamRepository) JoinCodeExists(_ context.Context, code string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.findByCode(code) != nil, nil
}

func (r *TeamRepository) Update(_ context.Context, team *domain.Team) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.teams[team.ID]
	if !ok {
		return domain.ErrTeamNotFound
	}
	if current.Version != team.Version {
		return domain.ErrStaleVersion
	}
	if other := r.findByCode(team.JoinCode); other != nil && other.ID != team.ID {
		return domain.ErrJoinCodeTaken
	}

	team.Version++
	r.s.teams[team.ID] = team.Clone()
	return nil
}

// findByCode expects the caller to hold the lock.
func (r *TeamRepository) findByCode(code string) *domain.Team {
	for _, t := range r.s.teams {
		if t.JoinCode == code {
			return t
		}
	}
	return nil
}
