package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/aidar/taskmanager/internal/domain"
)

// JoinRequestRepository implements repository.JoinRequestRepository.
type JoinRequestRepository struct {
	s *Store
}

// NewJoinRequestRepository creates a JoinRequestRepository over the store.
func NewJoinRequestRepository(s *Store) *JoinRequestRepository {
	return &JoinRequestRepository{s: s}
}

func (r *JoinRequestRepository) Create(_ context.Context, req *domain.JoinRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.requests {
		if existing.UserEmail == req.UserEmail && existing.TeamID == req.TeamID {
			return domain.ErrDuplicateRequest
		}
	}

	r.s.nextRequestID++
	req.ID = r.s.nextRequestID
	c := *req
	r.s.requests[req.ID] = &c
	return nil
}

func (r *JoinRequestRepository) GetByID(_ context.Context, requestID int64) (*domain.JoinRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	req, ok := r.s.requests[requestID]
	if !ok {
		return nil, domain.ErrJoinRequestNotFound
	}
	c := *req
	return &c, nil
}

func (r *JoinRequestRepository) FindByUserAndTeam(_ context.Context, userEmail string, teamID int64) (*domain.JoinRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, req := range r.s.requests {
		if req.UserEmail == userEmail && req.TeamID == teamID {
			c := *req
			return &c, nil
		}
	}
	return nil, domain.ErrJoinRequestNotFound
}

func (r *JoinRequestRepository) ListByTeam(_ context.Context, teamID int64) ([]*domain.JoinRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.JoinRequest, 0)
	for _, req := range r.s.requests {
		if req.TeamID == teamID {
			c := *req
			out = append(out, &c)
		}
	}
	slices.SortFunc(out, func(a, b *domain.JoinRequest) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (r *JoinRequestRepository) Delete(_ context.Context, requestID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.requests[requestID]; !ok {
		return domain.ErrJoinRequestNotFound
	}
	delete(r.s.requests, requestID)
	return nil
}
