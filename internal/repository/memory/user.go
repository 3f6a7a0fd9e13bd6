package memory

import (
	"context"

	"github.com/aidar/taskmanager/internal/domain"
)

// UserRepository implements repository.UserRepository.
type UserRepository struct {
	s *Store
}

// NewUserRepository creates a UserRepository over the store.
func NewUserRepository(s *Store) *UserRepository {
	return &UserRepository{s: s}
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[user.Email]; ok {
		return domain.ErrUserExists
	}
	u := *user
	r.s.users[user.Email] = &u
	return nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (r *UserRepository) UpdateProfile(_ context.Context, email, firstName, lastName string) error {
	return r.update(email, func(u *domain.User) {
		u.FirstName = firstName
		u.LastName = lastName
	})
}

func (r *UserRepository) UpdateRole(_ context.Context, email string, role domain.Role) error {
	return r.update(email, func(u *domain.User) { u.Role = role })
}

func (r *UserRepository) UpdatePassword(_ context.Context, email, passwordHash string) error {
	return r.update(email, func(u *domain.User) { u.PasswordHash = passwordHash })
}

func (r *UserRepository) update(email string, fn func(*domain.User)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[email]
	if !ok {
		return domain.ErrUserNotFound
	}
	fn(u)
	return nil
}
