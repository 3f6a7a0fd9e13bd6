package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aidar/taskmanager/internal/domain"
	"github.com/aidar/taskmanager/internal/permission"
	"github.com/aidar/taskmanager/internal/repository"
)

// UserService handles profile and global role management
type UserService struct {
	userRepo repository.UserRepository
	logger   *slog.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// GetByEmail retrieves a user by email
func (s *UserService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.userRepo.GetByEmail(ctx, email)
}

// UpdateProfile changes the user's first and last name
func (s *UserService) UpdateProfile(ctx context.Context, email, firstName, lastName string) (*domain.User, error) {
	if err := s.userRepo.UpdateProfile(ctx, email, firstName, lastName); err != nil {
		return nil, err
	}

	return s.userRepo.GetByEmail(ctx, email)
}

// ChangeUserRole sets the global role of targetEmail. Only ADMIN users may do this.
func (s *UserService) ChangeUserRole(ctx context.Context, targetEmail string, role domain.Role, actingEmail string) (*domain.User, error) {
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}

	actor, err := resolveActor(ctx, s.userRepo, actingEmail)
	if err != nil {
		return nil, err
	}
	if err := permission.CanChangeUserRole(actor); err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateRole(ctx, targetEmail, role); err != nil {
		return nil, err
	}

	s.logger.Info("user role changed", "user", targetEmail, "role", role, "by", actingEmail)
	return s.userRepo.GetByEmail(ctx, targetEmail)
}

// resolveActor loads the authenticated caller. A token for a user that no
// longer exists is treated as unauthenticated.
func resolveActor(ctx context.Context, users repository.UserRepository, email string) (*domain.User, error) {
	actor, err := users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	return actor, nil
}
