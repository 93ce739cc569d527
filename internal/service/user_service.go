package service

import (
	"context"
	"fmt"

	"github.com/courtside/bookingd/internal/models"
	"github.com/courtside/bookingd/internal/storage"
	"github.com/courtside/bookingd/internal/validation"
)

// UserService covers the profile reads and edits that carry no concurrency
// hazard.
type UserService struct {
	users storage.UserStore
}

func NewUserService(users storage.UserStore) *UserService {
	return &UserService{users: users}
}

func (s *UserService) Profile(ctx context.Context, caller Identity) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, caller.UserID)
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, caller Identity, req *models.UpdateProfileRequest) (*models.User, error) {
	if err := validation.Email(req.Email); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	user, err := s.users.UpdateProfile(ctx, caller.UserID, req)
	if err == storage.ErrDuplicateEmail {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, caller.UserID)
	}
	return user, nil
}

func (s *UserService) ListAll(ctx context.Context, caller Identity) ([]*models.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
