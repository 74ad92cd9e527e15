package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"studyhub/internal/models"
	"studyhub/internal/storage"
)

// ProfileUpdate carries the mutable profile fields. Nil pointers leave the
// stored value untouched.
type ProfileUpdate struct {
	Name          *string          `json:"name,omitempty"`
	ImageURL      *string          `json:"image,omitempty"`
	Bio           *string          `json:"bio,omitempty"`
	Location      *string          `json:"location,omitempty"`
	Language      *string          `json:"language,omitempty"`
	Notifications *json.RawMessage `json:"notifications,omitempty"`
	Privacy       *json.RawMessage `json:"privacy,omitempty"`
}

// UserService handles profile reads and updates.
type UserService interface {
	GetProfile(ctx context.Context, userID uint) (*models.User, error)
	UpdateProfile(ctx context.Context, userID uint, update ProfileUpdate) (*models.User, error)
	Search(ctx context.Context, query string, limit int) ([]*models.User, error)
}

type userService struct {
	users storage.UserRepository
}

// NewUserService creates a UserService.
func NewUserService(users storage.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load user %d: %w", userID, err)
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uint, update ProfileUpdate) (*models.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		if *update.Name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
		}
		user.Name = *update.Name
	}
	if update.ImageURL != nil {
		user.ImageURL = *update.ImageURL
	}
	if update.Bio != nil {
		user.Bio = *update.Bio
	}
	if update.Location != nil {
		user.Location = *update.Location
	}
	if update.Language != nil {
		user.Language = *update.Language
	}
	if update.Notifications != nil {
		user.Notifications = *update.Notifications
	}
	if update.Privacy != nil {
		user.Privacy = *update.Privacy
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user %d: %w", userID, err)
	}
	return user, nil
}

func (s *userService) Search(ctx context.Context, query string, limit int) ([]*models.User, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	users, err := s.users.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return users, nil
}
