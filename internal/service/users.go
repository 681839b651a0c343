package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"shapechat/internal/domain"
	"shapechat/internal/repository"
)

// UserService manages the persisted per-user configuration: profile,
// API key, and the selected shape.
type UserService struct {
	users *repository.Users
}

func NewUserService(users *repository.Users) *UserService {
	return &UserService{users: users}
}

// FindOrCreate loads the user, creating the record on first contact.
func (s *UserService) FindOrCreate(ctx context.Context, id int64, firstName, username string) (*domain.User, error) {
	user, err := s.users.Upsert(ctx, id, firstName, username)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return user, nil
}

// SetAPIKey stores the user's Shapes API key.
func (s *UserService) SetAPIKey(ctx context.Context, userID int64, apiKey string) error {
	return s.users.SetAPIKey(ctx, userID, apiKey)
}

// SelectShape makes shapeID the user's active shape.
func (s *UserService) SelectShape(ctx context.Context, userID int64, shapeID uuid.UUID) error {
	return s.users.SetSelectedShape(ctx, userID, &shapeID)
}
