package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"shapechat/internal/config"
	"shapechat/internal/domain"
	"shapechat/internal/repository"
	"shapechat/internal/shapes"
)

// ShapeService registers and resolves the shapes a user can talk to.
type ShapeService struct {
	shapes  *repository.Shapes
	users   *repository.Users
	profile *shapes.ProfileFetcher
}

func NewShapeService(shapesRepo *repository.Shapes, users *repository.Users, profile *shapes.ProfileFetcher) *ShapeService {
	return &ShapeService{shapes: shapesRepo, users: users, profile: profile}
}

// Register derives a shape record from a user-supplied reference URL and
// stores it. The first registered shape becomes the user's selection.
func (s *ShapeService) Register(ctx context.Context, user *domain.User, referenceURL string) (*domain.Shape, error) {
	refURL, err := normalizeReferenceURL(referenceURL)
	if err != nil {
		return nil, err
	}

	count, err := s.shapes.CountByOwner(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if count >= config.MaxShapesPerUser {
		return nil, domain.ErrShapeLimit
	}

	shape := domain.Shape{
		ID:           uuid.New(),
		OwnerID:      user.ID,
		Name:         s.profile.DisplayName(ctx, refURL),
		ReferenceURL: refURL,
		CreatedAt:    time.Now(),
	}
	if err := s.shapes.Create(ctx, shape); err != nil {
		return nil, err
	}

	if user.SelectedShapeID == nil {
		if err := s.users.SetSelectedShape(ctx, user.ID, &shape.ID); err != nil {
			return nil, fmt.Errorf("select first shape: %w", err)
		}
		user.SelectedShapeID = &shape.ID
	}
	return &shape, nil
}

// List returns the user's registered shapes in registration order.
func (s *ShapeService) List(ctx context.Context, ownerID int64) ([]domain.Shape, error) {
	return s.shapes.ListByOwner(ctx, ownerID)
}

// Selected resolves the user's active shape, or ErrNoShapeSelected.
func (s *ShapeService) Selected(ctx context.Context, user *domain.User) (*domain.Shape, error) {
	if user.SelectedShapeID == nil {
		return nil, domain.ErrNoShapeSelected
	}
	shape, err := s.shapes.Get(ctx, *user.SelectedShapeID)
	if err != nil {
		return nil, err
	}
	if shape.OwnerID != user.ID {
		return nil, domain.ErrShapeNotFound
	}
	return shape, nil
}

// Remove deletes a registered shape and clears the selection if it was
// the active one.
func (s *ShapeService) Remove(ctx context.Context, user *domain.User, shapeID uuid.UUID) error {
	if err := s.shapes.Delete(ctx, user.ID, shapeID); err != nil {
		return err
	}
	if user.SelectedShapeID != nil && *user.SelectedShapeID == shapeID {
		if err := s.users.SetSelectedShape(ctx, user.ID, nil); err != nil {
			return fmt.Errorf("clear selection: %w", err)
		}
		user.SelectedShapeID = nil
	}
	return nil
}

// normalizeReferenceURL validates the user-supplied URL and coerces it
// to https. The URL must carry a host and at least one path segment to
// derive the model slug from.
func normalizeReferenceURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", domain.ErrInvalidShapeURL
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", domain.ErrInvalidShapeURL
	}
	u.Scheme = "https"
	if shapes.SlugFromURL(u.String()) == "" {
		return "", domain.ErrInvalidShapeURL
	}
	return u.String(), nil
}
