package services

import (
	"context"
	"fmt"

	"studyhub/internal/models"
	"studyhub/internal/storage"
)

// ShareResourceInput carries the fields for a shared resource.
type ShareResourceInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	FileURL     string `json:"fileUrl"`
}

// ResourceService manages files and links shared within study groups.
type ResourceService interface {
	Share(ctx context.Context, groupID, uploaderID uint, input ShareResourceInput) (*models.Resource, error)
	ListForGroup(ctx context.Context, groupID, userID uint) ([]*models.Resource, error)
	ListForUser(ctx context.Context, userID uint) ([]*models.Resource, error)
}

type resourceService struct {
	resources storage.ResourceRepository
	groups    storage.GroupRepository
	activity  ActivityRecorder
}

// NewResourceService creates a ResourceService. activity may be nil.
func NewResourceService(resources storage.ResourceRepository, groups storage.GroupRepository, activity ActivityRecorder) ResourceService {
	return &resourceService{resources: resources, groups: groups, activity: activity}
}

func (s *resourceService) Share(ctx context.Context, groupID, uploaderID uint, input ShareResourceInput) (*models.Resource, error) {
	if input.Title == "" || input.FileURL == "" {
		return nil, fmt.Errorf("%w: resource needs a title and a file", ErrValidation)
	}

	member, err := s.groups.IsMember(ctx, groupID, uploaderID)
	if err != nil {
		return nil, fmt.Errorf("check membership: %w", err)
	}
	if !member {
		return nil, ErrForbidden
	}

	resource := &models.Resource{
		GroupID:     groupID,
		UploaderID:  uploaderID,
		Title:       input.Title,
		Description: input.Description,
		FileURL:     input.FileURL,
	}
	if err := s.resources.Create(ctx, resource); err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}
	if s.activity != nil {
		s.activity.Record(ctx, ActivityEvent{Type: "resource-shared", UserID: uploaderID, Ref: resource.IDString()})
	}
	return resource, nil
}

func (s *resourceService) ListForGroup(ctx context.Context, groupID, userID uint) ([]*models.Resource, error) {
	member, err := s.groups.IsMember(ctx, groupID, userID)
	if err != nil {
		return nil, fmt.Errorf("check membership: %w", err)
	}
	if !member {
		return nil, ErrForbidden
	}

	resources, err := s.resources.GetByGroupID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list resources for group %d: %w", groupID, err)
	}
	return resources, nil
}

func (s *resourceService) ListForUser(ctx context.Context, userID uint) ([]*models.Resource, error) {
	resources, err := s.resources.GetForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list resources for user %d: %w", userID, err)
	}
	return resources, nil
}
