package storage

import (
	"context"

	"gorm.io/gorm"

	"studyhub/internal/models"
)

// ResourceRepository defines shared-resource data operations.
type ResourceRepository interface {
	Create(ctx context.Context, resource *models.Resource) error
	GetByGroupID(ctx context.Context, groupID uint) ([]*models.Resource, error)
	GetForUser(ctx context.Context, userID uint) ([]*models.Resource, error)
}

type gormResourceRepository struct {
	db *gorm.DB
}

// NewGormResourceRepository creates a GORM-backed ResourceRepository.
func NewGormResourceRepository(db *gorm.DB) ResourceRepository {
	return &gormResourceRepository{db: db}
}

func (r *gormResourceRepository) Create(ctx context.Context, resource *models.Resource) error {
	return r.db.WithContext(ctx).Create(resource).Error
}

func (r *gormResourceRepository) GetByGroupID(ctx context.Context, groupID uint) ([]*models.Resource, error) {
	var resources []*models.Resource
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("created_at DESC").
		Preload("Uploader").
		Find(&resources).Error
	if err != nil {
		return nil, err
	}
	return resources, nil
}

// GetForUser lists resources shared in any group the user belongs to.
func (r *gormResourceRepository) GetForUser(ctx context.Context, userID uint) ([]*models.Resource, error) {
	var resources []*models.Resource
	err := r.db.WithContext(ctx).
		Joins("JOIN group_members gm ON gm.group_id = resources.group_id").
		Where("gm.user_id = ?", userID).
		Order("resources.created_at DESC").
		Preload("Uploader").
		Find(&resources).Error
	if err != nil {
		return nil, err
	}
	return resources, nil
}
