package storage

import (
	"context"
	"time"

	"gorm.io/gorm"

	"studyhub/internal/models"
)

// GroupRepository defines study-group and session data operations.
type GroupRepository interface {
	Create(ctx context.Context, group *models.StudyGroup) error
	Update(ctx context.Context, group *models.StudyGroup) error
	GetByID(ctx context.Context, id uint) (*models.StudyGroup, error)
	List(ctx context.Context, subject string, limit, offset int) ([]*models.StudyGroup, error)
	GetForUser(ctx context.Context, userID uint) ([]*models.StudyGroup, error)
	AddMember(ctx context.Context, member *models.GroupMember) error
	RemoveMember(ctx context.Context, groupID, userID uint) error
	IsMember(ctx context.Context, groupID, userID uint) (bool, error)

	CreateSession(ctx context.Context, session *models.StudySession) error
	GetSessionsForGroup(ctx context.Context, groupID uint) ([]*models.StudySession, error)
	GetUpcomingSessionsForUser(ctx context.Context, userID uint, after time.Time) ([]*models.StudySession, error)
}

type gormGroupRepository struct {
	db *gorm.DB
}

// NewGormGroupRepository creates a GORM-backed GroupRepository.
func NewGormGroupRepository(db *gorm.DB) GroupRepository {
	return &gormGroupRepository{db: db}
}

func (r *gormGroupRepository) Create(ctx context.Context, group *models.StudyGroup) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *gormGroupRepository) Update(ctx context.Context, group *models.StudyGroup) error {
	return r.db.WithContext(ctx).Save(group).Error
}

func (r *gormGroupRepository) GetByID(ctx context.Context, id uint) (*models.StudyGroup, error) {
	var group models.StudyGroup
	err := r.db.WithContext(ctx).
		Preload("Host").
		Preload("Members").
		Preload("Sessions").
		Preload("Resources").
		First(&group, id).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *gormGroupRepository) List(ctx context.Context, subject string, limit, offset int) ([]*models.StudyGroup, error) {
	var groups []*models.StudyGroup
	q := r.db.WithContext(ctx).Preload("Host").Order("created_at DESC")
	if subject != "" {
		q = q.Where("subject = ?", subject)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *gormGroupRepository) GetForUser(ctx context.Context, userID uint) ([]*models.StudyGroup, error) {
	var groups []*models.StudyGroup
	err := r.db.WithContext(ctx).
		Joins("JOIN group_members gm ON gm.group_id = study_groups.id").
		Where("gm.user_id = ?", userID).
		Preload("Host").
		Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *gormGroupRepository) AddMember(ctx context.Context, member *models.GroupMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *gormGroupRepository) RemoveMember(ctx context.Context, groupID, userID uint) error {
	return r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&models.GroupMember{}).Error
}

func (r *gormGroupRepository) IsMember(ctx context.Context, groupID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *gormGroupRepository) CreateSession(ctx context.Context, session *models.StudySession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *gormGroupRepository) GetSessionsForGroup(ctx context.Context, groupID uint) ([]*models.StudySession, error) {
	var sessions []*models.StudySession
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("start_time ASC").
		Preload("Host").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// GetUpcomingSessionsForUser lists sessions of the user's groups that have
// not ended yet, soonest first.
func (r *gormGroupRepository) GetUpcomingSessionsForUser(ctx context.Context, userID uint, after time.Time) ([]*models.StudySession, error) {
	var sessions []*models.StudySession
	err := r.db.WithContext(ctx).
		Joins("JOIN group_members gm ON gm.group_id = study_sessions.group_id").
		Where("gm.user_id = ? AND study_sessions.end_time >= ?", userID, after).
		Order("study_sessions.start_time ASC").
		Preload("Group").
		Preload("Host").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}
