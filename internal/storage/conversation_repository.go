package storage

import (
	"context"

	"gorm.io/gorm"

	"studyhub/internal/models"
)

// ConversationRepository defines conversation data operations.
type ConversationRepository interface {
	Create(ctx context.Context, convo *models.Conversation) error
	Update(ctx context.Context, convo *models.Conversation) error
	GetByID(ctx context.Context, id uint) (*models.Conversation, error)
	GetForUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Conversation, error)
	AddParticipant(ctx context.Context, p *models.ConversationParticipant) error
	GetParticipants(ctx context.Context, conversationID uint) ([]*models.ConversationParticipant, error)
	IsParticipant(ctx context.Context, conversationID, userID uint) (bool, error)
	FindDirectConversation(ctx context.Context, userA, userB uint) (*models.Conversation, error)
}

type gormConversationRepository struct {
	db *gorm.DB
}

// NewGormConversationRepository creates a GORM-backed ConversationRepository.
func NewGormConversationRepository(db *gorm.DB) ConversationRepository {
	return &gormConversationRepository{db: db}
}

func (r *gormConversationRepository) Create(ctx context.Context, convo *models.Conversation) error {
	return r.db.WithContext(ctx).Create(convo).Error
}

func (r *gormConversationRepository) Update(ctx context.Context, convo *models.Conversation) error {
	return r.db.WithContext(ctx).Save(convo).Error
}

func (r *gormConversationRepository) GetByID(ctx context.Context, id uint) (*models.Conversation, error) {
	var convo models.Conversation
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Preload("Participants.User").
		First(&convo, id).Error
	if err != nil {
		return nil, err
	}
	return &convo, nil
}

// GetForUser lists the conversations the user participates in, most recently
// updated first.
func (r *gormConversationRepository) GetForUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Conversation, error) {
	var convos []*models.Conversation
	q := r.db.WithContext(ctx).
		Joins("JOIN conversation_participants cp ON cp.conversation_id = conversations.id").
		Where("cp.user_id = ?", userID).
		Order("conversations.updated_at DESC").
		Preload("Participants").
		Preload("Participants.User")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Find(&convos).Error; err != nil {
		return nil, err
	}
	return convos, nil
}

func (r *gormConversationRepository) AddParticipant(ctx context.Context, p *models.ConversationParticipant) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *gormConversationRepository) GetParticipants(ctx context.Context, conversationID uint) ([]*models.ConversationParticipant, error) {
	var participants []*models.ConversationParticipant
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Preload("User").
		Find(&participants).Error
	if err != nil {
		return nil, err
	}
	return participants, nil
}

func (r *gormConversationRepository) IsParticipant(ctx context.Context, conversationID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindDirectConversation returns the existing non-group conversation between
// two users, or gorm.ErrRecordNotFound.
func (r *gormConversationRepository) FindDirectConversation(ctx context.Context, userA, userB uint) (*models.Conversation, error) {
	var convo models.Conversation
	err := r.db.WithContext(ctx).
		Where("is_group = false").
		Where("id IN (?)",
			r.db.Table("conversation_participants").
				Select("conversation_id").
				Where("user_id IN ?", []uint{userA, userB}).
				Group("conversation_id").
				Having("COUNT(DISTINCT user_id) = 2"),
		).
		First(&convo).Error
	if err != nil {
		return nil, err
	}
	return &convo, nil
}
