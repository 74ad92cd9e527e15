package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"studyhub/internal/models"
	"studyhub/internal/storage"
)

// ConversationService manages conversations and their participant sets.
// Participation is the authorization boundary for both room joins and
// message creation.
type ConversationService interface {
	ListForUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Conversation, error)
	Get(ctx context.Context, userID, conversationID uint) (*models.Conversation, error)
	CreateDirect(ctx context.Context, userID, otherUserID uint) (*models.Conversation, error)
	CreateGroupChat(ctx context.Context, creatorID uint, name string, memberIDs []uint) (*models.Conversation, error)
	AddParticipant(ctx context.Context, conversationID, userID uint) error

	// EnsureParticipant is the room-join authorization check used by the
	// realtime layer. The conversation id arrives in its wire (string) form.
	EnsureParticipant(ctx context.Context, userID uint, conversationID string) error
}

type conversationService struct {
	conversations storage.ConversationRepository
	users         storage.UserRepository
}

// NewConversationService creates a ConversationService.
func NewConversationService(conversations storage.ConversationRepository, users storage.UserRepository) ConversationService {
	return &conversationService{conversations: conversations, users: users}
}

func (s *conversationService) ListForUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Conversation, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	convos, err := s.conversations.GetForUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list conversations for user %d: %w", userID, err)
	}
	return convos, nil
}

func (s *conversationService) Get(ctx context.Context, userID, conversationID uint) (*models.Conversation, error) {
	ok, err := s.conversations.IsParticipant(ctx, conversationID, userID)
	if err != nil {
		return nil, fmt.Errorf("check participation: %w", err)
	}
	if !ok {
		return nil, ErrForbidden
	}

	convo, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load conversation %d: %w", conversationID, err)
	}
	return convo, nil
}

// CreateDirect returns the existing direct conversation between the two users
// if one exists; starting a chat with the same person twice must not create a
// second channel.
func (s *conversationService) CreateDirect(ctx context.Context, userID, otherUserID uint) (*models.Conversation, error) {
	if userID == otherUserID {
		return nil, fmt.Errorf("%w: cannot start a conversation with yourself", ErrValidation)
	}
	if _, err := s.users.GetByID(ctx, otherUserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load user %d: %w", otherUserID, err)
	}

	existing, err := s.conversations.FindDirectConversation(ctx, userID, otherUserID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find direct conversation: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	convo := &models.Conversation{IsGroup: false}
	if err := s.conversations.Create(ctx, convo); err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	for _, uid := range []uint{userID, otherUserID} {
		p := &models.ConversationParticipant{ConversationID: convo.ID, UserID: uid, JoinedAt: time.Now()}
		if err := s.conversations.AddParticipant(ctx, p); err != nil {
			return nil, fmt.Errorf("add participant %d: %w", uid, err)
		}
	}

	log.Info().Uint("conversation", convo.ID).Uint("user", userID).Uint("other", otherUserID).
		Msg("direct conversation created")
	return convo, nil
}

func (s *conversationService) CreateGroupChat(ctx context.Context, creatorID uint, name string, memberIDs []uint) (*models.Conversation, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: group chat needs a name", ErrValidation)
	}

	convo := &models.Conversation{IsGroup: true, Name: name}
	if err := s.conversations.Create(ctx, convo); err != nil {
		return nil, fmt.Errorf("create group conversation: %w", err)
	}

	seen := make(map[uint]struct{})
	for _, uid := range append([]uint{creatorID}, memberIDs...) {
		if _, dup := seen[uid]; dup {
			continue
		}
		seen[uid] = struct{}{}
		p := &models.ConversationParticipant{ConversationID: convo.ID, UserID: uid, JoinedAt: time.Now()}
		if err := s.conversations.AddParticipant(ctx, p); err != nil {
			return nil, fmt.Errorf("add participant %d: %w", uid, err)
		}
	}
	return convo, nil
}

func (s *conversationService) AddParticipant(ctx context.Context, conversationID, userID uint) error {
	p := &models.ConversationParticipant{ConversationID: conversationID, UserID: userID, JoinedAt: time.Now()}
	if err := s.conversations.AddParticipant(ctx, p); err != nil {
		return fmt.Errorf("add participant %d to conversation %d: %w", userID, conversationID, err)
	}
	return nil
}

func (s *conversationService) EnsureParticipant(ctx context.Context, userID uint, conversationID string) error {
	id, err := storage.StrToUint(conversationID)
	if err != nil {
		return fmt.Errorf("%w: bad conversation id %q", ErrValidation, conversationID)
	}
	ok, err := s.conversations.IsParticipant(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("check participation: %w", err)
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}
