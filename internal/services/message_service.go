package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"studyhub/internal/chattypes"
	"studyhub/internal/models"
	"studyhub/internal/storage"
)

// EnvelopePublisher hands a canonical envelope to the fan-out side. The hub
// satisfies it directly in the chatserver; the apiserver uses a Kafka-backed
// implementation so its envelopes reach the chatserver's hub.
type EnvelopePublisher interface {
	Publish(env chattypes.Envelope)
}

// CreateMessageInput is a validated send intent. SenderID comes from the
// authenticated caller, never from the request body. ClientID is the sender's
// temporary id, echoed back in the envelope for optimistic reconciliation.
type CreateMessageInput struct {
	SenderID       uint
	ConversationID string
	ClientID       string
	Type           chattypes.MessageType
	Content        string
	FileURL        string
}

// MessageService persists messages and pushes their envelopes to fan-out.
type MessageService interface {
	Create(ctx context.Context, input CreateMessageInput) (chattypes.Envelope, error)
	ListForConversation(ctx context.Context, userID uint, conversationID string, limit, offset int) ([]*models.Message, error)
}

type messageService struct {
	messages      storage.MessageRepository
	conversations storage.ConversationRepository
	users         storage.UserRepository
	publisher     EnvelopePublisher
}

// NewMessageService creates a MessageService. publisher may be nil when no
// fan-out is wired (migrations, batch tooling).
func NewMessageService(
	messages storage.MessageRepository,
	conversations storage.ConversationRepository,
	users storage.UserRepository,
	publisher EnvelopePublisher,
) MessageService {
	return &messageService{
		messages:      messages,
		conversations: conversations,
		users:         users,
		publisher:     publisher,
	}
}

// Create validates participation, persists the message and publishes its
// envelope. Persistence is the source of truth: a fan-out problem is logged,
// never rolled back, and the caller still gets the envelope so the sender's
// optimistic entry can be confirmed over the HTTP response.
func (s *messageService) Create(ctx context.Context, input CreateMessageInput) (chattypes.Envelope, error) {
	if input.Content == "" && input.FileURL == "" {
		return chattypes.Envelope{}, fmt.Errorf("%w: message needs content or a file", ErrValidation)
	}
	if input.Type == "" {
		input.Type = chattypes.TextMessageType
	}

	convoID, err := storage.StrToUint(input.ConversationID)
	if err != nil {
		return chattypes.Envelope{}, fmt.Errorf("%w: bad conversation id %q", ErrValidation, input.ConversationID)
	}

	ok, err := s.conversations.IsParticipant(ctx, convoID, input.SenderID)
	if err != nil {
		return chattypes.Envelope{}, fmt.Errorf("check participation: %w", err)
	}
	if !ok {
		return chattypes.Envelope{}, ErrForbidden
	}

	sender, err := s.users.GetByID(ctx, input.SenderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return chattypes.Envelope{}, ErrNotFound
		}
		return chattypes.Envelope{}, fmt.Errorf("load sender %d: %w", input.SenderID, err)
	}

	msg := &models.Message{
		ConversationID: convoID,
		SenderID:       input.SenderID,
		Type:           string(input.Type),
		Content:        input.Content,
		FileURL:        input.FileURL,
		SentAt:         time.Now(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return chattypes.Envelope{}, fmt.Errorf("persist message: %w", err)
	}
	msg.Sender = *sender

	// Conversation preview bookkeeping; not worth failing the send over.
	if convo, err := s.conversations.GetByID(ctx, convoID); err == nil {
		convo.LastMessageID = &msg.ID
		if err := s.conversations.Update(ctx, convo); err != nil {
			log.Warn().Err(err).Uint("conversation", convoID).Msg("failed to update last message pointer")
		}
	}

	env := msg.ToEnvelope(input.ClientID)
	if s.publisher != nil {
		s.publisher.Publish(env)
	}
	return env, nil
}

func (s *messageService) ListForConversation(ctx context.Context, userID uint, conversationID string, limit, offset int) ([]*models.Message, error) {
	convoID, err := storage.StrToUint(conversationID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad conversation id %q", ErrValidation, conversationID)
	}

	ok, err := s.conversations.IsParticipant(ctx, convoID, userID)
	if err != nil {
		return nil, fmt.Errorf("check participation: %w", err)
	}
	if !ok {
		return nil, ErrForbidden
	}

	if limit <= 0 || limit > 200 {
		limit = 50
	}
	msgs, err := s.messages.GetByConversationID(ctx, convoID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list messages for conversation %d: %w", convoID, err)
	}
	return msgs, nil
}
