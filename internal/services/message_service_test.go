package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"studyhub/internal/chattypes"
	"studyhub/internal/models"
)

type fakeMessageRepo struct {
	created []*models.Message
	nextID  uint
}

func (f *fakeMessageRepo) Create(_ context.Context, m *models.Message) error {
	f.nextID++
	m.ID = f.nextID
	f.created = append(f.created, m)
	return nil
}

func (f *fakeMessageRepo) GetByID(_ context.Context, id uint) (*models.Message, error) {
	for _, m := range f.created {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeMessageRepo) GetByConversationID(_ context.Context, conversationID uint, _, _ int) ([]*models.Message, error) {
	var out []*models.Message
	for _, m := range f.created {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeConversationRepo struct {
	participants map[uint][]uint // conversationID -> userIDs
	convos       map[uint]*models.Conversation
	updated      []*models.Conversation
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{
		participants: make(map[uint][]uint),
		convos:       make(map[uint]*models.Conversation),
	}
}

func (f *fakeConversationRepo) Create(_ context.Context, c *models.Conversation) error {
	c.ID = uint(len(f.convos) + 1)
	f.convos[c.ID] = c
	return nil
}

func (f *fakeConversationRepo) Update(_ context.Context, c *models.Conversation) error {
	f.updated = append(f.updated, c)
	return nil
}

func (f *fakeConversationRepo) GetByID(_ context.Context, id uint) (*models.Conversation, error) {
	c, ok := f.convos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (f *fakeConversationRepo) GetForUser(_ context.Context, _ uint, _, _ int) ([]*models.Conversation, error) {
	return nil, nil
}

func (f *fakeConversationRepo) AddParticipant(_ context.Context, p *models.ConversationParticipant) error {
	f.participants[p.ConversationID] = append(f.participants[p.ConversationID], p.UserID)
	return nil
}

func (f *fakeConversationRepo) GetParticipants(_ context.Context, _ uint) ([]*models.ConversationParticipant, error) {
	return nil, nil
}

func (f *fakeConversationRepo) IsParticipant(_ context.Context, conversationID, userID uint) (bool, error) {
	for _, uid := range f.participants[conversationID] {
		if uid == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeConversationRepo) FindDirectConversation(_ context.Context, _, _ uint) (*models.Conversation, error) {
	return nil, gorm.ErrRecordNotFound
}

type fakeUserRepo struct {
	users map[uint]*models.User
}

func (f *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	u.ID = uint(len(f.users) + 1)
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) Update(_ context.Context, _ *models.User) error { return nil }

func (f *fakeUserRepo) Search(_ context.Context, _ string, _ int) ([]*models.User, error) {
	return nil, nil
}

type capturePublisher struct {
	published []chattypes.Envelope
}

func (p *capturePublisher) Publish(env chattypes.Envelope) {
	p.published = append(p.published, env)
}

func newMessageFixture() (*fakeMessageRepo, *fakeConversationRepo, *fakeUserRepo, *capturePublisher, MessageService) {
	messages := &fakeMessageRepo{}
	convos := newFakeConversationRepo()
	users := &fakeUserRepo{users: map[uint]*models.User{
		1: {BaseModel: models.BaseModel{ID: 1}, Name: "Alice", Email: "alice@example.com"},
		2: {BaseModel: models.BaseModel{ID: 2}, Name: "Bob", Email: "bob@example.com"},
	}}
	convos.convos[10] = &models.Conversation{BaseModel: models.BaseModel{ID: 10}}
	convos.participants[10] = []uint{1, 2}

	publisher := &capturePublisher{}
	svc := NewMessageService(messages, convos, users, publisher)
	return messages, convos, users, publisher, svc
}

func TestCreateMessagePersistsAndPublishes(t *testing.T) {
	messages, convos, _, publisher, svc := newMessageFixture()

	env, err := svc.Create(context.Background(), CreateMessageInput{
		SenderID:       1,
		ConversationID: "10",
		ClientID:       "tmp-abc",
		Content:        "hello",
	})
	require.NoError(t, err)

	require.Len(t, messages.created, 1)
	require.Equal(t, "hello", messages.created[0].Content)
	require.WithinDuration(t, time.Now(), messages.created[0].SentAt, time.Second)

	// The envelope echoes the client's temporary id and carries server ids.
	require.Equal(t, "tmp-abc", env.ClientID)
	require.Equal(t, "1", env.ID)
	require.Equal(t, "10", env.ConversationID)
	require.Equal(t, "1", env.SenderID)
	require.Equal(t, "Alice", env.SenderName)
	require.Equal(t, chattypes.TextMessageType, env.Type)

	require.Len(t, publisher.published, 1)
	require.Equal(t, env, publisher.published[0])

	// Conversation preview pointer follows the newest message.
	require.NotEmpty(t, convos.updated)
	require.Equal(t, messages.created[0].ID, *convos.updated[0].LastMessageID)
}

func TestCreateMessageRejectsNonParticipant(t *testing.T) {
	messages, _, _, publisher, svc := newMessageFixture()

	_, err := svc.Create(context.Background(), CreateMessageInput{
		SenderID:       99,
		ConversationID: "10",
		Content:        "sneaky",
	})
	require.ErrorIs(t, err, ErrForbidden)
	require.Empty(t, messages.created, "rejected message must not be persisted")
	require.Empty(t, publisher.published, "rejected message must not be fanned out")
}

func TestCreateMessageValidation(t *testing.T) {
	_, _, _, _, svc := newMessageFixture()

	_, err := svc.Create(context.Background(), CreateMessageInput{SenderID: 1, ConversationID: "10"})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(context.Background(), CreateMessageInput{SenderID: 1, ConversationID: "not-a-number", Content: "x"})
	require.ErrorIs(t, err, ErrValidation)
}

func TestListForConversationChecksParticipation(t *testing.T) {
	_, _, _, _, svc := newMessageFixture()

	_, err := svc.Create(context.Background(), CreateMessageInput{SenderID: 1, ConversationID: "10", Content: "hi"})
	require.NoError(t, err)

	msgs, err := svc.ListForConversation(context.Background(), 2, "10", 50, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	_, err = svc.ListForConversation(context.Background(), 99, "10", 50, 0)
	require.ErrorIs(t, err, ErrForbidden)
}
