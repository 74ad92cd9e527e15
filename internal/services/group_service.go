package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"studyhub/internal/models"
	"studyhub/internal/storage"
)

// CreateGroupInput carries the fields for a new study group.
type CreateGroupInput struct {
	Name        string `json:"name"`
	Subject     string `json:"subject"`
	Description string `json:"description"`
}

// ScheduleSessionInput carries the fields for a new study session.
type ScheduleSessionInput struct {
	Title     string    `json:"title"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

// GroupService manages study groups, their membership and sessions. Every
// group gets a dedicated group conversation; joining the group joins the
// chat.
type GroupService interface {
	Create(ctx context.Context, hostID uint, input CreateGroupInput) (*models.StudyGroup, error)
	Get(ctx context.Context, groupID uint) (*models.StudyGroup, error)
	List(ctx context.Context, subject string, limit, offset int) ([]*models.StudyGroup, error)
	ListForUser(ctx context.Context, userID uint) ([]*models.StudyGroup, error)
	Join(ctx context.Context, groupID, userID uint) error
	Leave(ctx context.Context, groupID, userID uint) error

	ScheduleSession(ctx context.Context, groupID, hostID uint, input ScheduleSessionInput) (*models.StudySession, error)
	ListSessions(ctx context.Context, groupID uint) ([]*models.StudySession, error)
	UpcomingSessions(ctx context.Context, userID uint) ([]*models.StudySession, error)
}

type groupService struct {
	groups        storage.GroupRepository
	conversations ConversationService
	activity      ActivityRecorder
}

// NewGroupService creates a GroupService. activity may be nil.
func NewGroupService(groups storage.GroupRepository, conversations ConversationService, activity ActivityRecorder) GroupService {
	return &groupService{groups: groups, conversations: conversations, activity: activity}
}

func (s *groupService) record(ctx context.Context, eventType string, userID uint, ref uint) {
	if s.activity == nil {
		return
	}
	s.activity.Record(ctx, ActivityEvent{
		Type:   eventType,
		UserID: userID,
		Ref:    strconv.FormatUint(uint64(ref), 10),
	})
}

func (s *groupService) Create(ctx context.Context, hostID uint, input CreateGroupInput) (*models.StudyGroup, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: group needs a name", ErrValidation)
	}

	convo, err := s.conversations.CreateGroupChat(ctx, hostID, input.Name, nil)
	if err != nil {
		return nil, fmt.Errorf("create group chat: %w", err)
	}

	group := &models.StudyGroup{
		Name:           input.Name,
		Subject:        input.Subject,
		Description:    input.Description,
		HostID:         hostID,
		ConversationID: &convo.ID,
	}
	if err := s.groups.Create(ctx, group); err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}
	if err := s.groups.AddMember(ctx, &models.GroupMember{GroupID: group.ID, UserID: hostID, JoinedAt: time.Now()}); err != nil {
		return nil, fmt.Errorf("add host as member: %w", err)
	}

	log.Info().Uint("group", group.ID).Uint("host", hostID).Str("subject", input.Subject).
		Msg("study group created")
	s.record(ctx, "group-created", hostID, group.ID)
	return group, nil
}

func (s *groupService) Get(ctx context.Context, groupID uint) (*models.StudyGroup, error) {
	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load group %d: %w", groupID, err)
	}
	return group, nil
}

func (s *groupService) List(ctx context.Context, subject string, limit, offset int) ([]*models.StudyGroup, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	groups, err := s.groups.List(ctx, subject, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

func (s *groupService) ListForUser(ctx context.Context, userID uint) ([]*models.StudyGroup, error) {
	groups, err := s.groups.GetForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list groups for user %d: %w", userID, err)
	}
	return groups, nil
}

// Join adds the user to the group and to the group's chat conversation.
func (s *groupService) Join(ctx context.Context, groupID, userID uint) error {
	group, err := s.Get(ctx, groupID)
	if err != nil {
		return err
	}

	already, err := s.groups.IsMember(ctx, groupID, userID)
	if err != nil {
		return fmt.Errorf("check membership: %w", err)
	}
	if already {
		return nil
	}

	if err := s.groups.AddMember(ctx, &models.GroupMember{GroupID: groupID, UserID: userID, JoinedAt: time.Now()}); err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	if group.ConversationID != nil {
		if err := s.conversations.AddParticipant(ctx, *group.ConversationID, userID); err != nil {
			return fmt.Errorf("add to group chat: %w", err)
		}
	}
	s.record(ctx, "group-joined", userID, groupID)
	return nil
}

func (s *groupService) Leave(ctx context.Context, groupID, userID uint) error {
	if err := s.groups.RemoveMember(ctx, groupID, userID); err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	s.record(ctx, "group-left", userID, groupID)
	return nil
}

// ScheduleSession creates a session; only group members may schedule.
func (s *groupService) ScheduleSession(ctx context.Context, groupID, hostID uint, input ScheduleSessionInput) (*models.StudySession, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("%w: session needs a title", ErrValidation)
	}
	if !input.EndTime.After(input.StartTime) {
		return nil, fmt.Errorf("%w: session must end after it starts", ErrValidation)
	}

	member, err := s.groups.IsMember(ctx, groupID, hostID)
	if err != nil {
		return nil, fmt.Errorf("check membership: %w", err)
	}
	if !member {
		return nil, ErrForbidden
	}

	session := &models.StudySession{
		GroupID:   groupID,
		HostID:    hostID,
		Title:     input.Title,
		StartTime: input.StartTime,
		EndTime:   input.EndTime,
	}
	if err := s.groups.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	s.record(ctx, "session-scheduled", hostID, session.ID)
	return session, nil
}

func (s *groupService) ListSessions(ctx context.Context, groupID uint) ([]*models.StudySession, error) {
	sessions, err := s.groups.GetSessionsForGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list sessions for group %d: %w", groupID, err)
	}
	return sessions, nil
}

func (s *groupService) UpcomingSessions(ctx context.Context, userID uint) ([]*models.StudySession, error) {
	sessions, err := s.groups.GetUpcomingSessionsForUser(ctx, userID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("list upcoming sessions for user %d: %w", userID, err)
	}
	return sessions, nil
}
