package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"studyhub/internal/models"
	"studyhub/internal/storage"
)

// QuizQuestionInput is one question in a quiz-create request.
type QuizQuestionInput struct {
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}

// CreateQuizInput carries the fields for a new quiz.
type CreateQuizInput struct {
	Title     string              `json:"title"`
	Subject   string              `json:"subject"`
	Questions []QuizQuestionInput `json:"questions"`
}

// QuizService manages shared quizzes. Answers are scored client-side.
type QuizService interface {
	Create(ctx context.Context, creatorID uint, input CreateQuizInput) (*models.Quiz, error)
	Get(ctx context.Context, quizID uint) (*models.Quiz, error)
	List(ctx context.Context, subject string, limit, offset int) ([]*models.Quiz, error)
}

type quizService struct {
	quizzes storage.QuizRepository
}

// NewQuizService creates a QuizService.
func NewQuizService(quizzes storage.QuizRepository) QuizService {
	return &quizService{quizzes: quizzes}
}

func (s *quizService) Create(ctx context.Context, creatorID uint, input CreateQuizInput) (*models.Quiz, error) {
	if input.Title == "" || len(input.Questions) == 0 {
		return nil, fmt.Errorf("%w: quiz needs a title and at least one question", ErrValidation)
	}

	quiz := &models.Quiz{Title: input.Title, Subject: input.Subject, CreatorID: creatorID}
	for i, q := range input.Questions {
		if q.Prompt == "" || len(q.Options) < 2 {
			return nil, fmt.Errorf("%w: question %d needs a prompt and at least two options", ErrValidation, i+1)
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			return nil, fmt.Errorf("%w: question %d answer index out of range", ErrValidation, i+1)
		}
		options, err := json.Marshal(q.Options)
		if err != nil {
			return nil, fmt.Errorf("encode options: %w", err)
		}
		quiz.Questions = append(quiz.Questions, models.QuizQuestion{
			Prompt:        q.Prompt,
			Options:       options,
			CorrectAnswer: q.CorrectAnswer,
		})
	}

	if err := s.quizzes.Create(ctx, quiz); err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}
	return quiz, nil
}

func (s *quizService) Get(ctx context.Context, quizID uint) (*models.Quiz, error) {
	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load quiz %d: %w", quizID, err)
	}
	return quiz, nil
}

func (s *quizService) List(ctx context.Context, subject string, limit, offset int) ([]*models.Quiz, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	quizzes, err := s.quizzes.List(ctx, subject, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	return quizzes, nil
}
