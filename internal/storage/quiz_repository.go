package storage

import (
	"context"

	"gorm.io/gorm"

	"studyhub/internal/models"
)

// QuizRepository defines quiz data operations.
type QuizRepository interface {
	Create(ctx context.Context, quiz *models.Quiz) error
	GetByID(ctx context.Context, id uint) (*models.Quiz, error)
	List(ctx context.Context, subject string, limit, offset int) ([]*models.Quiz, error)
}

type gormQuizRepository struct {
	db *gorm.DB
}

// NewGormQuizRepository creates a GORM-backed QuizRepository.
func NewGormQuizRepository(db *gorm.DB) QuizRepository {
	return &gormQuizRepository{db: db}
}

func (r *gormQuizRepository) Create(ctx context.Context, quiz *models.Quiz) error {
	return r.db.WithContext(ctx).Create(quiz).Error
}

func (r *gormQuizRepository) GetByID(ctx context.Context, id uint) (*models.Quiz, error) {
	var quiz models.Quiz
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Preload("Questions").
		First(&quiz, id).Error
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (r *gormQuizRepository) List(ctx context.Context, subject string, limit, offset int) ([]*models.Quiz, error) {
	var quizzes []*models.Quiz
	q := r.db.WithContext(ctx).Preload("Creator").Order("created_at DESC")
	if subject != "" {
		q = q.Where("subject = ?", subject)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Find(&quizzes).Error; err != nil {
		return nil, err
	}
	return quizzes, nil
}
