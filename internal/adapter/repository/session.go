package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eslsoft/bookdrill/internal/entity"
	"github.com/eslsoft/bookdrill/internal/repository"
)

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository constructs a gorm-backed practice session repository.
func NewSessionRepository(db *gorm.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) FindBySlot(ctx context.Context, ideaID, bookID uuid.UUID, st entity.SessionType) (*entity.PracticeSession, error) {
	var model practiceSessionModel
	err := r.db.WithContext(ctx).
		Where("idea_id = ? AND book_id = ? AND session_type = ?", ideaID, bookID, string(st)).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find session by slot: %w", err)
	}
	return fromSessionModel(&model), nil
}

func (r *sessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.PracticeSession, error) {
	var model practiceSessionModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entity.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return fromSessionModel(&model), nil
}

func (r *sessionRepository) Create(ctx context.Context, session *entity.PracticeSession) (*entity.PracticeSession, error) {
	model := toSessionModel(session)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return fromSessionModel(model), nil
}

func (r *sessionRepository) Update(ctx context.Context, session *entity.PracticeSession) (*entity.PracticeSession, error) {
	model := toSessionModel(session)
	result := r.db.WithContext(ctx).Model(&practiceSessionModel{}).
		Where("id = ?", session.ID).
		Select("*").
		Updates(model)
	if result.Error != nil {
		return nil, fmt.Errorf("update session: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, entity.ErrSessionNotFound
	}
	return fromSessionModel(model), nil
}

func (r *sessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&practiceSessionModel{}).Error; err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
