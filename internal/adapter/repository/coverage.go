package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/eslsoft/bookdrill/internal/entity"
	"github.com/eslsoft/bookdrill/internal/repository"
)

type coverageRepository struct {
	db *gorm.DB
}

// NewCoverageRepository constructs a gorm-backed coverage repository.
func NewCoverageRepository(db *gorm.DB) repository.CoverageRepository {
	return &coverageRepository{db: db}
}

func (r *coverageRepository) GetByIdea(ctx context.Context, ideaID, bookID uuid.UUID) (*entity.IdeaCoverage, error) {
	var model ideaCoverageModel
	err := r.db.WithContext(ctx).
		Where("idea_id = ? AND book_id = ?", ideaID, bookID).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get coverage: %w", err)
	}
	return fromCoverageModel(&model), nil
}

func (r *coverageRepository) ListByBook(ctx context.Context, bookID uuid.UUID) ([]entity.IdeaCoverage, error) {
	var models []ideaCoverageModel
	if err := r.db.WithContext(ctx).
		Where("book_id = ?", bookID).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list coverage: %w", err)
	}
	return lo.Map(models, func(m ideaCoverageModel, _ int) entity.IdeaCoverage {
		return *fromCoverageModel(&m)
	}), nil
}

func (r *coverageRepository) Save(ctx context.Context, coverage *entity.IdeaCoverage) (*entity.IdeaCoverage, error) {
	model := toCoverageModel(coverage)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(model).Error; err != nil {
		return nil, fmt.Errorf("save coverage: %w", err)
	}
	return fromCoverageModel(model), nil
}
