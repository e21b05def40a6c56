package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/eslsoft/bookdrill/internal/entity"
	"github.com/eslsoft/bookdrill/internal/repository"
)

type testRepository struct {
	db *gorm.DB
}

// NewTestRepository constructs a gorm-backed test repository.
func NewTestRepository(db *gorm.DB) repository.TestRepository {
	return &testRepository{db: db}
}

func (r *testRepository) Save(ctx context.Context, test *entity.Test) error {
	model := &testModel{
		ID:        test.ID,
		IdeaID:    test.IdeaID,
		BookID:    test.BookID,
		CreatedAt: test.CreatedAt,
	}
	questions := lo.Map(test.Questions, func(q entity.Question, _ int) *questionModel {
		return toQuestionModel(test.ID, q)
	})
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(model).Error; err != nil {
			return fmt.Errorf("save test: %w", err)
		}
		if len(questions) == 0 {
			return nil
		}
		if err := tx.Create(&questions).Error; err != nil {
			return fmt.Errorf("save questions: %w", err)
		}
		return nil
	})
}

func (r *testRepository) Get(ctx context.Context, id uuid.UUID) (*entity.Test, error) {
	var model testModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entity.ErrTestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get test: %w", err)
	}

	var questionModels []questionModel
	if err := r.db.WithContext(ctx).
		Where("test_id = ?", id).
		Order("order_index ASC").
		Find(&questionModels).Error; err != nil {
		return nil, fmt.Errorf("get questions: %w", err)
	}

	questions := lo.Map(questionModels, func(m questionModel, _ int) entity.Question {
		return fromQuestionModel(&m)
	})

	return &entity.Test{
		ID:        model.ID,
		IdeaID:    model.IdeaID,
		BookID:    model.BookID,
		Questions: questions,
		CreatedAt: model.CreatedAt,
	}, nil
}

func (r *testRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("test_id = ?", id).Delete(&questionModel{}).Error; err != nil {
			return fmt.Errorf("delete questions: %w", err)
		}
		if err := tx.Where("id = ?", id).Delete(&testModel{}).Error; err != nil {
			return fmt.Errorf("delete test: %w", err)
		}
		return nil
	})
}
