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

type reviewItemRepository struct {
	db *gorm.DB
}

// NewReviewItemRepository constructs a gorm-backed review queue repository.
func NewReviewItemRepository(db *gorm.DB) repository.ReviewItemRepository {
	return &reviewItemRepository{db: db}
}

func (r *reviewItemRepository) Create(ctx context.Context, item *entity.ReviewQueueItem) (*entity.ReviewQueueItem, error) {
	model := toReviewItemModel(item)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return nil, fmt.Errorf("create review item: %w", err)
	}
	return fromReviewItemModel(model), nil
}

func (r *reviewItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.ReviewQueueItem, error) {
	var model reviewQueueItemModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entity.ErrQueueItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get review item: %w", err)
	}
	return fromReviewItemModel(&model), nil
}

func (r *reviewItemRepository) List(ctx context.Context, query *repository.ListReviewItemsQuery) ([]entity.ReviewQueueItem, error) {
	tx := r.db.WithContext(ctx).Model(&reviewQueueItemModel{})
	if query.NormalizedBookTitle != "" {
		tx = tx.Where("book_id = ? OR (book_id IS NULL AND normalized_book_title = ?)", query.BookID, query.NormalizedBookTitle)
	} else {
		tx = tx.Where("book_id = ?", query.BookID)
	}
	if query.PendingOnly {
		tx = tx.Where("is_completed = ?", false)
	}

	var models []reviewQueueItemModel
	if err := tx.Order("added_date ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list review items: %w", err)
	}
	return lo.Map(models, func(m reviewQueueItemModel, _ int) entity.ReviewQueueItem {
		return *fromReviewItemModel(&m)
	}), nil
}

func (r *reviewItemRepository) Update(ctx context.Context, item *entity.ReviewQueueItem) (*entity.ReviewQueueItem, error) {
	model := toReviewItemModel(item)
	result := r.db.WithContext(ctx).Model(&reviewQueueItemModel{}).
		Where("id = ?", item.ID).
		Select("*").
		Updates(model)
	if result.Error != nil {
		return nil, fmt.Errorf("update review item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, entity.ErrQueueItemNotFound
	}
	return fromReviewItemModel(model), nil
}

func (r *reviewItemRepository) SaveAll(ctx context.Context, items []entity.ReviewQueueItem) error {
	if len(items) == 0 {
		return nil
	}
	models := lo.Map(items, func(item entity.ReviewQueueItem, _ int) *reviewQueueItemModel {
		return toReviewItemModel(&item)
	})
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&models).Error; err != nil {
			return fmt.Errorf("save review items: %w", err)
		}
		return nil
	})
}
