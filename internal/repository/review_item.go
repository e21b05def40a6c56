package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/eslsoft/bookdrill/internal/entity"
)

// ListReviewItemsQuery scopes queue lookups to a book. NormalizedBookTitle
// additionally matches legacy items that carry no book ID.
type ListReviewItemsQuery struct {
	BookID              uuid.UUID
	NormalizedBookTitle string
	// PendingOnly restricts the result to items with IsCompleted == false.
	PendingOnly bool
}

// ReviewItemRepository abstracts persistence for the durable review queue.
type ReviewItemRepository interface {
	Create(ctx context.Context, item *entity.ReviewQueueItem) (*entity.ReviewQueueItem, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.ReviewQueueItem, error)
	// List returns matching items ordered by AddedDate ascending.
	List(ctx context.Context, query *ListReviewItemsQuery) ([]entity.ReviewQueueItem, error)
	Update(ctx context.Context, item *entity.ReviewQueueItem) (*entity.ReviewQueueItem, error)
	// SaveAll persists the given items in one atomic write.
	SaveAll(ctx context.Context, items []entity.ReviewQueueItem) error
}
