package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/bookdrill/internal/entity"
	"github.com/eslsoft/bookdrill/internal/repository"
)

// DailyReviewItems is the capped selection of pending queue items for one
// session. Curveballs and spaced follow-ups compete in the same buckets as
// plain mistakes.
type DailyReviewItems struct {
	MCQItems       []entity.ReviewQueueItem
	OpenEndedItems []entity.ReviewQueueItem
}

// All returns both buckets as one slice, MCQ items first.
func (d *DailyReviewItems) All() []entity.ReviewQueueItem {
	all := make([]entity.ReviewQueueItem, 0, len(d.MCQItems)+len(d.OpenEndedItems))
	all = append(all, d.MCQItems...)
	all = append(all, d.OpenEndedItems...)
	return all
}

// ReviewQueueManager owns the durable queue of items to re-ask.
type ReviewQueueManager interface {
	GetDailyReviewItems(ctx context.Context, bookID uuid.UUID, bookTitle string, mcqCap, openCap int) (*DailyReviewItems, error)
	// AddMistakesToQueue enqueues one item per incorrect response to a fresh
	// question. Mistakes on review-sourced questions are never re-enqueued.
	AddMistakesToQueue(ctx context.Context, idea IdeaRef, test *entity.Test, responses []entity.QuestionResponse) error
	// MarkItemsAsCompleted retires exactly the passed items. This is the only
	// path that removes generated review items from circulation.
	MarkItemsAsCompleted(ctx context.Context, items []entity.ReviewQueueItem) error
	// CompleteForResponse retires the queue item a review-sourced answer
	// originated from, matching by SourceQueueItemID with a legacy fallback
	// on (ideaID, difficulty).
	CompleteForResponse(ctx context.Context, bookID uuid.UUID, bookTitle string, resp entity.QuestionResponse) error
}

// NewReviewQueueManager wires the repository with default behaviour.
func NewReviewQueueManager(repo repository.ReviewItemRepository, logger *logrus.Logger) ReviewQueueManager {
	return &reviewQueueManager{
		repo:   repo,
		logger: logger,
		clock:  time.Now,
	}
}

type reviewQueueManager struct {
	repo   repository.ReviewItemRepository
	logger *logrus.Logger
	clock  func() time.Time
}

func (m *reviewQueueManager) GetDailyReviewItems(ctx context.Context, bookID uuid.UUID, bookTitle string, mcqCap, openCap int) (*DailyReviewItems, error) {
	if bookID == uuid.Nil {
		return nil, entity.ErrInvalidBookID
	}
	pending, err := m.repo.List(ctx, &repository.ListReviewItemsQuery{
		BookID:              bookID,
		NormalizedBookTitle: entity.NormalizeBookTitle(bookTitle),
		PendingOnly:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("list pending review items: %w", err)
	}

	// The repository returns items oldest-first, so each bucket stays FIFO.
	choice, open := lo.FilterReject(pending, func(item entity.ReviewQueueItem, _ int) bool {
		return item.QuestionType.IsChoice()
	})
	if mcqCap >= 0 && len(choice) > mcqCap {
		choice = choice[:mcqCap]
	}
	if openCap >= 0 && len(open) > openCap {
		open = open[:openCap]
	}
	return &DailyReviewItems{MCQItems: choice, OpenEndedItems: open}, nil
}

func (m *reviewQueueManager) AddMistakesToQueue(ctx context.Context, idea IdeaRef, test *entity.Test, responses []entity.QuestionResponse) error {
	if idea.ID == uuid.Nil {
		return entity.ErrInvalidIdeaID
	}
	now := m.clock()
	for _, resp := range responses {
		if resp.IsCorrect || !resp.IsFresh() {
			continue
		}
		bookID := idea.BookID
		item := entity.ReviewQueueItem{
			IdeaID:               idea.ID,
			IdeaTitle:            idea.Title,
			BookID:               &bookID,
			BookTitle:            idea.BookTitle,
			QuestionType:         resp.QuestionType,
			Difficulty:           resp.Difficulty,
			BloomCategory:        resp.Bloom,
			OriginalQuestionText: questionText(test, resp.QuestionID),
		}
		item.Normalize(now)
		if _, err := m.repo.Create(ctx, &item); err != nil {
			return fmt.Errorf("enqueue mistake: %w", err)
		}
		m.logger.WithFields(logrus.Fields{
			"idea":       idea.ID,
			"difficulty": resp.Difficulty,
			"bloom":      resp.Bloom,
		}).Debug("mistake added to review queue")
	}
	return nil
}

func (m *reviewQueueManager) MarkItemsAsCompleted(ctx context.Context, items []entity.ReviewQueueItem) error {
	if len(items) == 0 {
		return nil
	}
	updated := make([]entity.ReviewQueueItem, 0, len(items))
	for _, item := range items {
		item.IsCompleted = true
		updated = append(updated, item)
	}
	if err := m.repo.SaveAll(ctx, updated); err != nil {
		return fmt.Errorf("complete review items: %w", err)
	}
	return nil
}

func (m *reviewQueueManager) CompleteForResponse(ctx context.Context, bookID uuid.UUID, bookTitle string, resp entity.QuestionResponse) error {
	if resp.SourceQueueItemID != nil {
		item, err := m.repo.GetByID(ctx, *resp.SourceQueueItemID)
		if err != nil && !errors.Is(err, entity.ErrQueueItemNotFound) {
			return fmt.Errorf("load queue item: %w", err)
		}
		if item != nil {
			if item.IsCompleted {
				return nil
			}
			return m.MarkItemsAsCompleted(ctx, []entity.ReviewQueueItem{*item})
		}
	}

	// Legacy fallback: oldest pending item of the same idea and difficulty.
	// This can mis-attribute completion when several such items are pending.
	pending, err := m.repo.List(ctx, &repository.ListReviewItemsQuery{
		BookID:              bookID,
		NormalizedBookTitle: entity.NormalizeBookTitle(bookTitle),
		PendingOnly:         true,
	})
	if err != nil {
		return fmt.Errorf("list pending review items: %w", err)
	}
	for _, item := range pending {
		if item.IdeaID == resp.IdeaID && item.Difficulty == resp.Difficulty {
			return m.MarkItemsAsCompleted(ctx, []entity.ReviewQueueItem{item})
		}
	}
	return nil
}

func questionText(test *entity.Test, questionID uuid.UUID) string {
	if test == nil {
		return ""
	}
	for _, q := range test.Questions {
		if q.ID == questionID {
			return q.Prompt
		}
	}
	return ""
}
