package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/eslsoft/bookdrill/internal/entity"
)

// IdeaRef identifies an idea plus the display metadata queue items carry.
type IdeaRef struct {
	ID        uuid.UUID
	BookID    uuid.UUID
	Title     string
	BookTitle string
}

// QuestionGenerator is the external generative collaborator. Calls may be
// slow and may fail; retry policy belongs to the implementation, not to the
// engine.
type QuestionGenerator interface {
	// GenerateFreshQuestions produces new questions for an idea across the
	// Bloom categories and difficulty tiers.
	GenerateFreshQuestions(ctx context.Context, idea IdeaRef) ([]entity.Question, error)
	// GenerateFromQueueItems produces one question per queue item, with
	// fresh wording but mirroring the item's idea, difficulty and category.
	// Each result carries the item's ID as SourceQueueItemID.
	GenerateFromQueueItems(ctx context.Context, items []entity.ReviewQueueItem) ([]entity.Question, error)
}
