package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/eslsoft/bookdrill/internal/entity"
)

// CoverageRepository abstracts persistence for idea coverage ledgers to keep
// usecases storage agnostic.
type CoverageRepository interface {
	// GetByIdea returns the coverage row for (ideaID, bookID), or nil when
	// the idea has never been practiced.
	GetByIdea(ctx context.Context, ideaID, bookID uuid.UUID) (*entity.IdeaCoverage, error)
	ListByBook(ctx context.Context, bookID uuid.UUID) ([]entity.IdeaCoverage, error)
	// Save upserts a coverage row keyed by its ID.
	Save(ctx context.Context, coverage *entity.IdeaCoverage) (*entity.IdeaCoverage, error)
}
