package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ReviewQueueItem is one durable "re-ask this" entry: a plain mistake, a
// spaced follow-up, or a curveball awaiting re-presentation.
type ReviewQueueItem struct {
	ID                   uuid.UUID
	IdeaID               uuid.UUID
	IdeaTitle            string
	BookID               *uuid.UUID
	BookTitle            string
	NormalizedBookTitle  string
	QuestionType         QuestionType
	Difficulty           Difficulty
	BloomCategory        BloomCategory
	OriginalQuestionText string
	IsCurveball          bool
	IsSpacedFollowUp     bool
	IsCompleted          bool
	AddedDate            time.Time
}

// NormalizeBookTitle produces the normalized form used to match legacy items
// that predate book IDs.
func NormalizeBookTitle(title string) string {
	return strings.ToLower(strings.Join(strings.Fields(title), " "))
}

// MatchesBook reports whether the item belongs to the given book, falling
// back to normalized-title matching for legacy items without a book ID.
func (i *ReviewQueueItem) MatchesBook(bookID uuid.UUID, normalizedTitle string) bool {
	if i.BookID != nil {
		return *i.BookID == bookID
	}
	return normalizedTitle != "" && i.NormalizedBookTitle == normalizedTitle
}

// Normalize ensures defaults & constraints before persistence.
func (i *ReviewQueueItem) Normalize(now time.Time) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.NormalizedBookTitle == "" {
		i.NormalizedBookTitle = NormalizeBookTitle(i.BookTitle)
	}
	if i.AddedDate.IsZero() {
		i.AddedDate = now
	}
}
