package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/eslsoft/bookdrill/internal/entity"
)

// SessionRepository abstracts persistence for practice-session slots.
type SessionRepository interface {
	// FindBySlot returns the session occupying (ideaID, bookID, sessionType),
	// or nil when the slot is empty.
	FindBySlot(ctx context.Context, ideaID, bookID uuid.UUID, st entity.SessionType) (*entity.PracticeSession, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.PracticeSession, error)
	Create(ctx context.Context, session *entity.PracticeSession) (*entity.PracticeSession, error)
	Update(ctx context.Context, session *entity.PracticeSession) (*entity.PracticeSession, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TestRepository abstracts persistence for assembled tests and their
// questions. Save writes the test and all questions atomically.
type TestRepository interface {
	Save(ctx context.Context, test *entity.Test) error
	Get(ctx context.Context, id uuid.UUID) (*entity.Test, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
