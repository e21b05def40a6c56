package entity

import "errors"

// Domain errors for the mastery & review engine aggregates.
var (
	ErrCoverageNotFound         = errors.New("idea coverage not found")
	ErrQueueItemNotFound        = errors.New("review queue item not found")
	ErrSessionNotFound          = errors.New("practice session not found")
	ErrTestNotFound             = errors.New("test not found")
	ErrInvalidSessionTransition = errors.New("invalid session status transition")
	ErrInvalidIdeaID            = errors.New("invalid idea ID")
	ErrInvalidBookID            = errors.New("invalid book ID")
	ErrGenerationFailed         = errors.New("question generation failed")
)
