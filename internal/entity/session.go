package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SessionType distinguishes lesson practice (fresh questions plus due
// reviews) from review-only practice.
type SessionType string

const (
	SessionTypeUnspecified SessionType = ""
	SessionTypeLesson      SessionType = "lesson_practice"
	SessionTypeReview      SessionType = "review_practice"
)

// ParseSessionType converts an arbitrary string into a SessionType.
func ParseSessionType(code string) SessionType {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "lesson_practice", "lesson":
		return SessionTypeLesson
	case "review_practice", "review":
		return SessionTypeReview
	default:
		return SessionTypeUnspecified
	}
}

// SessionStatus is the practice-session lifecycle state.
type SessionStatus string

const (
	SessionStatusGenerating SessionStatus = "generating"
	SessionStatusReady      SessionStatus = "ready"
	SessionStatusInProgress SessionStatus = "in_progress"
	SessionStatusPaused     SessionStatus = "paused"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusError      SessionStatus = "error"
)

var sessionTransitions = map[SessionStatus][]SessionStatus{
	SessionStatusGenerating: {SessionStatusReady, SessionStatusError},
	SessionStatusReady:      {SessionStatusInProgress},
	SessionStatusInProgress: {SessionStatusPaused, SessionStatusCompleted},
	SessionStatusPaused:     {SessionStatusInProgress},
	SessionStatusCompleted:  {},
	SessionStatusError:      {},
}

// CanTransitionTo reports whether the status machine permits moving to next.
func (s SessionStatus) CanTransitionTo(next SessionStatus) bool {
	for _, allowed := range sessionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Resumable reports whether a session in this status can be handed back to
// the caller with its existing test.
func (s SessionStatus) Resumable() bool {
	switch s {
	case SessionStatusReady, SessionStatusInProgress, SessionStatusPaused:
		return true
	default:
		return false
	}
}

// PracticeSession is one logical session slot keyed by (idea, book, type).
type PracticeSession struct {
	ID            uuid.UUID
	IdeaID        uuid.UUID
	BookID        uuid.UUID
	SessionType   SessionType
	Status        SessionStatus
	ErrorMessage  string
	ConfigVersion int
	TestID        *uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TransitionTo applies a validated status change.
func (s *PracticeSession) TransitionTo(next SessionStatus, now time.Time) error {
	if !s.Status.CanTransitionTo(next) {
		return ErrInvalidSessionTransition
	}
	s.Status = next
	s.UpdatedAt = now
	return nil
}

// StaleGenerating reports whether a generating row is old enough to be
// treated as abandoned by a crashed generation task.
func (s *PracticeSession) StaleGenerating(now time.Time, staleAfter time.Duration) bool {
	return s.Status == SessionStatusGenerating && now.Sub(s.UpdatedAt) > staleAfter
}

// Normalize ensures defaults & constraints before persistence.
func (s *PracticeSession) Normalize(now time.Time) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Status == "" {
		s.Status = SessionStatusGenerating
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
}
