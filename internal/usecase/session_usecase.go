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

// SessionBundle pairs a session row with its assembled test.
type SessionBundle struct {
	Session entity.PracticeSession
	Test    *entity.Test
}

// PracticeSessionCoordinator drives the session state machine: it resumes
// existing sessions, polls concurrent generations, heals stale or failed
// rows, and fans answered responses back into coverage and the queues.
type PracticeSessionCoordinator interface {
	GetOrCreateSession(ctx context.Context, idea IdeaRef, st entity.SessionType) (*SessionBundle, error)
	// RefreshSession deletes the existing session/test pair before
	// regenerating; it never mutates an attached test in place.
	RefreshSession(ctx context.Context, idea IdeaRef, st entity.SessionType) (*SessionBundle, error)
	StartSession(ctx context.Context, sessionID uuid.UUID) error
	PauseSession(ctx context.Context, sessionID uuid.UUID) error
	CompleteSession(ctx context.Context, sessionID uuid.UUID) error
	// RecordResponses closes the loop for one answered test: coverage
	// update, mistake enqueue, follow-up/curveball outcome handling and
	// queue-item completion.
	RecordResponses(ctx context.Context, idea IdeaRef, sessionID uuid.UUID, responses []entity.QuestionResponse) error
}

// NewPracticeSessionCoordinator wires the coordinator with default behaviour.
func NewPracticeSessionCoordinator(
	sessions repository.SessionRepository,
	tests repository.TestRepository,
	generator QuestionGenerator,
	assembler TestAssembler,
	queue ReviewQueueManager,
	followUps SpacedFollowUpService,
	curveballs CurveballService,
	tracker CoverageTracker,
	cfg SchedulingConfig,
	logger *logrus.Logger,
) PracticeSessionCoordinator {
	return &sessionCoordinator{
		sessions:   sessions,
		tests:      tests,
		generator:  generator,
		assembler:  assembler,
		queue:      queue,
		followUps:  followUps,
		curveballs: curveballs,
		tracker:    tracker,
		cfg:        cfg.normalized(),
		logger:     logger,
		clock:      time.Now,
		sleep:      time.Sleep,
	}
}

type sessionCoordinator struct {
	sessions   repository.SessionRepository
	tests      repository.TestRepository
	generator  QuestionGenerator
	assembler  TestAssembler
	queue      ReviewQueueManager
	followUps  SpacedFollowUpService
	curveballs CurveballService
	tracker    CoverageTracker
	cfg        SchedulingConfig
	logger     *logrus.Logger
	clock      func() time.Time
	sleep      func(time.Duration)
}

func (c *sessionCoordinator) GetOrCreateSession(ctx context.Context, idea IdeaRef, st entity.SessionType) (*SessionBundle, error) {
	if idea.BookID == uuid.Nil {
		return nil, entity.ErrInvalidBookID
	}
	if st == entity.SessionTypeLesson && idea.ID == uuid.Nil {
		return nil, entity.ErrInvalidIdeaID
	}

	existing, err := c.sessions.FindBySlot(ctx, idea.ID, idea.BookID, st)
	if err != nil {
		return nil, fmt.Errorf("find session slot: %w", err)
	}
	if existing != nil {
		if bundle, handled, err := c.reuseOrClear(ctx, existing, idea, st); handled || err != nil {
			return bundle, err
		}
	}
	return c.generate(ctx, idea, st)
}

// reuseOrClear decides the fate of an occupied slot. It either hands back a
// reusable bundle (handled == true) or clears the slot so regeneration can
// proceed (handled == false).
func (c *sessionCoordinator) reuseOrClear(ctx context.Context, existing *entity.PracticeSession, idea IdeaRef, st entity.SessionType) (*SessionBundle, bool, error) {
	now := c.clock()
	switch {
	case existing.Status.Resumable():
		bundle, err := c.loadBundle(ctx, existing)
		if err != nil {
			return nil, false, err
		}
		if bundle.Test != nil && len(bundle.Test.Questions) >= c.cfg.MinReusableQuestions {
			return bundle, true, nil
		}
		// A resumable row without a usable test is a leftover from a partial
		// failure; clear it.
		if err := c.deleteSessionPair(ctx, existing); err != nil {
			return nil, false, err
		}

	case existing.Status == entity.SessionStatusGenerating:
		if existing.StaleGenerating(now, c.cfg.StaleGenerationInterval) {
			c.logger.WithFields(logrus.Fields{"session": existing.ID}).
				Warn("abandoning stale generating session")
			if err := c.deleteSessionPair(ctx, existing); err != nil {
				return nil, false, err
			}
			break
		}
		bundle, err := c.awaitReady(ctx, idea, st)
		if err != nil {
			return nil, false, err
		}
		if bundle != nil {
			return bundle, true, nil
		}
		// Poll budget exhausted; fall back to inline regeneration.
		current, err := c.sessions.FindBySlot(ctx, idea.ID, idea.BookID, st)
		if err != nil {
			return nil, false, fmt.Errorf("find session slot: %w", err)
		}
		if current != nil {
			if err := c.deleteSessionPair(ctx, current); err != nil {
				return nil, false, err
			}
		}

	default:
		// Error rows surface their message once and are retried inline;
		// completed rows make way for the next cycle.
		if existing.Status == entity.SessionStatusError {
			c.logger.WithFields(logrus.Fields{
				"session": existing.ID,
				"error":   existing.ErrorMessage,
			}).Warn("retrying failed session generation")
		}
		if err := c.deleteSessionPair(ctx, existing); err != nil {
			return nil, false, err
		}
	}
	return nil, false, nil
}

// awaitReady polls a concurrently generating slot with a bounded loop.
// Returns nil without error once the budget is exhausted.
func (c *sessionCoordinator) awaitReady(ctx context.Context, idea IdeaRef, st entity.SessionType) (*SessionBundle, error) {
	for attempt := 0; attempt < c.cfg.PollAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c.sleep(c.cfg.PollInterval)
		current, err := c.sessions.FindBySlot(ctx, idea.ID, idea.BookID, st)
		if err != nil {
			return nil, fmt.Errorf("poll session slot: %w", err)
		}
		if current == nil {
			return nil, nil
		}
		if current.Status == entity.SessionStatusError {
			return nil, nil
		}
		if current.Status.Resumable() {
			bundle, err := c.loadBundle(ctx, current)
			if err != nil {
				return nil, err
			}
			if bundle.Test != nil && len(bundle.Test.Questions) >= c.cfg.MinReusableQuestions {
				return bundle, nil
			}
			return nil, nil
		}
	}
	return nil, nil
}

func (c *sessionCoordinator) generate(ctx context.Context, idea IdeaRef, st entity.SessionType) (*SessionBundle, error) {
	now := c.clock()
	session := &entity.PracticeSession{
		IdeaID:        idea.ID,
		BookID:        idea.BookID,
		SessionType:   st,
		Status:        entity.SessionStatusGenerating,
		ConfigVersion: c.cfg.ConfigVersion,
	}
	session.Normalize(now)
	created, err := c.sessions.Create(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	bundle, genErr := c.buildTest(ctx, idea, st, created)
	if genErr != nil {
		created.Status = entity.SessionStatusError
		created.ErrorMessage = genErr.Error()
		created.UpdatedAt = c.clock()
		if _, err := c.sessions.Update(ctx, created); err != nil {
			c.logger.WithError(err).Error("failed to persist session error state")
		}
		return nil, fmt.Errorf("%w: %v", entity.ErrGenerationFailed, genErr)
	}
	return bundle, nil
}

func (c *sessionCoordinator) buildTest(ctx context.Context, idea IdeaRef, st entity.SessionType, session *entity.PracticeSession) (*SessionBundle, error) {
	mcqCap, openCap := c.cfg.LessonMCQCap, c.cfg.LessonOpenCap
	if st == entity.SessionTypeReview {
		mcqCap, openCap = c.cfg.ReviewMCQCap, c.cfg.ReviewOpenCap
	}

	var fresh []entity.Question
	if st == entity.SessionTypeLesson {
		generated, err := c.generator.GenerateFreshQuestions(ctx, idea)
		if err != nil {
			return nil, fmt.Errorf("generate fresh questions: %w", err)
		}
		fresh = generated
	}

	daily, err := c.queue.GetDailyReviewItems(ctx, idea.BookID, idea.BookTitle, mcqCap, openCap)
	if err != nil {
		return nil, err
	}
	var review []entity.Question
	if selected := daily.All(); len(selected) > 0 {
		review, err = c.generator.GenerateFromQueueItems(ctx, selected)
		if err != nil {
			return nil, fmt.Errorf("generate review questions: %w", err)
		}
	}

	test := c.assembler.Assemble(idea.ID, idea.BookID, fresh, review)
	if err := c.tests.Save(ctx, test); err != nil {
		return nil, fmt.Errorf("save test: %w", err)
	}

	now := c.clock()
	session.TestID = &test.ID
	if err := session.TransitionTo(entity.SessionStatusReady, now); err != nil {
		return nil, err
	}
	updated, err := c.sessions.Update(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	c.logger.WithFields(logrus.Fields{
		"session":   updated.ID,
		"questions": len(test.Questions),
		"type":      st,
	}).Info("session ready")
	return &SessionBundle{Session: *updated, Test: test}, nil
}

func (c *sessionCoordinator) RefreshSession(ctx context.Context, idea IdeaRef, st entity.SessionType) (*SessionBundle, error) {
	existing, err := c.sessions.FindBySlot(ctx, idea.ID, idea.BookID, st)
	if err != nil {
		return nil, fmt.Errorf("find session slot: %w", err)
	}
	if existing != nil {
		if err := c.deleteSessionPair(ctx, existing); err != nil {
			return nil, err
		}
	}
	return c.generate(ctx, idea, st)
}

func (c *sessionCoordinator) StartSession(ctx context.Context, sessionID uuid.UUID) error {
	return c.transition(ctx, sessionID, entity.SessionStatusInProgress)
}

func (c *sessionCoordinator) PauseSession(ctx context.Context, sessionID uuid.UUID) error {
	return c.transition(ctx, sessionID, entity.SessionStatusPaused)
}

func (c *sessionCoordinator) CompleteSession(ctx context.Context, sessionID uuid.UUID) error {
	return c.transition(ctx, sessionID, entity.SessionStatusCompleted)
}

func (c *sessionCoordinator) transition(ctx context.Context, sessionID uuid.UUID, next entity.SessionStatus) error {
	session, err := c.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return entity.ErrSessionNotFound
	}
	if err := session.TransitionTo(next, c.clock()); err != nil {
		return err
	}
	if _, err := c.sessions.Update(ctx, session); err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

func (c *sessionCoordinator) RecordResponses(ctx context.Context, idea IdeaRef, sessionID uuid.UUID, responses []entity.QuestionResponse) error {
	if len(responses) == 0 {
		return nil
	}
	var test *entity.Test
	if sessionID != uuid.Nil {
		session, err := c.sessions.GetByID(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("load session: %w", err)
		}
		if session != nil && session.TestID != nil {
			test, err = c.tests.Get(ctx, *session.TestID)
			if err != nil && !errors.Is(err, entity.ErrTestNotFound) {
				return fmt.Errorf("load test: %w", err)
			}
		}
	}

	fresh, reviewSourced := lo.FilterReject(responses, func(r entity.QuestionResponse, _ int) bool {
		return r.IsFresh()
	})

	if len(fresh) > 0 {
		if err := c.tracker.RecordResponses(ctx, idea, fresh); err != nil {
			return err
		}
		if err := c.queue.AddMistakesToQueue(ctx, idea, test, fresh); err != nil {
			return err
		}
	}

	for _, resp := range reviewSourced {
		respIdea := resp.IdeaID
		if respIdea == uuid.Nil {
			respIdea = idea.ID
		}
		switch {
		case resp.IsSpacedFollowUp:
			// Follow-up items retire on both outcomes; a failure reschedules
			// a new one through the coverage due date.
			if err := c.queue.CompleteForResponse(ctx, idea.BookID, idea.BookTitle, resp); err != nil {
				return err
			}
			if err := c.followUps.HandleOutcome(ctx, respIdea, idea.BookID, resp.IsCorrect); err != nil {
				return err
			}
		case resp.IsCurveball:
			if err := c.queue.CompleteForResponse(ctx, idea.BookID, idea.BookTitle, resp); err != nil {
				return err
			}
			if err := c.curveballs.HandleOutcome(ctx, respIdea, idea.BookID, resp.IsCorrect); err != nil {
				return err
			}
		default:
			// Plain re-asked mistakes retire only when answered correctly.
			if resp.IsCorrect {
				if err := c.queue.CompleteForResponse(ctx, idea.BookID, idea.BookTitle, resp); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (c *sessionCoordinator) loadBundle(ctx context.Context, session *entity.PracticeSession) (*SessionBundle, error) {
	bundle := &SessionBundle{Session: *session}
	if session.TestID == nil {
		return bundle, nil
	}
	test, err := c.tests.Get(ctx, *session.TestID)
	if errors.Is(err, entity.ErrTestNotFound) {
		// Dangling TestID; the caller treats a test-less bundle as unusable.
		return bundle, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load test: %w", err)
	}
	bundle.Test = test
	return bundle, nil
}

func (c *sessionCoordinator) deleteSessionPair(ctx context.Context, session *entity.PracticeSession) error {
	if session.TestID != nil {
		if err := c.tests.Delete(ctx, *session.TestID); err != nil {
			return fmt.Errorf("delete test: %w", err)
		}
	}
	if err := c.sessions.Delete(ctx, session.ID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
