package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/bookdrill/internal/entity"
	"github.com/eslsoft/bookdrill/internal/repository"
)

// SpacedFollowUpService decides when a spaced follow-up becomes due, enqueues
// it at most once per idea, and interprets pass/fail outcomes.
type SpacedFollowUpService interface {
	// EnsureQueuedIfDue is safe to call any number of times; calling it twice
	// with no intervening responses leaves the queue unchanged.
	EnsureQueuedIfDue(ctx context.Context, bookID uuid.UUID, bookTitle string) error
	HandleOutcome(ctx context.Context, ideaID, bookID uuid.UUID, correct bool) error
	// ForceAllDue backdates every eligible due date and re-runs the enqueue
	// pass. Debug/test hook.
	ForceAllDue(ctx context.Context, bookID uuid.UUID, bookTitle string) error
}

// NewSpacedFollowUpService wires the repositories with default behaviour.
func NewSpacedFollowUpService(
	coverage repository.CoverageRepository,
	queue repository.ReviewItemRepository,
	cfg SchedulingConfig,
	logger *logrus.Logger,
) SpacedFollowUpService {
	return &spacedFollowUpService{
		coverage: coverage,
		queue:    queue,
		cfg:      cfg.normalized(),
		logger:   logger,
		clock:    time.Now,
	}
}

type spacedFollowUpService struct {
	coverage repository.CoverageRepository
	queue    repository.ReviewItemRepository
	cfg      SchedulingConfig
	logger   *logrus.Logger
	clock    func() time.Time
}

func (s *spacedFollowUpService) EnsureQueuedIfDue(ctx context.Context, bookID uuid.UUID, bookTitle string) error {
	if bookID == uuid.Nil {
		return entity.ErrInvalidBookID
	}
	normalizedTitle := entity.NormalizeBookTitle(bookTitle)

	if err := s.cleanupDuplicates(ctx, bookID, normalizedTitle); err != nil {
		return err
	}

	rows, err := s.coverage.ListByBook(ctx, bookID)
	if err != nil {
		return fmt.Errorf("list coverage: %w", err)
	}
	pending, err := s.queue.List(ctx, &repository.ListReviewItemsQuery{
		BookID:              bookID,
		NormalizedBookTitle: normalizedTitle,
		PendingOnly:         true,
	})
	if err != nil {
		return fmt.Errorf("list pending review items: %w", err)
	}
	queuedIdeas := lo.SliceToMap(
		lo.Filter(pending, func(item entity.ReviewQueueItem, _ int) bool { return item.IsSpacedFollowUp }),
		func(item entity.ReviewQueueItem) (uuid.UUID, struct{}) { return item.IdeaID, struct{}{} },
	)

	now := s.clock()
	for i := range rows {
		row := &rows[i]
		if !s.followUpDue(row, now) {
			continue
		}
		if _, queued := queuedIdeas[row.IdeaID]; queued {
			continue
		}
		item := entity.ReviewQueueItem{
			IdeaID:           row.IdeaID,
			IdeaTitle:        row.IdeaTitle,
			BookID:           &row.BookID,
			BookTitle:        bookTitle,
			QuestionType:     entity.QuestionTypeMCQ,
			Difficulty:       entity.DifficultyHard,
			BloomCategory:    entity.BloomReframe,
			IsSpacedFollowUp: true,
		}
		if row.SpacedFollowUpDifficulty != nil && *row.SpacedFollowUpDifficulty != entity.DifficultyUnspecified {
			item.Difficulty = *row.SpacedFollowUpDifficulty
		}
		if row.SpacedFollowUpBloom != nil && row.SpacedFollowUpBloom.Valid() {
			item.BloomCategory = *row.SpacedFollowUpBloom
		}
		item.Normalize(now)
		if _, err := s.queue.Create(ctx, &item); err != nil {
			return fmt.Errorf("enqueue spaced follow-up: %w", err)
		}
		s.logger.WithFields(logrus.Fields{
			"idea":  row.IdeaID,
			"book":  bookID,
			"bloom": item.BloomCategory,
		}).Info("spaced follow-up enqueued")
	}
	return nil
}

func (s *spacedFollowUpService) followUpDue(row *entity.IdeaCoverage, now time.Time) bool {
	if row.SpacedFollowUpPassedAt != nil {
		return false
	}
	if row.SpacedFollowUpDueDate == nil || row.SpacedFollowUpDueDate.After(now) {
		return false
	}
	if row.TotalQuestionsCorrect < s.cfg.MasteryGateCategories {
		return false
	}
	return row.SpacedFollowUpBloom != nil
}

// cleanupDuplicates self-heals the queue before any enqueue decision:
// pendings whose coverage already passed are force-completed, and when an
// idea has several pendings only the earliest-added one survives.
func (s *spacedFollowUpService) cleanupDuplicates(ctx context.Context, bookID uuid.UUID, normalizedTitle string) error {
	items, err := s.queue.List(ctx, &repository.ListReviewItemsQuery{
		BookID:              bookID,
		NormalizedBookTitle: normalizedTitle,
	})
	if err != nil {
		return fmt.Errorf("list review items: %w", err)
	}
	followUps := lo.Filter(items, func(item entity.ReviewQueueItem, _ int) bool {
		return item.IsSpacedFollowUp
	})

	var toComplete []entity.ReviewQueueItem
	for ideaID, group := range lo.GroupBy(followUps, func(item entity.ReviewQueueItem) uuid.UUID { return item.IdeaID }) {
		pendings := lo.Filter(group, func(item entity.ReviewQueueItem, _ int) bool { return !item.IsCompleted })
		if len(pendings) == 0 {
			continue
		}
		coverage, err := s.coverage.GetByIdea(ctx, ideaID, bookID)
		if err != nil {
			return fmt.Errorf("load coverage: %w", err)
		}
		if coverage != nil && coverage.SpacedFollowUpPassedAt != nil {
			toComplete = append(toComplete, pendings...)
			continue
		}
		// List order is AddedDate ascending, so index 0 is the keeper.
		if len(pendings) > 1 {
			toComplete = append(toComplete, pendings[1:]...)
		}
	}
	if len(toComplete) == 0 {
		return nil
	}
	for i := range toComplete {
		toComplete[i].IsCompleted = true
	}
	if err := s.queue.SaveAll(ctx, toComplete); err != nil {
		return fmt.Errorf("complete duplicate follow-ups: %w", err)
	}
	s.logger.WithFields(logrus.Fields{"book": bookID, "count": len(toComplete)}).
		Debug("duplicate spaced follow-ups cleaned up")
	return nil
}

func (s *spacedFollowUpService) HandleOutcome(ctx context.Context, ideaID, bookID uuid.UUID, correct bool) error {
	coverage, err := s.coverage.GetByIdea(ctx, ideaID, bookID)
	if err != nil {
		return fmt.Errorf("load coverage: %w", err)
	}
	if coverage == nil {
		return entity.ErrCoverageNotFound
	}

	now := s.clock()
	if correct {
		coverage.SpacedFollowUpPassedAt = &now
		curveballDue := now.Add(days(s.cfg.CurveballAfterPassDays))
		coverage.CurveballDueDate = &curveballDue
		s.logger.WithFields(logrus.Fields{"idea": ideaID, "curveball_due": curveballDue}).
			Info("spaced follow-up passed, curveball scheduled")
	} else {
		retryDue := now.Add(days(s.cfg.RetryDelayDays))
		coverage.SpacedFollowUpDueDate = &retryDue
		s.logger.WithFields(logrus.Fields{"idea": ideaID, "retry_due": retryDue}).
			Info("spaced follow-up failed, retry scheduled")
	}
	coverage.Normalize(now)
	if _, err := s.coverage.Save(ctx, coverage); err != nil {
		return fmt.Errorf("save coverage: %w", err)
	}
	return nil
}

func (s *spacedFollowUpService) ForceAllDue(ctx context.Context, bookID uuid.UUID, bookTitle string) error {
	rows, err := s.coverage.ListByBook(ctx, bookID)
	if err != nil {
		return fmt.Errorf("list coverage: %w", err)
	}
	now := s.clock()
	past := now.Add(-time.Minute)
	for i := range rows {
		row := &rows[i]
		if row.SpacedFollowUpPassedAt != nil || row.SpacedFollowUpBloom == nil {
			continue
		}
		row.SpacedFollowUpDueDate = &past
		row.Normalize(now)
		if _, err := s.coverage.Save(ctx, row); err != nil {
			return fmt.Errorf("save coverage: %w", err)
		}
	}
	return s.EnsureQueuedIfDue(ctx, bookID, bookTitle)
}
