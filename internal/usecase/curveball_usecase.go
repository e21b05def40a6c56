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

// CurveballService schedules the delayed, harder item that gates "solid
// mastery" once the spaced follow-up has been passed.
type CurveballService interface {
	EnsureQueuedIfDue(ctx context.Context, bookID uuid.UUID, bookTitle string) error
	HandleOutcome(ctx context.Context, ideaID, bookID uuid.UUID, correct bool) error
	// ForceAllDue backdates every eligible curveball date and re-runs the
	// enqueue pass. Debug/test hook.
	ForceAllDue(ctx context.Context, bookID uuid.UUID, bookTitle string) error
}

// NewCurveballService wires the repositories with default behaviour.
func NewCurveballService(
	coverage repository.CoverageRepository,
	queue repository.ReviewItemRepository,
	cfg SchedulingConfig,
	logger *logrus.Logger,
) CurveballService {
	return &curveballService{
		coverage: coverage,
		queue:    queue,
		cfg:      cfg.normalized(),
		logger:   logger,
		clock:    time.Now,
	}
}

type curveballService struct {
	coverage repository.CoverageRepository
	queue    repository.ReviewItemRepository
	cfg      SchedulingConfig
	logger   *logrus.Logger
	clock    func() time.Time
}

func (s *curveballService) EnsureQueuedIfDue(ctx context.Context, bookID uuid.UUID, bookTitle string) error {
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
		lo.Filter(pending, func(item entity.ReviewQueueItem, _ int) bool { return item.IsCurveball }),
		func(item entity.ReviewQueueItem) (uuid.UUID, struct{}) { return item.IdeaID, struct{}{} },
	)

	now := s.clock()
	for i := range rows {
		row := &rows[i]
		if !curveballDue(row, now) {
			continue
		}
		if _, queued := queuedIdeas[row.IdeaID]; queued {
			continue
		}
		item := entity.ReviewQueueItem{
			IdeaID:        row.IdeaID,
			IdeaTitle:     row.IdeaTitle,
			BookID:        &row.BookID,
			BookTitle:     bookTitle,
			QuestionType:  entity.QuestionTypeMCQ,
			Difficulty:    entity.DifficultyHard,
			BloomCategory: entity.BloomHowWield,
			IsCurveball:   true,
		}
		item.Normalize(now)
		if _, err := s.queue.Create(ctx, &item); err != nil {
			return fmt.Errorf("enqueue curveball: %w", err)
		}
		s.logger.WithFields(logrus.Fields{"idea": row.IdeaID, "book": bookID}).
			Info("curveball enqueued")
	}
	return nil
}

func curveballDue(row *entity.IdeaCoverage, now time.Time) bool {
	if row.SpacedFollowUpPassedAt == nil || row.CurveballPassed {
		return false
	}
	return row.CurveballDueDate != nil && !row.CurveballDueDate.After(now)
}

func (s *curveballService) cleanupDuplicates(ctx context.Context, bookID uuid.UUID, normalizedTitle string) error {
	items, err := s.queue.List(ctx, &repository.ListReviewItemsQuery{
		BookID:              bookID,
		NormalizedBookTitle: normalizedTitle,
	})
	if err != nil {
		return fmt.Errorf("list review items: %w", err)
	}
	curveballs := lo.Filter(items, func(item entity.ReviewQueueItem, _ int) bool {
		return item.IsCurveball
	})

	var toComplete []entity.ReviewQueueItem
	for ideaID, group := range lo.GroupBy(curveballs, func(item entity.ReviewQueueItem) uuid.UUID { return item.IdeaID }) {
		pendings := lo.Filter(group, func(item entity.ReviewQueueItem, _ int) bool { return !item.IsCompleted })
		if len(pendings) == 0 {
			continue
		}
		coverage, err := s.coverage.GetByIdea(ctx, ideaID, bookID)
		if err != nil {
			return fmt.Errorf("load coverage: %w", err)
		}
		if coverage != nil && coverage.CurveballPassed {
			toComplete = append(toComplete, pendings...)
			continue
		}
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
		return fmt.Errorf("complete duplicate curveballs: %w", err)
	}
	return nil
}

func (s *curveballService) HandleOutcome(ctx context.Context, ideaID, bookID uuid.UUID, correct bool) error {
	coverage, err := s.coverage.GetByIdea(ctx, ideaID, bookID)
	if err != nil {
		return fmt.Errorf("load coverage: %w", err)
	}
	if coverage == nil {
		return entity.ErrCoverageNotFound
	}
	// A failed curveball completes its queue item but advances no dates; the
	// idea stays eligible until a future trigger reschedules it.
	if !correct {
		s.logger.WithFields(logrus.Fields{"idea": ideaID}).Info("curveball failed")
		return nil
	}

	now := s.clock()
	coverage.CurveballPassed = true
	coverage.Normalize(now)
	if _, err := s.coverage.Save(ctx, coverage); err != nil {
		return fmt.Errorf("save coverage: %w", err)
	}
	s.logger.WithFields(logrus.Fields{"idea": ideaID}).Info("curveball passed, solid mastery reached")
	return nil
}

func (s *curveballService) ForceAllDue(ctx context.Context, bookID uuid.UUID, bookTitle string) error {
	rows, err := s.coverage.ListByBook(ctx, bookID)
	if err != nil {
		return fmt.Errorf("list coverage: %w", err)
	}
	now := s.clock()
	past := now.Add(-time.Minute)
	for i := range rows {
		row := &rows[i]
		if row.SpacedFollowUpPassedAt == nil || row.CurveballPassed {
			continue
		}
		row.CurveballDueDate = &past
		row.Normalize(now)
		if _, err := s.coverage.Save(ctx, row); err != nil {
			return fmt.Errorf("save coverage: %w", err)
		}
	}
	return s.EnsureQueuedIfDue(ctx, bookID, bookTitle)
}
