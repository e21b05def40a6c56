package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/bookdrill/internal/entity"
	"github.com/eslsoft/bookdrill/internal/repository"
)

// CoverageTracker records graded responses into the per-idea coverage ledger
// and owns the single trigger point that starts the follow-up pipeline.
type CoverageTracker interface {
	RecordResponses(ctx context.Context, idea IdeaRef, responses []entity.QuestionResponse) error
	// BookMastery summarises mastery per idea for UI consumption.
	BookMastery(ctx context.Context, bookID uuid.UUID) ([]IdeaMastery, error)
}

// IdeaMastery is the externally visible mastery summary of one idea.
type IdeaMastery struct {
	IdeaID            uuid.UUID
	MasteryLevel      int
	CoveredCategories int
	QuestionsSeen     int
	QuestionsCorrect  int
}

// NewCoverageTracker wires the repository with default behaviour.
func NewCoverageTracker(repo repository.CoverageRepository, cfg SchedulingConfig, logger *logrus.Logger) CoverageTracker {
	return &coverageTracker{
		repo:   repo,
		cfg:    cfg.normalized(),
		logger: logger,
		clock:  time.Now,
	}
}

type coverageTracker struct {
	repo   repository.CoverageRepository
	cfg    SchedulingConfig
	logger *logrus.Logger
	clock  func() time.Time
}

func (t *coverageTracker) RecordResponses(ctx context.Context, idea IdeaRef, responses []entity.QuestionResponse) error {
	if idea.ID == uuid.Nil {
		return entity.ErrInvalidIdeaID
	}
	if idea.BookID == uuid.Nil {
		return entity.ErrInvalidBookID
	}
	if len(responses) == 0 {
		return nil
	}

	coverage, err := t.repo.GetByIdea(ctx, idea.ID, idea.BookID)
	if err != nil {
		return fmt.Errorf("load coverage: %w", err)
	}
	if coverage == nil {
		coverage = &entity.IdeaCoverage{IdeaID: idea.ID, BookID: idea.BookID}
	}
	if idea.Title != "" {
		coverage.IdeaTitle = idea.Title
	}

	var source *entity.QuestionResponse
	for i := range responses {
		resp := responses[i]
		coverage.TotalQuestionsSeen++
		if !resp.IsCorrect {
			continue
		}
		coverage.TotalQuestionsCorrect++
		coverage.AddCategory(resp.Bloom)
		if followUpSourceRank(resp) > followUpSourceRank(valueOrZero(source)) {
			source = &responses[i]
		}
	}

	// The first qualifying correct answer seeds the follow-up question shape.
	if coverage.SpacedFollowUpBloom == nil && source != nil {
		bloom := source.Bloom
		difficulty := source.Difficulty
		coverage.SpacedFollowUpBloom = &bloom
		coverage.SpacedFollowUpDifficulty = &difficulty
	}

	now := t.clock()
	if coverage.MeetsCategoryGate(t.cfg.MasteryGateCategories) &&
		coverage.SpacedFollowUpDueDate == nil &&
		coverage.SpacedFollowUpPassedAt == nil &&
		coverage.SpacedFollowUpBloom != nil {
		due := now.Add(days(t.cfg.BaseDelayDays))
		coverage.SpacedFollowUpDueDate = &due
		t.logger.WithFields(logrus.Fields{
			"idea": idea.ID,
			"book": idea.BookID,
			"due":  due,
		}).Info("coverage gate met, spaced follow-up scheduled")
	}

	coverage.Normalize(now)
	if _, err := t.repo.Save(ctx, coverage); err != nil {
		return fmt.Errorf("save coverage: %w", err)
	}
	return nil
}

func (t *coverageTracker) BookMastery(ctx context.Context, bookID uuid.UUID) ([]IdeaMastery, error) {
	if bookID == uuid.Nil {
		return nil, entity.ErrInvalidBookID
	}
	rows, err := t.repo.ListByBook(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("list coverage: %w", err)
	}
	summary := make([]IdeaMastery, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		summary = append(summary, IdeaMastery{
			IdeaID:            row.IdeaID,
			MasteryLevel:      row.MasteryLevel(t.cfg.MasteryGateCategories),
			CoveredCategories: len(row.CoveredCategories),
			QuestionsSeen:     row.TotalQuestionsSeen,
			QuestionsCorrect:  row.TotalQuestionsCorrect,
		})
	}
	return summary, nil
}

// followUpSourceRank orders correct answers by how well they seed the spaced
// follow-up: Hard MCQ first, then Medium MCQ, then any open-ended answer.
func followUpSourceRank(resp entity.QuestionResponse) int {
	switch {
	case resp.QuestionType == entity.QuestionTypeMCQ && resp.Difficulty == entity.DifficultyHard:
		return 3
	case resp.QuestionType == entity.QuestionTypeMCQ && resp.Difficulty == entity.DifficultyMedium:
		return 2
	case resp.QuestionType == entity.QuestionTypeOpenEnded:
		return 1
	default:
		return 0
	}
}

func valueOrZero(resp *entity.QuestionResponse) entity.QuestionResponse {
	if resp == nil {
		return entity.QuestionResponse{}
	}
	return *resp
}
