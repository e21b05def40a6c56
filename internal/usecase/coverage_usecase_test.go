package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/eslsoft/bookdrill/internal/entity"
)

func correctResponse(bloom entity.BloomCategory, qt entity.QuestionType, d entity.Difficulty) entity.QuestionResponse {
	return entity.QuestionResponse{
		QuestionID:   uuid.New(),
		IsCorrect:    true,
		QuestionType: qt,
		Difficulty:   d,
		Bloom:        bloom,
	}
}

func TestRecordResponsesCoverageNeverShrinks(t *testing.T) {
	repo := newFakeCoverageRepo()
	tracker := NewCoverageTracker(repo, DefaultSchedulingConfig(), testLogger())
	idea := IdeaRef{ID: uuid.New(), BookID: uuid.New(), Title: "compounding"}

	err := tracker.RecordResponses(context.Background(), idea, []entity.QuestionResponse{
		correctResponse(entity.BloomRecall, entity.QuestionTypeMCQ, entity.DifficultyEasy),
		correctResponse(entity.BloomApply, entity.QuestionTypeMCQ, entity.DifficultyMedium),
	})
	require.NoError(t, err)

	// A wave of wrong answers must not remove covered categories.
	err = tracker.RecordResponses(context.Background(), idea, []entity.QuestionResponse{
		{QuestionID: uuid.New(), IsCorrect: false, Bloom: entity.BloomRecall, QuestionType: entity.QuestionTypeMCQ, Difficulty: entity.DifficultyEasy},
		{QuestionID: uuid.New(), IsCorrect: false, Bloom: entity.BloomApply, QuestionType: entity.QuestionTypeMCQ, Difficulty: entity.DifficultyMedium},
	})
	require.NoError(t, err)

	coverage, err := repo.GetByIdea(context.Background(), idea.ID, idea.BookID)
	require.NoError(t, err)
	require.Len(t, coverage.CoveredCategories, 2)
	require.Equal(t, 4, coverage.TotalQuestionsSeen)
	require.Equal(t, 2, coverage.TotalQuestionsCorrect)
}

func TestRecordResponsesSevenCategoriesDoNotTrigger(t *testing.T) {
	repo := newFakeCoverageRepo()
	tracker := NewCoverageTracker(repo, DefaultSchedulingConfig(), testLogger())
	idea := IdeaRef{ID: uuid.New(), BookID: uuid.New()}

	var responses []entity.QuestionResponse
	for _, bloom := range entity.AllBloomCategories[:7] {
		responses = append(responses, correctResponse(bloom, entity.QuestionTypeMCQ, entity.DifficultyHard))
	}
	require.NoError(t, tracker.RecordResponses(context.Background(), idea, responses))

	coverage, err := repo.GetByIdea(context.Background(), idea.ID, idea.BookID)
	require.NoError(t, err)
	require.Len(t, coverage.CoveredCategories, 7)
	require.Nil(t, coverage.SpacedFollowUpDueDate)
}

func TestRecordResponsesEighthCategoryTriggersFollowUp(t *testing.T) {
	repo := newFakeCoverageRepo()
	tracker := NewCoverageTracker(repo, DefaultSchedulingConfig(), testLogger())
	impl := tracker.(*coverageTracker)
	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	impl.clock = func() time.Time { return fixed }
	idea := IdeaRef{ID: uuid.New(), BookID: uuid.New()}

	var responses []entity.QuestionResponse
	for _, bloom := range entity.AllBloomCategories[:7] {
		responses = append(responses, correctResponse(bloom, entity.QuestionTypeMCQ, entity.DifficultyHard))
	}
	require.NoError(t, tracker.RecordResponses(context.Background(), idea, responses))

	require.NoError(t, tracker.RecordResponses(context.Background(), idea, []entity.QuestionResponse{
		correctResponse(entity.BloomHowWield, entity.QuestionTypeMCQ, entity.DifficultyHard),
	}))

	coverage, err := repo.GetByIdea(context.Background(), idea.ID, idea.BookID)
	require.NoError(t, err)
	require.Len(t, coverage.CoveredCategories, 8)
	require.NotNil(t, coverage.SpacedFollowUpDueDate)
	require.Equal(t, fixed.Add(3*24*time.Hour), *coverage.SpacedFollowUpDueDate)
	require.NotNil(t, coverage.SpacedFollowUpBloom)
	require.NotNil(t, coverage.SpacedFollowUpDifficulty)
	require.Equal(t, entity.DifficultyHard, *coverage.SpacedFollowUpDifficulty)
}

func TestRecordResponsesTriggerIsIdempotent(t *testing.T) {
	repo := newFakeCoverageRepo()
	tracker := NewCoverageTracker(repo, DefaultSchedulingConfig(), testLogger())
	impl := tracker.(*coverageTracker)
	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	impl.clock = func() time.Time { return first }
	idea := IdeaRef{ID: uuid.New(), BookID: uuid.New()}

	var responses []entity.QuestionResponse
	for _, bloom := range entity.AllBloomCategories {
		responses = append(responses, correctResponse(bloom, entity.QuestionTypeMCQ, entity.DifficultyHard))
	}
	require.NoError(t, tracker.RecordResponses(context.Background(), idea, responses))

	// More answers the next day must not push the due date out.
	impl.clock = func() time.Time { return first.Add(24 * time.Hour) }
	require.NoError(t, tracker.RecordResponses(context.Background(), idea, []entity.QuestionResponse{
		correctResponse(entity.BloomRecall, entity.QuestionTypeMCQ, entity.DifficultyHard),
	}))

	coverage, err := repo.GetByIdea(context.Background(), idea.ID, idea.BookID)
	require.NoError(t, err)
	require.Equal(t, first.Add(3*24*time.Hour), *coverage.SpacedFollowUpDueDate)
}

func TestRecordResponsesSourcePrefersHardMCQ(t *testing.T) {
	repo := newFakeCoverageRepo()
	tracker := NewCoverageTracker(repo, DefaultSchedulingConfig(), testLogger())
	idea := IdeaRef{ID: uuid.New(), BookID: uuid.New()}

	require.NoError(t, tracker.RecordResponses(context.Background(), idea, []entity.QuestionResponse{
		correctResponse(entity.BloomRecall, entity.QuestionTypeOpenEnded, entity.DifficultyMedium),
		correctResponse(entity.BloomApply, entity.QuestionTypeMCQ, entity.DifficultyMedium),
		correctResponse(entity.BloomCritique, entity.QuestionTypeMCQ, entity.DifficultyHard),
	}))

	coverage, err := repo.GetByIdea(context.Background(), idea.ID, idea.BookID)
	require.NoError(t, err)
	require.NotNil(t, coverage.SpacedFollowUpBloom)
	require.Equal(t, entity.BloomCritique, *coverage.SpacedFollowUpBloom)
	require.Equal(t, entity.DifficultyHard, *coverage.SpacedFollowUpDifficulty)
}

func TestBookMasteryLevels(t *testing.T) {
	repo := newFakeCoverageRepo()
	tracker := NewCoverageTracker(repo, DefaultSchedulingConfig(), testLogger())
	bookID := uuid.New()
	now := time.Now()

	fresh := &entity.IdeaCoverage{IdeaID: uuid.New(), BookID: bookID, CoveredCategories: entity.AllBloomCategories[:3]}
	fresh.Normalize(now)
	passed := &entity.IdeaCoverage{
		IdeaID:                 uuid.New(),
		BookID:                 bookID,
		CoveredCategories:      entity.AllBloomCategories,
		SpacedFollowUpPassedAt: &now,
		CurveballPassed:        true,
	}
	passed.Normalize(now)
	_, err := repo.Save(context.Background(), fresh)
	require.NoError(t, err)
	_, err = repo.Save(context.Background(), passed)
	require.NoError(t, err)

	summary, err := tracker.BookMastery(context.Background(), bookID)
	require.NoError(t, err)
	require.Len(t, summary, 2)
	levels := map[uuid.UUID]int{}
	for _, s := range summary {
		levels[s.IdeaID] = s.MasteryLevel
	}
	require.Equal(t, 0, levels[fresh.IdeaID])
	require.Equal(t, 3, levels[passed.IdeaID])
}
