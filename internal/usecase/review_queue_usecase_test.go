package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/eslsoft/bookdrill/internal/entity"
)

func queueItem(ideaID uuid.UUID, bookID *uuid.UUID, bookTitle string, qt entity.QuestionType, added time.Time) *entity.ReviewQueueItem {
	item := &entity.ReviewQueueItem{
		ID:            uuid.New(),
		IdeaID:        ideaID,
		IdeaTitle:     "some idea",
		BookID:        bookID,
		BookTitle:     bookTitle,
		QuestionType:  qt,
		Difficulty:    entity.DifficultyMedium,
		BloomCategory: entity.BloomRecall,
		AddedDate:     added,
	}
	item.Normalize(added)
	return item
}

func TestGetDailyReviewItemsAppliesCapsFIFO(t *testing.T) {
	repo := newFakeReviewItemRepo()
	mgr := NewReviewQueueManager(repo, testLogger())
	bookID := uuid.New()
	base := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

	var mcqIDs []uuid.UUID
	for i := 0; i < 5; i++ {
		item := queueItem(uuid.New(), &bookID, "Deep Work", entity.QuestionTypeMCQ, base.Add(time.Duration(i)*time.Minute))
		_, err := repo.Create(context.Background(), item)
		require.NoError(t, err)
		mcqIDs = append(mcqIDs, item.ID)
	}
	for i := 0; i < 3; i++ {
		_, err := repo.Create(context.Background(), queueItem(uuid.New(), &bookID, "Deep Work", entity.QuestionTypeOpenEnded, base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}

	daily, err := mgr.GetDailyReviewItems(context.Background(), bookID, "Deep Work", 3, 1)
	require.NoError(t, err)
	require.Len(t, daily.MCQItems, 3)
	require.Len(t, daily.OpenEndedItems, 1)
	// Oldest first within the bucket.
	require.Equal(t, mcqIDs[0], daily.MCQItems[0].ID)
	require.Equal(t, mcqIDs[1], daily.MCQItems[1].ID)
	require.Equal(t, mcqIDs[2], daily.MCQItems[2].ID)
}

func TestGetDailyReviewItemsMatchesLegacyByTitle(t *testing.T) {
	repo := newFakeReviewItemRepo()
	mgr := NewReviewQueueManager(repo, testLogger())
	bookID := uuid.New()
	base := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

	// Legacy item predating book IDs, plus an item of another book.
	legacy := queueItem(uuid.New(), nil, "Deep  Work", entity.QuestionTypeMCQ, base)
	_, err := repo.Create(context.Background(), legacy)
	require.NoError(t, err)
	otherBook := uuid.New()
	_, err = repo.Create(context.Background(), queueItem(uuid.New(), &otherBook, "Atomic Habits", entity.QuestionTypeMCQ, base))
	require.NoError(t, err)

	daily, err := mgr.GetDailyReviewItems(context.Background(), bookID, "deep work", 3, 1)
	require.NoError(t, err)
	require.Len(t, daily.MCQItems, 1)
	require.Equal(t, legacy.ID, daily.MCQItems[0].ID)
}

func TestAddMistakesToQueueSkipsReviewSourced(t *testing.T) {
	repo := newFakeReviewItemRepo()
	mgr := NewReviewQueueManager(repo, testLogger())
	bookID := uuid.New()
	idea := IdeaRef{ID: uuid.New(), BookID: bookID, Title: "spacing effect", BookTitle: "Make It Stick"}

	freshQuestion := entity.Question{ID: uuid.New(), Prompt: "what is spacing?"}
	sourceID := uuid.New()
	test := &entity.Test{ID: uuid.New(), Questions: []entity.Question{freshQuestion}}

	responses := []entity.QuestionResponse{
		{QuestionID: freshQuestion.ID, IsCorrect: false, QuestionType: entity.QuestionTypeMCQ, Difficulty: entity.DifficultyEasy, Bloom: entity.BloomRecall},
		{QuestionID: uuid.New(), IsCorrect: false, QuestionType: entity.QuestionTypeMCQ, Difficulty: entity.DifficultyHard, Bloom: entity.BloomApply, SourceQueueItemID: &sourceID},
		{QuestionID: uuid.New(), IsCorrect: false, QuestionType: entity.QuestionTypeMCQ, Difficulty: entity.DifficultyHard, Bloom: entity.BloomApply, IsCurveball: true},
		{QuestionID: uuid.New(), IsCorrect: true, QuestionType: entity.QuestionTypeMCQ, Difficulty: entity.DifficultyEasy, Bloom: entity.BloomRecall},
	}
	require.NoError(t, mgr.AddMistakesToQueue(context.Background(), idea, test, responses))

	pending, err := repo.List(context.Background(), pendingQuery(bookID, "Make It Stick"))
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "what is spacing?", pending[0].OriginalQuestionText)
	require.Equal(t, idea.ID, pending[0].IdeaID)
	require.False(t, pending[0].IsCurveball)
	require.False(t, pending[0].IsSpacedFollowUp)
}

func TestMarkItemsAsCompletedRetiresExactlyGivenItems(t *testing.T) {
	repo := newFakeReviewItemRepo()
	mgr := NewReviewQueueManager(repo, testLogger())
	bookID := uuid.New()
	base := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

	first, err := repo.Create(context.Background(), queueItem(uuid.New(), &bookID, "Deep Work", entity.QuestionTypeMCQ, base))
	require.NoError(t, err)
	_, err = repo.Create(context.Background(), queueItem(uuid.New(), &bookID, "Deep Work", entity.QuestionTypeMCQ, base))
	require.NoError(t, err)

	require.NoError(t, mgr.MarkItemsAsCompleted(context.Background(), []entity.ReviewQueueItem{*first}))

	pending, err := repo.List(context.Background(), pendingQuery(bookID, "Deep Work"))
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.NotEqual(t, first.ID, pending[0].ID)
}

func TestCompleteForResponseMatchesSourceQueueItem(t *testing.T) {
	repo := newFakeReviewItemRepo()
	mgr := NewReviewQueueManager(repo, testLogger())
	bookID := uuid.New()
	base := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

	item, err := repo.Create(context.Background(), queueItem(uuid.New(), &bookID, "Deep Work", entity.QuestionTypeMCQ, base))
	require.NoError(t, err)

	resp := entity.QuestionResponse{
		QuestionID:        uuid.New(),
		IdeaID:            item.IdeaID,
		IsCorrect:         true,
		Difficulty:        item.Difficulty,
		SourceQueueItemID: &item.ID,
	}
	require.NoError(t, mgr.CompleteForResponse(context.Background(), bookID, "Deep Work", resp))

	updated, err := repo.GetByID(context.Background(), item.ID)
	require.NoError(t, err)
	require.True(t, updated.IsCompleted)
}

func TestCompleteForResponseFallsBackToIdeaAndDifficulty(t *testing.T) {
	repo := newFakeReviewItemRepo()
	mgr := NewReviewQueueManager(repo, testLogger())
	bookID := uuid.New()
	ideaID := uuid.New()
	base := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

	oldest, err := repo.Create(context.Background(), queueItem(ideaID, &bookID, "Deep Work", entity.QuestionTypeMCQ, base))
	require.NoError(t, err)
	newer, err := repo.Create(context.Background(), queueItem(ideaID, &bookID, "Deep Work", entity.QuestionTypeMCQ, base.Add(time.Hour)))
	require.NoError(t, err)

	resp := entity.QuestionResponse{
		QuestionID: uuid.New(),
		IdeaID:     ideaID,
		IsCorrect:  true,
		Difficulty: entity.DifficultyMedium,
	}
	require.NoError(t, mgr.CompleteForResponse(context.Background(), bookID, "Deep Work", resp))

	first, err := repo.GetByID(context.Background(), oldest.ID)
	require.NoError(t, err)
	require.True(t, first.IsCompleted)
	second, err := repo.GetByID(context.Background(), newer.ID)
	require.NoError(t, err)
	require.False(t, second.IsCompleted)
}
