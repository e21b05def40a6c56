package usecase

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/eslsoft/bookdrill/internal/entity"
)

// TestAssembler interleaves freshly generated questions with review-sourced
// ones into a single ordered test.
type TestAssembler interface {
	Assemble(ideaID, bookID uuid.UUID, fresh, review []entity.Question) *entity.Test
}

// NewTestAssembler returns the default assembler.
func NewTestAssembler() TestAssembler {
	return &testAssembler{clock: time.Now}
}

type testAssembler struct {
	clock func() time.Time
}

// Assemble orders the fresh block Easy, Medium, Hard with any open-ended
// question as the terminal item of the Hard bucket, then appends review
// questions sorted ascending by point value. Relative order inside each
// bucket is preserved. Every question is cloned under a fresh identity; the
// SourceQueueItemID back-reference survives cloning.
func (a *testAssembler) Assemble(ideaID, bookID uuid.UUID, fresh, review []entity.Question) *entity.Test {
	buckets := lo.GroupBy(fresh, func(q entity.Question) entity.Difficulty { return q.Difficulty })
	hardChoice, hardOpen := lo.FilterReject(buckets[entity.DifficultyHard], func(q entity.Question, _ int) bool {
		return q.Type != entity.QuestionTypeOpenEnded
	})

	sortedReview := append([]entity.Question(nil), review...)
	sort.SliceStable(sortedReview, func(i, j int) bool {
		return sortedReview[i].Difficulty.Points() < sortedReview[j].Difficulty.Points()
	})

	ordered := make([]entity.Question, 0, len(fresh)+len(sortedReview))
	ordered = append(ordered, buckets[entity.DifficultyEasy]...)
	ordered = append(ordered, buckets[entity.DifficultyMedium]...)
	ordered = append(ordered, hardChoice...)
	ordered = append(ordered, hardOpen...)
	ordered = append(ordered, sortedReview...)

	test := &entity.Test{
		ID:        uuid.New(),
		IdeaID:    ideaID,
		BookID:    bookID,
		Questions: make([]entity.Question, 0, len(ordered)),
		CreatedAt: a.clock(),
	}
	for i, q := range ordered {
		clone := q.Clone()
		clone.OrderIndex = i
		test.Questions = append(test.Questions, clone)
	}
	return test
}
