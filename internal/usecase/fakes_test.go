package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/bookdrill/internal/entity"
	"github.com/eslsoft/bookdrill/internal/repository"
)

func pendingQuery(bookID uuid.UUID, title string) *repository.ListReviewItemsQuery {
	return &repository.ListReviewItemsQuery{
		BookID:              bookID,
		NormalizedBookTitle: entity.NormalizeBookTitle(title),
		PendingOnly:         true,
	}
}

func allQuery(bookID uuid.UUID, title string) *repository.ListReviewItemsQuery {
	return &repository.ListReviewItemsQuery{
		BookID:              bookID,
		NormalizedBookTitle: entity.NormalizeBookTitle(title),
	}
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

type coverageKey struct {
	ideaID uuid.UUID
	bookID uuid.UUID
}

type fakeCoverageRepo struct {
	mu    sync.RWMutex
	items map[coverageKey]*entity.IdeaCoverage
}

func newFakeCoverageRepo() *fakeCoverageRepo {
	return &fakeCoverageRepo{items: make(map[coverageKey]*entity.IdeaCoverage)}
}

func (r *fakeCoverageRepo) GetByIdea(ctx context.Context, ideaID, bookID uuid.UUID) (*entity.IdeaCoverage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if item, ok := r.items[coverageKey{ideaID, bookID}]; ok {
		return cloneCoverage(item), nil
	}
	return nil, nil
}

func (r *fakeCoverageRepo) ListByBook(ctx context.Context, bookID uuid.UUID) ([]entity.IdeaCoverage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []entity.IdeaCoverage
	for key, item := range r.items {
		if key.bookID == bookID {
			result = append(result, *cloneCoverage(item))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *fakeCoverageRepo) Save(ctx context.Context, coverage *entity.IdeaCoverage) (*entity.IdeaCoverage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	copy := cloneCoverage(coverage)
	r.items[coverageKey{copy.IdeaID, copy.BookID}] = copy
	return cloneCoverage(copy), nil
}

func cloneCoverage(src *entity.IdeaCoverage) *entity.IdeaCoverage {
	if src == nil {
		return nil
	}
	copy := *src
	if src.CoveredCategories != nil {
		copy.CoveredCategories = append([]entity.BloomCategory(nil), src.CoveredCategories...)
	}
	copy.SpacedFollowUpDueDate = cloneTime(src.SpacedFollowUpDueDate)
	copy.SpacedFollowUpPassedAt = cloneTime(src.SpacedFollowUpPassedAt)
	copy.CurveballDueDate = cloneTime(src.CurveballDueDate)
	if src.SpacedFollowUpBloom != nil {
		bloom := *src.SpacedFollowUpBloom
		copy.SpacedFollowUpBloom = &bloom
	}
	if src.SpacedFollowUpDifficulty != nil {
		diff := *src.SpacedFollowUpDifficulty
		copy.SpacedFollowUpDifficulty = &diff
	}
	return &copy
}

func cloneTime(src *time.Time) *time.Time {
	if src == nil {
		return nil
	}
	t := *src
	return &t
}

type fakeReviewItemRepo struct {
	mu    sync.RWMutex
	seq   int
	order map[uuid.UUID]int
	items map[uuid.UUID]*entity.ReviewQueueItem
}

func newFakeReviewItemRepo() *fakeReviewItemRepo {
	return &fakeReviewItemRepo{
		order: make(map[uuid.UUID]int),
		items: make(map[uuid.UUID]*entity.ReviewQueueItem),
	}
}

func (r *fakeReviewItemRepo) Create(ctx context.Context, item *entity.ReviewQueueItem) (*entity.ReviewQueueItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	copy := cloneReviewItem(item)
	if copy.ID == uuid.Nil {
		copy.ID = uuid.New()
	}
	r.seq++
	r.order[copy.ID] = r.seq
	r.items[copy.ID] = copy
	return cloneReviewItem(copy), nil
}

func (r *fakeReviewItemRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.ReviewQueueItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return nil, entity.ErrQueueItemNotFound
	}
	return cloneReviewItem(item), nil
}

func (r *fakeReviewItemRepo) List(ctx context.Context, query *repository.ListReviewItemsQuery) ([]entity.ReviewQueueItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []entity.ReviewQueueItem
	for _, item := range r.items {
		if !item.MatchesBook(query.BookID, query.NormalizedBookTitle) {
			continue
		}
		if query.PendingOnly && item.IsCompleted {
			continue
		}
		result = append(result, *cloneReviewItem(item))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].AddedDate.Equal(result[j].AddedDate) {
			return r.order[result[i].ID] < r.order[result[j].ID]
		}
		return result[i].AddedDate.Before(result[j].AddedDate)
	})
	return result, nil
}

func (r *fakeReviewItemRepo) Update(ctx context.Context, item *entity.ReviewQueueItem) (*entity.ReviewQueueItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[item.ID]; !ok {
		return nil, entity.ErrQueueItemNotFound
	}
	copy := cloneReviewItem(item)
	r.items[copy.ID] = copy
	return cloneReviewItem(copy), nil
}

func (r *fakeReviewItemRepo) SaveAll(ctx context.Context, items []entity.ReviewQueueItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range items {
		copy := cloneReviewItem(&items[i])
		if _, ok := r.order[copy.ID]; !ok {
			r.seq++
			r.order[copy.ID] = r.seq
		}
		r.items[copy.ID] = copy
	}
	return nil
}

func (r *fakeReviewItemRepo) pendingCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, item := range r.items {
		if !item.IsCompleted {
			count++
		}
	}
	return count
}

func cloneReviewItem(src *entity.ReviewQueueItem) *entity.ReviewQueueItem {
	if src == nil {
		return nil
	}
	copy := *src
	if src.BookID != nil {
		id := *src.BookID
		copy.BookID = &id
	}
	return &copy
}

type sessionSlot struct {
	ideaID uuid.UUID
	bookID uuid.UUID
	st     entity.SessionType
}

type fakeSessionRepo struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*entity.PracticeSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{items: make(map[uuid.UUID]*entity.PracticeSession)}
}

func (r *fakeSessionRepo) FindBySlot(ctx context.Context, ideaID, bookID uuid.UUID, st entity.SessionType) (*entity.PracticeSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, item := range r.items {
		if (sessionSlot{item.IdeaID, item.BookID, item.SessionType}) == (sessionSlot{ideaID, bookID, st}) {
			return cloneSession(item), nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.PracticeSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneSession(r.items[id]), nil
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *entity.PracticeSession) (*entity.PracticeSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	copy := cloneSession(session)
	if copy.ID == uuid.Nil {
		copy.ID = uuid.New()
	}
	r.items[copy.ID] = copy
	return cloneSession(copy), nil
}

func (r *fakeSessionRepo) Update(ctx context.Context, session *entity.PracticeSession) (*entity.PracticeSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[session.ID]; !ok {
		return nil, entity.ErrSessionNotFound
	}
	copy := cloneSession(session)
	r.items[copy.ID] = copy
	return cloneSession(copy), nil
}

func (r *fakeSessionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return entity.ErrSessionNotFound
	}
	delete(r.items, id)
	return nil
}

func cloneSession(src *entity.PracticeSession) *entity.PracticeSession {
	if src == nil {
		return nil
	}
	copy := *src
	if src.TestID != nil {
		id := *src.TestID
		copy.TestID = &id
	}
	return &copy
}

type fakeTestRepo struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*entity.Test
}

func newFakeTestRepo() *fakeTestRepo {
	return &fakeTestRepo{items: make(map[uuid.UUID]*entity.Test)}
}

func (r *fakeTestRepo) Save(ctx context.Context, test *entity.Test) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[test.ID] = cloneTest(test)
	return nil
}

func (r *fakeTestRepo) Get(ctx context.Context, id uuid.UUID) (*entity.Test, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	test, ok := r.items[id]
	if !ok {
		return nil, entity.ErrTestNotFound
	}
	return cloneTest(test), nil
}

func (r *fakeTestRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func cloneTest(src *entity.Test) *entity.Test {
	if src == nil {
		return nil
	}
	copy := *src
	copy.Questions = append([]entity.Question(nil), src.Questions...)
	return &copy
}

type fakeGenerator struct {
	mu             sync.Mutex
	freshCalls     int
	queueCalls     int
	freshQuestions []entity.Question
	freshErr       error
	queueErr       error
}

func (g *fakeGenerator) GenerateFreshQuestions(ctx context.Context, idea IdeaRef) ([]entity.Question, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.freshCalls++
	if g.freshErr != nil {
		return nil, g.freshErr
	}
	if g.freshQuestions != nil {
		return append([]entity.Question(nil), g.freshQuestions...), nil
	}
	return defaultFreshQuestions(idea.ID), nil
}

func (g *fakeGenerator) GenerateFromQueueItems(ctx context.Context, items []entity.ReviewQueueItem) ([]entity.Question, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queueCalls++
	if g.queueErr != nil {
		return nil, g.queueErr
	}
	questions := make([]entity.Question, 0, len(items))
	for _, item := range items {
		itemID := item.ID
		questions = append(questions, entity.Question{
			ID:                uuid.New(),
			IdeaID:            item.IdeaID,
			Type:              item.QuestionType,
			Difficulty:        item.Difficulty,
			Bloom:             item.BloomCategory,
			Prompt:            "review: " + item.OriginalQuestionText,
			IsCurveball:       item.IsCurveball,
			IsSpacedFollowUp:  item.IsSpacedFollowUp,
			SourceQueueItemID: &itemID,
		})
	}
	return questions, nil
}

func (g *fakeGenerator) calls() (fresh, queue int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.freshCalls, g.queueCalls
}

// defaultFreshQuestions builds a minimal lesson pool across the eight
// categories: easy/medium/hard MCQs plus a hard open-ended closer.
func defaultFreshQuestions(ideaID uuid.UUID) []entity.Question {
	difficulties := []entity.Difficulty{
		entity.DifficultyEasy, entity.DifficultyEasy,
		entity.DifficultyMedium, entity.DifficultyMedium, entity.DifficultyMedium,
		entity.DifficultyHard,
	}
	questions := make([]entity.Question, 0, len(difficulties)+2)
	for i, d := range difficulties {
		questions = append(questions, entity.Question{
			ID:         uuid.New(),
			IdeaID:     ideaID,
			Type:       entity.QuestionTypeMCQ,
			Difficulty: d,
			Bloom:      entity.AllBloomCategories[i%len(entity.AllBloomCategories)],
			Prompt:     "fresh question",
		})
	}
	questions = append(questions,
		entity.Question{
			ID:         uuid.New(),
			IdeaID:     ideaID,
			Type:       entity.QuestionTypeMSQ,
			Difficulty: entity.DifficultyHard,
			Bloom:      entity.BloomContrast,
			Prompt:     "fresh msq",
		},
		entity.Question{
			ID:         uuid.New(),
			IdeaID:     ideaID,
			Type:       entity.QuestionTypeOpenEnded,
			Difficulty: entity.DifficultyHard,
			Bloom:      entity.BloomHowWield,
			Prompt:     "fresh open",
		},
	)
	return questions
}
