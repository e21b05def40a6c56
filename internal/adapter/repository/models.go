package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/eslsoft/bookdrill/internal/entity"
)

// ideaCoverageModel is the persistence shape of entity.IdeaCoverage.
type ideaCoverageModel struct {
	ID                    uuid.UUID `gorm:"type:uuid;primaryKey"`
	IdeaID                uuid.UUID `gorm:"type:uuid;index:idx_idea_coverages_idea_book,unique"`
	IdeaTitle             string
	BookID                uuid.UUID `gorm:"type:uuid;index:idx_idea_coverages_idea_book,unique"`
	CoveredCategories     []string  `gorm:"serializer:json"`
	TotalQuestionsSeen    int
	TotalQuestionsCorrect int

	SpacedFollowUpDueDate    *time.Time
	SpacedFollowUpPassedAt   *time.Time
	SpacedFollowUpBloom      *string
	SpacedFollowUpDifficulty *string

	CurveballDueDate *time.Time
	CurveballPassed  bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ideaCoverageModel) TableName() string { return "idea_coverages" }

func toCoverageModel(c *entity.IdeaCoverage) *ideaCoverageModel {
	m := &ideaCoverageModel{
		ID:        c.ID,
		IdeaID:    c.IdeaID,
		IdeaTitle: c.IdeaTitle,
		BookID:    c.BookID,
		CoveredCategories: lo.Map(c.CoveredCategories, func(cat entity.BloomCategory, _ int) string {
			return string(cat)
		}),
		TotalQuestionsSeen:     c.TotalQuestionsSeen,
		TotalQuestionsCorrect:  c.TotalQuestionsCorrect,
		SpacedFollowUpDueDate:  c.SpacedFollowUpDueDate,
		SpacedFollowUpPassedAt: c.SpacedFollowUpPassedAt,
		CurveballDueDate:       c.CurveballDueDate,
		CurveballPassed:        c.CurveballPassed,
		CreatedAt:              c.CreatedAt,
		UpdatedAt:              c.UpdatedAt,
	}
	if c.SpacedFollowUpBloom != nil {
		m.SpacedFollowUpBloom = lo.ToPtr(string(*c.SpacedFollowUpBloom))
	}
	if c.SpacedFollowUpDifficulty != nil {
		m.SpacedFollowUpDifficulty = lo.ToPtr(string(*c.SpacedFollowUpDifficulty))
	}
	return m
}

func fromCoverageModel(m *ideaCoverageModel) *entity.IdeaCoverage {
	c := &entity.IdeaCoverage{
		ID:        m.ID,
		IdeaID:    m.IdeaID,
		IdeaTitle: m.IdeaTitle,
		BookID:    m.BookID,
		CoveredCategories: lo.FilterMap(m.CoveredCategories, func(raw string, _ int) (entity.BloomCategory, bool) {
			cat := entity.ParseBloomCategory(raw)
			return cat, cat.Valid()
		}),
		TotalQuestionsSeen:     m.TotalQuestionsSeen,
		TotalQuestionsCorrect:  m.TotalQuestionsCorrect,
		SpacedFollowUpDueDate:  m.SpacedFollowUpDueDate,
		SpacedFollowUpPassedAt: m.SpacedFollowUpPassedAt,
		CurveballDueDate:       m.CurveballDueDate,
		CurveballPassed:        m.CurveballPassed,
		CreatedAt:              m.CreatedAt,
		UpdatedAt:              m.UpdatedAt,
	}
	if m.SpacedFollowUpBloom != nil {
		c.SpacedFollowUpBloom = lo.ToPtr(entity.ParseBloomCategory(*m.SpacedFollowUpBloom))
	}
	if m.SpacedFollowUpDifficulty != nil {
		c.SpacedFollowUpDifficulty = lo.ToPtr(entity.ParseDifficulty(*m.SpacedFollowUpDifficulty))
	}
	return c
}

// reviewQueueItemModel is the persistence shape of entity.ReviewQueueItem.
type reviewQueueItemModel struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primaryKey"`
	IdeaID               uuid.UUID  `gorm:"type:uuid;index"`
	IdeaTitle            string
	BookID               *uuid.UUID `gorm:"type:uuid;index"`
	BookTitle            string
	NormalizedBookTitle  string `gorm:"index"`
	QuestionType         string
	Difficulty           string
	BloomCategory        string
	OriginalQuestionText string
	IsCurveball          bool
	IsSpacedFollowUp     bool
	IsCompleted          bool `gorm:"index"`
	AddedDate            time.Time
}

func (reviewQueueItemModel) TableName() string { return "review_queue_items" }

func toReviewItemModel(item *entity.ReviewQueueItem) *reviewQueueItemModel {
	return &reviewQueueItemModel{
		ID:                   item.ID,
		IdeaID:               item.IdeaID,
		IdeaTitle:            item.IdeaTitle,
		BookID:               item.BookID,
		BookTitle:            item.BookTitle,
		NormalizedBookTitle:  item.NormalizedBookTitle,
		QuestionType:         string(item.QuestionType),
		Difficulty:           string(item.Difficulty),
		BloomCategory:        string(item.BloomCategory),
		OriginalQuestionText: item.OriginalQuestionText,
		IsCurveball:          item.IsCurveball,
		IsSpacedFollowUp:     item.IsSpacedFollowUp,
		IsCompleted:          item.IsCompleted,
		AddedDate:            item.AddedDate,
	}
}

func fromReviewItemModel(m *reviewQueueItemModel) *entity.ReviewQueueItem {
	return &entity.ReviewQueueItem{
		ID:                   m.ID,
		IdeaID:               m.IdeaID,
		IdeaTitle:            m.IdeaTitle,
		BookID:               m.BookID,
		BookTitle:            m.BookTitle,
		NormalizedBookTitle:  m.NormalizedBookTitle,
		QuestionType:         entity.ParseQuestionType(m.QuestionType),
		Difficulty:           entity.ParseDifficulty(m.Difficulty),
		BloomCategory:        entity.ParseBloomCategory(m.BloomCategory),
		OriginalQuestionText: m.OriginalQuestionText,
		IsCurveball:          m.IsCurveball,
		IsSpacedFollowUp:     m.IsSpacedFollowUp,
		IsCompleted:          m.IsCompleted,
		AddedDate:            m.AddedDate,
	}
}

// practiceSessionModel is the persistence shape of entity.PracticeSession.
type practiceSessionModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	IdeaID        uuid.UUID `gorm:"type:uuid;index:idx_practice_sessions_slot,unique"`
	BookID        uuid.UUID `gorm:"type:uuid;index:idx_practice_sessions_slot,unique"`
	SessionType   string    `gorm:"index:idx_practice_sessions_slot,unique"`
	Status        string
	ErrorMessage  string
	ConfigVersion int
	TestID        *uuid.UUID `gorm:"type:uuid"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (practiceSessionModel) TableName() string { return "practice_sessions" }

func toSessionModel(s *entity.PracticeSession) *practiceSessionModel {
	return &practiceSessionModel{
		ID:            s.ID,
		IdeaID:        s.IdeaID,
		BookID:        s.BookID,
		SessionType:   string(s.SessionType),
		Status:        string(s.Status),
		ErrorMessage:  s.ErrorMessage,
		ConfigVersion: s.ConfigVersion,
		TestID:        s.TestID,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

func fromSessionModel(m *practiceSessionModel) *entity.PracticeSession {
	return &entity.PracticeSession{
		ID:            m.ID,
		IdeaID:        m.IdeaID,
		BookID:        m.BookID,
		SessionType:   entity.ParseSessionType(m.SessionType),
		Status:        entity.SessionStatus(m.Status),
		ErrorMessage:  m.ErrorMessage,
		ConfigVersion: m.ConfigVersion,
		TestID:        m.TestID,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// testModel and questionModel are the persistence shapes of entity.Test.
type testModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	IdeaID    uuid.UUID `gorm:"type:uuid"`
	BookID    uuid.UUID `gorm:"type:uuid"`
	CreatedAt time.Time
}

func (testModel) TableName() string { return "tests" }

type questionModel struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	TestID            uuid.UUID `gorm:"type:uuid;index"`
	IdeaID            uuid.UUID `gorm:"type:uuid"`
	Type              string
	Difficulty        string
	Bloom             string
	Prompt            string
	Options           []string `gorm:"serializer:json"`
	CorrectOptions    []int    `gorm:"serializer:json"`
	ExpectedAnswer    string
	OrderIndex        int
	IsCurveball       bool
	IsSpacedFollowUp  bool
	SourceQueueItemID *uuid.UUID `gorm:"type:uuid"`
}

func (questionModel) TableName() string { return "questions" }

func toQuestionModel(testID uuid.UUID, q entity.Question) *questionModel {
	return &questionModel{
		ID:                q.ID,
		TestID:            testID,
		IdeaID:            q.IdeaID,
		Type:              string(q.Type),
		Difficulty:        string(q.Difficulty),
		Bloom:             string(q.Bloom),
		Prompt:            q.Prompt,
		Options:           q.Options,
		CorrectOptions:    q.CorrectOptions,
		ExpectedAnswer:    q.ExpectedAnswer,
		OrderIndex:        q.OrderIndex,
		IsCurveball:       q.IsCurveball,
		IsSpacedFollowUp:  q.IsSpacedFollowUp,
		SourceQueueItemID: q.SourceQueueItemID,
	}
}

func fromQuestionModel(m *questionModel) entity.Question {
	return entity.Question{
		ID:                m.ID,
		IdeaID:            m.IdeaID,
		Type:              entity.ParseQuestionType(m.Type),
		Difficulty:        entity.ParseDifficulty(m.Difficulty),
		Bloom:             entity.ParseBloomCategory(m.Bloom),
		Prompt:            m.Prompt,
		Options:           m.Options,
		CorrectOptions:    m.CorrectOptions,
		ExpectedAnswer:    m.ExpectedAnswer,
		OrderIndex:        m.OrderIndex,
		IsCurveball:       m.IsCurveball,
		IsSpacedFollowUp:  m.IsSpacedFollowUp,
		SourceQueueItemID: m.SourceQueueItemID,
	}
}

// Models returns every model registered for schema migration.
func Models() []any {
	return []any{
		&ideaCoverageModel{},
		&reviewQueueItemModel{},
		&practiceSessionModel{},
		&testModel{},
		&questionModel{},
	}
}
