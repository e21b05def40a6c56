package entity

import (
	"time"

	"github.com/google/uuid"
)

// IdeaCoverage is the per-idea-per-book ledger of answered Bloom categories
// and the scheduling state for follow-ups and curveballs.
type IdeaCoverage struct {
	ID                    uuid.UUID
	IdeaID                uuid.UUID
	IdeaTitle             string
	BookID                uuid.UUID
	CoveredCategories     []BloomCategory
	TotalQuestionsSeen    int
	TotalQuestionsCorrect int

	SpacedFollowUpDueDate    *time.Time
	SpacedFollowUpPassedAt   *time.Time
	SpacedFollowUpBloom      *BloomCategory
	SpacedFollowUpDifficulty *Difficulty

	CurveballDueDate *time.Time
	CurveballPassed  bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasCategory reports whether the category has ever been answered correctly.
func (c *IdeaCoverage) HasCategory(cat BloomCategory) bool {
	for _, covered := range c.CoveredCategories {
		if covered == cat {
			return true
		}
	}
	return false
}

// AddCategory appends a category to the covered set. The set only ever grows.
func (c *IdeaCoverage) AddCategory(cat BloomCategory) {
	if !cat.Valid() || c.HasCategory(cat) {
		return
	}
	c.CoveredCategories = append(c.CoveredCategories, cat)
}

// MeetsCategoryGate reports whether enough distinct categories have been
// covered to start the follow-up pipeline.
func (c *IdeaCoverage) MeetsCategoryGate(gate int) bool {
	return len(c.CoveredCategories) >= gate
}

// MasteryLevel derives the externally visible mastery level:
// 0 below the category gate, 1 once the gate is met, 2 after the spaced
// follow-up passed, 3 ("solid mastery") after the curveball also passed.
func (c *IdeaCoverage) MasteryLevel(gate int) int {
	if !c.MeetsCategoryGate(gate) {
		return 0
	}
	if c.SpacedFollowUpPassedAt == nil {
		return 1
	}
	if !c.CurveballPassed {
		return 2
	}
	return 3
}

// Normalize ensures defaults & constraints before persistence.
func (c *IdeaCoverage) Normalize(now time.Time) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CoveredCategories == nil {
		c.CoveredCategories = []BloomCategory{}
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
}
