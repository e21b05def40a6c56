package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Difficulty grades a question.
type Difficulty string

const (
	DifficultyUnspecified Difficulty = ""
	DifficultyEasy        Difficulty = "easy"
	DifficultyMedium      Difficulty = "medium"
	DifficultyHard        Difficulty = "hard"
)

// Points returns the point value used for ascending difficulty sorts.
func (d Difficulty) Points() int {
	switch d {
	case DifficultyEasy:
		return 1
	case DifficultyMedium:
		return 2
	case DifficultyHard:
		return 3
	default:
		return 0
	}
}

// ParseDifficulty converts an arbitrary string into a Difficulty.
func ParseDifficulty(code string) Difficulty {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "easy":
		return DifficultyEasy
	case "medium":
		return DifficultyMedium
	case "hard":
		return DifficultyHard
	default:
		return DifficultyUnspecified
	}
}

// QuestionType enumerates the supported retrieval-practice formats.
type QuestionType string

const (
	QuestionTypeUnspecified QuestionType = ""
	QuestionTypeMCQ         QuestionType = "mcq"
	QuestionTypeMSQ         QuestionType = "msq"
	QuestionTypeOpenEnded   QuestionType = "open_ended"
)

// IsChoice reports whether the type presents answer options.
func (t QuestionType) IsChoice() bool {
	return t == QuestionTypeMCQ || t == QuestionTypeMSQ
}

// ParseQuestionType converts an arbitrary string into a QuestionType.
func ParseQuestionType(code string) QuestionType {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "mcq":
		return QuestionTypeMCQ
	case "msq":
		return QuestionTypeMSQ
	case "open_ended", "open":
		return QuestionTypeOpenEnded
	default:
		return QuestionTypeUnspecified
	}
}

// Question is a single retrieval-practice item inside an assembled test.
type Question struct {
	ID                uuid.UUID
	IdeaID            uuid.UUID
	Type              QuestionType
	Difficulty        Difficulty
	Bloom             BloomCategory
	Prompt            string
	Options           []string
	CorrectOptions    []int
	ExpectedAnswer    string
	OrderIndex        int
	IsCurveball       bool
	IsSpacedFollowUp  bool
	SourceQueueItemID *uuid.UUID
}

// IsReviewSourced reports whether the question mirrors a review-queue item.
func (q Question) IsReviewSourced() bool {
	return q.SourceQueueItemID != nil || q.IsCurveball || q.IsSpacedFollowUp
}

// Clone returns a copy of the question under a fresh identity. The
// SourceQueueItemID back-reference survives so a later correct answer can be
// traced to the originating queue entry.
func (q Question) Clone() Question {
	copy := q
	copy.ID = uuid.New()
	if q.Options != nil {
		copy.Options = append([]string(nil), q.Options...)
	}
	if q.CorrectOptions != nil {
		copy.CorrectOptions = append([]int(nil), q.CorrectOptions...)
	}
	return copy
}

// Test is one ordered set of questions attached to a practice session.
type Test struct {
	ID        uuid.UUID
	IdeaID    uuid.UUID
	BookID    uuid.UUID
	Questions []Question
	CreatedAt time.Time
}

// QuestionResponse is a graded answer flowing back from the user.
type QuestionResponse struct {
	QuestionID        uuid.UUID
	IdeaID            uuid.UUID
	IsCorrect         bool
	QuestionType      QuestionType
	Difficulty        Difficulty
	Bloom             BloomCategory
	IsCurveball       bool
	IsSpacedFollowUp  bool
	SourceQueueItemID *uuid.UUID
}

// IsFresh reports whether the response answers a non-review question.
// Mistakes on review-sourced questions never re-enter the queue.
func (r QuestionResponse) IsFresh() bool {
	return r.SourceQueueItemID == nil && !r.IsCurveball && !r.IsSpacedFollowUp
}
