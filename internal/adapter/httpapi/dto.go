package httpapi

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"github.com/eslsoft/bookdrill/internal/entity"
	"github.com/eslsoft/bookdrill/internal/usecase"
)

type sessionRequest struct {
	IdeaID      uuid.UUID          `json:"ideaId"`
	BookID      uuid.UUID          `json:"bookId"`
	IdeaTitle   string             `json:"ideaTitle"`
	BookTitle   string             `json:"bookTitle"`
	SessionType entity.SessionType `json:"sessionType"`
}

func sessionRequestFromQuery(c echo.Context) (sessionRequest, error) {
	var req sessionRequest
	bookID, err := uuid.Parse(c.QueryParam("bookId"))
	if err != nil {
		return req, entity.ErrInvalidBookID
	}
	req.BookID = bookID
	// Review sessions are book scoped; the idea ID stays nil for them.
	if raw := c.QueryParam("ideaId"); raw != "" {
		ideaID, err := uuid.Parse(raw)
		if err != nil {
			return req, entity.ErrInvalidIdeaID
		}
		req.IdeaID = ideaID
	}
	req.IdeaTitle = c.QueryParam("ideaTitle")
	req.BookTitle = c.QueryParam("bookTitle")
	req.SessionType = entity.ParseSessionType(c.QueryParam("sessionType"))
	return req, nil
}

type questionResponseDTO struct {
	QuestionID        uuid.UUID  `json:"questionId"`
	IdeaID            uuid.UUID  `json:"ideaId"`
	IsCorrect         bool       `json:"isCorrect"`
	QuestionType      string     `json:"questionType"`
	Difficulty        string     `json:"difficulty"`
	Bloom             string     `json:"bloom"`
	IsCurveball       bool       `json:"isCurveball"`
	IsSpacedFollowUp  bool       `json:"isSpacedFollowUp"`
	SourceQueueItemID *uuid.UUID `json:"sourceQueueItemId,omitempty"`
}

func (r questionResponseDTO) toEntity() entity.QuestionResponse {
	return entity.QuestionResponse{
		QuestionID:        r.QuestionID,
		IdeaID:            r.IdeaID,
		IsCorrect:         r.IsCorrect,
		QuestionType:      entity.ParseQuestionType(r.QuestionType),
		Difficulty:        entity.ParseDifficulty(r.Difficulty),
		Bloom:             entity.ParseBloomCategory(r.Bloom),
		IsCurveball:       r.IsCurveball,
		IsSpacedFollowUp:  r.IsSpacedFollowUp,
		SourceQueueItemID: r.SourceQueueItemID,
	}
}

type recordResponsesRequest struct {
	SessionID uuid.UUID             `json:"sessionId"`
	IdeaID    uuid.UUID             `json:"ideaId"`
	BookID    uuid.UUID             `json:"bookId"`
	IdeaTitle string                `json:"ideaTitle"`
	BookTitle string                `json:"bookTitle"`
	Responses []questionResponseDTO `json:"responses"`
}

type reviewItemDTO struct {
	ID                   uuid.UUID  `json:"id"`
	IdeaID               uuid.UUID  `json:"ideaId"`
	IdeaTitle            string     `json:"ideaTitle"`
	BookID               *uuid.UUID `json:"bookId,omitempty"`
	BookTitle            string     `json:"bookTitle"`
	QuestionType         string     `json:"questionType"`
	Difficulty           string     `json:"difficulty"`
	BloomCategory        string     `json:"bloomCategory"`
	OriginalQuestionText string     `json:"originalQuestionText,omitempty"`
	IsCurveball          bool       `json:"isCurveball"`
	IsSpacedFollowUp     bool       `json:"isSpacedFollowUp"`
	AddedDate            time.Time  `json:"addedDate"`
}

func toReviewItemDTO(item entity.ReviewQueueItem, _ int) reviewItemDTO {
	return reviewItemDTO{
		ID:                   item.ID,
		IdeaID:               item.IdeaID,
		IdeaTitle:            item.IdeaTitle,
		BookID:               item.BookID,
		BookTitle:            item.BookTitle,
		QuestionType:         string(item.QuestionType),
		Difficulty:           string(item.Difficulty),
		BloomCategory:        string(item.BloomCategory),
		OriginalQuestionText: item.OriginalQuestionText,
		IsCurveball:          item.IsCurveball,
		IsSpacedFollowUp:     item.IsSpacedFollowUp,
		AddedDate:            item.AddedDate,
	}
}

type dailyReviewItemsResponse struct {
	MCQItems       []reviewItemDTO `json:"mcqItems"`
	OpenEndedItems []reviewItemDTO `json:"openEndedItems"`
}

type ideaMasteryDTO struct {
	IdeaID            uuid.UUID `json:"ideaId"`
	MasteryLevel      int       `json:"masteryLevel"`
	CoveredCategories int       `json:"coveredCategories"`
	QuestionsSeen     int       `json:"questionsSeen"`
	QuestionsCorrect  int       `json:"questionsCorrect"`
}

type bookMasteryResponse struct {
	Ideas []ideaMasteryDTO `json:"ideas"`
}

type questionDTO struct {
	ID                uuid.UUID  `json:"id"`
	IdeaID            uuid.UUID  `json:"ideaId"`
	Type              string     `json:"type"`
	Difficulty        string     `json:"difficulty"`
	Bloom             string     `json:"bloom"`
	Prompt            string     `json:"prompt"`
	Options           []string   `json:"options,omitempty"`
	CorrectOptions    []int      `json:"correctOptions,omitempty"`
	ExpectedAnswer    string     `json:"expectedAnswer,omitempty"`
	OrderIndex        int        `json:"orderIndex"`
	IsCurveball       bool       `json:"isCurveball"`
	IsSpacedFollowUp  bool       `json:"isSpacedFollowUp"`
	SourceQueueItemID *uuid.UUID `json:"sourceQueueItemId,omitempty"`
}

type testDTO struct {
	ID        uuid.UUID     `json:"id"`
	IdeaID    uuid.UUID     `json:"ideaId"`
	BookID    uuid.UUID     `json:"bookId"`
	Questions []questionDTO `json:"questions"`
	CreatedAt time.Time     `json:"createdAt"`
}

type sessionDTO struct {
	ID            uuid.UUID  `json:"id"`
	IdeaID        uuid.UUID  `json:"ideaId"`
	BookID        uuid.UUID  `json:"bookId"`
	SessionType   string     `json:"sessionType"`
	Status        string     `json:"status"`
	ErrorMessage  string     `json:"errorMessage,omitempty"`
	ConfigVersion int        `json:"configVersion"`
	TestID        *uuid.UUID `json:"testId,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

type sessionBundleDTO struct {
	Session sessionDTO `json:"session"`
	Test    *testDTO   `json:"test,omitempty"`
}

func toSessionBundleDTO(bundle *usecase.SessionBundle) sessionBundleDTO {
	out := sessionBundleDTO{
		Session: sessionDTO{
			ID:            bundle.Session.ID,
			IdeaID:        bundle.Session.IdeaID,
			BookID:        bundle.Session.BookID,
			SessionType:   string(bundle.Session.SessionType),
			Status:        string(bundle.Session.Status),
			ErrorMessage:  bundle.Session.ErrorMessage,
			ConfigVersion: bundle.Session.ConfigVersion,
			TestID:        bundle.Session.TestID,
			CreatedAt:     bundle.Session.CreatedAt,
			UpdatedAt:     bundle.Session.UpdatedAt,
		},
	}
	if bundle.Test != nil {
		out.Test = &testDTO{
			ID:     bundle.Test.ID,
			IdeaID: bundle.Test.IdeaID,
			BookID: bundle.Test.BookID,
			Questions: lo.Map(bundle.Test.Questions, func(q entity.Question, _ int) questionDTO {
				return questionDTO{
					ID:                q.ID,
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
			}),
			CreatedAt: bundle.Test.CreatedAt,
		}
	}
	return out
}
