package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/bookdrill/internal/entity"
	"github.com/eslsoft/bookdrill/internal/usecase"
)

// Config holds the question generation provider configuration.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

type generator struct {
	client *openai.Client
	model  string
	logger *logrus.Logger
}

// NewQuestionGenerator constructs a chat-completion backed generator.
func NewQuestionGenerator(cfg Config, logger *logrus.Logger) usecase.QuestionGenerator {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	clientConfig.HTTPClient.Timeout = cfg.Timeout

	return &generator{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
		logger: logger,
	}
}

// generatedQuestion is the JSON shape the model is asked to emit.
type generatedQuestion struct {
	Type           string   `json:"type"`
	Difficulty     string   `json:"difficulty"`
	Bloom          string   `json:"bloom"`
	Prompt         string   `json:"prompt"`
	Options        []string `json:"options,omitempty"`
	CorrectOptions []int    `json:"correct_options,omitempty"`
	ExpectedAnswer string   `json:"expected_answer,omitempty"`
}

const freshSystemPrompt = `You write retrieval-practice questions for ideas from non-fiction books.
Produce a JSON object {"questions": [...]} where each question has fields:
type ("mcq", "msq" or "open_ended"), difficulty ("easy", "medium" or "hard"),
bloom (one of "recall", "reframe", "apply", "contrast", "critique",
"why_important", "when_use", "how_wield"), prompt, and for choice questions
options (4 strings) plus correct_options (zero-based indexes), or
expected_answer for open-ended ones.
Cover a spread of bloom categories. Include easy, medium and hard questions,
with at least one hard open-ended question. Return JSON only.`

const reviewSystemPrompt = `You rewrite practice questions so learners cannot answer from memory of the
exact wording. For each input item produce exactly one question probing the
same idea at the same difficulty and bloom category, with fresh wording.
Produce a JSON object {"questions": [...]} using the same schema as the input
items, in input order. Return JSON only.`

func (g *generator) GenerateFreshQuestions(ctx context.Context, idea usecase.IdeaRef) ([]entity.Question, error) {
	prompt := fmt.Sprintf("Book: %s\nIdea: %s\nWrite 8 questions for this idea.", idea.BookTitle, idea.Title)

	raw, err := g.complete(ctx, freshSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate fresh questions: %w", err)
	}
	parsed, err := parseQuestions(raw)
	if err != nil {
		return nil, fmt.Errorf("generate fresh questions: %w", err)
	}

	questions := lo.Map(parsed, func(q generatedQuestion, _ int) entity.Question {
		return q.toEntity(idea.ID)
	})
	g.logger.WithFields(logrus.Fields{
		"idea_id": idea.ID,
		"count":   len(questions),
	}).Debug("generated fresh questions")
	return questions, nil
}

func (g *generator) GenerateFromQueueItems(ctx context.Context, items []entity.ReviewQueueItem) ([]entity.Question, error) {
	if len(items) == 0 {
		return nil, nil
	}

	var sb strings.Builder
	for i, item := range items {
		fmt.Fprintf(&sb, "%d. idea: %s | type: %s | difficulty: %s | bloom: %s",
			i+1, item.IdeaTitle, item.QuestionType, item.Difficulty, item.BloomCategory)
		if item.OriginalQuestionText != "" {
			fmt.Fprintf(&sb, " | original: %s", item.OriginalQuestionText)
		}
		sb.WriteString("\n")
	}

	raw, err := g.complete(ctx, reviewSystemPrompt, sb.String())
	if err != nil {
		return nil, fmt.Errorf("generate review questions: %w", err)
	}
	parsed, err := parseQuestions(raw)
	if err != nil {
		return nil, fmt.Errorf("generate review questions: %w", err)
	}
	if len(parsed) != len(items) {
		return nil, fmt.Errorf("generate review questions: got %d questions for %d items", len(parsed), len(items))
	}

	questions := make([]entity.Question, 0, len(items))
	for i, item := range items {
		q := parsed[i].toEntity(item.IdeaID)
		// The queue item, not the model output, is authoritative for shape.
		q.Type = item.QuestionType
		q.Difficulty = item.Difficulty
		q.Bloom = item.BloomCategory
		q.IsCurveball = item.IsCurveball
		q.IsSpacedFollowUp = item.IsSpacedFollowUp
		q.SourceQueueItemID = lo.ToPtr(item.ID)
		questions = append(questions, q)
	}
	return questions, nil
}

func (g *generator) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty chat response")
	}
	return resp.Choices[0].Message.Content, nil
}

func parseQuestions(raw string) ([]generatedQuestion, error) {
	var payload struct {
		Questions []generatedQuestion `json:"questions"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("decode model output: %w", err)
	}
	if len(payload.Questions) == 0 {
		return nil, fmt.Errorf("model returned no questions")
	}
	return payload.Questions, nil
}

func (q generatedQuestion) toEntity(ideaID uuid.UUID) entity.Question {
	return entity.Question{
		ID:             uuid.New(),
		IdeaID:         ideaID,
		Type:           entity.ParseQuestionType(q.Type),
		Difficulty:     entity.ParseDifficulty(q.Difficulty),
		Bloom:          entity.ParseBloomCategory(q.Bloom),
		Prompt:         q.Prompt,
		Options:        q.Options,
		CorrectOptions: q.CorrectOptions,
		ExpectedAnswer: q.ExpectedAnswer,
	}
}
