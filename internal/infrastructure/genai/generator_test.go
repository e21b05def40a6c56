package genai

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/eslsoft/bookdrill/internal/entity"
)

func TestParseQuestions(t *testing.T) {
	raw := `{"questions":[
		{"type":"mcq","difficulty":"easy","bloom":"recall","prompt":"Q1","options":["a","b","c","d"],"correct_options":[1]},
		{"type":"open_ended","difficulty":"hard","bloom":"how_wield","prompt":"Q2","expected_answer":"because"}
	]}`

	parsed, err := parseQuestions(raw)
	require.NoError(t, err)
	require.Len(t, parsed, 2)

	ideaID := uuid.New()
	q := parsed[0].toEntity(ideaID)
	require.Equal(t, entity.QuestionTypeMCQ, q.Type)
	require.Equal(t, entity.DifficultyEasy, q.Difficulty)
	require.Equal(t, entity.BloomRecall, q.Bloom)
	require.Equal(t, ideaID, q.IdeaID)
	require.NotEqual(t, uuid.Nil, q.ID)
	require.Equal(t, []int{1}, q.CorrectOptions)

	open := parsed[1].toEntity(ideaID)
	require.Equal(t, entity.QuestionTypeOpenEnded, open.Type)
	require.Equal(t, "because", open.ExpectedAnswer)
}

func TestParseQuestionsRejectsEmpty(t *testing.T) {
	_, err := parseQuestions(`{"questions":[]}`)
	require.Error(t, err)

	_, err = parseQuestions(`not json`)
	require.Error(t, err)
}
