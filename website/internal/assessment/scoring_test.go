package assessment_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infralogger "github.com/oe/sunrain-sub002/infrastructure/logger"
	"github.com/oe/sunrain-sub002/website/internal/assessment"
	"github.com/oe/sunrain-sub002/website/internal/questionnaire"
)

func shippedBank(t *testing.T) *questionnaire.Bank {
	t.Helper()
	bank := questionnaire.NewBank(filepath.Join("..", "..", "content", "questionnaires"), infralogger.NewNop())
	require.NoError(t, bank.Reload())
	return bank
}

func uniform(q *questionnaire.Questionnaire, value float64) []assessment.Answer {
	answers := make([]assessment.Answer, 0, len(q.Questions))
	for _, question := range q.Questions {
		answers = append(answers, assessment.Answer{QuestionID: question.ID, Value: value})
	}
	return answers
}

func TestScoreAnswers_PHQ9Ranges(t *testing.T) {
	phq, err := shippedBank(t).Get("phq9")
	require.NoError(t, err)

	tests := []struct {
		name     string
		values   []float64
		raw      float64
		severity string
		crisis   bool
	}{
		{name: "all zero", values: []float64{0, 0, 0, 0, 0, 0, 0, 0, 0}, raw: 0, severity: "minimal"},
		{name: "upper bound of minimal", values: []float64{1, 1, 1, 1, 0, 0, 0, 0, 0}, raw: 4, severity: "minimal"},
		{name: "lower bound of mild", values: []float64{1, 1, 1, 1, 1, 0, 0, 0, 0}, raw: 5, severity: "mild"},
		{name: "moderate", values: []float64{2, 2, 2, 2, 2, 0, 0, 0, 0}, raw: 10, severity: "moderate"},
		{name: "severe with crisis item", values: []float64{3, 3, 3, 3, 3, 3, 3, 3, 3}, raw: 27, severity: "severe", crisis: true},
		{name: "crisis item alone", values: []float64{0, 0, 0, 0, 0, 0, 0, 0, 1}, raw: 1, severity: "minimal", crisis: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			answers := make([]assessment.Answer, 0, len(tc.values))
			for i, v := range tc.values {
				answers = append(answers, assessment.Answer{QuestionID: phq.Questions[i].ID, Value: v})
			}

			scores, crisis := assessment.ScoreAnswers(phq, answers)
			require.Len(t, scores, 1)
			assert.InDelta(t, tc.raw, scores[0].Raw, 0)
			assert.InDelta(t, 27.0, scores[0].Max, 0)
			assert.Equal(t, tc.severity, scores[0].Severity)
			assert.Equal(t, tc.crisis, crisis)
		})
	}
}

func TestScoreAnswers_Deterministic(t *testing.T) {
	gad, err := shippedBank(t).Get("gad7")
	require.NoError(t, err)

	answers := uniform(gad, 2)
	first, _ := assessment.ScoreAnswers(gad, answers)
	second, _ := assessment.ScoreAnswers(gad, answers)
	assert.Equal(t, first, second)
	assert.InDelta(t, 14.0, first[0].Raw, 0)
	assert.InDelta(t, 66.7, first[0].Percentage, 0.001)
	assert.Equal(t, "moderate", first[0].Severity)
}

func TestScoreAnswers_ReverseScored(t *testing.T) {
	pss, err := shippedBank(t).Get("pss4")
	require.NoError(t, err)

	// Items 2 and 3 are reverse scored on a 0-4 scale: 4 - 4 = 0 each.
	scores, _ := assessment.ScoreAnswers(pss, uniform(pss, 4))
	assert.InDelta(t, 8.0, scores[0].Raw, 0)
	assert.Equal(t, "moderate", scores[0].Severity)

	scores, _ = assessment.ScoreAnswers(pss, uniform(pss, 0))
	assert.InDelta(t, 8.0, scores[0].Raw, 0)
}

func TestScoreAnswers_AverageAndUnmatched(t *testing.T) {
	options := []questionnaire.Option{{ID: "a", Value: 1}, {ID: "b", Value: 5}}
	q := &questionnaire.Questionnaire{
		ID: "mood",
		Questions: []questionnaire.Question{
			{ID: "q1", Type: questionnaire.Scale, Options: options},
			{ID: "q2", Type: questionnaire.Scale, Options: options},
			{ID: "q3", Type: questionnaire.Scale, Options: options},
		},
		Scoring: []questionnaire.ScoringRule{
			{ID: "avg", Method: questionnaire.MethodAverage, QuestionIDs: []string{"q1", "q2"}},
			{ID: "sum", Method: questionnaire.MethodSum},
		},
		Interpretations: []questionnaire.Interpretation{
			{RuleID: "avg", Min: 1, Max: 2.5, Severity: "low"},
			{RuleID: "avg", Min: 2.51, Max: 5, Severity: "high"},
			{RuleID: "sum", Min: 100, Max: 200, Severity: "never"},
		},
	}

	answers := []assessment.Answer{
		{QuestionID: "q1", Value: 1},
		{QuestionID: "q2", Value: 4},
		{QuestionID: "q3", Value: 5},
	}
	scores, crisis := assessment.ScoreAnswers(q, answers)
	require.Len(t, scores, 2)
	assert.False(t, crisis)

	assert.InDelta(t, 2.5, scores[0].Raw, 0)
	assert.InDelta(t, 5.0, scores[0].Max, 0)
	assert.Equal(t, "low", scores[0].Severity)
	assert.Equal(t, 2, scores[0].Answered)

	assert.InDelta(t, 10.0, scores[1].Raw, 0)
	assert.InDelta(t, 15.0, scores[1].Max, 0)
	assert.Empty(t, scores[1].Severity, "scores outside every range have no interpretation")
}

func TestScoreAnswers_MultiChoiceMax(t *testing.T) {
	q := &questionnaire.Questionnaire{
		ID: "coping",
		Questions: []questionnaire.Question{{
			ID:   "q1",
			Type: questionnaire.MultiChoice,
			Options: []questionnaire.Option{
				{ID: "walk", Value: 1}, {ID: "talk", Value: 2}, {ID: "none", Value: 0},
			},
		}},
		Scoring: []questionnaire.ScoringRule{{ID: "total", Method: questionnaire.MethodSum}},
	}

	scores, _ := assessment.ScoreAnswers(q, []assessment.Answer{{QuestionID: "q1", Value: 3}})
	assert.InDelta(t, 3.0, scores[0].Max, 0)
	assert.InDelta(t, 100.0, scores[0].Percentage, 0)
}
