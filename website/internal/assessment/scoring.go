package assessment

import (
	"math"

	"github.com/oe/sunrain-sub002/website/internal/questionnaire"
)

// ScoreAnswers applies every scoring rule of q to answers and reports
// whether a crisis question crossed its threshold. It is deterministic.
func ScoreAnswers(q *questionnaire.Questionnaire, answers []Answer) ([]Score, bool) {
	byQuestion := make(map[string]Answer, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a
	}

	scores := make([]Score, 0, len(q.Scoring))
	for _, rule := range q.Scoring {
		scores = append(scores, scoreRule(q, rule, byQuestion))
	}
	return scores, crisis(q, byQuestion)
}

func scoreRule(q *questionnaire.Questionnaire, rule questionnaire.ScoringRule, answers map[string]Answer) Score {
	ids := rule.QuestionIDs
	if len(ids) == 0 {
		ids = make([]string, 0, len(q.Questions))
		for _, question := range q.Questions {
			ids = append(ids, question.ID)
		}
	}

	var raw, maxSum, maxItem float64
	answered := 0
	for _, id := range ids {
		question, _, ok := q.Question(id)
		if !ok {
			continue
		}
		top := maxValue(question)
		maxSum += top
		maxItem = math.Max(maxItem, top)

		a, ok := answers[id]
		if !ok {
			continue
		}
		v := a.Value
		if question.ReverseScored {
			lo, hi := question.ValueRange()
			v = lo + hi - v
		}
		raw += v
		answered++
	}

	maxScore := maxSum
	if rule.Method == questionnaire.MethodAverage {
		maxScore = maxItem
		if answered > 0 {
			raw = round(raw/float64(answered), 2)
		}
	}
	if rule.MaxScore > 0 {
		maxScore = rule.MaxScore
	}

	score := Score{RuleID: rule.ID, Raw: raw, Max: maxScore, Answered: answered}
	if maxScore > 0 {
		score.Percentage = round(raw/maxScore*100, 1)
	}

	if interp, ok := interpret(q, rule.ID, raw); ok {
		score.Severity = interp.Severity
		score.LabelKey = interp.LabelKey
		score.DescriptionKey = interp.DescriptionKey
		score.RecommendationKeys = interp.RecommendationKeys
	}
	return score
}

// interpret finds the first range of ruleID containing score. Bounds are inclusive.
func interpret(q *questionnaire.Questionnaire, ruleID string, score float64) (questionnaire.Interpretation, bool) {
	for _, interp := range q.Interpretations {
		if interp.RuleID == ruleID && interp.Contains(score) {
			return interp, true
		}
	}
	return questionnaire.Interpretation{}, false
}

// crisis is true when any crisis question is answered at or above the
// threshold. A zero threshold flags any non-zero answer.
func crisis(q *questionnaire.Questionnaire, answers map[string]Answer) bool {
	for _, id := range q.CrisisQuestionIDs {
		a, ok := answers[id]
		if !ok {
			continue
		}
		if a.Value > 0 && a.Value >= q.CrisisThreshold {
			return true
		}
	}
	return false
}

// maxValue is the highest achievable value of a question. Multi-choice
// questions can combine every positive option.
func maxValue(question *questionnaire.Question) float64 {
	if question.Type != questionnaire.MultiChoice {
		_, hi := question.ValueRange()
		return hi
	}
	var total float64
	for _, o := range question.Options {
		if o.Value > 0 {
			total += o.Value
		}
	}
	return total
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
