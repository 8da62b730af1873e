// Package questionnaire loads scored questionnaires such as PHQ-9 and GAD-7.
package questionnaire

import (
	"errors"
	"fmt"
)

// QuestionType is how a question is answered.
type QuestionType string

const (
	SingleChoice QuestionType = "single_choice"
	Scale        QuestionType = "scale"
	MultiChoice  QuestionType = "multi_choice"
)

// ScoringMethod combines answer values for a rule.
type ScoringMethod string

const (
	MethodSum     ScoringMethod = "sum"
	MethodAverage ScoringMethod = "average"
)

// Sentinel errors.
var (
	ErrNotFound = errors.New("questionnaire not found")
	ErrInvalid  = errors.New("invalid questionnaire")
)

// Option is one selectable answer.
type Option struct {
	ID       string  `json:"id"`
	LabelKey string  `json:"labelKey"`
	Value    float64 `json:"value"`
}

// Question is one item of a questionnaire.
type Question struct {
	ID            string       `json:"id"`
	TextKey       string       `json:"textKey"`
	Type          QuestionType `json:"type"`
	Options       []Option     `json:"options"`
	Required      bool         `json:"required"`
	ReverseScored bool         `json:"reverseScored,omitempty"`
	Subscale      string       `json:"subscale,omitempty"`
}

// Option returns the option with id.
func (q *Question) Option(id string) (Option, bool) {
	for _, o := range q.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// ValueRange is the lowest and highest option value.
func (q *Question) ValueRange() (lo, hi float64) {
	for i, o := range q.Options {
		if i == 0 || o.Value < lo {
			lo = o.Value
		}
		if i == 0 || o.Value > hi {
			hi = o.Value
		}
	}
	return lo, hi
}

// ScoringRule scores a subset of questions. Empty QuestionIDs means all.
type ScoringRule struct {
	ID          string        `json:"id"`
	Method      ScoringMethod `json:"method"`
	QuestionIDs []string      `json:"questionIds,omitempty"`
	MaxScore    float64       `json:"maxScore,omitempty"`
}

// Interpretation maps an inclusive score range of a rule to a severity.
type Interpretation struct {
	RuleID             string   `json:"ruleId"`
	Min                float64  `json:"min"`
	Max                float64  `json:"max"`
	Severity           string   `json:"severity"`
	LabelKey           string   `json:"labelKey"`
	DescriptionKey     string   `json:"descriptionKey,omitempty"`
	RecommendationKeys []string `json:"recommendationKeys,omitempty"`
}

// Contains reports whether score falls in [Min, Max].
func (i Interpretation) Contains(score float64) bool {
	return score >= i.Min && score <= i.Max
}

// Questionnaire is a scored instrument. Text fields are translation keys.
type Questionnaire struct {
	ID                string           `json:"id"`
	Version           string           `json:"version"`
	TitleKey          string           `json:"titleKey"`
	DescriptionKey    string           `json:"descriptionKey"`
	InstructionsKey   string           `json:"instructionsKey,omitempty"`
	Category          string           `json:"category,omitempty"`
	EstimatedMinutes  int              `json:"estimatedMinutes,omitempty"`
	Questions         []Question       `json:"questions"`
	Scoring           []ScoringRule    `json:"scoring"`
	Interpretations   []Interpretation `json:"interpretations"`
	CrisisQuestionIDs []string         `json:"crisisQuestionIds,omitempty"`
	CrisisThreshold   float64          `json:"crisisThreshold,omitempty"`
}

// Question returns the question with id and its index.
func (q *Questionnaire) Question(id string) (*Question, int, bool) {
	for i := range q.Questions {
		if q.Questions[i].ID == id {
			return &q.Questions[i], i, true
		}
	}
	return nil, -1, false
}

// Validate checks the structural rules the scoring engine relies on.
func (q *Questionnaire) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalid)
	}
	if len(q.Questions) == 0 {
		return fmt.Errorf("%w: %s has no questions", ErrInvalid, q.ID)
	}

	seen := make(map[string]bool, len(q.Questions))
	for _, question := range q.Questions {
		if question.ID == "" || seen[question.ID] {
			return fmt.Errorf("%w: %s has a missing or duplicate question id %q", ErrInvalid, q.ID, question.ID)
		}
		seen[question.ID] = true

		switch question.Type {
		case SingleChoice, Scale, MultiChoice:
		default:
			return fmt.Errorf("%w: %s question %s has unknown type %q", ErrInvalid, q.ID, question.ID, question.Type)
		}
		if len(question.Options) == 0 {
			return fmt.Errorf("%w: %s question %s has no options", ErrInvalid, q.ID, question.ID)
		}
	}

	rules := make(map[string]bool, len(q.Scoring))
	for _, rule := range q.Scoring {
		if rule.Method != MethodSum && rule.Method != MethodAverage {
			return fmt.Errorf("%w: %s rule %s has unknown method %q", ErrInvalid, q.ID, rule.ID, rule.Method)
		}
		for _, id := range rule.QuestionIDs {
			if !seen[id] {
				return fmt.Errorf("%w: %s rule %s references unknown question %s", ErrInvalid, q.ID, rule.ID, id)
			}
		}
		rules[rule.ID] = true
	}

	for _, interp := range q.Interpretations {
		if !rules[interp.RuleID] {
			return fmt.Errorf("%w: %s interpretation %s references unknown rule %s", ErrInvalid, q.ID, interp.Severity, interp.RuleID)
		}
		if interp.Min > interp.Max {
			return fmt.Errorf("%w: %s interpretation %s has min > max", ErrInvalid, q.ID, interp.Severity)
		}
	}

	for _, id := range q.CrisisQuestionIDs {
		if !seen[id] {
			return fmt.Errorf("%w: %s crisis question %s does not exist", ErrInvalid, q.ID, id)
		}
	}
	return nil
}
