// Package assessment runs questionnaire sessions and scores them.
package assessment

import (
	"errors"
	"time"
)

// Sentinel errors.
var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrResultNotFound    = errors.New("result not found")
	ErrInvalidTransition = errors.New("invalid session transition")
	ErrIncomplete        = errors.New("required questions unanswered")
	ErrUnknownQuestion   = errors.New("unknown question")
	ErrInvalidOption     = errors.New("invalid option")
)

// Status is the lifecycle position of a session.
type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusAbandoned Status = "abandoned"
)

// Terminal reports whether no further transition is allowed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusAbandoned
}

// Answer is the response to one question.
type Answer struct {
	QuestionID string    `json:"questionId"`
	OptionID   string    `json:"optionId,omitempty"`
	OptionIDs  []string  `json:"optionIds,omitempty"`
	Value      float64   `json:"value"`
	AnsweredAt time.Time `json:"answeredAt"`
}

// Session is one run through a questionnaire. Answers stay in submission
// order; answering again replaces the earlier answer in place.
type Session struct {
	ID              string     `json:"id"`
	QuestionnaireID string     `json:"questionnaireId"`
	Language        string     `json:"language"`
	Answers         []Answer   `json:"answers"`
	CurrentIndex    int        `json:"currentIndex"`
	Status          Status     `json:"status"`
	StartedAt       time.Time  `json:"startedAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
	PausedAt        *time.Time `json:"pausedAt,omitempty"`
	ActiveSince     *time.Time `json:"activeSince,omitempty"`
	// TimeSpent counts active seconds only.
	TimeSpent int64  `json:"timeSpent"`
	ResultID  string `json:"resultId,omitempty"`
}

func (s Session) RecordID() string      { return s.ID }
func (s Session) RecordTime() time.Time { return s.UpdatedAt }
func (s Session) Finished() bool        { return s.Status.Terminal() }

// answer returns the index of the answer to questionID, or -1.
func (s *Session) answer(questionID string) int {
	for i, a := range s.Answers {
		if a.QuestionID == questionID {
			return i
		}
	}
	return -1
}

// Score is the outcome of one scoring rule.
type Score struct {
	RuleID             string   `json:"ruleId"`
	Raw                float64  `json:"raw"`
	Max                float64  `json:"max"`
	Percentage         float64  `json:"percentage"`
	Answered           int      `json:"answered"`
	Severity           string   `json:"severity,omitempty"`
	LabelKey           string   `json:"labelKey,omitempty"`
	DescriptionKey     string   `json:"descriptionKey,omitempty"`
	RecommendationKeys []string `json:"recommendationKeys,omitempty"`
}

// Result is the scored outcome of a completed session.
type Result struct {
	ID                   string    `json:"id"`
	SessionID            string    `json:"sessionId"`
	QuestionnaireID      string    `json:"questionnaireId"`
	QuestionnaireVersion string    `json:"questionnaireVersion"`
	Language             string    `json:"language"`
	Scores               []Score   `json:"scores"`
	CrisisFlag           bool      `json:"crisisFlag"`
	CompletedAt          time.Time `json:"completedAt"`
	TimeSpent            int64     `json:"timeSpent"`
}

func (r Result) RecordID() string      { return r.ID }
func (r Result) RecordTime() time.Time { return r.CompletedAt }
func (r Result) Finished() bool        { return true }

// Severity is the severity of the first scoring rule, if it matched a range.
func (r *Result) Severity() string {
	if len(r.Scores) == 0 {
		return ""
	}
	return r.Scores[0].Severity
}
