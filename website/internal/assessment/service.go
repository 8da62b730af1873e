package assessment

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	infralogger "github.com/oe/sunrain-sub002/infrastructure/logger"
	"github.com/oe/sunrain-sub002/website/internal/questionnaire"
	"github.com/oe/sunrain-sub002/website/internal/storage"
)

// Collection names in the backend.
const (
	SessionsCollection = "assessment_sessions"
	ResultsCollection  = "assessment_results"
)

// Questionnaires looks up questionnaires by id.
type Questionnaires interface {
	Get(id string) (*questionnaire.Questionnaire, error)
}

// Observer is notified of session lifecycle events.
type Observer interface {
	SessionStarted(questionnaireID string)
	SessionCompleted(questionnaireID, severity string, crisis bool)
	SessionAbandoned(questionnaireID string)
}

type nopObserver struct{}

func (nopObserver) SessionStarted(string) {}

func (nopObserver) SessionCompleted(string, string, bool) {}

func (nopObserver) SessionAbandoned(string) {}

// AnswerInput selects options for one question. Single choice and scale
// questions take OptionID; multi-choice questions take OptionIDs.
type AnswerInput struct {
	QuestionID string   `json:"questionId" binding:"required"`
	OptionID   string   `json:"optionId"`
	OptionIDs  []string `json:"optionIds"`
}

// Service runs assessment sessions.
type Service struct {
	bank     Questionnaires
	sessions *storage.Collection[Session]
	results  *storage.Collection[Result]
	logger   infralogger.Logger
	observer Observer
	now      func() time.Time
	newID    func() string
}

// Config wires a Service.
type Config struct {
	Store          *storage.SecureStore
	Questionnaires Questionnaires
	Logger         infralogger.Logger
	Observer       Observer
	Sessions       storage.CollectionOptions
	Results        storage.CollectionOptions
	Now            func() time.Time
}

// NewService builds a Service over the two store collections.
func NewService(cfg Config) *Service {
	s := &Service{
		bank:     cfg.Questionnaires,
		sessions: storage.NewCollection[Session](cfg.Store, SessionsCollection, cfg.Sessions),
		results:  storage.NewCollection[Result](cfg.Store, ResultsCollection, cfg.Results),
		logger:   cfg.Logger,
		observer: cfg.Observer,
		now:      cfg.Now,
		newID:    uuid.NewString,
	}
	if s.observer == nil {
		s.observer = nopObserver{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Start opens an active session.
func (s *Service) Start(ctx context.Context, questionnaireID, language string) (*Session, error) {
	if _, err := s.bank.Get(questionnaireID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	session := Session{
		ID:              s.newID(),
		QuestionnaireID: questionnaireID,
		Language:        language,
		Answers:         []Answer{},
		Status:          StatusActive,
		StartedAt:       now,
		UpdatedAt:       now,
		ActiveSince:     &now,
	}

	err := s.sessions.Update(ctx, func(items []Session) ([]Session, error) {
		return append(items, session), nil
	})
	if err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.observer.SessionStarted(questionnaireID)
	s.logger.Info("Assessment session started",
		infralogger.String("session_id", session.ID),
		infralogger.String("questionnaire_id", questionnaireID),
		infralogger.String("language", language),
	)
	return &session, nil
}

// Get returns a session.
func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	items, err := s.sessions.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	for i := range items {
		if items[i].ID == id {
			return &items[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
}

// Sessions returns every stored session.
func (s *Service) Sessions(ctx context.Context) ([]Session, error) {
	return s.sessions.Load(ctx)
}

// mutate applies fn to the session with id under the collection lock.
func (s *Service) mutate(ctx context.Context, id string, fn func(*Session) error) (*Session, error) {
	var updated Session
	err := s.sessions.Update(ctx, func(items []Session) ([]Session, error) {
		idx := slices.IndexFunc(items, func(x Session) bool { return x.ID == id })
		if idx < 0 {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		}
		if err := fn(&items[idx]); err != nil {
			return nil, err
		}
		items[idx].UpdatedAt = s.now().UTC()
		updated = items[idx]
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Answer records an answer while the session is active.
func (s *Service) Answer(ctx context.Context, id string, in AnswerInput) (*Session, error) {
	return s.mutate(ctx, id, func(session *Session) error {
		if session.Status != StatusActive {
			return fmt.Errorf("%w: cannot answer a %s session", ErrInvalidTransition, session.Status)
		}
		q, err := s.bank.Get(session.QuestionnaireID)
		if err != nil {
			return err
		}
		question, _, ok := q.Question(in.QuestionID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownQuestion, in.QuestionID)
		}

		answer, err := buildAnswer(question, in)
		if err != nil {
			return err
		}
		answer.AnsweredAt = s.now().UTC()

		if idx := session.answer(in.QuestionID); idx >= 0 {
			session.Answers[idx] = answer
		} else {
			session.Answers = append(session.Answers, answer)
		}
		session.CurrentIndex = nextUnanswered(q, session)
		return nil
	})
}

func buildAnswer(question *questionnaire.Question, in AnswerInput) (Answer, error) {
	if question.Type != questionnaire.MultiChoice {
		if in.OptionID == "" || len(in.OptionIDs) > 0 {
			return Answer{}, fmt.Errorf("%w: question %s takes exactly one option", ErrInvalidOption, question.ID)
		}
		opt, ok := question.Option(in.OptionID)
		if !ok {
			return Answer{}, fmt.Errorf("%w: %s", ErrInvalidOption, in.OptionID)
		}
		return Answer{QuestionID: question.ID, OptionID: opt.ID, Value: opt.Value}, nil
	}

	ids := in.OptionIDs
	if in.OptionID != "" {
		ids = append([]string{in.OptionID}, ids...)
	}
	if len(ids) == 0 {
		return Answer{}, fmt.Errorf("%w: question %s needs at least one option", ErrInvalidOption, question.ID)
	}

	seen := make(map[string]bool, len(ids))
	answer := Answer{QuestionID: question.ID}
	for _, optID := range ids {
		if seen[optID] {
			continue
		}
		opt, ok := question.Option(optID)
		if !ok {
			return Answer{}, fmt.Errorf("%w: %s", ErrInvalidOption, optID)
		}
		seen[optID] = true
		answer.OptionIDs = append(answer.OptionIDs, opt.ID)
		answer.Value += opt.Value
	}
	return answer, nil
}

// nextUnanswered is the index of the first unanswered question, or the
// question count when every question has an answer.
func nextUnanswered(q *questionnaire.Questionnaire, session *Session) int {
	for i, question := range q.Questions {
		if session.answer(question.ID) < 0 {
			return i
		}
	}
	return len(q.Questions)
}

// accrue adds the active stretch ending at now to TimeSpent.
func accrue(session *Session, now time.Time) {
	if session.ActiveSince != nil {
		session.TimeSpent += int64(now.Sub(*session.ActiveSince).Seconds())
		session.ActiveSince = nil
	}
}

// Pause moves an active session to paused.
func (s *Service) Pause(ctx context.Context, id string) (*Session, error) {
	return s.mutate(ctx, id, func(session *Session) error {
		if session.Status != StatusActive {
			return fmt.Errorf("%w: cannot pause a %s session", ErrInvalidTransition, session.Status)
		}
		now := s.now().UTC()
		accrue(session, now)
		session.Status = StatusPaused
		session.PausedAt = &now
		return nil
	})
}

// Resume moves a paused session back to active.
func (s *Service) Resume(ctx context.Context, id string) (*Session, error) {
	return s.mutate(ctx, id, func(session *Session) error {
		if session.Status != StatusPaused {
			return fmt.Errorf("%w: cannot resume a %s session", ErrInvalidTransition, session.Status)
		}
		now := s.now().UTC()
		session.Status = StatusActive
		session.PausedAt = nil
		session.ActiveSince = &now
		return nil
	})
}

// Abandon ends an active or paused session without a result.
func (s *Service) Abandon(ctx context.Context, id string) (*Session, error) {
	session, err := s.mutate(ctx, id, func(session *Session) error {
		if session.Status.Terminal() {
			return fmt.Errorf("%w: cannot abandon a %s session", ErrInvalidTransition, session.Status)
		}
		accrue(session, s.now().UTC())
		session.Status = StatusAbandoned
		session.PausedAt = nil
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.observer.SessionAbandoned(session.QuestionnaireID)
	return session, nil
}

// Complete scores an active session whose required questions are all
// answered, stores the result and closes the session.
func (s *Service) Complete(ctx context.Context, id string) (*Result, error) {
	var result Result
	session, err := s.mutate(ctx, id, func(session *Session) error {
		if session.Status != StatusActive {
			return fmt.Errorf("%w: cannot complete a %s session", ErrInvalidTransition, session.Status)
		}
		q, err := s.bank.Get(session.QuestionnaireID)
		if err != nil {
			return err
		}
		if missing := missingRequired(q, session); len(missing) > 0 {
			return fmt.Errorf("%w: %v", ErrIncomplete, missing)
		}

		now := s.now().UTC()
		accrue(session, now)

		scores, flagged := ScoreAnswers(q, session.Answers)
		result = Result{
			ID:                   s.newID(),
			SessionID:            session.ID,
			QuestionnaireID:      q.ID,
			QuestionnaireVersion: q.Version,
			Language:             session.Language,
			Scores:               scores,
			CrisisFlag:           flagged,
			CompletedAt:          now,
			TimeSpent:            session.TimeSpent,
		}

		// Written before the session flips so a failed save leaves it active.
		if err = s.results.Update(ctx, func(items []Result) ([]Result, error) {
			return append(items, result), nil
		}); err != nil {
			return fmt.Errorf("save result: %w", err)
		}

		session.Status = StatusCompleted
		session.CompletedAt = &now
		session.ResultID = result.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.observer.SessionCompleted(session.QuestionnaireID, result.Severity(), result.CrisisFlag)
	fields := []infralogger.Field{
		infralogger.String("session_id", session.ID),
		infralogger.String("result_id", result.ID),
		infralogger.String("questionnaire_id", session.QuestionnaireID),
		infralogger.String("severity", result.Severity()),
	}
	if result.CrisisFlag {
		s.logger.Warn("Assessment completed with crisis flag", fields...)
	} else {
		s.logger.Info("Assessment completed", fields...)
	}
	return &result, nil
}

func missingRequired(q *questionnaire.Questionnaire, session *Session) []string {
	var missing []string
	for _, question := range q.Questions {
		if question.Required && session.answer(question.ID) < 0 {
			missing = append(missing, question.ID)
		}
	}
	return missing
}

// Results returns stored results, newest first, optionally for one questionnaire.
func (s *Service) Results(ctx context.Context, questionnaireID string) ([]Result, error) {
	items, err := s.results.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load results: %w", err)
	}
	out := items[:0:0]
	for _, r := range items {
		if questionnaireID == "" || r.QuestionnaireID == questionnaireID {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(a, b Result) int { return b.CompletedAt.Compare(a.CompletedAt) })
	return out, nil
}

// Result returns one stored result.
func (s *Service) Result(ctx context.Context, id string) (*Result, error) {
	items, err := s.results.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load results: %w", err)
	}
	for i := range items {
		if items[i].ID == id {
			return &items[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrResultNotFound, id)
}
