package questionnaire

// Localizer resolves a translation key.
type Localizer func(key string) string

// LocalizedOption is an Option with its label resolved.
type LocalizedOption struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// LocalizedQuestion is a Question with text resolved.
type LocalizedQuestion struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	Type     QuestionType      `json:"type"`
	Required bool              `json:"required"`
	Options  []LocalizedOption `json:"options"`
}

// Localized is the client view of a questionnaire.
type Localized struct {
	ID               string              `json:"id"`
	Version          string              `json:"version"`
	Language         string              `json:"language"`
	Title            string              `json:"title"`
	Description      string              `json:"description"`
	Instructions     string              `json:"instructions,omitempty"`
	Category         string              `json:"category,omitempty"`
	EstimatedMinutes int                 `json:"estimatedMinutes,omitempty"`
	Questions        []LocalizedQuestion `json:"questions"`
}

// Summary is the list view of a questionnaire.
type Summary struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	Category         string `json:"category,omitempty"`
	QuestionCount    int    `json:"questionCount"`
	EstimatedMinutes int    `json:"estimatedMinutes,omitempty"`
}

// Localize resolves every key of q through t.
func Localize(q *Questionnaire, lang string, t Localizer) Localized {
	out := Localized{
		ID:               q.ID,
		Version:          q.Version,
		Language:         lang,
		Title:            t(q.TitleKey),
		Description:      t(q.DescriptionKey),
		Category:         q.Category,
		EstimatedMinutes: q.EstimatedMinutes,
		Questions:        make([]LocalizedQuestion, 0, len(q.Questions)),
	}
	if q.InstructionsKey != "" {
		out.Instructions = t(q.InstructionsKey)
	}

	for _, question := range q.Questions {
		lq := LocalizedQuestion{
			ID:       question.ID,
			Text:     t(question.TextKey),
			Type:     question.Type,
			Required: question.Required,
			Options:  make([]LocalizedOption, 0, len(question.Options)),
		}
		for _, o := range question.Options {
			lq.Options = append(lq.Options, LocalizedOption{ID: o.ID, Label: t(o.LabelKey), Value: o.Value})
		}
		out.Questions = append(out.Questions, lq)
	}
	return out
}

// Summarize returns the list view of q.
func Summarize(q *Questionnaire, t Localizer) Summary {
	return Summary{
		ID:               q.ID,
		Title:            t(q.TitleKey),
		Description:      t(q.DescriptionKey),
		Category:         q.Category,
		QuestionCount:    len(q.Questions),
		EstimatedMinutes: q.EstimatedMinutes,
	}
}
