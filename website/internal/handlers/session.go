package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	infralogger "github.com/oe/sunrain-sub002/infrastructure/logger"
	"github.com/oe/sunrain-sub002/website/internal/assessment"
	"github.com/oe/sunrain-sub002/website/internal/i18n"
)

// StartRequest opens a session. An empty language is negotiated from the
// request headers.
type StartRequest struct {
	QuestionnaireID string `binding:"required" json:"questionnaireId"`
	Language        string `json:"language"`
}

type SessionHandler struct {
	service    *assessment.Service
	manager    *i18n.Manager
	negotiator *i18n.Negotiator
	logger     infralogger.Logger
}

func NewSessionHandler(
	service *assessment.Service,
	manager *i18n.Manager,
	negotiator *i18n.Negotiator,
	log infralogger.Logger,
) *SessionHandler {
	return &SessionHandler{
		service:    service,
		manager:    manager,
		negotiator: negotiator,
		logger:     log,
	}
}

func (h *SessionHandler) Create(c *gin.Context) {
	var req StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	lang := h.negotiator.Negotiate(req.Language, c.GetHeader("Accept-Language"))
	session, err := h.service.Start(c.Request.Context(), req.QuestionnaireID, lang)
	if err != nil {
		respondError(c, h.logger, "Failed to start session", err,
			infralogger.String("questionnaire_id", req.QuestionnaireID),
		)
		return
	}

	c.JSON(http.StatusCreated, session)
}

func (h *SessionHandler) List(c *gin.Context) {
	sessions, err := h.service.Sessions(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "Failed to list sessions", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

func (h *SessionHandler) GetByID(c *gin.Context) {
	id := c.Param("id")

	session, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "Failed to load session", err, infralogger.String("session_id", id))
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *SessionHandler) Answer(c *gin.Context) {
	id := c.Param("id")

	var in assessment.AnswerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	session, err := h.service.Answer(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, h.logger, "Failed to record answer", err,
			infralogger.String("session_id", id),
			infralogger.String("question_id", in.QuestionID),
		)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *SessionHandler) Pause(c *gin.Context) {
	h.transition(c, "pause", h.service.Pause)
}

func (h *SessionHandler) Resume(c *gin.Context) {
	h.transition(c, "resume", h.service.Resume)
}

func (h *SessionHandler) Abandon(c *gin.Context) {
	h.transition(c, "abandon", h.service.Abandon)
}

func (h *SessionHandler) transition(
	c *gin.Context,
	action string,
	fn func(ctx context.Context, id string) (*assessment.Session, error),
) {
	id := c.Param("id")

	session, err := fn(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "Failed to "+action+" session", err, infralogger.String("session_id", id))
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *SessionHandler) Complete(c *gin.Context) {
	id := c.Param("id")

	result, err := h.service.Complete(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "Failed to complete session", err, infralogger.String("session_id", id))
		return
	}
	c.JSON(http.StatusCreated, h.localize(c, result))
}

func (h *SessionHandler) ListResults(c *gin.Context) {
	results, err := h.service.Results(c.Request.Context(), c.Query("questionnaireId"))
	if err != nil {
		respondError(c, h.logger, "Failed to list results", err)
		return
	}

	views := make([]ResultView, 0, len(results))
	for i := range results {
		views = append(views, h.localize(c, &results[i]))
	}
	c.JSON(http.StatusOK, gin.H{
		"results": views,
		"count":   len(views),
	})
}

func (h *SessionHandler) GetResult(c *gin.Context) {
	id := c.Param("id")

	result, err := h.service.Result(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "Failed to load result", err, infralogger.String("result_id", id))
		return
	}
	c.JSON(http.StatusOK, h.localize(c, result))
}

// ScoreView is a Score with its interpretation text resolved.
type ScoreView struct {
	assessment.Score

	Label           string   `json:"label,omitempty"`
	Description     string   `json:"description,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// ResultView is a Result with text resolved in the request language.
type ResultView struct {
	*assessment.Result

	Scores        []ScoreView `json:"scores"`
	CrisisMessage string      `json:"crisisMessage,omitempty"`
}

// localize resolves result text in ?lang= when given, otherwise in the
// language the session ran in.
func (h *SessionHandler) localize(c *gin.Context, r *assessment.Result) ResultView {
	lang := r.Language
	if c.Query("lang") != "" || lang == "" {
		lang = requestLanguage(c, h.negotiator)
	}
	tr := h.manager.Translator(c.Request.Context(), lang, QuestionnaireNamespace)
	t := tr.In(QuestionnaireNamespace)

	view := ResultView{Result: r, Scores: make([]ScoreView, 0, len(r.Scores))}
	for _, s := range r.Scores {
		sv := ScoreView{Score: s}
		if s.LabelKey != "" {
			sv.Label = t(s.LabelKey)
		}
		if s.DescriptionKey != "" {
			sv.Description = t(s.DescriptionKey)
		}
		for _, k := range s.RecommendationKeys {
			sv.Recommendations = append(sv.Recommendations, t(k))
		}
		view.Scores = append(view.Scores, sv)
	}
	if r.CrisisFlag {
		view.CrisisMessage = tr.T("common:crisis.message", nil)
	}
	return view
}
