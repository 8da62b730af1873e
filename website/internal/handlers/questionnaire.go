package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	infralogger "github.com/oe/sunrain-sub002/infrastructure/logger"
	"github.com/oe/sunrain-sub002/website/internal/i18n"
	"github.com/oe/sunrain-sub002/website/internal/questionnaire"
)

// QuestionnaireNamespace holds questionnaire text.
const QuestionnaireNamespace = "questionnaires"

// Catalog lists questionnaires.
type Catalog interface {
	Get(id string) (*questionnaire.Questionnaire, error)
	List() []*questionnaire.Questionnaire
}

type QuestionnaireHandler struct {
	catalog    Catalog
	manager    *i18n.Manager
	negotiator *i18n.Negotiator
	logger     infralogger.Logger
}

func NewQuestionnaireHandler(
	catalog Catalog,
	manager *i18n.Manager,
	negotiator *i18n.Negotiator,
	log infralogger.Logger,
) *QuestionnaireHandler {
	return &QuestionnaireHandler{
		catalog:    catalog,
		manager:    manager,
		negotiator: negotiator,
		logger:     log,
	}
}

func (h *QuestionnaireHandler) List(c *gin.Context) {
	lang := requestLanguage(c, h.negotiator)
	t := h.manager.Translator(c.Request.Context(), lang, QuestionnaireNamespace).In(QuestionnaireNamespace)

	all := h.catalog.List()
	summaries := make([]questionnaire.Summary, 0, len(all))
	for _, q := range all {
		summaries = append(summaries, questionnaire.Summarize(q, t))
	}

	c.JSON(http.StatusOK, gin.H{
		"questionnaires": summaries,
		"count":          len(summaries),
		"language":       lang,
	})
}

func (h *QuestionnaireHandler) GetByID(c *gin.Context) {
	id := c.Param("id")

	q, err := h.catalog.Get(id)
	if err != nil {
		respondError(c, h.logger, "Failed to load questionnaire", err, infralogger.String("questionnaire_id", id))
		return
	}

	lang := requestLanguage(c, h.negotiator)
	t := h.manager.Translator(c.Request.Context(), lang, QuestionnaireNamespace).In(QuestionnaireNamespace)
	c.JSON(http.StatusOK, questionnaire.Localize(q, lang, t))
}
