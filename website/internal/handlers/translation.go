package handlers

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	infralogger "github.com/oe/sunrain-sub002/infrastructure/logger"
	"github.com/oe/sunrain-sub002/website/internal/i18n"
)

type TranslationHandler struct {
	manager    *i18n.Manager
	negotiator *i18n.Negotiator
	logger     infralogger.Logger
}

func NewTranslationHandler(manager *i18n.Manager, negotiator *i18n.Negotiator, log infralogger.Logger) *TranslationHandler {
	return &TranslationHandler{
		manager:    manager,
		negotiator: negotiator,
		logger:     log,
	}
}

// Get serves one namespace bundle. Unsupported languages are 404; a
// supported language missing the namespace is served the default language.
func (h *TranslationHandler) Get(c *gin.Context) {
	lang := c.Param("lang")
	ns := c.Param("namespace")

	if !slices.Contains(h.negotiator.Supported(), lang) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unsupported language", "language": lang})
		return
	}

	resolved := lang
	if !h.manager.Registry().Has(ns, lang) {
		resolved = h.manager.DefaultLanguage()
		if !h.manager.Registry().Has(ns, resolved) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown namespace", "namespace": ns})
			return
		}
	}

	bundle := h.manager.Load(c.Request.Context(), resolved, ns)
	c.Header(ContentLanguageHeader, resolved)
	c.JSON(http.StatusOK, gin.H{
		"language":  resolved,
		"namespace": ns,
		"fallback":  resolved != lang,
		"messages":  bundle,
	})
}

// Index lists supported languages, registered bundles and cache counters.
func (h *TranslationHandler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"defaultLanguage": h.manager.DefaultLanguage(),
		"languages":       h.negotiator.Supported(),
		"bundles":         h.manager.Registry().Keys(),
		"cache":           h.manager.Cache().Stats(),
	})
}

// ClearCache drops every cached bundle.
func (h *TranslationHandler) ClearCache(c *gin.Context) {
	h.manager.Cache().Clear(c.Request.Context())
	h.logger.Info("Translation cache cleared")
	c.Status(http.StatusNoContent)
}
