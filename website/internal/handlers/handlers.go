// Package handlers holds the website HTTP handlers.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	infralogger "github.com/oe/sunrain-sub002/infrastructure/logger"
	"github.com/oe/sunrain-sub002/website/internal/assessment"
	"github.com/oe/sunrain-sub002/website/internal/i18n"
	"github.com/oe/sunrain-sub002/website/internal/questionnaire"
	"github.com/oe/sunrain-sub002/website/internal/storage"
)

// ContentLanguageHeader reports the language a response was resolved in.
const ContentLanguageHeader = "Content-Language"

// requestLanguage negotiates from ?lang= and Accept-Language.
func requestLanguage(c *gin.Context, n *i18n.Negotiator) string {
	lang := n.Negotiate(c.Query("lang"), c.GetHeader("Accept-Language"))
	c.Header(ContentLanguageHeader, lang)
	return lang
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, questionnaire.ErrNotFound),
		errors.Is(err, assessment.ErrSessionNotFound),
		errors.Is(err, assessment.ErrResultNotFound),
		errors.Is(err, i18n.ErrNotRegistered):
		return http.StatusNotFound
	case errors.Is(err, assessment.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, assessment.ErrIncomplete),
		errors.Is(err, assessment.ErrUnknownQuestion),
		errors.Is(err, assessment.ErrInvalidOption):
		return http.StatusUnprocessableEntity
	case errors.Is(err, storage.ErrQuotaExceeded):
		return http.StatusInsufficientStorage
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"error": ...}. Server errors are logged with
// the request-scoped logger and their details hidden.
func respondError(c *gin.Context, def infralogger.Logger, msg string, err error, fields ...infralogger.Field) {
	log := infralogger.FromContext(c.Request.Context(), def)
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error(msg, append(fields, infralogger.Error(err))...)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	log.Debug(msg, append(fields, infralogger.Error(err))...)
	c.JSON(status, gin.H{"error": err.Error()})
}
