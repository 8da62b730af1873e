package handlers

import (
	"errors"
	"io/fs"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oe/sunrain-sub002/content-fetcher/catalog"
	infralogger "github.com/oe/sunrain-sub002/infrastructure/logger"
)

// ContentHandler serves the libraries written by the content fetcher.
type ContentHandler struct {
	dir       string
	threshold int
	logger    infralogger.Logger
	now       func() time.Time
}

func NewContentHandler(dir string, quoteThreshold int, log infralogger.Logger) *ContentHandler {
	return &ContentHandler{
		dir:       dir,
		threshold: quoteThreshold,
		logger:    log,
		now:       time.Now,
	}
}

// WithClock replaces the clock used for daily and weekly quotes.
func (h *ContentHandler) WithClock(now func() time.Time) *ContentHandler {
	h.now = now
	return h
}

func (h *ContentHandler) List(c *gin.Context) {
	t, err := catalog.ParseType(c.Param("type"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	h.list(c, t)
}

func (h *ContentHandler) Quotes(c *gin.Context) {
	h.list(c, catalog.TypeQuotes)
}

func (h *ContentHandler) list(c *gin.Context, t catalog.Type) {
	var items any
	var count int
	var err error
	switch t {
	case catalog.TypeBooks:
		items, count, err = load[catalog.Book](h, t, c)
	case catalog.TypeMovies:
		items, count, err = load[catalog.Movie](h, t, c)
	case catalog.TypeMusic:
		items, count, err = load[catalog.Track](h, t, c)
	case catalog.TypeQuotes:
		items, count, err = load[catalog.Quote](h, t, c)
	}
	if err != nil {
		h.logger.Error("Failed to read content library",
			infralogger.String("type", string(t)),
			infralogger.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read content library"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"type":  t,
		"items": items,
		"count": count,
	})
}

// load reads one library, honouring ?limit=. A library that has not been
// fetched yet is empty.
func load[T any](h *ContentHandler, t catalog.Type, c *gin.Context) ([]T, int, error) {
	list, err := catalog.ReadJSON[T](filepath.Join(h.dir, t.FileName()))
	if errors.Is(err, fs.ErrNotExist) {
		list, err = nil, nil
	}
	if err != nil {
		return nil, 0, err
	}
	if list == nil {
		list = []T{}
	}
	if limit, convErr := strconv.Atoi(c.Query("limit")); convErr == nil && limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list, len(list), nil
}

func (h *ContentHandler) DailyQuote(c *gin.Context) {
	h.pickQuote(c, "daily", catalog.DailyQuote)
}

func (h *ContentHandler) WeeklyQuote(c *gin.Context) {
	h.pickQuote(c, "weekly", catalog.WeeklyQuote)
}

func (h *ContentHandler) pickQuote(c *gin.Context, period string, pick func([]catalog.Quote, time.Time, int) (catalog.Quote, error)) {
	quotes, err := catalog.ReadJSON[catalog.Quote](filepath.Join(h.dir, catalog.TypeQuotes.FileName()))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		h.logger.Error("Failed to read quotes", infralogger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read quotes"})
		return
	}

	day := h.now().UTC()
	quote, err := pick(quotes, day, h.threshold)
	if errors.Is(err, catalog.ErrEmptyPool) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No quotes available"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"period": period,
		"date":   day.Format(time.DateOnly),
		"quote":  quote,
	})
}
