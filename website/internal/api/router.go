// Package api assembles the website HTTP server.
package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	infragin "github.com/oe/sunrain-sub002/infrastructure/gin"
	infralogger "github.com/oe/sunrain-sub002/infrastructure/logger"
	"github.com/oe/sunrain-sub002/website/internal/assessment"
	"github.com/oe/sunrain-sub002/website/internal/config"
	"github.com/oe/sunrain-sub002/website/internal/handlers"
	"github.com/oe/sunrain-sub002/website/internal/i18n"
)

const serviceName = "website"

// Deps are the components served over HTTP.
type Deps struct {
	Questionnaires handlers.Catalog
	Assessments    *assessment.Service
	Translations   *i18n.Manager
	Negotiator     *i18n.Negotiator
	ContentDir     string
	QuoteThreshold int
	Registry       *prometheus.Registry
	HealthChecks   map[string]infragin.HealthChecker
}

// NewServer builds the website server on the shared gin scaffolding.
func NewServer(d Deps, cfg *config.Config, version string, log infralogger.Logger) *infragin.Server {
	serverCfg := &infragin.Config{
		Address:        cfg.Server.Address(),
		Debug:          cfg.Debug,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		ServiceName:    serviceName,
		ServiceVersion: version,
		CORS: infragin.CORSConfig{
			Enabled:        true,
			AllowedOrigins: cfg.CORSOrigins,
		},
	}

	opts := []infragin.Option{}
	if d.Registry != nil {
		opts = append(opts, infragin.WithMetrics(d.Registry))
	}
	for name, check := range d.HealthChecks {
		opts = append(opts, infragin.WithHealthCheck(name, check))
	}

	return infragin.NewServer(serverCfg, log, func(router *gin.Engine) {
		SetupRoutes(router, d, log)
	}, opts...)
}

// SetupRoutes registers the /api/v1 routes.
func SetupRoutes(router *gin.Engine, d Deps, log infralogger.Logger) {
	questionnaires := handlers.NewQuestionnaireHandler(d.Questionnaires, d.Translations, d.Negotiator, log)
	sessions := handlers.NewSessionHandler(d.Assessments, d.Translations, d.Negotiator, log)
	translations := handlers.NewTranslationHandler(d.Translations, d.Negotiator, log)
	content := handlers.NewContentHandler(d.ContentDir, d.QuoteThreshold, log)

	v1 := router.Group("/api/v1")

	q := v1.Group("/questionnaires")
	q.GET("", questionnaires.List)
	q.GET("/:id", questionnaires.GetByID)

	s := v1.Group("/sessions")
	s.POST("", sessions.Create)
	s.GET("", sessions.List)
	s.GET("/:id", sessions.GetByID)
	s.POST("/:id/answers", sessions.Answer)
	s.POST("/:id/pause", sessions.Pause)
	s.POST("/:id/resume", sessions.Resume)
	s.POST("/:id/abandon", sessions.Abandon)
	s.POST("/:id/complete", sessions.Complete)

	r := v1.Group("/results")
	r.GET("", sessions.ListResults)
	r.GET("/:id", sessions.GetResult)

	t := v1.Group("/translations")
	t.GET("", translations.Index)
	t.DELETE("/cache", translations.ClearCache)
	t.GET("/:lang/:namespace", translations.Get)

	c := v1.Group("/content")
	c.GET("/quotes", content.Quotes)
	c.GET("/quotes/daily", content.DailyQuote)
	c.GET("/quotes/weekly", content.WeeklyQuote)
	c.GET("/:type", content.List)
}
