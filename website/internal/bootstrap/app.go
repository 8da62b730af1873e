// Package bootstrap wires and runs the website service.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	infragin "github.com/oe/sunrain-sub002/infrastructure/gin"
	infralogger "github.com/oe/sunrain-sub002/infrastructure/logger"
	"github.com/oe/sunrain-sub002/website/internal/api"
	"github.com/oe/sunrain-sub002/website/internal/telemetry"
)

const version = "dev"

// Start initializes and runs the website until it receives a signal.
func Start() error {
	// Phase 1: Load config and create logger
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := CreateLogger(cfg, version)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := telemetry.New(reg)
	telemetry.BuildInfo(reg, version, len(cfg.I18n.Languages))
	checks := map[string]infragin.HealthChecker{}

	// Phase 2: Optional Redis
	redisClient, err := SetupRedis(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
		checks["redis"] = infragin.PingChecker(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}, false)
	}

	// Phase 3: Session store
	store, err := SetupStorage(ctx, cfg, redisClient, metrics, log)
	if err != nil {
		return fmt.Errorf("failed to set up storage: %w", err)
	}
	defer store.Close()
	if store.Ping != nil {
		checks["storage"] = infragin.PingChecker(store.Ping, true)
	}

	// Phase 4: Content and translations
	bank, err := SetupQuestionnaires(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to load questionnaires: %w", err)
	}
	translations, negotiator := SetupI18n(ctx, cfg, redisClient, log)
	reg.MustRegister(telemetry.NewCacheCollector(translations.Cache()))

	// Phase 5: HTTP server
	server := api.NewServer(api.Deps{
		Questionnaires: bank,
		Assessments:    SetupAssessments(cfg, store.Secure, bank, metrics, log),
		Translations:   translations,
		Negotiator:     negotiator,
		ContentDir:     cfg.Content.LibraryDir,
		QuoteThreshold: cfg.Content.QuoteThreshold,
		Registry:       reg,
		HealthChecks:   checks,
	}, cfg, version, log)

	if runErr := server.Run(ctx); runErr != nil {
		log.Error("Server error", infralogger.Error(runErr))
		return fmt.Errorf("server error: %w", runErr)
	}

	log.Info("Server exited")
	return nil
}
