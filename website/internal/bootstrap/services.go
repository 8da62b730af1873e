package bootstrap

import (
	"context"

	"github.com/redis/go-redis/v9"

	infralogger "github.com/oe/sunrain-sub002/infrastructure/logger"
	"github.com/oe/sunrain-sub002/website/internal/assessment"
	"github.com/oe/sunrain-sub002/website/internal/config"
	"github.com/oe/sunrain-sub002/website/internal/i18n"
	"github.com/oe/sunrain-sub002/website/internal/questionnaire"
	"github.com/oe/sunrain-sub002/website/internal/storage"
	"github.com/oe/sunrain-sub002/website/locales"
)

// SetupQuestionnaires loads the bank and, when enabled, watches its
// directory until ctx is done.
func SetupQuestionnaires(ctx context.Context, cfg *config.Config, log infralogger.Logger) (*questionnaire.Bank, error) {
	bank := questionnaire.NewBank(cfg.Content.QuestionnaireDir, log)
	if err := bank.Reload(); err != nil {
		return nil, err
	}
	log.Info("Questionnaires loaded",
		infralogger.String("dir", cfg.Content.QuestionnaireDir),
		infralogger.Int("count", bank.Len()),
	)

	if cfg.Content.WatchQuestionnaires {
		go func() {
			if err := bank.Watch(ctx); err != nil {
				log.Error("Questionnaire watcher stopped", infralogger.Error(err))
			}
		}()
	}
	return bank, nil
}

// SetupI18n registers the embedded bundles and warms the cache for the
// default language.
func SetupI18n(
	ctx context.Context,
	cfg *config.Config,
	redisClient *redis.Client,
	log infralogger.Logger,
) (*i18n.Manager, *i18n.Negotiator) {
	languages := cfg.SupportedLanguages()

	registry := i18n.NewRegistry()
	n := registry.RegisterFS(locales.FS, languages, locales.Namespaces)

	opts := i18n.CacheOptions{TTL: cfg.I18n.CacheTTL, MaxEntries: cfg.I18n.CacheMaxEntries}
	if cfg.I18n.RedisTier && redisClient != nil {
		opts.Tier = i18n.NewRedisTier(redisClient, cfg.Storage.Prefix+":i18n")
	}
	manager := i18n.NewManager(registry, i18n.NewCache(opts, log), cfg.I18n.DefaultLanguage, log)
	manager.Preload(ctx, cfg.I18n.DefaultLanguage, cfg.I18n.Preload...)

	log.Info("Translations registered",
		infralogger.Int("bundles", n),
		infralogger.Strings("languages", languages),
		infralogger.Bool("redis_tier", opts.Tier != nil),
	)
	return manager, i18n.NewNegotiator(languages)
}

// SetupAssessments builds the session service over store.
func SetupAssessments(
	cfg *config.Config,
	store *storage.SecureStore,
	bank *questionnaire.Bank,
	observer assessment.Observer,
	log infralogger.Logger,
) *assessment.Service {
	return assessment.NewService(assessment.Config{
		Store:          store,
		Questionnaires: bank,
		Logger:         log,
		Observer:       observer,
		Sessions: storage.CollectionOptions{
			MaxBytes:      cfg.Storage.SessionsMaxBytes,
			RetentionDays: cfg.Storage.RetentionDays,
		},
		Results: storage.CollectionOptions{
			MaxBytes: cfg.Storage.ResultsMaxBytes,
		},
	})
}
