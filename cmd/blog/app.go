package main

import (
	"fmt"
	"os"
	"slices"

	"github.com/wookhyung/blog/internal/application/settings"
	"github.com/wookhyung/blog/internal/application/usecase"
	"github.com/wookhyung/blog/internal/infrastructure/config"
	"github.com/wookhyung/blog/internal/infrastructure/content"
	"github.com/wookhyung/blog/internal/infrastructure/feed"
	"github.com/wookhyung/blog/internal/infrastructure/logger"
	"github.com/wookhyung/blog/internal/infrastructure/metrics"
	"github.com/wookhyung/blog/internal/presentation/web"
)

// app holds the wired services shared by the commands.
type app struct {
	store   *config.Store
	log     logger.Logger
	metrics *metrics.Metrics
	reading usecase.ReadingService
	posts   usecase.PostService
	sources usecase.SubscriptionService
	dates   web.DateFormatter
}

// newApp loads configuration and wires services. quiet discards log output
// bound for the terminal, for interactive commands.
func newApp(g *Globals, quiet bool) (*app, error) {
	store, err := config.Load(g.Config)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg := store.Settings

	log, err := newLogger(cfg.Log, quiet)
	if err != nil {
		return nil, err
	}
	for _, invalid := range store.Invalid {
		log.Warn("dropping invalid feed source",
			logger.Int("index", invalid.Index),
			logger.String("source", invalid.Source.Name),
			logger.String("url", invalid.Source.URL),
			logger.Error(invalid.Err),
		)
	}

	m := metrics.New(nil)
	agg := feed.NewAggregator(store.FetchOptions(), log.With(logger.String("component", "feed")), m)
	loader := content.NewLoader(os.DirFS(cfg.ContentDir), log.With(logger.String("component", "content")))

	return &app{
		store:   store,
		log:     log,
		metrics: m,
		reading: usecase.NewReadingService(agg, store.Sources(), nil),
		posts:   usecase.NewPostService(loader),
		sources: usecase.NewSubscriptionService(store),
		dates:   web.NewDateFormatter(cfg.Site.Locale, nil),
	}, nil
}

func newLogger(cfg settings.LogConfig, quiet bool) (logger.Logger, error) {
	paths := cfg.OutputPaths
	if quiet {
		paths = slices.DeleteFunc(slices.Clone(paths), func(p string) bool {
			return p == "stderr" || p == "stdout"
		})
		if len(paths) == 0 {
			return logger.NewNop(), nil
		}
	}
	return logger.New(logger.Config{
		Level:       cfg.Level,
		Development: cfg.Development,
		OutputPaths: paths,
	})
}
