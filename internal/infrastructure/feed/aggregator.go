package feed

import (
	"context"
	"time"

	"github.com/wookhyung/blog/internal/application/usecase"
	"github.com/wookhyung/blog/internal/domain/reading"
	"github.com/wookhyung/blog/internal/infrastructure/logger"
	"github.com/wookhyung/blog/internal/infrastructure/metrics"
)

// Aggregator implements usecase.FeedAggregator on top of FetchAll.
type Aggregator struct {
	Options usecase.FeedFetchOptions
	Log     logger.Logger
	Metrics *metrics.Metrics
}

// NewAggregator constructs an Aggregator. A nil log discards output and
// nil metrics are not recorded.
func NewAggregator(opt usecase.FeedFetchOptions, log logger.Logger, m *metrics.Metrics) *Aggregator {
	if log == nil {
		log = logger.NewNop()
	}
	return &Aggregator{Options: opt, Log: log, Metrics: m}
}

// Aggregate fetches all sources and returns their items newest first.
func (a *Aggregator) Aggregate(ctx context.Context, sources []reading.FeedSource) ([]reading.Item, usecase.FeedFetchReport) {
	start := time.Now()
	merged, report := FetchAll(ctx, sources, a.Options)

	for _, outcome := range report.Outcomes {
		a.observe(outcome)
	}
	a.Metrics.ObserveAggregate(len(merged.Items))

	a.Log.Info("feeds aggregated",
		logger.Int("requested", report.Requested),
		logger.Int("succeeded", report.Succeeded),
		logger.Int("failed", report.Failed),
		logger.Int("timed_out", report.TimedOut),
		logger.Int("items", len(merged.Items)),
		logger.Duration("duration", time.Since(start)),
	)

	return merged.Items, report
}

func (a *Aggregator) observe(outcome usecase.SourceOutcome) {
	name := outcome.Source.Name
	switch {
	case outcome.Err == nil:
		a.Metrics.ObserveFetch(name, metrics.ResultSuccess, outcome.Took, outcome.Items)
		a.Log.Debug("feed source fetched",
			logger.String("source", name),
			logger.Int("items", outcome.Items),
			logger.Duration("duration", outcome.Took),
		)
	case outcome.TimedOut:
		a.Metrics.ObserveFetch(name, metrics.ResultTimeout, outcome.Took, 0)
		a.Log.Warn("feed source timed out",
			logger.String("source", name),
			logger.String("url", outcome.Source.URL),
			logger.Duration("duration", outcome.Took),
			logger.Error(outcome.Err),
		)
	default:
		a.Metrics.ObserveFetch(name, metrics.ResultFailure, outcome.Took, 0)
		fields := []logger.Field{
			logger.String("source", name),
			logger.String("url", outcome.Source.URL),
			logger.Error(outcome.Err),
		}
		if srcErr := ClassifyError(outcome.Source, outcome.Err); srcErr != nil {
			fields = append(fields, logger.String("kind", string(srcErr.Kind)))
			if srcErr.StatusCode > 0 {
				fields = append(fields, logger.Int("status", srcErr.StatusCode))
			}
		}
		a.Log.Warn("feed source failed", fields...)
	}
}
