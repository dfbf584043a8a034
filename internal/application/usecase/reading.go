// Package usecase contains application-level services.
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/wookhyung/blog/internal/domain/reading"
)

// FeedFetchOptions controls a single aggregation run.
type FeedFetchOptions struct {
	PerFeedTimeout time.Duration
	BatchTimeout   time.Duration
	UserAgent      string
	SnippetLength  int
}

// SourceOutcome describes how one source settled during aggregation.
type SourceOutcome struct {
	Source reading.FeedSource
	Items  int
	Took   time.Duration
	// Err is nil when the source succeeded.
	Err error
	// TimedOut is set when Err was caused by a deadline.
	TimedOut bool
}

// FeedFetchReport summarizes an aggregation run.
type FeedFetchReport struct {
	Requested int
	Succeeded int
	Failed    int
	TimedOut  int
	// Outcomes are in source order.
	Outcomes []SourceOutcome
}

// FeedAggregator fetches every source and merges the results newest first.
// Individual source failures are reported, never returned.
type FeedAggregator interface {
	Aggregate(ctx context.Context, sources []reading.FeedSource) ([]reading.Item, FeedFetchReport)
}

// FeedPage is the data rendered on the feed page.
type FeedPage struct {
	Items       []reading.Item
	Report      FeedFetchReport
	GeneratedAt time.Time
}

// FeedEmptyText is shown in place of the item list when a page is empty.
const FeedEmptyText = "RSS 피드를 불러오는 중..."

// Empty reports whether no source produced any item.
func (p FeedPage) Empty() bool {
	return len(p.Items) == 0
}

// StatusMessage returns a short human-readable note about failed sources.
func (p FeedPage) StatusMessage() string {
	return feedFetchStatusMessage(p.Report)
}

// ReadingService builds the aggregated feed page from the configured sources.
type ReadingService struct {
	Aggregator FeedAggregator
	Sources    []reading.FeedSource
	Now        func() time.Time
}

// NewReadingService constructs a ReadingService.
func NewReadingService(aggregator FeedAggregator, sources []reading.FeedSource, now func() time.Time) ReadingService {
	return ReadingService{
		Aggregator: aggregator,
		Sources:    sources,
		Now:        now,
	}
}

// FeedPage aggregates all sources afresh. It never fails; a page with no
// items is returned when nothing could be loaded.
func (s ReadingService) FeedPage(ctx context.Context) FeedPage {
	page := FeedPage{GeneratedAt: s.now()}
	if s.Aggregator == nil || len(s.Sources) == 0 {
		page.Items = []reading.Item{}
		return page
	}
	items, report := s.Aggregator.Aggregate(ctx, s.Sources)
	if items == nil {
		items = []reading.Item{}
	}
	page.Items = items
	page.Report = report
	return page
}

func (s ReadingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func feedFetchStatusMessage(report FeedFetchReport) string {
	if report.Requested <= 1 {
		return ""
	}
	if report.TimedOut > 0 {
		if report.TimedOut == 1 {
			return "1 feed timed out"
		}
		return fmt.Sprintf("%d feeds timed out", report.TimedOut)
	}
	if report.Failed > 0 {
		if report.Failed == 1 {
			return "1 feed failed to load"
		}
		return fmt.Sprintf("%d feeds failed to load", report.Failed)
	}
	return ""
}
