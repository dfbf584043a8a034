// Package feed fetches external RSS/Atom feeds and merges them into one
// reverse-chronological list.
package feed

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/wookhyung/blog/internal/application/usecase"
	"github.com/wookhyung/blog/internal/domain/reading"
)

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "wookhyung-blog/1.0 (+feed reader)"

const feedAcceptHeader = "application/atom+xml, application/rss+xml, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.5"

type acceptTransport struct {
	base http.RoundTripper
}

func (t acceptTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	clone := req.Clone(req.Context())
	if clone.Header.Get("Accept") == "" {
		clone.Header.Set("Accept", feedAcceptHeader)
	}
	return base.RoundTrip(clone)
}

// ParserFunc is exposed for testing.
// It allows mocking the fetch and parse step of a single source.
var ParserFunc = defaultParser

func defaultParser(ctx context.Context, url, userAgent string) (*gofeed.Feed, error) {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	fp := gofeed.NewParser()
	fp.UserAgent = userAgent
	fp.Client = &http.Client{Transport: acceptTransport{base: http.DefaultTransport}}
	return fp.ParseURLWithContext(url, ctx)
}

// FetchWithContext fetches and parses one source. The returned error is
// always a *SourceError.
func FetchWithContext(ctx context.Context, source reading.FeedSource, opt usecase.FeedFetchOptions) (*reading.Feed, error) {
	source = source.Normalize()
	if err := source.Validate(); err != nil {
		return nil, &SourceError{Kind: KindFetch, Source: source, Cause: err}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	parsed, err := ParserFunc(ctx, source.URL, opt.UserAgent)
	if err != nil {
		return nil, ClassifyError(source, err)
	}
	if parsed == nil {
		return nil, &SourceError{Kind: KindParse, Source: source, Cause: gofeed.ErrFeedTypeNotDetected}
	}
	return mapFeed(source, parsed, opt.SnippetLength), nil
}

func mapFeed(source reading.FeedSource, parsed *gofeed.Feed, snippetLength int) *reading.Feed {
	if snippetLength == 0 {
		snippetLength = DefaultSnippetLength
	}

	f := new(reading.Feed{
		Title: parsed.Title,
		URL:   source.URL,
		Items: make([]reading.Item, 0, len(parsed.Items)),
	})

	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		pub := item.Published
		if pub == "" {
			pub = item.Updated
		}
		var date time.Time
		if item.PublishedParsed != nil {
			date = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			date = *item.UpdatedParsed
		}

		body := item.Content
		if body == "" {
			body = item.Description
		}

		f.Items = append(f.Items, reading.Item{
			FeedName:       source.Name,
			FeedURL:        source.URL,
			GUID:           item.GUID,
			Title:          item.Title,
			Link:           item.Link,
			Published:      pub,
			Date:           date,
			Description:    item.Description,
			ContentSnippet: Snippet(body, snippetLength),
		})
	}

	return f
}

type sourceResult struct {
	feed *reading.Feed
	err  error
	took time.Duration
}

// FetchAll fetches every source concurrently, waits for all of them to settle
// and merges the items of the sources that succeeded, newest first.
// A failing source contributes nothing and is recorded in the report.
func FetchAll(ctx context.Context, sources []reading.FeedSource, opt usecase.FeedFetchOptions) (*reading.Feed, usecase.FeedFetchReport) {
	if ctx == nil {
		ctx = context.Background()
	}
	report := usecase.FeedFetchReport{Requested: len(sources)}

	batchCtx := ctx
	if opt.BatchTimeout > 0 {
		var batchCancel context.CancelFunc
		batchCtx, batchCancel = context.WithTimeout(ctx, opt.BatchTimeout)
		defer batchCancel()
	}

	// Each goroutine owns one slot, so no locking is needed.
	results := make([]sourceResult, len(sources))
	var wg sync.WaitGroup
	for i, source := range sources {
		wg.Go(func() {
			feedCtx := batchCtx
			if opt.PerFeedTimeout > 0 {
				var cancel context.CancelFunc
				feedCtx, cancel = context.WithTimeout(batchCtx, opt.PerFeedTimeout)
				defer cancel()
			}

			start := time.Now()
			f, err := FetchWithContext(feedCtx, source, opt)
			if err != nil && errors.Is(feedCtx.Err(), context.DeadlineExceeded) {
				srcErr := ClassifyError(source.Normalize(), err)
				srcErr.Kind = KindTimeout
				err = srcErr
			}
			results[i] = sourceResult{feed: f, err: err, took: time.Since(start)}
		})
	}
	wg.Wait()

	var allItems []reading.Item
	report.Outcomes = make([]usecase.SourceOutcome, len(sources))
	for i, res := range results {
		outcome := usecase.SourceOutcome{Source: sources[i], Took: res.took, Err: res.err}
		switch {
		case res.err == nil && res.feed != nil:
			report.Succeeded++
			outcome.Items = len(res.feed.Items)
			allItems = append(allItems, res.feed.Items...)
		case isSourceTimeout(res.err):
			report.TimedOut++
			outcome.TimedOut = true
		default:
			report.Failed++
		}
		report.Outcomes[i] = outcome
	}

	if allItems == nil {
		allItems = []reading.Item{}
	}
	reading.SortByRecency(allItems)

	return new(reading.Feed{
		Title: "Feed",
		URL:   reading.AggregatedFeedURL,
		Items: allItems,
	}), report
}

func isSourceTimeout(err error) bool {
	var srcErr *SourceError
	return errors.As(err, &srcErr) && srcErr.Timeout()
}
