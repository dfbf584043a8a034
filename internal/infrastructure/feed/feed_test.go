package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wookhyung/blog/internal/application/usecase"
	"github.com/wookhyung/blog/internal/domain/reading"
)

type rssEntry struct {
	title   string
	link    string
	pubDate string
}

func rssDocument(title string, entries ...rssEntry) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>` + title + `</title><link>https://example.com</link><description>test</description>`)
	for _, e := range entries {
		fmt.Fprintf(&b, `<item><title>%s</title><link>%s</link><pubDate>%s</pubDate><description>&lt;p&gt;About %s&lt;/p&gt;</description></item>`,
			e.title, e.link, e.pubDate, e.title)
	}
	b.WriteString(`</channel></rss>`)
	return b.String()
}

func serveFeed(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func restoreParser(t *testing.T) {
	t.Helper()
	original := ParserFunc
	t.Cleanup(func() { ParserFunc = original })
}

func itemTitles(items []reading.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title
	}
	return out
}

func TestDefaultParserHeaders(t *testing.T) {
	var gotAccept string
	var gotUA string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/atom+xml")
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Example Feed</title>
  <id>urn:uuid:60a76c80-d399-11d9-b93C-0003939e0af6</id>
  <updated>2026-01-01T00:00:00Z</updated>
  <entry>
    <title>Atom-Powered Robots Run Amok</title>
    <id>urn:uuid:1225c695-cfb8-4ebb-aaaa-80da344efa6a</id>
    <updated>2026-01-01T00:00:00Z</updated>
    <link href="https://example.com/robots"/>
    <summary>Some text.</summary>
  </entry>
</feed>`))
	}))
	defer server.Close()

	_, err := defaultParser(context.Background(), server.URL, "")
	require.NoError(t, err)

	assert.Equal(t, DefaultUserAgent, gotUA)
	assert.Contains(t, gotAccept, "application/atom+xml")

	_, err = defaultParser(context.Background(), server.URL, "custom/2.0")
	require.NoError(t, err)
	assert.Equal(t, "custom/2.0", gotUA)
}

func TestFetchWithContext(t *testing.T) {
	restoreParser(t)
	source := reading.FeedSource{Name: "Test", URL: "https://example.com/rss"}

	t.Run("Success", func(t *testing.T) {
		published := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
		ParserFunc = func(_ context.Context, _, _ string) (*gofeed.Feed, error) {
			return &gofeed.Feed{
				Title: "Test Feed",
				Items: []*gofeed.Item{
					{Title: "Item 1", Description: "<p>Desc   1</p>", Link: "https://example.com/1", GUID: "guid-1", Published: "Sun, 01 Jan 2023 00:00:00 +0000", PublishedParsed: &published},
				},
			}, nil
		}

		f, err := FetchWithContext(context.Background(), source, usecase.FeedFetchOptions{})
		require.NoError(t, err)
		assert.Equal(t, "Test Feed", f.Title)
		require.Len(t, f.Items, 1)

		item := f.Items[0]
		assert.Equal(t, "Test", item.FeedName)
		assert.Equal(t, "https://example.com/rss", item.FeedURL)
		assert.Equal(t, "Item 1", item.Title)
		assert.Equal(t, "guid-1", item.GUID)
		assert.Equal(t, "https://example.com/1", item.Link)
		assert.True(t, item.Date.Equal(published))
		assert.Equal(t, "Desc 1", item.ContentSnippet)
	})

	t.Run("Fallback Updated", func(t *testing.T) {
		updated := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
		ParserFunc = func(_ context.Context, _, _ string) (*gofeed.Feed, error) {
			return &gofeed.Feed{Items: []*gofeed.Item{
				{Title: "Item 1", Updated: "2023-01-02", UpdatedParsed: &updated},
			}}, nil
		}

		f, err := FetchWithContext(context.Background(), source, usecase.FeedFetchOptions{})
		require.NoError(t, err)
		assert.Equal(t, "2023-01-02", f.Items[0].Published)
		assert.True(t, f.Items[0].Date.Equal(updated))
	})

	t.Run("Unparseable date", func(t *testing.T) {
		ParserFunc = func(_ context.Context, _, _ string) (*gofeed.Feed, error) {
			return &gofeed.Feed{Items: []*gofeed.Item{{Title: "Item 1", Published: "someday"}}}, nil
		}

		f, err := FetchWithContext(context.Background(), source, usecase.FeedFetchOptions{})
		require.NoError(t, err)
		assert.False(t, f.Items[0].HasDate())
		assert.Equal(t, "someday", f.Items[0].Published)
	})

	t.Run("HTTP failure", func(t *testing.T) {
		ParserFunc = func(_ context.Context, _, _ string) (*gofeed.Feed, error) {
			return nil, gofeed.HTTPError{StatusCode: 404, Status: "404 Not Found"}
		}

		_, err := FetchWithContext(context.Background(), source, usecase.FeedFetchOptions{})
		var srcErr *SourceError
		require.ErrorAs(t, err, &srcErr)
		assert.Equal(t, KindFetch, srcErr.Kind)
		assert.Equal(t, 404, srcErr.StatusCode)
	})

	t.Run("Invalid source", func(t *testing.T) {
		called := false
		ParserFunc = func(_ context.Context, _, _ string) (*gofeed.Feed, error) {
			called = true
			return &gofeed.Feed{}, nil
		}

		_, err := FetchWithContext(context.Background(), reading.FeedSource{Name: "X", URL: "not a url"}, usecase.FeedFetchOptions{})
		require.Error(t, err)
		assert.False(t, called)
	})
}

func TestFetchTrimsWhitespace(t *testing.T) {
	restoreParser(t)

	var gotURL string
	ParserFunc = func(_ context.Context, url, _ string) (*gofeed.Feed, error) {
		gotURL = url
		return &gofeed.Feed{Title: "Trimmed", Items: []*gofeed.Item{}}, nil
	}

	f, err := FetchWithContext(context.Background(), reading.FeedSource{Name: " A ", URL: " \nhttps://example.com/rss\t "}, usecase.FeedFetchOptions{})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/rss", gotURL)
	assert.Equal(t, "https://example.com/rss", f.URL)
}

func TestFetchAllScenario(t *testing.T) {
	feedA := serveFeed(t, rssDocument("A",
		rssEntry{title: "A-0102", link: "https://a.example.com/2", pubDate: "Tue, 02 Jan 2024 00:00:00 +0000"},
		rssEntry{title: "A-0101", link: "https://a.example.com/1", pubDate: "Mon, 01 Jan 2024 00:00:00 +0000"},
	))
	feedB := serveFeed(t, rssDocument("B",
		rssEntry{title: "B-0103", link: "https://b.example.com/3", pubDate: "Wed, 03 Jan 2024 00:00:00 +0000"},
	))

	sources := []reading.FeedSource{
		{Name: "A", URL: feedA.URL},
		{Name: "B", URL: feedB.URL},
	}

	f, report := FetchAll(context.Background(), sources, usecase.FeedFetchOptions{PerFeedTimeout: 5 * time.Second})

	assert.Equal(t, []string{"B-0103", "A-0102", "A-0101"}, itemTitles(f.Items))
	assert.Equal(t, "B", f.Items[0].FeedName)
	assert.Equal(t, feedB.URL, f.Items[0].FeedURL)
	assert.Equal(t, "A", f.Items[1].FeedName)
	assert.Equal(t, "About A-0102", f.Items[1].ContentSnippet)
	assert.Equal(t, 2, report.Requested)
	assert.Equal(t, 2, report.Succeeded)
	require.Len(t, report.Outcomes, 2)
	assert.Equal(t, 2, report.Outcomes[0].Items)
	assert.Equal(t, 1, report.Outcomes[1].Items)
}

func TestFetchAllToleratesFailingSource(t *testing.T) {
	good := serveFeed(t, rssDocument("Good",
		rssEntry{title: "good-1", link: "https://good.example.com/1", pubDate: "Mon, 01 Jan 2024 10:00:00 +0000"},
		rssEntry{title: "good-2", link: "https://good.example.com/2", pubDate: "Sun, 31 Dec 2023 10:00:00 +0000"},
	))
	other := serveFeed(t, rssDocument("Other",
		rssEntry{title: "other-1", link: "https://other.example.com/1", pubDate: "Fri, 05 Jan 2024 10:00:00 +0000"},
	))
	down := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	downURL := down.URL
	down.Close()

	sources := []reading.FeedSource{
		{Name: "Good", URL: good.URL},
		{Name: "Down", URL: downURL},
		{Name: "Other", URL: other.URL},
	}

	f, report := FetchAll(context.Background(), sources, usecase.FeedFetchOptions{PerFeedTimeout: 5 * time.Second})

	assert.Equal(t, []string{"other-1", "good-1", "good-2"}, itemTitles(f.Items))
	assert.Equal(t, 3, report.Requested)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 1, report.Failed)

	failed := report.Outcomes[1]
	assert.Equal(t, "Down", failed.Source.Name)
	var srcErr *SourceError
	require.ErrorAs(t, failed.Err, &srcErr)
	assert.Equal(t, KindFetch, srcErr.Kind)
}

func TestFetchAllStatusAndParseFailures(t *testing.T) {
	notFound := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer notFound.Close()
	garbage := serveFeed(t, "<html><body>definitely not a feed</body></html>")

	sources := []reading.FeedSource{
		{Name: "NotFound", URL: notFound.URL},
		{Name: "Garbage", URL: garbage.URL},
	}

	f, report := FetchAll(context.Background(), sources, usecase.FeedFetchOptions{PerFeedTimeout: 5 * time.Second})

	assert.NotNil(t, f.Items)
	assert.Empty(t, f.Items)
	assert.Equal(t, 2, report.Failed)

	var statusErr *SourceError
	require.ErrorAs(t, report.Outcomes[0].Err, &statusErr)
	assert.Equal(t, KindFetch, statusErr.Kind)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)

	var parseErr *SourceError
	require.ErrorAs(t, report.Outcomes[1].Err, &parseErr)
	assert.Equal(t, KindParse, parseErr.Kind)
}

func TestFetchAllAllFailing(t *testing.T) {
	restoreParser(t)
	ParserFunc = func(context.Context, string, string) (*gofeed.Feed, error) {
		return nil, errors.New("network error")
	}

	sources := []reading.FeedSource{
		{Name: "A", URL: "https://a.example.com/rss"},
		{Name: "B", URL: "https://b.example.com/rss"},
	}
	f, report := FetchAll(context.Background(), sources, usecase.FeedFetchOptions{})

	require.NotNil(t, f)
	assert.NotNil(t, f.Items)
	assert.Empty(t, f.Items)
	assert.Equal(t, 2, report.Failed)
	assert.Equal(t, 0, report.Succeeded)
}

func TestFetchAllStableAcrossSources(t *testing.T) {
	restoreParser(t)
	same := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	ParserFunc = func(_ context.Context, url, _ string) (*gofeed.Feed, error) {
		prefix := strings.TrimPrefix(url, "https://")
		prefix = strings.TrimSuffix(prefix, ".example.com/rss")
		// Later sources answer first so completion order differs from input order.
		if prefix == "a" {
			time.Sleep(20 * time.Millisecond)
		}
		return &gofeed.Feed{Items: []*gofeed.Item{
			{Title: prefix + "-1", PublishedParsed: &same},
			{Title: prefix + "-2", PublishedParsed: &same},
		}}, nil
	}

	sources := []reading.FeedSource{
		{Name: "A", URL: "https://a.example.com/rss"},
		{Name: "B", URL: "https://b.example.com/rss"},
	}
	f, _ := FetchAll(context.Background(), sources, usecase.FeedFetchOptions{})

	assert.Equal(t, []string{"a-1", "a-2", "b-1", "b-2"}, itemTitles(f.Items))
}

func TestFetchAllRunsSourcesConcurrently(t *testing.T) {
	restoreParser(t)
	const n = 4
	var arrived sync.WaitGroup
	arrived.Add(n)
	release := make(chan struct{})
	go func() {
		arrived.Wait()
		close(release)
	}()

	ParserFunc = func(ctx context.Context, _, _ string) (*gofeed.Feed, error) {
		arrived.Done()
		select {
		case <-release:
			return &gofeed.Feed{Items: []*gofeed.Item{{Title: "x"}}}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	sources := make([]reading.FeedSource, n)
	for i := range sources {
		sources[i] = reading.FeedSource{Name: fmt.Sprintf("S%d", i), URL: fmt.Sprintf("https://s%d.example.com/rss", i)}
	}

	_, report := FetchAll(context.Background(), sources, usecase.FeedFetchOptions{BatchTimeout: 2 * time.Second})

	assert.Equal(t, n, report.Succeeded, "sources must be in flight at the same time")
}

func TestFetchAllPerFeedTimeout(t *testing.T) {
	restoreParser(t)
	ParserFunc = func(ctx context.Context, url, _ string) (*gofeed.Feed, error) {
		if strings.Contains(url, "slow") {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		now := time.Now()
		return &gofeed.Feed{Items: []*gofeed.Item{{Title: "fast", PublishedParsed: &now}}}, nil
	}

	sources := []reading.FeedSource{
		{Name: "Slow", URL: "https://slow.example.com/rss"},
		{Name: "Fast", URL: "https://fast.example.com/rss"},
	}
	f, report := FetchAll(context.Background(), sources, usecase.FeedFetchOptions{PerFeedTimeout: 50 * time.Millisecond})

	assert.Equal(t, []string{"fast"}, itemTitles(f.Items))
	assert.Equal(t, 1, report.TimedOut)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, 1, report.Succeeded)
	assert.True(t, report.Outcomes[0].TimedOut)

	var srcErr *SourceError
	require.ErrorAs(t, report.Outcomes[0].Err, &srcErr)
	assert.True(t, srcErr.Timeout())
}

func TestFetchAllWrappedParserTimeout(t *testing.T) {
	restoreParser(t)
	ParserFunc = func(ctx context.Context, _, _ string) (*gofeed.Feed, error) {
		<-ctx.Done()
		// Parsers sometimes report a deadline with their own message.
		return nil, errors.New("read body: connection reset")
	}

	sources := []reading.FeedSource{{Name: "Slow", URL: "https://slow.example.com/rss"}}
	_, report := FetchAll(context.Background(), sources, usecase.FeedFetchOptions{PerFeedTimeout: 20 * time.Millisecond})

	assert.Equal(t, 1, report.TimedOut)
}
