package feed

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net"
	"net/url"

	"github.com/mmcdole/gofeed"

	"github.com/wookhyung/blog/internal/domain/reading"
)

// ErrorKind classifies why a source contributed no items.
type ErrorKind string

const (
	// KindFetch covers network failures and non-success HTTP statuses.
	KindFetch ErrorKind = "fetch"
	// KindParse covers bodies that are not a recognizable feed document.
	KindParse ErrorKind = "parse"
	// KindTimeout covers fetches that ran past their deadline.
	KindTimeout ErrorKind = "timeout"
)

// SourceError is a classified failure of a single feed source.
type SourceError struct {
	Kind       ErrorKind
	Source     reading.FeedSource
	StatusCode int
	Cause      error
}

func (e *SourceError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("feed source %q %s: HTTP %d for %s", e.Source.Name, e.Kind, e.StatusCode, e.Source.URL)
	}
	return fmt.Sprintf("feed source %q %s: %v for %s", e.Source.Name, e.Kind, e.Cause, e.Source.URL)
}

func (e *SourceError) Unwrap() error { return e.Cause }

// Timeout reports whether the source failed because of a deadline.
func (e *SourceError) Timeout() bool { return e.Kind == KindTimeout }

// ClassifyError wraps err into a SourceError for source.
// Errors that are already classified are returned unchanged.
func ClassifyError(source reading.FeedSource, err error) *SourceError {
	if err == nil {
		return nil
	}

	var classified *SourceError
	if errors.As(err, &classified) {
		return classified
	}

	if isTimeout(err) {
		return &SourceError{Kind: KindTimeout, Source: source, Cause: err}
	}

	var httpErr gofeed.HTTPError
	if errors.As(err, &httpErr) {
		return &SourceError{Kind: KindFetch, Source: source, StatusCode: httpErr.StatusCode, Cause: err}
	}

	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return &SourceError{Kind: KindFetch, Source: source, Cause: err}
	}

	var syntaxErr *xml.SyntaxError
	if errors.Is(err, gofeed.ErrFeedTypeNotDetected) || errors.As(err, &syntaxErr) {
		return &SourceError{Kind: KindParse, Source: source, Cause: err}
	}

	// Anything the parser returns after a successful response is a document problem.
	return &SourceError{Kind: KindParse, Source: source, Cause: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
