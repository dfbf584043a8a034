// Package reading defines core reading models.
package reading

import (
	"slices"
	"time"
)

// AggregatedFeedURL is the special URL used to represent the merged feed page.
const AggregatedFeedURL = "internal://feed"

// Item represents a single entry of an external feed, normalized for display.
type Item struct {
	FeedName       string
	FeedURL        string
	GUID           string
	Title          string
	Link           string
	Published      string
	Date           time.Time
	Description    string
	ContentSnippet string
}

// HasDate reports whether the item's publish time could be parsed.
func (i Item) HasDate() bool {
	return !i.Date.IsZero()
}

// Feed represents a parsed feed.
type Feed struct {
	Title string
	Items []Item
	URL   string
}

// SortByRecency orders items newest first. Items without a date go last.
// Equal timestamps keep their incoming order.
func SortByRecency(items []Item) {
	slices.SortStableFunc(items, compareRecency)
}

func compareRecency(a, b Item) int {
	switch {
	case !a.HasDate() && !b.HasDate():
		return 0
	case !a.HasDate():
		return 1
	case !b.HasDate():
		return -1
	}
	return b.Date.Compare(a.Date)
}
