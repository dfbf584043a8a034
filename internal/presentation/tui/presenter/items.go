// Package presenter builds view models for the TUI.
package presenter

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"

	"github.com/wookhyung/blog/internal/domain/reading"
)

// DateFunc formats an item date for display.
type DateFunc func(time.Time) string

// Item is a view model for one aggregated feed item.
type Item struct {
	TitleText string
	Desc      string
	Link      string
	FeedName  string
}

// FilterValue implements list.Item.
func (i *Item) FilterValue() string { return i.FeedName + " " + i.TitleText }

// Title returns the "[source] title" line.
func (i *Item) Title() string {
	if i.FeedName == "" {
		return i.TitleText
	}
	return fmt.Sprintf("[%s] %s", i.FeedName, i.TitleText)
}

// Description returns the secondary line.
func (i *Item) Description() string { return i.Desc }

// URL returns the item's link.
func (i *Item) URL() string { return i.Link }

// BuildItems converts aggregated items into list items, keeping their order.
func BuildItems(items []reading.Item, date DateFunc) []list.Item {
	result := make([]list.Item, len(items))
	for i, it := range items {
		result[i] = &Item{
			TitleText: it.Title,
			Desc:      describe(it, date),
			Link:      it.Link,
			FeedName:  it.FeedName,
		}
	}
	return result
}

func describe(it reading.Item, date DateFunc) string {
	var parts []string
	if date != nil && it.HasDate() {
		parts = append(parts, date(it.Date))
	} else if it.Published != "" {
		parts = append(parts, it.Published)
	}
	if it.ContentSnippet != "" {
		parts = append(parts, it.ContentSnippet)
	}
	return strings.Join(parts, " · ")
}
