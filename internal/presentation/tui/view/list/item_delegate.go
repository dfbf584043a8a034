// Package listview provides list item delegates for the view layer.
package listview

import (
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// FeedItem is an item that ItemDelegate can render.
type FeedItem interface {
	list.Item
	Title() string
	Description() string
}

// ItemDelegate renders an aggregated feed item on two lines: the
// "[source] title" line and a faint date and snippet line.
type ItemDelegate struct {
	Styles list.DefaultItemStyles
}

// NewItemDelegate creates a new ItemDelegate.
func NewItemDelegate() *ItemDelegate {
	return &ItemDelegate{
		Styles: withItemPadding(list.NewDefaultItemStyles()),
	}
}

// Height returns the height of the item.
func (d *ItemDelegate) Height() int {
	return 2
}

// Spacing returns the spacing between items.
func (d *ItemDelegate) Spacing() int {
	return 1
}

// Update handles messages for the delegate.
func (d *ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render renders the item.
func (d *ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(FeedItem)
	if !ok {
		return
	}

	ts := titleStyle(d.Styles, m, index)
	renderItemText(w, ts, truncateItemText(m, ts, i.Title()))
	_, _ = io.WriteString(w, "\n")
	ds := descStyle(d.Styles, m, index)
	renderItemText(w, ds, truncateItemText(m, ds, i.Description()))
}
