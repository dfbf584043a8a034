package tui

import (
	"fmt"
	"io"

	"github.com/wookhyung/blog/internal/application/usecase"
	"github.com/wookhyung/blog/internal/presentation/tui/presenter"
	"github.com/wookhyung/blog/internal/presentation/tui/textutil"
)

// WritePlain prints the page as plain text, one item per entry, for
// non-interactive output.
func WritePlain(w io.Writer, page usecase.FeedPage, date presenter.DateFunc) error {
	if page.Empty() {
		_, err := fmt.Fprintln(w, usecase.FeedEmptyText)
		return err
	}
	for _, li := range presenter.BuildItems(page.Items, date) {
		it, ok := li.(*presenter.Item)
		if !ok {
			continue
		}
		if _, err := fmt.Fprintln(w, textutil.SingleLine(it.Title())); err != nil {
			return err
		}
		if desc := textutil.SingleLine(it.Description()); desc != "" {
			if _, err := fmt.Fprintf(w, "  %s\n", desc); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "  %s\n", it.Link); err != nil {
			return err
		}
	}
	if msg := page.StatusMessage(); msg != "" {
		if _, err := fmt.Fprintf(w, "(%s)\n", msg); err != nil {
			return err
		}
	}
	return nil
}
