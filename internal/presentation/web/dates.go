package web

import (
	"strings"
	"time"

	"golang.org/x/text/language"
)

const defaultDateLayout = "Jan 02"

var dateLayouts = map[string]string{
	"ko": "01월 02일",
	"ja": "01月02日",
	"zh": "01月02日",
}

// DateFormatter renders short month-day dates for a locale.
type DateFormatter struct {
	Layout string
	// Location converts times before formatting; nil keeps their own zone.
	Location *time.Location
}

// NewDateFormatter picks the layout for a locale such as "ko_KR" or "en-US".
// Unknown or malformed locales fall back to the English layout.
func NewDateFormatter(locale string, loc *time.Location) DateFormatter {
	f := DateFormatter{Layout: defaultDateLayout, Location: loc}
	tag, err := language.Parse(strings.ReplaceAll(strings.TrimSpace(locale), "_", "-"))
	if err != nil {
		return f
	}
	base, _ := tag.Base()
	if layout, ok := dateLayouts[base.String()]; ok {
		f.Layout = layout
	}
	return f
}

// Format returns the short date, or "" for a zero time.
func (f DateFormatter) Format(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	if f.Location != nil {
		t = t.In(f.Location)
	}
	layout := f.Layout
	if layout == "" {
		layout = defaultDateLayout
	}
	return t.Format(layout)
}
