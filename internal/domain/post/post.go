// Package post defines blog post models.
package post

import (
	"slices"
	"strings"
	"time"
)

// Post is a single published blog entry.
type Post struct {
	Slug    string
	Title   string
	Summary string
	Date    time.Time
	Author  string
	// Body is rendered HTML.
	Body string
}

// Path returns the site-relative URL of the post.
func (p Post) Path() string {
	return "/blog/" + p.Slug
}

// SortNewestFirst orders posts by date descending, then by slug.
func SortNewestFirst(posts []Post) {
	slices.SortStableFunc(posts, func(a, b Post) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		if a.Slug < b.Slug {
			return -1
		}
		if a.Slug > b.Slug {
			return 1
		}
		return 0
	})
}

// IsExternalLink reports whether href leaves the site. Site-relative paths
// and in-page anchors are internal.
func IsExternalLink(href string) bool {
	href = strings.TrimSpace(href)
	if href == "" {
		return false
	}
	if strings.HasPrefix(href, "//") {
		return true
	}
	return !strings.HasPrefix(href, "/") && !strings.HasPrefix(href, "#")
}
