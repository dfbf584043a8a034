package web

import (
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/wookhyung/blog/internal/application/settings"
	"github.com/wookhyung/blog/internal/domain/post"
)

// Meta is the head metadata of one page.
type Meta struct {
	Title       string
	Description string
	Canonical   string
	Language    string
	RSSURL      string
	OpenGraph   OpenGraph
	Twitter     TwitterCard
	// JSONLD is the structured data script body, if any.
	JSONLD template.JS
}

// OpenGraph holds og:* properties.
type OpenGraph struct {
	Title       string
	Description string
	URL         string
	SiteName    string
	Locale      string
	Type        string
}

// TwitterCard holds twitter:* properties.
type TwitterCard struct {
	Card        string
	Title       string
	Description string
	Creator     string
}

// PageOverrides are the per-page values layered over the site defaults.
type PageOverrides struct {
	// Title is the bare page title; empty means the site's default title.
	Title       string
	Description string
	Path        string
	Type        string
}

// BuildMeta merges page overrides onto the site defaults. Page titles use the
// "%s | <site name>" template.
func BuildMeta(site settings.SiteConfig, page PageOverrides) Meta {
	base := strings.TrimRight(site.URL, "/")
	title := site.Title
	if page.Title != "" {
		title = fmt.Sprintf("%s | %s", page.Title, site.SiteName)
	}
	desc := site.Description
	if page.Description != "" {
		desc = page.Description
	}
	path := page.Path
	if path == "" {
		path = "/"
	}
	ogType := page.Type
	if ogType == "" {
		ogType = "website"
	}
	canonical := base + path

	return Meta{
		Title:       title,
		Description: desc,
		Canonical:   canonical,
		Language:    site.Language,
		RSSURL:      base + site.RSSPath,
		OpenGraph: OpenGraph{
			Title:       title,
			Description: desc,
			URL:         canonical,
			SiteName:    site.SiteName,
			Locale:      site.Locale,
			Type:        ogType,
		},
		Twitter: TwitterCard{
			Card:        "summary_large_image",
			Title:       title,
			Description: desc,
			Creator:     site.Twitter,
		},
	}
}

type jsonLDThing struct {
	Type string `json:"@type"`
	Name string `json:"name,omitempty"`
	ID   string `json:"@id,omitempty"`
}

type blogPosting struct {
	Context          string      `json:"@context"`
	Type             string      `json:"@type"`
	Headline         string      `json:"headline"`
	Description      string      `json:"description,omitempty"`
	URL              string      `json:"url"`
	DatePublished    string      `json:"datePublished,omitempty"`
	DateModified     string      `json:"dateModified,omitempty"`
	Author           jsonLDThing `json:"author"`
	MainEntityOfPage jsonLDThing `json:"mainEntityOfPage"`
}

// PostJSONLD returns the BlogPosting structured data of a post. The output
// is safe to embed in a script element: encoding/json escapes <, > and &.
func PostJSONLD(site settings.SiteConfig, p post.Post) (template.JS, error) {
	url := strings.TrimRight(site.URL, "/") + p.Path()
	author := p.Author
	if author == "" {
		author = site.Author
	}
	doc := blogPosting{
		Context:          "https://schema.org",
		Type:             "BlogPosting",
		Headline:         p.Title,
		Description:      p.Summary,
		URL:              url,
		Author:           jsonLDThing{Type: "Person", Name: author},
		MainEntityOfPage: jsonLDThing{Type: "WebPage", ID: url},
	}
	if !p.Date.IsZero() {
		doc.DatePublished = p.Date.Format(time.RFC3339)
		doc.DateModified = doc.DatePublished
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return template.JS(b), nil
}
