// Package syndication renders the documents the site publishes for machines:
// its RSS feed, sitemap.xml and robots.txt.
package syndication

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/feeds"

	"github.com/wookhyung/blog/internal/application/settings"
	"github.com/wookhyung/blog/internal/domain/post"
)

// ContentTypeXML is the content type of every XML document served here.
const ContentTypeXML = "application/xml; charset=utf-8"

// SiteFeed renders an RSS 2.0 document of the given posts.
// now is the channel's build date.
func SiteFeed(site settings.SiteConfig, posts []post.Post, now time.Time) (string, error) {
	base := strings.TrimRight(site.URL, "/")
	feed := &feeds.Feed{
		Title:       site.Title,
		Link:        &feeds.Link{Href: base},
		Description: site.Description,
		Created:     now,
	}

	feed.Items = make([]*feeds.Item, 0, len(posts))
	for _, p := range posts {
		link := base + p.Path()
		feed.Items = append(feed.Items, &feeds.Item{
			Title:       p.Title,
			Link:        &feeds.Link{Href: link},
			Description: p.Summary,
			Id:          link,
			Created:     p.Date,
		})
	}

	rss := (&feeds.Rss{Feed: feed}).RssFeed()
	rss.Language = site.Language
	rss.LastBuildDate = now.Format(time.RFC1123Z)

	out, err := feeds.ToXML(rss)
	if err != nil {
		return "", fmt.Errorf("render rss: %w", err)
	}
	return out, nil
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// Sitemap renders sitemap.xml listing the home page, the feed page and
// every post.
func Sitemap(site settings.SiteConfig, posts []post.Post, now time.Time) ([]byte, error) {
	base := strings.TrimRight(site.URL, "/")
	today := now.UTC().Format("2006-01-02")

	set := urlSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	set.URLs = append(set.URLs,
		sitemapURL{Loc: base + "/", LastMod: today, ChangeFreq: "daily", Priority: "1.0"},
		sitemapURL{Loc: base + "/feed", LastMod: today, ChangeFreq: "hourly", Priority: "0.5"},
	)
	for _, p := range posts {
		u := sitemapURL{Loc: base + p.Path(), ChangeFreq: "monthly", Priority: "0.8"}
		if !p.Date.IsZero() {
			u.LastMod = p.Date.UTC().Format("2006-01-02")
		}
		set.URLs = append(set.URLs, u)
	}

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render sitemap: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}

// Robots renders robots.txt allowing every crawler and pointing at the sitemap.
func Robots(site settings.SiteConfig) string {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	b.WriteString("\n")
	fmt.Fprintf(&b, "Sitemap: %s/sitemap.xml\n", strings.TrimRight(site.URL, "/"))
	return b.String()
}
