package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wookhyung/blog/internal/application/settings"
	"github.com/wookhyung/blog/internal/application/usecase"
	"github.com/wookhyung/blog/internal/domain/post"
	"github.com/wookhyung/blog/internal/domain/reading"
	"github.com/wookhyung/blog/internal/infrastructure/logger"
	"github.com/wookhyung/blog/internal/infrastructure/syndication"
)

//go:embed templates/*.html
var templateFS embed.FS

// PostSource is the read side of the blog used by the handlers.
type PostSource interface {
	List() ([]post.Post, error)
	BySlug(slug string) (post.Post, error)
}

// FeedPager builds the aggregated feed page.
type FeedPager interface {
	FeedPage(ctx context.Context) usecase.FeedPage
}

// Handler renders the site's pages and machine documents.
type Handler struct {
	Site    settings.SiteConfig
	Posts   PostSource
	Feed    FeedPager
	Dates   DateFormatter
	Metrics http.Handler
	Now     func() time.Time

	templates *template.Template
}

// NewHandler parses the page templates.
func NewHandler(site settings.SiteConfig, posts PostSource, feed FeedPager, dates DateFormatter, metrics http.Handler) (*Handler, error) {
	h := &Handler{
		Site:    site,
		Posts:   posts,
		Feed:    feed,
		Dates:   dates,
		Metrics: metrics,
		Now:     time.Now,
	}
	tmpl, err := template.New("site").Funcs(template.FuncMap{
		"date":      h.Dates.Format,
		"isoDate":   isoDate,
		"linkAttrs": linkAttrs,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	h.templates = tmpl
	return h, nil
}

// Register mounts every route on r.
func (h *Handler) Register(r *gin.Engine) {
	r.SetHTMLTemplate(h.templates)

	r.GET("/", h.index)
	r.GET("/blog/:slug", h.post)
	r.GET("/feed", h.feed)

	rssPath := h.Site.RSSPath
	if rssPath == "" {
		rssPath = "/rss.xml"
	}
	r.GET(rssPath, h.rss)
	r.GET("/sitemap.xml", h.sitemap)
	r.GET("/robots.txt", h.robots)
	r.GET("/healthz", h.health)
	if h.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.Metrics))
	}
	r.NoRoute(h.notFound)
}

type indexPage struct {
	Meta  Meta
	Site  settings.SiteConfig
	Posts []post.Post
}

type postPage struct {
	Meta Meta
	Site settings.SiteConfig
	Post post.Post
	Body template.HTML
}

type feedPage struct {
	Meta   Meta
	Site   settings.SiteConfig
	Items  []reading.Item
	Empty  bool
	Status string
	// EmptyText is shown instead of the list when there are no items.
	EmptyText string
}

type notFoundPage struct {
	Meta Meta
	Site settings.SiteConfig
}

func (h *Handler) index(c *gin.Context) {
	posts, err := h.Posts.List()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.HTML(http.StatusOK, "index.html", indexPage{
		Meta:  BuildMeta(h.Site, PageOverrides{}),
		Site:  h.Site,
		Posts: posts,
	})
}

func (h *Handler) post(c *gin.Context) {
	p, err := h.Posts.BySlug(c.Param("slug"))
	if errors.Is(err, usecase.ErrPostNotFound) {
		h.notFound(c)
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	meta := BuildMeta(h.Site, PageOverrides{
		Title:       p.Title,
		Description: p.Summary,
		Path:        p.Path(),
		Type:        "article",
	})
	ld, err := PostJSONLD(h.Site, p)
	if err != nil {
		h.fail(c, err)
		return
	}
	meta.JSONLD = ld

	c.HTML(http.StatusOK, "post.html", postPage{
		Meta: meta,
		Site: h.Site,
		Post: p,
		// Rendered from the site's own markdown files.
		Body: template.HTML(p.Body), //nolint:gosec
	})
}

func (h *Handler) feed(c *gin.Context) {
	page := h.Feed.FeedPage(c.Request.Context())
	if page.Empty() && page.Report.Requested > 0 {
		logger.FromContext(c.Request.Context()).Warn("feed page has no items",
			logger.Int("requested", page.Report.Requested),
			logger.Int("failed", page.Report.Failed),
			logger.Int("timed_out", page.Report.TimedOut),
		)
	}
	c.HTML(http.StatusOK, "feed.html", feedPage{
		Meta:      BuildMeta(h.Site, PageOverrides{Title: "Feed", Path: "/feed"}),
		Site:      h.Site,
		Items:     page.Items,
		Empty:     page.Empty(),
		Status:    page.StatusMessage(),
		EmptyText: usecase.FeedEmptyText,
	})
}

func (h *Handler) rss(c *gin.Context) {
	posts, err := h.Posts.List()
	if err != nil {
		h.fail(c, err)
		return
	}
	doc, err := syndication.SiteFeed(h.Site, posts, h.Now())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, syndication.ContentTypeXML, []byte(doc))
}

func (h *Handler) sitemap(c *gin.Context) {
	posts, err := h.Posts.List()
	if err != nil {
		h.fail(c, err)
		return
	}
	body, err := syndication.Sitemap(h.Site, posts, h.Now())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, syndication.ContentTypeXML, body)
}

func (h *Handler) robots(c *gin.Context) {
	c.String(http.StatusOK, syndication.Robots(h.Site))
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) notFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, "notfound.html", notFoundPage{
		Meta: BuildMeta(h.Site, PageOverrides{Title: "Not Found", Path: c.Request.URL.Path}),
		Site: h.Site,
	})
}

func (h *Handler) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

// linkAttrs returns the attributes, with a leading space, that make an
// external link open in a new browsing context. Site paths and anchors get
// none.
func linkAttrs(href string) template.HTMLAttr {
	if post.IsExternalLink(href) {
		return ` target="_blank" rel="noopener noreferrer"`
	}
	return ""
}

func isoDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
