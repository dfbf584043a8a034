package main

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wookhyung/blog/internal/infrastructure/syndication"
	"github.com/wookhyung/blog/internal/presentation/tui"
	"github.com/wookhyung/blog/internal/presentation/web"
)

// ServeCmd runs the HTTP server.
type ServeCmd struct {
	Port int `help:"Override the configured HTTP port."`
}

// Run serves until SIGINT or SIGTERM.
func (c *ServeCmd) Run(g *Globals) error {
	a, err := newApp(g, false)
	if err != nil {
		return err
	}
	defer func() { _ = a.log.Sync() }()

	serverCfg := a.store.Settings.Server
	if c.Port > 0 {
		serverCfg.Port = c.Port
	}

	h, err := web.NewHandler(a.store.Settings.Site, a.posts, a.reading, a.dates, a.metrics.Handler())
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}
	srv := web.NewServer(serverCfg, a.log, h.Register)
	return srv.Run(context.Background())
}

// FeedCmd previews the aggregated feed.
type FeedCmd struct {
	Plain bool `help:"Print items as text instead of opening the interactive view."`
}

// Run aggregates the configured sources and shows the result.
func (c *FeedCmd) Run(g *Globals) error {
	a, err := newApp(g, !c.Plain)
	if err != nil {
		return err
	}
	defer func() { _ = a.log.Sync() }()

	if c.Plain {
		return tui.WritePlain(os.Stdout, a.reading.FeedPage(context.Background()), a.dates.Format)
	}
	_, err = tea.NewProgram(tui.NewModel(a.reading, a.dates.Format), tea.WithAltScreen()).Run()
	return err
}

// ExportCmd writes the site's machine-readable documents.
type ExportCmd struct {
	Dir string `arg:"" optional:"" default:"public" help:"Output directory." type:"path"`
}

// Run renders rss.xml, sitemap.xml and robots.txt into Dir.
func (c *ExportCmd) Run(g *Globals) error {
	a, err := newApp(g, false)
	if err != nil {
		return err
	}
	defer func() { _ = a.log.Sync() }()

	posts, err := a.posts.List()
	if err != nil {
		return err
	}
	site := a.store.Settings.Site
	now := time.Now()

	rss, err := syndication.SiteFeed(site, posts, now)
	if err != nil {
		return err
	}
	sitemap, err := syndication.Sitemap(site, posts, now)
	if err != nil {
		return err
	}

	rssName := path.Base(site.RSSPath)
	if rssName == "." || rssName == "/" {
		rssName = "rss.xml"
	}
	files := map[string][]byte{
		rssName:       []byte(rss),
		"sitemap.xml": sitemap,
		"robots.txt":  []byte(syndication.Robots(site)),
	}

	if err := os.MkdirAll(c.Dir, 0o750); err != nil {
		return err
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(c.Dir, name), body, 0o600); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	fmt.Printf("wrote %d posts to %s\n", len(posts), c.Dir)
	return nil
}

// SourcesCmd groups feed source management.
type SourcesCmd struct {
	List   SourcesListCmd   `cmd:"" default:"1" help:"List configured feed sources."`
	Add    SourcesAddCmd    `cmd:"" help:"Add a feed source."`
	Remove SourcesRemoveCmd `cmd:"" help:"Remove a feed source by index."`
}

// SourcesListCmd prints the configured sources.
type SourcesListCmd struct{}

// Run lists the valid sources, then any dropped entries.
func (c *SourcesListCmd) Run(g *Globals) error {
	a, err := newApp(g, true)
	if err != nil {
		return err
	}
	for i, s := range a.sources.List() {
		fmt.Printf("%d. %s  %s\n", i, s.Name, s.URL)
	}
	for _, invalid := range a.store.Invalid {
		fmt.Printf("invalid: %v\n", invalid)
	}
	return nil
}

// SourcesAddCmd appends a source.
type SourcesAddCmd struct {
	Name string `arg:"" help:"Display name of the source."`
	URL  string `arg:"" help:"RSS or Atom URL."`
}

// Run validates and saves the new source.
func (c *SourcesAddCmd) Run(g *Globals) error {
	a, err := newApp(g, true)
	if err != nil {
		return err
	}
	sources, err := a.sources.Add(c.Name, c.URL)
	if err != nil {
		return err
	}
	fmt.Printf("added %s to %s (%d sources)\n", c.Name, a.store.Path(), len(sources))
	return nil
}

// SourcesRemoveCmd deletes a source.
type SourcesRemoveCmd struct {
	Index int `arg:"" help:"Index shown by 'sources list'."`
}

// Run removes the source and saves the configuration.
func (c *SourcesRemoveCmd) Run(g *Globals) error {
	a, err := newApp(g, true)
	if err != nil {
		return err
	}
	sources, err := a.sources.Remove(c.Index)
	if err != nil {
		return err
	}
	fmt.Printf("%d sources remain in %s\n", len(sources), a.store.Path())
	return nil
}
