// Command blog serves the site and previews its aggregated feed.
package main

import (
	"github.com/alecthomas/kong"
)

// Globals are flags shared by every command.
type Globals struct {
	Config string `help:"Path to the configuration file." short:"c" type:"path"`
}

// CLI is the command tree.
type CLI struct {
	Globals

	Serve   ServeCmd   `cmd:"" help:"Serve the blog over HTTP."`
	Feed    FeedCmd    `cmd:"" help:"Preview the aggregated feed in the terminal."`
	Export  ExportCmd  `cmd:"" help:"Write rss.xml, sitemap.xml and robots.txt to a directory."`
	Sources SourcesCmd `cmd:"" help:"List, add or remove feed sources."`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("blog"),
		kong.Description("A personal blog with an aggregated RSS feed page."),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run(&cli.Globals))
}
