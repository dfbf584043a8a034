package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wookhyung/blog/internal/application/settings"
	"github.com/wookhyung/blog/internal/infrastructure/logger"
)

func writeFixture(t *testing.T) (configPath, outDir string) {
	t.Helper()
	dir := t.TempDir()
	postsDir := filepath.Join(dir, "posts")
	require.NoError(t, os.MkdirAll(postsDir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(postsDir, "hello.md"),
		[]byte("---\ntitle: Hello\nsummary: first\ndate: 2024-01-15\n---\nbody\n"), 0o600))

	configPath = filepath.Join(dir, "config.yaml")
	cfg := "site:\n  url: https://blog.example.com\ncontent_dir: " + postsDir + "\nfeeds: []\nlog:\n  output_paths: [" + filepath.Join(dir, "log.json") + "]\n"
	require.NoError(t, os.WriteFile(configPath, []byte(cfg), 0o600))
	return configPath, filepath.Join(dir, "public")
}

func TestExportWritesDocuments(t *testing.T) {
	configPath, outDir := writeFixture(t)

	cmd := &ExportCmd{Dir: outDir}
	require.NoError(t, cmd.Run(&Globals{Config: configPath}))

	rss, err := os.ReadFile(filepath.Join(outDir, "rss.xml"))
	require.NoError(t, err)
	parsed, err := gofeed.NewParser().ParseString(string(rss))
	require.NoError(t, err)
	require.Len(t, parsed.Items, 1)
	assert.Equal(t, "https://blog.example.com/blog/hello", parsed.Items[0].Link)

	robots, err := os.ReadFile(filepath.Join(outDir, "robots.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(robots), "Sitemap: https://blog.example.com/sitemap.xml")

	_, err = os.Stat(filepath.Join(outDir, "sitemap.xml"))
	assert.NoError(t, err)
}

func TestSourcesAddAndRemove(t *testing.T) {
	configPath, _ := writeFixture(t)
	g := &Globals{Config: configPath}

	require.NoError(t, (&SourcesAddCmd{Name: "Go", URL: "https://go.dev/blog/feed.atom"}).Run(g))
	a, err := newApp(g, true)
	require.NoError(t, err)
	require.Len(t, a.store.Sources(), 1)
	assert.Equal(t, "Go", a.store.Sources()[0].Name)

	assert.Error(t, (&SourcesAddCmd{Name: "Bad", URL: "ftp://x"}).Run(g))

	require.NoError(t, (&SourcesRemoveCmd{Index: 0}).Run(g))
	a, err = newApp(g, true)
	require.NoError(t, err)
	assert.Empty(t, a.store.Sources())
}

func TestNewLoggerQuietDropsTerminalOutput(t *testing.T) {
	log, err := newLogger(settings.LogConfig{Level: "info", OutputPaths: []string{"stderr"}}, true)
	require.NoError(t, err)
	assert.IsType(t, &logger.NoOpLogger{}, log)

	file := filepath.Join(t.TempDir(), "log.json")
	log, err = newLogger(settings.LogConfig{Level: "info", OutputPaths: []string{"stderr", file}}, true)
	require.NoError(t, err)
	log.Info("kept")
	require.NoError(t, log.Sync())
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "kept")
}

func TestCLIParses(t *testing.T) {
	var cli CLI
	parser, err := kong.New(&cli, kong.Name("blog"))
	require.NoError(t, err)

	ctx, err := parser.Parse([]string{"--config", "/tmp/x.yaml", "feed", "--plain"})
	require.NoError(t, err)
	assert.Equal(t, "feed", ctx.Command())
	assert.True(t, cli.Feed.Plain)
	assert.Equal(t, "/tmp/x.yaml", cli.Config)

	ctx, err = parser.Parse([]string{"sources", "add", "Go", "https://go.dev/blog/feed.atom"})
	require.NoError(t, err)
	assert.Equal(t, "sources add <name> <url>", ctx.Command())
}
