// Package settings defines application-level configuration data.
package settings

import (
	"time"

	"github.com/wookhyung/blog/internal/domain/reading"
)

// SiteConfig describes the site itself, used for SEO and syndication.
type SiteConfig struct {
	Title       string `yaml:"title" kong:"help='Default page title',default='WOOKHYUNG.'"`
	SiteName    string `yaml:"site_name" kong:"help='Site name used in page title suffixes',default='WOOKHYUNG.'"`
	Description string `yaml:"description" kong:"help='Site description',default='개발하면서 배운 것들을 기록합니다.'"`
	URL         string `yaml:"url" kong:"help='Canonical site URL without trailing slash',default='https://wookhyung.dev'"`
	Language    string `yaml:"language" kong:"help='Content language',default='ko'"`
	Locale      string `yaml:"locale" kong:"help='OpenGraph locale and date formatting locale',default='ko_KR'"`
	Author      string `yaml:"author" kong:"help='Author name',default='Wookhyung'"`
	Twitter     string `yaml:"twitter" kong:"help='Twitter handle'"`
	RSSPath     string `yaml:"rss_path" kong:"help='Route of the site RSS feed',default='/rss.xml'"`
}

// FetchConfig controls how external feeds are fetched.
type FetchConfig struct {
	PerFeedTimeoutSeconds int    `yaml:"per_feed_timeout_seconds" kong:"help='Timeout per feed source in seconds',default='10'"`
	BatchTimeoutSeconds   int    `yaml:"batch_timeout_seconds" kong:"help='Timeout for a whole aggregation in seconds',default='20'"`
	UserAgent             string `yaml:"user_agent" kong:"help='User-Agent sent to feed sources'"`
	SnippetLength         int    `yaml:"snippet_length" kong:"help='Maximum characters of an item snippet',default='200'"`
}

// PerFeedTimeout returns the per-source timeout as a duration.
func (c FetchConfig) PerFeedTimeout() time.Duration {
	return time.Duration(c.PerFeedTimeoutSeconds) * time.Second
}

// BatchTimeout returns the aggregation timeout as a duration.
func (c FetchConfig) BatchTimeout() time.Duration {
	return time.Duration(c.BatchTimeoutSeconds) * time.Second
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Port                   int  `yaml:"port" kong:"help='HTTP port',default='3000'"`
	ReadTimeoutSeconds     int  `yaml:"read_timeout_seconds" kong:"help='HTTP read timeout in seconds',default='10'"`
	WriteTimeoutSeconds    int  `yaml:"write_timeout_seconds" kong:"help='HTTP write timeout in seconds',default='30'"`
	ShutdownTimeoutSeconds int  `yaml:"shutdown_timeout_seconds" kong:"help='Graceful shutdown timeout in seconds',default='10'"`
	Debug                  bool `yaml:"debug" kong:"help='Run the router in debug mode',default='false'"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level       string   `yaml:"level" kong:"help='Minimum log level (debug/info/warn/error)',default='info'"`
	Development bool     `yaml:"development" kong:"help='Disable log sampling',default='false'"`
	OutputPaths []string `yaml:"output_paths" kong:"help='Log output paths',default='stderr'"`
}

// Settings represents the application configuration.
type Settings struct {
	Site       SiteConfig           `yaml:"site" kong:"embed,prefix='site.'"`
	Feeds      []reading.FeedSource `yaml:"feeds" kong:"-"`
	Fetch      FetchConfig          `yaml:"fetch" kong:"embed,prefix='fetch.'"`
	Server     ServerConfig         `yaml:"server" kong:"embed,prefix='server.'"`
	Log        LogConfig            `yaml:"log" kong:"embed,prefix='log.'"`
	ContentDir string               `yaml:"content_dir" kong:"help='Directory holding markdown posts',default='content/posts'"`
}

// DefaultFeeds is the feed list written to a fresh configuration file.
func DefaultFeeds() []reading.FeedSource {
	return []reading.FeedSource{
		{Name: "Toss Tech", URL: "https://toss.tech/rss.xml"},
		{Name: "Kakao Tech", URL: "https://tech.kakao.com/feed/"},
		{Name: "The Go Blog", URL: "https://go.dev/blog/feed.atom"},
	}
}
