// Package config handles configuration loading and saving.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"

	"github.com/wookhyung/blog/internal/application/settings"
	"github.com/wookhyung/blog/internal/application/usecase"
	"github.com/wookhyung/blog/internal/domain/reading"
)

// ConfigurationError reports a feed entry that was dropped at load time.
type ConfigurationError struct {
	Index  int
	Source reading.FeedSource
	Err    error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("feeds[%d] (%q): %v", e.Index, e.Source.Name, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Store manages persisted application settings.
type Store struct {
	// Settings.Feeds holds only the entries that passed validation.
	Settings settings.Settings
	// Invalid lists feed entries that failed validation and were not loaded.
	Invalid []*ConfigurationError
	// feeds is the list as written in the file, invalid entries included.
	feeds      []reading.FeedSource
	configPath string
}

// DefaultPath returns $XDG_CONFIG_HOME/blog/config.yaml, falling back to
// ~/.config/blog/config.yaml.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "blog", "config.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "blog", "config.yaml"), nil
}

// Load loads the configuration from the specified path or default location.
func Load(customPath ...string) (*Store, error) {
	var configPath string
	if len(customPath) > 0 && customPath[0] != "" {
		configPath = customPath[0]
	} else {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		configPath = p
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0750); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	cfg := settings.Settings{}
	store := &Store{configPath: configPath}

	raw, err := os.ReadFile(configPath)
	exists := err == nil
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var options []kong.Option
	if exists {
		options = append(options, kong.Configuration(yamlKongLoader, configPath))
	}

	parser, err := kong.New(&cfg, options...)
	if err != nil {
		return nil, err
	}
	if _, err := parser.Parse([]string{}); err != nil {
		return nil, err
	}

	cfg.Feeds = settings.DefaultFeeds()
	if exists {
		feeds, ok, err := decodeFeeds(raw)
		if err != nil {
			return nil, err
		}
		if ok {
			cfg.Feeds = feeds
		}
	}

	cfg.Site.URL = strings.TrimRight(strings.TrimSpace(cfg.Site.URL), "/")
	store.Settings = cfg
	store.setFeeds(cfg.Feeds)

	if !exists {
		if err := store.Save(); err != nil {
			return nil, fmt.Errorf("failed to save default config: %w", err)
		}
	}

	return store, nil
}

// decodeFeeds reads the feeds list, which kong cannot resolve. ok is false
// when the file has no feeds key.
func decodeFeeds(raw []byte) ([]reading.FeedSource, bool, error) {
	var doc struct {
		Feeds *[]reading.FeedSource `yaml:"feeds"`
	}
	if err := yaml.NewDecoder(bytes.NewReader(raw)).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to decode feeds: %w", err)
	}
	if doc.Feeds == nil {
		return nil, false, nil
	}
	return *doc.Feeds, true, nil
}

// setFeeds replaces the file's feed list and revalidates it.
func (s *Store) setFeeds(feeds []reading.FeedSource) {
	s.feeds = feeds
	s.Settings.Feeds, s.Invalid = validateFeeds(feeds)
}

func validateFeeds(feeds []reading.FeedSource) ([]reading.FeedSource, []*ConfigurationError) {
	valid := make([]reading.FeedSource, 0, len(feeds))
	var invalid []*ConfigurationError
	for i, f := range feeds {
		f = f.Normalize()
		if err := f.Validate(); err != nil {
			invalid = append(invalid, &ConfigurationError{Index: i, Source: f, Err: err})
			continue
		}
		valid = append(valid, f)
	}
	return valid, invalid
}

func yamlKongLoader(r io.Reader) (kong.Resolver, error) {
	values := map[string]any{}
	if err := yaml.NewDecoder(r).Decode(&values); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}

	var f kong.ResolverFunc = func(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
		for _, name := range []string{flag.Name, strings.ReplaceAll(flag.Name, "-", "_")} {
			if v, ok := lookup(values, strings.Split(name, ".")); ok {
				return v, nil
			}
		}
		return nil, nil
	}
	return f, nil
}

func lookup(values map[string]any, path []string) (any, bool) {
	curr := values
	for i, part := range path {
		v, ok := curr[part]
		if !ok {
			return nil, false
		}
		if i == len(path)-1 {
			return v, true
		}
		next, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}
		curr = next
	}
	return nil, false
}

// Path returns the file the store reads and writes.
func (s *Store) Path() string { return s.configPath }

// Sources returns a copy of the configured feed sources.
func (s *Store) Sources() []reading.FeedSource {
	out := make([]reading.FeedSource, len(s.Settings.Feeds))
	copy(out, s.Settings.Feeds)
	return out
}

// FetchOptions converts the fetch settings for the aggregator.
func (s *Store) FetchOptions() usecase.FeedFetchOptions {
	f := s.Settings.Fetch
	return usecase.FeedFetchOptions{
		PerFeedTimeout: f.PerFeedTimeout(),
		BatchTimeout:   f.BatchTimeout(),
		UserAgent:      f.UserAgent,
		SnippetLength:  f.SnippetLength,
	}
}

// Add validates a feed source, appends it and saves the configuration.
func (s *Store) Add(source reading.FeedSource) error {
	source = source.Normalize()
	if err := source.Validate(); err != nil {
		return &ConfigurationError{Index: len(s.feeds), Source: source, Err: err}
	}
	s.setFeeds(append(slices.Clone(s.feeds), source))
	return s.Save()
}

// Remove deletes the feed at index in Settings.Feeds and saves the
// configuration. Invalid entries stay in the file.
func (s *Store) Remove(index int) error {
	pos, ok := s.filePosition(index)
	if !ok {
		return fmt.Errorf("invalid feed index: %d", index)
	}
	s.setFeeds(slices.Delete(slices.Clone(s.feeds), pos, pos+1))
	return s.Save()
}

// filePosition maps an index into Settings.Feeds to its position in the
// file's feed list.
func (s *Store) filePosition(index int) (int, bool) {
	if index < 0 || index >= len(s.Settings.Feeds) {
		return 0, false
	}
	skipped := make(map[int]bool, len(s.Invalid))
	for _, e := range s.Invalid {
		skipped[e.Index] = true
	}
	n := 0
	for pos := range s.feeds {
		if skipped[pos] {
			continue
		}
		if n == index {
			return pos, true
		}
		n++
	}
	return 0, false
}

// Save writes the current settings to the config file. The feed list is
// written as it was loaded, so entries in Invalid are kept for the user to
// fix.
func (s *Store) Save() error {
	f, err := os.Create(s.configPath)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	out := s.Settings
	out.Feeds = s.feeds
	if err := enc.Encode(out); err != nil {
		return err
	}
	return enc.Close()
}
