package reading

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// FeedSource is a named external feed shown on the feed page.
type FeedSource struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Validate checks that the source has a name and an absolute http(s) URL.
func (s FeedSource) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("feed name is empty")
	}
	raw := strings.TrimSpace(s.URL)
	if raw == "" {
		return errors.New("feed url is empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse feed url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("feed url %q must use http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("feed url %q has no host", raw)
	}
	return nil
}

// Normalize trims surrounding whitespace from the name and URL.
func (s FeedSource) Normalize() FeedSource {
	return FeedSource{
		Name: strings.TrimSpace(s.Name),
		URL:  strings.TrimSpace(s.URL),
	}
}
