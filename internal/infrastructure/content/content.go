// Package content loads blog posts from markdown files with YAML front matter.
package content

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	"gopkg.in/yaml.v3"

	"github.com/wookhyung/blog/internal/domain/post"
	"github.com/wookhyung/blog/internal/infrastructure/logger"
)

// ErrMissingTitle is returned for a post whose front matter has no title.
var ErrMissingTitle = errors.New("front matter has no title")

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

type frontMatter struct {
	Title   string `yaml:"title"`
	Summary string `yaml:"summary"`
	Date    string `yaml:"date"`
	Author  string `yaml:"author"`
	Draft   bool   `yaml:"draft"`
}

// Loader reads *.md files from a file system. It implements
// usecase.PostRepository.
type Loader struct {
	FS       fs.FS
	Markdown goldmark.Markdown
	Log      logger.Logger
}

// NewLoader returns a Loader rendering GitHub flavoured markdown.
func NewLoader(fsys fs.FS, log logger.Logger) *Loader {
	if log == nil {
		log = logger.NewNop()
	}
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(util.Prioritized(externalLinks{}, 500)),
		),
	)
	return &Loader{FS: fsys, Markdown: md, Log: log}
}

// All loads every published post. Files are read on each call so edits show
// up without a restart.
func (l *Loader) All() ([]post.Post, error) {
	names, err := fs.Glob(l.FS, "*.md")
	if err != nil {
		return nil, err
	}

	posts := make([]post.Post, 0, len(names))
	for _, name := range names {
		src, err := fs.ReadFile(l.FS, name)
		if err != nil {
			return nil, fmt.Errorf("read post %s: %w", name, err)
		}
		p, draft, err := l.Parse(name, src)
		if err != nil {
			return nil, err
		}
		if draft {
			l.Log.Debug("skipping draft post", logger.String("file", name))
			continue
		}
		posts = append(posts, p)
	}
	post.SortNewestFirst(posts)
	return posts, nil
}

// Parse builds a post from one markdown document. The slug is the file name
// without its extension.
func (l *Loader) Parse(name string, src []byte) (post.Post, bool, error) {
	meta, body, err := splitFrontMatter(src)
	if err != nil {
		return post.Post{}, false, fmt.Errorf("post %s: %w", name, err)
	}

	var fm frontMatter
	if len(meta) > 0 {
		if err := yaml.Unmarshal(meta, &fm); err != nil {
			return post.Post{}, false, fmt.Errorf("post %s: front matter: %w", name, err)
		}
	}
	if strings.TrimSpace(fm.Title) == "" {
		return post.Post{}, false, fmt.Errorf("post %s: %w", name, ErrMissingTitle)
	}

	date, err := parseDate(fm.Date)
	if err != nil {
		return post.Post{}, false, fmt.Errorf("post %s: %w", name, err)
	}

	var html bytes.Buffer
	if err := l.Markdown.Convert(body, &html); err != nil {
		return post.Post{}, false, fmt.Errorf("post %s: render: %w", name, err)
	}

	base := path.Base(name)
	return post.Post{
		Slug:    strings.TrimSuffix(base, path.Ext(base)),
		Title:   strings.TrimSpace(fm.Title),
		Summary: strings.TrimSpace(fm.Summary),
		Date:    date,
		Author:  strings.TrimSpace(fm.Author),
		Body:    html.String(),
	}, fm.Draft, nil
}

// externalLinks makes links leaving the site open in a new browsing context.
type externalLinks struct{}

func (externalLinks) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if link, ok := n.(*ast.Link); ok && post.IsExternalLink(string(link.Destination)) {
			link.SetAttributeString("target", []byte("_blank"))
			link.SetAttributeString("rel", []byte("noopener noreferrer"))
		}
		return ast.WalkContinue, nil
	})
}

// splitFrontMatter separates a leading block fenced by "---" lines from the
// markdown body. A document without the opening fence has no front matter.
func splitFrontMatter(src []byte) ([]byte, []byte, error) {
	src = bytes.TrimPrefix(src, []byte("\ufeff"))
	src = bytes.ReplaceAll(src, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(src, []byte("---\n")) {
		return nil, src, nil
	}
	rest := src[len("---\n"):]
	if bytes.HasPrefix(rest, []byte("---\n")) {
		return nil, rest[len("---\n"):], nil
	}
	end := bytes.Index(rest, []byte("\n---\n"))
	if end < 0 {
		if bytes.HasSuffix(rest, []byte("\n---")) {
			return rest[:len(rest)-len("\n---")], nil, nil
		}
		return nil, nil, errors.New("unterminated front matter")
	}
	return rest[:end], rest[end+len("\n---\n"):], nil
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", raw)
}
