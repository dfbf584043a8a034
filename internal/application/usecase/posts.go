package usecase

import (
	"errors"
	"strings"

	"github.com/wookhyung/blog/internal/domain/post"
)

// ErrPostNotFound is returned when no post has the requested slug.
var ErrPostNotFound = errors.New("post not found")

// PostRepository abstracts access to published posts.
type PostRepository interface {
	All() ([]post.Post, error)
}

// PostService provides read access to the blog's posts.
type PostService struct {
	Repo PostRepository
}

// NewPostService constructs a PostService.
func NewPostService(repo PostRepository) PostService {
	return PostService{Repo: repo}
}

// List returns all posts, newest first.
func (s PostService) List() ([]post.Post, error) {
	posts, err := s.Repo.All()
	if err != nil {
		return nil, err
	}
	sorted := make([]post.Post, len(posts))
	copy(sorted, posts)
	post.SortNewestFirst(sorted)
	return sorted, nil
}

// BySlug returns the post with the given slug.
func (s PostService) BySlug(slug string) (post.Post, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return post.Post{}, ErrPostNotFound
	}
	posts, err := s.Repo.All()
	if err != nil {
		return post.Post{}, err
	}
	for _, p := range posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return post.Post{}, ErrPostNotFound
}
