package usecase

import (
	"github.com/wookhyung/blog/internal/domain/reading"
)

// SourceRepository abstracts persistence for the configured feed sources.
type SourceRepository interface {
	Sources() []reading.FeedSource
	Add(source reading.FeedSource) error
	Remove(index int) error
}

// SubscriptionService manages which feeds the feed page aggregates.
type SubscriptionService struct {
	Repo SourceRepository
}

// NewSubscriptionService constructs a SubscriptionService.
func NewSubscriptionService(repo SourceRepository) SubscriptionService {
	return SubscriptionService{Repo: repo}
}

// List returns the configured sources in aggregation order.
func (s SubscriptionService) List() []reading.FeedSource {
	return s.Repo.Sources()
}

// Add validates a new source, stores it and returns the updated list.
func (s SubscriptionService) Add(name, url string) ([]reading.FeedSource, error) {
	source := reading.FeedSource{Name: name, URL: url}.Normalize()
	if err := source.Validate(); err != nil {
		return nil, err
	}
	if err := s.Repo.Add(source); err != nil {
		return nil, err
	}
	return s.Repo.Sources(), nil
}

// Remove deletes a source by index and returns the updated list.
func (s SubscriptionService) Remove(index int) ([]reading.FeedSource, error) {
	if err := s.Repo.Remove(index); err != nil {
		return nil, err
	}
	return s.Repo.Sources(), nil
}
