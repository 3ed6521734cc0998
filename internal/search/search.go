// Package search implements the hybrid restaurant search: a keyword query
// against the group's own records and a live third-party place search,
// run side by side.
package search

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/nitesh/gastronomos/internal/metrics"
	"github.com/nitesh/gastronomos/pkg/models"
)

const (
	LocalLimit     = 6
	ExternalLimit  = 5
	DefaultTimeout = 10 * time.Second
	minQueryRunes  = 2
)

// Store runs the keyword query against group-curated records.
type Store interface {
	SearchRestaurants(ctx context.Context, intent models.QueryIntent, limit int) ([]models.Restaurant, error)
}

// PlaceSearcher queries the external place-search provider.
type PlaceSearcher interface {
	SearchText(ctx context.Context, query string, limit int) ([]models.ExternalPlace, error)
}

// Searcher is the hybrid search orchestrator.
type Searcher struct {
	store   Store
	places  PlaceSearcher
	log     logrus.FieldLogger
	metrics *metrics.Metrics
	timeout time.Duration
}

// NewSearcher creates a Searcher. places may be nil when no provider is configured.
func NewSearcher(store Store, places PlaceSearcher, log logrus.FieldLogger, m *metrics.Metrics) *Searcher {
	return &Searcher{
		store:   store,
		places:  places,
		log:     log.WithField("component", "search"),
		metrics: m,
		timeout: DefaultTimeout,
	}
}

// WithTimeout overrides the per-branch timeout.
func (s *Searcher) WithTimeout(d time.Duration) *Searcher {
	s.timeout = d
	return s
}

// ChatSearch returns local and external matches for a free-text query.
// Queries shorter than two characters return empty results without touching
// either source. A failure in one branch leaves the other's results intact.
func (s *Searcher) ChatSearch(ctx context.Context, query string) models.SearchResults {
	res := models.SearchResults{
		Group:    []models.Restaurant{},
		External: []models.ExternalPlace{},
	}
	q := strings.TrimSpace(query)
	if utf8.RuneCountInString(q) < minQueryRunes {
		return res
	}

	intent := ExtractKeywords(q)
	s.log.WithFields(logrus.Fields{
		"cuisines":  intent.Cuisines,
		"city":      intent.City,
		"features":  intent.Features,
		"raw_words": intent.RawWords,
	}).Debug("chat search intent")

	// Branch errors are logged inside runBranch and never cancel the sibling.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.runBranch(ctx, "local", func(ctx context.Context) (int, error) {
			rows, err := s.searchLocal(ctx, intent)
			if err == nil {
				res.Group = rows
			}
			return len(rows), err
		})
	}()
	go func() {
		defer wg.Done()
		s.runBranch(ctx, "external", func(ctx context.Context) (int, error) {
			places, err := s.searchExternal(ctx, q)
			if err == nil {
				res.External = places
			}
			return len(places), err
		})
	}()
	wg.Wait()

	return res
}

// runBranch executes one search branch under its own timeout, converting
// errors and panics into a logged, empty result.
func (s *Searcher) runBranch(ctx context.Context, branch string, fn func(ctx context.Context) (int, error)) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	log := s.log.WithField("branch", branch)

	var err error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil {
			log.WithError(err).Warn("search branch failed")
			s.metrics.ObserveSearchBranch(branch, "error")
		}
	}()

	var n int
	n, err = fn(ctx)
	if err == nil {
		outcome := "hit"
		if n == 0 {
			outcome = "empty"
		}
		s.metrics.ObserveSearchBranch(branch, outcome)
	}
}

func (s *Searcher) searchLocal(ctx context.Context, intent models.QueryIntent) ([]models.Restaurant, error) {
	if intent.Empty() || s.store == nil {
		return []models.Restaurant{}, nil
	}
	rows, err := s.store.SearchRestaurants(ctx, intent, LocalLimit)
	if err != nil {
		return nil, fmt.Errorf("local search: %w", err)
	}
	for i := range rows {
		rows[i].Source = models.SourceDB
	}
	if rows == nil {
		rows = []models.Restaurant{}
	}
	return rows, nil
}

func (s *Searcher) searchExternal(ctx context.Context, query string) ([]models.ExternalPlace, error) {
	if s.places == nil {
		return []models.ExternalPlace{}, nil
	}
	places, err := s.places.SearchText(ctx, query, ExternalLimit)
	if err != nil {
		return nil, fmt.Errorf("external search: %w", err)
	}
	if places == nil {
		places = []models.ExternalPlace{}
	}
	return places, nil
}
