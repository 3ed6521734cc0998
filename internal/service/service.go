package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nitesh/gastronomos/internal/extract"
	"github.com/nitesh/gastronomos/internal/store"
	"github.com/nitesh/gastronomos/pkg/models"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrDuplicate    = errors.New("restaurant already added")
)

type RestaurantStore interface {
	FindByNameAddress(ctx context.Context, name, address string) (*models.Restaurant, error)
	CreateRestaurant(ctx context.Context, r *models.Restaurant) error
	ListRestaurants(ctx context.Context, limit int) ([]models.Restaurant, error)
	FindUserByPhone(ctx context.Context, digits string) (*models.User, error)
}

type Extractor interface {
	ExtractFromURL(ctx context.Context, rawURL string) *models.Candidate
	DetectInMessage(ctx context.Context, text string) *extract.Detection
}

type Searcher interface {
	ChatSearch(ctx context.Context, query string) models.SearchResults
}

type Service struct {
	repo     RestaurantStore
	extract  Extractor
	searcher Searcher
	log      logrus.FieldLogger
}

func NewService(repo RestaurantStore, ex Extractor, searcher Searcher, log logrus.FieldLogger) *Service {
	return &Service{repo: repo, extract: ex, searcher: searcher, log: log.WithField("component", "service")}
}

// AddRestaurant validates and persists a record. Records with an address
// are rejected with ErrDuplicate when the same name and address exist.
func (s *Service) AddRestaurant(ctx context.Context, r *models.Restaurant) error {
	r.Name = strings.TrimSpace(r.Name)
	r.Address = strings.TrimSpace(r.Address)
	if r.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if r.UserID == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	if r.PriceRange != nil && (*r.PriceRange < 1 || *r.PriceRange > 4) {
		return fmt.Errorf("%w: price_range must be between 1 and 4", ErrInvalidInput)
	}
	if (r.Latitude == nil) != (r.Longitude == nil) {
		return fmt.Errorf("%w: latitude and longitude go together", ErrInvalidInput)
	}

	if r.Address != "" {
		existing, err := s.repo.FindByNameAddress(ctx, r.Name, r.Address)
		switch {
		case err == nil && existing != nil:
			return ErrDuplicate
		case err != nil && !errors.Is(err, store.ErrNotFound):
			return fmt.Errorf("duplicate check: %w", err)
		}
	}

	if err := s.repo.CreateRestaurant(ctx, r); err != nil {
		return fmt.Errorf("create restaurant: %w", err)
	}
	s.log.WithFields(logrus.Fields{"id": r.ID, "name": r.Name, "user_id": r.UserID}).Info("restaurant added")
	return nil
}

func (s *Service) ListRestaurants(ctx context.Context, limit int) ([]models.Restaurant, error) {
	return s.repo.ListRestaurants(ctx, limit)
}

// ExtractFromURL returns a form pre-fill candidate, or nil.
func (s *Service) ExtractFromURL(ctx context.Context, rawURL string) *models.Candidate {
	return s.extract.ExtractFromURL(ctx, rawURL)
}

func (s *Service) ChatSearch(ctx context.Context, query string) models.SearchResults {
	return s.searcher.ChatSearch(ctx, query)
}

func (s *Service) DetectInMessage(ctx context.Context, text string) *extract.Detection {
	return s.extract.DetectInMessage(ctx, text)
}

// ResolveUser finds a member by the digits of their phone number.
// A miss returns (nil, nil).
func (s *Service) ResolveUser(ctx context.Context, phone string) (*models.User, error) {
	digits := PhoneDigits(phone)
	if digits == "" {
		return nil, nil
	}
	u, err := s.repo.FindUserByPhone(ctx, digits)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve user: %w", err)
	}
	return u, nil
}

// ImportCandidate turns a detected candidate into a record attributed to
// userID. Cuisine and price are left for a human to fill in.
func (s *Service) ImportCandidate(ctx context.Context, cand *models.Candidate, userID string) (*models.Restaurant, error) {
	if !cand.Named() {
		return nil, fmt.Errorf("%w: candidate has no name", ErrInvalidInput)
	}
	r := &models.Restaurant{
		Name:          cand.Name,
		URL:           cand.Website,
		Address:       cand.Address,
		Description:   cand.Description,
		GoogleMapsURL: cand.GoogleMapsURL,
		AppleMapsURL:  cand.AppleMapsURL,
		UserID:        userID,
	}
	if cand.Location != nil {
		lat, lng := cand.Location.Lat, cand.Location.Lng
		r.Latitude, r.Longitude = &lat, &lng
	}
	if err := s.AddRestaurant(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// PhoneDigits strips a messaging address ("34600111222@c.us") or a
// formatted number ("+34 600 11 12 22") down to its digits.
func PhoneDigits(s string) string {
	if i := strings.IndexByte(s, '@'); i >= 0 {
		s = s[:i]
	}
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
