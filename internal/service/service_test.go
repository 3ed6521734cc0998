package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/nitesh/gastronomos/internal/extract"
	"github.com/nitesh/gastronomos/internal/store"
	"github.com/nitesh/gastronomos/pkg/models"
)

type memStore struct {
	restaurants []models.Restaurant
	users       []models.User
	findErr     error
	createErr   error
}

func (m *memStore) FindByNameAddress(_ context.Context, name, address string) (*models.Restaurant, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	for i := range m.restaurants {
		r := m.restaurants[i]
		if strings.EqualFold(r.Name, name) && strings.EqualFold(r.Address, address) {
			return &r, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memStore) CreateRestaurant(_ context.Context, r *models.Restaurant) error {
	if m.createErr != nil {
		return m.createErr
	}
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	m.restaurants = append(m.restaurants, *r)
	return nil
}

func (m *memStore) ListRestaurants(_ context.Context, limit int) ([]models.Restaurant, error) {
	out := []models.Restaurant{}
	for i := len(m.restaurants) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.restaurants[i])
	}
	return out, nil
}

func (m *memStore) FindUserByPhone(_ context.Context, digits string) (*models.User, error) {
	for i := range m.users {
		u := m.users[i]
		if strings.HasSuffix(PhoneDigits(u.Phone), digits[max(0, len(digits)-9):]) {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

type stubExtractor struct {
	cand *models.Candidate
}

func (s stubExtractor) ExtractFromURL(context.Context, string) *models.Candidate { return s.cand }

func (s stubExtractor) DetectInMessage(_ context.Context, text string) *extract.Detection {
	if s.cand == nil {
		return nil
	}
	return &extract.Detection{URL: text, Info: s.cand}
}

type stubSearcher struct{}

func (stubSearcher) ChatSearch(context.Context, string) models.SearchResults {
	return models.SearchResults{Group: []models.Restaurant{}, External: []models.ExternalPlace{}}
}

func newTestService(repo RestaurantStore, cand *models.Candidate) *Service {
	logger, _ := test.NewNullLogger()
	return NewService(repo, stubExtractor{cand: cand}, stubSearcher{}, logger)
}

func TestAddRestaurant(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a record", func(t *testing.T) {
		repo := &memStore{}
		svc := newTestService(repo, nil)
		r := &models.Restaurant{Name: "  Casa Lucio ", Address: "Cava Baja 35", UserID: "u1"}
		require.NoError(t, svc.AddRestaurant(ctx, r))
		require.NotEmpty(t, r.ID)
		require.Equal(t, "Casa Lucio", r.Name)
		require.Len(t, repo.restaurants, 1)
	})

	t.Run("same name and address is a duplicate", func(t *testing.T) {
		repo := &memStore{}
		svc := newTestService(repo, nil)
		require.NoError(t, svc.AddRestaurant(ctx, &models.Restaurant{Name: "Casa Lucio", Address: "Cava Baja 35", UserID: "u1"}))
		err := svc.AddRestaurant(ctx, &models.Restaurant{Name: "Casa Lucio", Address: "Cava Baja 35", UserID: "u2"})
		require.ErrorIs(t, err, ErrDuplicate)
		require.Len(t, repo.restaurants, 1)
	})

	t.Run("no address skips the duplicate check", func(t *testing.T) {
		repo := &memStore{}
		svc := newTestService(repo, nil)
		require.NoError(t, svc.AddRestaurant(ctx, &models.Restaurant{Name: "Bar Pepe", UserID: "u1"}))
		require.NoError(t, svc.AddRestaurant(ctx, &models.Restaurant{Name: "Bar Pepe", UserID: "u1"}))
		require.Len(t, repo.restaurants, 2)
	})

	t.Run("validation", func(t *testing.T) {
		svc := newTestService(&memStore{}, nil)
		bad := 5
		lat := 40.4
		for _, r := range []*models.Restaurant{
			{Name: " ", UserID: "u1"},
			{Name: "X", UserID: ""},
			{Name: "X", UserID: "u1", PriceRange: &bad},
			{Name: "X", UserID: "u1", Latitude: &lat},
		} {
			require.ErrorIs(t, svc.AddRestaurant(ctx, r), ErrInvalidInput)
		}
	})

	t.Run("store failure is wrapped", func(t *testing.T) {
		boom := errors.New("boom")
		svc := newTestService(&memStore{findErr: boom}, nil)
		err := svc.AddRestaurant(ctx, &models.Restaurant{Name: "X", Address: "Y", UserID: "u1"})
		require.ErrorIs(t, err, boom)
		require.NotErrorIs(t, err, ErrDuplicate)
	})
}

func TestImportCandidate(t *testing.T) {
	ctx := context.Background()

	t.Run("copies candidate fields", func(t *testing.T) {
		repo := &memStore{}
		svc := newTestService(repo, nil)
		cand := &models.Candidate{
			Name:          "Casa Lucio",
			Address:       "Cava Baja 35",
			Location:      &models.LatLng{Lat: 40.41, Lng: -3.71},
			GoogleMapsURL: "https://www.google.com/maps?q=40.41,-3.71",
			Website:       "https://casalucio.es",
		}
		r, err := svc.ImportCandidate(ctx, cand, "u1")
		require.NoError(t, err)
		require.Equal(t, "https://casalucio.es", r.URL)
		require.Equal(t, 40.41, *r.Latitude)
		require.Equal(t, -3.71, *r.Longitude)
		require.Nil(t, r.PriceRange)
		require.Empty(t, r.Cuisine)
	})

	t.Run("unnamed candidate is rejected", func(t *testing.T) {
		svc := newTestService(&memStore{}, nil)
		_, err := svc.ImportCandidate(ctx, &models.Candidate{Address: "40.4, -3.7"}, "u1")
		require.ErrorIs(t, err, ErrInvalidInput)
		_, err = svc.ImportCandidate(ctx, nil, "u1")
		require.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestResolveUser(t *testing.T) {
	repo := &memStore{users: []models.User{{ID: "u1", Name: "Ana", Phone: "+34 600 111 222"}}}
	svc := newTestService(repo, nil)

	u, err := svc.ResolveUser(context.Background(), "34600111222@c.us")
	require.NoError(t, err)
	require.Equal(t, "Ana", u.Name)

	u, err = svc.ResolveUser(context.Background(), "34999999999@c.us")
	require.NoError(t, err)
	require.Nil(t, u)

	u, err = svc.ResolveUser(context.Background(), "status@broadcast")
	require.NoError(t, err)
	require.Nil(t, u)
}

func TestPhoneDigits(t *testing.T) {
	require.Equal(t, "34600111222", PhoneDigits("34600111222@c.us"))
	require.Equal(t, "34600111222", PhoneDigits("+34 600-11-12-22"))
	require.Empty(t, PhoneDigits("@g.us"))
}
