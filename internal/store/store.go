package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nitesh/gastronomos/pkg/models"
)

// ErrNotFound is returned by single-row lookups that match nothing.
var ErrNotFound = errors.New("not found")

const maxListLimit = 200

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// restaurantColumns selects every restaurant field with text columns
// coalesced to "" so NULLs scan into plain strings.
var restaurantColumns = []string{
	"r.id",
	"r.name",
	"COALESCE(r.url, '') AS url",
	"COALESCE(r.address, '') AS address",
	"COALESCE(r.description, '') AS description",
	"COALESCE(r.cuisine, '') AS cuisine",
	"r.price_range",
	"r.latitude",
	"r.longitude",
	"COALESCE(r.google_maps_url, '') AS google_maps_url",
	"COALESCE(r.apple_maps_url, '') AS apple_maps_url",
	"r.user_id",
	"r.created_at",
	"COALESCE(u.name, '') AS added_by",
}

type PgStore struct {
	db *sqlx.DB
}

func NewPgStore(db *sql.DB) *PgStore {
	return &PgStore{db: sqlx.NewDb(db, "postgres")}
}

func RunMigrations(db *sql.DB) error {
	initSQL := `
CREATE TABLE IF NOT EXISTS users(
  id UUID PRIMARY KEY,
  name TEXT NOT NULL,
  phone TEXT,
  role TEXT NOT NULL DEFAULT 'member'
);

CREATE TABLE IF NOT EXISTS restaurants(
  id UUID PRIMARY KEY,
  name TEXT NOT NULL,
  url TEXT,
  address TEXT,
  description TEXT,
  cuisine TEXT,
  price_range SMALLINT CHECK (price_range BETWEEN 1 AND 4),
  latitude DOUBLE PRECISION,
  longitude DOUBLE PRECISION,
  google_maps_url TEXT,
  apple_maps_url TEXT,
  user_id UUID NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  CHECK ((latitude IS NULL) = (longitude IS NULL))
);

CREATE INDEX IF NOT EXISTS idx_restaurants_created ON restaurants(created_at);
CREATE INDEX IF NOT EXISTS idx_restaurants_cuisine ON restaurants(LOWER(cuisine));
CREATE INDEX IF NOT EXISTS idx_users_phone ON users(phone);
`
	_, err := db.Exec(initSQL)
	return err
}

func (p *PgStore) selectRestaurants() sq.SelectBuilder {
	return psql.Select(restaurantColumns...).
		From("restaurants r").
		LeftJoin("users u ON u.id = r.user_id")
}

// SearchRestaurants matches records whose cuisine equals any detected label
// or whose name/description contains any feature or leftover word. A
// detected city narrows the match by address. Without any OR term the
// result is empty.
func (p *PgStore) SearchRestaurants(ctx context.Context, intent models.QueryIntent, limit int) ([]models.Restaurant, error) {
	query, ok := searchQuery(p.selectRestaurants(), intent, limit)
	if !ok {
		return []models.Restaurant{}, nil
	}
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build search query: %w", err)
	}
	rows := []models.Restaurant{}
	if err := p.db.SelectContext(ctx, &rows, sqlStr, args...); err != nil {
		return nil, fmt.Errorf("search restaurants: %w", err)
	}
	return rows, nil
}

func searchQuery(base sq.SelectBuilder, intent models.QueryIntent, limit int) (sq.SelectBuilder, bool) {
	or := sq.Or{}
	for _, c := range intent.Cuisines {
		or = append(or, sq.Expr("LOWER(r.cuisine) = LOWER(?)", c))
	}
	terms := append(append([]string{}, intent.Features...), intent.RawWords...)
	for _, t := range terms {
		like := "%" + escapeLike(t) + "%"
		or = append(or, sq.ILike{"r.name": like}, sq.ILike{"r.description": like})
	}
	if len(or) == 0 {
		return base, false
	}

	q := base.Where(or)
	if intent.City != "" {
		q = q.Where(sq.ILike{"r.address": "%" + escapeLike(intent.City) + "%"})
	}
	if limit <= 0 {
		limit = 6
	}
	return q.OrderBy("r.created_at DESC").Limit(uint64(limit)), true
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// FindByNameAddress returns the first record with the same name and address,
// compared case-insensitively.
func (p *PgStore) FindByNameAddress(ctx context.Context, name, address string) (*models.Restaurant, error) {
	sqlStr, args, err := lookupQuery(p.selectRestaurants(), name, address).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lookup query: %w", err)
	}
	var r models.Restaurant
	if err := p.db.GetContext(ctx, &r, sqlStr, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find restaurant: %w", err)
	}
	return &r, nil
}

func lookupQuery(base sq.SelectBuilder, name, address string) sq.SelectBuilder {
	return base.
		Where(sq.Expr("LOWER(r.name) = LOWER(?)", name)).
		Where(sq.Expr("LOWER(COALESCE(r.address, '')) = LOWER(?)", address)).
		Limit(1)
}

// CreateRestaurant inserts r, assigning an ID and creation time when unset.
func (p *PgStore) CreateRestaurant(ctx context.Context, r *models.Restaurant) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	sqlStr, args, err := insertQuery(r).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := p.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("insert restaurant id=%s: %w", r.ID, err)
	}
	return nil
}

// insertQuery stores empty text fields as NULL and passes the optional
// numeric fields through as pointers.
func insertQuery(r *models.Restaurant) sq.InsertBuilder {
	return psql.Insert("restaurants").
		Columns("id", "name", "url", "address", "description", "cuisine", "price_range",
			"latitude", "longitude", "google_maps_url", "apple_maps_url", "user_id", "created_at").
		Values(r.ID, r.Name, nullString(r.URL), nullString(r.Address), nullString(r.Description),
			nullString(r.Cuisine), r.PriceRange, r.Latitude, r.Longitude,
			nullString(r.GoogleMapsURL), nullString(r.AppleMapsURL), r.UserID, r.CreatedAt)
}

func (p *PgStore) ListRestaurants(ctx context.Context, limit int) ([]models.Restaurant, error) {
	sqlStr, args, err := listQuery(p.selectRestaurants(), limit).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}
	rows := []models.Restaurant{}
	if err := p.db.SelectContext(ctx, &rows, sqlStr, args...); err != nil {
		return nil, fmt.Errorf("list restaurants: %w", err)
	}
	return rows, nil
}

func listQuery(base sq.SelectBuilder, limit int) sq.SelectBuilder {
	if limit <= 0 || limit > maxListLimit {
		limit = 50
	}
	return base.OrderBy("r.created_at DESC").Limit(uint64(limit))
}

// FindUserByPhone matches on the trailing nine digits of the stored phone,
// so numbers saved with or without a country prefix both resolve.
func (p *PgStore) FindUserByPhone(ctx context.Context, digits string) (*models.User, error) {
	if digits == "" {
		return nil, ErrNotFound
	}
	sqlStr, args, err := userByPhoneQuery(digits).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build user lookup: %w", err)
	}
	var u models.User
	if err := p.db.GetContext(ctx, &u, sqlStr, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func userByPhoneQuery(digits string) sq.SelectBuilder {
	return psql.Select("id", "name", "COALESCE(phone, '') AS phone", "role").
		From("users").
		Where(sq.Expr(`RIGHT(regexp_replace(COALESCE(phone, ''), '\D', '', 'g'), 9) = RIGHT(?, 9)`, digits)).
		Limit(1)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
