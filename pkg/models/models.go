package models

import (
	"time"
)

// Restaurant is a group-curated record as persisted in the store.
type Restaurant struct {
	ID            string    `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	URL           string    `db:"url" json:"url,omitempty"`
	Address       string    `db:"address" json:"address,omitempty"`
	Description   string    `db:"description" json:"description,omitempty"`
	Cuisine       string    `db:"cuisine" json:"cuisine,omitempty"`
	PriceRange    *int      `db:"price_range" json:"price_range,omitempty"`
	Latitude      *float64  `db:"latitude" json:"latitude,omitempty"`
	Longitude     *float64  `db:"longitude" json:"longitude,omitempty"`
	GoogleMapsURL string    `db:"google_maps_url" json:"google_maps_url,omitempty"`
	AppleMapsURL  string    `db:"apple_maps_url" json:"apple_maps_url,omitempty"`
	UserID        string    `db:"user_id" json:"user_id"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`

	// AddedBy is joined from users at read time (not persisted).
	AddedBy string `db:"added_by" json:"added_by,omitempty"`
	Source  string `db:"-" json:"source,omitempty"`
}

// User is the minimal member record the bot needs to attribute imports.
type User struct {
	ID    string `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Phone string `db:"phone" json:"phone,omitempty"`
	Role  string `db:"role" json:"role"`
}

// LatLng is a coordinate pair. Candidates carry a nil *LatLng when no
// coordinates were discovered, so latitude and longitude are never set apart.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Candidate is a provisional restaurant produced by URL extraction,
// pending human confirmation. Empty strings mean "absent".
type Candidate struct {
	Name          string  `json:"name"`
	Address       string  `json:"address,omitempty"`
	Location      *LatLng `json:"location,omitempty"`
	GoogleMapsURL string  `json:"google_maps_url,omitempty"`
	AppleMapsURL  string  `json:"apple_maps_url,omitempty"`
	Website       string  `json:"website,omitempty"`
	Description   string  `json:"description,omitempty"`
}

// Named reports whether the candidate is usable by callers.
func (c *Candidate) Named() bool {
	return c != nil && c.Name != ""
}

// QueryIntent is the keyword partition of a free-text search query.
type QueryIntent struct {
	Cuisines []string `json:"cuisines"`
	City     string   `json:"city,omitempty"`
	Features []string `json:"features"`
	RawWords []string `json:"raw_words"`
}

// Empty reports whether the intent has nothing to OR-match on.
// A city alone does not count.
func (q QueryIntent) Empty() bool {
	return len(q.Cuisines) == 0 && len(q.Features) == 0 && len(q.RawWords) == 0
}

// ExternalPlace is a live third-party place-search hit.
type ExternalPlace struct {
	Name          string   `json:"name"`
	Address       string   `json:"address,omitempty"`
	CuisineLabel  string   `json:"cuisine_label,omitempty"`
	PriceLevel    int      `json:"price_level,omitempty"`
	Rating        *float64 `json:"rating,omitempty"`
	RatingCount   *int     `json:"rating_count,omitempty"`
	GoogleMapsURL string   `json:"google_maps_url,omitempty"`
	Website       string   `json:"website,omitempty"`
	PhotoURL      string   `json:"photo_url,omitempty"`
	Source        string   `json:"source"`
}

// SearchResults merges group-curated and external hits.
type SearchResults struct {
	Group    []Restaurant    `json:"group"`
	External []ExternalPlace `json:"external"`
}

const (
	SourceDB     = "db"
	SourceGoogle = "google"
)
