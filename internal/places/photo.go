package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	PhotoMaxWidth = 800
	PhotoCacheTTL = 24 * time.Hour

	photoKeyPrefix = "places:photo:"
)

// PhotoCache stores resolved CDN photo URLs keyed by photo resource name.
type PhotoCache interface {
	Get(ctx context.Context, resource string) (string, bool)
	Set(ctx context.Context, resource, photoURL string)
}

// RedisPhotoCache is a PhotoCache backed by redis. Errors are treated as misses.
type RedisPhotoCache struct {
	rdb *redis.Client
	ttl time.Duration
	log logrus.FieldLogger
}

func NewRedisPhotoCache(rdb *redis.Client, log logrus.FieldLogger) *RedisPhotoCache {
	return &RedisPhotoCache{rdb: rdb, ttl: PhotoCacheTTL, log: log.WithField("component", "photo_cache")}
}

func (r *RedisPhotoCache) Get(ctx context.Context, resource string) (string, bool) {
	v, err := r.rdb.Get(ctx, photoKeyPrefix+resource).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		r.log.WithError(err).WithField("resource", resource).Debug("photo cache get failed")
	}
	if err != nil || v == "" {
		return "", false
	}
	return v, true
}

func (r *RedisPhotoCache) Set(ctx context.Context, resource, photoURL string) {
	if err := r.rdb.Set(ctx, photoKeyPrefix+resource, photoURL, r.ttl).Err(); err != nil {
		r.log.WithError(err).WithField("resource", resource).Debug("photo cache set failed")
	}
}

// PhotoURL resolves a photo resource name ("places/<id>/photos/<ref>") to a
// direct CDN URL. Any failure yields "".
func (c *Client) PhotoURL(ctx context.Context, resource string) string {
	if !c.Enabled() || resource == "" {
		return ""
	}
	if c.cache != nil {
		if u, ok := c.cache.Get(ctx, resource); ok {
			return u
		}
	}

	u, err := c.fetchPhotoURL(ctx, resource)
	if err != nil {
		c.log.WithError(err).WithField("resource", resource).Warn("photo lookup failed")
		return ""
	}
	if u != "" && c.cache != nil {
		c.cache.Set(ctx, resource, u)
	}
	return u
}

func (c *Client) fetchPhotoURL(ctx context.Context, resource string) (string, error) {
	q := url.Values{}
	q.Set("maxWidthPx", fmt.Sprint(PhotoMaxWidth))
	q.Set("key", c.apiKey)
	q.Set("skipHttpRedirect", "true")
	endpoint := c.baseURL + "/v1/" + resource + "/media?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("photo new request: %w", err)
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("photo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("photo request failed: status=%d", resp.StatusCode)
	}

	var parsed struct {
		PhotoURI string `json:"photoUri"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&parsed); err != nil {
		return "", fmt.Errorf("photo decode response: %w", err)
	}
	if parsed.PhotoURI == "" {
		return "", errors.New("photo response without photoUri")
	}
	return parsed.PhotoURI, nil
}
