// Package fetch performs the outbound page GETs of the extraction pipeline.
//
// Redirects are followed up to MaxRedirects hops; every failure is a *Error
// so callers can treat it uniformly as "no data".
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultMaxBytes  = 4 * 1024 * 1024
	DefaultUserAgent = "Mozilla/5.0 (compatible; Gastronomos-Bot/1.0)"
	AcceptLanguage   = "es-ES,es;q=0.9"
	MaxRedirects     = 5
)

// Result is the outcome of a successful fetch.
type Result struct {
	Body       string
	FinalURL   string
	StatusCode int
}

// Error wraps any failure to obtain a usable response.
type Error struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: http %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

var errTooManyRedirects = errors.New("too many redirects")

// Config configures the fetcher.
type Config struct {
	Timeout   time.Duration // Default: 10s.
	MaxBytes  int64         // Max body size read. Default: 4MB.
	UserAgent string
	// Transport is swapped in tests.
	Transport http.RoundTripper
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = DefaultMaxBytes
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
}

// Fetcher performs HTTP GETs with bounded redirects and a timeout.
type Fetcher struct {
	client *http.Client
	config Config
}

// New creates a Fetcher.
func New(cfg Config) *Fetcher {
	cfg.defaults()
	return &Fetcher{
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: cfg.Transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= MaxRedirects {
					return errTooManyRedirects
				}
				return nil
			},
		},
		config: cfg,
	}
}

// Fetch GETs rawURL. Headers in extra override the defaults (User-Agent,
// Accept, Accept-Language). Responses with status >= 400 are errors.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, extra http.Header) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &Error{URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", AcceptLanguage)
	for k, vs := range extra {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &Error{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, &Error{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBytes))
	if err != nil {
		return nil, &Error{URL: rawURL, Err: fmt.Errorf("read body: %w", err)}
	}

	return &Result{
		Body:       string(body),
		FinalURL:   resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
	}, nil
}

// Resolve follows redirects from rawURL and returns the final URL. The body
// is not read.
func (f *Fetcher) Resolve(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &Error{URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept-Language", AcceptLanguage)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &Error{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()
	return resp.Request.URL.String(), nil
}
