package extract

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/nitesh/gastronomos/pkg/models"
)

const maxDescriptionRunes = 200

type pageKind int

const (
	// aggregatorPage is a listing site (TheFork, TripAdvisor); its URL is
	// never used as the restaurant's website.
	aggregatorPage pageKind = iota
	genericPage
)

func (k pageKind) minNameRunes() int {
	if k == genericPage {
		return 3
	}
	return 2
}

var (
	siteSuffixPattern = regexp.MustCompile(`(?is)\s*[-|–·]\s*(thefork|tripadvisor|yelp|google|apple|opentable|restaurantes|restaurante).*$`)
	titleSeparator    = regexp.MustCompile(`[-|–·]`)
)

// pageMeta is the subset of page metadata the extractors read.
type pageMeta struct {
	Title       string
	Description string
}

func parsePageMeta(body string) (pageMeta, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return pageMeta{}, fmt.Errorf("parse html: %w", err)
	}
	metaContent := func(selector string) func() string {
		return func() string {
			content, _ := doc.Find(selector).First().Attr("content")
			return strings.TrimSpace(content)
		}
	}
	return pageMeta{
		Title: firstNonEmpty(
			metaContent(`meta[property="og:title"]`),
			func() string { return strings.TrimSpace(doc.Find("title").First().Text()) },
		),
		Description: firstNonEmpty(
			metaContent(`meta[property="og:description"]`),
			metaContent(`meta[name="description"]`),
		),
	}, nil
}

// cleanTitle strips a trailing " - SiteName" suffix and keeps the text
// before the first remaining separator.
func cleanTitle(raw string) string {
	name := siteSuffixPattern.ReplaceAllString(raw, "")
	name = titleSeparator.Split(name, 2)[0]
	return strings.TrimSpace(name)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func (p *Pipeline) pageExtractor(kind pageKind) extractorFunc {
	return func(ctx context.Context, raw string, _ *url.URL) (*models.Candidate, error) {
		res, err := p.fetcher.Fetch(ctx, raw, nil)
		if err != nil {
			return nil, err
		}
		meta, err := parsePageMeta(res.Body)
		if err != nil {
			return nil, err
		}
		if meta.Title == "" {
			return nil, nil
		}

		name := cleanTitle(meta.Title)
		if utf8.RuneCountInString(name) < kind.minNameRunes() {
			return nil, nil
		}

		cand := &models.Candidate{
			Name:        name,
			Description: truncateRunes(meta.Description, maxDescriptionRunes),
		}
		if kind == genericPage {
			cand.Website = raw
		}

		if geo := p.geocode(ctx, name); geo != nil {
			cand.Address = geo.Address
			cand.Location = geoLocation(geo)
			cand.GoogleMapsURL = geo.GoogleMapsURL
			cand.AppleMapsURL = geo.AppleMapsURL
		}
		return cand, nil
	}
}
