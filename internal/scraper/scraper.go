// Package scraper harvests raw event records from the public agenda pages
// of each source and refreshes the per-source JSON cache files consumed by
// the ingestion pipeline.
package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/quehaypahacer/agenda-ingest/internal/config"
	"github.com/quehaypahacer/agenda-ingest/internal/event"
)

const (
	userAgent = "agenda-ingest/1.0 (github.com/quehaypahacer/agenda-ingest)"
	timeout   = 15 * time.Second
)

// Scraper extracts the raw records for one source.
type Scraper interface {
	Name() string
	Scrape(ctx context.Context) ([]event.RawRecord, error)
}

// For returns the scraper registered for a source name, or nil when the
// source has no scraper (cache/remote payloads only).
func For(src config.Source) Scraper {
	switch src.Name {
	case "idartes":
		return &Idartes{client: newClient()}
	case "pablotobon":
		return &PabloTobon{client: newClient()}
	case "plaza":
		return &Plaza{client: newClient()}
	default:
		return nil
	}
}

func newClient() *http.Client {
	return &http.Client{Timeout: timeout}
}

// fetchDocument downloads a page and parses it into a goquery document.
func fetchDocument(ctx context.Context, client *http.Client, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return doc, nil
}

// WriteCache persists scraped records as the source's pretty-printed JSON
// cache file.
func WriteCache(path string, recs []event.RawRecord) error {
	b, err := json.MarshalIndent(recs, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding records: %w", err)
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	return nil
}

var (
	digitPattern = regexp.MustCompile(`\d+`)
	spacePattern = regexp.MustCompile(`\s{2,}`)
)

// cleanName strips noisy digits and redundant spaces from an event name.
func cleanName(raw string) string {
	if raw == "" {
		return event.NotAvailable
	}
	s := strings.TrimSpace(digitPattern.ReplaceAllString(raw, ""))
	return spacePattern.ReplaceAllString(s, " ")
}

// titleFromSlug recovers a readable name from a URL slug when an anchor
// has no text.
func titleFromSlug(href string) string {
	slug := strings.Trim(href, "/")
	if i := strings.LastIndex(slug, "/"); i >= 0 {
		slug = slug[i+1:]
	}
	if slug == "" {
		return ""
	}
	words := strings.Split(strings.ReplaceAll(slug, "-", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// textOr returns the trimmed text of the first match, or the sentinel
// when the selection is empty.
func textOr(sel *goquery.Selection, fallback string) string {
	if sel.Length() == 0 {
		return fallback
	}
	return strings.TrimSpace(sel.First().Text())
}
