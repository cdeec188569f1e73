// Package source resolves each configured source into a list of raw event
// records, preferring a fresh local cache over a remote fetch and
// repairing superficially malformed payloads before parsing.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	"github.com/quehaypahacer/agenda-ingest/internal/config"
	"github.com/quehaypahacer/agenda-ingest/internal/event"
)

const (
	userAgent    = "agenda-ingest/1.0 (github.com/quehaypahacer/agenda-ingest)"
	fetchTimeout = 20 * time.Second
	fetchRetries = 3
)

// ErrNoData means a source has neither a fresh local cache nor a remote
// location configured. The caller skips the source.
var ErrNoData = errors.New("no fresh local cache and no remote url configured")

// UnreadableError means a source's payload could not be parsed even after
// repair, or the remote fetch failed. The caller skips the source and the
// run continues.
type UnreadableError struct {
	Source string
	Err    error
}

func (e *UnreadableError) Error() string {
	return fmt.Sprintf("source %s unreadable: %v", e.Source, e.Err)
}

func (e *UnreadableError) Unwrap() error { return e.Err }

// Gateway reads source payloads from local cache files or remote HTTP(S)
// locations.
type Gateway struct {
	client *http.Client
	now    func() time.Time
}

// New creates a Gateway with a bounded per-call HTTP timeout.
func New() *Gateway {
	return &Gateway{
		client: &http.Client{Timeout: fetchTimeout},
		now:    time.Now,
	}
}

// Records returns the raw records for one source. A cached payload aged at
// or under the freshness threshold is used as-is; otherwise the remote
// location is fetched and a fresh local copy written best-effort. A stale
// cache is never used as a fallback for a failed fetch.
func (g *Gateway) Records(ctx context.Context, src config.Source) ([]event.RawRecord, error) {
	if src.CacheFile != "" && g.fresh(src.CacheFile, src.FreshFor()) {
		b, err := os.ReadFile(src.CacheFile)
		if err != nil {
			return nil, &UnreadableError{Source: src.Name, Err: err}
		}
		recs, err := decode(b)
		if err != nil {
			return nil, &UnreadableError{Source: src.Name, Err: err}
		}
		log.Debug().Str("source", src.Name).Int("records", len(recs)).Msg("using fresh local cache")
		return recs, nil
	}

	if src.URL == "" {
		return nil, fmt.Errorf("source %s: %w", src.Name, ErrNoData)
	}

	body, err := g.fetch(ctx, src.URL)
	if err != nil {
		return nil, &UnreadableError{Source: src.Name, Err: err}
	}
	recs, err := decode(body)
	if err != nil {
		return nil, &UnreadableError{Source: src.Name, Err: err}
	}

	if src.CacheFile != "" {
		// Best-effort: a failed cache write must not abort the fetch.
		if err := writeCache(src.CacheFile, recs); err != nil {
			log.Warn().Err(err).Str("source", src.Name).Msg("cache write failed")
		}
	}
	return recs, nil
}

// fresh reports whether the cached payload's age is at or under the
// threshold. The boundary is inclusive.
func (g *Gateway) fresh(path string, threshold time.Duration) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return g.now().Sub(info.ModTime()) <= threshold
}

// fetch downloads the payload with bounded exponential-backoff retries.
func (g *Gateway) fetch(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := g.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}
		body, err = io.ReadAll(resp.Body)
		return err
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), fetchRetries)
	if err := backoff.Retry(op, backoff.WithContext(policy, ctx)); err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	return body, nil
}

// decode parses a repaired payload into records. Single-object payloads
// are wrapped into a one-element list. A strict JSON parse is tried first,
// then a permissive literal-style parse.
func decode(b []byte) ([]event.RawRecord, error) {
	txt := Repair(string(b))

	var recs []event.RawRecord
	if err := json.Unmarshal([]byte(txt), &recs); err == nil {
		return recs, nil
	}
	var one event.RawRecord
	if err := json.Unmarshal([]byte(txt), &one); err == nil {
		return []event.RawRecord{one}, nil
	}
	if recs, err := lenientDecode(txt); err == nil {
		return recs, nil
	}
	return nil, errors.New("payload is not parseable after repair")
}

// writeCache persists a fresh local copy as pretty-printed UTF-8 JSON,
// overwriting any previous file.
func writeCache(path string, recs []event.RawRecord) error {
	b, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cache: %w", err)
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	return nil
}
