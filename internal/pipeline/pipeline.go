// Package pipeline runs one ingestion pass: for each configured source,
// read raw records through the cache gateway, validate, enrich and persist
// them, then record the run summary. Sources are processed one at a time;
// the run holds no state shared with other invocations.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quehaypahacer/agenda-ingest/internal/config"
	"github.com/quehaypahacer/agenda-ingest/internal/event"
	"github.com/quehaypahacer/agenda-ingest/internal/store"
	"github.com/quehaypahacer/agenda-ingest/internal/summary"
)

// invalidSampleSize bounds how many rejected records are kept per source
// for diagnostics.
const invalidSampleSize = 3

// Gateway resolves a source into raw records.
type Gateway interface {
	Records(ctx context.Context, src config.Source) ([]event.RawRecord, error)
}

// Ingestor persists one source's batch. Any error it returns is fatal for
// the run.
type Ingestor interface {
	InsertBatch(ctx context.Context, spec store.TableSpec, recs []event.Record) (int, error)
}

// SourceResult summarizes one source's pass.
type SourceResult struct {
	Source        string
	Valid         int
	Invalid       int
	Inserted      int
	InvalidSample []event.RawRecord
	Err           error // source-local error; the run continued
}

// Result summarizes a whole run.
type Result struct {
	Run     summary.Run
	Sources []SourceResult
}

// Loader executes ingestion runs.
type Loader struct {
	cfg      config.Config
	gateway  Gateway
	ingestor Ingestor
	log      *summary.Log
	now      func() time.Time
}

// New creates a Loader. All collaborators are passed in; nothing is
// constructed from global state.
func New(cfg config.Config, gateway Gateway, ingestor Ingestor, sumlog *summary.Log) *Loader {
	return &Loader{
		cfg:      cfg,
		gateway:  gateway,
		ingestor: ingestor,
		log:      sumlog,
		now:      time.Now,
	}
}

// Run processes every configured source in order. Unreadable or empty
// sources are skipped and the run continues; a store error aborts the run
// with status FAILED and remaining sources unprocessed. The structured run
// line is appended to the summary log in every outcome.
func (l *Loader) Run(ctx context.Context) (result Result, err error) {
	start := l.now()
	runID := uuid.NewString()
	runlog := log.With().Str("run_id", runID).Logger()
	runlog.Info().Int("sources", len(l.cfg.Sources)).Msg("run started")

	defer func() {
		status := summary.StatusOK
		if err != nil {
			status = summary.StatusFailed
		}
		result.Run = summary.NewRun(runID, start, l.now(), status)
		if logErr := l.log.AppendRun(result.Run); logErr != nil {
			// The summary write is best-effort; it never masks the
			// primary-path error.
			runlog.Warn().Err(logErr).Msg("run summary write failed")
		}
		runlog.Info().Str("status", status).Float64("duration_sec", result.Run.DurationSec).Msg("run finished")
	}()

	for _, src := range l.cfg.Sources {
		res, fatal := l.loadSource(ctx, src, runlog)
		result.Sources = append(result.Sources, res)

		// Sources that could not be read get no summary line; sources
		// that were read do, even when their batch later fails.
		if res.Err == nil || fatal {
			if logErr := l.log.AppendSource(l.now(), src.Name, res.Valid, res.Invalid); logErr != nil {
				runlog.Warn().Err(logErr).Str("source", src.Name).Msg("summary line write failed")
			}
		}
		if fatal {
			err = res.Err
			return result, err
		}
	}
	return result, nil
}

// loadSource runs one source end to end. The second return value reports
// whether the error must abort the whole run (store errors do, source
// read errors do not).
func (l *Loader) loadSource(ctx context.Context, src config.Source, runlog zerolog.Logger) (SourceResult, bool) {
	res := SourceResult{Source: src.Name}
	srclog := runlog.With().Str("source", src.Name).Str("table", src.Table).Logger()

	raws, err := l.gateway.Records(ctx, src)
	if err != nil {
		srclog.Warn().Err(err).Msg("source skipped")
		res.Err = err
		return res, false
	}
	srclog.Info().Int("records", len(raws)).Msg("source read")

	ref := l.now()
	var records []event.Record
	for _, raw := range raws {
		if !event.Valid(raw) {
			res.Invalid++
			if len(res.InvalidSample) < invalidSampleSize {
				res.InvalidSample = append(res.InvalidSample, raw)
			}
			continue
		}
		rec := event.Enrich(raw, src.City, ref)
		if !rec.HasDate() {
			// The date text existed but resolved to nothing; the record
			// cannot be keyed and joins the invalid bucket.
			res.Invalid++
			if len(res.InvalidSample) < invalidSampleSize {
				res.InvalidSample = append(res.InvalidSample, raw)
			}
			continue
		}
		records = append(records, rec)
	}
	res.Valid = len(records)
	srclog.Info().Int("valid", res.Valid).Int("invalid", res.Invalid).Msg("validation done")

	inserted, err := l.ingestor.InsertBatch(ctx, store.SpecFor(src), records)
	if err != nil {
		srclog.Error().Err(err).Msg("batch failed, aborting run")
		res.Err = err
		return res, true
	}
	res.Inserted = inserted
	srclog.Info().Int("inserted", inserted).Msg("batch committed")
	return res, false
}
