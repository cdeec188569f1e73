// Package cli wires the agenda-ingest commands: scraping the sources,
// loading them into the store, the combined pipeline, and the metrics
// dashboard over past runs.
package cli

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/quehaypahacer/agenda-ingest/internal/config"
	"github.com/quehaypahacer/agenda-ingest/internal/logging"
	"github.com/quehaypahacer/agenda-ingest/internal/pipeline"
	"github.com/quehaypahacer/agenda-ingest/internal/scraper"
	"github.com/quehaypahacer/agenda-ingest/internal/source"
	"github.com/quehaypahacer/agenda-ingest/internal/store"
	"github.com/quehaypahacer/agenda-ingest/internal/summary"
)

var (
	flagConfig     string
	flagVerbose    bool
	flagParallel   bool
	flagMaxWorkers int
	flagStopOnFail bool
	flagSkipLoad   bool
	flagDays       int
)

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agenda",
		Short: "Harvest and ingest cultural event listings",
		Long: `Harvests event listings from public agenda pages, normalizes their
free-text fields and loads them into the destination store, deduplicated
by each source's natural key.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Init(flagVerbose)
		},
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "sources.yaml", "Path to the source configuration file")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")

	cmd.AddCommand(newScrapeCmd())
	cmd.AddCommand(newLoadCmd())
	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newMetricsCmd())
	return cmd
}

func newLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Load cached or remote source payloads into the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flagConfig)
			if err != nil {
				return err
			}
			return runLoad(cmd.Context(), cfg)
		},
	}
}

func newScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape the source agenda pages and refresh the cache files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flagConfig)
			if err != nil {
				return err
			}
			return runScrape(cmd.Context(), cfg)
		},
	}
	cmd.Flags().BoolVar(&flagParallel, "parallel", false, "Scrape sources concurrently")
	cmd.Flags().IntVar(&flagMaxWorkers, "max-workers", 3, "Workers for --parallel")
	cmd.Flags().BoolVar(&flagStopOnFail, "stop-on-fail", false, "Stop at the first scraper failure")
	return cmd
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Scrape every source, then load the results into the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flagConfig)
			if err != nil {
				return err
			}
			if err := runScrape(cmd.Context(), cfg); err != nil {
				return err
			}
			if flagSkipLoad {
				fmt.Println("Carga a BD omitida por --skip-load")
				return nil
			}
			return runLoad(cmd.Context(), cfg)
		},
	}
	cmd.Flags().BoolVar(&flagParallel, "parallel", false, "Scrape sources concurrently")
	cmd.Flags().IntVar(&flagMaxWorkers, "max-workers", 3, "Workers for --parallel")
	cmd.Flags().BoolVar(&flagStopOnFail, "stop-on-fail", false, "Stop at the first scraper failure")
	cmd.Flags().BoolVar(&flagSkipLoad, "skip-load", false, "Scrape only, skip the store load")
	return cmd
}

func newMetricsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Show run statistics and per-table row counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flagConfig)
			if err != nil {
				return err
			}
			return runMetrics(cmd.Context(), cfg)
		},
	}
	cmd.Flags().IntVar(&flagDays, "days", 7, "Window of past days to report")
	return cmd
}

// runLoad executes one ingestion run and prints the per-source outcome.
func runLoad(ctx context.Context, cfg config.Config) error {
	pool, err := store.Connect(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to store: %w", err)
	}
	defer pool.Close()

	loader := pipeline.New(cfg, source.New(), store.NewIngestor(pool), summary.NewLog(cfg.SummaryLog))
	result, err := loader.Run(ctx)

	for _, res := range result.Sources {
		if res.Err != nil {
			fmt.Printf("%s: omitida (%v)\n", res.Source, res.Err)
			continue
		}
		fmt.Printf("%s: %d validos / %d invalidos, %d insertados\n",
			res.Source, res.Valid, res.Invalid, res.Inserted)
		for _, sample := range res.InvalidSample {
			fmt.Printf("  invalido: %v\n", sample)
		}
	}
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}
	return nil
}

// runScrape refreshes the cache file of every source with a registered
// scraper, sequentially or with a bounded worker pool.
func runScrape(ctx context.Context, cfg config.Config) error {
	type job struct {
		src config.Source
		sc  scraper.Scraper
	}
	var jobs []job
	for _, src := range cfg.Sources {
		sc := scraper.For(src)
		if sc == nil {
			log.Debug().Str("source", src.Name).Msg("no scraper registered, skipping")
			continue
		}
		jobs = append(jobs, job{src: src, sc: sc})
	}

	scrapeOne := func(j job) error {
		start := time.Now()
		recs, err := j.sc.Scrape(ctx)
		if err != nil {
			log.Error().Err(err).Str("source", j.src.Name).Msg("scrape failed")
			return err
		}
		if j.src.CacheFile != "" {
			if err := scraper.WriteCache(j.src.CacheFile, recs); err != nil {
				log.Error().Err(err).Str("source", j.src.Name).Msg("cache write failed")
				return err
			}
		}
		log.Info().
			Str("source", j.src.Name).
			Int("records", len(recs)).
			Dur("took", time.Since(start)).
			Msg("scrape done")
		return nil
	}

	if !flagParallel {
		failures := 0
		for _, j := range jobs {
			if err := scrapeOne(j); err != nil {
				failures++
				if flagStopOnFail {
					return fmt.Errorf("scraper %s failed: %w", j.src.Name, err)
				}
			}
		}
		if failures == len(jobs) && len(jobs) > 0 {
			return fmt.Errorf("all %d scrapers failed", failures)
		}
		return nil
	}

	workers := flagMaxWorkers
	if workers <= 0 {
		workers = 1
	}
	jobCh := make(chan job)
	errCh := make(chan error, len(jobs))
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobCh {
				if err := scrapeOne(j); err != nil {
					errCh <- err
				}
			}
		}()
	}
	for _, j := range jobs {
		jobCh <- j
	}
	close(jobCh)
	wg.Wait()
	close(errCh)

	failures := len(errCh)
	if flagStopOnFail && failures > 0 {
		return fmt.Errorf("%d scraper(s) failed", failures)
	}
	if failures == len(jobs) && len(jobs) > 0 {
		return fmt.Errorf("all %d scrapers failed", failures)
	}
	return nil
}

// runMetrics prints run statistics for the past window plus current table
// row counts.
func runMetrics(ctx context.Context, cfg config.Config) error {
	since := time.Now().AddDate(0, 0, -flagDays)
	runs, err := summary.NewLog(cfg.SummaryLog).RunsSince(since)
	if err != nil {
		return err
	}

	ok := 0
	var total float64
	var last summary.Run
	for _, run := range runs {
		if run.Status == summary.StatusOK {
			ok++
		}
		total += run.DurationSec
		if run.TsStart > last.TsStart {
			last = run
		}
	}

	fmt.Printf("Métricas últimos %d días\n", flagDays)
	fmt.Printf("- Corridas: %d (OK: %d, FAILED: %d)\n", len(runs), ok, len(runs)-ok)
	if len(runs) > 0 {
		fmt.Printf("- Duración promedio: %.2fs\n", total/float64(len(runs)))
		fmt.Printf("- Última: %s [%s] %.2fs\n", last.TsStart, last.Status, last.DurationSec)
	} else {
		fmt.Println("- Sin corridas en la ventana")
	}

	pool, err := store.Connect(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to store: %w", err)
	}
	defer pool.Close()

	ingestor := store.NewIngestor(pool)
	fmt.Println("\nRegistros en BD:")
	for _, src := range cfg.Sources {
		n, err := ingestor.Count(ctx, src.Table)
		if err != nil {
			return err
		}
		fmt.Printf("  - %s: %d\n", src.Table, n)
	}
	return nil
}

// Execute runs the CLI.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
