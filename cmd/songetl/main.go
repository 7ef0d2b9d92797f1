// Command songetl loads the Sparkify song catalog and event logs into the
// warehouse star schema.
//
// With no flags it reads data/song_data then data/log_data and writes to
// the local sparkifydb Postgres. See internal/config for the file format
// and environment variables.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"songetl/internal/config"
	"songetl/internal/metrics"
	"songetl/internal/metrics/datadog"
	"songetl/internal/metrics/prompush"
	"songetl/internal/pipeline"
	"songetl/internal/storage"

	"github.com/google/uuid"

	// register all backends with the storage factory.
	_ "songetl/internal/storage/all"
)

func main() {
	var (
		cfgPath  string
		envPath  string
		validate bool
	)
	flag.StringVar(&cfgPath, "config", "", "optional config JSON path")
	flag.StringVar(&envPath, "env", ".env", "optional dotenv file")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")
	flag.Parse()

	cfg, err := config.Load(cfgPath, envPath)
	if err != nil {
		fatalf("%v", err)
	}

	issues := config.ValidateConfig(cfg)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		log.Printf("Configuration is invalid")
		os.Exit(1)
	}
	if validate {
		log.Printf("Configuration is valid")
		os.Exit(0)
	}

	flush := setupMetrics(cfg.Metrics, *verbose)
	err = run(context.Background(), cfg, os.Stdout, *verbose)
	flush()
	if err != nil {
		log.Fatalf("%v", err)
	}
}

// openSession is a test hook.
var openSession = storage.New

// run executes the catalog pipeline and then the event pipeline against
// one session.
func run(ctx context.Context, cfg config.Config, out io.Writer, verbose bool) error {
	runID := uuid.New()
	start := time.Now()
	log.Printf("run: id=%s storage=%s lookup=%s cache=%t on_error=%s",
		runID, cfg.Storage.Kind, cfg.Runtime.Lookup, cfg.Runtime.Cache, cfg.Runtime.OnError)

	policy, err := pipeline.ParsePolicy(cfg.Runtime.OnError)
	if err != nil {
		return err
	}
	mode, err := pipeline.ParseLookupMode(cfg.Runtime.Lookup)
	if err != nil {
		return err
	}

	sess, err := openSession(ctx, storage.Config{Kind: cfg.Storage.Kind, DSN: cfg.Storage.DSN})
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if err := sess.Close(); err != nil {
			log.Printf("run: close storage: %v", err)
		}
	}()

	if cfg.Storage.AutoCreate {
		if err := sess.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("apply DDL: %w", err)
		}
	}

	d := &pipeline.Driver{Tx: sess, Out: out, OnError: policy, Job: pipeline.CatalogJob, Verbose: verbose}
	songs, err := d.ProcessDir(ctx, cfg.Sources.SongData, pipeline.CatalogFile())
	if err != nil {
		return fmt.Errorf("song data: %w", err)
	}

	d.Job = pipeline.EventJob
	logs, err := d.ProcessDir(ctx, cfg.Sources.LogData, pipeline.EventFile(mode, cfg.Runtime.Cache))
	if err != nil {
		return fmt.Errorf("log data: %w", err)
	}

	log.Printf("run: id=%s done in %s songs=%d artists=%d time=%d users=%d songplays=%d matched=%d",
		runID, time.Since(start).Truncate(time.Millisecond),
		songs.Songs, songs.Artists, logs.Times, logs.Users, logs.Songplays, logs.Matched)
	return nil
}

// setupMetrics installs the configured backend and returns its flush.
func setupMetrics(m config.Metrics, verbose bool) func() {
	var (
		b   metrics.Backend
		err error
	)
	switch m.Backend {
	case "pushgateway":
		b, err = prompush.NewBackend(m.Job, m.PushgatewayURL)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       m.DatadogAddr,
			GlobalTags: []string{"job:" + m.Job},
		})
	case "", "none":
		if verbose {
			log.Printf("metrics: disabled (backend=%q)", m.Backend)
		}
		return func() {}
	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", m.Backend)
		return func() {}
	}
	if err != nil {
		log.Printf("metrics: failed to init %s backend: %v; using nop", m.Backend, err)
		return func() {}
	}

	log.Printf("metrics: backend=%s job=%s", m.Backend, m.Job)
	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
