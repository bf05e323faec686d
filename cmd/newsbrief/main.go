package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/kmiya/newsbrief/pkg/archive"
	"github.com/kmiya/newsbrief/pkg/classify"
	"github.com/kmiya/newsbrief/pkg/config"
	"github.com/kmiya/newsbrief/pkg/digest"
	"github.com/kmiya/newsbrief/pkg/feed"
	"github.com/kmiya/newsbrief/pkg/snapshot"
	"github.com/kmiya/newsbrief/pkg/summary"
	"github.com/kmiya/newsbrief/server"
)

// Opts with all CLI options
type Opts struct {
	Config string `short:"c" long:"config" env:"CONFIG" default:"newsbrief.yml" description:"config file"`
	Serve  bool   `short:"s" long:"serve" env:"SERVE" description:"serve the snapshot over HTTP and refresh on schedule"`

	// Common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Print("[INFO] termination signal received")
		cancel()
	}()

	err := run(ctx, opts)
	cancel()

	if err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}
}

// run wires the pipeline from config and executes the requested mode:
// one ingestion pass by default, server with periodic refresh with --serve
func run(ctx context.Context, opts Opts) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	setupLog(opts.Debug, cfg.Summary.APIKey)
	log.Printf("[INFO] starting newsbrief version %s", revision)

	classifier := classify.New(classify.Rules{
		Exclude: cfg.Keywords.Exclude,
		High:    cfg.Keywords.High,
		Medium:  cfg.Keywords.Medium,
	})

	writer := snapshot.NewWriter(cfg.Storage.Snapshot)
	runner := &digest.Runner{
		Feeds: cfg.Feeds,
		Fetcher: feed.NewFetcher(classifier, feed.Options{
			Timeout:      cfg.Fetch.Timeout,
			UserAgent:    cfg.Fetch.UserAgent,
			PerFeedLimit: cfg.Limits.PerFeed,
		}),
		Writer:       writer,
		HistoryPath:  cfg.Storage.History,
		HistoryLimit: cfg.Limits.History,
		TotalLimit:   cfg.Limits.Total,
		Concurrency:  cfg.Limits.Concurrency,
	}

	var store *archive.Archive
	if cfg.Storage.ArchiveDSN != "" {
		store, err = archive.New(ctx, cfg.Storage.ArchiveDSN)
		if err != nil {
			return fmt.Errorf("failed to open archive: %w", err)
		}
		defer store.Close()
		runner.Archive = store
	}

	if !opts.Serve {
		doc, stats, err := runner.Run(ctx)
		if err != nil {
			return fmt.Errorf("run failed: %w", err)
		}
		digest.Print(os.Stdout, doc, stats)
		return nil
	}

	return serve(ctx, cfg, runner, writer, store, opts.Debug)
}

// serve runs the refresh loop and the presentation server until the context
// is canceled. Runs are serialized by the single loop goroutine, concurrent
// runs against the same snapshot and history are not supported.
func serve(ctx context.Context, cfg *config.Config, runner *digest.Runner, writer *snapshot.Writer, store *archive.Archive, dbg bool) error {
	go func() {
		ticker := time.NewTicker(cfg.Schedule.Interval)
		defer ticker.Stop()

		for {
			if _, _, err := runner.Run(ctx); err != nil {
				log.Printf("[ERROR] scheduled run failed: %v", err)
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	var items server.ArchiveReader
	if store != nil {
		items = store
	}

	srv := server.New(cfg, snapshotReader{path: writer.Path()}, items,
		summary.New(cfg.GetSummaryConfig()), revision, dbg)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	log.Print("[INFO] shutdown complete")
	return nil
}

// snapshotReader adapts the snapshot file location to the server interface
type snapshotReader struct {
	path string
}

func (s snapshotReader) Load() (*snapshot.Document, error) {
	return snapshot.Load(s.path)
}

func setupLog(dbg bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))

	secrets := make([]string, 0, len(secs))
	for _, sec := range secs {
		if sec != "" {
			secrets = append(secrets, sec)
		}
	}
	if len(secrets) > 0 {
		logOpts = append(logOpts, lgr.Secret(secrets...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
