package digest

import (
	"context"
	"fmt"

	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/errgroup"

	"github.com/kmiya/newsbrief/pkg/domain"
	"github.com/kmiya/newsbrief/pkg/history"
	"github.com/kmiya/newsbrief/pkg/snapshot"
)

// Fetcher retrieves one configured feed, failure-as-value
type Fetcher interface {
	Fetch(ctx context.Context, fc domain.FeedConfig) domain.FetchResult
}

// SnapshotWriter persists the ranked batch as the current snapshot
type SnapshotWriter interface {
	Write(items []domain.NewsItem) (*snapshot.Document, error)
}

// Archiver records emitted items for later browsing, optional
type Archiver interface {
	StoreBatch(ctx context.Context, doc *snapshot.Document) error
}

// Runner sequences a single ingestion run: load history, fetch all feeds
// concurrently, aggregate, write the snapshot and persist updated history.
// A run is the unit of consistency; on a snapshot write fault the prior
// snapshot stays untouched and the run fails.
//
// Runs against the same history and snapshot locations must not overlap,
// the caller (serve loop or an external scheduler) serializes them.
type Runner struct {
	Feeds        []domain.FeedConfig
	Fetcher      Fetcher
	Writer       SnapshotWriter
	Archive      Archiver // nil disables archiving
	HistoryPath  string
	HistoryLimit int
	TotalLimit   int
	Concurrency  int // max parallel feed fetches, independent of feed count
}

// Run executes one end-to-end pass, returns the written document and stats.
// An error means the snapshot was not replaced.
func (r *Runner) Run(ctx context.Context) (*snapshot.Document, Stats, error) {
	hist := history.Load(r.HistoryPath, r.HistoryLimit)

	results := r.fetchAll(ctx)
	for _, res := range results {
		if !res.Success {
			lgr.Printf("[WARN] feed %q failed: %s", res.Category, res.Error)
		}
	}

	batch, stats := NewAggregator(r.TotalLimit).Aggregate(results, hist)

	doc, err := r.Writer.Write(batch)
	if err != nil {
		return nil, stats, fmt.Errorf("write snapshot: %w", err)
	}

	if r.Archive != nil {
		if err := r.Archive.StoreBatch(ctx, doc); err != nil {
			lgr.Printf("[WARN] can't archive batch: %v", err)
		}
	}

	// a failed persist only means seen items may reappear next run
	if err := hist.Persist(); err != nil {
		lgr.Printf("[WARN] can't persist history: %v", err)
	}

	lgr.Printf("[INFO] run completed: %d fetched, %d new, %d feed failures",
		stats.TotalFetched, stats.NewCount, len(stats.Failures))
	return doc, stats, nil
}

// fetchAll fans out over all configured feeds with bounded concurrency and
// joins before returning, aggregation never starts on partial results.
// Results keep the configured feed order regardless of completion order.
func (r *Runner) fetchAll(ctx context.Context) []domain.FetchResult {
	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = 5
	}

	results := make([]domain.FetchResult, len(r.Feeds))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, fc := range r.Feeds {
		g.Go(func() error {
			results[i] = r.Fetcher.Fetch(ctx, fc)
			return nil
		})
	}
	_ = g.Wait() // fetches never return errors, failures are values in results

	return results
}
