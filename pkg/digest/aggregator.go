package digest

import (
	"sort"

	"github.com/kmiya/newsbrief/pkg/domain"
)

// History is the dedup boundary the aggregator checks retained items
// against. Matches pkg/history.Store.
type History interface {
	Contains(title string) bool
	RecordSeen(titles []string)
}

// Stats summarizes one aggregation pass
type Stats struct {
	TotalFetched int               // items contributed by successful feeds
	NewCount     int               // items surviving dedup and the global cap
	Failures     map[string]string // failed feed category -> error message
}

// Aggregator merges per-feed results into the ranked batch for one run
type Aggregator struct {
	totalLimit int
}

// NewAggregator creates an aggregator with the given global item cap
func NewAggregator(totalLimit int) *Aggregator {
	return &Aggregator{totalLimit: totalLimit}
}

// Aggregate flattens successful fetch results in configured feed order,
// drops items whose exact title is already in history or earlier in the same
// batch, caps the batch to the global limit and ranks it by importance. The
// sort is stable: items of equal importance keep their pre-rank relative
// order, no secondary key.
//
// Only items that survive both dedup and the cap are recorded as seen;
// items dropped by the cap alone may reappear on the next run.
func (a *Aggregator) Aggregate(results []domain.FetchResult, hist History) ([]domain.NewsItem, Stats) {
	stats := Stats{Failures: map[string]string{}}

	var batch []domain.NewsItem
	inBatch := map[string]struct{}{} // same story from two feeds counts once
	for _, res := range results {
		if !res.Success {
			stats.Failures[res.Category] = res.Error
			continue
		}
		stats.TotalFetched += len(res.Items)
		for _, item := range res.Items {
			if hist.Contains(item.Title) {
				continue
			}
			if _, ok := inBatch[item.Title]; ok {
				continue
			}
			inBatch[item.Title] = struct{}{}
			batch = append(batch, item)
		}
	}

	if a.totalLimit > 0 && len(batch) > a.totalLimit {
		batch = batch[:a.totalLimit]
	}

	sort.SliceStable(batch, func(i, j int) bool {
		return batch[i].Importance.Weight() > batch[j].Importance.Weight()
	})

	titles := make([]string, 0, len(batch))
	for _, item := range batch {
		titles = append(titles, item.Title)
	}
	hist.RecordSeen(titles)

	stats.NewCount = len(batch)
	return batch, stats
}
