package digest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmiya/newsbrief/pkg/domain"
	"github.com/kmiya/newsbrief/pkg/history"
)

func newHistory(t *testing.T, titles ...string) *history.Store {
	t.Helper()
	hist := history.Load(filepath.Join(t.TempDir(), "history.json"), 100)
	hist.RecordSeen(titles)
	return hist
}

func item(title string, imp domain.Importance) domain.NewsItem {
	return domain.NewsItem{Title: title, URL: "http://example.com/" + title, Importance: imp}
}

func TestAggregator_DedupAgainstHistory(t *testing.T) {
	hist := newHistory(t, "already seen")

	results := []domain.FetchResult{
		{Success: true, Category: "a", Items: []domain.NewsItem{
			item("already seen", domain.ImportanceHigh),
			item("fresh", domain.ImportanceLow),
		}},
	}

	batch, stats := NewAggregator(10).Aggregate(results, hist)
	require.Len(t, batch, 1)
	assert.Equal(t, "fresh", batch[0].Title)
	assert.Equal(t, 2, stats.TotalFetched)
	assert.Equal(t, 1, stats.NewCount)
}

func TestAggregator_DedupWithinBatch(t *testing.T) {
	hist := newHistory(t)

	// two feeds carrying the same story keep the first occurrence only
	results := []domain.FetchResult{
		{Success: true, Category: "a", Items: []domain.NewsItem{
			item("shared story", domain.ImportanceHigh),
		}},
		{Success: true, Category: "b", Items: []domain.NewsItem{
			item("shared story", domain.ImportanceMedium),
			item("other", domain.ImportanceLow),
		}},
	}

	batch, stats := NewAggregator(10).Aggregate(results, hist)
	require.Len(t, batch, 2)
	assert.Equal(t, "shared story", batch[0].Title)
	assert.Equal(t, domain.ImportanceHigh, batch[0].Importance, "first occurrence wins")
	assert.Equal(t, "other", batch[1].Title)
	assert.Equal(t, 3, stats.TotalFetched)
	assert.Equal(t, 2, stats.NewCount)
}

func TestAggregator_StableRank(t *testing.T) {
	hist := newHistory(t)

	// [A(medium), B(high), C(medium), D(high)] must rank to [B, D, A, C]
	results := []domain.FetchResult{
		{Success: true, Items: []domain.NewsItem{
			item("A", domain.ImportanceMedium),
			item("B", domain.ImportanceHigh),
			item("C", domain.ImportanceMedium),
			item("D", domain.ImportanceHigh),
		}},
	}

	batch, _ := NewAggregator(10).Aggregate(results, hist)
	titles := []string{}
	for _, it := range batch {
		titles = append(titles, it.Title)
	}
	assert.Equal(t, []string{"B", "D", "A", "C"}, titles)
}

func TestAggregator_GlobalCapBeforeRank(t *testing.T) {
	hist := newHistory(t)

	// the cap applies in post-dedup order, then ranking reorders survivors
	results := []domain.FetchResult{
		{Success: true, Items: []domain.NewsItem{
			item("first", domain.ImportanceLow),
			item("second", domain.ImportanceLow),
			item("third", domain.ImportanceHigh),
		}},
	}

	batch, stats := NewAggregator(2).Aggregate(results, hist)
	require.Len(t, batch, 2)
	assert.Equal(t, "first", batch[0].Title)
	assert.Equal(t, "second", batch[1].Title)
	assert.Equal(t, 2, stats.NewCount)

	// items dropped by the cap are not marked seen and may reappear
	assert.True(t, hist.Contains("first"))
	assert.True(t, hist.Contains("second"))
	assert.False(t, hist.Contains("third"))
}

func TestAggregator_FailedFeedsSurfacedInStats(t *testing.T) {
	hist := newHistory(t)

	results := []domain.FetchResult{
		{Success: true, Category: "a", Items: []domain.NewsItem{item("ok", domain.ImportanceLow)}},
		{Success: false, Category: "b", Error: "connection refused"},
	}

	batch, stats := NewAggregator(10).Aggregate(results, hist)
	assert.Len(t, batch, 1)
	assert.Equal(t, map[string]string{"b": "connection refused"}, stats.Failures)
	assert.Equal(t, 1, stats.TotalFetched, "failed feeds contribute nothing to totals")
}

func TestAggregator_FeedOrderPreserved(t *testing.T) {
	hist := newHistory(t)

	results := []domain.FetchResult{
		{Success: true, Items: []domain.NewsItem{item("a1", domain.ImportanceLow), item("a2", domain.ImportanceLow)}},
		{Success: true, Items: []domain.NewsItem{item("b1", domain.ImportanceLow)}},
	}

	batch, _ := NewAggregator(10).Aggregate(results, hist)
	titles := []string{}
	for _, it := range batch {
		titles = append(titles, it.Title)
	}
	assert.Equal(t, []string{"a1", "a2", "b1"}, titles)
}

func TestAggregator_EmptyResults(t *testing.T) {
	hist := newHistory(t)

	batch, stats := NewAggregator(10).Aggregate(nil, hist)
	assert.Empty(t, batch)
	assert.Equal(t, 0, stats.TotalFetched)
	assert.Equal(t, 0, stats.NewCount)
}
