package archive

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmiya/newsbrief/pkg/snapshot"
)

func newTestArchive(t *testing.T) *Archive {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "archive.db") + "?mode=rwc"
	a, err := New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func doc(at time.Time, items ...snapshot.Item) *snapshot.Document {
	return &snapshot.Document{UpdatedAt: at, Items: items}
}

func TestArchive_StoreBatchAndRecent(t *testing.T) {
	a := newTestArchive(t)
	ctx := context.Background()

	at := time.Date(2024, time.March, 5, 12, 0, 0, 0, time.UTC)
	err := a.StoreBatch(ctx, doc(at,
		snapshot.Item{ID: "aaa", Title: "First", URL: "http://example.com/1", Importance: "high", Category: "finance"},
		snapshot.Item{ID: "bbb", Title: "Second", URL: "http://example.com/2", Importance: "low", Category: "tech"},
	))
	require.NoError(t, err)

	items, err := a.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Second", items[0].Title, "insertion order within a run, newest rowid first")
	assert.Equal(t, "finance", items[1].Category)
	assert.True(t, items[0].RunAt.Equal(at))
}

func TestArchive_StoreBatchIgnoresDuplicates(t *testing.T) {
	a := newTestArchive(t)
	ctx := context.Background()

	item := snapshot.Item{ID: "aaa", Title: "Same", URL: "http://example.com/1"}
	require.NoError(t, a.StoreBatch(ctx, doc(time.Now(), item)))
	require.NoError(t, a.StoreBatch(ctx, doc(time.Now().Add(time.Hour), item)))

	items, err := a.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, items, 1, "re-emitted item keeps its original row")
}

func TestArchive_RecentLimit(t *testing.T) {
	a := newTestArchive(t)
	ctx := context.Background()

	items := make([]snapshot.Item, 0, 5)
	for i := 0; i < 5; i++ {
		items = append(items, snapshot.Item{ID: fmt.Sprintf("id-%d", i), Title: fmt.Sprintf("t%d", i),
			URL: fmt.Sprintf("http://example.com/%d", i)})
	}
	require.NoError(t, a.StoreBatch(ctx, doc(time.Now(), items...)))

	got, err := a.Recent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestArchive_StoreBatchEmpty(t *testing.T) {
	a := newTestArchive(t)
	require.NoError(t, a.StoreBatch(context.Background(), doc(time.Now())))

	items, err := a.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, items)
}
