package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/go-pkgz/repeater/v2"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure Go SQLite driver

	"github.com/kmiya/newsbrief/pkg/snapshot"
)

// Archive keeps every item emitted by past runs in SQLite for later
// browsing. Observational only: the ingestion pipeline never reads it back,
// so a write failure degrades to a logged warning upstream.
type Archive struct {
	db *sqlx.DB
}

// StoredItem is an archived snapshot item plus the run that emitted it
type StoredItem struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	URL         string    `db:"url" json:"url"`
	Source      string    `db:"source" json:"source"`
	PublishedAt string    `db:"published_at" json:"publishedAt"`
	Importance  string    `db:"importance" json:"importance"`
	Category    string    `db:"category" json:"category"`
	RunAt       time.Time `db:"run_at" json:"runAt"`
}

const schema = `
CREATE TABLE IF NOT EXISTS items (
	id           TEXT NOT NULL,
	title        TEXT NOT NULL,
	url          TEXT NOT NULL,
	source       TEXT NOT NULL DEFAULT '',
	published_at TEXT NOT NULL DEFAULT '',
	importance   TEXT NOT NULL DEFAULT 'low',
	category     TEXT NOT NULL DEFAULT '',
	run_at       TIMESTAMP NOT NULL,
	PRIMARY KEY (id)
);
CREATE INDEX IF NOT EXISTS idx_items_run_at ON items(run_at DESC);
`

// New opens (and if needed creates) the archive database at the given DSN
func New(ctx context.Context, dsn string) (*Archive, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open archive database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return nil, fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("init archive schema: %w", err)
	}

	return &Archive{db: db}, nil
}

// StoreBatch inserts the document's items, keyed by their content-derived
// id, so items re-emitted across runs don't duplicate. Retries with backoff
// on SQLite lock errors.
func (a *Archive) StoreBatch(ctx context.Context, doc *snapshot.Document) error {
	if len(doc.Items) == 0 {
		return nil
	}

	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))

	return retrier.Do(ctx, func() error {
		tx, err := a.db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin archive tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		query := `
			INSERT OR IGNORE INTO items (
				id, title, url, source, published_at, importance, category, run_at
			) VALUES (
				:id, :title, :url, :source, :published_at, :importance, :category, :run_at
			)
		`
		for _, item := range doc.Items {
			row := StoredItem{
				ID:          item.ID,
				Title:       item.Title,
				URL:         item.URL,
				Source:      item.Source,
				PublishedAt: item.PublishedAt,
				Importance:  string(item.Importance),
				Category:    item.Category,
				RunAt:       doc.UpdatedAt,
			}
			if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
				return fmt.Errorf("archive item %s: %w", item.ID, err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit archive tx: %w", err)
		}
		return nil
	})
}

// Recent returns the most recently emitted items, newest runs first
func (a *Archive) Recent(ctx context.Context, limit int) ([]StoredItem, error) {
	if limit <= 0 {
		limit = 50
	}

	var items []StoredItem
	err := a.db.SelectContext(ctx, &items,
		"SELECT * FROM items ORDER BY run_at DESC, rowid DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("select recent items: %w", err)
	}
	return items, nil
}

// Close closes the underlying database
func (a *Archive) Close() error {
	return a.db.Close()
}
