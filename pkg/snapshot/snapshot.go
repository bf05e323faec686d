package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/kmiya/newsbrief/pkg/domain"
)

// Item is a news item as it appears in the durable snapshot, a NewsItem
// plus a stable content-derived identifier
type Item struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	URL         string            `json:"url"`
	Source      string            `json:"source"`
	PublishedAt string            `json:"publishedAt"`
	Importance  domain.Importance `json:"importance"`
	Category    string            `json:"category"`
}

// Document is the point-in-time snapshot consumed by the presentation
// layer. Fully replaced on every run, never appended to.
type Document struct {
	UpdatedAt time.Time `json:"updatedAt"`
	Items     []Item    `json:"items"`
}

// ItemID derives the stable identifier for a news item: the first 16 hex
// characters of the SHA-256 digest of its URL
func ItemID(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])[:16]
}

// FromNewsItem converts a pipeline item to its snapshot form
func FromNewsItem(item domain.NewsItem) Item {
	return Item{
		ID:          ItemID(item.URL),
		Title:       item.Title,
		URL:         item.URL,
		Source:      item.Source,
		PublishedAt: item.PublishedAt,
		Importance:  item.Importance,
		Category:    item.Category,
	}
}

// Load reads the snapshot at path. A missing file is an empty snapshot,
// readers must tolerate it.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from config
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Document{UpdatedAt: time.Now(), Items: []Item{}}, nil
		}
		return nil, err
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Items == nil {
		doc.Items = []Item{}
	}
	return &doc, nil
}

// Categories returns the distinct categories in snapshot order
func (d *Document) Categories() []string {
	seen := map[string]struct{}{}
	res := []string{}
	for _, item := range d.Items {
		if _, ok := seen[item.Category]; ok {
			continue
		}
		seen[item.Category] = struct{}{}
		res = append(res, item.Category)
	}
	return res
}

// FilterByCategory returns the items belonging to the given category,
// empty or "all" means everything
func (d *Document) FilterByCategory(category string) []Item {
	if category == "" || category == "all" {
		return d.Items
	}
	res := []Item{}
	for _, item := range d.Items {
		if item.Category == category {
			res = append(res, item)
		}
	}
	return res
}
