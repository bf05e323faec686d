package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/kmiya/newsbrief/pkg/classify"
	"github.com/kmiya/newsbrief/pkg/domain"
)

// Fetcher retrieves and parses a single feed and turns its entries into
// canonical news items. One attempt per feed per run, no retries. Any
// retrieval or parse fault becomes a failed FetchResult rather than an
// error, so one bad feed can't abort the run.
type Fetcher struct {
	client       *http.Client
	userAgent    string
	normalizer   *Normalizer
	classifier   *classify.Classifier
	perFeedLimit int
}

// Options holds fetcher construction parameters
type Options struct {
	Timeout      time.Duration // per-fetch bound, one stalled feed can't hang the run
	UserAgent    string
	PerFeedLimit int // max items taken from a single feed, in feed order
}

// NewFetcher creates a feed fetcher with a tuned http client
func NewFetcher(classifier *classify.Classifier, opts Options) *Fetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "newsbrief/1.0"
	}
	if opts.PerFeedLimit == 0 {
		opts.PerFeedLimit = 4
	}

	return &Fetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgent:    opts.UserAgent,
		normalizer:   NewNormalizer(),
		classifier:   classifier,
		perFeedLimit: opts.PerFeedLimit,
	}
}

// Fetch retrieves one feed and produces its per-feed result. Entries with
// empty titles or matching the exclusion denylist are dropped, survivors are
// capped to the per-feed limit in feed order, then normalized and classified.
func (f *Fetcher) Fetch(ctx context.Context, fc domain.FeedConfig) domain.FetchResult {
	parsed, err := f.retrieve(ctx, fc.URL)
	if err != nil {
		return domain.FetchResult{Category: fc.Category, Items: []domain.NewsItem{}, Error: err.Error()}
	}

	items := make([]domain.NewsItem, 0, f.perFeedLimit)
	for _, entry := range parsed.Items {
		if entry.Title == "" || f.classifier.Excluded(entry.Title) {
			continue
		}
		if len(items) >= f.perFeedLimit {
			break
		}

		title, source := f.normalizer.SplitTitle(entry.Title)
		items = append(items, domain.NewsItem{
			Title:       title,
			URL:         entry.Link,
			PublishedAt: f.normalizer.FormatTime(publishTime(entry)),
			Source:      source,
			Importance:  f.classifier.Importance(title),
			Category:    fc.Category,
		})
	}

	return domain.FetchResult{Success: true, Category: fc.Category, Items: items}
}

// retrieve fetches the feed content and parses it with gofeed
func (f *Fetcher) retrieve(ctx context.Context, url string) (*gofeed.Feed, error) {
	body, err := f.fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer body.Close()

	parsed, err := gofeed.NewParser().Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return parsed, nil
}

// fetch retrieves content from a URL
func (f *Fetcher) fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch URL: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return resp.Body, nil
}

// publishTime picks the best available timestamp from a feed entry
func publishTime(entry *gofeed.Item) *time.Time {
	if entry.PublishedParsed != nil {
		return entry.PublishedParsed
	}
	return entry.UpdatedParsed
}
