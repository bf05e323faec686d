package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmiya/newsbrief/pkg/classify"
	"github.com/kmiya/newsbrief/pkg/domain"
)

func rssFeed(items ...string) string {
	body := `<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>Test Feed</title>`
	for _, item := range items {
		body += item
	}
	return body + `</channel></rss>`
}

func rssItem(title, link, pubDate string) string {
	res := fmt.Sprintf("<item><title>%s</title><link>%s</link>", title, link)
	if pubDate != "" {
		res += "<pubDate>" + pubDate + "</pubDate>"
	}
	return res + "</item>"
}

func TestFetcher_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, rssFeed(
			rssItem("Breaking: markets tumble - Reuters", "http://example.com/1", "Mon, 02 Jan 2006 15:04:05 -0700"),
			rssItem("Celebrity gossip special - TMZ", "http://example.com/2", ""),
			rssItem("Quiet earnings day - Bloomberg", "http://example.com/3", ""),
		))
	}))
	defer server.Close()

	classifier := classify.New(classify.Rules{
		Exclude: []string{"gossip"},
		High:    []string{"breaking"},
	})
	fetcher := NewFetcher(classifier, Options{Timeout: 5 * time.Second, PerFeedLimit: 4})

	res := fetcher.Fetch(context.Background(), domain.FeedConfig{Category: "finance", URL: server.URL})
	require.True(t, res.Success)
	assert.Empty(t, res.Error)
	assert.Equal(t, "finance", res.Category)

	require.Len(t, res.Items, 2, "excluded entry dropped")

	first := res.Items[0]
	assert.Equal(t, "Breaking: markets tumble", first.Title)
	assert.Equal(t, "Reuters", first.Source)
	assert.Equal(t, "http://example.com/1", first.URL)
	assert.Equal(t, domain.ImportanceHigh, first.Importance)
	assert.Equal(t, "finance", first.Category)
	assert.NotEqual(t, "unknown", first.PublishedAt)

	second := res.Items[1]
	assert.Equal(t, "Quiet earnings day", second.Title)
	assert.Equal(t, "Bloomberg", second.Source)
	assert.Equal(t, domain.ImportanceLow, second.Importance)
	assert.Equal(t, "unknown", second.PublishedAt, "missing pubDate degrades to sentinel")
}

func TestFetcher_Fetch_PerFeedLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		items := make([]string, 0, 10)
		for i := 0; i < 10; i++ {
			items = append(items, rssItem(fmt.Sprintf("Story %d", i), fmt.Sprintf("http://example.com/%d", i), ""))
		}
		fmt.Fprint(w, rssFeed(items...))
	}))
	defer server.Close()

	fetcher := NewFetcher(classify.New(classify.Rules{}), Options{PerFeedLimit: 3})

	res := fetcher.Fetch(context.Background(), domain.FeedConfig{Category: "tech", URL: server.URL})
	require.True(t, res.Success)
	require.Len(t, res.Items, 3)

	// feed order preserved, no re-sorting at this stage
	assert.Equal(t, "Story 0", res.Items[0].Title)
	assert.Equal(t, "Story 1", res.Items[1].Title)
	assert.Equal(t, "Story 2", res.Items[2].Title)
}

func TestFetcher_Fetch_EmptyTitlesSkipped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rssFeed(
			rssItem("", "http://example.com/1", ""),
			rssItem("Real story", "http://example.com/2", ""),
		))
	}))
	defer server.Close()

	fetcher := NewFetcher(classify.New(classify.Rules{}), Options{})

	res := fetcher.Fetch(context.Background(), domain.FeedConfig{Category: "tech", URL: server.URL})
	require.True(t, res.Success)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Real story", res.Items[0].Title)
}

func TestFetcher_Fetch_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	fetcher := NewFetcher(classify.New(classify.Rules{}), Options{})

	res := fetcher.Fetch(context.Background(), domain.FeedConfig{Category: "tech", URL: server.URL})
	assert.False(t, res.Success)
	assert.Empty(t, res.Items)
	assert.Contains(t, res.Error, "unexpected status code: 500")
}

func TestFetcher_Fetch_MalformedFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "this is not a feed")
	}))
	defer server.Close()

	fetcher := NewFetcher(classify.New(classify.Rules{}), Options{})

	res := fetcher.Fetch(context.Background(), domain.FeedConfig{Category: "tech", URL: server.URL})
	assert.False(t, res.Success)
	assert.Empty(t, res.Items)
	assert.Contains(t, res.Error, "parse feed")
}

func TestFetcher_Fetch_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	fetcher := NewFetcher(classify.New(classify.Rules{}), Options{Timeout: 50 * time.Millisecond})

	res := fetcher.Fetch(context.Background(), domain.FeedConfig{Category: "tech", URL: server.URL})
	assert.False(t, res.Success, "timeout is a failure value like any other fetch error")
	assert.NotEmpty(t, res.Error)
}
