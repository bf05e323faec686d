package digest

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"

	"github.com/kmiya/newsbrief/pkg/snapshot"
)

// Print renders the run's digest to w, grouped by category in snapshot
// order. Pure projection of already-computed data, no decisions here.
func Print(w io.Writer, doc *snapshot.Document, stats Stats) {
	header := color.New(color.Bold, color.FgCyan)
	dim := color.New(color.Faint)

	fmt.Fprintf(w, "news digest, updated %s\n", doc.UpdatedAt.Format("2006-01-02 15:04"))

	for _, category := range doc.Categories() {
		_, _ = header.Fprintf(w, "\n[%s]\n", category)
		for _, item := range doc.FilterByCategory(category) {
			fmt.Fprintf(w, "  (%s) %s\n", item.Importance, item.Title)
			_, _ = dim.Fprintf(w, "      %s | %s\n      %s\n", item.Source, item.PublishedAt, item.URL)
		}
	}

	failed := make([]string, 0, len(stats.Failures))
	for category := range stats.Failures {
		failed = append(failed, category)
	}
	sort.Strings(failed) // map order is random, keep the digest reproducible
	for _, category := range failed {
		fmt.Fprintf(w, "\nfeed %q failed: %s\n", category, stats.Failures[category])
	}

	fmt.Fprintf(w, "\n%d items fetched, %d new\n", stats.TotalFetched, stats.NewCount)
}
