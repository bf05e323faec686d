package feed

import (
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/kmiya/newsbrief/pkg/domain"
)

// sourceSuffixRe matches a single trailing " - SourceName" segment, the way
// aggregated feeds append the publisher to the headline. Only the last
// hyphen-delimited segment counts as source.
var sourceSuffixRe = regexp.MustCompile(` - ([^-]+)$`)

// Normalizer turns raw feed entries into canonical items: strips markup from
// titles, splits off the publisher suffix and formats publish times.
// Pure and total, malformed input degrades to sentinels instead of failing.
type Normalizer struct {
	sanitize *bluemonday.Policy
}

// NewNormalizer creates a normalizer with a strict sanitization policy,
// feed titles occasionally carry stray tags and entities
func NewNormalizer() *Normalizer {
	return &Normalizer{sanitize: bluemonday.StrictPolicy()}
}

// SplitTitle returns the clean title and the extracted source name.
// A title without a recognizable suffix keeps its text and gets the
// "unknown" source sentinel.
func (n *Normalizer) SplitTitle(raw string) (title, source string) {
	// suffix is matched before trimming, the pattern needs the space ahead
	// of the hyphen to stay intact
	clean := html.UnescapeString(n.sanitize.Sanitize(raw))

	source = domain.UnknownValue
	if m := sourceSuffixRe.FindStringSubmatch(clean); m != nil {
		if s := strings.TrimSpace(m[1]); s != "" {
			source = s
		}
	}
	title = strings.TrimSpace(sourceSuffixRe.ReplaceAllString(clean, ""))
	return title, source
}

// FormatTime renders a publish time as a short human-readable string,
// "unknown" when the feed provided none
func (n *Normalizer) FormatTime(ts *time.Time) string {
	if ts == nil || ts.IsZero() {
		return domain.UnknownValue
	}
	return ts.Local().Format("Jan 2 15:04")
}
