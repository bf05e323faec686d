package domain

// Importance is the keyword-derived tier of a news item
type Importance string

// importance tiers, ordered high to low
const (
	ImportanceHigh   Importance = "high"
	ImportanceMedium Importance = "medium"
	ImportanceLow    Importance = "low"
)

// Weight returns the sort weight of the tier, bigger means more important
func (i Importance) Weight() int {
	switch i {
	case ImportanceHigh:
		return 2
	case ImportanceMedium:
		return 1
	default:
		return 0
	}
}

// UnknownValue is the sentinel used when a source or publish time can't be determined
const UnknownValue = "unknown"

// NewsItem represents a canonical article produced by the fetch pipeline.
// Immutable once created, ownership moves from fetch result to the
// aggregated batch and finally to the snapshot writer.
type NewsItem struct {
	Title       string
	URL         string
	PublishedAt string // human-formatted, UnknownValue if unparseable
	Source      string
	Importance  Importance
	Category    string
}
