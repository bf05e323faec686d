package classify

import (
	"strings"

	"github.com/kmiya/newsbrief/pkg/domain"
)

// Rules holds the keyword sets driving exclusion and importance tiers.
// Matching is case-insensitive substring search over headline text.
type Rules struct {
	Exclude []string
	High    []string
	Medium  []string
}

// Classifier applies keyword rules to item titles. All state is immutable
// after construction, safe for concurrent use.
type Classifier struct {
	exclude []string
	high    []string
	medium  []string
}

// New creates a classifier from the given rules, lowercasing keywords once
// so per-title checks don't re-fold them
func New(rules Rules) *Classifier {
	return &Classifier{
		exclude: lowerAll(rules.Exclude),
		high:    lowerAll(rules.High),
		medium:  lowerAll(rules.Medium),
	}
}

// Excluded reports whether the title hits the exclusion denylist.
// Excluded titles never reach classification or dedup.
func (c *Classifier) Excluded(title string) bool {
	return matchAny(strings.ToLower(title), c.exclude)
}

// Importance maps a title to a tier. High keywords are checked before medium
// ones, so a title matching both tiers lands in high. No match means low.
func (c *Classifier) Importance(title string) domain.Importance {
	folded := strings.ToLower(title)
	if matchAny(folded, c.high) {
		return domain.ImportanceHigh
	}
	if matchAny(folded, c.medium) {
		return domain.ImportanceMedium
	}
	return domain.ImportanceLow
}

func matchAny(folded string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(folded, kw) {
			return true
		}
	}
	return false
}

func lowerAll(keywords []string) []string {
	res := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		res = append(res, strings.ToLower(strings.TrimSpace(kw)))
	}
	return res
}
