// Package enrich expands canonical terms into alternate phrasings through an
// ordered table of rewrite rules.
//
// Input terms must already be canonical (lowercase, trimmed, single-spaced);
// the engine does not re-canonicalize. Rules are dumb: each yields candidate
// strings for one term and nothing else. The engine owns deduplication, the
// per-term fanout cap, and statistics. Rules may share an id (bidirectional
// pairs); the id is a reporting key, not an identity.
package enrich

import (
	"regexp"
	"strings"
)

// Rule is one rewrite entry: a reporting id, a human-readable description,
// and a pure function from a canonical term to candidate variants. Apply must
// return nil when the term contains none of the rule's trigger characters.
type Rule struct {
	ID          string
	Description string
	Apply       func(term string) []string
}

// Variant is one accepted variant tagged with the rule that produced it.
type Variant struct {
	Term   string
	RuleID string
}

var spaceRunRe = regexp.MustCompile(`\s+`)

// NormalizeSpaces collapses whitespace runs to single spaces and trims.
func NormalizeSpaces(term string) string {
	return strings.TrimSpace(spaceRunRe.ReplaceAllString(term, " "))
}

// Enrich runs every rule against term in table order and returns the accepted
// (variant, rule id) pairs. A candidate is accepted only while fewer than
// maxVariants variants exist, and only if its space-normalized form is
// non-empty, differs from term, and has not been accepted before. Output is
// deterministic for a given term, rule table, and cap.
//
// When stats is non-nil it is updated in place: TermsSeen once, and per rule
// id the affected-terms and variants-added tallies for this call.
func Enrich(term string, maxVariants int, rules []Rule, stats *Stats) []Variant {
	if stats != nil {
		stats.TermsSeen++
	}

	var variants []Variant
	seen := map[string]struct{}{term: {}}
	localAdded := make(map[string]int)

	for _, rule := range rules {
		for _, candidate := range rule.Apply(term) {
			if len(variants) >= maxVariants {
				break
			}
			c := NormalizeSpaces(candidate)
			if c == "" {
				continue
			}
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			variants = append(variants, Variant{Term: c, RuleID: rule.ID})
			localAdded[rule.ID]++
		}
	}

	if stats != nil {
		for id, n := range localAdded {
			stats.AffectedTerms[id]++
			stats.VariantsAdded[id] += n
		}
	}
	return variants
}
