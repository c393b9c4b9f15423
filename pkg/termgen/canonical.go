// Package termgen turns parsed catalog rows into (term, type) pairs: the
// official descriptions, their canonical forms, and rule-enriched variants,
// each tagged with a provenance type label.
package termgen

import (
	"regexp"
	"strings"
)

// Provenance type labels attached to emitted terms.
const (
	TypeOfficial     = "official"
	TypeOfficialAbbr = "official+abbr"

	// Prefixes composing the derived labels: "canonical:official",
	// "canonical:official+abbr", "enriched:<ruleId>".
	TypeCanonicalPrefix = "canonical:"
	TypeEnrichedPrefix  = "enriched:"
)

// TermRow is one emitted (term, type) pair.
type TermRow struct {
	Term string
	Type string
}

// Trailing characters stripped during canonicalization: whitespace, nbsp,
// and sentence punctuation.
const trailingCutset = "  .!?,;:"

var spaceRunRe = regexp.MustCompile(`[\s\x{00A0}]+`)

// Canonicalize lowercases, strips trailing punctuation, collapses whitespace
// runs (including non-breaking spaces) to single spaces, and trims. The
// result is the enrichment input and the dedup key for a term. Total and
// idempotent.
func Canonicalize(term string) string {
	t := strings.ToLower(term)
	t = strings.TrimRight(t, trailingCutset)
	t = spaceRunRe.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}
