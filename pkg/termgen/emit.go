package termgen

import (
	"strings"

	"github.com/hazyhaar/icdterms/pkg/enrich"
	"github.com/hazyhaar/icdterms/pkg/icd10"
)

// Options controls which term families EmitRows produces for a row.
type Options struct {
	// IncludeOfficialAbbr emits the short description as official+abbr when
	// it is non-empty and differs from the long description.
	IncludeOfficialAbbr bool
	// IncludeCanonical emits the canonical form of every official term.
	IncludeCanonical bool
	// IncludeEnriched runs the rule engine over the canonical terms.
	// Requires IncludeCanonical to have any effect.
	IncludeEnriched bool
	// EnrichedMaxPerTerm is the rule engine's fanout cap.
	EnrichedMaxPerTerm int
	// Rules is the enrichment rule table; nil means enrich.DefaultRules.
	Rules []enrich.Rule
}

// DefaultOptions enables everything with the standard fanout cap.
func DefaultOptions() Options {
	return Options{
		IncludeOfficialAbbr: true,
		IncludeCanonical:    true,
		IncludeEnriched:     true,
		EnrichedMaxPerTerm:  25,
	}
}

// EmitRows returns the ordered (term, type) pairs for one catalog row:
// official, optionally official+abbr, then canonical forms of both, then
// enriched variants of the canonical forms. A final row-local pass trims
// terms, drops empties, and keeps only the first occurrence of each distinct
// term string with its first label.
//
// Pure except for the optional stats side effect delegated to the engine.
func EmitRows(row icd10.Row, opts Options, stats *enrich.Stats) []TermRow {
	output := []TermRow{{Term: row.LongDesc, Type: TypeOfficial}}

	if opts.IncludeOfficialAbbr && row.ShortDesc != "" && row.ShortDesc != row.LongDesc {
		output = append(output, TermRow{Term: row.ShortDesc, Type: TypeOfficialAbbr})
	}

	if opts.IncludeCanonical {
		for _, tr := range output[:len(output):len(output)] {
			output = append(output, TermRow{
				Term: Canonicalize(tr.Term),
				Type: TypeCanonicalPrefix + tr.Type,
			})
		}
	}

	if opts.IncludeEnriched {
		rules := opts.Rules
		if rules == nil {
			rules = enrich.DefaultRules
		}
		// Enrich canonical terms only, so casing and punctuation variants of
		// the raw descriptions do not multiply.
		for _, tr := range output[:len(output):len(output)] {
			if !strings.HasPrefix(tr.Type, TypeCanonicalPrefix) {
				continue
			}
			for _, v := range enrich.Enrich(tr.Term, opts.EnrichedMaxPerTerm, rules, stats) {
				output = append(output, TermRow{
					Term: v.Term,
					Type: TypeEnrichedPrefix + v.RuleID,
				})
			}
		}
	}

	// Row-local dedup: first occurrence wins, first label preserved.
	seen := make(map[string]struct{}, len(output))
	deduped := output[:0:0]
	for _, tr := range output {
		term := strings.TrimSpace(tr.Term)
		if term == "" {
			continue
		}
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		deduped = append(deduped, TermRow{Term: term, Type: tr.Type})
	}
	return deduped
}
