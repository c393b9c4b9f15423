package enrich

import "sort"

// Stats accumulates rule impact over one pipeline run. Mutated only by
// Enrich; read by reporting once the run completes. Counts only increase.
type Stats struct {
	// TermsSeen is the total number of canonical terms passed to Enrich.
	TermsSeen int
	// AffectedTerms counts, per rule id, the terms on which the rule had at
	// least one variant accepted.
	AffectedTerms map[string]int
	// VariantsAdded counts, per rule id, the variants that survived the
	// dedup and the fanout cap.
	VariantsAdded map[string]int
}

// NewStats returns an empty accumulator.
func NewStats() *Stats {
	return &Stats{
		AffectedTerms: make(map[string]int),
		VariantsAdded: make(map[string]int),
	}
}

// RuleImpact is one row of the per-rule report.
type RuleImpact struct {
	RuleID        string
	TermsAffected int
	VariantsAdded int
	Description   string
}

// Report summarizes the accumulator against a rule table, one row per rule id
// that fired, sorted by (terms affected, variants added, rule id) descending.
// The description is taken from the id's first table entry.
func (s *Stats) Report(rules []Rule) []RuleImpact {
	descriptions := make(map[string]string)
	for _, r := range rules {
		if _, ok := descriptions[r.ID]; !ok {
			descriptions[r.ID] = r.Description
		}
	}

	var rows []RuleImpact
	for id, desc := range descriptions {
		affected := s.AffectedTerms[id]
		added := s.VariantsAdded[id]
		if affected == 0 && added == 0 {
			continue
		}
		rows = append(rows, RuleImpact{
			RuleID:        id,
			TermsAffected: affected,
			VariantsAdded: added,
			Description:   desc,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.TermsAffected != b.TermsAffected {
			return a.TermsAffected > b.TermsAffected
		}
		if a.VariantsAdded != b.VariantsAdded {
			return a.VariantsAdded > b.VariantsAdded
		}
		return a.RuleID > b.RuleID
	})
	return rows
}
