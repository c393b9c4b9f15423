package enrich

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultRules is the rule table in evaluation order. Add/edit rules here.
// B entries come in pairs sharing an id so both directions of an abbreviation
// swap report under one key.
var DefaultRules = []Rule{
	{"P1", "Split parentheticals and optional plural suffixes", ruleParenthetical},
	{"D1", "Expand 'stage N through stage M' ranges", ruleStageRange},
	{"A1", "Replace hyphens with spaces", ruleHyphenToSpace},
	{"A2", "Remove hyphens", ruleHyphenRemove},
	{"A3", "Remove apostrophes", ruleRemoveApostrophes},
	{"A4", "Swap 'and' <-> '&'", ruleSwapAndAmp},
	{"A5", "Swap 'or' <-> '/'", ruleSwapOrSlash},
	{"B1", "syndrome <-> synd", regexSwap(`\bsyndrome\b`, "synd")},
	{"B1", "syndrome <-> synd", regexSwap(`\bsynd\b`, "syndrome")},
	{"B2", "chronic <-> chr", regexSwap(`\bchronic\b`, "chr")},
	{"B2", "chronic <-> chr", regexSwap(`\bchr\b`, "chronic")},
	{"B3", "acute <-> acu", regexSwap(`\bacute\b`, "acu")},
	{"B3", "acute <-> acu", regexSwap(`\bacu\b`, "acute")},
	{"B4", "left/right <-> lt/rt", regexSwap(`\bleft\b`, "lt")},
	{"B4", "left/right <-> lt/rt", regexSwap(`\bright\b`, "rt")},
	{"B4", "left/right <-> lt/rt", regexSwap(`\blt\b`, "left")},
	{"B4", "left/right <-> lt/rt", regexSwap(`\brt\b`, "right")},
	{"C1", "due to -> because of|caused by", ruleDueToVariants},
	{"C2", "suffix ', unspecified' -> prefix 'unspecified'", ruleUnspecifiedSuffixToPrefix},
}

// regexSwap builds a single-substitution rule function. Word boundaries in
// the pattern avoid partial hits.
func regexSwap(pattern, replacement string) func(string) []string {
	re := regexp.MustCompile(pattern)
	return func(term string) []string {
		if !re.MatchString(term) {
			return nil
		}
		return []string{re.ReplaceAllString(term, replacement)}
	}
}

// --- P1: parentheticals ---

var (
	// "artery(ies)" -> "artery" / "arteries"
	parenIesRe = regexp.MustCompile(`\b([a-z]+)y\(ies\)`)
	// "finger(s)" / "abscess(es)" -> singular / plural with suffix attached
	parenSuffixRe = regexp.MustCompile(`\b([a-z]+)\((s|es)\)`)
	// Any remaining non-nested parenthetical group.
	parenGroupRe = regexp.MustCompile(`\(([^()]*)\)`)
)

// ruleParenthetical splits a term with parentheses into variants: optional
// plural suffixes expanded both ways, then general groups removed, inlined,
// and (for multi-group terms) inlined one at a time plus the bare contents.
// Candidates are offered raw; the engine normalizes whitespace and drops the
// original via its seen-set.
func ruleParenthetical(term string) []string {
	if !strings.ContainsAny(term, "()") {
		return nil
	}
	out := []string{strings.ToLower(term)}

	stripped := term
	if parenIesRe.MatchString(stripped) {
		out = append(out,
			parenIesRe.ReplaceAllString(stripped, "${1}y"),
			parenIesRe.ReplaceAllString(stripped, "${1}ies"),
		)
		stripped = parenIesRe.ReplaceAllString(stripped, "${1}y")
	}
	if parenSuffixRe.MatchString(stripped) {
		out = append(out,
			parenSuffixRe.ReplaceAllString(stripped, "$1"),
			parenSuffixRe.ReplaceAllString(stripped, "$1$2"),
		)
		stripped = parenSuffixRe.ReplaceAllString(stripped, "$1")
	}

	groups := parenGroupRe.FindAllStringSubmatch(stripped, -1)
	if len(groups) == 0 {
		return out
	}

	out = append(out,
		parenGroupRe.ReplaceAllString(stripped, ""),   // all groups removed
		parenGroupRe.ReplaceAllString(stripped, "$1"), // all groups inlined
	)

	if len(groups) > 1 {
		for keep := range groups {
			idx := 0
			v := parenGroupRe.ReplaceAllStringFunc(stripped, func(m string) string {
				defer func() { idx++ }()
				if idx == keep {
					return parenGroupRe.FindStringSubmatch(m)[1]
				}
				return ""
			})
			out = append(out, v)
		}
		contents := make([]string, 0, len(groups))
		for _, g := range groups {
			out = append(out, g[1])
			contents = append(contents, g[1])
		}
		out = append(out, strings.Join(contents, " "))
	}
	return out
}

// --- D1: stage ranges ---

var stageRangeRe = regexp.MustCompile(`\bstage\s+([1-4])\s+(?:through|thru)\s+stage\s+([1-4])\b`)

// ruleStageRange yields one variant per stage in the inclusive range, each
// replacing only the matched span.
func ruleStageRange(term string) []string {
	loc := stageRangeRe.FindStringSubmatchIndex(term)
	if loc == nil {
		return nil
	}
	lo := int(term[loc[2]] - '0')
	hi := int(term[loc[4]] - '0')
	if lo > hi {
		lo, hi = hi, lo
	}
	out := make([]string, 0, hi-lo+1)
	for k := lo; k <= hi; k++ {
		out = append(out, term[:loc[0]]+"stage "+strconv.Itoa(k)+term[loc[1]:])
	}
	return out
}

// --- A rules: punctuation variants ---

func hasDash(term string) bool {
	return strings.ContainsAny(term, "-–—")
}

func normalizeDashes(term string) string {
	term = strings.ReplaceAll(term, "–", "-")
	return strings.ReplaceAll(term, "—", "-")
}

func ruleHyphenToSpace(term string) []string {
	if !hasDash(term) {
		return nil
	}
	return []string{strings.ReplaceAll(normalizeDashes(term), "-", " ")}
}

func ruleHyphenRemove(term string) []string {
	if !hasDash(term) {
		return nil
	}
	return []string{strings.ReplaceAll(normalizeDashes(term), "-", "")}
}

func ruleRemoveApostrophes(term string) []string {
	if !strings.ContainsAny(term, "'’") {
		return nil
	}
	term = strings.ReplaceAll(term, "’", "")
	return []string{strings.ReplaceAll(term, "'", "")}
}

func ruleSwapAndAmp(term string) []string {
	var out []string
	if strings.Contains(term, " and ") {
		out = append(out, strings.ReplaceAll(term, " and ", " & "))
	}
	if strings.Contains(term, " & ") {
		out = append(out, strings.ReplaceAll(term, " & ", " and "))
	}
	return out
}

func ruleSwapOrSlash(term string) []string {
	var out []string
	if strings.Contains(term, " or ") {
		out = append(out, strings.ReplaceAll(term, " or ", " / "))
	}
	if strings.Contains(term, " / ") {
		out = append(out, strings.ReplaceAll(term, " / ", " or "))
	}
	return out
}

// --- C rules: phrase rewrites ---

var dueToRe = regexp.MustCompile(`\bdue\s+to\b`)

func ruleDueToVariants(term string) []string {
	if !dueToRe.MatchString(term) {
		return nil
	}
	return []string{
		dueToRe.ReplaceAllString(term, "because of"),
		dueToRe.ReplaceAllString(term, "caused by"),
	}
}

// ruleUnspecifiedSuffixToPrefix moves a trailing ", unspecified" to the
// front. Single-word stems are suppressed: "unspecified anthrax" adds noise,
// "unspecified chronic kidney disease" is a real query phrasing.
func ruleUnspecifiedSuffixToPrefix(term string) []string {
	const suffix = ", unspecified"
	if !strings.HasSuffix(term, suffix) {
		return nil
	}
	stem := strings.TrimRight(term[:len(term)-len(suffix)], " ")
	stem = strings.TrimRight(strings.TrimSuffix(stem, ","), " ")
	if len(strings.Fields(stem)) < 2 {
		return nil
	}
	return []string{"unspecified " + stem}
}
