package enrich

import (
	"reflect"
	"sort"
	"testing"
)

// variantsByRule runs Enrich with a generous cap and groups results by rule id.
func variantsByRule(t *testing.T, term string) map[string][]string {
	t.Helper()
	out := make(map[string][]string)
	for _, v := range Enrich(term, 100, DefaultRules, nil) {
		out[v.RuleID] = append(out[v.RuleID], v.Term)
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestRuleHyphens(t *testing.T) {
	got := variantsByRule(t, "left-sided weakness")
	if !contains(got["A1"], "left sided weakness") {
		t.Errorf("A1 = %v", got["A1"])
	}
	if !contains(got["A2"], "leftsided weakness") {
		t.Errorf("A2 = %v", got["A2"])
	}

	// Unicode dashes normalize to ASCII first.
	got = variantsByRule(t, "beta–thalassemia")
	if !contains(got["A1"], "beta thalassemia") {
		t.Errorf("A1 en-dash = %v", got["A1"])
	}
	if !contains(got["A2"], "betathalassemia") {
		t.Errorf("A2 en-dash = %v", got["A2"])
	}
}

func TestRuleApostrophes(t *testing.T) {
	got := variantsByRule(t, "crohn's disease")
	if !contains(got["A3"], "crohns disease") {
		t.Errorf("A3 = %v", got["A3"])
	}
	got = variantsByRule(t, "crohn’s disease")
	if !contains(got["A3"], "crohns disease") {
		t.Errorf("A3 smart quote = %v", got["A3"])
	}
}

func TestRuleAndAmp(t *testing.T) {
	got := variantsByRule(t, "signs and symptoms")
	if !contains(got["A4"], "signs & symptoms") {
		t.Errorf("A4 = %v", got["A4"])
	}
	got = variantsByRule(t, "signs & symptoms")
	if !contains(got["A4"], "signs and symptoms") {
		t.Errorf("A4 reverse = %v", got["A4"])
	}
}

func TestRuleOrSlash(t *testing.T) {
	got := variantsByRule(t, "nausea or vomiting")
	if !contains(got["A5"], "nausea / vomiting") {
		t.Errorf("A5 = %v", got["A5"])
	}
	got = variantsByRule(t, "nausea / vomiting")
	if !contains(got["A5"], "nausea or vomiting") {
		t.Errorf("A5 reverse = %v", got["A5"])
	}
}

func TestRuleAbbreviations_WholeWord(t *testing.T) {
	tests := []struct {
		term, ruleID, want string
	}{
		{"acute bronchitis", "B3", "acu bronchitis"},
		{"chronic kidney disease", "B2", "chr kidney disease"},
		{"down syndrome", "B1", "down synd"},
		{"left leg", "B4", "lt leg"},
		{"right arm", "B4", "rt arm"},
	}
	for _, tt := range tests {
		got := variantsByRule(t, tt.term)
		if !contains(got[tt.ruleID], tt.want) {
			t.Errorf("%q: %s = %v, want %q", tt.term, tt.ruleID, got[tt.ruleID], tt.want)
		}
	}

	// No partial-word hits.
	got := variantsByRule(t, "subacute disease")
	if len(got["B3"]) != 0 {
		t.Errorf("B3 fired inside a word: %v", got["B3"])
	}
}

func TestRuleAbbreviations_RoundTrip(t *testing.T) {
	got := variantsByRule(t, "acute bronchitis")
	if !contains(got["B3"], "acu bronchitis") {
		t.Fatalf("B3 = %v", got["B3"])
	}
	back := variantsByRule(t, "acu bronchitis")
	if !contains(back["B3"], "acute bronchitis") {
		t.Errorf("B3 round trip = %v", back["B3"])
	}
}

func TestRuleDueTo(t *testing.T) {
	got := variantsByRule(t, "cholera due to vibrio cholerae")
	want := []string{"cholera because of vibrio cholerae", "cholera caused by vibrio cholerae"}
	if !reflect.DeepEqual(got["C1"], want) {
		t.Errorf("C1 = %v, want %v", got["C1"], want)
	}

	// Whitespace-flexible match (engine normalizes spaces on the way out).
	got = variantsByRule(t, "anemia due  to blood loss")
	if !contains(got["C1"], "anemia because of blood loss") {
		t.Errorf("C1 flexible whitespace = %v", got["C1"])
	}
}

func TestRuleUnspecified(t *testing.T) {
	got := variantsByRule(t, "chronic kidney disease, unspecified")
	if !contains(got["C2"], "unspecified chronic kidney disease") {
		t.Errorf("C2 = %v", got["C2"])
	}

	// Single-word stems are suppressed.
	got = variantsByRule(t, "anthrax, unspecified")
	if len(got["C2"]) != 0 {
		t.Errorf("C2 fired on single-word stem: %v", got["C2"])
	}

	// No suffix, no variant.
	got = variantsByRule(t, "unspecified in the middle, sort of")
	if len(got["C2"]) != 0 {
		t.Errorf("C2 fired without suffix: %v", got["C2"])
	}
}

func TestRuleStageRange(t *testing.T) {
	got := variantsByRule(t, "diabetes with stage 1 through stage 4 chronic kidney disease")
	want := []string{
		"diabetes with stage 1 chronic kidney disease",
		"diabetes with stage 2 chronic kidney disease",
		"diabetes with stage 3 chronic kidney disease",
		"diabetes with stage 4 chronic kidney disease",
	}
	if !reflect.DeepEqual(got["D1"], want) {
		t.Errorf("D1 = %v, want %v", got["D1"], want)
	}

	// "thru" spelling and reversed bounds.
	got = variantsByRule(t, "stage 3 thru stage 2 disease")
	want = []string{"stage 2 disease", "stage 3 disease"}
	sort.Strings(got["D1"])
	if !reflect.DeepEqual(got["D1"], want) {
		t.Errorf("D1 thru/reversed = %v, want %v", got["D1"], want)
	}

	// Out-of-range stages do not match.
	got = variantsByRule(t, "stage 5 through stage 7 disease")
	if len(got["D1"]) != 0 {
		t.Errorf("D1 fired outside 1..4: %v", got["D1"])
	}
}

func TestRuleParenthetical_PluralSuffixes(t *testing.T) {
	got := variantsByRule(t, "open wound of finger(s)")
	if !contains(got["P1"], "open wound of finger") {
		t.Errorf("P1 singular = %v", got["P1"])
	}
	if !contains(got["P1"], "open wound of fingers") {
		t.Errorf("P1 plural = %v", got["P1"])
	}

	got = variantsByRule(t, "injury of artery(ies)")
	if !contains(got["P1"], "injury of artery") {
		t.Errorf("P1 y-singular = %v", got["P1"])
	}
	if !contains(got["P1"], "injury of arteries") {
		t.Errorf("P1 ies-plural = %v", got["P1"])
	}

	got = variantsByRule(t, "abscess(es) of lung")
	if !contains(got["P1"], "abscess of lung") {
		t.Errorf("P1 es-singular = %v", got["P1"])
	}
	if !contains(got["P1"], "abscesses of lung") {
		t.Errorf("P1 es-plural = %v", got["P1"])
	}
}

func TestRuleParenthetical_Groups(t *testing.T) {
	got := variantsByRule(t, "malaria (tertian) fever")
	if !contains(got["P1"], "malaria fever") {
		t.Errorf("P1 removed = %v", got["P1"])
	}
	if !contains(got["P1"], "malaria tertian fever") {
		t.Errorf("P1 inlined = %v", got["P1"])
	}
}

func TestRuleParenthetical_MultipleGroups(t *testing.T) {
	got := variantsByRule(t, "fracture (open) of arm (left)")
	p1 := got["P1"]

	for _, want := range []string{
		"fracture of arm",           // all removed
		"fracture open of arm left", // all inlined
		"fracture open of arm",      // first inlined only
		"fracture of arm left",      // second inlined only
		"open",                      // bare contents
		"left",
		"open left", // contents joined
	} {
		if !contains(p1, want) {
			t.Errorf("P1 missing %q in %v", want, p1)
		}
	}
}

func TestRuleParenthetical_NoParens(t *testing.T) {
	if got := ruleParenthetical("no parens here"); got != nil {
		t.Errorf("got %v, want nil", got)
	}
}
