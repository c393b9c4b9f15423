package termgen

import (
	"strings"
	"testing"

	"github.com/hazyhaar/icdterms/pkg/enrich"
	"github.com/hazyhaar/icdterms/pkg/icd10"
)

func termSet(rows []TermRow) map[string]string {
	m := make(map[string]string, len(rows))
	for _, tr := range rows {
		if _, dup := m[tr.Term]; !dup {
			m[tr.Term] = tr.Type
		}
	}
	return m
}

func TestEmitRows_OfficialOnly(t *testing.T) {
	row := icd10.Row{Code: "A00.0", Flag: 1, ShortDesc: "Cholera, unsp", LongDesc: "Cholera, unspecified"}
	out := EmitRows(row, Options{}, nil)

	if len(out) != 1 {
		t.Fatalf("len = %d, want 1: %+v", len(out), out)
	}
	if out[0].Term != "Cholera, unspecified" || out[0].Type != TypeOfficial {
		t.Errorf("got %+v", out[0])
	}
}

func TestEmitRows_OfficialAbbr(t *testing.T) {
	row := icd10.Row{Code: "A00.0", ShortDesc: "Cholera, unsp", LongDesc: "Cholera, unspecified"}
	out := EmitRows(row, Options{IncludeOfficialAbbr: true}, nil)

	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	if out[1].Term != "Cholera, unsp" || out[1].Type != TypeOfficialAbbr {
		t.Errorf("got %+v", out[1])
	}

	// Identical short and long: no abbr row.
	row.ShortDesc = row.LongDesc
	out = EmitRows(row, Options{IncludeOfficialAbbr: true}, nil)
	if len(out) != 1 {
		t.Errorf("len = %d, want 1 when short == long", len(out))
	}

	// Empty short: no abbr row.
	row.ShortDesc = ""
	out = EmitRows(row, Options{IncludeOfficialAbbr: true}, nil)
	if len(out) != 1 {
		t.Errorf("len = %d, want 1 when short empty", len(out))
	}
}

func TestEmitRows_CanonicalLabels(t *testing.T) {
	row := icd10.Row{Code: "A00.0", ShortDesc: "Cholera, unsp", LongDesc: "Cholera, unspecified"}
	out := EmitRows(row, Options{IncludeOfficialAbbr: true, IncludeCanonical: true}, nil)

	terms := termSet(out)
	if ty := terms["cholera, unspecified"]; ty != "canonical:official" {
		t.Errorf("canonical long type = %q", ty)
	}
	if ty := terms["cholera, unsp"]; ty != "canonical:official+abbr" {
		t.Errorf("canonical short type = %q", ty)
	}
}

func TestEmitRows_CholeraScenario(t *testing.T) {
	p := icd10.NewParser(icd10.DefaultLayout())
	row, ok := p.ParseLine("00001 A00.0 1 Cholera, due to Vibrio cholerae  Cholera due to Vibrio cholerae")
	if !ok {
		t.Fatal("parse failed")
	}

	out := EmitRows(row, DefaultOptions(), nil)
	terms := termSet(out)

	want := map[string]string{
		"cholera due to vibrio cholerae": "canonical:official",
		"cholera because of vibrio cholerae": "enriched:C1",
		"cholera caused by vibrio cholerae":  "enriched:C1",
	}
	for term, ty := range want {
		got, ok := terms[term]
		if !ok {
			t.Errorf("missing term %q", term)
			continue
		}
		if got != ty {
			t.Errorf("term %q type = %q, want %q", term, got, ty)
		}
	}
}

func TestEmitRows_NoDuplicateTerms(t *testing.T) {
	rows := []icd10.Row{
		{Code: "A00.0", ShortDesc: "Cholera, due to Vibrio cholerae", LongDesc: "Cholera due to Vibrio cholerae"},
		{Code: "N18.9", ShortDesc: "Chronic kidney disease, unsp", LongDesc: "Chronic kidney disease, unspecified"},
		{Code: "X", ShortDesc: "same", LongDesc: "same"},
		{Code: "Y", ShortDesc: "lower case already", LongDesc: "Lower case already"},
	}
	for _, row := range rows {
		out := EmitRows(row, DefaultOptions(), nil)
		seen := make(map[string]struct{})
		for _, tr := range out {
			if strings.TrimSpace(tr.Term) != tr.Term || tr.Term == "" {
				t.Errorf("row %s: term %q not trimmed/non-empty", row.Code, tr.Term)
			}
			if _, dup := seen[tr.Term]; dup {
				t.Errorf("row %s: duplicate term %q", row.Code, tr.Term)
			}
			seen[tr.Term] = struct{}{}
		}
	}
}

func TestEmitRows_FirstProvenanceWins(t *testing.T) {
	// Long desc already canonical: the canonical pass reproduces the same
	// string, and the official label must win.
	row := icd10.Row{Code: "X", LongDesc: "already canonical"}
	out := EmitRows(row, Options{IncludeCanonical: true}, nil)

	if len(out) != 1 {
		t.Fatalf("len = %d, want 1", len(out))
	}
	if out[0].Type != TypeOfficial {
		t.Errorf("type = %q, want official (first occurrence)", out[0].Type)
	}
}

func TestEmitRows_StatsThreaded(t *testing.T) {
	stats := enrich.NewStats()
	row := icd10.Row{Code: "A00.0", ShortDesc: "Cholera, due to Vibrio cholerae", LongDesc: "Cholera due to Vibrio cholerae"}
	EmitRows(row, DefaultOptions(), stats)

	// Two canonical terms offered to the engine (official + abbr).
	if stats.TermsSeen != 2 {
		t.Errorf("TermsSeen = %d, want 2", stats.TermsSeen)
	}
	if stats.AffectedTerms["C1"] == 0 {
		t.Error("C1 should have fired on at least one canonical term")
	}
}
