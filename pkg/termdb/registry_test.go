package termdb

import (
	"os"
	"path/filepath"
	"testing"
)

func setupRegistry(t *testing.T) (*Registry, string) {
	t.Helper()
	dir := t.TempDir()

	d1 := filepath.Join(dir, "icd10cm-2026")
	os.MkdirAll(d1, 0o755)
	os.WriteFile(filepath.Join(d1, "manifest.yaml"), []byte(`id: icd10cm-2026
catalog: icd10cm
version: "2026"
source: test
license: Public Domain
data_file: terms.csv
format:
  normalize: canonical
`), 0o644)
	os.WriteFile(filepath.Join(d1, "terms.csv"), []byte(`ICD10CMCode,Term,Type
A00.0,cholera due to vibrio cholerae,canonical:official
J20.9,acute bronchitis unspecified,canonical:official
N18.9,chronic kidney disease,canonical:official
`), 0o644)

	d2 := filepath.Join(dir, "icd10cm-2025")
	os.MkdirAll(d2, 0o755)
	os.WriteFile(filepath.Join(d2, "manifest.yaml"), []byte(`id: icd10cm-2025
catalog: icd10cm
version: "2025"
source: test
license: Public Domain
data_file: terms.csv
format:
  normalize: canonical
`), 0o644)
	os.WriteFile(filepath.Join(d2, "terms.csv"), []byte(`ICD10CMCode,Term,Type
A00.0,cholera due to vibrio cholerae,canonical:official
`), 0o644)

	reg := NewRegistry(dir)
	if err := reg.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return reg, dir
}

func TestRegistryLoad(t *testing.T) {
	reg, _ := setupRegistry(t)

	if reg.TableCount() != 2 {
		t.Errorf("TableCount = %d, want 2", reg.TableCount())
	}
	if reg.TotalTerms() != 4 {
		t.Errorf("TotalTerms = %d, want 4", reg.TotalTerms())
	}
}

func TestLookup_Match(t *testing.T) {
	reg, _ := setupRegistry(t)

	result := reg.Lookup("Cholera due to Vibrio cholerae", nil)
	if result.Canonical != "cholera due to vibrio cholerae" {
		t.Errorf("Canonical = %q", result.Canonical)
	}
	if len(result.Matches) != 2 {
		t.Fatalf("matches = %d, want 2 (both revisions)", len(result.Matches))
	}
	// Sorted by table ID: 2025 before 2026.
	if result.Matches[0].TableID != "icd10cm-2025" {
		t.Errorf("first match = %q, want icd10cm-2025", result.Matches[0].TableID)
	}
	if result.Matches[0].Refs[0].Code != "A00.0" {
		t.Errorf("code = %q", result.Matches[0].Refs[0].Code)
	}
}

func TestLookup_FilterVersion(t *testing.T) {
	reg, _ := setupRegistry(t)

	result := reg.Lookup("cholera due to vibrio cholerae", &LookupOptions{Versions: []string{"2026"}})
	if len(result.Matches) != 1 {
		t.Fatalf("matches = %d, want 1", len(result.Matches))
	}
	if result.Matches[0].Version != "2026" {
		t.Errorf("version = %q", result.Matches[0].Version)
	}
}

func TestLookup_NoMatch(t *testing.T) {
	reg, _ := setupRegistry(t)

	result := reg.Lookup("no such term", nil)
	if len(result.Matches) != 0 {
		t.Errorf("matches = %d, want 0", len(result.Matches))
	}
	if result.Canonical != "no such term" {
		t.Errorf("Canonical = %q", result.Canonical)
	}
}

func TestLookupExpanded_VariantHit(t *testing.T) {
	reg, _ := setupRegistry(t)

	// Index holds "acute bronchitis unspecified"; querying the abbreviated
	// form should hit through the B3 swap.
	result := reg.LookupExpanded("acu bronchitis unspecified", nil, 25)
	if len(result.Matches) == 0 {
		t.Fatal("expected enrichment-assisted hit")
	}
	if result.RuleID != "B3" {
		t.Errorf("RuleID = %q, want B3", result.RuleID)
	}
	if result.Variant != "acute bronchitis unspecified" {
		t.Errorf("Variant = %q", result.Variant)
	}
}

func TestLookupExpanded_DefaultCap(t *testing.T) {
	reg, _ := setupRegistry(t)

	// Callers that pass no explicit cap still get variant retries.
	for _, max := range []int{0, -1} {
		result := reg.LookupExpanded("acu bronchitis unspecified", nil, max)
		if len(result.Matches) == 0 {
			t.Fatalf("maxVariants=%d: expected enrichment-assisted hit", max)
		}
		if result.RuleID == "" {
			t.Errorf("maxVariants=%d: missing rule id", max)
		}
	}
}

func TestLookupExpanded_DirectHitHasNoVariant(t *testing.T) {
	reg, _ := setupRegistry(t)

	result := reg.LookupExpanded("chronic kidney disease", nil, 25)
	if len(result.Matches) == 0 {
		t.Fatal("expected direct hit")
	}
	if result.Variant != "" || result.RuleID != "" {
		t.Errorf("direct hit carried variant %q/%q", result.Variant, result.RuleID)
	}
}

func TestLookupExpanded_Miss(t *testing.T) {
	reg, _ := setupRegistry(t)

	result := reg.LookupExpanded("completely unrelated words", nil, 25)
	if len(result.Matches) != 0 {
		t.Errorf("matches = %d, want 0", len(result.Matches))
	}
}

func TestListTables(t *testing.T) {
	reg, _ := setupRegistry(t)

	infos := reg.ListTables()
	if len(infos) != 2 {
		t.Fatalf("ListTables = %d, want 2", len(infos))
	}
	if infos[0].ID != "icd10cm-2025" || infos[1].ID != "icd10cm-2026" {
		t.Errorf("order = %q, %q", infos[0].ID, infos[1].ID)
	}
	if infos[1].Terms != 3 {
		t.Errorf("icd10cm-2026 terms = %d, want 3", infos[1].Terms)
	}
}

func TestReload(t *testing.T) {
	reg, dir := setupRegistry(t)

	d3 := filepath.Join(dir, "icd10cm-2024")
	os.MkdirAll(d3, 0o755)
	os.WriteFile(filepath.Join(d3, "manifest.yaml"), []byte(`id: icd10cm-2024
catalog: icd10cm
version: "2024"
source: test
license: Public Domain
data_file: terms.csv
format:
  normalize: canonical
`), 0o644)
	os.WriteFile(filepath.Join(d3, "terms.csv"), []byte("ICD10CMCode,Term,Type\nZ00,encounter,official\n"), 0o644)

	if err := reg.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if reg.TableCount() != 3 {
		t.Errorf("after reload: %d tables, want 3", reg.TableCount())
	}
}

func TestEmptyRegistry(t *testing.T) {
	reg := NewRegistry(t.TempDir())
	if err := reg.Load(); err != nil {
		t.Fatalf("Load empty: %v", err)
	}
	if reg.TableCount() != 0 {
		t.Errorf("TableCount = %d, want 0", reg.TableCount())
	}
	result := reg.Lookup("anything", nil)
	if len(result.Matches) != 0 {
		t.Errorf("matches = %d, want 0", len(result.Matches))
	}
}
