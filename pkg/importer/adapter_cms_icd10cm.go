package importer

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/hazyhaar/icdterms/pkg/enrich"
	"github.com/hazyhaar/icdterms/pkg/icd10"
	"github.com/hazyhaar/icdterms/pkg/termdb"
	"github.com/hazyhaar/icdterms/pkg/termgen"
)

func init() {
	Register(&cmsICD10CMAdapter{})
}

var orderFileYearRe = regexp.MustCompile(`icd10cm[_-]order[_-](\d{4})`)

type cmsICD10CMAdapter struct{}

func (a *cmsICD10CMAdapter) ID() string      { return "cms-icd10cm" }
func (a *cmsICD10CMAdapter) TableID() string { return "icd10cm" }
func (a *cmsICD10CMAdapter) Description() string {
	return "CMS ICD-10-CM diagnosis codes (annual order file)"
}
func (a *cmsICD10CMAdapter) DefaultURL() string {
	return "https://www.cms.gov/files/zip/2026-code-descriptions-tabular-order.zip"
}
func (a *cmsICD10CMAdapter) License() string { return "Public Domain (US Government)" }

func (a *cmsICD10CMAdapter) Import(ctx context.Context, sourceURL, outputDir string) error {
	dlDir := filepath.Join(outputDir, "_download")
	if err := ensureDir(dlDir); err != nil {
		return err
	}
	defer os.RemoveAll(dlDir)

	dlPath := filepath.Join(dlDir, filepath.Base(sourceURL))
	fmt.Printf("  downloading %s...\n", sourceURL)
	if err := downloadFile(ctx, sourceURL, dlPath); err != nil {
		return fmt.Errorf("download: %w", err)
	}

	orderPath := dlPath
	if strings.HasSuffix(strings.ToLower(dlPath), ".zip") {
		files, err := unzipFile(dlPath, dlDir)
		if err != nil {
			return fmt.Errorf("unzip: %w", err)
		}
		orderPath = findOrderFile(files)
		if orderPath == "" {
			return fmt.Errorf("no icd10cm_order_*.txt found in ZIP")
		}
	}

	version := "unknown"
	if m := orderFileYearRe.FindStringSubmatch(strings.ToLower(filepath.Base(orderPath))); m != nil {
		version = m[1]
	}

	entries, err := buildTerms(orderPath)
	if err != nil {
		return fmt.Errorf("build terms: %w", err)
	}

	tableDir := filepath.Join(outputDir, a.TableID()+"-"+version)
	if err := ensureDir(tableDir); err != nil {
		return err
	}

	if err := termdb.SaveGob(entries, filepath.Join(tableDir, "data.gob")); err != nil {
		return fmt.Errorf("save gob: %w", err)
	}
	// CSV sibling for inspection and as the load fallback when the gob is
	// discarded (e.g. after a format change).
	if err := writeTermsCSV(entries, filepath.Join(tableDir, "terms.csv")); err != nil {
		return fmt.Errorf("save csv: %w", err)
	}

	return writeManifest(tableDir, &termdb.Manifest{
		ID:        a.TableID() + "-" + version,
		Catalog:   a.TableID(),
		Version:   version,
		Source:    "CMS ICD-10-CM " + version,
		SourceURL: sourceURL,
		License:   a.License(),
		DataFile:  "terms.csv",
		Format:    termdb.FormatSpec{Normalize: "canonical"},
	})
}

// writeTermsCSV writes the index as ICD10CMCode,Term,Type rows, sorted by
// term then code for stable diffs across imports.
func writeTermsCSV(entries map[string][]termdb.CodeRef, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	terms := make([]string, 0, len(entries))
	for term := range entries {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	w := csv.NewWriter(f)
	w.Write([]string{"ICD10CMCode", "Term", "Type"})
	for _, term := range terms {
		for _, ref := range entries[term] {
			w.Write([]string{ref.Code, term, ref.Type})
		}
	}
	w.Flush()
	return w.Error()
}

// findOrderFile locates the tabular-order text file among extracted paths.
func findOrderFile(files []string) string {
	for _, f := range files {
		base := strings.ToLower(filepath.Base(f))
		if strings.HasPrefix(base, "icd10cm_order") && strings.HasSuffix(base, ".txt") {
			return f
		}
	}
	return ""
}

// buildTerms parses an order file and expands each billable code into its
// term variants, keyed by canonical form.
func buildTerms(path string) (map[string][]termdb.CodeRef, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	parser := icd10.NewParser(icd10.DefaultLayout())
	stats := enrich.NewStats()
	opts := termgen.DefaultOptions()

	entries := make(map[string][]termdb.CodeRef)
	var codes int

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		row, ok := parser.ParseLine(sc.Text())
		if !ok || !row.Leaf() {
			continue
		}
		codes++
		for _, tr := range termgen.EmitRows(row, opts, stats) {
			key := termdb.NormalizeCanonical(tr.Term)
			if key == "" {
				continue
			}
			entries[key] = append(entries[key], termdb.CodeRef{Code: row.Code, Type: tr.Type})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}

	counts := parser.Counts()
	if counts.LayoutMismatch() {
		fmt.Printf("  warning: %d of %d lines needed fallback parsing\n",
			counts.Delimited+counts.BestEffort, counts.Parsed()+counts.Skipped)
	}
	fmt.Printf("  %d billable codes, %d distinct terms\n", codes, len(entries))
	return entries, nil
}
