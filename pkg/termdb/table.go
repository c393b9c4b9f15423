package termdb

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// CodeRef ties a catalog code to the provenance type of the term that led to
// it (official, canonical:*, enriched:<ruleId>).
type CodeRef struct {
	Code string `json:"code"`
	Type string `json:"type"`
}

// Table is one loaded term table: its manifest plus the in-memory index from
// normalized term to code references.
type Table struct {
	Manifest  *Manifest            `json:"manifest"`
	Entries   map[string][]CodeRef `json:"-"`
	normalize Normalizer
}

// LoadTable reads a manifest.yaml and loads term data from gob or CSV.
func LoadTable(dir string) (*Table, error) {
	manifest, err := LoadManifest(filepath.Join(dir, "manifest.yaml"))
	if err != nil {
		return nil, err
	}

	t := &Table{
		Manifest:  manifest,
		Entries:   make(map[string][]CodeRef),
		normalize: GetNormalizer(manifest.Format.Normalize),
	}

	// Gob takes priority over CSV.
	gobPath := filepath.Join(dir, "data.gob")
	if _, err := os.Stat(gobPath); err == nil {
		if err := t.loadGob(gobPath); err != nil {
			return nil, fmt.Errorf("table %s: %w", manifest.ID, err)
		}
		return t, nil
	}

	dataPath := filepath.Join(dir, manifest.DataFile)
	if err := t.loadCSV(dataPath); err != nil {
		return nil, fmt.Errorf("table %s: %w", manifest.ID, err)
	}
	return t, nil
}

func (t *Table) loadCSV(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open data file: %w", err)
	}
	defer f.Close()

	// Transcode non-UTF-8 encodings declared in the manifest.
	var reader io.Reader = f
	if enc := t.Manifest.Format.Encoding; enc != "" && !isUTF8(enc) {
		e, err := htmlindex.Get(enc)
		if err != nil {
			return fmt.Errorf("unsupported encoding %q: %w", enc, err)
		}
		reader = transform.NewReader(f, e.NewDecoder())
	}

	r := csv.NewReader(reader)
	if delim := t.Manifest.Format.Delimiter; delim != "" {
		r.Comma = []rune(delim)[0]
	}
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	codeIdx, err := columnIndex(header, t.Manifest.Format.CodeColumn)
	if err != nil {
		return err
	}
	termIdx, err := columnIndex(header, t.Manifest.Format.TermColumn)
	if err != nil {
		return err
	}
	typeIdx, err := columnIndex(header, t.Manifest.Format.TypeColumn)
	if err != nil {
		return err
	}

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read row: %w", err)
		}
		if codeIdx >= len(record) || termIdx >= len(record) {
			continue
		}

		key := t.normalize(strings.TrimSpace(record[termIdx]))
		if key == "" {
			continue
		}
		ref := CodeRef{Code: strings.TrimSpace(record[codeIdx])}
		if typeIdx < len(record) {
			ref.Type = strings.TrimSpace(record[typeIdx])
		}
		t.Entries[key] = append(t.Entries[key], ref)
	}
	return nil
}

func columnIndex(header []string, name string) (int, error) {
	for i, h := range header {
		if h == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("column %q not found in header %v", name, header)
}

// Lookup returns the code references for a term after normalization.
func (t *Table) Lookup(term string) ([]CodeRef, bool) {
	refs, ok := t.Entries[t.normalize(term)]
	return refs, ok
}

// NormalizeTerm applies this table's normalizer to a term.
func (t *Table) NormalizeTerm(term string) string {
	return t.normalize(term)
}

func isUTF8(enc string) bool {
	e := strings.ToLower(strings.ReplaceAll(enc, "-", ""))
	return e == "utf8" || e == ""
}
