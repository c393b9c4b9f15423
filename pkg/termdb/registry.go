package termdb

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/hazyhaar/icdterms/pkg/enrich"
	"github.com/hazyhaar/icdterms/pkg/termgen"
)

// Registry holds all loaded term tables and serves lookup queries.
type Registry struct {
	mu        sync.RWMutex
	tables    map[string]*Table
	tablesDir string
}

// NewRegistry creates a new empty registry for the given directory.
func NewRegistry(tablesDir string) *Registry {
	return &Registry{
		tables:    make(map[string]*Table),
		tablesDir: tablesDir,
	}
}

// Load scans the tables directory and loads every table with a manifest.
func (r *Registry) Load() error {
	entries, err := os.ReadDir(r.tablesDir)
	if err != nil {
		return fmt.Errorf("read tables dir %s: %w", r.tablesDir, err)
	}

	newTables := make(map[string]*Table)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(r.tablesDir, entry.Name())
		if _, err := os.Stat(filepath.Join(dir, "manifest.yaml")); err != nil {
			continue
		}
		t, err := LoadTable(dir)
		if err != nil {
			return fmt.Errorf("load table %s: %w", entry.Name(), err)
		}
		newTables[t.Manifest.ID] = t
	}

	r.mu.Lock()
	r.tables = newTables
	r.mu.Unlock()
	return nil
}

// Reload reloads all tables from disk (hot reload).
func (r *Registry) Reload() error {
	return r.Load()
}

// Match is one table hit for a looked-up term.
type Match struct {
	TableID string    `json:"table_id"`
	Catalog string    `json:"catalog"`
	Version string    `json:"version"`
	Refs    []CodeRef `json:"refs"`
}

// LookupResult is the response for a single term lookup. Variant and RuleID
// are set only when the hit came from query-time enrichment.
type LookupResult struct {
	Term      string  `json:"term"`
	Canonical string  `json:"canonical"`
	Variant   string  `json:"variant,omitempty"`
	RuleID    string  `json:"rule_id,omitempty"`
	Matches   []Match `json:"matches"`
}

// LookupOptions are optional filters for lookups.
type LookupOptions struct {
	Catalogs []string
	Versions []string
	Tables   []string
}

// Lookup searches for a term across all (or filtered) tables.
// Tables are iterated in sorted ID order for deterministic results.
func (r *Registry) Lookup(term string, opts *LookupOptions) *LookupResult {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := &LookupResult{
		Term:      term,
		Canonical: termgen.Canonicalize(term),
		Matches:   []Match{},
	}
	r.lookupLocked(term, opts, result)
	return result
}

// DefaultExpandVariants caps the retried variants when LookupExpanded is
// called without an explicit limit.
const DefaultExpandVariants = 25

// LookupExpanded behaves like Lookup, but when the term misses every table it
// runs the enrichment rules over the canonical term and retries each variant
// in order, returning the first variant that hits. A maxVariants of zero or
// less means DefaultExpandVariants.
func (r *Registry) LookupExpanded(term string, opts *LookupOptions, maxVariants int) *LookupResult {
	if maxVariants <= 0 {
		maxVariants = DefaultExpandVariants
	}
	result := r.Lookup(term, opts)
	if len(result.Matches) > 0 {
		return result
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, v := range enrich.Enrich(result.Canonical, maxVariants, enrich.DefaultRules, nil) {
		retry := &LookupResult{
			Term:      term,
			Canonical: result.Canonical,
			Variant:   v.Term,
			RuleID:    v.RuleID,
			Matches:   []Match{},
		}
		r.lookupLocked(v.Term, opts, retry)
		if len(retry.Matches) > 0 {
			return retry
		}
	}
	return result
}

// lookupLocked appends matches for term to result. Caller holds r.mu.
func (r *Registry) lookupLocked(term string, opts *LookupOptions, result *LookupResult) {
	ids := make([]string, 0, len(r.tables))
	for id := range r.tables {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		t := r.tables[id]
		if opts != nil {
			if len(opts.Catalogs) > 0 && !contains(opts.Catalogs, t.Manifest.Catalog) {
				continue
			}
			if len(opts.Versions) > 0 && !contains(opts.Versions, t.Manifest.Version) {
				continue
			}
			if len(opts.Tables) > 0 && !contains(opts.Tables, t.Manifest.ID) {
				continue
			}
		}

		refs, ok := t.Lookup(term)
		if !ok {
			continue
		}
		result.Matches = append(result.Matches, Match{
			TableID: t.Manifest.ID,
			Catalog: t.Manifest.Catalog,
			Version: t.Manifest.Version,
			Refs:    refs,
		})
	}
}

// TableInfo is the public metadata for a loaded table.
type TableInfo struct {
	ID        string `json:"id"`
	Catalog   string `json:"catalog"`
	Version   string `json:"version"`
	Source    string `json:"source"`
	SourceURL string `json:"source_url,omitempty"`
	License   string `json:"license"`
	Terms     int    `json:"terms"`
}

// ListTables returns metadata for all loaded tables, sorted by ID.
func (r *Registry) ListTables() []TableInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]TableInfo, 0, len(r.tables))
	for _, t := range r.tables {
		infos = append(infos, TableInfo{
			ID:        t.Manifest.ID,
			Catalog:   t.Manifest.Catalog,
			Version:   t.Manifest.Version,
			Source:    t.Manifest.Source,
			SourceURL: t.Manifest.SourceURL,
			License:   t.Manifest.License,
			Terms:     len(t.Entries),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// TableCount returns the number of loaded tables.
func (r *Registry) TableCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tables)
}

// TotalTerms returns the total number of indexed terms across all tables.
func (r *Registry) TotalTerms() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := 0
	for _, t := range r.tables {
		total += len(t.Entries)
	}
	return total
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
