// Package importer downloads public ICD catalog releases and converts
// them into the term tables served by pkg/termdb. Each adapter knows
// one upstream publisher; the sources database tracks release URLs and
// their availability.
package importer

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Adapter converts one upstream catalog release into a term table
// directory (data.gob + manifest.yaml) under outputDir.
type Adapter interface {
	// ID is the adapter name used on the command line (e.g. "cms-icd10cm").
	ID() string
	// TableID returns the target term-table ID (e.g. "icd10cm-2026").
	TableID() string
	// Description is a one-line human summary of the source.
	Description() string
	// DefaultURL is the canonical release URL, used when the sources
	// database has no fresher entry.
	DefaultURL() string
	// License names the upstream license or terms of use.
	License() string
	// Import downloads sourceURL and writes the table under outputDir.
	Import(ctx context.Context, sourceURL, outputDir string) error
}

var (
	adaptersMu sync.Mutex
	adapters   = map[string]Adapter{}
)

// Register makes an adapter available by ID. Called from init.
func Register(a Adapter) {
	adaptersMu.Lock()
	defer adaptersMu.Unlock()
	if _, dup := adapters[a.ID()]; dup {
		panic(fmt.Sprintf("importer: duplicate adapter %q", a.ID()))
	}
	adapters[a.ID()] = a
}

// Get returns the adapter registered under id.
func Get(id string) (Adapter, error) {
	adaptersMu.Lock()
	defer adaptersMu.Unlock()
	a, ok := adapters[id]
	if !ok {
		return nil, fmt.Errorf("unknown adapter %q", id)
	}
	return a, nil
}

// All returns every registered adapter, sorted by ID.
func All() []Adapter {
	adaptersMu.Lock()
	defer adaptersMu.Unlock()
	out := make([]Adapter, 0, len(adapters))
	for _, a := range adapters {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}
