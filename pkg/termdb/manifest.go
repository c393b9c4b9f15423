package termdb

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest describes one generated term table: its catalog revision, source,
// and how to read its data file.
type Manifest struct {
	ID        string     `yaml:"id" json:"id"`
	Catalog   string     `yaml:"catalog" json:"catalog"` // e.g. "icd10cm"
	Version   string     `yaml:"version" json:"version"` // catalog revision, e.g. "2026"
	Source    string     `yaml:"source" json:"source"`
	SourceURL string     `yaml:"source_url" json:"source_url,omitempty"`
	License   string     `yaml:"license" json:"license"`
	DataFile  string     `yaml:"data_file" json:"data_file"`
	Format    FormatSpec `yaml:"format" json:"-"`
}

// FormatSpec describes the CSV layout of a term table data file.
type FormatSpec struct {
	Delimiter  string `yaml:"delimiter"`
	Encoding   string `yaml:"encoding"`
	CodeColumn string `yaml:"code_column"` // default "ICD10CMCode"
	TermColumn string `yaml:"term_column"` // default "Term"
	TypeColumn string `yaml:"type_column"` // default "Type"
	Normalize  string `yaml:"normalize"`
}

// LoadManifest reads and parses a manifest.yaml file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if m.ID == "" {
		return nil, fmt.Errorf("manifest %s: missing id", path)
	}
	if m.DataFile == "" {
		m.DataFile = "terms.csv"
	}
	if m.Format.CodeColumn == "" {
		m.Format.CodeColumn = "ICD10CMCode"
	}
	if m.Format.TermColumn == "" {
		m.Format.TermColumn = "Term"
	}
	if m.Format.TypeColumn == "" {
		m.Format.TypeColumn = "Type"
	}
	return &m, nil
}
