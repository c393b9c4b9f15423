// Package termdb loads generated term tables (manifest.yaml + data.gob or
// terms.csv) and serves code lookups over an in-memory index keyed by
// canonical term.
package termdb

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/hazyhaar/icdterms/pkg/termgen"
)

// Normalizer transforms a term into its index key before lookup.
type Normalizer func(string) string

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeCanonical is the standard key: the canonical term form
// (lowercase, trailing punctuation stripped, whitespace collapsed).
func NormalizeCanonical(s string) string {
	return termgen.Canonicalize(s)
}

// NormalizeCanonicalASCII additionally strips accents, for tables fed from
// sources with inconsistent diacritics.
func NormalizeCanonicalASCII(s string) string {
	result, _, _ := transform.String(stripAccents, termgen.Canonicalize(s))
	return result
}

// NormalizeNone returns the term unchanged.
func NormalizeNone(s string) string {
	return s
}

// GetNormalizer returns the normalizer for the given mode.
// Default is canonical.
func GetNormalizer(mode string) Normalizer {
	switch mode {
	case "canonical":
		return NormalizeCanonical
	case "canonical_ascii":
		return NormalizeCanonicalASCII
	case "none":
		return NormalizeNone
	default:
		return NormalizeCanonical
	}
}
