// Package icd10 parses ICD-10-CM order files (icd10cm_order_YYYY.txt).
//
// Each line carries ORDER CODE FLAG SHORT_DESCRIPTION LONG_DESCRIPTION in a
// loosely fixed-width layout. The column alignment degrades when a field runs
// long, so parsing is a list of strategies tried in order, first match wins:
// fixed-width offsets, then a two-spaces-between-descriptions pattern, then a
// best-effort prefix match. An unparseable line is skipped, never an error.
package icd10

import (
	"regexp"
	"strconv"
	"strings"
)

// Row is one parsed line of an order file. Immutable after construction.
type Row struct {
	Order     int
	Code      string
	Flag      int
	ShortDesc string
	LongDesc  string
}

// Leaf reports whether the row is flagged as a terminal (non-grouping) node.
func (r Row) Leaf() bool { return r.Flag == 1 }

// Layout holds the fixed-width column offsets of one order-file revision.
// The defaults are derived from the 2026 file; a differently aligned revision
// can supply its own offsets instead of silently degrading to the fallback
// strategies.
type Layout struct {
	OrderEnd      int `yaml:"order_end"`       // order digits occupy [0, OrderEnd)
	CodeStart     int `yaml:"code_start"`      // code occupies [CodeStart, CodeEnd)
	CodeEnd       int `yaml:"code_end"`
	FlagIndex     int `yaml:"flag_index"`      // single '0'/'1' character
	DescStart     int `yaml:"desc_start"`      // short description start
	LongDescStart int `yaml:"long_desc_start"` // long description start
}

// DefaultLayout returns the offsets observed in icd10cm_order_2026.txt.
func DefaultLayout() Layout {
	return Layout{
		OrderEnd:      5,
		CodeStart:     6,
		CodeEnd:       13,
		FlagIndex:     14,
		DescStart:     16,
		LongDescStart: 76,
	}
}

// StrategyCounts tallies which parse strategy handled each line.
type StrategyCounts struct {
	FixedWidth int
	Delimited  int
	BestEffort int
	Skipped    int
}

// Parsed returns the total number of lines that produced a row.
func (c StrategyCounts) Parsed() int { return c.FixedWidth + c.Delimited + c.BestEffort }

// LayoutMismatch reports whether rows were parsed but none by the fixed-width
// strategy, the signature of an order file whose offsets differ from the
// configured layout.
func (c StrategyCounts) LayoutMismatch() bool {
	return c.FixedWidth == 0 && c.Delimited+c.BestEffort > 0
}

var (
	// Five digits, code token, 0/1 flag, short description up to the first
	// run of two or more spaces, then the long description.
	delimitedRe = regexp.MustCompile(`^(\d{5})\s+(\S+)\s+([01])\s+(.*?)\s{2,}(.*?)\s*$`)

	// Minimal shape: order, code, flag, remainder.
	bestEffortRe = regexp.MustCompile(`^(\d{5})\s+(\S+)\s+([01])\s+(.*)$`)
)

// Parser extracts Rows from order-file lines using a configurable layout.
// Not safe for concurrent use; each pipeline run owns its Parser.
type Parser struct {
	layout Layout
	counts StrategyCounts
}

// NewParser returns a Parser for the given layout.
func NewParser(layout Layout) *Parser {
	return &Parser{layout: layout}
}

// Counts returns the per-strategy tallies accumulated so far.
func (p *Parser) Counts() StrategyCounts { return p.counts }

// ParseLine parses one line, tolerating a trailing newline. The second return
// is false for blank lines and lines no strategy recognizes. It never fails.
func (p *Parser) ParseLine(line string) (Row, bool) {
	raw := strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(raw) == "" {
		p.counts.Skipped++
		return Row{}, false
	}

	if row, ok := p.parseFixedWidth(raw); ok {
		p.counts.FixedWidth++
		return row, true
	}
	if row, ok := parseDelimited(raw); ok {
		p.counts.Delimited++
		return row, true
	}
	if row, ok := parseBestEffort(raw); ok {
		p.counts.BestEffort++
		return row, true
	}

	p.counts.Skipped++
	return Row{}, false
}

// parseFixedWidth slices the line at the layout offsets. Required when the
// short description fills its field, leaving a single space before the long
// description, which the delimiter pattern cannot split.
func (p *Parser) parseFixedWidth(raw string) (Row, bool) {
	l := p.layout
	if len(raw) < l.LongDescStart || !isDigits(raw[:l.OrderEnd]) {
		return Row{}, false
	}
	flag := raw[l.FlagIndex]
	if flag != '0' && flag != '1' {
		return Row{}, false
	}

	order, _ := strconv.Atoi(raw[:l.OrderEnd])
	code := strings.TrimSpace(raw[l.CodeStart:l.CodeEnd])
	shortDesc := strings.TrimRight(raw[l.DescStart:l.LongDescStart], " ")
	longDesc := strings.TrimSpace(raw[l.LongDescStart:])
	if longDesc == "" {
		longDesc = shortDesc
	}

	return Row{
		Order:     order,
		Code:      code,
		Flag:      int(flag - '0'),
		ShortDesc: shortDesc,
		LongDesc:  longDesc,
	}, true
}

func parseDelimited(raw string) (Row, bool) {
	m := delimitedRe.FindStringSubmatch(raw)
	if m == nil {
		return Row{}, false
	}
	order, _ := strconv.Atoi(m[1])
	return Row{
		Order:     order,
		Code:      m[2],
		Flag:      int(m[3][0] - '0'),
		ShortDesc: strings.TrimSpace(m[4]),
		LongDesc:  strings.TrimSpace(m[5]),
	}, true
}

// parseBestEffort uses the trimmed remainder as both descriptions.
func parseBestEffort(raw string) (Row, bool) {
	m := bestEffortRe.FindStringSubmatch(raw)
	if m == nil {
		return Row{}, false
	}
	order, _ := strconv.Atoi(m[1])
	rest := strings.TrimSpace(m[4])
	return Row{
		Order:     order,
		Code:      m[2],
		Flag:      int(m[3][0] - '0'),
		ShortDesc: rest,
		LongDesc:  rest,
	}, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
