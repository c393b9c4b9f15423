package main

import (
	"bufio"
	"encoding/csv"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/hazyhaar/icdterms/pkg/enrich"
	"github.com/hazyhaar/icdterms/pkg/icd10"
	"github.com/hazyhaar/icdterms/pkg/termgen"
	"gopkg.in/yaml.v3"
)

func cmdExtract(args []string) {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	input := fs.String("input", "", "path to the ICD-10-CM order file (required)")
	output := fs.String("output", "terms.csv", "path to the output CSV")
	layoutPath := fs.String("layout", "", "optional YAML file overriding the fixed-width column offsets")
	leafOnly := fs.Bool("leaf-only", true, "emit terms only for billable (leaf) codes; on by default, pass --leaf-only=false for headers too")
	includeAbbr := fs.Bool("include-official-abbr", true, "emit the abbreviated official description; on by default, disable with --include-official-abbr=false")
	noCanonical := fs.Bool("no-canonical", false, "skip canonical term forms")
	noEnriched := fs.Bool("no-enriched", false, "skip rule-based enrichment")
	maxPerTerm := fs.Int("enriched-max-per-term", 25, "fanout cap per canonical term")
	noRuleReport := fs.Bool("no-rule-report", false, "suppress the per-rule impact report")
	fs.Parse(args)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *input == "" {
		fmt.Fprintln(os.Stderr, "extract: --input is required")
		os.Exit(2)
	}
	in, err := os.Open(*input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "extract: %v\n", err)
		os.Exit(2)
	}
	defer in.Close()

	layout := icd10.DefaultLayout()
	if *layoutPath != "" {
		data, err := os.ReadFile(*layoutPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "extract: read layout: %v\n", err)
			os.Exit(2)
		}
		if err := yaml.Unmarshal(data, &layout); err != nil {
			fmt.Fprintf(os.Stderr, "extract: parse layout: %v\n", err)
			os.Exit(2)
		}
	}

	opts := termgen.Options{
		IncludeOfficialAbbr: *includeAbbr,
		IncludeCanonical:    !*noCanonical,
		IncludeEnriched:     !*noEnriched,
		EnrichedMaxPerTerm:  *maxPerTerm,
	}

	out, err := os.Create(*output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "extract: %v\n", err)
		os.Exit(2)
	}

	parser := icd10.NewParser(layout)
	stats := enrich.NewStats()
	typeCounts := make(map[string]int)
	written := 0

	w := csv.NewWriter(out)
	w.Write([]string{"ICD10CMCode", "Term", "Type"})

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		row, ok := parser.ParseLine(sc.Text())
		if !ok {
			continue
		}
		if *leafOnly && !row.Leaf() {
			continue
		}
		for _, tr := range termgen.EmitRows(row, opts, stats) {
			w.Write([]string{row.Code, tr.Term, tr.Type})
			typeCounts[tr.Type]++
			written++
		}
	}
	if err := sc.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "extract: read %s: %v\n", *input, err)
		os.Exit(1)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		fmt.Fprintf(os.Stderr, "extract: write %s: %v\n", *output, err)
		os.Exit(1)
	}
	if err := out.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "extract: close %s: %v\n", *output, err)
		os.Exit(1)
	}

	counts := parser.Counts()
	if counts.LayoutMismatch() {
		logger.Warn("no line matched the fixed-width layout; offsets may be stale for this revision",
			"delimited", counts.Delimited, "best_effort", counts.BestEffort)
	}

	fmt.Printf("%d lines parsed (%d skipped), %d term rows written to %s\n",
		counts.Parsed(), counts.Skipped, written, *output)

	printTypeCounts(typeCounts)

	if !*noRuleReport && opts.IncludeEnriched {
		printRuleReport(stats)
	}
}

// printTypeCounts lists the emitted row counts per type label, most common
// first, label ascending on ties.
func printTypeCounts(typeCounts map[string]int) {
	type tc struct {
		label string
		n     int
	}
	rows := make([]tc, 0, len(typeCounts))
	for label, n := range typeCounts {
		rows = append(rows, tc{label, n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].n != rows[j].n {
			return rows[i].n > rows[j].n
		}
		return rows[i].label < rows[j].label
	})
	for _, r := range rows {
		fmt.Printf("  %-28s %8d\n", r.label, r.n)
	}
}

func printRuleReport(stats *enrich.Stats) {
	report := stats.Report(enrich.DefaultRules)
	if len(report) == 0 {
		return
	}
	fmt.Printf("\nEnrichment rules (%d terms seen):\n", stats.TermsSeen)
	for _, r := range report {
		fmt.Printf("  %-3s %6d terms %8d variants  %s\n",
			r.RuleID, r.TermsAffected, r.VariantsAdded, r.Description)
	}
}
