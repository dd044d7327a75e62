package listing

import (
	"fmt"
	"strings"

	"cildis/internal/analysis"
	"cildis/internal/disasm"
)

// Markdown builds a report for one method: a summary table, the listing in a code block and
// the detector findings.
func Markdown(name string, blocks []disasm.BasicBlock, stats *analysis.Stats, findings []analysis.Finding) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", name)

	if stats != nil {
		b.WriteString("## Summary\n\n")
		writeSummary(&b, stats)
	}

	b.WriteString("## Listing\n\n```\n")
	b.WriteString(Text(blocks))
	b.WriteString("```\n")

	if len(findings) > 0 {
		b.WriteString("\n## Findings\n\n")
		for _, f := range findings {
			fmt.Fprintf(&b, "- **%s** at `0x%08X`: %s\n", f.Kind, f.RVA, f.Comment)
		}
	}
	return b.String()
}

func writeSummary(b *strings.Builder, stats *analysis.Stats) {
	b.WriteString("| metric | value |\n|---|---|\n")
	fmt.Fprintf(b, "| blocks | %d |\n", stats.Blocks)
	fmt.Fprintf(b, "| instructions | %d |\n", stats.Instructions)
	fmt.Fprintf(b, "| bytes | %d |\n", stats.Bytes)
	fmt.Fprintf(b, "| exits | %d |\n", stats.Exits)
	if stats.Truncated > 0 {
		fmt.Fprintf(b, "| truncated | %d |\n", stats.Truncated)
	}
	if stats.Protected > 0 {
		fmt.Fprintf(b, "| protected | %d |\n", stats.Protected)
	}
	if top := stats.TopOpcodes(5); len(top) > 0 {
		parts := make([]string, len(top))
		for i, o := range top {
			parts[i] = fmt.Sprintf("`%s` %d", o.Mnemonic, o.Count)
		}
		fmt.Fprintf(b, "| top opcodes | %s |\n", strings.Join(parts, ", "))
	}
	b.WriteString("\n")
}

// MethodSummary is one row of an Overview.
type MethodSummary struct {
	Name     string
	Blocks   []disasm.BasicBlock
	Coverage analysis.CoverageReport
	Err      error
}

// Overview builds a report over several methods: one row per method with its share of
// decoded bytes, then the statistics of all methods merged.
func Overview(title string, methods []MethodSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)

	total := analysis.Analyze(nil)
	b.WriteString("| method | blocks | instructions | coverage |\n|---|---|---|---|\n")
	for _, m := range methods {
		if m.Err != nil {
			fmt.Fprintf(&b, "| %s | - | - | failed: %v |\n", m.Name, m.Err)
			continue
		}
		stats := analysis.Analyze(m.Blocks)
		total.Merge(stats)
		fmt.Fprintf(&b, "| %s | %d | %d | %.1f%% |\n",
			m.Name, stats.Blocks, stats.Instructions, m.Coverage.Ratio()*100)
	}
	b.WriteString("\n## Totals\n\n")
	writeSummary(&b, total)
	return b.String()
}
