// Package render formats pipeline results for terminals, files and other tools.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KaramelBytes/diamondlens-cli/internal/clean"
	"github.com/KaramelBytes/diamondlens-cli/internal/diamond"
	"github.com/KaramelBytes/diamondlens-cli/internal/pipeline"
	"github.com/KaramelBytes/diamondlens-cli/internal/stats"
)

const barWidth = 40

// Markdown renders a compact report of a pipeline result.
func Markdown(res *pipeline.Result) string {
	var b strings.Builder
	b.WriteString("[DIAMOND ANALYSIS]\n")
	if res.Source != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", res.Source))
	}
	b.WriteString(fmt.Sprintf("Run: %s\n\n", res.RunID))

	b.WriteString(CleaningReport(res.Report))

	b.WriteString("\n[DATASET SUMMARY AFTER CLEANING]\n")
	writeBundle(&b, res.Overall)

	if d := res.Distributions; d != nil {
		b.WriteString("\n[PRICE DISTRIBUTION]\n")
		writeHistogram(&b, d.Price, "$%.0f")
		b.WriteString("\n[CARAT DISTRIBUTION]\n")
		writeHistogram(&b, d.Carat, "%.2f")
	}

	r := res.Rules
	b.WriteString(fmt.Sprintf("\n[VALUE SEGMENT] <%gct, %s, %s, %s\n",
		r.ValueMaxCarat, strings.Join(r.ValueCuts, "/"), strings.Join(r.ValueColors, "/"), strings.Join(r.ValueClarities, "/")))
	writeBundle(&b, res.SegmentStats)
	b.WriteString(fmt.Sprintf("- Median price line: $%s\n", money(res.Markers.MedianPrice)))
	b.WriteString(fmt.Sprintf("- +10%% over median: $%s\n", money(res.Markers.PriceCeiling)))
	b.WriteString(fmt.Sprintf("- Median carat line: %.2f ct\n", res.Markers.MedianCarat))

	b.WriteString("\n[FINDS BELOW MEDIAN PRICE]\n")
	if res.BelowStats == nil {
		b.WriteString("- No diamonds priced below the segment median\n")
	} else {
		writeBundle(&b, *res.BelowStats)
	}

	if res.Samples.Len() > 0 {
		b.WriteString("\n[EXAMPLES BELOW MEDIAN PRICE]\n")
		writeSampleTable(&b, res.Samples)
	}
	return b.String()
}

// CleaningReport renders the per-stage removal counts.
func CleaningReport(rep *clean.Report) string {
	var b strings.Builder
	b.WriteString("[CLEANING REPORT]\n")
	if rep == nil {
		return b.String()
	}
	b.WriteString(fmt.Sprintf("- Diamonds at start: %d\n", rep.Initial))
	for _, s := range rep.Stages {
		b.WriteString(fmt.Sprintf("- %s: %d removed\n", s.Label, s.Removed))
	}
	b.WriteString(fmt.Sprintf("- Total removed rows: %d\n", rep.TotalRemoved))
	b.WriteString(fmt.Sprintf("- Rows left after cleaning: %d\n", rep.Remaining))
	return b.String()
}

func writeBundle(b *strings.Builder, s stats.Bundle) {
	b.WriteString(fmt.Sprintf("- Diamonds: %d\n", s.Count))
	b.WriteString(fmt.Sprintf("- Carat range: %.2f – %.2f ct\n", s.Carat.Min, s.Carat.Max))
	b.WriteString(fmt.Sprintf("- Price range: $%s – $%s\n", money(s.Price.Min), money(s.Price.Max)))
	b.WriteString(fmt.Sprintf("- Median size: %.2f ct\n", s.Carat.Median))
	b.WriteString(fmt.Sprintf("- Median price: $%s\n", money(s.Price.Median)))
	writeCounts(b, "Cut", s.Cut)
	writeCounts(b, "Color", s.Color)
	writeCounts(b, "Clarity", s.Clarity)
}

func writeCounts(b *strings.Builder, label string, counts []stats.CategoryCount) {
	if len(counts) == 0 {
		return
	}
	parts := make([]string, len(counts))
	for i, c := range counts {
		parts[i] = fmt.Sprintf("%s: %d", c.Value, c.Count)
	}
	b.WriteString(fmt.Sprintf("- Per %s: %s\n", label, strings.Join(parts, ", ")))
}

func writeHistogram(b *strings.Builder, bins []stats.Bin, format string) {
	peak := 0
	for _, bin := range bins {
		if bin.Count > peak {
			peak = bin.Count
		}
	}
	for _, bin := range bins {
		n := 0
		if peak > 0 {
			n = bin.Count * barWidth / peak
		}
		if bin.Count > 0 && n == 0 {
			n = 1
		}
		lo := fmt.Sprintf(format, bin.Lo)
		hi := fmt.Sprintf(format, bin.Hi)
		b.WriteString(fmt.Sprintf("%12s – %-12s | %-*s %d\n", lo, hi, barWidth, strings.Repeat("#", n), bin.Count))
	}
}

func writeSampleTable(b *strings.Builder, t *diamond.DiamondTable) {
	fields := diamond.Fields()
	b.WriteString("|")
	for _, f := range fields {
		b.WriteString(" " + f.String() + " |")
	}
	b.WriteString("\n|")
	for range fields {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for _, r := range t.Records {
		b.WriteString("|")
		for _, v := range Row(r) {
			b.WriteString(" " + v + " |")
		}
		b.WriteString("\n")
	}
}

// money formats a whole-dollar amount with thousands separators.
func money(v float64) string {
	s := strconv.FormatFloat(v, 'f', 0, 64)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	var out []byte
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
