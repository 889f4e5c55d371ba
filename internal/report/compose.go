package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Ansh0308/UIDAI-DATA-HACKATHON/internal/clean"
	"github.com/Ansh0308/UIDAI-DATA-HACKATHON/internal/dataset"
	"github.com/Ansh0308/UIDAI-DATA-HACKATHON/internal/insight"
)

// Compose assembles the analysis report as a markdown document: header,
// executive summary, key findings, metrics, recommendations, and the
// data-quality appendix. Every number comes from the bundle; nothing is
// invented here.
func Compose(b *insight.Bundle, quality map[dataset.Kind]clean.QualityReport) string {
	var sections []string

	sections = append(sections, header(b))
	sections = append(sections, executiveSummary(b))
	if s := keyFindings(b.Insights); s != "" {
		sections = append(sections, s)
	}
	if s := metricsTable(b.KeyMetrics); s != "" {
		sections = append(sections, s)
	}
	if s := recommendationList(b.Recommendations); s != "" {
		sections = append(sections, s)
	}
	if s := qualityAppendix(quality); s != "" {
		sections = append(sections, s)
	}

	return strings.Join(sections, "\n\n---\n\n") + "\n"
}

func header(b *insight.Bundle) string {
	return fmt.Sprintf("# Aadhaar Enrolment & Updates Analysis\n\nGenerated %s · Run `%s`",
		b.Timestamp.Format("2006-01-02 15:04 MST"), b.RunID)
}

func executiveSummary(b *insight.Bundle) string {
	var lines []string
	lines = append(lines, "## Executive Summary", "")
	for _, kind := range dataset.Kinds {
		if !b.DatasetsLoaded[kind] {
			lines = append(lines, fmt.Sprintf("- %s data: not loaded", titleKind(kind)))
			continue
		}
		stats := b.Summary[kind]
		lines = append(lines, fmt.Sprintf("- %s data: %d records across %d states and %d districts",
			titleKind(kind), stats.Records, stats.States, stats.Districts))
	}
	lines = append(lines, fmt.Sprintf("- Findings: %d insights, %d recommendations",
		len(b.Insights), len(b.Recommendations)))
	return strings.Join(lines, "\n")
}

func keyFindings(insights []insight.Insight) string {
	if len(insights) == 0 {
		return ""
	}
	var lines []string
	lines = append(lines, "## Key Findings")
	for _, in := range insights {
		lines = append(lines, "", fmt.Sprintf("### [%s] %s", in.Severity, in.Finding))
		if in.Recommendation != "" {
			lines = append(lines, "", "> "+in.Recommendation)
		}
		if len(in.Records) > 0 {
			lines = append(lines, "", recordsTable(in.Records))
		}
	}
	return strings.Join(lines, "\n")
}

// recordsTable renders supporting records as a markdown table with a
// stable column order.
func recordsTable(records []map[string]string) string {
	cols := make([]string, 0, len(records[0]))
	for c := range records[0] {
		cols = append(cols, c)
	}
	sort.Strings(cols)

	var b strings.Builder
	b.WriteString("| " + strings.Join(cols, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(cols)) + "\n")
	for _, r := range records {
		cells := make([]string, len(cols))
		for i, c := range cols {
			cells[i] = r[c]
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func metricsTable(metrics map[string]string) string {
	if len(metrics) == 0 {
		return ""
	}
	keys := make([]string, 0, len(metrics))
	for k := range metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var lines []string
	lines = append(lines, "## Key Metrics", "", "| Metric | Value |", "| --- | --- |")
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("| %s | %s |", k, metrics[k]))
	}
	return strings.Join(lines, "\n")
}

func recommendationList(recs []insight.Recommendation) string {
	if len(recs) == 0 {
		return ""
	}
	var lines []string
	lines = append(lines, "## Recommendations")
	for i, r := range recs {
		lines = append(lines, "",
			fmt.Sprintf("%d. **%s** (%s priority, %s)", i+1, r.Title, r.Priority, r.Timeline),
			"   "+r.Description)
	}
	return strings.Join(lines, "\n")
}

func qualityAppendix(quality map[dataset.Kind]clean.QualityReport) string {
	if len(quality) == 0 {
		return ""
	}
	var lines []string
	lines = append(lines, "## Appendix: Data Quality")
	for _, kind := range dataset.Kinds {
		rep, ok := quality[kind]
		if !ok {
			continue
		}
		lines = append(lines, "", fmt.Sprintf("### %s (%d rows)", titleKind(kind), rep.Rows),
			"", "| Column | Missing | Kind | Outliers |", "| --- | --- | --- | --- |")
		for _, col := range rep.Columns {
			lines = append(lines, fmt.Sprintf("| %s | %.1f%% | %s | %d |",
				col.Name, col.MissingShare*100, col.Kind, col.OutlierCount))
		}
	}
	return strings.Join(lines, "\n")
}

// titleKind capitalizes a dataset kind for display.
func titleKind(kind dataset.Kind) string {
	s := string(kind)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
