package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"theo-discovery/internal/domain"
	"theo-discovery/internal/service"
	"theo-discovery/internal/taxonomy"
	"theo-discovery/internal/tui"
)

// summaryLine renders the per-kind counts of a report on one line.
func summaryLine(report *service.Report) string {
	counts := report.Counts()
	parts := make([]string, 0, len(domain.Kinds))
	for _, k := range domain.Kinds {
		parts = append(parts, fmt.Sprintf("%s %d", k, counts[k]))
	}
	return fmt.Sprintf("%d documents, %d discoveries (%s)",
		report.Snapshot.DocumentCount, len(report.Discoveries), strings.Join(parts, ", "))
}

func printReport(w io.Writer, report *service.Report) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	fmt.Fprintf(w, "%s\n", cyan("=== Theological Discovery ==="))
	fmt.Fprintf(w, "%s\n", summaryLine(report))
	if themes := report.Snapshot.DominantThemes; len(themes) > 0 {
		fmt.Fprintf(w, "Dominant themes: %s\n", strings.Join(themes, ", "))
	}

	for _, kind := range domain.Kinds {
		found := report.ByKind(kind)
		if len(found) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s\n", yellow(strings.ToUpper(string(kind))))
		for i, d := range found {
			fmt.Fprintf(w, "%2d. %s %s\n", i+1, d.Title,
				gray(fmt.Sprintf("(confidence %.2f, relevance %.2f)", d.Confidence, d.RelevanceScore)))
			fmt.Fprintf(w, "    %s\n", d.Description)
			for _, line := range tui.DetailLines(d) {
				fmt.Fprintf(w, "    %s\n", line)
			}
		}
	}
	if len(report.Discoveries) == 0 {
		fmt.Fprintf(w, "\n%s\n", gray("No discoveries."))
	}
}

func printTaxonomy(w io.Writer, topics []taxonomy.Topic) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	for _, t := range topics {
		fmt.Fprintf(w, "%s\n", cyan(t.Name))
		if t.Summary != "" {
			fmt.Fprintf(w, "  %s\n", t.Summary)
		}
		fmt.Fprintf(w, "  keywords: %s\n", strings.Join(t.Keywords, ", "))
		if len(t.Scriptures) > 0 {
			fmt.Fprintf(w, "  %s\n", gray("scriptures: "+strings.Join(t.Scriptures, ", ")))
		}
	}
}

func printHistory(w io.Writer, snapshots []domain.CorpusSnapshotSummary) {
	if len(snapshots) == 0 {
		fmt.Fprintln(w, "No snapshots recorded.")
		return
	}
	green := color.New(color.FgGreen).SprintFunc()
	for _, s := range snapshots {
		fmt.Fprintf(w, "%s  %d documents, %d verses  %s\n",
			green(s.SnapshotDate.Format("2006-01-02 15:04")),
			s.DocumentCount, s.VerseCoverage.UniqueCount, strings.Join(s.DominantThemes, ", "))
	}
}
