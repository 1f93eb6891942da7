package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Thaynan-Ferreira/DealerConnect-TCC/internal/pipeline"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// maxListedSkips caps the skipped rows printed per stage
const maxListedSkips = 10

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("170"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// renderSummary formats a run report as a per-stage table followed by the
// first skipped rows of each stage
func renderSummary(report *pipeline.Report) string {
	var b strings.Builder

	state := okStyle.Render(string(report.State))
	if report.State == pipeline.StateFailed {
		state = failStyle.Render(string(report.State))
	}
	fmt.Fprintf(&b, "%s %s  %s\n",
		titleStyle.Render("Run "+report.RunID),
		state,
		mutedStyle.Render(report.Duration().Truncate(time.Millisecond).String()),
	)
	if report.Error != "" {
		b.WriteString(failStyle.Render(report.Error) + "\n")
	}

	rows := make([][]string, 0, len(report.Stages))
	for _, s := range report.Stages {
		rows = append(rows, []string{
			string(s.Stage),
			strconv.Itoa(s.Processed),
			strconv.Itoa(s.Imported),
			strconv.Itoa(s.Duplicates),
			strconv.Itoa(s.Skipped),
			formatCreated(s.Created),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers("Stage", "Processed", "Imported", "Duplicates", "Skipped", "Created").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	b.WriteString(t.Render())
	b.WriteString("\n")

	for _, s := range report.Stages {
		writeSkips(&b, s)
	}
	if s := report.Stage(pipeline.StageSynthetic); s != nil && s.Note != "" {
		b.WriteString(warnStyle.Render(s.Note) + "\n")
	}
	return b.String()
}

func writeSkips(w io.Writer, s *pipeline.StageReport) {
	if len(s.Skips) == 0 {
		return
	}
	fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf("%s: %d skipped", s.Stage, s.Skipped)))
	for i, skip := range s.Skips {
		if i == maxListedSkips {
			fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("  ... %d more", len(s.Skips)-maxListedSkips)))
			break
		}
		fmt.Fprintf(w, "  line %-5d %-22s %s\n", skip.Line, skip.Reason, mutedStyle.Render(skip.Detail))
	}
}

// formatCreated renders {"person": 3, "customer": 2} as "customer=2 person=3"
func formatCreated(created map[string]int) string {
	if len(created) == 0 {
		return "-"
	}
	kinds := make([]string, 0, len(created))
	for k := range created {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = fmt.Sprintf("%s=%d", k, created[k])
	}
	return strings.Join(parts, " ")
}

// progressPrinter writes one line per hundred rows and one when a stage completes
func progressPrinter(w io.Writer) pipeline.ProgressFunc {
	return func(stage pipeline.Stage, processed, total int) {
		if processed%100 != 0 && processed != total {
			return
		}
		fmt.Fprintf(w, "%-10s %d/%d\n", stage, processed, total)
	}
}
