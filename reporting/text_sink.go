package reporting

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// WriteSummaryTable renders the per-suite run summary to out.
func WriteSummaryTable(report *RunReport, out io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetTitle(fmt.Sprintf("Test Results (%s)", formatDuration(report.Duration)))

	t.AppendHeader(table.Row{
		"Context", "Target", "Files", "Tests", "Errors", "Status",
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Target", WidthMax: 50, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Files", Align: text.AlignRight},
		{Name: "Tests", Align: text.AlignRight},
		{Name: "Errors", Align: text.AlignRight},
	})

	for _, suite := range report.Suites {
		t.AppendRow(table.Row{
			suite.Context,
			filepath.Base(suite.Target),
			suite.FilesRun,
			suite.TestsRun,
			suite.Errors,
			getResultString(suite.Passed()),
		})
	}

	if report.Passed() {
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	} else {
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	}

	t.AppendFooter(table.Row{
		"TOTAL",
		"",
		report.Stats.FilesRun,
		report.Stats.TestsRun,
		report.Stats.Errors,
		getResultString(report.Passed()),
	})
	t.Render()
}

// getResultString returns a colored string representing the result
func getResultString(passed bool) string {
	if passed {
		return "✓ pass"
	}
	return "✗ fail"
}

// formatDuration formats a duration to seconds with 1 decimal place
func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
