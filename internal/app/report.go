package app

import (
	"fmt"

	"github.com/vk/packforge/internal/orchestrator"
)

// printReport writes the per-variant outcomes and a summary line to the
// app's output writer.
func (a *App) printReport(report *orchestrator.Report) {
	for _, res := range report.Results {
		line := fmt.Sprintf("%-9s %s", res.Status, res.Variant.String())
		if res.ArchivePath != "" {
			line += "  " + res.ArchivePath
		}
		if res.Err != nil {
			line += "  " + res.Err.Error()
		}
		fmt.Fprintln(a.outW, line)

		for _, test := range res.Tests {
			testLine := fmt.Sprintf("  test %-16s %s", test.Kind, test.Status)
			if test.Detail != "" {
				testLine += "  " + test.Detail
			}
			fmt.Fprintln(a.outW, testLine)
		}
	}

	counts := report.Counts()
	fmt.Fprintf(a.outW, "built %d, cached %d, failed %d, cancelled %d\n",
		counts[orchestrator.StatusBuilt],
		counts[orchestrator.StatusCached],
		counts[orchestrator.StatusFailed],
		counts[orchestrator.StatusCancelled])
}
