package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"brecimport/internal/importer"
)

func printSummary(out io.Writer, summary importer.Summary) {
	fmt.Fprintln(out, renderCounts(summary))

	if len(summary.Errors) == 0 {
		return
	}
	fmt.Fprintln(out, "Errors:")
	for _, fileErr := range summary.Errors {
		fmt.Fprintf(out, "  [%s] %s\n", fileErr.Kind, fileErr)
	}
	if summary.ErrorsOmitted > 0 {
		fmt.Fprintf(out, "  ... and %d more\n", summary.ErrorsOmitted)
	}
}

func renderCounts(summary importer.Summary) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle("Import summary")
	tw.AppendHeader(table.Row{"Result", "Files"})
	tw.AppendRows([]table.Row{
		{"Imported", summary.Imported},
		{"Skipped", summary.Skipped},
		{"Failed", summary.Failed},
	})
	tw.AppendFooter(table.Row{"Total", summary.Total})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft, AlignFooter: text.AlignLeft},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft, AlignFooter: text.AlignRight},
	})
	return tw.Render()
}
