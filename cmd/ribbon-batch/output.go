package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/joseph-ayodele/ribbon-tracker/internal/pipeline"
	"github.com/joseph-ayodele/ribbon-tracker/internal/ribbon"
	"github.com/joseph-ayodele/ribbon-tracker/internal/stock"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func printBatch(w io.Writer, br pipeline.BatchReport) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "DOCUMENT\tKIND\tSTATUS\tITEMS")
	for _, d := range br.Documents {
		name := d.Name
		if d.Path != "" {
			name = d.Path
		}
		status := string(d.Status)
		if d.Error != "" {
			status += ": " + d.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", name, d.Kind, status, len(d.Items))
	}
	fmt.Fprintln(tw)
	writeSummary(tw, br.Summary)
	return tw.Flush()
}

func writeSummary(tw *tabwriter.Writer, s ribbon.Summary) {
	fmt.Fprintln(tw, "COLOUR\tQUANTITY")
	for _, r := range s.Rows() {
		fmt.Fprintf(tw, "%s\t%d\n", r.Colour, r.Quantity)
	}
	fmt.Fprintf(tw, "TOTAL\t%d\n", s.Total())
}

func printApply(w io.Writer, ar pipeline.ApplyReport) error {
	tw := newTable(w)
	for _, d := range ar.Skipped {
		fmt.Fprintf(tw, "skipped %s (already reconciled)\n", d.Name)
	}
	for _, d := range ar.Failed {
		fmt.Fprintf(tw, "failed %s: %s\n", d.Name, d.Error)
	}
	if len(ar.Applied) == 0 {
		fmt.Fprintln(tw, "nothing to apply")
		return tw.Flush()
	}
	fmt.Fprintln(tw, "COLOUR\tBEFORE\tSUBTRACTED\tAFTER\tSTATUS")
	for _, a := range ar.Reconciliation.Adjustments {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", a.Colour, optInt(a.Before), a.Subtracted, optInt(a.After), a.Status)
	}
	fmt.Fprintf(tw, "applied %d document(s), %d colour(s) updated\n", len(ar.Applied), ar.Reconciliation.Applied())
	return tw.Flush()
}

func printStock(w io.Writer, entries []stock.Entry) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "COLOUR\tQUANTITY")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%d\n", e.Colour, e.Quantity)
	}
	return tw.Flush()
}

func optInt(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprint(*v)
}
