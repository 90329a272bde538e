package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/joseph-ayodele/ribbon-tracker/internal/reconcile"
	"github.com/joseph-ayodele/ribbon-tracker/internal/ribbon"
)

// WriteSummaryCSV writes "colour,quantity" rows in ascending colour order.
func WriteSummaryCSV(w io.Writer, summary ribbon.Summary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"colour", "quantity"}); err != nil {
		return err
	}
	for _, r := range summary.Rows() {
		if err := cw.Write([]string{r.Colour, strconv.Itoa(r.Quantity)}); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csv flush: %w", err)
	}
	return nil
}

// WriteReconciliationCSV writes one row per adjustment. Missing before/after
// values are left empty.
func WriteReconciliationCSV(w io.Writer, res reconcile.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"colour", "before", "subtracted", "after", "status", "error"}); err != nil {
		return err
	}
	for _, a := range res.Adjustments {
		rec := []string{a.Colour, optText(a.Before), strconv.Itoa(a.Subtracted), optText(a.After), string(a.Status), a.Error()}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csv flush: %w", err)
	}
	return nil
}

func optText(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
