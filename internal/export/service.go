package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/ribbon-tracker/internal/pipeline"
	"github.com/joseph-ayodele/ribbon-tracker/internal/reconcile"
	"github.com/joseph-ayodele/ribbon-tracker/internal/stock"
)

// Sheet names of the report workbook.
const (
	SheetSummary        = "Summary"
	SheetLineItems      = "Line Items"
	SheetDocuments      = "Documents"
	SheetReconciliation = "Reconciliation"
	SheetStock          = "Stock"
)

// Service renders batch and stock reports as XLSX workbooks.
type Service struct {
	store  stock.Store
	logger *slog.Logger
}

// NewService returns an export service. store may be nil, in which case the
// Stock sheet is omitted.
func NewService(store stock.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// BatchXLSX returns a workbook for a processed batch. The Reconciliation sheet
// is only written when ar is non-nil.
func (s *Service) BatchXLSX(ctx context.Context, br pipeline.BatchReport, ar *pipeline.ApplyReport) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	summary := br.Summary
	if ar != nil {
		summary = ar.Summary
	}
	rows := make([][]any, 0, len(summary)+1)
	for _, r := range summary.Rows() {
		rows = append(rows, []any{r.Colour, r.Quantity})
	}
	rows = append(rows, []any{"TOTAL", summary.Total()})
	if err := writeSheet(f, SheetSummary, []string{"Colour", "Quantity"}, rows); err != nil {
		return nil, err
	}
	_ = f.SetColWidth(SheetSummary, "A", "A", 28)

	var items [][]any
	for _, d := range br.Documents {
		for _, it := range d.Items {
			items = append(items, []any{d.Name, it.OrderID, it.Colour, it.Quantity, it.Position})
		}
	}
	if err := writeSheet(f, SheetLineItems, []string{"Document", "Order ID", "Colour", "Quantity", "Fragment"}, items); err != nil {
		return nil, err
	}
	_ = f.SetColWidth(SheetLineItems, "A", "A", 36)
	_ = f.SetColWidth(SheetLineItems, "B", "C", 24)

	docs := make([][]any, 0, len(br.Documents))
	for _, d := range br.Documents {
		docs = append(docs, []any{
			d.Name, string(d.Kind), string(d.Status), len(d.Items), d.Pages, d.Method,
			truncate(d.Error, 140), d.Hash,
		})
	}
	if err := writeSheet(f, SheetDocuments,
		[]string{"Document", "Kind", "Status", "Items", "Pages", "Method", "Error", "Content Hash"}, docs); err != nil {
		return nil, err
	}
	_ = f.SetColWidth(SheetDocuments, "A", "A", 36)
	_ = f.SetColWidth(SheetDocuments, "G", "G", 48)
	_ = f.SetColWidth(SheetDocuments, "H", "H", 66)

	if ar != nil {
		if err := writeSheet(f, SheetReconciliation, reconciliationHeader, reconciliationRows(ar.Reconciliation)); err != nil {
			return nil, err
		}
		_ = f.SetColWidth(SheetReconciliation, "A", "A", 28)
		_ = f.SetColWidth(SheetReconciliation, "F", "F", 48)
	}

	if s.store != nil {
		entries, err := s.store.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list stock: %w", err)
		}
		if err := writeStockSheet(f, entries); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"batch_id", br.BatchID.String(),
		"documents", len(br.Documents),
		"colours", len(summary),
		"reconciled", ar != nil,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// StockXLSX returns a single-sheet workbook of the current stock.
func (s *Service) StockXLSX(ctx context.Context) ([]byte, error) {
	if s.store == nil {
		return nil, fmt.Errorf("stock export: no store configured")
	}
	entries, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName("Sheet1", SheetStock); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeStockSheet(f, entries); err != nil {
		return nil, err
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("export.stock.ok", "colours", len(entries))
	return buf.Bytes(), nil
}

var reconciliationHeader = []string{"Colour", "Before", "Subtracted", "After", "Status", "Error"}

func reconciliationRows(res reconcile.Result) [][]any {
	rows := make([][]any, 0, len(res.Adjustments))
	for _, a := range res.Adjustments {
		rows = append(rows, []any{a.Colour, optInt(a.Before), a.Subtracted, optInt(a.After), string(a.Status), a.Error()})
	}
	return rows
}

func writeStockSheet(f *excelize.File, entries []stock.Entry) error {
	rows := make([][]any, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []any{e.Colour, e.Quantity})
	}
	if err := writeSheet(f, SheetStock, []string{"Colour", "Quantity"}, rows); err != nil {
		return err
	}
	_ = f.SetColWidth(SheetStock, "A", "A", 28)
	return nil
}

// writeSheet creates sheet if needed and writes a bold header row followed by rows.
func writeSheet(f *excelize.File, sheet string, header []string, rows [][]any) error {
	if idx, _ := f.GetSheetIndex(sheet); idx == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("new sheet %q: %w", sheet, err)
		}
	}
	hdr := make([]any, len(header))
	for i, h := range header {
		hdr[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &hdr); err != nil {
		return fmt.Errorf("sheet %q header: %w", sheet, err)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetRowStyle(sheet, 1, 1, style)
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("sheet %q row %d: %w", sheet, i+2, err)
		}
	}
	_ = f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
	return nil
}

// optInt renders an absent value as an empty cell.
func optInt(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return strings.ToValidUTF8(s[:n-1], "") + "…"
}
