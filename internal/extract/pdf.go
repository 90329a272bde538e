package extract

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/ribbon-tracker/internal/fragment"
)

const (
	// defaultCellGap is the horizontal gap, in multiples of the font size,
	// that separates two cells of one visual row.
	defaultCellGap = 1.5
	// wordGap is the gap, in multiples of the font size, that separates words.
	wordGap = 0.2
)

// pdfCells reads the text layer of a PDF and returns one entry per cell in
// reading order: pages in order, rows top to bottom, cells left to right.
func pdfCells(data []byte, cellGap float64) ([]string, int, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, 0, fmt.Errorf("open pdf: %w", err)
	}
	var cells []string
	pages := r.NumPage()
	for i := 1; i <= pages; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		pc, err := pageCells(p, cellGap)
		if err != nil {
			return nil, pages, fmt.Errorf("page %d: %w", i, err)
		}
		cells = append(cells, pc...)
	}
	return cells, pages, nil
}

func pageCells(p pdf.Page, cellGap float64) (cells []string, err error) {
	// The pdf package panics on malformed content streams.
	defer func() {
		if rec := recover(); rec != nil {
			cells, err = nil, fmt.Errorf("read content: %v", rec)
		}
	}()

	rows := map[int][]pdf.Text{}
	for _, t := range p.Content().Text {
		y := int(math.Round(t.Y))
		rows[y] = append(rows[y], t)
	}
	ys := make([]int, 0, len(rows))
	for y := range rows {
		ys = append(ys, y)
	}
	// PDF y grows upwards.
	sort.Sort(sort.Reverse(sort.IntSlice(ys)))

	for _, y := range ys {
		row := rows[y]
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })
		cells = append(cells, splitRow(row, cellGap)...)
	}
	return cells, nil
}

func splitRow(row []pdf.Text, cellGap float64) []string {
	var (
		cells   []string
		b       strings.Builder
		prevEnd float64
	)
	flush := func() {
		if s := strings.TrimSpace(b.String()); s != "" {
			cells = append(cells, s)
		}
		b.Reset()
	}
	for _, t := range row {
		size := t.FontSize
		if size <= 0 {
			size = 10
		}
		if b.Len() > 0 {
			gap := t.X - prevEnd
			switch {
			case gap > cellGap*size:
				flush()
			case gap > wordGap*size && !strings.HasSuffix(b.String(), " "):
				b.WriteByte(' ')
			}
		}
		b.WriteString(t.S)
		prevEnd = t.X + t.W
	}
	flush()
	return cells
}

func (l *Linearizer) linearizePDF(ctx context.Context, name string, data []byte) (Document, error) {
	doc := Document{Name: name, Method: MethodPDFText}
	cells, pages, err := pdfCells(data, l.cfg.CellGap)
	doc.Pages = pages
	if err == nil && len(cells) > 0 {
		doc.Stream = fragment.New(name, cells)
		if !doc.Stream.Empty() {
			return doc, nil
		}
	}
	if err != nil {
		l.logger.Warn("pdf text layer unreadable; falling back to converter", "document", name, "error", err)
		doc.Warnings = append(doc.Warnings, err.Error())
	} else {
		l.logger.Info("pdf text layer empty; falling back to converter", "document", name)
	}
	if l.cfg.DisableFallback {
		if err == nil {
			err = fmt.Errorf("pdf has no text layer")
		}
		return doc, err
	}

	conv := layoutConverter{
		bin:     l.cfg.PDFConverter,
		timeout: l.cfg.ConverterTimeout,
		runner:  l.runner,
		logger:  l.logger,
	}
	lt, cerr := conv.Convert(ctx, name, data)
	doc.Warnings = append(doc.Warnings, lt.Warnings...)
	if cerr != nil {
		return doc, fmt.Errorf("linearize pdf %q: %w", name, cerr)
	}
	doc.Method = MethodPDFLayout
	doc.Pages = lt.Pages
	doc.Stream = fragment.FromLayout(name, lt.Text)
	return doc, nil
}
