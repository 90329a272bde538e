package ribbon

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/ribbon-tracker/internal/fragment"
)

// invoiceProduct is the product name printed on every supplier invoice line.
const invoiceProduct = "Clip on Medal Ribbon"

// reInvoiceQty matches the supplier's localized piece count ("50 ks").
var reInvoiceQty = regexp.MustCompile(`(\d+)\s*ks`)

// ExtractInvoice makes a single pass over a supplier invoice. The colour is
// whatever precedes the product name; the quantity is read from the next
// fragment and defaults to 0, which is still a valid (empty) invoice line.
// A line with no colour text yields an item with an empty colour.
func ExtractInvoice(s fragment.Stream, logger *slog.Logger) []LineItem {
	if logger == nil {
		logger = slog.Default()
	}
	var items []LineItem
	for i := 0; i < s.Len(); i++ {
		text := s.Text(i)
		k := strings.Index(text, invoiceProduct)
		if k < 0 {
			continue
		}
		colour := NormalizeColour(text[:k])
		if colour == "" {
			// Kept so that reconciliation reports it as unresolved.
			logger.Warn("invoice line without colour", "document", s.Name(), "position", i)
		}
		items = append(items, LineItem{
			Colour:   colour,
			Quantity: invoiceQuantity(s.Text(i + 1)),
			Position: i,
		})
	}
	return items
}

func invoiceQuantity(text string) int {
	m := reInvoiceQty.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}
