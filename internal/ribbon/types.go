// Package ribbon recovers ribbon colour/quantity line items from linearized
// order exports and supplier invoices and folds them into per-colour totals.
package ribbon

// Kind identifies which extractor a document is routed to.
type Kind string

const (
	KindOrderExport Kind = "ORDER_EXPORT"
	KindInvoice     Kind = "INVOICE"
)

// UnknownOrderID is used when no order identifier is found near an order block.
const UnknownOrderID = "UNKNOWN"

// LineItem is one recovered (colour, quantity) pair.
type LineItem struct {
	Colour   string `json:"colour"`
	Quantity int    `json:"quantity"`
	// OrderID is kept for auditing only; it is empty for invoice lines.
	OrderID string `json:"order_id,omitempty"`
	// Position is the fragment index the line was recovered from.
	Position int `json:"position"`
}

// Result is the outcome of running the extractor selected for one document.
type Result struct {
	Kind  Kind
	Items []LineItem
}
