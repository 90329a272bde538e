package ribbon

import "github.com/joseph-ayodele/ribbon-tracker/internal/fragment"

// orderMarker opens an order block in a marketplace export.
const orderMarker = "dispatch to:"

// Classify picks the extractor for a document. Anything that is not a
// marketplace export is treated as a supplier invoice, which may legitimately
// yield nothing.
func Classify(s fragment.Stream) Kind {
	if s.ContainsFold(orderMarker) {
		return KindOrderExport
	}
	return KindInvoice
}
