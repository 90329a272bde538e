package ribbon

import (
	"log/slog"

	"github.com/joseph-ayodele/ribbon-tracker/internal/fragment"
)

// Extractor classifies a fragment stream and runs the matching extractor.
type Extractor struct {
	limits Limits
	logger *slog.Logger
}

func NewExtractor(limits Limits, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{limits: limits.WithDefaults(), logger: logger}
}

// Limits returns the effective lookahead bounds.
func (e *Extractor) Limits() Limits { return e.limits }

// Extract never fails: unrecognized or malformed documents produce no items.
func (e *Extractor) Extract(s fragment.Stream) Result {
	kind := Classify(s)
	var items []LineItem
	switch kind {
	case KindOrderExport:
		items = ExtractOrderExport(s, e.limits, e.logger)
	default:
		items = ExtractInvoice(s, e.logger)
	}
	if len(items) == 0 {
		e.logger.Info("document produced no line items", "document", s.Name(), "kind", kind, "fragments", s.Len())
	}
	return Result{Kind: kind, Items: items}
}
