package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/ribbon-tracker/constants"
	"github.com/joseph-ayodele/ribbon-tracker/internal/reconcile"
	"github.com/joseph-ayodele/ribbon-tracker/internal/ribbon"
)

// DocumentReport is the outcome of processing one document.
type DocumentReport struct {
	Name      string                   `json:"name"`
	Path      string                   `json:"path,omitempty"`
	Hash      string                   `json:"content_hash,omitempty"`
	Format    string                   `json:"format,omitempty"`
	Method    string                   `json:"method,omitempty"`
	Pages     int                      `json:"pages"`
	Fragments int                      `json:"fragments"`
	Kind      ribbon.Kind              `json:"kind,omitempty"`
	Items     []ribbon.LineItem        `json:"items"`
	Summary   ribbon.Summary           `json:"summary"`
	Status    constants.DocumentStatus `json:"status"`
	Warnings  []string                 `json:"warnings,omitempty"`
	Error     string                   `json:"error,omitempty"`
	Err       error                    `json:"-"`
	Duration  time.Duration            `json:"duration"`
}

// BatchReport holds every document of a batch in input order.
type BatchReport struct {
	BatchID   uuid.UUID        `json:"batch_id"`
	Documents []DocumentReport `json:"documents"`
	// Summary covers the successfully extracted documents only.
	Summary ribbon.Summary `json:"summary"`
}

// Failed returns the documents that could not be linearized.
func (b BatchReport) Failed() []DocumentReport {
	var out []DocumentReport
	for _, d := range b.Documents {
		if d.Status == constants.DocumentFailed {
			out = append(out, d)
		}
	}
	return out
}

func (b BatchReport) fold() ribbon.Summary {
	parts := make([]ribbon.Summary, 0, len(b.Documents))
	for _, d := range b.Documents {
		if d.Status == constants.DocumentExtracted {
			parts = append(parts, d.Summary)
		}
	}
	return ribbon.MergeSummaries(parts...)
}

// ApplyReport describes what one Apply call changed.
type ApplyReport struct {
	BatchID        uuid.UUID        `json:"batch_id"`
	Applied        []DocumentReport `json:"applied"`
	Skipped        []DocumentReport `json:"skipped"`
	Failed         []DocumentReport `json:"failed"`
	Summary        ribbon.Summary   `json:"summary"`
	Reconciliation reconcile.Result `json:"reconciliation"`
}
