package server

import (
	"time"

	"github.com/joseph-ayodele/ribbon-tracker/constants"
	"github.com/joseph-ayodele/ribbon-tracker/internal/entity"
	"github.com/joseph-ayodele/ribbon-tracker/internal/pipeline"
	"github.com/joseph-ayodele/ribbon-tracker/internal/reconcile"
	"github.com/joseph-ayodele/ribbon-tracker/internal/ribbon"
	"github.com/joseph-ayodele/ribbon-tracker/internal/stock"
)

// InlineDocument is a document sent in the request body. Name must carry a
// supported extension; Data is base64 in JSON.
type InlineDocument struct {
	Name string `json:"name"`
	Data []byte `json:"data"`
}

// DocumentSet names the documents of one batch: server-side paths, inline
// documents, or both. Paths are processed first.
type DocumentSet struct {
	Paths     []string         `json:"paths,omitempty"`
	Documents []InlineDocument `json:"documents,omitempty"`
}

type SummarizeRequest struct {
	DocumentSet
}

type SummarizeResponse struct {
	BatchID   string           `json:"batch_id"`
	Summary   []ribbon.Row     `json:"summary"`
	Total     int              `json:"total"`
	Documents []DocumentResult `json:"documents"`
}

type ApplyRequest struct {
	DocumentSet
	// Force reapplies documents already recorded in the ledger.
	Force bool `json:"force,omitempty"`
}

type ApplyResponse struct {
	BatchID     string             `json:"batch_id"`
	Summary     []ribbon.Row       `json:"summary"`
	Adjustments []AdjustmentResult `json:"adjustments"`
	Applied     []DocumentResult   `json:"applied"`
	Skipped     []DocumentResult   `json:"skipped"`
	Failed      []DocumentResult   `json:"failed"`
	Unresolved  []string           `json:"unresolved,omitempty"`
	// Error is set when stock changed but the ledger could not be updated.
	Error string `json:"error,omitempty"`
}

type ExportRequest struct {
	DocumentSet
}

type ExportResponse struct {
	Xlsx []byte `json:"xlsx"`
}

type ListStockRequest struct {
	// Sort is "colour" (default) or "quantity", lowest first.
	Sort string `json:"sort,omitempty"`
}

type ListStockResponse struct {
	Entries []stock.Entry `json:"entries"`
}

type SetStockRequest struct {
	Colour   string `json:"colour"`
	Quantity int    `json:"quantity"`
}

type SetStockResponse struct {
	Entry stock.Entry `json:"entry"`
}

type ListDocumentsRequest struct {
	Limit int `json:"limit,omitempty"`
}

type ListDocumentsResponse struct {
	Documents []*entity.ProcessedDocument `json:"documents"`
}

// DocumentResult is the wire form of one processed document.
type DocumentResult struct {
	Name        string                   `json:"name"`
	Kind        ribbon.Kind              `json:"kind,omitempty"`
	Status      constants.DocumentStatus `json:"status"`
	Items       int                      `json:"items"`
	ContentHash string                   `json:"content_hash,omitempty"`
	Error       string                   `json:"error,omitempty"`
}

// AdjustmentResult is reconcile.Adjustment with its error flattened to text.
type AdjustmentResult struct {
	Colour     string                     `json:"colour"`
	Before     *int                       `json:"before,omitempty"`
	Subtracted int                        `json:"subtracted"`
	After      *int                       `json:"after,omitempty"`
	Status     constants.AdjustmentStatus `json:"status"`
	Error      string                     `json:"error,omitempty"`
}

func toDocumentResults(docs []pipeline.DocumentReport) []DocumentResult {
	out := make([]DocumentResult, 0, len(docs))
	for _, d := range docs {
		name := d.Name
		if d.Path != "" {
			name = d.Path
		}
		out = append(out, DocumentResult{
			Name:        name,
			Kind:        d.Kind,
			Status:      d.Status,
			Items:       len(d.Items),
			ContentHash: d.Hash,
			Error:       d.Error,
		})
	}
	return out
}

func toAdjustmentResults(res reconcile.Result) []AdjustmentResult {
	out := make([]AdjustmentResult, 0, len(res.Adjustments))
	for _, a := range res.Adjustments {
		out = append(out, AdjustmentResult{
			Colour:     a.Colour,
			Before:     a.Before,
			Subtracted: a.Subtracted,
			After:      a.After,
			Status:     a.Status,
			Error:      a.Error(),
		})
	}
	return out
}

func batchDuration(docs []pipeline.DocumentReport) time.Duration {
	var d time.Duration
	for _, r := range docs {
		d += r.Duration
	}
	return d
}
