package server

import (
	"context"
	"log/slog"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/ribbon-tracker/internal/common"
	"github.com/joseph-ayodele/ribbon-tracker/internal/export"
	"github.com/joseph-ayodele/ribbon-tracker/internal/pipeline"
	"github.com/joseph-ayodele/ribbon-tracker/internal/repository"
	"github.com/joseph-ayodele/ribbon-tracker/internal/stock"
)

// RibbonService implements RibbonServiceServer on top of the batch processor.
type RibbonService struct {
	processor *pipeline.Processor
	stocks    stock.Store
	ledger    repository.LedgerRepository
	exporter  *export.Service
	logger    *slog.Logger
}

var _ RibbonServiceServer = (*RibbonService)(nil)

// NewRibbonService wires the service. ledger may be nil, in which case
// ListDocuments reports FailedPrecondition.
func NewRibbonService(
	processor *pipeline.Processor,
	stocks stock.Store,
	ledger repository.LedgerRepository,
	exporter *export.Service,
	logger *slog.Logger,
) *RibbonService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RibbonService{
		processor: processor,
		stocks:    stocks,
		ledger:    ledger,
		exporter:  exporter,
		logger:    logger,
	}
}

// Summarize extracts and aggregates a batch without touching stock.
func (s *RibbonService) Summarize(ctx context.Context, req *SummarizeRequest) (*SummarizeResponse, error) {
	br, err := s.batch(ctx, req.DocumentSet)
	if err != nil {
		return nil, err
	}
	s.logger.Info("summarize.done",
		"request_id", common.RequestIDFromContext(ctx),
		"batch_id", br.BatchID,
		"documents", len(br.Documents),
		"failed", len(br.Failed()),
		"colours", len(br.Summary),
		"extract_ms", batchDuration(br.Documents).Milliseconds(),
	)
	return &SummarizeResponse{
		BatchID:   br.BatchID.String(),
		Summary:   br.Summary.Rows(),
		Total:     br.Summary.Total(),
		Documents: toDocumentResults(br.Documents),
	}, nil
}

// Apply extracts a batch and reconciles it against stock. When the stock
// update succeeded but recording the ledger failed, the response is still
// returned with Error set so that callers do not retry the batch.
func (s *RibbonService) Apply(ctx context.Context, req *ApplyRequest) (*ApplyResponse, error) {
	br, err := s.batch(ctx, req.DocumentSet)
	if err != nil {
		return nil, err
	}
	ar, err := s.processor.Apply(ctx, br, req.Force)
	if err != nil && len(ar.Applied) == 0 {
		s.logger.Error("apply.failed", "batch_id", br.BatchID, "error", err)
		return nil, common.ToStatus(err)
	}
	resp := &ApplyResponse{
		BatchID:     ar.BatchID.String(),
		Summary:     ar.Summary.Rows(),
		Adjustments: toAdjustmentResults(ar.Reconciliation),
		Applied:     toDocumentResults(ar.Applied),
		Skipped:     toDocumentResults(ar.Skipped),
		Failed:      toDocumentResults(ar.Failed),
		Unresolved:  ar.Reconciliation.Unresolved(),
	}
	if err != nil {
		s.logger.Error("apply.ledger_failed", "batch_id", br.BatchID, "error", err)
		resp.Error = err.Error()
	}
	return resp, nil
}

// Export returns the batch workbook; stock is not changed.
func (s *RibbonService) Export(ctx context.Context, req *ExportRequest) (*ExportResponse, error) {
	if s.exporter == nil {
		return nil, status.Error(codes.Unimplemented, "export is not configured")
	}
	br, err := s.batch(ctx, req.DocumentSet)
	if err != nil {
		return nil, err
	}
	xlsx, err := s.exporter.BatchXLSX(ctx, br, nil)
	if err != nil {
		s.logger.Error("export.xlsx.failed", "batch_id", br.BatchID, "err", err)
		return nil, common.InternalErrorf("export: %v", err)
	}
	return &ExportResponse{Xlsx: xlsx}, nil
}

// batch validates the document set and runs it through the processor. Path
// and inline documents share one batch id.
func (s *RibbonService) batch(ctx context.Context, set DocumentSet) (pipeline.BatchReport, error) {
	if err := validateDocumentSet(set); err != nil {
		s.logger.Warn("invalid document set", "error", err)
		return pipeline.BatchReport{}, err
	}

	var parts []pipeline.BatchReport
	if len(set.Paths) > 0 {
		br, err := s.processor.ProcessBatch(ctx, set.Paths)
		if err != nil {
			return pipeline.BatchReport{}, common.ToStatus(err)
		}
		parts = append(parts, br)
	}
	if len(set.Documents) > 0 {
		inputs := make([]pipeline.Input, 0, len(set.Documents))
		for _, d := range set.Documents {
			inputs = append(inputs, pipeline.Input{Name: d.Name, Data: d.Data})
		}
		br, err := s.processor.ProcessInputs(ctx, inputs)
		if err != nil {
			return pipeline.BatchReport{}, common.ToStatus(err)
		}
		parts = append(parts, br)
	}

	out := parts[0]
	for _, p := range parts[1:] {
		out.Documents = append(out.Documents, p.Documents...)
		out.Summary = out.Summary.Merge(p.Summary)
	}
	return out, nil
}

// validateDocumentSet requires at least one document. An inline document's
// name is its only format hint, so it must carry a supported extension; a
// bad path only fails its own document.
func validateDocumentSet(set DocumentSet) error {
	v := common.NewValidator()
	if len(set.Paths) == 0 && len(set.Documents) == 0 {
		v.Field("paths", set.Paths, common.Required)
	}
	if len(set.Documents) > 0 {
		names := make([]string, 0, len(set.Documents))
		for _, d := range set.Documents {
			names = append(names, strings.TrimSpace(d.Name))
		}
		v.Field("documents.name", names, common.DocumentPaths)
	}
	return common.ValidateAndReturnError(v)
}
