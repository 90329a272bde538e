// Package pipeline runs documents through linearization, extraction and
// aggregation, and applies the result to stock exactly once per document.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/ribbon-tracker/constants"
	"github.com/joseph-ayodele/ribbon-tracker/internal/common"
	"github.com/joseph-ayodele/ribbon-tracker/internal/entity"
	"github.com/joseph-ayodele/ribbon-tracker/internal/extract"
	"github.com/joseph-ayodele/ribbon-tracker/internal/reconcile"
	"github.com/joseph-ayodele/ribbon-tracker/internal/repository"
	"github.com/joseph-ayodele/ribbon-tracker/internal/ribbon"
)

// Input is an in-memory document, used when the caller already holds the bytes.
type Input struct {
	Name string
	Data []byte
}

// Processor coordinates linearization, extraction and reconciliation.
type Processor struct {
	source      extract.Source
	extractor   *ribbon.Extractor
	reconciler  *reconcile.Reconciler
	ledger      repository.LedgerRepository
	logger      *slog.Logger
	parallelism int

	// applyMu makes ledger check, reconcile and ledger record one step.
	applyMu sync.Mutex
}

type Option func(*Processor)

// WithParallelism bounds how many documents of a batch are extracted at once.
func WithParallelism(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.parallelism = n
		}
	}
}

// WithLedger enables duplicate detection across runs.
func WithLedger(l repository.LedgerRepository) Option {
	return func(p *Processor) { p.ledger = l }
}

func NewProcessor(
	source extract.Source,
	extractor *ribbon.Extractor,
	reconciler *reconcile.Reconciler,
	logger *slog.Logger,
	opts ...Option,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{
		source:      source,
		extractor:   extractor,
		reconciler:  reconciler,
		logger:      logger,
		parallelism: 4,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// ProcessDocument linearizes, classifies and extracts one file. Errors are
// returned and also recorded on the report.
func (p *Processor) ProcessDocument(ctx context.Context, path string) (DocumentReport, error) {
	start := time.Now()
	doc, err := p.source.Load(ctx, path)
	rep := p.finish(ctx, doc, err, start)
	rep.Path = path
	return rep, rep.Err
}

// ProcessInput is ProcessDocument for bytes already in memory.
func (p *Processor) ProcessInput(ctx context.Context, in Input) (DocumentReport, error) {
	start := time.Now()
	doc, err := p.source.Parse(ctx, in.Name, in.Data)
	rep := p.finish(ctx, doc, err, start)
	return rep, rep.Err
}

func (p *Processor) finish(ctx context.Context, doc extract.Document, err error, start time.Time) DocumentReport {
	rep := DocumentReport{
		Name:      doc.Name,
		Hash:      doc.Hash,
		Format:    doc.Format,
		Method:    doc.Method,
		Pages:     doc.Pages,
		Fragments: doc.Stream.Len(),
		Warnings:  doc.Warnings,
	}
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		rep.Status = constants.DocumentFailed
		rep.Err = err
		rep.Error = err.Error()
		rep.Duration = time.Since(start)
		p.logger.Error("document.failed", "document", doc.Name, "batch_id", common.BatchIDFromContext(ctx), "error", err)
		return rep
	}

	res := p.extractor.Extract(doc.Stream)
	rep.Kind = res.Kind
	rep.Items = res.Items
	rep.Summary = ribbon.Summarize(res.Items)
	rep.Status = constants.DocumentExtracted
	rep.Duration = time.Since(start)
	p.logger.Info("document.classified",
		"document", doc.Name,
		"kind", res.Kind,
		"items", len(res.Items),
		"units", rep.Summary.Total(),
		"batch_id", common.BatchIDFromContext(ctx),
		"duration_ms", rep.Duration.Milliseconds(),
	)
	return rep
}

// ProcessBatch extracts documents in parallel. A failing document is
// recorded in its report and does not stop the others; only cancellation
// of ctx fails the batch. The summary is folded after all documents finish.
func (p *Processor) ProcessBatch(ctx context.Context, paths []string) (BatchReport, error) {
	return p.batch(ctx, len(paths), func(ctx context.Context, i int) DocumentReport {
		rep, _ := p.ProcessDocument(ctx, paths[i])
		return rep
	})
}

// ProcessInputs is ProcessBatch for in-memory documents.
func (p *Processor) ProcessInputs(ctx context.Context, inputs []Input) (BatchReport, error) {
	return p.batch(ctx, len(inputs), func(ctx context.Context, i int) DocumentReport {
		rep, _ := p.ProcessInput(ctx, inputs[i])
		if rep.Name == "" {
			rep.Name = filepath.Base(inputs[i].Name)
		}
		return rep
	})
}

func (p *Processor) batch(ctx context.Context, n int, one func(context.Context, int) DocumentReport) (BatchReport, error) {
	batchID := uuid.New()
	ctx = common.WithBatchID(ctx, batchID.String())
	start := time.Now()
	p.logger.Info("batch.started", "batch_id", batchID, "documents", n, "parallelism", p.parallelism)

	reports := make([]DocumentReport, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.parallelism)
	for i := range n {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			reports[i] = one(gctx, i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		p.logger.Error("batch.cancelled", "batch_id", batchID, "error", err)
		return BatchReport{BatchID: batchID}, err
	}
	if err := ctx.Err(); err != nil {
		return BatchReport{BatchID: batchID}, err
	}

	br := BatchReport{BatchID: batchID, Documents: reports}
	br.Summary = br.fold()
	p.logger.Info("batch.done",
		"batch_id", batchID,
		"documents", n,
		"failed", len(br.Failed()),
		"colours", len(br.Summary),
		"units", br.Summary.Total(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return br, nil
}

// Apply reconciles the extracted documents of a batch against stock.
// Documents whose content hash is already in the ledger, or that repeat an
// earlier document of the same batch, are skipped unless force is set.
// Failed documents are never applied.
func (p *Processor) Apply(ctx context.Context, br BatchReport, force bool) (ApplyReport, error) {
	p.applyMu.Lock()
	defer p.applyMu.Unlock()

	out := ApplyReport{BatchID: br.BatchID, Summary: ribbon.Summary{}}
	seen := map[string]struct{}{}
	var toApply []DocumentReport
	for _, d := range br.Documents {
		if d.Status != constants.DocumentExtracted {
			out.Failed = append(out.Failed, d)
			continue
		}
		if !force {
			dup, err := p.isDuplicate(ctx, d.Hash, seen)
			if err != nil {
				return out, fmt.Errorf("check ledger for %q: %w", d.Name, err)
			}
			if dup {
				d.Status = constants.DocumentDuplicate
				out.Skipped = append(out.Skipped, d)
				p.logger.Warn("document.duplicate", "document", d.Name, "content_hash", d.Hash, "batch_id", br.BatchID)
				continue
			}
		}
		seen[d.Hash] = struct{}{}
		toApply = append(toApply, d)
		out.Summary = out.Summary.Merge(d.Summary)
	}

	if len(toApply) == 0 {
		p.logger.Info("apply.nothing_to_do", "batch_id", br.BatchID, "skipped", len(out.Skipped), "failed", len(out.Failed))
		return out, nil
	}

	out.Reconciliation = p.reconciler.Apply(ctx, out.Summary)

	now := time.Now().UTC()
	var recordErrs []error
	for _, d := range toApply {
		d.Status = constants.DocumentReconciled
		out.Applied = append(out.Applied, d)
		if p.ledger == nil {
			continue
		}
		err := p.ledger.Record(ctx, &entity.ProcessedDocument{
			ID:           uuid.New(),
			ContentHash:  d.Hash,
			Name:         d.Name,
			Kind:         string(d.Kind),
			Items:        len(d.Items),
			Units:        d.Summary.Total(),
			BatchID:      br.BatchID,
			ReconciledAt: now,
		})
		if err != nil {
			recordErrs = append(recordErrs, fmt.Errorf("record %q: %w", d.Name, err))
		}
	}
	p.logger.Info("apply.done",
		"batch_id", br.BatchID,
		"applied", len(out.Applied),
		"skipped", len(out.Skipped),
		"unresolved", len(out.Reconciliation.Unresolved()),
		"failed_colours", len(out.Reconciliation.Failed()),
	)
	// Stock has already changed; the caller must not retry on this error.
	return out, errors.Join(recordErrs...)
}

func (p *Processor) isDuplicate(ctx context.Context, hash string, seen map[string]struct{}) (bool, error) {
	if _, ok := seen[hash]; ok {
		return true, nil
	}
	if p.ledger == nil || hash == "" {
		return false, nil
	}
	return p.ledger.Exists(ctx, hash)
}

// Handle processes and applies a single queued document.
func (p *Processor) Handle(ctx context.Context, path string, force bool) (ApplyReport, error) {
	br, err := p.ProcessBatch(ctx, []string{path})
	if err != nil {
		return ApplyReport{}, err
	}
	if failed := br.Failed(); len(failed) > 0 {
		return ApplyReport{BatchID: br.BatchID, Failed: failed}, failed[0].Err
	}
	return p.Apply(ctx, br, force)
}
