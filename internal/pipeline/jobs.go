package pipeline

import (
	"context"

	"github.com/joseph-ayodele/ribbon-tracker/internal/async"
)

// JobHandler adapts the processor to the async queue: workers extract in
// parallel while Apply keeps stock writes serialized.
func (p *Processor) JobHandler() async.Handler {
	return async.HandlerFunc(func(ctx context.Context, job async.Job) error {
		rep, err := p.Handle(ctx, job.Path, job.Force)
		if err != nil {
			return err
		}
		for _, d := range rep.Skipped {
			p.logger.Info("document already reconciled", "path", job.Path, "document", d.Name)
		}
		if u := rep.Reconciliation.Unresolved(); len(u) > 0 {
			p.logger.Warn("colours without stock entries", "path", job.Path, "colours", u)
		}
		return nil
	})
}
