package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/ribbon-tracker/internal/async"
)

// Inbox feeds documents dropped into watched directories to a queue.
type Inbox struct {
	cfg    WatchConfig
	queue  async.Queue
	logger *slog.Logger
}

func NewInbox(cfg WatchConfig, queue async.Queue, logger *slog.Logger) *Inbox {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Logger == nil {
		cfg.Logger = logger
	}
	return &Inbox{cfg: cfg, queue: queue, logger: logger}
}

// Run blocks until ctx ends or the watcher stops.
func (i *Inbox) Run(ctx context.Context) error {
	events, errs, err := StartWatcher(ctx, i.cfg)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case p, ok := <-events:
			if !ok {
				return nil
			}
			job := async.Job{Path: p, SubmittedAt: time.Now(), TraceID: uuid.NewString()}
			if err := i.queue.Enqueue(ctx, job); err != nil {
				i.logger.Warn("inbox document not queued", "path", p, "error", err)
			}
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			i.logger.Warn("inbox watcher error", "error", err)
		}
	}
}
