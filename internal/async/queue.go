package async

import (
	"context"
	"time"
)

// Job is one document waiting to be processed and applied to stock.
type Job struct {
	Path        string
	Force       bool // apply even if the ledger has seen the document
	SubmittedAt time.Time
	TraceID     string
}

// Handler processes a single job.
type Handler interface {
	Handle(ctx context.Context, job Job) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, job Job) error

func (f HandlerFunc) Handle(ctx context.Context, job Job) error { return f(ctx, job) }

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
