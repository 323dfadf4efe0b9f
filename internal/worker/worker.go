package worker

import (
	"context"
	"errors"
	"log/slog"
)

// ErrStop ends the worker loop when returned by a Processor.
var ErrStop = errors.New("worker stop")

type Config struct {
	Name      string
	Processor Processor
}

// Processor handles one unit of work per call. It should block until work
// is available or ctx is done.
type Processor interface {
	ProcessMessage(ctx context.Context) error
}

type Worker struct {
	name      string
	processor Processor
}

func New(cfg Config) *Worker {
	return &Worker{
		name:      cfg.Name,
		processor: cfg.Processor,
	}
}

// Run processes sequentially until ctx is done or the processor returns
// ErrStop. Other errors are logged and the loop continues.
func (w *Worker) Run(ctx context.Context) {
	slog.DebugContext(ctx, "Worker started...", "worker", w.name)
	for {
		select {
		case <-ctx.Done():
			slog.DebugContext(ctx, "Worker stopped...", "worker", w.name)
			return
		default:
			err := w.processor.ProcessMessage(ctx)
			if err == nil || errors.Is(err, context.Canceled) {
				continue
			}
			if errors.Is(err, ErrStop) {
				slog.DebugContext(ctx, "Worker stopped...", "worker", w.name)
				return
			}
			slog.ErrorContext(ctx, "Error processing message", "worker", w.name, "error", err)
		}
	}
}
