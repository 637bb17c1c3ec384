package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

var _ Stage = (*workerPool)(nil)

type workerPool struct {
	proc    Processor
	workers int64
}

// NewWorkerPool returns a stage that runs proc on up to workers payloads at
// once. Each Run gets its own worker budget. Output order follows completion
// order unless workers is 1.
func NewWorkerPool(proc Processor, workers int) Stage {
	if workers < 1 {
		workers = 1
	}

	return &workerPool{proc: proc, workers: int64(workers)}
}

// NewFIFO returns a stage that processes payloads one at a time and emits
// them in arrival order.
func NewFIFO(proc Processor) Stage {
	return NewWorkerPool(proc, 1)
}

func (w *workerPool) Run(ctx context.Context, in <-chan Payload, out chan<- Payload) error {
	sem := semaphore.NewWeighted(w.workers)
	g, runCtx := errgroup.WithContext(ctx)

loop:
	for {
		select {
		case <-runCtx.Done():
			break loop
		case payload, ok := <-in:
			if !ok {
				break loop
			}

			// A worker releases its slot only after handing its result on,
			// which keeps single-worker pools ordered.
			if err := sem.Acquire(runCtx, 1); err != nil {
				payload.MarkAsProcessed()

				break loop
			}

			g.Go(func() error {
				defer sem.Release(1)

				return w.process(runCtx, payload, out)
			})
		}
	}

	return g.Wait()
}

// process forwards the result even when ctx is done, so work that finished
// before a cancellation is not lost.
func (w *workerPool) process(ctx context.Context, payload Payload, out chan<- Payload) error {
	result, err := w.proc.Process(ctx, payload)
	if err != nil {
		payload.MarkAsProcessed()

		if ctx.Err() != nil {
			return nil
		}

		return fmt.Errorf("pipeline stage: %w", err)
	}

	if result == nil {
		payload.MarkAsProcessed()

		return nil
	}

	out <- result

	return nil
}
