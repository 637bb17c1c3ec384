/*
Package pipeline moves payloads from a Source through a chain of stages into
a Sink. Each stage runs in its own goroutine and bounds the number of
payloads it processes at once.

A Pipeline holds no per-run state, so a single value can serve concurrent
Execute calls.
*/
package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Pipeline chains a fixed list of stages.
type Pipeline struct {
	stages []Stage
}

// New returns a pipeline that runs the given stages in order.
func New(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// Execute pulls every payload out of src, runs it through the stages and
// hands the results to sink. It returns the first error reported by the
// source, a stage or the sink.
//
// Cancelling ctx stops the source without an error. Payloads already inside
// a stage finish processing and still reach the sink.
func (p *Pipeline) Execute(ctx context.Context, src Source, sink Sink) error {
	runCtx, abort := context.WithCancel(ctx)
	defer abort()

	var g errgroup.Group

	head := make(chan Payload)
	g.Go(func() error {
		defer close(head)

		err := feed(runCtx, src, head)
		if err != nil {
			abort()
		}

		return err
	})

	link := head
	for _, stage := range p.stages {
		in, out := link, make(chan Payload)
		g.Go(func() error {
			defer close(out)

			err := stage.Run(runCtx, in, out)
			if err != nil {
				abort()
			}

			// Upstream blocks on in until it is closed.
			discard(in)

			return err
		})

		link = out
	}

	tail := link
	g.Go(func() error {
		err := drain(runCtx, sink, tail)
		if err != nil {
			abort()
		}

		discard(tail)

		return err
	})

	return g.Wait()
}

func feed(ctx context.Context, src Source, out chan<- Payload) error {
	for src.Next(ctx) {
		select {
		case <-ctx.Done():
			return nil
		case out <- src.Payload():
		}
	}

	if err := src.Error(); err != nil {
		return fmt.Errorf("pipeline source: %w", err)
	}

	return nil
}

// drain hands payloads to sink until in is closed or the sink fails.
func drain(ctx context.Context, sink Sink, in <-chan Payload) error {
	for payload := range in {
		if err := sink.Consume(ctx, payload); err != nil {
			payload.MarkAsProcessed()

			return fmt.Errorf("pipeline sink: %w", err)
		}

		payload.MarkAsProcessed()
	}

	return nil
}

func discard(in <-chan Payload) {
	for payload := range in {
		payload.MarkAsProcessed()
	}
}
