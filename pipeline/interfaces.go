package pipeline

import "context"

// Source feeds payloads into a Pipeline.
type Source interface {
	// Next advances the source. It returns false once the source is
	// exhausted or fails.
	Next(context.Context) bool

	// Payload returns the payload loaded by the last call to Next.
	Payload() Payload

	// Error returns the error that stopped the source, if any.
	Error() error
}

// Payload is a unit of work travelling through a pipeline.
type Payload interface {
	// MarkAsProcessed is called once the payload has been consumed by the
	// sink or dropped by a stage. Implementations may recycle themselves.
	MarkAsProcessed()
}

// Processor transforms a single payload. Returning a nil payload drops it;
// returning an error aborts the pipeline.
type Processor interface {
	Process(context.Context, Payload) (Payload, error)
}

// ProcessorFunc adapts a plain function into a Processor.
type ProcessorFunc func(context.Context, Payload) (Payload, error)

// Process calls f(ctx, p).
func (f ProcessorFunc) Process(ctx context.Context, p Payload) (Payload, error) {
	return f(ctx, p)
}

// Stage reads payloads from in and writes results to out until in is
// closed or ctx is done. A result for a payload already taken from in is
// sent on out even after ctx is done; the pipeline keeps reading out until
// Run returns. Run must not close out.
type Stage interface {
	Run(ctx context.Context, in <-chan Payload, out chan<- Payload) error
}

// Sink consumes the payloads leaving the last stage.
type Sink interface {
	Consume(context.Context, Payload) error
}
