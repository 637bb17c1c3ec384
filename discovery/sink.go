package discovery

import (
	"context"
	"sort"
	"sync"

	"github.com/mycok/uJobs/parser"
	"github.com/mycok/uJobs/pipeline"
)

// Static and compile-time check to ensure collectingSink implements
// pipeline.Sink interface.
var _ pipeline.Sink = (*collectingSink)(nil)

type sequencedOutcome struct {
	seq     int
	outcome parser.Outcome
}

// collectingSink keeps a copy of every outcome that leaves the pipeline.
// Payloads are recycled once consumed, so the sink must not retain them.
type collectingSink struct {
	mu       sync.Mutex
	outcomes []sequencedOutcome
}

func (s *collectingSink) Consume(_ context.Context, p pipeline.Payload) error {
	payload, ok := p.(*candidatePayload)
	if !ok {
		return nil
	}

	outcome := payload.Outcome
	outcome.Posting = payload.Outcome.Posting.Clone()

	s.mu.Lock()
	s.outcomes = append(s.outcomes, sequencedOutcome{seq: payload.Seq, outcome: outcome})
	s.mu.Unlock()

	return nil
}

// inDiscoveryOrder returns the collected outcomes sorted by the order their
// candidates were discovered in.
func (s *collectingSink) inDiscoveryOrder() []parser.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	sort.Slice(s.outcomes, func(i, j int) bool {
		return s.outcomes[i].seq < s.outcomes[j].seq
	})

	out := make([]parser.Outcome, len(s.outcomes))
	for i, o := range s.outcomes {
		out[i] = o.outcome
	}

	return out
}
