package discovery

import (
	"context"

	"github.com/mycok/uJobs/pipeline"
)

// Static and compile-time check to ensure postingParserStage implements
// pipeline.Processor interface.
var _ pipeline.Processor = (*postingParserStage)(nil)

// postingParserStage fetches and parses the page behind each candidate.
// Failed candidates travel on to the sink with their failure reason so they
// can be accounted for.
type postingParserStage struct {
	parser PostingParser
}

func (s *postingParserStage) Process(ctx context.Context, p pipeline.Payload) (pipeline.Payload, error) {
	payload, ok := p.(*candidatePayload)
	if !ok {
		return nil, nil
	}

	payload.Outcome = s.parser.Parse(ctx, payload.Candidate)

	return payload, nil
}
