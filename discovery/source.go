package discovery

import (
	"context"

	"github.com/mycok/uJobs/jobs"
	"github.com/mycok/uJobs/pipeline"
)

// Static and compile-time check to ensure candidateSource implements
// pipeline.Source interface.
var _ pipeline.Source = (*candidateSource)(nil)

// candidateSource feeds candidate links into the pipeline, tagging each one
// with its discovery sequence number.
type candidateSource struct {
	candidates []jobs.CandidateURL
	next       int
}

func (s *candidateSource) Next(ctx context.Context) bool {
	if ctx.Err() != nil || s.next >= len(s.candidates) {
		return false
	}

	s.next++

	return true
}

func (s *candidateSource) Payload() pipeline.Payload {
	payload := payloadPool.Get().(*candidatePayload)
	payload.Seq = s.next - 1
	payload.Candidate = s.candidates[s.next-1]

	return payload
}

func (s *candidateSource) Error() error { return nil }
