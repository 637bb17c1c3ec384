package discovery

import (
	"sync"

	"github.com/mycok/uJobs/jobs"
	"github.com/mycok/uJobs/parser"
	"github.com/mycok/uJobs/pipeline"
)

var (
	_ pipeline.Payload = (*candidatePayload)(nil)

	payloadPool = sync.Pool{
		New: func() interface{} {
			return new(candidatePayload)
		},
	}
)

type candidatePayload struct {
	Seq       int               // populated by the candidate source.
	Candidate jobs.CandidateURL // populated by the candidate source.
	Outcome   parser.Outcome    // populated by the parse stage.
}

// MarkAsProcessed resets the payload and returns it to the pool.
func (p *candidatePayload) MarkAsProcessed() {
	*p = candidatePayload{}

	payloadPool.Put(p)
}
