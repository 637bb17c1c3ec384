package pipeline_test

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	check "gopkg.in/check.v1"

	"github.com/mycok/uJobs/pipeline"
)

var _ = check.Suite(new(stageTestSuite))

type stageTestSuite struct{}

func (s *stageTestSuite) TestFIFOKeepsArrivalOrder(c *check.C) {
	stages := make([]pipeline.Stage, 10)
	for i := 0; i < len(stages); i++ {
		stages[i] = pipeline.NewFIFO(passThrough())
	}

	src := &sourceStub{data: stringPayloads(20)}
	sink := new(sinkStub)

	err := pipeline.New(stages...).Execute(context.TODO(), src, sink)
	c.Assert(err, check.IsNil)
	c.Assert(sink.data, check.DeepEquals, src.data)
	assertAllProcessed(c, src.data...)
}

func (s *stageTestSuite) TestWorkerPoolRunsUpToLimit(c *check.C) {
	var executed, inFlight, peak int32
	workers := 5
	syncChan := make(chan struct{}, workers)
	rendezvousChan := make(chan struct{})
	doneChan := make(chan struct{})

	proc := pipeline.ProcessorFunc(
		func(context.Context, pipeline.Payload) (pipeline.Payload, error) {
			n := atomic.AddInt32(&inFlight, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}

			syncChan <- struct{}{}
			<-rendezvousChan

			atomic.AddInt32(&inFlight, -1)
			atomic.AddInt32(&executed, 1)

			return nil, nil
		})

	src := &sourceStub{data: stringPayloads(workers * 2)}
	p := pipeline.New(pipeline.NewWorkerPool(proc, workers))

	go func() {
		c.Check(p.Execute(context.TODO(), src, nil), check.IsNil)
		close(doneChan)
	}()

	for i := 0; i < workers; i++ {
		select {
		case <-syncChan:
		case <-time.After(10 * time.Second):
			c.Fatalf("timed out waiting for worker %d to reach sync point", i)
		}
	}

	close(rendezvousChan)

	select {
	case <-doneChan:
	case <-time.After(10 * time.Second):
		c.Fatal("timed out waiting for pipeline to complete")
	}

	c.Assert(atomic.LoadInt32(&executed), check.Equals, int32(workers*2))
	c.Assert(atomic.LoadInt32(&peak), check.Equals, int32(workers))
	assertAllProcessed(c, src.data...)
}

func (s *stageTestSuite) TestWorkerPoolIsReusable(c *check.C) {
	p := pipeline.New(pipeline.NewWorkerPool(passThrough(), 2))

	for run := 0; run < 3; run++ {
		src := &sourceStub{data: stringPayloads(4)}
		sink := new(sinkStub)

		c.Assert(p.Execute(context.TODO(), src, sink), check.IsNil)
		c.Assert(sink.getData(), check.HasLen, 4, check.Commentf("run %d", run))
	}
}

func (s *stageTestSuite) TestWorkerPoolProcessorError(c *check.C) {
	proc := pipeline.ProcessorFunc(
		func(context.Context, pipeline.Payload) (pipeline.Payload, error) {
			return nil, errors.New("parse failed")
		})

	src := &sourceStub{data: stringPayloads(3)}

	err := pipeline.New(pipeline.NewWorkerPool(proc, 3)).Execute(context.TODO(), src, new(sinkStub))
	c.Assert(err, check.ErrorMatches, "pipeline stage: parse failed")
}

func (s *stageTestSuite) TestNonPositiveWorkerCountFallsBackToOne(c *check.C) {
	src := &sourceStub{data: stringPayloads(5)}
	sink := new(sinkStub)

	err := pipeline.New(pipeline.NewWorkerPool(passThrough(), 0)).Execute(context.TODO(), src, sink)
	c.Assert(err, check.IsNil)
	c.Assert(sink.data, check.DeepEquals, src.data)
}

func passThrough() pipeline.Processor {
	return pipeline.ProcessorFunc(
		func(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
			return p, nil
		})
}
