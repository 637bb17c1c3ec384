// Package watcher periodically re-runs saved searches, stores what they
// find and announces postings it has not seen before.
package watcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mycok/uJobs/jobs"
)

// Service runs saved searches on a fixed interval. It satisfies the
// service.Service interface.
type Service struct {
	config Config
}

// New creates and returns a fully configured watcher service instance.
func New(config Config) (*Service, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("watcher service: config validation failed: %w", err)
	}

	return &Service{config: config}, nil
}

// Name returns the name of the service.
func (svc *Service) Name() string { return "watcher" }

// Run executes the service and blocks until the context gets cancelled.
// Failed searches and publications are logged and retried on the next
// pass.
func (svc *Service) Run(ctx context.Context) error {
	svc.config.Logger.WithFields(logrus.Fields{
		"interval": svc.config.Interval.String(),
		"searches": len(svc.config.Searches),
	}).Info("starting service")
	defer svc.config.Logger.Info("stopped service")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-svc.config.Clock.After(svc.config.Interval):
			svc.watchPass(ctx)
		}
	}
}

func (svc *Service) watchPass(ctx context.Context) {
	startedAt := svc.config.Clock.Now()

	var stored, fresh int

	for _, req := range svc.config.Searches {
		if ctx.Err() != nil {
			return
		}

		logger := svc.config.Logger.WithFields(logrus.Fields{
			"role":     req.Role,
			"location": req.Location,
		})

		results, err := svc.config.Searcher.Search(ctx, req)
		if err != nil {
			logger.WithField("err", err).Warn("saved search failed")

			continue
		}

		newPostings := svc.storeResults(results, logger)
		stored += len(results)
		fresh += len(newPostings)

		if len(newPostings) == 0 || svc.config.Publisher == nil {
			continue
		}

		if err := svc.config.Publisher.Publish(ctx, newPostings); err != nil {
			logger.WithFields(logrus.Fields{
				"err":   err,
				"count": len(newPostings),
			}).Warn("could not publish new postings")
		}
	}

	svc.config.Logger.WithFields(logrus.Fields{
		"stored":       stored,
		"new":          fresh,
		"elapsed_time": svc.config.Clock.Now().Sub(startedAt).String(),
	}).Info("completed watch pass")
}

// storeResults upserts every result and returns the postings whose URL was
// not stored before.
func (svc *Service) storeResults(results []jobs.RankedResult, logger *logrus.Entry) []jobs.Posting {
	var newPostings []jobs.Posting

	for i := range results {
		p := &results[i].Posting

		_, err := svc.config.Store.FindByURL(p.URL)
		isNew := errors.Is(err, jobs.ErrNotFound)

		if err != nil && !isNew {
			logger.WithFields(logrus.Fields{"url": p.URL, "err": err}).Warn("posting lookup failed")

			continue
		}

		if err := svc.config.Store.Upsert(p); err != nil {
			logger.WithFields(logrus.Fields{"url": p.URL, "err": err}).Warn("could not store posting")

			continue
		}

		if isNew {
			newPostings = append(newPostings, p.Clone())
		}
	}

	return newPostings
}
