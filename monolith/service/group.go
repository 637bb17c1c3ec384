// Package service defines the long-running services hosted by the uJobs
// binary and a way to run them side by side.
package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// Service is a long-running component of the uJobs binary.
type Service interface {
	// Name identifies the service in logs and errors.
	Name() string

	// Run blocks until ctx is cancelled or the service fails.
	Run(context.Context) error
}

// Group runs a set of services in parallel.
type Group []Service

// Execute runs every service in the group and blocks until all of them
// return. The first failure cancels the context handed to the remaining
// services; all failures are reported together, prefixed with the name of
// the service that produced them.
func (g Group) Execute(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg     sync.WaitGroup
		errMu  sync.Mutex
		runErr error
	)

	for _, svc := range g {
		if svc == nil {
			continue
		}

		wg.Add(1)

		go func(svc Service) {
			defer wg.Done()

			if err := svc.Run(runCtx); err != nil {
				errMu.Lock()
				runErr = multierror.Append(runErr, fmt.Errorf("%s: %w", svc.Name(), err))
				errMu.Unlock()

				cancel()
			}
		}(svc)
	}

	wg.Wait()

	return runErr
}
