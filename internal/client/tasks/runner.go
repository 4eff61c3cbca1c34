// Package tasks runs fire-and-forget background work: sync pushes and
// profile counter updates that the caller deliberately does not await.
//
// Contract: at-least-once, unordered completion. A task started before the
// caller loses interest still runs to completion and applies its side
// effect. Each task's error is logged and also delivered on the returned
// channel for callers that do want to observe completion.
package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/obexhq/obex/internal/logging"
)

type Runner struct {
	log logging.Logger
	wg  sync.WaitGroup
}

func NewRunner(log logging.Logger) *Runner {
	return &Runner{log: log}
}

// Go schedules fn on its own goroutine. The returned channel receives the
// task's error (nil on success) and is buffered, so ignoring it is safe.
// Tasks run on a background context: they are not cancelled when the
// caller's request scope ends.
func (r *Runner) Go(name string, fn func(ctx context.Context) error) <-chan error {
	done := make(chan error, 1)
	r.wg.Add(1)

	go func() {
		defer r.wg.Done()
		defer close(done)

		ctx := context.Background()
		err := runSafe(ctx, fn)
		if err != nil {
			r.log.Warn(ctx, "background task failed", "task", name, "error", err)
		}
		done <- err
	}()

	return done
}

// Wait blocks until every scheduled task has finished. Used on shutdown.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func runSafe(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("task panicked: %v", p)
		}
	}()
	return fn(ctx)
}
