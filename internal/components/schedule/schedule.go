// Package schedule runs a body on a fixed interval without ever letting two
// runs of the body overlap.
package schedule

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

type Options struct {
	Interval time.Duration
	// Immediate runs the body once as soon as Run starts instead of waiting
	// for the first tick.
	Immediate bool
	// OnSkip is called on the ticker goroutine for every tick that found the
	// previous body still running.
	OnSkip func()
}

// Body is one unit of scheduled work, returning true stops the schedule.
type Body func(ctx context.Context) (done bool)

// Run starts body every opts.Interval in its own goroutine while no other
// run of body is in flight. It returns once ctx is cancelled or a body
// returns true, and only after the in-flight body (if any) has returned.
func Run(ctx context.Context, opts Options, body Body) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	var wg sync.WaitGroup
	defer wg.Wait()

	var busy atomic.Bool
	tick := func() {
		if !busy.CompareAndSwap(false, true) {
			if opts.OnSkip != nil {
				opts.OnSkip()
			}
			return
		}
		if ctx.Err() != nil {
			busy.Store(false)
			return
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer busy.Store(false)
			if body(ctx) {
				cancel()
			}
		}()
	}

	if opts.Immediate {
		tick()
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		tick()
	}
}
