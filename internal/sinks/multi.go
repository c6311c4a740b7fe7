package sinks

import (
	"context"

	"sigwatch/internal/watcher"
)

// Multi forwards to every sink in order.
type Multi []watcher.Sink

func (m Multi) Cycle(ctx context.Context, cycle watcher.Cycle) {
	for _, sink := range m {
		sink.Cycle(ctx, cycle)
	}
}

func (m Multi) Diagnostic(ctx context.Context, diagnostic watcher.Diagnostic) {
	for _, sink := range m {
		sink.Diagnostic(ctx, diagnostic)
	}
}
