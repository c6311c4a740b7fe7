// Package watcher polls the agency window of a connected game client and
// reports how the signature counts of each system change between readings.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"sigwatch/internal/components/assert"
	"sigwatch/internal/components/chrono"
	"sigwatch/internal/components/random"
	"sigwatch/internal/components/schedule"
	"sigwatch/internal/components/telemetry"
	"sigwatch/internal/sanderling"
	"sigwatch/internal/signatures"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("sigwatch/watcher")

const (
	report_cycle         = "cycle"
	report_cycle_events  = "cycle.events"
	report_cycle_dropped = "cycle.dropped"
	report_connect       = "connect"
)

type Options struct {
	PollInterval time.Duration
	// ReconnectAfterFailures is the number of consecutive failed reads that
	// drop the connection, 0 keeps the connection forever.
	ReconnectAfterFailures int
}

type Deps struct {
	Connector Connector
	Reader    Reader
	Sink      Sink
	Time      chrono.API
	Random    random.API
	Tel       telemetry.API
}

type Watcher struct {
	connector Connector
	reader    Reader
	sink      Sink
	time      chrono.API
	random    random.API
	tel       telemetry.API
	opts      Options

	state atomic.Int32
}

func New(deps Deps, opts Options) *Watcher {
	assert.NotNil(deps.Connector)
	assert.NotNil(deps.Reader)
	assert.NotNil(deps.Sink)
	assert.NotNil(deps.Time)
	assert.NotNil(deps.Random)
	assert.NotNil(deps.Tel)
	assert.Positive(opts.PollInterval, "poll interval")

	return &Watcher{
		connector: deps.Connector,
		reader:    deps.Reader,
		sink:      deps.Sink,
		time:      deps.Time,
		random:    deps.Random,
		tel:       telemetry.NewScopedAPI("watcher", deps.Tel),
		opts:      opts,
	}
}

func (w *Watcher) State() State {
	return State(w.state.Load())
}

func (w *Watcher) setState(s State) {
	w.state.Store(int32(s))
}

// Run connects to the game client and polls it until ctx is cancelled, in
// which case it returns nil. It returns the error of a failed handshake.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.setState(Idle)

	for {
		w.setState(Idle)

		handle, err := w.connector.Connect(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.tel.ReportWarning(report_connect, err)
			return fmt.Errorf("connect: %w", err)
		}

		session, err := w.random.SessionID()
		if err != nil {
			return err
		}
		w.tel.ReportDebug("connected, polling", telemetry.KV{Key: "session", Value: session}, handle)

		w.setState(Polling)
		if !w.poll(ctx, session, handle) {
			return nil
		}
	}
}

// polling is the state of one polling session. Only cycle bodies touch it
// and those never overlap.
type polling struct {
	session  string
	handle   sanderling.ConnectionHandle
	previous signatures.Snapshot
	cycles   int
	failures int
}

// poll runs cycles until ctx is done or the session asks for a reconnect,
// in which case it returns true.
func (w *Watcher) poll(ctx context.Context, session string, handle sanderling.ConnectionHandle) bool {
	s := &polling{session: session, handle: handle}
	reconnect := false

	schedule.Run(ctx, schedule.Options{
		Interval:  w.opts.PollInterval,
		Immediate: true,
		OnSkip: func() {
			w.tel.ReportWarning(report_cycle, "previous cycle still running")
			w.diagnose(ctx, s.session, CycleSkipped, nil)
		},
	}, func(ctx context.Context) bool {
		reconnect = w.cycle(ctx, s)
		return reconnect
	})

	return reconnect && ctx.Err() == nil
}

// cycle reads, parses and diffs the window once. It returns true when the
// connection should be dropped.
func (w *Watcher) cycle(ctx context.Context, s *polling) bool {
	ctx, span := tracer.Start(ctx, "Cycle")
	defer span.End()
	span.SetAttributes(attribute.String("session", s.session))

	tokens, err := w.reader.ReadWindowText(ctx, s.handle.MainWindowID, s.handle.UIRootAddress)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		s.failures++
		w.diagnose(ctx, s.session, ReadFailed, err)
		if w.opts.ReconnectAfterFailures > 0 && s.failures >= w.opts.ReconnectAfterFailures {
			w.diagnose(ctx, s.session, Reconnecting, fmt.Errorf("%d consecutive failed reads: %w", s.failures, err))
			return true
		}
		return false
	}
	s.failures = 0

	snapshot, err := signatures.Parse(tokens)
	if errors.Is(err, signatures.ErrWindowNotReady) {
		w.diagnose(ctx, s.session, WindowNotReady, err)
		return false
	}
	if err != nil {
		w.tel.ReportBroken(report_cycle, err)
		return false
	}

	events := signatures.Diff(s.previous, snapshot)
	s.previous = snapshot
	s.cycles++

	span.SetAttributes(
		attribute.Int("systems", snapshot.Len()),
		attribute.Int("events", len(events)),
	)
	w.tel.ReportCount(report_cycle_events, int64(len(events)))
	if snapshot.Dropped() > 0 {
		w.tel.ReportDebug(report_cycle_dropped, telemetry.KV{Key: "dropped", Value: snapshot.Dropped()})
	}

	w.sink.Cycle(ctx, Cycle{
		Session: s.session,
		Number:  s.cycles,
		Time:    w.time.Now(),
		Events:  events,
		Systems: snapshot.Len(),
		Dropped: snapshot.Dropped(),
	})
	return false
}

func (w *Watcher) diagnose(ctx context.Context, session string, kind DiagnosticKind, err error) {
	w.tel.ReportDebug(kind.String(), err)
	w.sink.Diagnostic(ctx, Diagnostic{
		Kind:    kind,
		Session: session,
		Time:    w.time.Now(),
		Err:     err,
	})
}
