// Package handshake connects to a running game client through the memory
// reading service: it finds the client process, then waits for the service
// to locate the ui root of that process.
package handshake

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sigwatch/internal/components/assert"
	"sigwatch/internal/components/schedule"
	"sigwatch/internal/components/telemetry"
	"sigwatch/internal/sanderling"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("sigwatch/handshake")

var (
	// ErrNoClientFound is returned when the service answered with an empty
	// process list, it is not retried.
	ErrNoClientFound = errors.New("no game client found")
	// ErrHandshakeTimeout is returned when a wait ran out of attempts.
	ErrHandshakeTimeout = errors.New("handshake timed out")
)

const (
	report_wait_for_process = "wait-for-process"
	report_wait_for_ui_root = "wait-for-ui-root-address"
	report_connect          = "connect"
)

// API is the part of the memory reading service a handshake needs.
type API interface {
	ListGameClientProcesses(ctx context.Context) (sanderling.Envelope[[]sanderling.GameClientProcess], error)
	SearchUIRootAddress(ctx context.Context, processId int) (sanderling.Envelope[string], error)
}

type Options struct {
	PollInterval time.Duration
	// MaxIterations is the number of attempts a wait makes before failing
	// with ErrHandshakeTimeout.
	MaxIterations int
}

type Locator struct {
	api  API
	opts Options
	tel  telemetry.API
}

func NewLocator(api API, opts Options, tel telemetry.API) *Locator {
	assert.NotNil(api)
	assert.NotNil(tel)
	assert.Positive(opts.PollInterval, "poll interval")
	assert.Positive(opts.MaxIterations, "max iterations")

	return &Locator{
		api:  api,
		opts: opts,
		tel:  telemetry.NewScopedAPI("handshake", tel),
	}
}

// attempt makes one try at something a wait is waiting for. It returns
// done once value is usable, or a non-nil error to stop waiting for good.
type attempt[T any] func(ctx context.Context) (value T, done bool, err error)

func wait[T any](ctx context.Context, l *Locator, reportId string, try attempt[T]) (T, error) {
	var (
		iterations int
		value      T
		done       bool
		waitErr    error
	)

	schedule.Run(ctx, schedule.Options{
		Interval:  l.opts.PollInterval,
		Immediate: true,
		OnSkip: func() {
			l.tel.ReportDebug(fmt.Sprintf("%s: previous attempt still running", reportId))
		},
	}, func(ctx context.Context) bool {
		if iterations >= l.opts.MaxIterations {
			waitErr = fmt.Errorf("%w: %s after %d attempts", ErrHandshakeTimeout, reportId, iterations)
			return true
		}
		iterations++
		l.tel.ReportDebug(reportId, telemetry.KV{Key: "attempt", Value: iterations})

		value, done, waitErr = try(ctx)
		return done || waitErr != nil
	})

	if waitErr != nil {
		l.tel.ReportWarning(reportId, waitErr)
		return value, waitErr
	}
	if !done {
		return value, ctx.Err()
	}
	return value, nil
}

// WaitForProcess polls the process list until the service reports at least
// one game client and returns the first one.
func (l *Locator) WaitForProcess(ctx context.Context) (sanderling.GameClientProcess, error) {
	return wait(ctx, l, report_wait_for_process, func(ctx context.Context) (sanderling.GameClientProcess, bool, error) {
		res, err := l.api.ListGameClientProcesses(ctx)
		if err != nil {
			// transport and decode failures are retried on the next tick
			return sanderling.GameClientProcess{}, false, nil
		}
		if res.Kind != sanderling.KindCompleted {
			return sanderling.GameClientProcess{}, false, nil
		}
		if len(res.Value) == 0 {
			return sanderling.GameClientProcess{}, false, ErrNoClientFound
		}
		l.tel.ReportDebug("game client process found", res.Value[0].ProcessID)
		return res.Value[0], true, nil
	})
}

// WaitForUIRootAddress polls the ui root search of a process until it
// completes with an address.
func (l *Locator) WaitForUIRootAddress(ctx context.Context, processId int) (string, error) {
	return wait(ctx, l, report_wait_for_ui_root, func(ctx context.Context) (string, bool, error) {
		res, err := l.api.SearchUIRootAddress(ctx, processId)
		if err != nil {
			return "", false, nil
		}
		if res.Kind != sanderling.KindCompleted {
			return "", false, nil
		}
		l.tel.ReportDebug("ui root address found", res.Value)
		return res.Value, true, nil
	})
}

// Connect finds the game client and its ui root address. Nothing is
// cached, every call starts a fresh handshake.
func (l *Locator) Connect(ctx context.Context) (sanderling.ConnectionHandle, error) {
	ctx, span := tracer.Start(ctx, "Connect")
	defer span.End()

	fail := func(err error) (sanderling.ConnectionHandle, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return sanderling.ConnectionHandle{}, err
	}

	process, err := l.WaitForProcess(ctx)
	if err != nil {
		return fail(err)
	}
	span.SetAttributes(attribute.Int("process_id", process.ProcessID))

	address, err := l.WaitForUIRootAddress(ctx, process.ProcessID)
	if err != nil {
		return fail(err)
	}

	handle := sanderling.ConnectionHandle{
		ProcessID:     process.ProcessID,
		MainWindowID:  process.MainWindowID,
		UIRootAddress: address,
	}
	l.tel.ReportDebug(report_connect, handle)
	return handle, nil
}
