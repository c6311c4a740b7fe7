package watcher

import (
	"context"
	"fmt"
	"time"

	"sigwatch/internal/sanderling"
	"sigwatch/internal/signatures"
)

type State int32

const (
	Idle State = iota
	Polling
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Polling:
		return "polling"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

type DiagnosticKind int

const (
	// WindowNotReady means the agency window is closed or shows something
	// else, the cycle was skipped.
	WindowNotReady DiagnosticKind = iota + 1
	// ReadFailed means the window could not be read, the cycle was skipped.
	ReadFailed
	// CycleSkipped means a tick came while the previous cycle was still
	// running.
	CycleSkipped
	// Reconnecting means the connection was dropped after too many failed
	// reads and a new handshake is starting.
	Reconnecting
)

func (k DiagnosticKind) String() string {
	switch k {
	case WindowNotReady:
		return "window-not-ready"
	case ReadFailed:
		return "read-failed"
	case CycleSkipped:
		return "cycle-skipped"
	case Reconnecting:
		return "reconnecting"
	default:
		return fmt.Sprintf("diagnostic(%d)", int(k))
	}
}

func (k DiagnosticKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

type Diagnostic struct {
	Kind    DiagnosticKind
	Session string
	Time    time.Time
	Err     error
}

// Cycle is the outcome of one successful poll.
type Cycle struct {
	Session string
	// Number counts successful cycles of the session, starting at 1.
	Number  int
	Time    time.Time
	Events  []signatures.DiffEvent
	Systems int
	Dropped int
}

// Sink receives what the watcher observes. Diagnostic may be called
// concurrently with Cycle.
type Sink interface {
	Cycle(ctx context.Context, cycle Cycle)
	Diagnostic(ctx context.Context, diagnostic Diagnostic)
}

// Connector produces a fresh connection to the game client.
type Connector interface {
	Connect(ctx context.Context) (sanderling.ConnectionHandle, error)
}

// Reader reads the flattened text of a window.
type Reader interface {
	ReadWindowText(ctx context.Context, windowId, uiRootAddress string) ([]string, error)
}
