// Package plugins is the closed set of things sigwatch can run against a
// game client.
package plugins

import (
	"context"
	"fmt"
	"io"
	"slices"

	"sigwatch/internal/components/chrono"
	"sigwatch/internal/components/random"
	"sigwatch/internal/components/telemetry"
	"sigwatch/internal/config"
	"sigwatch/internal/handshake"
	"sigwatch/internal/sanderling"
)

type ID string

const (
	SignatureWatch ID = "signature-watch"
	WindowDump     ID = "window-dump"
)

type Deps struct {
	Config config.Config
	Tel    telemetry.API
	Time   chrono.API
	Random random.API
	Out    io.Writer
}

type Plugin interface {
	Execute(ctx context.Context) error
}

type Entry struct {
	ID          ID
	Description string
	New         func(deps Deps) (Plugin, error)
}

var registry = []Entry{
	{
		ID:          SignatureWatch,
		Description: "Reads signatures from open Agency window and tracks their changes",
		New:         newSignatureWatch,
	},
	{
		ID:          WindowDump,
		Description: "Connects once and prints a single reading of the Agency window",
		New:         newWindowDump,
	},
}

// All returns the registered plugins in menu order.
func All() []Entry {
	return slices.Clone(registry)
}

func Lookup(id string) (Entry, bool) {
	for _, entry := range registry {
		if string(entry.ID) == id {
			return entry, true
		}
	}
	return Entry{}, false
}

func newClient(deps Deps) (*sanderling.Client, error) {
	opts := sanderling.ClientOptions{
		URL:               deps.Config.Sanderling.URL,
		Timeout:           deps.Config.Sanderling.Timeout(),
		RequestsPerSecond: deps.Config.Sanderling.RequestsPerSecond,
	}
	if deps.Config.Sanderling.DumpDir != "" {
		output, err := telemetry.NewFilesystemOutput(deps.Config.Sanderling.DumpDir, deps.Tel)
		if err != nil {
			return nil, fmt.Errorf("dump dir: %w", err)
		}
		opts.Output = output
	}
	return sanderling.NewClient(opts, deps.Tel), nil
}

func newLocator(deps Deps, client *sanderling.Client) *handshake.Locator {
	return handshake.NewLocator(client, handshake.Options{
		PollInterval:  deps.Config.Handshake.PollInterval(),
		MaxIterations: deps.Config.Handshake.MaxIterations,
	}, deps.Tel)
}
