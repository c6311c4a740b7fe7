package plugins

import (
	"context"
	"errors"
	"fmt"

	"sigwatch/internal/handshake"
	"sigwatch/internal/sanderling"
	"sigwatch/internal/signatures"

	"github.com/jedib0t/go-pretty/v6/table"
)

type windowDump struct {
	deps    Deps
	client  *sanderling.Client
	locator *handshake.Locator
}

func newWindowDump(deps Deps) (Plugin, error) {
	client, err := newClient(deps)
	if err != nil {
		return nil, err
	}
	return &windowDump{
		deps:    deps,
		client:  client,
		locator: newLocator(deps, client),
	}, nil
}

func (p *windowDump) newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(p.deps.Out)
	return t
}

func (p *windowDump) Execute(ctx context.Context) error {
	handle, err := p.locator.Connect(ctx)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	reading, err := p.client.ReadWindow(ctx, handle.MainWindowID, handle.UIRootAddress)
	if err != nil {
		return fmt.Errorf("read window: %w", err)
	}

	t := p.newTable()
	t.AppendHeader(table.Row{"Field", "Value"})
	t.AppendRows([]table.Row{
		{"Process", handle.ProcessID},
		{"Window", handle.MainWindowID},
		{"UI root", handle.UIRootAddress},
		{"Reading", reading.ReadingID},
		{"Client offset", fmt.Sprintf("%d, %d", reading.WindowClientRectOffset.X, reading.WindowClientRectOffset.Y)},
		{"Serialized size", len(reading.MemoryReadingSerialRepresentationJSON)},
	})
	t.Render()

	tokens, err := p.client.ReadWindowText(ctx, handle.MainWindowID, handle.UIRootAddress)
	if err != nil {
		return fmt.Errorf("read window text: %w", err)
	}
	snapshot, err := signatures.Parse(tokens)
	if errors.Is(err, signatures.ErrWindowNotReady) {
		fmt.Fprintln(p.deps.Out, "Agency window is closed, please keep agency window open")
		return nil
	}
	if err != nil {
		return err
	}

	t = p.newTable()
	t.AppendHeader(table.Row{"System", "Jumps", "Signatures"})
	for _, name := range snapshot.Names() {
		entry, _ := snapshot.Get(name)
		t.AppendRow(table.Row{name, entry.Jumps, entry.Sigs})
	}
	t.AppendFooter(table.Row{"", "Dropped", snapshot.Dropped()})
	t.Render()
	return nil
}
