package sinks

import (
	"context"
	"fmt"
	"io"
	"sync"

	"sigwatch/internal/signatures"
	"sigwatch/internal/watcher"

	"github.com/charmbracelet/lipgloss"
)

// the format javascript's Date.toUTCString uses
const utcFormat = "Mon, 02 Jan 2006 15:04:05 GMT"

const windowClosedMessage = "Agency window is closed, please keep agency window open"

// cyclePalette is the sequence of ansi colors consecutive cycles are printed
// in, an empty color prints without one.
var cyclePalette = []lipgloss.Color{
	"8", "1", "10", "9", "6", "", "", "1", "8", "2", "8", "3", "1", "2", "8",
}

// Console prints signature changes as colored lines, every cycle in the
// next color of the palette so consecutive cycles are easy to tell apart.
type Console struct {
	out     io.Writer
	noColor bool

	mu    sync.Mutex
	color int
}

func NewConsole(out io.Writer, noColor bool) *Console {
	return &Console{out: out, noColor: noColor}
}

func (c *Console) style() lipgloss.Style {
	color := cyclePalette[c.color%len(cyclePalette)]
	c.color++

	style := lipgloss.NewStyle().Bold(true)
	if c.noColor || color == "" {
		return style
	}
	return style.Foreground(color)
}

func FormatEvent(event signatures.DiffEvent) string {
	switch event.Direction {
	case signatures.Spawned:
		return fmt.Sprintf("+++ Sig spawned in %s - %d jumps", event.System, event.Jumps)
	case signatures.Despawned:
		return fmt.Sprintf("--- Sig despawned in %s - %d jumps", event.System, event.Jumps)
	default:
		return fmt.Sprintf("??? %s in %s - %d jumps", event.Direction, event.System, event.Jumps)
	}
}

func (c *Console) Cycle(ctx context.Context, cycle watcher.Cycle) {
	c.mu.Lock()
	defer c.mu.Unlock()

	style := c.style()
	for _, event := range cycle.Events {
		line := fmt.Sprintf("[%s] %s", cycle.Time.UTC().Format(utcFormat), FormatEvent(event))
		if c.noColor {
			fmt.Fprintln(c.out, line)
			continue
		}
		fmt.Fprintln(c.out, style.Render(line))
	}
}

func (c *Console) Diagnostic(ctx context.Context, diagnostic watcher.Diagnostic) {
	var line string
	switch diagnostic.Kind {
	case watcher.WindowNotReady:
		line = windowClosedMessage
	case watcher.ReadFailed:
		line = fmt.Sprintf("Failed to read the agency window: %v", diagnostic.Err)
	case watcher.Reconnecting:
		line = fmt.Sprintf("Lost the game client (%v), connecting again...", diagnostic.Err)
	default:
		// skipped cycles are only interesting in the logs
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, line)
}
