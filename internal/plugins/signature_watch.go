package plugins

import (
	"context"
	"fmt"
	"io"

	"sigwatch/internal/sanderling"
	"sigwatch/internal/sinks"
	"sigwatch/internal/watcher"

	"go.opentelemetry.io/otel"
)

const report_websocket_sink = "signature-watch.websocket"

type signatureWatch struct {
	deps      Deps
	client    *sanderling.Client
	connector watcher.Connector
	sink      sinks.Multi
	websocket *sinks.Websocket
}

func newSignatureWatch(deps Deps) (Plugin, error) {
	client, err := newClient(deps)
	if err != nil {
		return nil, err
	}

	metrics, err := sinks.NewMetrics(otel.GetMeterProvider())
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	sink := sinks.Multi{
		sinks.NewConsole(deps.Out, deps.Config.Console.NoColor),
		metrics,
	}

	email := deps.Config.Email
	if email.Enabled() {
		sink = append(sink, sinks.NewEmail(email, sinks.SMTPSender(email), deps.Tel))
	}

	var websocket *sinks.Websocket
	if deps.Config.Websocket.Listen != "" {
		websocket = sinks.NewWebsocket(deps.Tel)
		sink = append(sink, websocket)
	}

	return &signatureWatch{
		deps:   deps,
		client: client,
		connector: announcingConnector{
			inner: newLocator(deps, client),
			out:   deps.Out,
		},
		sink:      sink,
		websocket: websocket,
	}, nil
}

// announcingConnector tells the user when a handshake starts and ends.
type announcingConnector struct {
	inner watcher.Connector
	out   io.Writer
}

func (c announcingConnector) Connect(ctx context.Context) (sanderling.ConnectionHandle, error) {
	fmt.Fprintln(c.out, "Activating scan...")
	handle, err := c.inner.Connect(ctx)
	if err != nil {
		return handle, err
	}
	fmt.Fprintln(c.out, "Received game client data, scan is now active!")
	return handle, nil
}

func (p *signatureWatch) Execute(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if p.websocket != nil {
		addr := p.deps.Config.Websocket.Listen
		go func() {
			err := p.websocket.Listen(ctx, addr)
			if err != nil {
				p.deps.Tel.ReportBroken(report_websocket_sink, err, addr)
			}
		}()
	}

	w := watcher.New(watcher.Deps{
		Connector: p.connector,
		Reader:    p.client,
		Sink:      p.sink,
		Time:      p.deps.Time,
		Random:    p.deps.Random,
		Tel:       p.deps.Tel,
	}, watcher.Options{
		PollInterval:           p.deps.Config.Watch.PollInterval(),
		ReconnectAfterFailures: p.deps.Config.Watch.ReconnectAfterFailures,
	})
	return w.Run(ctx)
}
