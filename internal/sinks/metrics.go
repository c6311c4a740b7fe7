package sinks

import (
	"context"

	"sigwatch/internal/watcher"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records cycles as otel instruments.
type Metrics struct {
	events      metric.Int64Counter
	diagnostics metric.Int64Counter
	cycles      metric.Int64Counter
	systems     metric.Int64Gauge
	dropped     metric.Int64Counter
}

func NewMetrics(provider metric.MeterProvider) (*Metrics, error) {
	meter := provider.Meter("sigwatch/sinks")

	events, err := meter.Int64Counter("signature_events", metric.WithDescription("signature spawns and despawns"))
	if err != nil {
		return nil, err
	}
	diagnostics, err := meter.Int64Counter("watcher_diagnostics")
	if err != nil {
		return nil, err
	}
	cycles, err := meter.Int64Counter("watcher_cycles")
	if err != nil {
		return nil, err
	}
	systems, err := meter.Int64Gauge("agency_systems", metric.WithDescription("systems listed in the last reading"))
	if err != nil {
		return nil, err
	}
	dropped, err := meter.Int64Counter("dropped_records")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		events:      events,
		diagnostics: diagnostics,
		cycles:      cycles,
		systems:     systems,
		dropped:     dropped,
	}, nil
}

func (m *Metrics) Cycle(ctx context.Context, cycle watcher.Cycle) {
	m.cycles.Add(ctx, 1)
	m.systems.Record(ctx, int64(cycle.Systems))
	m.dropped.Add(ctx, int64(cycle.Dropped))
	for _, event := range cycle.Events {
		m.events.Add(ctx, 1, metric.WithAttributes(
			attribute.String("direction", event.Direction.String()),
		))
	}
}

func (m *Metrics) Diagnostic(ctx context.Context, diagnostic watcher.Diagnostic) {
	m.diagnostics.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", diagnostic.Kind.String()),
	))
}
