package telemetry

import (
	"context"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"go.opentelemetry.io/otel"
)

const report_perf_stats_cpu = "perf-stats.cpu"

// InstrumentPerfStats records cpu, memory and goroutine gauges every
// interval until ctx is done.
func InstrumentPerfStats(ctx context.Context, tel API, interval time.Duration) {
	meter := otel.Meter("sigwatch.perf_stats")
	cpuGauge, _ := meter.Float64Gauge("cpu_usage")
	memoryGauge, _ := meter.Int64Gauge("allocated_mb")
	goroutineGauge, _ := meter.Int64Gauge("goroutine_count")

	go func() {
		var memStats runtime.MemStats
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			runtime.ReadMemStats(&memStats)

			cpuUsage, err := cpu.PercentWithContext(ctx, 0, false)
			if err == nil && len(cpuUsage) > 0 {
				cpuGauge.Record(ctx, cpuUsage[0])
			} else if err != nil {
				tel.ReportWarning(report_perf_stats_cpu, err)
			}

			memoryGauge.Record(ctx, int64(memStats.Alloc/1_000_000))
			goroutineGauge.Record(ctx, int64(runtime.NumGoroutine()))
		}
	}()
}
