package infrastructure

import (
	"context"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// RuntimeStats is a point-in-time view of the process
type RuntimeStats struct {
	Goroutines     int           `json:"goroutines"`
	HeapAllocBytes uint64        `json:"heap_alloc_bytes"`
	SysBytes       uint64        `json:"sys_bytes"`
	NumGC          uint32        `json:"num_gc"`
	CPUCount       int           `json:"cpu_count"`
	Uptime         time.Duration `json:"uptime"`
}

// ReadRuntimeStats collects runtime statistics relative to startTime
func ReadRuntimeStats(startTime time.Time) RuntimeStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return RuntimeStats{
		Goroutines:     runtime.NumGoroutine(),
		HeapAllocBytes: memStats.HeapAlloc,
		SysBytes:       memStats.Sys,
		NumGC:          memStats.NumGC,
		CPUCount:       runtime.NumCPU(),
		Uptime:         time.Since(startTime),
	}
}

// RegisterRuntimeMetrics exposes uptime and heap usage as observable gauges.
// Values are sampled on each collection, so no background collector runs.
func RegisterRuntimeMetrics(meter metric.Meter, startTime time.Time) error {
	uptime, err := meter.Float64ObservableGauge(
		"system_process_uptime_seconds",
		metric.WithDescription("Process uptime in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	heap, err := meter.Int64ObservableGauge(
		"system_memory_heap_alloc_bytes",
		metric.WithDescription("Heap bytes allocated and in use"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return err
	}

	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := ReadRuntimeStats(startTime)
		o.ObserveFloat64(uptime, stats.Uptime.Seconds())
		o.ObserveInt64(heap, int64(stats.HeapAllocBytes))
		return nil
	}, uptime, heap)
	return err
}
