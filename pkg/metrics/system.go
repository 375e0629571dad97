package metrics

import (
	"context"
	"runtime"
	"time"
)

const nanosecondsPerMillisecond = 1e6

// RunSystemCollector samples runtime memory, goroutine and GC figures every
// interval until ctx is done. A non-positive interval uses the manager default.
func RunSystemCollector(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = SystemRefreshInterval()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	CollectSystemMetrics()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			CollectSystemMetrics()
		}
	}
}

// CollectSystemMetrics takes one runtime sample.
func CollectSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	UpdateSystemMemoryUsage(m.Alloc)
	UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		RecordSystemGCPauseTime(avgPauseMs)
	}
}
