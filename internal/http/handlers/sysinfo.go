package handlers

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// processSummary is a small snapshot of host resource usage rendered at
// the top of /si, in the spirit of the teacher's daemon heartbeat stats
// collector but scoped down to what fits a one-line status header.
type processSummary struct {
	UptimeSeconds int64
	CPUPercent    float64
	MemUsedBytes  uint64
	MemTotalBytes uint64
}

// collectProcessSummary gathers host uptime, CPU, and memory usage with a
// short timeout so a slow or unavailable gopsutil backend never blocks the
// /si response.
func collectProcessSummary() processSummary {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	var summary processSummary

	if uptime, err := host.UptimeWithContext(ctx); err == nil {
		summary.UptimeSeconds = int64(uptime)
	}

	if percents, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(percents) > 0 {
		summary.CPUPercent = percents[0]
	}

	if memInfo, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		summary.MemUsedBytes = memInfo.Used
		summary.MemTotalBytes = memInfo.Total
	}

	return summary
}
