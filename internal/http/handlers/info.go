package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// Info handles GET /si: an HTML status report listing host resource
// usage, every RUNNING HTTP stream across every program entry, and the
// nonzero PID counts for every entry with at least one stream.
func (h *RelayHandler) Info(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")

	var b strings.Builder
	b.WriteString("<html><body>")

	sys := collectProcessSummary()
	fmt.Fprintf(&b, "<h2>tsrelay %s, supports %d udp, %d http per udp</h2>",
		h.version, h.cfg.MaxPrograms, h.cfg.MaxStreamsPerProgram)
	fmt.Fprintf(&b, "<p>process: uptime %ds, cpu %.1f%%, mem %s/%s, programs in use %d/%d</p><hr>",
		sys.UptimeSeconds, sys.CPUPercent,
		formatBytes(sys.MemUsedBytes), formatBytes(sys.MemTotalBytes),
		h.registry.InUse(), h.registry.Capacity())

	entries := h.registry.Snapshot()

	b.WriteString("<p>stream information:</p>")
	b.WriteString("<table border=\"1\"><tr><th>udp stream</th><th>slot number</th><th>http client</th><th>send/discard bytes</th><th>start time</th></tr>")
	for _, e := range entries {
		key := h.registry.KeyOf(e)
		for _, rs := range e.RunningSlots() {
			fmt.Fprintf(&b, "<tr><td>%s</td><td>%d</td><td>%s</td><td>%d/%d</td><td>%s</td></tr>",
				key, rs.Index, rs.Slot.RemoteAddr(), rs.Slot.SendBytes(), rs.Slot.DiscardBytes(),
				rs.Slot.StartTime().Format("2006-01-02 15:04:05"))
		}
	}
	b.WriteString("</table>")

	b.WriteString("<p>pid information:</p>")
	b.WriteString("<table border=\"1\"><tr><th>udp stream</th><th>pid</th></tr>")
	for _, e := range entries {
		if e.StreamCount() == 0 {
			continue
		}
		snaps, _ := e.PIDSnapshots()
		if len(snaps) == 0 {
			continue
		}
		var pids strings.Builder
		for _, s := range snaps {
			fmt.Fprintf(&pids, "%d:%d ", s.PID, s.Count)
		}
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td></tr>", h.registry.KeyOf(e), pids.String())
	}
	b.WriteString("</table>")

	b.WriteString("</body></html>")

	_, _ = w.Write([]byte(b.String()))
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return strconv.FormatUint(n, 10) + "B"
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
