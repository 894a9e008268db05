package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/jmylchreest/tsrelay/internal/relay"
)

// streamReplyHeader is the raw HTTP response the reference implementation
// writes for /s, reproduced verbatim (including the header name casing and
// the extra blank line terminating it).
const streamReplyHeader = "HTTP/1.1 200 OK\r\n" +
	"Content-type: application/octet-stream\r\n" +
	"Cache-Control: no-cache\r\n\r\n"

// Stream handles GET /s?udp=HOST:PORT. It finds or creates the program
// entry for the given UDP source, admits an HTTP stream slot, and blocks
// until the slot leaves RUNNING (client disconnect).
func (h *RelayHandler) Stream(w http.ResponseWriter, r *http.Request) {
	hj, ok := w.(http.Hijacker)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	conn, buf, err := hj.Hijack()
	if err != nil {
		h.logger.Error("hijack failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(streamReplyHeader)); err != nil {
		return
	}
	if buf != nil {
		_ = buf.Flush()
	}

	addr := r.URL.Query().Get("udp")
	if addr == "" {
		h.logger.Warn("stream request missing udp parameter", slog.String("remote_addr", r.RemoteAddr))
		return
	}

	entry, err := h.registry.GetOrCreate(r.Context(), addr)
	if err != nil {
		h.logger.Warn("could not find or create program entry",
			slog.String("udp", addr), slog.String("error", err.Error()))
		return
	}
	defer h.registry.Put(entry)

	slotIdx, err := entry.AddStream(conn, r.RemoteAddr)
	if err != nil {
		h.logger.Warn("stream table full", slog.String("udp", addr))
		return
	}

	h.logger.Info("stream admitted", slog.String("udp", addr), slog.Int("slot", slotIdx), slog.String("remote_addr", r.RemoteAddr))

	h.waitForClose(entry, slotIdx)

	h.logger.Info("stream closed", slog.String("udp", addr), slog.Int("slot", slotIdx), slog.String("remote_addr", r.RemoteAddr))
}

// waitForClose polls the slot's status at the configured poll interval
// until it leaves RUNNING, matching the reference's 1s polling sleep.
func (h *RelayHandler) waitForClose(entry *relay.ProgramEntry, slotIdx int) {
	ticker := time.NewTicker(h.cfg.ClientPollInterval)
	defer ticker.Stop()
	for range ticker.C {
		if entry.SlotStatus(slotIdx) != relay.StreamRunning {
			return
		}
	}
}
