package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
)

// jsonpReply writes the status body, wrapped in a JSONP callback call only
// when the request carries a "callback" query parameter; otherwise it
// writes a bare JSON body, matching the reference's handle_jsonp(), which
// only emits the closing "callback(...)" wrapper when a callback name was
// actually given.
func jsonpReply(w http.ResponseWriter, r *http.Request, ok bool) {
	callback := r.URL.Query().Get("callback")
	if callback == "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "{\"ok\":%t}", ok)
		return
	}
	w.Header().Set("Content-Type", "application/javascript")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "%s({\"ok\":%t});", callback, ok)
}

// StartFlow handles GET /start_flow?udp=HOST:PORT. It registers a logical
// user on the addressed program entry, creating it if necessary, keeping
// its ingest worker alive without admitting an HTTP stream slot. A caller
// must eventually balance this with StopFlow or let the entry idle out.
func (h *RelayHandler) StartFlow(w http.ResponseWriter, r *http.Request) {
	addr := r.URL.Query().Get("udp")
	if addr == "" {
		h.logger.Warn("start_flow request missing udp parameter", slog.String("remote_addr", r.RemoteAddr))
		jsonpReply(w, r, false)
		return
	}

	entry, err := h.registry.GetOrCreate(r.Context(), addr)
	if err != nil {
		h.logger.Warn("start_flow could not find or create program entry",
			slog.String("udp", addr), slog.String("error", err.Error()))
		jsonpReply(w, r, false)
		return
	}
	defer h.registry.Put(entry)

	entry.IncUsers()
	h.logger.Info("flow started", slog.String("udp", addr))
	jsonpReply(w, r, true)
}

// StopFlow handles GET /stop_flow?udp=HOST:PORT, releasing a logical user
// previously registered by StartFlow. Unknown addresses are logged and
// otherwise a no-op, matching the reference's tolerance of stray keepalive
// requests after an entry has already idled out.
func (h *RelayHandler) StopFlow(w http.ResponseWriter, r *http.Request) {
	addr := r.URL.Query().Get("udp")
	if addr == "" {
		h.logger.Warn("stop_flow request missing udp parameter", slog.String("remote_addr", r.RemoteAddr))
		jsonpReply(w, r, true)
		return
	}

	entry, ok := h.registry.Get(addr)
	if !ok {
		h.logger.Info("stop_flow for unknown program entry", slog.String("udp", addr))
		jsonpReply(w, r, true)
		return
	}
	defer h.registry.Put(entry)

	entry.DecUsers()
	h.logger.Info("flow stopped", slog.String("udp", addr))
	jsonpReply(w, r, true)
}
