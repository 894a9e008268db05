package handlers

import (
	"fmt"
	"net/http"
)

// pcrPage is a small static HTML skeleton pointing a browser at the
// streaming and status endpoints, mirroring the reference's bundled
// index page for manual testing against a running relay.
const pcrPage = `<html><head><title>tsrelay</title></head><body>
<h1>tsrelay</h1>
<p>Stream: <code>/s?udp=HOST:PORT</code></p>
<p>Status: <a href="/si">/si</a></p>
<p>Rate plot: <code>/ss?udp=HOST:PORT</code></p>
</body></html>`

// PCR handles GET /pcr, serving the static landing page.
func (h *RelayHandler) PCR(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	_, _ = w.Write([]byte(pcrPage))
}

// Healthz handles GET /healthz, a liveness probe reporting registry
// occupancy alongside a static "ok" status, in the spirit of the teacher's
// ops surface.
func (h *RelayHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","programs_in_use":%d,"capacity":%d}`,
		h.registry.InUse(), h.registry.Capacity())
}
