package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	svgWidth       = 800
	svgHeight      = 600
	svgRowHeight   = 60
	svgRowGap      = 10
	svgBarStride   = 5
	svgBarWidth    = 3
	svgTimelineX   = 40
	svgBarsOriginX = 50
)

// SVG handles GET /ss?udp=HOST:PORT: an SVG document plotting, for every
// PID with a nonzero packet count, a column of per-second bars over the
// entry's rate-history window. If "udp" names no published entry, the
// first published entry is used instead; if none exists at all, or fewer
// than 3 seconds of rate history have accumulated yet, the response is a
// bare 200 with an empty body, matching the reference's behavior of
// simply returning before writing any SVG content.
func (h *RelayHandler) SVG(w http.ResponseWriter, r *http.Request) {
	addr := r.URL.Query().Get("udp")

	entry, ok := h.registry.Get(addr)
	if !ok {
		entry, ok = h.registry.GetFirst()
	}
	w.Header().Set("Content-Type", "text/xml")
	if !ok {
		w.WriteHeader(http.StatusOK)
		return
	}
	defer h.registry.Put(entry)

	snaps, rateIndex := entry.PIDSnapshots()
	if rateIndex <= 2 {
		w.WriteHeader(http.StatusOK)
		return
	}

	baseTime := time.Now().Add(-time.Duration(rateIndex) * time.Second)

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="utf-8"?><!DOCTYPE svg>`)
	fmt.Fprintf(&b, `<svg width="%dpx" height="%dpx" xmlns="http://www.w3.org/2000/svg"><g>`, svgWidth, svgHeight)
	fmt.Fprintf(&b, `<text font-size="16" x="10" y="20">base time: %s</text>`, baseTime.Format(time.RFC1123))

	y := svgRowHeight
	for _, s := range snaps {
		fmt.Fprintf(&b, `<text font-size="16" x="5" y="%d">%d</text>`, y-2, s.PID)
		fmt.Fprintf(&b, `<rect x="%d" y="%d" width="600" height="2" style="fill:#00ff00" />`, svgTimelineX, y)

		x := svgBarsOriginX
		var rateSum uint64
		for i := 0; i < rateIndex; i++ {
			rate := int(s.RateHistory[i])
			rateSum += uint64(rate)
			if rate >= 60 {
				z := rate / 60
				style := `style="fill:#880000"`
				if z >= 60 {
					style = `style="fill:#FF0000"`
				}
				fmt.Fprintf(&b, `<rect x="%d" y="%d" width="%d" height="%d" style="fill:#AAAAAA" />`,
					x, y-rate%60, svgBarWidth, rate%60)
				fmt.Fprintf(&b, `<rect x="%d" y="%d" width="1" height="%d" %s />`,
					x+1, y-z%60, z%60, style)
			} else {
				fmt.Fprintf(&b, `<rect x="%d" y="%d" width="%d" height="%d" />`, x, y-rate, svgBarWidth, rate)
			}
			x += svgBarStride
		}

		rateAvg := rateSum / uint64(rateIndex)
		fmt.Fprintf(&b, `<text font-size="16" x="%d" y="%d">avg=%d bps</text>`,
			svgBarsOriginX+(svgBarStride*64), y-2, rateAvg*188*8)

		y += svgRowHeight + svgRowGap
	}

	b.WriteString("</g></svg>")
	_, _ = w.Write([]byte(b.String()))
}
