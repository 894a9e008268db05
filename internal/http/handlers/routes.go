package handlers

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts every relay endpoint onto router.
func (h *RelayHandler) RegisterRoutes(router chi.Router) {
	router.Get("/s", h.Stream)
	router.Get("/si", h.Info)
	router.Get("/ss", h.SVG)
	router.Get("/pcr", h.PCR)
	router.Get("/start_flow", h.StartFlow)
	router.Get("/stop_flow", h.StopFlow)
	router.Get("/healthz", h.Healthz)
}
