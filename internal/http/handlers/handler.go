// Package handlers implements the HTTP endpoints of the tsrelay UDP-to-HTTP
// fan-out engine: the streaming endpoint, the status report, the SVG rate
// plot, the flow-keepalive endpoints, and a couple of ambient ops routes.
package handlers

import (
	"log/slog"
	"time"

	"github.com/jmylchreest/tsrelay/internal/config"
	"github.com/jmylchreest/tsrelay/internal/relay"
)

// RelayHandler holds the dependencies shared by every relay HTTP endpoint.
type RelayHandler struct {
	registry  *relay.Registry
	cfg       config.RelayConfig
	logger    *slog.Logger
	version   string
	startedAt time.Time
}

// NewRelayHandler constructs a RelayHandler bound to a registry.
func NewRelayHandler(registry *relay.Registry, cfg config.RelayConfig, logger *slog.Logger, version string) *RelayHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if version == "" {
		version = "dev"
	}
	return &RelayHandler{
		registry:  registry,
		cfg:       cfg,
		logger:    logger,
		version:   version,
		startedAt: time.Now(),
	}
}
