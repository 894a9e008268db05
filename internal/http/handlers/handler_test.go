package handlers

import (
	"log/slog"
	"time"

	"github.com/jmylchreest/tsrelay/internal/config"
	"github.com/jmylchreest/tsrelay/internal/relay"
)

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discardWriter{}, nil))
}

func testHandler() *RelayHandler {
	cfg := config.Default().Relay
	cfg.MaxPrograms = 4
	cfg.MaxStreamsPerProgram = 4
	cfg.ClientPollInterval = 5 * time.Millisecond
	cfg.UDPReceiveTimeout = 10 * time.Millisecond
	cfg.IdleTimeout = time.Hour

	logger := testLogger()
	registry := relay.NewRegistry(cfg, logger)
	return NewRelayHandler(registry, cfg, logger, "test")
}
