package observability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/tsrelay/internal/config"
)

func TestNewLoggerWithWriterRedactsCredentials(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(config.LoggingConfig{Level: "info", Format: "text"}, &buf)

	logger.Info("request", slog.String("query", "udp=127.0.0.1:1234&token=supersecret"))

	out := buf.String()
	assert.Contains(t, out, "udp=127.0.0.1:1234")
	assert.Contains(t, out, "token=[REDACTED]")
	assert.NotContains(t, out, "supersecret")
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, parseLevel("debug"))
	require.Equal(t, slog.LevelWarn, parseLevel("warn"))
	require.Equal(t, slog.LevelError, parseLevel("error"))
	require.Equal(t, slog.LevelInfo, parseLevel("info"))
	require.Equal(t, slog.LevelInfo, parseLevel("bogus"))
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	base := NewLoggerWithWriter(config.LoggingConfig{Level: "info", Format: "text"}, &buf)

	withNil := WithError(base, nil)
	assert.Same(t, base, withNil)

	withErr := WithError(base, errors.New("boom"))
	withErr.Info("op failed")
	assert.Contains(t, buf.String(), "boom")
}

func TestContextLogger(t *testing.T) {
	ctx := ContextWithLogger(context.Background(), slog.Default())
	assert.Same(t, slog.Default(), LoggerFromContext(ctx))
}
