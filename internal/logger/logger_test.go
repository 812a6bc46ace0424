package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
		" WARN ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok, s)
		require.Equal(t, lvl, got, s)
	}

	_, ok := ParseLogLevel("verbose")
	require.False(t, ok)
}

// TestContextLogger ensures names and fields attached to the context show up in output.
func TestContextLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	ctx := ToContext(context.Background(), New(zapcore.DebugLevel, &buf))
	ctx = WithName(ctx, "packager")
	ctx = WithKV(ctx, "phase", "stage")

	InfoKV(ctx, "Copied dependency", "path", "node_modules/x")

	out := buf.String()
	require.Contains(t, out, "packager")
	require.Contains(t, out, "Copied dependency")
	require.Contains(t, out, "node_modules/x")
	require.Contains(t, out, "stage")
}

// TestFromContextFallback checks that a bare context yields the global logger.
func TestFromContextFallback(t *testing.T) {
	t.Parallel()

	require.Same(t, Logger(), FromContext(context.Background()))
}

// TestSetLevel changes the shared level and restores it afterwards.
func TestSetLevel(t *testing.T) {
	previous := Level()

	t.Cleanup(func() {
		SetLevel(previous)
	})

	var buf bytes.Buffer

	ctx := ToContext(context.Background(), New(nil, &buf))

	SetLevel(zapcore.WarnLevel)
	require.Equal(t, zapcore.WarnLevel, Level())

	DebugKV(ctx, "hidden")
	WarnKV(ctx, "shown")

	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")
}
