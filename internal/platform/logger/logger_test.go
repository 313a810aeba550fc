package logger

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"WARN":  slog.LevelWarn,
		"Error": slog.LevelError,
	}
	for input, want := range cases {
		level, err := ParseLevel(input)
		require.NoError(t, err)
		assert.Equal(t, want, level)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestSetup(t *testing.T) {
	log, err := Setup("debug")
	require.NoError(t, err)
	assert.NotNil(t, log)
	assert.Same(t, log, slog.Default())

	_, err = Setup("nope")
	assert.Error(t, err)
}

func TestContextPropagation(t *testing.T) {
	base := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx := WithContext(context.Background(), base)

	assert.Same(t, base, FromContext(ctx))
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}
