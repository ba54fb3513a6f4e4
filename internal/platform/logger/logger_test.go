package logger

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	for _, level := range []string{"debug", "info", "WARN", "Error"} {
		log, err := Setup(level)
		require.NoError(t, err, "level %q", level)
		assert.NotNil(t, log)
	}

	_, err := Setup("verbose")
	assert.Error(t, err)
}

func TestContextRoundTrip(t *testing.T) {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil)).With("component", "test")

	ctx := WithLogger(context.Background(), log)
	assert.Same(t, log, FromContext(ctx))
	assert.Same(t, log, FromContextOrDefault(ctx, nil))
}

func TestFromContextFallbacks(t *testing.T) {
	ctx := context.Background()

	assert.Same(t, slog.Default(), FromContext(ctx))

	fallback := slog.New(slog.NewTextHandler(os.Stderr, nil))
	assert.Same(t, fallback, FromContextOrDefault(ctx, fallback))
	assert.Same(t, slog.Default(), FromContextOrDefault(ctx, nil))
}
