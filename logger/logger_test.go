package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerNonNilBeforeInitialize(t *testing.T) {
	// The package-level nop logger must be usable before Initialize
	require.NotNil(t, Logger)
	assert.NotPanics(t, func() {
		Infow("pre-init message", "key", "value")
		Warnw("pre-init warning")
	})
}

func TestInitializeConsole(t *testing.T) {
	err := Initialize(false)
	require.NoError(t, err)
	require.NotNil(t, Logger)
	assert.False(t, JSONOutput)
}

func TestInitializeJSON(t *testing.T) {
	err := Initialize(true)
	require.NoError(t, err)
	require.NotNil(t, Logger)
	assert.True(t, JSONOutput)

	// Restore console output for other tests
	require.NoError(t, Initialize(false))
}
