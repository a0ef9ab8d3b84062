package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLogger(t *testing.T) {
	t.Run("production defaults to info", func(t *testing.T) {
		logger, err := NewLogger("production", "")
		require.NoError(t, err)
		assert.True(t, logger.Core().Enabled(zap.InfoLevel))
		assert.False(t, logger.Core().Enabled(zap.DebugLevel))
	})

	t.Run("development defaults to debug", func(t *testing.T) {
		logger, err := NewLogger("development", "")
		require.NoError(t, err)
		assert.True(t, logger.Core().Enabled(zap.DebugLevel))
	})

	t.Run("explicit level overrides environment", func(t *testing.T) {
		logger, err := NewLogger("development", " warn ")
		require.NoError(t, err)
		assert.False(t, logger.Core().Enabled(zap.InfoLevel))
		assert.True(t, logger.Core().Enabled(zap.WarnLevel))
	})

	t.Run("unknown level", func(t *testing.T) {
		_, err := NewLogger("production", "loud")
		require.Error(t, err)
	})
}
