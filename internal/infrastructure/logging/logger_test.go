package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "chatty", OutputPaths: []string{"stdout"}})
	assert.Error(t, err)
}

func TestNewBuildsBothModes(t *testing.T) {
	for _, cfg := range []Config{DefaultConfig(), DevelopmentConfig()} {
		logger, err := New(cfg)
		require.NoError(t, err)
		assert.NotNil(t, logger.Logger)
	}
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil).Logger)

	l := NewNop()
	assert.Same(t, l, OrNop(l))
}

func TestFromConfigFallsBackOnBadLevel(t *testing.T) {
	logger := FromConfig("nonsense", false)
	require.NotNil(t, logger)
	assert.NotNil(t, logger.Named("catalog").Logger)
}
