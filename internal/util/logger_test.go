package util

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestSetupLogger(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	assert.NoError(t, SetupLogger("DEBUG"))
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	assert.NoError(t, SetupLogger(""))
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	assert.Error(t, SetupLogger("loud"))
}

func TestCleanupWithoutPairs(t *testing.T) {
	m := NewSocatManager()
	m.Cleanup()
	m.Cleanup()
	assert.Error(t, m.CreatePair("/tmp/a", "/tmp/b"))
}
