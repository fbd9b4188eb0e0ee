package logging

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupSetsGlobalLevel(t *testing.T) {
	require.NoError(t, Setup("debug", false))
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	require.NoError(t, Setup("warn", true))
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
}

func TestSetupRejectsUnknownLevel(t *testing.T) {
	err := Setup("chatty", false)
	assert.ErrorContains(t, err, "invalid log level")
}
