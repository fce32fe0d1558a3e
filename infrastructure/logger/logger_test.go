package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel(" error "))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("nonsense"))
}

func TestNewWritesToRotatingFile(t *testing.T) {
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })

	path := filepath.Join(t.TempDir(), "app.log")
	zl, closer := New(Config{Env: "production", Level: "warn", File: path})

	zl.Info().Msg("filtered out")
	log.Warn().Str("component", "test").Msg("kept")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "filtered out")
	assert.Contains(t, string(data), `"component":"test"`)
	assert.Contains(t, string(data), `"message":"kept"`)
}
