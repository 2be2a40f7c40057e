package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreGlobal(t *testing.T) {
	logger, level := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = logger
		zerolog.SetGlobalLevel(level)
	})
}

func TestInit(t *testing.T) {
	restoreGlobal(t)
	dest := filepath.Join(t.TempDir(), "blockterm.log")

	closer, err := Init(dest, "client", "debug")
	require.NoError(t, err)

	log.Debug().Int("score", 3).Msg("hello")
	log.Trace().Msg("hidden")
	require.NoError(t, closer.Close())

	b, err := os.ReadFile(dest)
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(b), &entry))
	assert.Equal(t, "client", entry["component"])
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, float64(3), entry["score"])
	assert.Contains(t, entry, "time")
}

func TestInitBadPath(t *testing.T) {
	restoreGlobal(t)

	_, err := Init(filepath.Join(t.TempDir(), "missing", "x.log"), "client", "info")
	assert.Error(t, err)
}

func TestConsoleLevel(t *testing.T) {
	restoreGlobal(t)

	var buf bytes.Buffer
	Console(&buf, "server", "nonsense")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	assert.Contains(t, buf.String(), "unknown log level")

	buf.Reset()
	log.Debug().Msg("dropped")
	log.Info().Msg("kept")
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}
