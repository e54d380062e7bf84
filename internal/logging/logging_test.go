package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"linkedin-scraper/internal/models"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scraper.log")
	logger, closer, err := New(models.Config{LogLevel: "debug", LogFile: path})
	require.NoError(t, err)

	logger.Named("auth").Debug("signed in", zap.String("account", "a@example.com"))
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "auth", entry["logger"])
	assert.Equal(t, "signed in", entry["msg"])
	assert.Equal(t, "a@example.com", entry["account"])
	assert.Contains(t, entry, "caller")
}

func TestNewRespectsLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scraper.log")
	logger, closer, err := New(models.Config{LogLevel: "warn", LogFile: path})
	require.NoError(t, err)

	logger.Info("dropped")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	if err == nil {
		assert.Empty(t, data)
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, _, err := New(models.Config{LogLevel: "loud"})
	assert.ErrorIs(t, err, models.ErrConfiguration)
}
