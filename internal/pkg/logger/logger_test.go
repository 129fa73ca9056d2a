package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_FileOutput(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := DefaultConfig()
	cfg.OutputPath = filepath.Join(tmpDir, "syncup.log")

	log, err := New(cfg)
	require.NoError(t, err)

	log.Info("安裝器啟動")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(cfg.OutputPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "安裝器啟動")
}

func TestNew_InvalidLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Level = "verbose"

	_, err := New(cfg)
	assert.Error(t, err)
}

func TestSanitizedFields(t *testing.T) {
	f := SanitizedAPIKey("api_key", "aBcDefGhiJkLmNoPqRsTuVWxYz")
	assert.Equal(t, "api_key", f.Key)
	assert.NotContains(t, f.String, "efGhiJkLmNoPqRsTu")
}
