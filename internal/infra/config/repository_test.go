package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domainConfig "github.com/Yat-Muk/syncup/internal/domain/config"
)

func TestFileRepository_LoadMissing(t *testing.T) {
	repo := NewFileRepository(filepath.Join(t.TempDir(), "config.yaml"), zap.NewNop())

	cfg, err := repo.Load()
	require.NoError(t, err)
	assert.Equal(t, domainConfig.DefaultConfig(), cfg)
}

func TestFileRepository_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	repo := NewFileRepository(path, zap.NewNop())

	cfg := &domainConfig.ToolConfig{
		Scope:       "all-users",
		Version:     "v1.27.12",
		SkipService: true,
		LogLevel:    "debug",
	}
	require.NoError(t, repo.Save(cfg))

	// 權限收緊為僅所有者可讀寫
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := repo.Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestFileRepository_LoadPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: v1.27.0\n"), 0o600))

	repo := NewFileRepository(path, zap.NewNop())
	cfg, err := repo.Load()
	require.NoError(t, err)

	// 缺失的字段落回默認值
	assert.Equal(t, "v1.27.0", cfg.Version)
	assert.Equal(t, "current-user", cfg.Scope)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestFileRepository_LoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	t.Run("格式損壞", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("{not yaml"), 0o600))
		_, err := NewFileRepository(path, zap.NewNop()).Load()
		assert.Error(t, err)
	})

	t.Run("取值非法", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("scope: galaxy\n"), 0o600))
		_, err := NewFileRepository(path, zap.NewNop()).Load()
		assert.Error(t, err)
	})
}

func TestFileRepository_SaveRejectsInvalid(t *testing.T) {
	repo := NewFileRepository(filepath.Join(t.TempDir(), "config.yaml"), zap.NewNop())

	err := repo.Save(&domainConfig.ToolConfig{Scope: "galaxy"})
	assert.Error(t, err)

	err = repo.Save(nil)
	assert.Error(t, err)
}
