// Package config 工具配置的文件倉庫
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	domainConfig "github.com/Yat-Muk/syncup/internal/domain/config"
)

// FileRepository 基於文件的配置倉庫
// 文件不存在視為默認配置，寫入走臨時文件加原子改名
type FileRepository struct {
	filePath string
	mu       sync.Mutex
	logger   *zap.Logger
}

// NewFileRepository 創建配置倉庫
func NewFileRepository(path string, logger *zap.Logger) *FileRepository {
	return &FileRepository{filePath: path, logger: logger}
}

// Load 加載配置，文件缺失時返回默認值
func (r *FileRepository) Load() (*domainConfig.ToolConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	content, err := os.ReadFile(r.filePath)
	if os.IsNotExist(err) {
		r.logger.Debug("配置文件不存在，使用默認配置", zap.String("path", r.filePath))
		return domainConfig.DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("讀取配置文件失敗: %w", err)
	}

	cfg := domainConfig.DefaultConfig()
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件格式失敗: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("配置不合法: %w", err)
	}
	return cfg, nil
}

// Save 原子寫入配置
func (r *FileRepository) Save(cfg *domainConfig.ToolConfig) error {
	if cfg == nil {
		return fmt.Errorf("配置對象為空")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("配置不合法: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("序列化配置失敗: %w", err)
	}

	dir := filepath.Dir(r.filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("創建配置目錄失敗: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, "config.*.yaml.tmp")
	if err != nil {
		return fmt.Errorf("創建臨時文件失敗: %w", err)
	}
	tmpName := tmpFile.Name()

	writeSuccess := false
	defer func() {
		if !writeSuccess {
			tmpFile.Close()
			os.Remove(tmpName)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("寫入數據失敗: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("同步磁盤失敗: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("關閉臨時文件失敗: %w", err)
	}
	if err := os.Rename(tmpName, r.filePath); err != nil {
		return fmt.Errorf("替換配置文件失敗: %w", err)
	}
	if err := os.Chmod(r.filePath, 0o600); err != nil {
		r.logger.Warn("設置文件權限失敗", zap.Error(err))
	}
	writeSuccess = true

	return nil
}
