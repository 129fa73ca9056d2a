// Package config syncup 自身的持久化配置。
// 命令行旗標優先於這裡的值，這裡的值優先於內置默認
package config

import (
	"fmt"

	"github.com/Yat-Muk/syncup/internal/domain/install"
)

// ToolConfig 工具配置
type ToolConfig struct {
	// Scope 默認安裝範圍
	Scope string `yaml:"scope"`
	// Version 固定的代理版本，latest 表示跟隨最新發佈
	Version string `yaml:"version"`
	// SkipService 不註冊自啟
	SkipService bool `yaml:"skip_service"`
	// LogLevel 日誌級別 debug/info/warn/error
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig 內置默認值
func DefaultConfig() *ToolConfig {
	return &ToolConfig{
		Scope:    string(install.CurrentUser),
		Version:  install.VersionLatest,
		LogLevel: "info",
	}
}

// Validate 校驗配置合法性
func (c *ToolConfig) Validate() error {
	if _, err := install.ParseScope(c.Scope); err != nil {
		return err
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("未知的日誌級別: %q", c.LogLevel)
	}
	return nil
}

// DeepCopy 返回獨立副本
func (c *ToolConfig) DeepCopy() *ToolConfig {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}
