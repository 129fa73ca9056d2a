// Package inspect 從文件系統、進程表和服務註冊表重建安裝狀態快照。
// 檢查本身無副作用，安裝流程的每一步決策都以快照為準
package inspect

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/Yat-Muk/syncup/internal/domain/install"
	"github.com/Yat-Muk/syncup/internal/infra/agent"
	"github.com/Yat-Muk/syncup/internal/infra/autostart"
	"github.com/Yat-Muk/syncup/internal/infra/system"
	"github.com/Yat-Muk/syncup/internal/pkg/appctx"
)

// VersionProber 查詢已安裝代理的版本
type VersionProber interface {
	Version(ctx context.Context) (string, error)
}

// Inspector 安裝狀態檢查器
type Inspector struct {
	log       *zap.Logger
	paths     *appctx.PathSet
	procs     system.ProcessController
	registrar autostart.Registrar

	// newProber 按二進制路徑構造版本探測器，測試時可替換
	newProber func(binary string) VersionProber
}

// NewInspector 創建檢查器
func NewInspector(log *zap.Logger, paths *appctx.PathSet, procs system.ProcessController, reg autostart.Registrar) *Inspector {
	return &Inspector{
		log:       log,
		paths:     paths,
		procs:     procs,
		registrar: reg,
		newProber: func(binary string) VersionProber {
			return agent.NewCLI(log, binary)
		},
	}
}

// markerPresent 可選標記：路徑為空的平台視為天然滿足
func markerPresent(path string) bool {
	if path == "" {
		return true
	}
	_, err := os.Stat(path)
	return err == nil
}

// Inspect 重新計算安裝狀態快照
func (i *Inspector) Inspect(ctx context.Context) install.State {
	var s install.State

	if _, err := os.Stat(i.paths.BinaryPath); err == nil {
		s.HasBinary = true
	}
	s.TracksUninstaller = i.paths.UninstallerPath != ""
	s.TracksShortcuts = i.paths.ShortcutDir != ""
	s.HasUninstaller = markerPresent(i.paths.UninstallerPath)
	s.HasShortcuts = markerPresent(i.paths.ShortcutDir)

	if s.HasBinary {
		v, err := i.newProber(i.paths.BinaryPath).Version(ctx)
		if err != nil {
			// 二進制在但版本查不出來，可能是半寫或損壞的文件
			i.log.Debug("查詢代理版本失敗", zap.Error(err))
			s.Version = install.VersionUnknown
		} else {
			s.Version = v
		}
	}

	s.IsRunning = i.procs.IsRunning(ctx, appctx.AgentName)
	if i.registrar != nil {
		s.HasAutostart = i.registrar.IsRegistered(ctx, appctx.AgentName)
	}

	i.log.Debug("安裝狀態快照",
		zap.Bool("binary", s.HasBinary),
		zap.Bool("uninstaller", s.HasUninstaller),
		zap.Bool("shortcuts", s.HasShortcuts),
		zap.Bool("autostart", s.HasAutostart),
		zap.String("version", s.Version),
		zap.Bool("running", s.IsRunning),
	)
	return s
}
