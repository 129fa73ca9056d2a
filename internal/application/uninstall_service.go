package application

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Yat-Muk/syncup/internal/domain/install"
	"github.com/Yat-Muk/syncup/internal/infra/autostart"
	"github.com/Yat-Muk/syncup/internal/infra/system"
	"github.com/Yat-Muk/syncup/internal/pkg/appctx"
	"github.com/Yat-Muk/syncup/internal/pkg/errors"
)

// UninstallResult 卸載結果
type UninstallResult struct {
	// ConfigPurged 代理配置數據是否被一併刪除
	ConfigPurged bool
	Warnings     []string
}

// UninstallService 卸載編排
type UninstallService struct {
	log       *zap.Logger
	paths     *appctx.PathSet
	opts      install.Options
	installer PackageInstaller
	inspector StateInspector
	registrar autostart.Registrar
	procs     system.ProcessController
}

// NewUninstallService 創建卸載編排
func NewUninstallService(
	log *zap.Logger,
	paths *appctx.PathSet,
	opts install.Options,
	installer PackageInstaller,
	inspector StateInspector,
	registrar autostart.Registrar,
	procs system.ProcessController,
) *UninstallService {
	return &UninstallService{
		log:       log,
		paths:     paths,
		opts:      opts,
		installer: installer,
		inspector: inspector,
		registrar: registrar,
		procs:     procs,
	}
}

// Uninstall 執行卸載：停進程、注銷自啟、移除安裝、按選項處理配置
// 沒有安裝痕跡時返回 ErrNothingToUninstall 哨兵，調用方按非致命處理；
// 重複執行收斂到同一結果
func (s *UninstallService) Uninstall(ctx context.Context) (*UninstallResult, error) {
	result := &UninstallResult{}

	state := s.inspector.Inspect(ctx)
	if state.IsAbsent() {
		s.log.Info("沒有發現任何安裝痕跡")
		if s.opts.PurgeConfig {
			s.purgeConfig(result)
		}
		return result, errors.Wrap(errors.ErrNothingToUninstall, "APP012", "沒有發現任何安裝痕跡")
	}

	if state.IsRunning {
		if err := s.procs.Stop(ctx, appctx.AgentName, stopGrace); err != nil {
			s.log.Warn("停止代理進程失敗", zap.Error(err))
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("停止代理進程失敗: %v", err))
		}
	}

	if err := s.registrar.Unregister(ctx, appctx.AgentName); err != nil {
		s.log.Warn("注銷自啟失敗", zap.Error(err))
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("注銷自啟失敗: %v", err))
	}

	// 有官方卸載器就先交給它，殘留再手動兜底
	if state.HasUninstaller && s.paths.UninstallerPath != "" {
		if err := s.installer.RunUninstaller(ctx, s.paths.UninstallerPath); err != nil {
			s.log.Warn("官方卸載器執行失敗，改為手動清理", zap.Error(err))
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("官方卸載器執行失敗: %v", err))
		}
	}

	if err := s.removeInstallArtifacts(); err != nil {
		return nil, err
	}

	if s.opts.PurgeConfig {
		s.purgeConfig(result)
	} else {
		s.log.Info("代理配置數據已保留", zap.String("dir", s.paths.ConfigDir))
	}

	s.log.Info("卸載完成", zap.Int("warnings", len(result.Warnings)))
	return result, nil
}

func (s *UninstallService) removeInstallArtifacts() error {
	if err := os.RemoveAll(s.paths.InstallDir); err != nil {
		return errors.Wrap(err, "APP010", "刪除安裝目錄失敗")
	}
	if s.paths.ShortcutDir != "" {
		if err := os.RemoveAll(s.paths.ShortcutDir); err != nil {
			return errors.Wrap(err, "APP011", "刪除快捷方式目錄失敗")
		}
	}
	return nil
}

func (s *UninstallService) purgeConfig(result *UninstallResult) {
	if err := os.RemoveAll(s.paths.ConfigDir); err != nil {
		s.log.Warn("刪除代理配置數據失敗", zap.Error(err))
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("刪除代理配置數據失敗: %v", err))
		return
	}
	result.ConfigPurged = true
}
