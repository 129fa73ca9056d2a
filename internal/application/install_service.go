package application

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Yat-Muk/syncup/internal/domain/install"
	"github.com/Yat-Muk/syncup/internal/domain/platform"
	"github.com/Yat-Muk/syncup/internal/infra/agent"
	"github.com/Yat-Muk/syncup/internal/infra/autostart"
	"github.com/Yat-Muk/syncup/internal/infra/system"
	"github.com/Yat-Muk/syncup/internal/pkg/appctx"
	"github.com/Yat-Muk/syncup/internal/pkg/errors"
)

const stopGrace = 10 * time.Second

// agentArgs 自啟時傳給代理的參數：後台服務模式，不彈瀏覽器
var agentArgs = []string{"serve", "--no-browser"}

// InstallResult 安裝結果
type InstallResult struct {
	Version         string
	AlreadyComplete bool
	// Warnings 非致命問題，安裝本身成功
	Warnings []string
}

// InstallService 安裝編排
// 每一步決策都基於磁盤上的實際狀態，重複執行收斂到同一結果
type InstallService struct {
	log       *zap.Logger
	platform  platform.ID
	paths     *appctx.PathSet
	opts      install.Options
	resolver  VersionResolver
	fetcher   ArtifactFetcher
	installer PackageInstaller
	inspector StateInspector
	registrar autostart.Registrar
	procs     system.ProcessController
	remote    RemoteBinder

	// newWorkDir 測試時可替換
	newWorkDir func() (string, func(), error)
}

// NewInstallService 創建安裝編排
func NewInstallService(
	log *zap.Logger,
	p platform.ID,
	paths *appctx.PathSet,
	opts install.Options,
	resolver VersionResolver,
	fetcher ArtifactFetcher,
	installer PackageInstaller,
	inspector StateInspector,
	registrar autostart.Registrar,
	procs system.ProcessController,
	remote RemoteBinder,
) *InstallService {
	return &InstallService{
		log:        log,
		platform:   p,
		paths:      paths,
		opts:       opts,
		resolver:   resolver,
		fetcher:    fetcher,
		installer:  installer,
		inspector:  inspector,
		registrar:  registrar,
		procs:      procs,
		remote:     remote,
		newWorkDir: agent.NewWorkDir,
	}
}

// Install 執行安裝：檢查、取回、安置、覈驗、收尾
func (s *InstallService) Install(ctx context.Context) (*InstallResult, error) {
	result := &InstallResult{}

	state := s.inspector.Inspect(ctx)

	// 已經完整：不碰網絡，只把盡力而為的部分對齊
	if state.IsComplete() {
		s.log.Info("代理已完整安裝", zap.String("version", state.Version))
		result.AlreadyComplete = true
		result.Version = state.Version
		s.finalize(ctx, state, result)
		return result, nil
	}

	// 部分安裝無法就地修補，先整體清除再重裝
	if !state.IsAbsent() {
		s.log.Warn("檢測到不完整安裝，先清除殘留",
			zap.Strings("missing", state.MissingMarkers()))
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("清除了不完整的舊安裝（缺失: %s）",
				strings.Join(state.MissingMarkers(), ", ")))
		if err := s.teardown(ctx); err != nil {
			return nil, err
		}
	}

	version, err := s.resolver.Resolve(ctx, s.opts.Version)
	if err != nil {
		return nil, err
	}
	result.Version = version

	workDir, cleanup, err := s.newWorkDir()
	if err != nil {
		return nil, err
	}
	defer cleanup()

	artifact, err := s.fetcher.Download(ctx, s.platform, version, workDir)
	if err != nil {
		return nil, err
	}

	installRes, err := s.installer.Install(ctx, artifact, s.opts.Scope)
	if err != nil {
		return nil, err
	}
	if installRes.InstallerDetached {
		result.Warnings = append(result.Warnings, "安裝器未在等待上限內退出，結果以狀態覈驗為準")
	}

	// 覈驗：安裝器說成功不算，磁盤上的標記才算。
	// 二進制缺失是致命的；次要標記缺失時代理仍可用，降級為警告
	state = s.inspector.Inspect(ctx)
	if !state.HasBinary {
		return nil, errors.Wrap(errors.ErrInstallationFailed, "APP001",
			fmt.Sprintf("安裝後覈驗未通過（缺失: %s）",
				strings.Join(state.MissingMarkers(), ", ")))
	}
	if !state.IsComplete() {
		s.log.Warn("安裝不完整但代理可用",
			zap.Strings("missing", state.MissingMarkers()))
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("安裝不完整（缺失: %s），代理本體可用",
				strings.Join(state.MissingMarkers(), ", ")))
	}
	if state.Version != "" && state.Version != install.VersionUnknown {
		result.Version = state.Version
	}

	s.finalize(ctx, state, result)

	s.log.Info("安裝完成",
		zap.String("version", result.Version),
		zap.Int("warnings", len(result.Warnings)))
	return result, nil
}

// finalize 自啟註冊和遠程訪問配置，都是盡力而為
func (s *InstallService) finalize(ctx context.Context, state install.State, result *InstallResult) {
	if !s.opts.SkipService && !state.HasAutostart {
		reg := autostart.Registration{
			Name:           appctx.AgentName,
			ExecutablePath: s.paths.BinaryPath,
			Args:           agentArgs,
		}
		if err := s.registrar.Register(ctx, reg); err != nil {
			s.log.Warn("自啟註冊失敗", zap.Error(err))
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("自啟註冊失敗: %v", err))
		}
	}

	if s.remote != nil {
		running := s.procs.IsRunning(ctx, appctx.AgentName)
		changed, err := s.remote.Ensure(ctx, running)
		if err != nil {
			s.log.Warn("配置遠程訪問失敗", zap.Error(err))
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("配置遠程訪問失敗: %v", err))
		} else if changed {
			s.log.Info("管理界面已改綁為可遠程訪問")
		}
	}
}

// teardown 清除殘留：停進程、注銷自啟、刪安裝目錄和快捷方式
// 代理的配置數據不在清除範圍內
func (s *InstallService) teardown(ctx context.Context) error {
	if err := s.procs.Stop(ctx, appctx.AgentName, stopGrace); err != nil {
		s.log.Warn("停止代理進程失敗", zap.Error(err))
	}
	if err := s.registrar.Unregister(ctx, appctx.AgentName); err != nil {
		s.log.Warn("注銷自啟失敗", zap.Error(err))
	}
	if err := os.RemoveAll(s.paths.InstallDir); err != nil {
		return errors.Wrap(err, "APP002", "刪除安裝目錄失敗")
	}
	if s.paths.ShortcutDir != "" {
		if err := os.RemoveAll(s.paths.ShortcutDir); err != nil {
			return errors.Wrap(err, "APP003", "刪除快捷方式目錄失敗")
		}
	}
	return nil
}
