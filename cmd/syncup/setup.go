package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Yat-Muk/syncup/internal/application"
	domainConfig "github.com/Yat-Muk/syncup/internal/domain/config"
	"github.com/Yat-Muk/syncup/internal/domain/install"
	"github.com/Yat-Muk/syncup/internal/domain/platform"
	"github.com/Yat-Muk/syncup/internal/infra/agent"
	"github.com/Yat-Muk/syncup/internal/infra/autostart"
	"github.com/Yat-Muk/syncup/internal/infra/companion"
	infraConfig "github.com/Yat-Muk/syncup/internal/infra/config"
	"github.com/Yat-Muk/syncup/internal/infra/inspect"
	infraSystem "github.com/Yat-Muk/syncup/internal/infra/system"
	"github.com/Yat-Muk/syncup/internal/pkg/appctx"
	"github.com/Yat-Muk/syncup/internal/pkg/clock"
	"github.com/Yat-Muk/syncup/internal/pkg/logger"
)

// appDeps 一次命令執行裝配出的全部依賴
type appDeps struct {
	Log       *zap.Logger
	Platform  platform.ID
	Paths     *appctx.PathSet
	Opts      install.Options
	Install   *application.InstallService
	Uninstall *application.UninstallService
	Status    *application.StatusService
}

// cliOverrides 命令行旗標的顯式取值
// Set 標誌區分「用戶給了默認值」和「用戶沒給」
type cliOverrides struct {
	scope      string
	scopeSet   bool
	version    string
	versionSet bool
	skip       bool
	skipSet    bool
	purge      bool
	debug      bool
}

func overridesFrom(cmd *cobra.Command) cliOverrides {
	var o cliOverrides
	flags := cmd.Flags()
	o.scope, _ = flags.GetString("scope")
	o.scopeSet = flags.Changed("scope")
	o.version, _ = flags.GetString("agent-version")
	o.versionSet = flags.Changed("agent-version")
	o.skip, _ = flags.GetBool("skip-service")
	o.skipSet = flags.Changed("skip-service")
	o.purge, _ = flags.GetBool("purge")
	o.debug, _ = cmd.Root().PersistentFlags().GetBool("debug")
	return o
}

// loadToolConfig 讀取工具配置，任何問題都落回默認值
// 配置文件位置不依賴安裝範圍，用默認範圍推導即可
func loadToolConfig() *domainConfig.ToolConfig {
	p, err := platform.Detect()
	if err != nil {
		return domainConfig.DefaultConfig()
	}
	dirs, err := appctx.DetectDirs()
	if err != nil {
		return domainConfig.DefaultConfig()
	}
	paths, err := appctx.NewPathSet(p, install.CurrentUser, dirs)
	if err != nil {
		return domainConfig.DefaultConfig()
	}

	cfg, err := infraConfig.NewFileRepository(paths.ConfigFile, zap.NewNop()).Load()
	if err != nil {
		return domainConfig.DefaultConfig()
	}
	return cfg
}

// buildOptions 按「旗標 > 環境變量 > 配置文件 > 默認」的優先級合成選項
func buildOptions(o cliOverrides, cfg *domainConfig.ToolConfig, lookup func(string) (string, bool)) (install.Options, error) {
	opts := install.DefaultOptions()

	if cfg != nil {
		if scope, err := install.ParseScope(cfg.Scope); err == nil {
			opts.Scope = scope
		}
		if cfg.Version != "" {
			opts.Version = cfg.Version
		}
		opts.SkipService = cfg.SkipService
	}

	if err := opts.ApplyEnv(lookup); err != nil {
		return opts, err
	}

	if o.scopeSet {
		scope, err := install.ParseScope(o.scope)
		if err != nil {
			return opts, err
		}
		opts.Scope = scope
	}
	if o.versionSet && o.version != "" {
		opts.Version = o.version
	}
	if o.skipSet {
		opts.SkipService = o.skip
	}
	opts.PurgeConfig = o.purge
	opts.Debug = opts.Debug || o.debug
	return opts, nil
}

// remoteBinder 把遠程訪問配置器接到編排層的端口上，
// 代理二進制在運行期定位
type remoteBinder struct {
	log   *zap.Logger
	ra    *agent.RemoteAccess
	paths *appctx.PathSet
}

func (b *remoteBinder) Ensure(ctx context.Context, agentRunning bool) (bool, error) {
	var cli *agent.CLI
	if bin := agent.LocateBinary(b.paths); bin != "" {
		cli = agent.NewCLI(b.log, bin)
	}
	return b.ra.Ensure(ctx, b.paths.AgentConfigFile(), cli, agentRunning)
}

func initializeDependencies(opts install.Options, logLevel string) (*appDeps, error) {
	p, err := platform.Detect()
	if err != nil {
		return nil, err
	}
	dirs, err := appctx.DetectDirs()
	if err != nil {
		return nil, err
	}
	paths, err := appctx.NewPathSet(p, opts.Scope, dirs)
	if err != nil {
		return nil, err
	}
	if err := paths.EnsureStateDirs(); err != nil {
		return nil, err
	}

	redirectStdErr(filepath.Join(paths.LogDir, "stderr.log"))

	logConfig := logger.DefaultConfig()
	logConfig.OutputPath = filepath.Join(paths.LogDir, "syncup.log")
	logConfig.Console = false
	if logLevel != "" {
		logConfig.Level = logLevel
	}
	if opts.Debug {
		logConfig.Level = "debug"
	}

	log, err := logger.New(logConfig)
	if err != nil {
		return nil, fmt.Errorf("日誌初始化失敗: %w", err)
	}

	// ==========================================
	// 基礎設施層
	// ==========================================
	clk := clock.New()
	executor := infraSystem.NewExecutor(log)
	procs := infraSystem.NewProcessController(log, clk)

	registrar, err := autostart.ForPlatform(p, log, executor, dirs)
	if err != nil {
		return nil, err
	}

	resolver := agent.NewResolver(log)
	fetcher := agent.NewFetcher(log)
	installer := agent.NewInstaller(log, clk, paths)
	inspector := inspect.NewInspector(log, paths, procs, registrar)
	remote := &remoteBinder{log: log, ra: agent.NewRemoteAccess(log, clk), paths: paths}

	// ==========================================
	// 應用服務層
	// ==========================================
	installSvc := application.NewInstallService(
		log, p, paths, opts,
		resolver, fetcher, installer, inspector, registrar, procs, remote)

	uninstallSvc := application.NewUninstallService(
		log, paths, opts,
		installer, inspector, registrar, procs)

	var prober application.AgentProber
	if bin := agent.LocateBinary(paths); bin != "" {
		prober = agent.NewCLI(log, bin)
	}
	statusSvc := application.NewStatusService(
		log, p, paths, opts,
		inspector, prober, companion.NewProber(log))

	return &appDeps{
		Log:       log,
		Platform:  p,
		Paths:     paths,
		Opts:      opts,
		Install:   installSvc,
		Uninstall: uninstallSvc,
		Status:    statusSvc,
	}, nil
}

// buildDeps 命令入口的公共裝配路徑
func buildDeps(cmd *cobra.Command) (*appDeps, error) {
	cfg := loadToolConfig()
	opts, err := buildOptions(overridesFrom(cmd), cfg, nil)
	if err != nil {
		return nil, err
	}
	return initializeDependencies(opts, cfg.LogLevel)
}
