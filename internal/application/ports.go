// Package application 安裝生命週期的編排層。
// 依賴全部通過接口注入，基礎設施的具體實現在 cmd 裡裝配
package application

import (
	"context"

	"github.com/Yat-Muk/syncup/internal/domain/install"
	"github.com/Yat-Muk/syncup/internal/domain/platform"
	"github.com/Yat-Muk/syncup/internal/infra/agent"
	"github.com/Yat-Muk/syncup/internal/infra/companion"
)

// VersionResolver 把期望版本解析為具體版本標籤
type VersionResolver interface {
	Resolve(ctx context.Context, desired string) (string, error)
}

// ArtifactFetcher 下載發佈產物
type ArtifactFetcher interface {
	Download(ctx context.Context, p platform.ID, version, destDir string) (string, error)
}

// PackageInstaller 把產物安置到目標位置
type PackageInstaller interface {
	Install(ctx context.Context, artifactPath string, scope install.Scope) (*agent.InstallResult, error)
	RunUninstaller(ctx context.Context, uninstallerPath string) error
}

// StateInspector 重建安裝狀態快照
type StateInspector interface {
	Inspect(ctx context.Context) install.State
}

// RemoteBinder 確保管理界面可遠程訪問
type RemoteBinder interface {
	Ensure(ctx context.Context, agentRunning bool) (bool, error)
}

// AgentProber 查詢已安裝代理的自述信息
type AgentProber interface {
	Version(ctx context.Context) (string, error)
	DeviceID(ctx context.Context) (string, error)
}

// CompanionProber 周邊工具探測
type CompanionProber interface {
	Tailscale(ctx context.Context) companion.Probe
	TailscaleIPv4(ctx context.Context) string
	UV(ctx context.Context) companion.Probe
}
