package application

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/Yat-Muk/syncup/internal/domain/install"
	"github.com/Yat-Muk/syncup/internal/domain/platform"
	"github.com/Yat-Muk/syncup/internal/infra/companion"
	"github.com/Yat-Muk/syncup/internal/pkg/appctx"
	"github.com/Yat-Muk/syncup/internal/pkg/sanitizer"
)

// StatusReport 狀態報告
// 形狀固定：無論裝沒裝，字段都在，只是取值不同
type StatusReport struct {
	Platform    platform.ID
	Scope       install.Scope
	Agent       install.State
	BinaryPath  string
	DeviceID    string
	Tailscale   companion.Probe
	TailscaleIP string
	UV          companion.Probe
}

// StatusService 狀態查詢編排
// 只讀操作，任何一項探測失敗都不影響其餘項
type StatusService struct {
	log       *zap.Logger
	platform  platform.ID
	paths     *appctx.PathSet
	opts      install.Options
	inspector StateInspector
	prober    AgentProber
	companion CompanionProber
}

// NewStatusService 創建狀態查詢編排
// prober 可以為 nil（二進制不存在時沒有可探測的對象）
func NewStatusService(
	log *zap.Logger,
	p platform.ID,
	paths *appctx.PathSet,
	opts install.Options,
	inspector StateInspector,
	prober AgentProber,
	comp CompanionProber,
) *StatusService {
	return &StatusService{
		log:       log,
		platform:  p,
		paths:     paths,
		opts:      opts,
		inspector: inspector,
		prober:    prober,
		companion: comp,
	}
}

// Status 收集狀態報告，從不失敗
func (s *StatusService) Status(ctx context.Context) *StatusReport {
	report := &StatusReport{
		Platform: s.platform,
		Scope:    s.opts.Scope,
		Agent:    s.inspector.Inspect(ctx),
	}

	if report.Agent.HasBinary {
		report.BinaryPath = s.paths.BinaryPath
	}

	if report.Agent.HasBinary && s.prober != nil {
		id, err := s.prober.DeviceID(ctx)
		if err != nil {
			s.log.Debug("查詢設備標識失敗", zap.Error(err))
		} else {
			report.DeviceID = id
		}
	}

	if s.companion != nil {
		report.Tailscale = s.companion.Tailscale(ctx)
		report.TailscaleIP = s.companion.TailscaleIPv4(ctx)
		report.UV = s.companion.UV(ctx)
	}

	return report
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// Render 按固定行序輸出報告，方便腳本逐行解析
func (r *StatusReport) Render(w io.Writer) {
	fmt.Fprintf(w, "platform:        %s\n", r.Platform)
	fmt.Fprintf(w, "scope:           %s\n", r.Scope)
	fmt.Fprintf(w, "installed:       %s\n", yesNo(r.Agent.IsComplete()))
	fmt.Fprintf(w, "version:         %s\n", orDash(r.Agent.Version))
	fmt.Fprintf(w, "binary:          %s\n", orDash(r.BinaryPath))
	fmt.Fprintf(w, "running:         %s\n", yesNo(r.Agent.IsRunning))
	fmt.Fprintf(w, "autostart:       %s\n", yesNo(r.Agent.HasAutostart))
	fmt.Fprintf(w, "device-id:       %s\n", orDash(r.DeviceID))
	fmt.Fprintf(w, "tailscale:       %s\n", renderProbe(r.Tailscale))
	fmt.Fprintf(w, "tailscale-ip:    %s\n", orDash(r.TailscaleIP))
	fmt.Fprintf(w, "uv:              %s\n", renderProbe(r.UV))
}

func renderProbe(p companion.Probe) string {
	if !p.Installed {
		return "not installed"
	}
	if p.Version == "" {
		return "installed"
	}
	return p.Version
}

// LogFields 報告進日誌時對設備標識脫敏
func (r *StatusReport) LogFields() []zap.Field {
	return []zap.Field{
		zap.String("platform", r.Platform.String()),
		zap.Bool("installed", r.Agent.IsComplete()),
		zap.String("version", r.Agent.Version),
		zap.Bool("running", r.Agent.IsRunning),
		zap.String("device_id", sanitizer.DeviceID(r.DeviceID)),
	}
}
