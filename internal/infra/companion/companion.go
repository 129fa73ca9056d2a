// Package companion 狀態報告裡的周邊工具探測。
// 同步代理通常和疊加網絡（tailscale）與 Python 工具鏈（uv）搭配部署，
// 報告一併給出它們的安裝情況，方便排查配對問題
package companion

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

const probeTimeout = 10 * time.Second

// Probe 一個周邊工具的探測結果
type Probe struct {
	Name      string
	Installed bool
	Path      string
	Version   string
}

// Prober 周邊工具探測器
type Prober struct {
	log *zap.Logger

	// 測試時可替換
	look func(name string) (string, error)
	run  func(ctx context.Context, name string, args ...string) (string, error)
}

// NewProber 創建探測器
func NewProber(log *zap.Logger) *Prober {
	return &Prober{
		log:  log,
		look: exec.LookPath,
		run: func(ctx context.Context, name string, args ...string) (string, error) {
			ctx, cancel := context.WithTimeout(ctx, probeTimeout)
			defer cancel()
			out, err := exec.CommandContext(ctx, name, args...).Output()
			return string(out), err
		},
	}
}

// firstLine 輸出的第一行，去掉首尾空白
func firstLine(out string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(out), "\n")
	return strings.TrimSpace(line)
}

// Tailscale 探測疊加網絡客戶端
// 版本輸出第一行就是版本號
func (p *Prober) Tailscale(ctx context.Context) Probe {
	probe := Probe{Name: "tailscale"}

	path, err := p.look("tailscale")
	if err != nil {
		return probe
	}
	probe.Installed = true
	probe.Path = path

	out, err := p.run(ctx, "tailscale", "version")
	if err != nil {
		p.log.Debug("查詢 tailscale 版本失敗", zap.Error(err))
		return probe
	}
	probe.Version = firstLine(out)
	return probe
}

// TailscaleIPv4 本機在疊加網絡裡的 IPv4 地址，未加入網絡時返回空串
func (p *Prober) TailscaleIPv4(ctx context.Context) string {
	if _, err := p.look("tailscale"); err != nil {
		return ""
	}
	out, err := p.run(ctx, "tailscale", "ip", "-4")
	if err != nil {
		return ""
	}
	return firstLine(out)
}

// UV 探測 Python 工具鏈
// 版本輸出形如 "uv 0.4.27"
func (p *Prober) UV(ctx context.Context) Probe {
	probe := Probe{Name: "uv"}

	path, err := p.look("uv")
	if err != nil {
		return probe
	}
	probe.Installed = true
	probe.Path = path

	out, err := p.run(ctx, "uv", "--version")
	if err != nil {
		p.log.Debug("查詢 uv 版本失敗", zap.Error(err))
		return probe
	}
	fields := strings.Fields(out)
	if len(fields) >= 2 {
		probe.Version = fields[1]
	}
	return probe
}
