package application

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Yat-Muk/syncup/internal/domain/install"
	"github.com/Yat-Muk/syncup/internal/domain/platform"
	"github.com/Yat-Muk/syncup/internal/infra/companion"
	"github.com/Yat-Muk/syncup/internal/pkg/errors"
)

type fakeAgentProber struct {
	version  string
	deviceID string
	err      error
}

func (f *fakeAgentProber) Version(context.Context) (string, error) {
	return f.version, f.err
}

func (f *fakeAgentProber) DeviceID(context.Context) (string, error) {
	return f.deviceID, f.err
}

type fakeCompanions struct {
	tailscale companion.Probe
	ip        string
	uv        companion.Probe
}

func (f *fakeCompanions) Tailscale(context.Context) companion.Probe { return f.tailscale }
func (f *fakeCompanions) TailscaleIPv4(context.Context) string      { return f.ip }
func (f *fakeCompanions) UV(context.Context) companion.Probe        { return f.uv }

func (e *fakeEnv) newStatusService(prober AgentProber, comp CompanionProber) *StatusService {
	return NewStatusService(
		zap.NewNop(),
		platform.ID{OS: platform.Linux, Arch: platform.AMD64},
		e.paths, install.DefaultOptions(),
		e, prober, comp,
	)
}

func TestStatus_NotInstalled(t *testing.T) {
	env := newFakeEnv(t)
	svc := env.newStatusService(&fakeAgentProber{}, &fakeCompanions{})

	report := svc.Status(context.Background())
	assert.False(t, report.Agent.IsComplete())
	assert.Empty(t, report.DeviceID)

	var b strings.Builder
	report.Render(&b)
	out := b.String()
	assert.Contains(t, out, "installed:       no")
	assert.Contains(t, out, "version:         -")
	assert.Contains(t, out, "tailscale:       not installed")
}

func TestStatus_Installed(t *testing.T) {
	env := newFakeEnv(t)
	require.NoError(t, os.MkdirAll(env.paths.InstallDir, 0o755))
	require.NoError(t, os.WriteFile(env.paths.BinaryPath, []byte("bin"), 0o755))
	env.registered = true
	env.procRunning = true

	svc := env.newStatusService(
		&fakeAgentProber{version: "v1.27.12", deviceID: "MFZWI3D-BONSGYC"},
		&fakeCompanions{
			tailscale: companion.Probe{Name: "tailscale", Installed: true, Version: "1.66.4"},
			ip:        "100.101.102.103",
			uv:        companion.Probe{Name: "uv", Installed: true, Version: "0.4.27"},
		},
	)

	report := svc.Status(context.Background())
	assert.Equal(t, "MFZWI3D-BONSGYC", report.DeviceID)

	var b strings.Builder
	report.Render(&b)
	out := b.String()
	assert.Contains(t, out, "installed:       yes")
	assert.Contains(t, out, "version:         v1.27.12")
	assert.Contains(t, out, "binary:          "+env.paths.BinaryPath)
	assert.Contains(t, out, "running:         yes")
	assert.Contains(t, out, "autostart:       yes")
	assert.Contains(t, out, "device-id:       MFZWI3D-BONSGYC")
	assert.Contains(t, out, "tailscale:       1.66.4")
	assert.Contains(t, out, "tailscale-ip:    100.101.102.103")
	assert.Contains(t, out, "uv:              0.4.27")
}

func TestStatus_ProbeFailuresDoNotPropagate(t *testing.T) {
	env := newFakeEnv(t)
	require.NoError(t, os.MkdirAll(env.paths.InstallDir, 0o755))
	require.NoError(t, os.WriteFile(env.paths.BinaryPath, []byte("bin"), 0o755))

	svc := env.newStatusService(
		&fakeAgentProber{err: errors.New("CLI001", "命令執行失敗")},
		&fakeCompanions{},
	)

	report := svc.Status(context.Background())
	assert.Empty(t, report.DeviceID, "探測失敗時字段留空，報告照常生成")
	assert.True(t, report.Agent.HasBinary)
}

func TestStatusReport_LogFieldsSanitized(t *testing.T) {
	report := &StatusReport{
		Platform: platform.ID{OS: platform.Linux, Arch: platform.AMD64},
		DeviceID: "MFZWI3D-BONSGYC-2JMFXOB-5TQ2IRQ",
	}

	for _, f := range report.LogFields() {
		if f.Key == "device_id" {
			assert.NotContains(t, f.String, "BONSGYC", "日誌裡的設備標識必須脫敏")
			return
		}
	}
	t.Fatal("日誌字段裡沒有 device_id")
}
