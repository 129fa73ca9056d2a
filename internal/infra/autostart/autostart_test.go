package autostart

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coreos/go-systemd/v22/dbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Yat-Muk/syncup/internal/domain/platform"
	"github.com/Yat-Muk/syncup/internal/pkg/appctx"
	"github.com/Yat-Muk/syncup/internal/pkg/errors"
)

// fakeExecutor 記錄調用並按腳本應答
type fakeExecutor struct {
	calls   [][]string
	outputs map[string]string
	fails   map[string]bool
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{outputs: map[string]string{}, fails: map[string]bool{}}
}

func (f *fakeExecutor) Execute(_ context.Context, name string, args ...string) (string, error) {
	call := append([]string{name}, args...)
	key := strings.Join(call, " ")
	f.calls = append(f.calls, call)
	if f.fails[key] {
		return "", errors.New("SYS002", "命令執行失敗")
	}
	return f.outputs[key], nil
}

func (f *fakeExecutor) ExecuteWithTimeout(ctx context.Context, _ time.Duration, name string, args ...string) (string, error) {
	return f.Execute(ctx, name, args...)
}

func (f *fakeExecutor) IsAllowed(string) bool { return true }

func (f *fakeExecutor) lastCall() []string {
	if len(f.calls) == 0 {
		return nil
	}
	return f.calls[len(f.calls)-1]
}

var testReg = Registration{
	Name:           "syncthing",
	ExecutablePath: "/home/yat/.local/share/syncthing/syncthing",
	Args:           []string{"serve", "--no-browser"},
}

func TestForPlatform(t *testing.T) {
	log := zap.NewNop()
	exec := newFakeExecutor()
	dirs := appctx.Dirs{Home: t.TempDir()}

	tests := []struct {
		os   platform.OS
		want interface{}
	}{
		{platform.Linux, &SystemdUserRegistrar{}},
		{platform.MacOS, &LaunchdRegistrar{}},
		{platform.Windows, &TaskSchedulerRegistrar{}},
	}
	for _, tt := range tests {
		r, err := ForPlatform(platform.ID{OS: tt.os, Arch: platform.AMD64}, log, exec, dirs)
		require.NoError(t, err)
		assert.IsType(t, tt.want, r)
	}
}

func TestRenderUnit(t *testing.T) {
	content, err := renderUnit(testReg)
	require.NoError(t, err)

	assert.Contains(t, content,
		"ExecStart=/home/yat/.local/share/syncthing/syncthing serve --no-browser")
	assert.Contains(t, content, "WantedBy=default.target")
	assert.Contains(t, content, "Restart=on-failure")
}

// fakeConn 假的用戶級 systemd 連接
type fakeConn struct {
	enabled  []string
	disabled []string
	started  []string
	stopped  []string
	reloads  int
	closed   bool
}

func (c *fakeConn) EnableUnitFilesContext(_ context.Context, files []string, _, _ bool) (bool, []dbus.EnableUnitFileChange, error) {
	c.enabled = append(c.enabled, files...)
	return true, nil, nil
}

func (c *fakeConn) DisableUnitFilesContext(_ context.Context, files []string, _ bool) ([]dbus.DisableUnitFileChange, error) {
	c.disabled = append(c.disabled, files...)
	return nil, nil
}

func (c *fakeConn) StartUnitContext(_ context.Context, name, _ string, ch chan<- string) (int, error) {
	c.started = append(c.started, name)
	ch <- "done"
	return 1, nil
}

func (c *fakeConn) StopUnitContext(_ context.Context, name, _ string, ch chan<- string) (int, error) {
	c.stopped = append(c.stopped, name)
	ch <- "done"
	return 1, nil
}

func (c *fakeConn) ReloadContext(context.Context) error {
	c.reloads++
	return nil
}

func (c *fakeConn) Close() { c.closed = true }

func testSystemdRegistrar(t *testing.T) (*SystemdUserRegistrar, *fakeConn, *fakeExecutor) {
	t.Helper()
	exec := newFakeExecutor()
	conn := &fakeConn{}
	r := NewSystemdUserRegistrar(zap.NewNop(), exec, t.TempDir())
	r.connect = func(context.Context) (systemdConn, error) { return conn, nil }
	return r, conn, exec
}

func TestSystemdUserRegistrar_Register(t *testing.T) {
	r, conn, _ := testSystemdRegistrar(t)

	require.NoError(t, r.Register(context.Background(), testReg))

	content, err := os.ReadFile(r.UnitPath("syncthing"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "ExecStart=/home/yat/.local/share/syncthing/syncthing serve")

	assert.Equal(t, []string{r.UnitPath("syncthing")}, conn.enabled)
	assert.Equal(t, []string{"syncthing.service"}, conn.started)
	assert.Equal(t, 1, conn.reloads)
	assert.True(t, conn.closed)
}

func TestSystemdUserRegistrar_Unregister(t *testing.T) {
	r, conn, _ := testSystemdRegistrar(t)

	require.NoError(t, r.Register(context.Background(), testReg))
	require.NoError(t, r.Unregister(context.Background(), "syncthing"))

	assert.Equal(t, []string{"syncthing.service"}, conn.stopped)
	assert.Equal(t, []string{"syncthing.service"}, conn.disabled)
	_, err := os.Stat(r.UnitPath("syncthing"))
	assert.True(t, os.IsNotExist(err))

	// 重複注銷不報錯
	require.NoError(t, r.Unregister(context.Background(), "syncthing"))
}

func TestSystemdUserRegistrar_IsRegistered(t *testing.T) {
	r, _, exec := testSystemdRegistrar(t)
	ctx := context.Background()

	assert.False(t, r.IsRegistered(ctx, "syncthing"))

	exec.outputs["systemctl --user is-enabled syncthing.service"] = "enabled"
	assert.True(t, r.IsRegistered(ctx, "syncthing"))
}

func TestRenderLaunchAgent(t *testing.T) {
	content, err := renderLaunchAgent(testReg)
	require.NoError(t, err)

	assert.Contains(t, content, "<string>com.github.syncthing</string>")
	assert.Contains(t, content, "<string>/home/yat/.local/share/syncthing/syncthing</string>")
	assert.Contains(t, content, "<string>serve</string>")
	assert.Contains(t, content, "<string>--no-browser</string>")
	assert.Contains(t, content, "<key>RunAtLoad</key>")
}

func TestLaunchdRegistrar_Lifecycle(t *testing.T) {
	exec := newFakeExecutor()
	r := NewLaunchdRegistrar(zap.NewNop(), exec, t.TempDir())
	ctx := context.Background()

	assert.False(t, r.IsRegistered(ctx, "syncthing"))

	require.NoError(t, r.Register(ctx, testReg))
	assert.True(t, r.IsRegistered(ctx, "syncthing"))

	plist := r.PlistPath("syncthing")
	assert.Equal(t, "com.github.syncthing.plist", filepath.Base(plist))
	assert.Equal(t, []string{"launchctl", "load", "-w", plist}, exec.lastCall())

	require.NoError(t, r.Unregister(ctx, "syncthing"))
	assert.False(t, r.IsRegistered(ctx, "syncthing"))
	assert.Equal(t, []string{"launchctl", "unload", plist}, exec.lastCall())

	// 重複注銷不報錯
	require.NoError(t, r.Unregister(ctx, "syncthing"))
}

func TestTaskSchedulerRegistrar_Register(t *testing.T) {
	exec := newFakeExecutor()
	r := NewTaskSchedulerRegistrar(zap.NewNop(), exec)

	reg := Registration{
		Name:           "syncthing",
		ExecutablePath: `C:\Program Files\Syncthing\syncthing.exe`,
		Args:           []string{"serve", "--no-browser"},
	}
	require.NoError(t, r.Register(context.Background(), reg))

	assert.Equal(t, []string{
		"schtasks", "/Create",
		"/TN", "Syncthing",
		"/SC", "ONLOGON",
		"/TR", `"C:\Program Files\Syncthing\syncthing.exe" serve --no-browser`,
		"/F",
	}, exec.lastCall())
}

func TestTaskSchedulerRegistrar_Unregister(t *testing.T) {
	exec := newFakeExecutor()
	r := NewTaskSchedulerRegistrar(zap.NewNop(), exec)
	ctx := context.Background()

	t.Run("任務不存在時靜默返回", func(t *testing.T) {
		exec.fails["schtasks /Query /TN Syncthing"] = true
		require.NoError(t, r.Unregister(ctx, "syncthing"))
		// 沒有發出刪除命令
		assert.Equal(t, []string{"schtasks", "/Query", "/TN", "Syncthing"}, exec.lastCall())
	})

	t.Run("任務存在時刪除", func(t *testing.T) {
		exec.fails["schtasks /Query /TN Syncthing"] = false
		require.NoError(t, r.Unregister(ctx, "syncthing"))
		assert.Equal(t, []string{"schtasks", "/Delete", "/TN", "Syncthing", "/F"}, exec.lastCall())
	})
}
