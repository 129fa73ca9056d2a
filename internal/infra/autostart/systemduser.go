package autostart

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/coreos/go-systemd/v22/dbus"
	"go.uber.org/zap"

	"github.com/Yat-Muk/syncup/internal/infra/system"
	"github.com/Yat-Muk/syncup/internal/pkg/errors"
)

const userUnitTemplate = `[Unit]
Description=Syncthing - Open Source Continuous File Synchronization
Documentation=man:syncthing(1)
After=network.target

[Service]
ExecStart={{.ExecutablePath}}{{range .Args}} {{.}}{{end}}
Restart=on-failure
RestartSec=5
SuccessExitStatus=3 4
RestartForceExitStatus=3 4

[Install]
WantedBy=default.target
`

// systemdConn 用戶級 systemd 連接中本包用到的部分
type systemdConn interface {
	EnableUnitFilesContext(ctx context.Context, files []string, runtime, force bool) (bool, []dbus.EnableUnitFileChange, error)
	DisableUnitFilesContext(ctx context.Context, files []string, runtime bool) ([]dbus.DisableUnitFileChange, error)
	StartUnitContext(ctx context.Context, name, mode string, ch chan<- string) (int, error)
	StopUnitContext(ctx context.Context, name, mode string, ch chan<- string) (int, error)
	ReloadContext(ctx context.Context) error
	Close()
}

// SystemdUserRegistrar 以 systemd 用戶單元實現自啟
type SystemdUserRegistrar struct {
	log     *zap.Logger
	exec    system.Executor
	home    string
	connect func(ctx context.Context) (systemdConn, error)
}

// NewSystemdUserRegistrar 創建 systemd 用戶單元註冊器
func NewSystemdUserRegistrar(log *zap.Logger, exec system.Executor, home string) *SystemdUserRegistrar {
	return &SystemdUserRegistrar{
		log:  log,
		exec: exec,
		home: home,
		connect: func(ctx context.Context) (systemdConn, error) {
			return dbus.NewUserConnectionContext(ctx)
		},
	}
}

func unitName(name string) string {
	if !strings.HasSuffix(name, ".service") {
		return name + ".service"
	}
	return name
}

// UnitPath 單元文件的落盤位置
func (r *SystemdUserRegistrar) UnitPath(name string) string {
	return filepath.Join(r.home, ".config", "systemd", "user", unitName(name))
}

// renderUnit 渲染單元文件內容
func renderUnit(reg Registration) (string, error) {
	tmpl, err := template.New("unit").Parse(userUnitTemplate)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, reg); err != nil {
		return "", errors.Wrap(err, "AST002", "渲染單元文件失敗")
	}
	return b.String(), nil
}

// Register 寫入單元文件並啟用、啟動
func (r *SystemdUserRegistrar) Register(ctx context.Context, reg Registration) error {
	content, err := renderUnit(reg)
	if err != nil {
		return err
	}

	path := r.UnitPath(reg.Name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "AST003", "創建用戶單元目錄失敗")
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return errors.Wrap(err, "AST004", "寫入單元文件失敗")
	}

	conn, err := r.connect(ctx)
	if err != nil {
		return errors.Wrap(err, "AST005", "連接用戶級 systemd 失敗")
	}
	defer conn.Close()

	if err := conn.ReloadContext(ctx); err != nil {
		return errors.Wrap(err, "AST006", "daemon-reload 失敗")
	}
	unit := unitName(reg.Name)
	if _, _, err := conn.EnableUnitFilesContext(ctx, []string{path}, false, true); err != nil {
		return errors.Wrap(err, "AST007", "啟用用戶單元失敗")
	}

	ch := make(chan string, 1)
	if _, err := conn.StartUnitContext(ctx, unit, "replace", ch); err != nil {
		return errors.Wrap(err, "AST008", "啟動用戶單元失敗")
	}
	select {
	case result := <-ch:
		if result != "done" {
			return errors.New("AST009", fmt.Sprintf("啟動用戶單元失敗: %s", result))
		}
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "AST010", "啟動用戶單元超時")
	}

	r.log.Info("已註冊 systemd 用戶單元", zap.String("unit", unit))
	return nil
}

// Unregister 停止、禁用並刪除單元文件，單元不存在時不報錯
func (r *SystemdUserRegistrar) Unregister(ctx context.Context, name string) error {
	unit := unitName(name)
	path := r.UnitPath(name)

	conn, err := r.connect(ctx)
	if err == nil {
		defer conn.Close()

		ch := make(chan string, 1)
		if _, err := conn.StopUnitContext(ctx, unit, "replace", ch); err == nil {
			select {
			case <-ch:
			case <-ctx.Done():
			}
		}
		if _, err := conn.DisableUnitFilesContext(ctx, []string{unit}, false); err != nil {
			r.log.Debug("禁用用戶單元失敗", zap.Error(err))
		}
		conn.ReloadContext(ctx)
	} else {
		r.log.Debug("連接用戶級 systemd 失敗，只清理單元文件", zap.Error(err))
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "AST011", "刪除單元文件失敗")
	}
	r.log.Info("已注銷 systemd 用戶單元", zap.String("unit", unit))
	return nil
}

// IsRegistered 單元是否已啟用
func (r *SystemdUserRegistrar) IsRegistered(ctx context.Context, name string) bool {
	out, err := r.exec.ExecuteWithTimeout(ctx, execTimeout, "systemctl", "--user", "is-enabled", unitName(name))
	if err != nil {
		return false
	}
	state := strings.TrimSpace(out)
	return state == "enabled" || state == "enabled-runtime"
}
