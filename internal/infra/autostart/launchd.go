package autostart

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"go.uber.org/zap"

	"github.com/Yat-Muk/syncup/internal/infra/system"
	"github.com/Yat-Muk/syncup/internal/pkg/errors"
)

const launchAgentTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
    <key>Label</key>
    <string>{{.Label}}</string>
    <key>ProgramArguments</key>
    <array>
        <string>{{.ExecutablePath}}</string>{{range .Args}}
        <string>{{.}}</string>{{end}}
    </array>
    <key>RunAtLoad</key>
    <true/>
    <key>KeepAlive</key>
    <dict>
        <key>SuccessfulExit</key>
        <false/>
    </dict>
</dict>
</plist>
`

type launchAgentData struct {
	Label          string
	ExecutablePath string
	Args           []string
}

// LaunchdRegistrar 以 launchd 用戶代理實現自啟
type LaunchdRegistrar struct {
	log  *zap.Logger
	exec system.Executor
	home string
}

// NewLaunchdRegistrar 創建 launchd 註冊器
func NewLaunchdRegistrar(log *zap.Logger, exec system.Executor, home string) *LaunchdRegistrar {
	return &LaunchdRegistrar{log: log, exec: exec, home: home}
}

// launchdLabel 邏輯名到 launchd 標籤
func launchdLabel(name string) string {
	return "com.github." + name
}

// PlistPath plist 文件的落盤位置
func (r *LaunchdRegistrar) PlistPath(name string) string {
	return filepath.Join(r.home, "Library", "LaunchAgents", launchdLabel(name)+".plist")
}

// renderLaunchAgent 渲染 plist 內容
func renderLaunchAgent(reg Registration) (string, error) {
	tmpl, err := template.New("plist").Parse(launchAgentTemplate)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	err = tmpl.Execute(&b, launchAgentData{
		Label:          launchdLabel(reg.Name),
		ExecutablePath: reg.ExecutablePath,
		Args:           reg.Args,
	})
	if err != nil {
		return "", errors.Wrap(err, "AST020", "渲染 plist 失敗")
	}
	return b.String(), nil
}

// Register 寫入 plist 並加載
// 先嘗試卸載舊註冊再加載，保證重複註冊是覆蓋而不是報錯
func (r *LaunchdRegistrar) Register(ctx context.Context, reg Registration) error {
	content, err := renderLaunchAgent(reg)
	if err != nil {
		return err
	}

	path := r.PlistPath(reg.Name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "AST021", "創建 LaunchAgents 目錄失敗")
	}

	// 舊註冊可能還掛在 launchd 裡，先卸載，失敗可忽略
	r.exec.ExecuteWithTimeout(ctx, execTimeout, "launchctl", "unload", path)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return errors.Wrap(err, "AST022", "寫入 plist 失敗")
	}

	if _, err := r.exec.ExecuteWithTimeout(ctx, execTimeout, "launchctl", "load", "-w", path); err != nil {
		return errors.Wrap(err, "AST023", "加載 launchd 代理失敗")
	}

	r.log.Info("已註冊 launchd 代理", zap.String("label", launchdLabel(reg.Name)))
	return nil
}

// Unregister 卸載並刪除 plist，註冊不存在時不報錯
func (r *LaunchdRegistrar) Unregister(ctx context.Context, name string) error {
	path := r.PlistPath(name)

	if _, err := os.Stat(path); err == nil {
		r.exec.ExecuteWithTimeout(ctx, execTimeout, "launchctl", "unload", path)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "AST024", "刪除 plist 失敗")
	}

	r.log.Info("已注銷 launchd 代理", zap.String("label", launchdLabel(name)))
	return nil
}

// IsRegistered plist 是否已落盤
func (r *LaunchdRegistrar) IsRegistered(_ context.Context, name string) bool {
	_, err := os.Stat(r.PlistPath(name))
	return err == nil
}
