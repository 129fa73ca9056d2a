package agent

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Yat-Muk/syncup/internal/pkg/appctx"
	"github.com/Yat-Muk/syncup/internal/pkg/errors"
)

const cliTimeout = 15 * time.Second

// runner 執行代理二進制，測試時可替換
type runner func(ctx context.Context, binary string, args ...string) (string, error)

func execRunner(ctx context.Context, binary string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, cliTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, binary, args...).CombinedOutput()
	if err != nil {
		return string(out), errors.Wrap(errors.ErrCommandFailed, "CLI001",
			fmt.Sprintf("%s %s: %v", binary, strings.Join(args, " "), err))
	}
	return string(out), nil
}

// CLI 代理自帶命令行的封裝
type CLI struct {
	binary string
	run    runner
	log    *zap.Logger
}

// NewCLI 創建代理命令封裝，binary 是代理二進制的絕對路徑
func NewCLI(log *zap.Logger, binary string) *CLI {
	return &CLI{binary: binary, run: execRunner, log: log}
}

// LocateBinary 定位代理二進制：優先安裝路徑，其次 PATH
// 找不到返回空串
func LocateBinary(paths *appctx.PathSet) string {
	if paths != nil && paths.BinaryPath != "" {
		if _, err := exec.LookPath(paths.BinaryPath); err == nil {
			return paths.BinaryPath
		}
	}
	if p, err := exec.LookPath("syncthing"); err == nil {
		return p
	}
	return ""
}

// parseVersionOutput 從版本輸出裡取出版本號
// 輸出形如 "syncthing v1.27.12 \"Gold Grasshopper\" ..."
func parseVersionOutput(out string) (string, error) {
	fields := strings.Fields(out)
	if len(fields) < 2 || !strings.HasPrefix(fields[1], "v") {
		return "", errors.Wrap(errors.ErrCommandFailed, "CLI002",
			fmt.Sprintf("無法解析版本輸出: %q", strings.TrimSpace(out)))
	}
	return fields[1], nil
}

// Version 已安裝代理的版本標籤
func (c *CLI) Version(ctx context.Context) (string, error) {
	out, err := c.run(ctx, c.binary, "--version")
	if err != nil {
		return "", err
	}
	return parseVersionOutput(out)
}

// DeviceID 本機的代理設備標識
// 新版用子命令，舊版只認長旗標，依次嘗試
func (c *CLI) DeviceID(ctx context.Context) (string, error) {
	out, err := c.run(ctx, c.binary, "device-id")
	if err != nil {
		out, err = c.run(ctx, c.binary, "--device-id")
		if err != nil {
			return "", err
		}
	}
	id := strings.TrimSpace(out)
	if id == "" {
		return "", errors.Wrap(errors.ErrCommandFailed, "CLI003", "設備標識輸出為空")
	}
	return id, nil
}

// GUIAddress 讀取管理界面的監聽地址
func (c *CLI) GUIAddress(ctx context.Context) (string, error) {
	out, err := c.run(ctx, c.binary, "cli", "config", "gui", "raw-address", "get")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// SetGUIAddress 改寫管理界面的監聽地址
func (c *CLI) SetGUIAddress(ctx context.Context, addr string) error {
	_, err := c.run(ctx, c.binary, "cli", "config", "gui", "raw-address", "set", addr)
	return err
}

// Restart 讓運行中的代理重啟以套用配置變更
func (c *CLI) Restart(ctx context.Context) error {
	_, err := c.run(ctx, c.binary, "cli", "operations", "restart")
	return err
}
