package system

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Yat-Muk/syncup/internal/pkg/errors"
)

// Executor 命令執行器接口
type Executor interface {
	// Execute 執行命令
	Execute(ctx context.Context, name string, args ...string) (string, error)

	// ExecuteWithTimeout 帶超時的命令執行
	ExecuteWithTimeout(ctx context.Context, timeout time.Duration, name string, args ...string) (string, error)

	// IsAllowed 檢查命令是否在白名單中
	IsAllowed(name string) bool
}

// SafeExecutor 安全的命令執行器
type SafeExecutor struct {
	allowlist map[string]bool
	logger    *zap.Logger
}

// NewExecutor 創建命令執行器
// 白名單只包含安裝生命週期需要的系統工具；
// 代理二進制本身以絕對路徑直接調用，不走這裡
func NewExecutor(logger *zap.Logger) Executor {
	return &SafeExecutor{
		allowlist: map[string]bool{
			// --- 服務/任務註冊 ---
			"systemctl": true, // Linux systemd
			"launchctl": true, // macOS launchd
			"schtasks":  true, // Windows 任務計劃程序
		},
		logger: logger,
	}
}

// Execute 執行命令
func (e *SafeExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	if !e.IsAllowed(name) {
		return "", errors.New("SYS001", fmt.Sprintf("命令 %q 不在白名單中", name))
	}

	cmd := exec.CommandContext(ctx, name, args...)

	e.logger.Debug("執行命令",
		zap.String("cmd", name),
		zap.Strings("args", args),
	)

	output, err := cmd.CombinedOutput()
	outputStr := strings.TrimSpace(string(output))

	if err != nil {
		e.logger.Debug("命令執行失敗",
			zap.String("cmd", name),
			zap.Strings("args", args),
			zap.String("output", outputStr),
			zap.Error(err),
		)
		return outputStr, errors.Wrap(err, "SYS002", "命令執行失敗")
	}

	return outputStr, nil
}

// ExecuteWithTimeout 帶超時的命令執行
func (e *SafeExecutor) ExecuteWithTimeout(ctx context.Context, timeout time.Duration, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return e.Execute(ctx, name, args...)
}

// IsAllowed 檢查命令是否在白名單中
func (e *SafeExecutor) IsAllowed(name string) bool {
	return e.allowlist[name]
}
