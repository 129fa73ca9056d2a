// Package autostart 把代理註冊成登錄時自啟：
// Linux 用 systemd 用戶單元，macOS 用 launchd 代理，Windows 用任務計劃程序
package autostart

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Yat-Muk/syncup/internal/domain/platform"
	"github.com/Yat-Muk/syncup/internal/infra/system"
	"github.com/Yat-Muk/syncup/internal/pkg/appctx"
	"github.com/Yat-Muk/syncup/internal/pkg/errors"
)

// execTimeout 調用系統註冊工具的上限，防止掛起的工具拖死整個流程
const execTimeout = 30 * time.Second

// Registration 自啟註冊的描述
type Registration struct {
	// Name 邏輯名，各機制從它派生自己的單元/標籤/任務名
	Name string
	// ExecutablePath 代理二進制的絕對路徑
	ExecutablePath string
	// Args 啟動參數
	Args []string
}

// Registrar 自啟註冊器
// 三個實現都要求冪等：重複註冊覆蓋舊註冊，注銷不存在的註冊不報錯
type Registrar interface {
	Register(ctx context.Context, reg Registration) error
	Unregister(ctx context.Context, name string) error
	IsRegistered(ctx context.Context, name string) bool
}

// ForPlatform 按平台選擇註冊機制
func ForPlatform(p platform.ID, log *zap.Logger, exec system.Executor, dirs appctx.Dirs) (Registrar, error) {
	switch p.OS {
	case platform.Linux:
		return NewSystemdUserRegistrar(log, exec, dirs.Home), nil
	case platform.MacOS:
		return NewLaunchdRegistrar(log, exec, dirs.Home), nil
	case platform.Windows:
		return NewTaskSchedulerRegistrar(log, exec), nil
	default:
		return nil, errors.Wrap(errors.ErrUnsupportedPlatform, "AST001",
			fmt.Sprintf("沒有 %s 平台的自啟機制", p))
	}
}
