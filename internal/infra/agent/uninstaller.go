package agent

import (
	"context"
	"os/exec"
	"time"

	"go.uber.org/zap"

	"github.com/Yat-Muk/syncup/internal/pkg/clock"
	"github.com/Yat-Muk/syncup/internal/pkg/errors"
)

const uninstallerWaitCeiling = 3 * time.Minute

// RunUninstaller 靜默執行官方卸載器並在上限內輪詢退出
// 超時不算失敗，殘留由後續的狀態檢查兜底
func (i *Installer) RunUninstaller(ctx context.Context, uninstallerPath string) error {
	i.log.Info("啟動官方卸載器", zap.String("path", uninstallerPath))

	cmd := exec.CommandContext(ctx, uninstallerPath, "/VERYSILENT", "/NORESTART")
	if err := cmd.Start(); err != nil {
		return errors.Wrap(err, "INS020", "啟動卸載器失敗")
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var waitErr error
	exited := clock.PollUntil(i.clock, installerPollInterval, uninstallerWaitCeiling, func() bool {
		select {
		case waitErr = <-done:
			return true
		default:
			return false
		}
	})

	if !exited {
		i.log.Warn("卸載器在等待上限內未退出", zap.Duration("ceiling", uninstallerWaitCeiling))
		return nil
	}
	if waitErr != nil {
		return errors.Wrap(waitErr, "INS021", "卸載器異常退出")
	}
	return nil
}
