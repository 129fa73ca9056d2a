package system

import (
	"context"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"

	"github.com/Yat-Muk/syncup/internal/pkg/clock"
)

// ProcessController 進程表查詢與停止
type ProcessController interface {
	IsRunning(ctx context.Context, name string) bool
	Stop(ctx context.Context, name string, grace time.Duration) error
}

type processController struct {
	log   *zap.Logger
	clock clock.Clock
}

// NewProcessController 創建進程控制器
func NewProcessController(log *zap.Logger, clk clock.Clock) ProcessController {
	return &processController{log: log, clock: clk}
}

// matchName 按可執行文件名匹配，忽略大小寫和 Windows 的 .exe 後綴
func matchName(procName, want string) bool {
	procName = strings.TrimSuffix(strings.ToLower(procName), ".exe")
	return procName == strings.ToLower(want)
}

func (p *processController) find(ctx context.Context, name string) []*process.Process {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		p.log.Debug("讀取進程表失敗", zap.Error(err))
		return nil
	}

	var found []*process.Process
	for _, proc := range procs {
		n, err := proc.NameWithContext(ctx)
		if err != nil {
			continue
		}
		if matchName(n, name) {
			found = append(found, proc)
		}
	}
	return found
}

// IsRunning 代理進程是否在運行
func (p *processController) IsRunning(ctx context.Context, name string) bool {
	return len(p.find(ctx, name)) > 0
}

// Stop 停止代理進程：先禮貌終止，寬限期內未退出則強制殺死
func (p *processController) Stop(ctx context.Context, name string, grace time.Duration) error {
	procs := p.find(ctx, name)
	if len(procs) == 0 {
		return nil
	}

	for _, proc := range procs {
		p.log.Info("終止代理進程", zap.Int32("pid", proc.Pid))
		if err := proc.TerminateWithContext(ctx); err != nil {
			p.log.Debug("發送終止信號失敗", zap.Int32("pid", proc.Pid), zap.Error(err))
		}
	}

	gone := clock.PollUntil(p.clock, 500*time.Millisecond, grace, func() bool {
		return len(p.find(ctx, name)) == 0
	})
	if gone {
		return nil
	}

	// 寬限期已過，強制終止
	for _, proc := range p.find(ctx, name) {
		p.log.Warn("寬限期內未退出，強制終止", zap.Int32("pid", proc.Pid))
		if err := proc.KillWithContext(ctx); err != nil {
			return err
		}
	}
	return nil
}
