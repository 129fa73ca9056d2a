package autostart

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Yat-Muk/syncup/internal/infra/system"
	"github.com/Yat-Muk/syncup/internal/pkg/errors"
)

// TaskSchedulerRegistrar 以 Windows 任務計劃程序實現自啟
type TaskSchedulerRegistrar struct {
	log  *zap.Logger
	exec system.Executor
}

// NewTaskSchedulerRegistrar 創建任務計劃程序註冊器
func NewTaskSchedulerRegistrar(log *zap.Logger, exec system.Executor) *TaskSchedulerRegistrar {
	return &TaskSchedulerRegistrar{log: log, exec: exec}
}

// taskName 邏輯名到計劃任務名
func taskName(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// taskCommand 任務要執行的完整命令行，路徑帶空格時加引號
func taskCommand(reg Registration) string {
	cmd := reg.ExecutablePath
	if strings.ContainsAny(cmd, " \t") {
		cmd = `"` + cmd + `"`
	}
	if len(reg.Args) > 0 {
		cmd += " " + strings.Join(reg.Args, " ")
	}
	return cmd
}

// Register 創建登錄觸發的計劃任務，/F 讓重複註冊覆蓋舊任務
func (r *TaskSchedulerRegistrar) Register(ctx context.Context, reg Registration) error {
	name := taskName(reg.Name)

	_, err := r.exec.ExecuteWithTimeout(ctx, execTimeout, "schtasks",
		"/Create",
		"/TN", name,
		"/SC", "ONLOGON",
		"/TR", taskCommand(reg),
		"/F",
	)
	if err != nil {
		return errors.Wrap(err, "AST030", fmt.Sprintf("創建計劃任務 %q 失敗", name))
	}

	r.log.Info("已註冊計劃任務", zap.String("task", name))
	return nil
}

// Unregister 刪除計劃任務，任務不存在時不報錯
func (r *TaskSchedulerRegistrar) Unregister(ctx context.Context, name string) error {
	task := taskName(name)
	if !r.IsRegistered(ctx, name) {
		return nil
	}

	if _, err := r.exec.ExecuteWithTimeout(ctx, execTimeout, "schtasks", "/Delete", "/TN", task, "/F"); err != nil {
		return errors.Wrap(err, "AST031", fmt.Sprintf("刪除計劃任務 %q 失敗", task))
	}

	r.log.Info("已注銷計劃任務", zap.String("task", task))
	return nil
}

// IsRegistered 計劃任務是否存在
func (r *TaskSchedulerRegistrar) IsRegistered(ctx context.Context, name string) bool {
	_, err := r.exec.ExecuteWithTimeout(ctx, execTimeout, "schtasks", "/Query", "/TN", taskName(name))
	return err == nil
}
