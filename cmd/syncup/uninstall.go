package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Yat-Muk/syncup/internal/pkg/errors"
)

func newUninstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uninstall",
		Short: "卸載同步代理",
		Long: `停止代理、注銷登錄自啟並移除安裝。
代理的同步數據和配置默認保留，帶 --purge 才一併刪除。`,
		RunE: runUninstall,
	}

	cmd.Flags().String("scope", "", "安裝範圍: current-user 或 all-users")
	cmd.Flags().Bool("purge", false, "一併刪除代理的配置數據")
	return cmd
}

func runUninstall(cmd *cobra.Command, _ []string) error {
	deps, err := buildDeps(cmd)
	if err != nil {
		return err
	}
	defer deps.Log.Sync()

	deps.Log.Info("開始卸載",
		zap.String("scope", string(deps.Opts.Scope)),
		zap.Bool("purge", deps.Opts.PurgeConfig),
	)

	out := cmd.OutOrStdout()
	res, err := deps.Uninstall.Uninstall(cmd.Context())
	if err != nil {
		// 本來就沒裝不算失敗，確保不存在的目標已經達成
		if errors.Is(err, errors.ErrNothingToUninstall) {
			fmt.Fprintln(out, "沒有發現任何安裝痕跡")
			if res != nil && res.ConfigPurged {
				fmt.Fprintln(out, "配置數據已刪除")
			}
			return nil
		}
		deps.Log.Error("卸載失敗", zap.Error(err))
		return err
	}

	if res.ConfigPurged {
		fmt.Fprintln(out, "卸載完成，配置數據已一併刪除")
	} else {
		fmt.Fprintln(out, "卸載完成，配置數據已保留")
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(out, "警告: %s\n", w)
	}
	return nil
}
