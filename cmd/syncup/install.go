package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Yat-Muk/syncup/internal/pkg/version"
)

func newInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install",
		Short: "安裝同步代理並註冊登錄自啟",
		Long: `下載並安裝同步代理，註冊登錄自啟，確保管理界面可遠程訪問。
已完整安裝時直接返回，不碰網絡；檢測到不完整安裝時先清除殘留再重裝。`,
		RunE: runInstall,
	}

	addInstallFlags(cmd)
	return cmd
}

func addInstallFlags(cmd *cobra.Command) {
	cmd.Flags().String("scope", "", "安裝範圍: current-user 或 all-users")
	cmd.Flags().String("agent-version", "", "固定安裝的代理版本（默認跟隨最新發佈）")
	cmd.Flags().Bool("skip-service", false, "不註冊登錄自啟")
}

func runInstall(cmd *cobra.Command, _ []string) error {
	deps, err := buildDeps(cmd)
	if err != nil {
		return err
	}
	defer deps.Log.Sync()

	deps.Log.Info("開始安裝",
		zap.String("syncup", version.Version),
		zap.String("platform", deps.Platform.String()),
		zap.String("scope", string(deps.Opts.Scope)),
		zap.String("desired_version", deps.Opts.Version),
	)

	out := cmd.OutOrStdout()
	res, err := deps.Install.Install(cmd.Context())
	if err != nil {
		deps.Log.Error("安裝失敗", zap.Error(err))
		return err
	}

	if res.AlreadyComplete {
		fmt.Fprintf(out, "代理已是完整安裝（%s），未做改動\n", res.Version)
	} else {
		fmt.Fprintf(out, "代理 %s 安裝完成\n", res.Version)
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(out, "警告: %s\n", w)
	}
	return nil
}
