package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Yat-Muk/syncup/internal/pkg/version"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "syncup",
		Short: "同步代理的安裝與生命週期管理",
		Long: `syncup 負責把 Syncthing 裝到本機、註冊登錄自啟並保持可遠程配對，
支持 Linux、macOS 和 Windows。重複執行任何子命令都會收斂到同一結果。`,
		SilenceUsage:  true,
		SilenceErrors: true,
		// 不帶子命令時等同於 install，方便 curl | sh 管道一把梭
		RunE: runInstall,
	}

	root.PersistentFlags().Bool("debug", false, "開啟調試日誌")
	addInstallFlags(root)

	root.AddCommand(
		newInstallCmd(),
		newUninstallCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "顯示版本信息",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Info())
		},
	}
}
