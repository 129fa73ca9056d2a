package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "顯示代理和周邊工具的狀態",
		Long: `按固定格式輸出安裝狀態、運行狀態、設備標識和周邊工具信息。
只讀操作，無論裝沒裝都以退出碼 0 結束。`,
		RunE: runStatus,
	}

	cmd.Flags().String("scope", "", "安裝範圍: current-user 或 all-users")
	return cmd
}

func runStatus(cmd *cobra.Command, _ []string) error {
	deps, err := buildDeps(cmd)
	if err != nil {
		// 狀態查詢連裝配失敗都不讓進程帶錯退出
		fmt.Fprintf(cmd.OutOrStdout(), "無法收集狀態: %v\n", err)
		return nil
	}
	defer deps.Log.Sync()

	report := deps.Status.Status(cmd.Context())
	deps.Log.Info("狀態查詢", report.LogFields()...)

	report.Render(cmd.OutOrStdout())
	return nil
}
