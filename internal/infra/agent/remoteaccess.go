package agent

import (
	"context"
	"fmt"
	"net"
	"os"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Yat-Muk/syncup/internal/pkg/clock"
	"github.com/Yat-Muk/syncup/internal/pkg/errors"
)

const (
	// 代理首次啟動後生成配置文件需要一點時間
	configWaitCeiling  = 30 * time.Second
	configPollInterval = time.Second
)

// 配置文件裡管理界面的監聽地址元素
var guiAddressRe = regexp.MustCompile(`(?s)(<gui[^>]*>.*?<address>)([^<]*)(</address>)`)

// RemoteAccess 把管理界面從回環地址改綁到所有網卡，
// 讓配對頁面可以經由疊加網絡從別的機器訪問
type RemoteAccess struct {
	log   *zap.Logger
	clock clock.Clock
}

// NewRemoteAccess 創建遠程訪問配置器
func NewRemoteAccess(log *zap.Logger, clk clock.Clock) *RemoteAccess {
	return &RemoteAccess{log: log, clock: clk}
}

// isLoopbackBind 監聽地址是否只綁在回環上
func isLoopbackBind(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}
	host = strings.Trim(host, "[]")
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// rewriteBind 保留端口，把主機段換成全網卡
func rewriteBind(addr string) string {
	if _, port, err := net.SplitHostPort(addr); err == nil {
		return net.JoinHostPort("0.0.0.0", port)
	}
	return "0.0.0.0:8384"
}

// Ensure 等配置文件出現後檢查監聽地址，必要時改寫；
// 代理在運行時通過 CLI 改寫並重啟，否則直接編輯文件。
// 所有失敗都只是告警，不影響安裝結果
func (r *RemoteAccess) Ensure(ctx context.Context, configFile string, cli *CLI, agentRunning bool) (bool, error) {
	appeared := clock.PollUntil(r.clock, configPollInterval, configWaitCeiling, func() bool {
		_, err := os.Stat(configFile)
		return err == nil
	})
	if !appeared {
		return false, errors.New("RMT001", "代理配置文件在等待上限內未出現")
	}

	data, err := os.ReadFile(configFile)
	if err != nil {
		return false, errors.Wrap(err, "RMT002", "讀取代理配置失敗")
	}

	m := guiAddressRe.FindSubmatch(data)
	if m == nil {
		return false, errors.New("RMT003", "代理配置裡找不到管理界面地址")
	}

	current := string(m[2])
	if !isLoopbackBind(current) {
		r.log.Debug("管理界面已可遠程訪問", zap.String("address", current))
		return false, nil
	}

	desired := rewriteBind(current)
	r.log.Info("改綁管理界面地址",
		zap.String("from", current),
		zap.String("to", desired))

	if agentRunning && cli != nil {
		if err := cli.SetGUIAddress(ctx, desired); err != nil {
			return false, err
		}
		if err := cli.Restart(ctx); err != nil {
			return true, errors.Wrap(err, "RMT004", "地址已改寫但代理重啟失敗")
		}
		return true, nil
	}

	rewritten := guiAddressRe.ReplaceAll(data,
		[]byte(fmt.Sprintf("${1}%s${3}", desired)))
	if err := os.WriteFile(configFile, rewritten, 0o600); err != nil {
		return false, errors.Wrap(err, "RMT005", "寫回代理配置失敗")
	}
	return true, nil
}
