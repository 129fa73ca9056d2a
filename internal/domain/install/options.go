package install

import (
	"fmt"
	"os"
	"strings"
)

// Scope 安裝範圍，調用時選定，整個運行期間不可變
type Scope string

const (
	CurrentUser Scope = "current-user"
	AllUsers    Scope = "all-users"
)

// VersionLatest 期望版本的默認值，經發佈索引解析為具體版本號
const VersionLatest = "latest"

// Options 一次調用的全部選項
// 在進程入口構造一次後只讀傳遞；環境變量僅在這裡讀取，
// 核心邏輯中不允許出現環境全局狀態
type Options struct {
	Scope       Scope
	Version     string // "latest" 或固定的版本標籤
	SkipService bool   // 跳過自啟動註冊
	PurgeConfig bool   // 卸載時一併刪除代理配置數據
	Debug       bool
}

// DefaultOptions 默認選項
func DefaultOptions() Options {
	return Options{
		Scope:   CurrentUser,
		Version: VersionLatest,
	}
}

// ParseScope 解析範圍字符串
func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "current-user", "user":
		return CurrentUser, nil
	case "all-users", "system":
		return AllUsers, nil
	default:
		return "", fmt.Errorf("無效的安裝範圍: %q", s)
	}
}

// ApplyEnv 用 SYNCUP_* 環境變量補全未顯式指定的選項
// 支持 curl | sh 這種無法傳遞命令行參數的管道執行方式
func (o *Options) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	if v, ok := lookup("SYNCUP_SCOPE"); ok {
		scope, err := ParseScope(v)
		if err != nil {
			return err
		}
		o.Scope = scope
	}
	if v, ok := lookup("SYNCUP_VERSION"); ok && v != "" {
		o.Version = v
	}
	if v, ok := lookup("SYNCUP_SKIP_SERVICE"); ok {
		o.SkipService = isTruthy(v)
	}
	if v, ok := lookup("SYNCUP_DEBUG"); ok {
		o.Debug = isTruthy(v)
	}
	return nil
}

func isTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
