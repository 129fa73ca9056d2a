package install

// VersionUnknown 二進制存在但版本查詢失敗時的佔位值
const VersionUnknown = "unknown"

// State 安裝狀態快照
// 每次檢查都從文件系統/進程表/服務註冊表重新計算，從不緩存——
// 磁盤上的狀態才是唯一事實。
// 卸載器/快捷方式並非每個平台都有：Tracks* 標記該平台是否跟蹤它們，
// 不跟蹤時對應的 Has* 恆為 true（天然滿足）
type State struct {
	HasBinary         bool
	HasUninstaller    bool
	HasShortcuts      bool
	TracksUninstaller bool
	TracksShortcuts   bool
	HasAutostart      bool
	Version           string // 空表示未安裝，VersionUnknown 表示無法查詢
	IsRunning         bool
}

// IsComplete 完整性判定
// 自啟動單獨跟蹤（盡力而為），不參與完整性判定
func (s State) IsComplete() bool {
	return s.HasBinary && s.HasUninstaller && s.HasShortcuts
}

// IsAbsent 完全沒有任何安裝痕跡
// 只看本平台實際跟蹤的標記，天然滿足的標記不算痕跡
func (s State) IsAbsent() bool {
	if s.HasBinary || s.HasAutostart {
		return false
	}
	if s.TracksUninstaller && s.HasUninstaller {
		return false
	}
	if s.TracksShortcuts && s.HasShortcuts {
		return false
	}
	return true
}

// MissingMarkers 返回缺失標記的名稱列表，用於部分安裝的報告
func (s State) MissingMarkers() []string {
	var missing []string
	if !s.HasBinary {
		missing = append(missing, "binary")
	}
	if !s.HasUninstaller {
		missing = append(missing, "uninstaller")
	}
	if !s.HasShortcuts {
		missing = append(missing, "shortcuts")
	}
	return missing
}
