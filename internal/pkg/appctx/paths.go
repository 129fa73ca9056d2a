package appctx

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Yat-Muk/syncup/internal/domain/install"
	"github.com/Yat-Muk/syncup/internal/domain/platform"
)

// AgentName 代理的可執行文件名和邏輯名
const AgentName = "syncthing"

// Dirs 宿主環境的基準目錄，進程入口探測一次
type Dirs struct {
	Home         string
	LocalAppData string // Windows %LOCALAPPDATA%
	AppData      string // Windows %APPDATA%
	ProgramFiles string // Windows %ProgramFiles%
	ProgramData  string // Windows %ProgramData%
}

// DetectDirs 從宿主環境讀取基準目錄
func DetectDirs() (Dirs, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Dirs{}, fmt.Errorf("無法獲取用戶主目錄: %w", err)
	}

	d := Dirs{Home: home}
	d.LocalAppData = envOr("LOCALAPPDATA", filepath.Join(home, "AppData", "Local"))
	d.AppData = envOr("APPDATA", filepath.Join(home, "AppData", "Roaming"))
	d.ProgramFiles = envOr("ProgramFiles", `C:\Program Files`)
	d.ProgramData = envOr("ProgramData", `C:\ProgramData`)
	return d, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// PathSet 一次安裝涉及的全部路徑
// 由 (平台, 範圍) 純函數推導，推導後不再變更
// ShortcutDir / UninstallerPath 為空表示該平台沒有對應的安裝標記
type PathSet struct {
	InstallDir      string
	BinaryPath      string
	ConfigDir       string
	ShortcutDir     string
	UninstallerPath string

	// syncup 自身的狀態目錄（與代理的目錄嚴格分離）
	StateDir   string
	LogDir     string
	ConfigFile string
}

// NewPathSet 推導路徑集，純函數、無副作用
func NewPathSet(p platform.ID, scope install.Scope, dirs Dirs) (*PathSet, error) {
	ps := &PathSet{}

	switch p.OS {
	case platform.Linux:
		if scope == install.AllUsers {
			ps.InstallDir = filepath.Join("/opt", AgentName)
		} else {
			ps.InstallDir = filepath.Join(dirs.Home, ".local", "share", AgentName)
		}
		ps.BinaryPath = filepath.Join(ps.InstallDir, AgentName)
		ps.ConfigDir = filepath.Join(dirs.Home, ".local", "state", AgentName)
		ps.StateDir = filepath.Join(dirs.Home, ".local", "state", "syncup")

	case platform.MacOS:
		if scope == install.AllUsers {
			ps.InstallDir = filepath.Join("/Applications", "Syncthing")
		} else {
			ps.InstallDir = filepath.Join(dirs.Home, "Applications", "Syncthing")
		}
		ps.BinaryPath = filepath.Join(ps.InstallDir, AgentName)
		ps.ConfigDir = filepath.Join(dirs.Home, "Library", "Application Support", "Syncthing")
		ps.StateDir = filepath.Join(dirs.Home, "Library", "Application Support", "syncup")

	case platform.Windows:
		if scope == install.AllUsers {
			ps.InstallDir = filepath.Join(dirs.ProgramFiles, "Syncthing")
			ps.ShortcutDir = filepath.Join(dirs.ProgramData,
				"Microsoft", "Windows", "Start Menu", "Programs", "Syncthing")
		} else {
			ps.InstallDir = filepath.Join(dirs.LocalAppData, "Programs", "Syncthing")
			ps.ShortcutDir = filepath.Join(dirs.AppData,
				"Microsoft", "Windows", "Start Menu", "Programs", "Syncthing")
		}
		ps.BinaryPath = filepath.Join(ps.InstallDir, AgentName+".exe")
		// 官方安裝器（Inno Setup）生成的卸載器
		ps.UninstallerPath = filepath.Join(ps.InstallDir, "unins000.exe")
		ps.ConfigDir = filepath.Join(dirs.LocalAppData, "Syncthing")
		ps.StateDir = filepath.Join(dirs.LocalAppData, "syncup")

	default:
		return nil, fmt.Errorf("無法為平台推導路徑: %s", p)
	}

	ps.LogDir = filepath.Join(ps.StateDir, "logs")
	ps.ConfigFile = filepath.Join(ps.StateDir, "config.yaml")
	return ps, nil
}

// AgentConfigFile 代理主配置文件路徑
func (ps *PathSet) AgentConfigFile() string {
	return filepath.Join(ps.ConfigDir, "config.xml")
}

// EnsureStateDirs 創建 syncup 自身的狀態目錄
// 只動自己的目錄，代理的目錄由安裝流程負責
func (ps *PathSet) EnsureStateDirs() error {
	for _, dir := range []string{ps.StateDir, ps.LogDir} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("無法創建目錄 %s: %w", dir, err)
		}
	}
	return nil
}
