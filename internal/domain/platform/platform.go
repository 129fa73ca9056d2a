package platform

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/Yat-Muk/syncup/internal/pkg/errors"
)

// OS 規範化的操作系統標識
type OS string

const (
	Linux   OS = "linux"
	MacOS   OS = "macos"
	Windows OS = "windows"
)

// Arch 規範化的 CPU 架構標識
type Arch string

const (
	AMD64 Arch = "amd64"
	ARM64 Arch = "arm64"
	ARM   Arch = "arm"
	X86   Arch = "x86"
)

// ID 平台標識，每次運行只檢測一次，之後不可變
type ID struct {
	OS   OS
	Arch Arch
}

func (id ID) String() string {
	return fmt.Sprintf("%s/%s", id.OS, id.Arch)
}

// Detect 從宿主環境檢測平台標識
func Detect() (ID, error) {
	return detect(runtime.GOOS, runtime.GOARCH)
}

// detect 拆出純函數便於測試所有 (os, arch) 組合
func detect(goos, goarch string) (ID, error) {
	id := ID{}

	switch goos {
	case "linux":
		id.OS = Linux
	case "darwin":
		id.OS = MacOS
	case "windows":
		id.OS = Windows
	default:
		return ID{}, errors.Wrap(errors.ErrUnsupportedPlatform, "PLT001",
			fmt.Sprintf("不支持的操作系統: %s", goos))
	}

	arch, ok := NormalizeArch(goarch)
	if !ok {
		return ID{}, errors.Wrap(errors.ErrUnsupportedPlatform, "PLT002",
			fmt.Sprintf("不支持的架構: %s", goarch))
	}
	id.Arch = arch

	return id, nil
}

// NormalizeArch 將廠商風格的架構字符串規範化到 URL 模板使用的集合
func NormalizeArch(s string) (Arch, bool) {
	switch strings.ToLower(s) {
	case "amd64", "x86_64", "x64":
		return AMD64, true
	case "arm64", "aarch64":
		return ARM64, true
	case "arm", "armv7l", "armv6l":
		return ARM, true
	case "x86", "386", "i386", "i686":
		return X86, true
	default:
		return "", false
	}
}

// ReleaseArch 發佈資產命名中使用的架構段
// 上游對 32 位 x86 使用 "386"，其餘與規範化名稱一致
func (id ID) ReleaseArch() string {
	if id.Arch == X86 {
		return "386"
	}
	return string(id.Arch)
}

// ReleaseOS 發佈資產命名中使用的系統段
func (id ID) ReleaseOS() string {
	return string(id.OS)
}
