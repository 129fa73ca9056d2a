package errors

import (
	"errors"
	"fmt"
)

// 預定義錯誤類型
var (
	// 平台相關（致命，不重試）
	ErrUnsupportedPlatform = errors.New("unsupported platform")

	// 發佈索引/下載相關（致命，網絡）
	ErrVersionResolution = errors.New("failed to resolve release version")
	ErrDownload          = errors.New("artifact download failed")

	// 安裝相關
	ErrInstallerLaunch    = errors.New("failed to launch installer")
	ErrInstallerExit      = errors.New("installer exited with non-zero status")
	ErrInstallationFailed = errors.New("agent binary missing after installation")

	// 卸載相關
	// 對希望「確保已卸載」語義的調用方而言，這不算失敗
	ErrNothingToUninstall = errors.New("no installation found")

	// 系統相關
	ErrAgentNotFound = errors.New("agent binary not found")
	ErrCommandFailed = errors.New("command execution failed")
)

// Error 自定義錯誤類型
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New 創建新錯誤
func New(code, message string) error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap 包裝錯誤
func Wrap(err error, code, message string) error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Is 透傳標準庫的錯誤鏈匹配，省得調用方雙導入
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As 透傳標準庫的錯誤類型匹配
func As(err error, target any) bool {
	return errors.As(err, target)
}
