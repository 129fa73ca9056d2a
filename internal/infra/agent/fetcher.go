package agent

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Yat-Muk/syncup/internal/domain/platform"
	"github.com/Yat-Muk/syncup/internal/pkg/errors"
)

const (
	// 歸檔產物（Linux/macOS）從代理官方發佈頁下載
	defaultArchiveBaseURL = "https://github.com/syncthing/syncthing/releases/download"
	// Windows 使用官方靜默安裝器發佈頁
	defaultSetupBaseURL = "https://github.com/Bill-Stewart/SyncthingWindowsSetup/releases/download"
)

// Fetcher 產物下載器
type Fetcher struct {
	ArchiveBaseURL string
	SetupBaseURL   string
	client         *http.Client
	log            *zap.Logger
}

// NewFetcher 創建產物下載器
func NewFetcher(log *zap.Logger) *Fetcher {
	return &Fetcher{
		ArchiveBaseURL: defaultArchiveBaseURL,
		SetupBaseURL:   defaultSetupBaseURL,
		client:         &http.Client{Timeout: 10 * time.Minute},
		log:            log,
	}
}

// NewWorkDir 創建本次運行專用的臨時目錄，名字帶隨機標識避免衝突
// 返回的清理函數在任何退出路徑上都應被 defer 調用
func NewWorkDir() (string, func(), error) {
	dir := filepath.Join(os.TempDir(), "syncup-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", nil, errors.Wrap(err, "FET001", "創建臨時目錄失敗")
	}
	cleanup := func() { os.RemoveAll(dir) }
	return dir, cleanup, nil
}

// ArtifactURL 按平台和版本拼出確定性的下載地址
// version 形如 v1.27.12
func (f *Fetcher) ArtifactURL(p platform.ID, version string) (string, error) {
	switch p.OS {
	case platform.Linux:
		return fmt.Sprintf("%s/%s/syncthing-linux-%s-%s.tar.gz",
			f.ArchiveBaseURL, version, p.ReleaseArch(), version), nil
	case platform.MacOS:
		return fmt.Sprintf("%s/%s/syncthing-macos-%s-%s.zip",
			f.ArchiveBaseURL, version, p.ReleaseArch(), version), nil
	case platform.Windows:
		bare := strings.TrimPrefix(version, "v")
		return fmt.Sprintf("%s/v%s/syncthing-%s-setup.exe",
			f.SetupBaseURL, bare, bare), nil
	default:
		return "", errors.Wrap(errors.ErrUnsupportedPlatform, "FET002",
			fmt.Sprintf("沒有 %s 平台的產物", p))
	}
}

// Download 把產物流式下載到 destDir，返回本地文件路徑
func (f *Fetcher) Download(ctx context.Context, p platform.ID, version, destDir string) (string, error) {
	url, err := f.ArtifactURL(p, version)
	if err != nil {
		return "", err
	}

	f.log.Info("下載產物", zap.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.Wrap(err, "FET003", "構建下載請求失敗")
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", errors.Wrap(errors.ErrDownload, "FET004", err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Wrap(errors.ErrDownload, "FET005",
			fmt.Sprintf("下載返回 HTTP %d", resp.StatusCode))
	}

	dest := filepath.Join(destDir, filepath.Base(url))
	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return "", errors.Wrap(err, "FET006", "創建產物文件失敗")
	}

	written, err := io.Copy(out, resp.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dest)
		return "", errors.Wrap(errors.ErrDownload, "FET007", err.Error())
	}

	f.log.Info("產物下載完成",
		zap.String("path", dest),
		zap.Int64("bytes", written))
	return dest, nil
}
