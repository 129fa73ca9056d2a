package agent

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Yat-Muk/syncup/internal/domain/install"
	"github.com/Yat-Muk/syncup/internal/pkg/appctx"
	"github.com/Yat-Muk/syncup/internal/pkg/clock"
	"github.com/Yat-Muk/syncup/internal/pkg/errors"
)

const (
	// 靜默安裝器的退出等待上限，超時不算致命
	installerWaitCeiling  = 5 * time.Minute
	installerPollInterval = 2 * time.Second
)

// InstallResult 安裝一步的結果
// InstallerDetached 表示安裝器在等待上限內沒有退出，後續靠狀態覈驗兜底
type InstallResult struct {
	InstallerDetached bool
}

// Installer 把下載好的產物安置到目標位置
// 歸檔類產物就地解壓，Windows 安裝器靜默執行
type Installer struct {
	log   *zap.Logger
	clock clock.Clock
	paths *appctx.PathSet
}

// NewInstaller 創建產物安裝器
func NewInstaller(log *zap.Logger, clk clock.Clock, paths *appctx.PathSet) *Installer {
	return &Installer{log: log, clock: clk, paths: paths}
}

// Install 按產物類型分派安裝方式
func (i *Installer) Install(ctx context.Context, artifactPath string, scope install.Scope) (*InstallResult, error) {
	switch {
	case strings.HasSuffix(artifactPath, ".tar.gz"):
		return &InstallResult{}, i.installFromTarGz(artifactPath)
	case strings.HasSuffix(artifactPath, ".zip"):
		return &InstallResult{}, i.installFromZip(artifactPath)
	case strings.HasSuffix(artifactPath, ".exe"):
		return i.runSilentSetup(ctx, artifactPath, scope)
	default:
		return nil, errors.Wrap(errors.ErrInstallationFailed, "INS001",
			fmt.Sprintf("未知的產物類型: %s", filepath.Base(artifactPath)))
	}
}

// binaryMember 歸檔內的代理二進制成員名
// 官方歸檔把二進制放在頂層目錄下，按文件名匹配
func binaryMember(name string) bool {
	base := filepath.Base(filepath.ToSlash(name))
	return base == "syncthing" || base == "syncthing.exe"
}

func (i *Installer) installFromTarGz(artifactPath string) error {
	f, err := os.Open(artifactPath)
	if err != nil {
		return errors.Wrap(err, "INS002", "打開歸檔失敗")
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return errors.Wrap(errors.ErrInstallationFailed, "INS003", "歸檔不是合法的 gzip")
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(errors.ErrInstallationFailed, "INS004", "讀取歸檔失敗")
		}
		if hdr.Typeflag != tar.TypeReg || !binaryMember(hdr.Name) {
			continue
		}
		return i.placeBinary(tr)
	}
	return errors.Wrap(errors.ErrInstallationFailed, "INS005", "歸檔中找不到代理二進制")
}

func (i *Installer) installFromZip(artifactPath string) error {
	zr, err := zip.OpenReader(artifactPath)
	if err != nil {
		return errors.Wrap(errors.ErrInstallationFailed, "INS006", "歸檔不是合法的 zip")
	}
	defer zr.Close()

	for _, member := range zr.File {
		if member.FileInfo().IsDir() || !binaryMember(member.Name) {
			continue
		}
		rc, err := member.Open()
		if err != nil {
			return errors.Wrap(errors.ErrInstallationFailed, "INS007", "讀取歸檔成員失敗")
		}
		defer rc.Close()
		return i.placeBinary(rc)
	}
	return errors.Wrap(errors.ErrInstallationFailed, "INS008", "歸檔中找不到代理二進制")
}

// placeBinary 先寫臨時文件再原子改名，避免半寫狀態被當成已安裝
func (i *Installer) placeBinary(src io.Reader) error {
	dest := i.paths.BinaryPath
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return errors.Wrap(err, "INS009", "創建安裝目錄失敗")
	}

	tmp := dest + ".tmp"
	out, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o755)
	if err != nil {
		return errors.Wrap(err, "INS010", "創建臨時二進制失敗")
	}

	_, err = io.Copy(out, src)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return errors.Wrap(err, "INS011", "寫入二進制失敗")
	}

	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return errors.Wrap(err, "INS012", "安置二進制失敗")
	}

	i.log.Info("代理二進制已安置", zap.String("path", dest))
	return nil
}

// runSilentSetup 靜默執行 Windows 安裝器並在上限內輪詢退出
func (i *Installer) runSilentSetup(ctx context.Context, artifactPath string, scope install.Scope) (*InstallResult, error) {
	args := []string{"/VERYSILENT", "/NORESTART", "/NOSTARTUP"}
	if scope == install.AllUsers {
		args = append(args, "/ALLUSERS")
	} else {
		args = append(args, "/CURRENTUSER")
	}

	i.log.Info("啟動靜默安裝器",
		zap.String("path", artifactPath),
		zap.Strings("args", args))

	cmd := exec.CommandContext(ctx, artifactPath, args...)
	if err := cmd.Start(); err != nil {
		return nil, errors.Wrap(errors.ErrInstallerLaunch, "INS013", err.Error())
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var waitErr error
	exited := clock.PollUntil(i.clock, installerPollInterval, installerWaitCeiling, func() bool {
		select {
		case waitErr = <-done:
			return true
		default:
			return false
		}
	})

	if !exited {
		// 安裝器還在跑，不視為失敗，交給後面的覈驗判定結果
		i.log.Warn("安裝器在等待上限內未退出", zap.Duration("ceiling", installerWaitCeiling))
		return &InstallResult{InstallerDetached: true}, nil
	}
	if waitErr != nil {
		return nil, errors.Wrap(errors.ErrInstallerExit, "INS014", waitErr.Error())
	}

	i.log.Info("安裝器正常退出")
	return &InstallResult{}, nil
}
