package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"

	"github.com/Yat-Muk/syncup/internal/pkg/errors"
)

// 代理的發佈索引，"latest" 在這裡解析為具體版本標籤
const defaultIndexURL = "https://api.github.com/repos/syncthing/syncthing/releases/latest"

type githubRelease struct {
	TagName string `json:"tag_name"`
}

// Resolver 版本解析器
type Resolver struct {
	IndexURL string
	client   *http.Client
	log      *zap.Logger
}

// NewResolver 創建版本解析器
func NewResolver(log *zap.Logger) *Resolver {
	return &Resolver{
		IndexURL: defaultIndexURL,
		client:   &http.Client{Timeout: 15 * time.Second},
		log:      log,
	}
}

// Resolve 將期望版本解析為具體版本標籤（形如 v1.27.12）
// 固定版本只做格式校驗後透傳；"latest" 查詢發佈索引
func (r *Resolver) Resolve(ctx context.Context, desired string) (string, error) {
	if desired != "" && desired != "latest" {
		if _, err := semver.NewVersion(strings.TrimPrefix(desired, "v")); err != nil {
			return "", errors.Wrap(errors.ErrVersionResolution, "REL001",
				fmt.Sprintf("固定版本標籤無效: %q", desired))
		}
		if !strings.HasPrefix(desired, "v") {
			desired = "v" + desired
		}
		return desired, nil
	}

	r.log.Info("查詢發佈索引", zap.String("url", r.IndexURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.IndexURL, nil)
	if err != nil {
		return "", errors.Wrap(err, "REL002", "構建索引請求失敗")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", errors.Wrap(errors.ErrVersionResolution, "REL003", err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Wrap(errors.ErrVersionResolution, "REL004",
			fmt.Sprintf("索引返回 HTTP %d", resp.StatusCode))
	}

	var rel githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return "", errors.Wrap(errors.ErrVersionResolution, "REL005", "索引響應格式錯誤")
	}
	if rel.TagName == "" {
		return "", errors.Wrap(errors.ErrVersionResolution, "REL006", "索引未包含版本標籤")
	}
	if _, err := semver.NewVersion(strings.TrimPrefix(rel.TagName, "v")); err != nil {
		return "", errors.Wrap(errors.ErrVersionResolution, "REL007",
			fmt.Sprintf("索引返回的標籤無效: %q", rel.TagName))
	}

	r.log.Info("版本解析完成", zap.String("version", rel.TagName))
	return rel.TagName, nil
}
