package sanitizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	t.Run("保留首尾", func(t *testing.T) {
		assert.Equal(t, "abcd***wxyz", String("abcdefghijklmnopqrstuvwxyz", 4, 4))
	})

	t.Run("過短字符串全脫敏", func(t *testing.T) {
		assert.Equal(t, "***", String("short", 4, 4))
	})
}

func TestAPIKey(t *testing.T) {
	assert.Equal(t, "aBcD***WxYz", APIKey("aBcDefGhiJkLmNoPqRsTuVWxYz"))
	assert.Equal(t, "***", APIKey("tiny"))
}

func TestDeviceID(t *testing.T) {
	t.Run("標準設備ID只保留首組", func(t *testing.T) {
		id := "MFZWI3D-BONSGYC-YLTMRWG-C43ENR5-QXGZDMM-FZWI3DP-BONSGYY-LTMRWAD"
		assert.Equal(t, "MFZWI3D-***", DeviceID(id))
	})

	t.Run("空字符串", func(t *testing.T) {
		assert.Equal(t, "", DeviceID(""))
	})
}
