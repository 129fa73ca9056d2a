package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestBuildInfo 測試構建信息
func TestBuildInfo(t *testing.T) {
	t.Run("版本存在", func(t *testing.T) {
		assert.NotEmpty(t, Version)
	})

	t.Run("Short帶v前綴", func(t *testing.T) {
		assert.Contains(t, Short(), "v")
	})

	t.Run("Info包含程序名", func(t *testing.T) {
		assert.Contains(t, Info(), "syncup")
	})
}
