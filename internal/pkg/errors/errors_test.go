package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestWrapFunction 測試Wrap函數
func TestWrapFunction(t *testing.T) {
	baseErr := errors.New("base error")

	t.Run("Wrap返回非nil", func(t *testing.T) {
		wrapped := Wrap(baseErr, "TestError", "context")
		assert.Error(t, wrapped)
	})

	t.Run("Wrap保留原錯誤", func(t *testing.T) {
		wrapped := Wrap(baseErr, "TestError", "context")
		assert.True(t, errors.Is(wrapped, baseErr))
	})

	t.Run("多層包裝", func(t *testing.T) {
		err1 := New("Level1", "base error")
		err2 := Wrap(err1, "Level2", "context 2")
		err3 := Wrap(err2, "Level3", "context 3")

		assert.True(t, errors.Is(err3, err1))
		assert.True(t, errors.Is(err3, err2))
	})
}

// TestSentinelTaxonomy 測試生命週期錯誤分類
func TestSentinelTaxonomy(t *testing.T) {
	t.Run("包裝後仍可識別致命錯誤", func(t *testing.T) {
		err := Wrap(ErrDownload, "INS002", "fetch artifact")
		assert.True(t, errors.Is(err, ErrDownload))
		assert.False(t, errors.Is(err, ErrVersionResolution))
	})

	t.Run("NothingToUninstall可被調用方識別", func(t *testing.T) {
		err := Wrap(ErrNothingToUninstall, "UNS001", "no markers present")
		assert.True(t, errors.Is(err, ErrNothingToUninstall))
	})
}

// TestErrorFormatting 測試錯誤格式
func TestErrorFormatting(t *testing.T) {
	t.Run("錯誤包含代碼和消息", func(t *testing.T) {
		err := New("PLT001", "arch not supported")
		assert.Contains(t, err.Error(), "PLT001")
		assert.Contains(t, err.Error(), "arch not supported")
	})

	t.Run("包裝錯誤包含底層原因", func(t *testing.T) {
		wrapped := Wrap(errors.New("connection refused"), "DLD001", "download failed")
		assert.Contains(t, wrapped.Error(), "connection refused")
		assert.Contains(t, wrapped.Error(), "DLD001")
	})
}
