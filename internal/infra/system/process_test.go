package system

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Yat-Muk/syncup/internal/pkg/clock"
	"go.uber.org/zap"
)

func TestMatchName(t *testing.T) {
	tests := []struct {
		proc, want string
		match      bool
	}{
		{"syncthing", "syncthing", true},
		{"syncthing.exe", "syncthing", true},
		{"Syncthing.EXE", "syncthing", true},
		{"syncthing-helper", "syncthing", false},
		{"bash", "syncthing", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.match, matchName(tt.proc, tt.want), tt.proc)
	}
}

func TestProcessController_IsRunning_NotFound(t *testing.T) {
	pc := NewProcessController(zap.NewNop(), clock.NewFake())

	// 進程表中不可能存在這個名字
	assert.False(t, pc.IsRunning(context.Background(), "syncup-does-not-exist-4242"))
}

func TestProcessController_Stop_NoProcess(t *testing.T) {
	pc := NewProcessController(zap.NewNop(), clock.NewFake())

	// 停止不存在的進程不是錯誤
	err := pc.Stop(context.Background(), "syncup-does-not-exist-4242", 0)
	assert.NoError(t, err)
}
