package system

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestSafeExecutor_IsAllowed(t *testing.T) {
	executor := NewExecutor(zap.NewNop())

	tests := []struct {
		cmd     string
		allowed bool
	}{
		{"systemctl", true},
		{"launchctl", true},
		{"schtasks", true},
		{"rm", false},
		{"reboot", false}, // 危險命令
		{"curl", false},
		{"uname", false}, // 沒有調用方的命令不進白名單
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.cmd, func(t *testing.T) {
			if got := executor.IsAllowed(tt.cmd); got != tt.allowed {
				t.Errorf("IsAllowed(%q) = %v; want %v", tt.cmd, got, tt.allowed)
			}
		})
	}
}

func TestSafeExecutor_Execute_Disallowed(t *testing.T) {
	executor := NewExecutor(zap.NewNop())

	_, err := executor.Execute(context.Background(), "rm", "-rf", "/")
	if err == nil {
		t.Fatal("Execute('rm') should fail but succeeded")
	}
	if !strings.Contains(err.Error(), "不在白名單中") {
		t.Errorf("unexpected error: %v", err)
	}
}
