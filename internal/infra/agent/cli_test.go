package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Yat-Muk/syncup/internal/pkg/errors"
)

func TestParseVersionOutput(t *testing.T) {
	t.Run("正常輸出", func(t *testing.T) {
		out := `syncthing v1.27.12 "Gold Grasshopper" (go1.22.3 linux-amd64) builder@github 2024-05-01`
		got, err := parseVersionOutput(out)
		require.NoError(t, err)
		assert.Equal(t, "v1.27.12", got)
	})

	t.Run("輸出異常", func(t *testing.T) {
		_, err := parseVersionOutput("command not found")
		assert.Error(t, err)
	})

	t.Run("空輸出", func(t *testing.T) {
		_, err := parseVersionOutput("")
		assert.Error(t, err)
	})
}

// fakeRunner 記錄調用並按預設腳本應答
type fakeRunner struct {
	calls   [][]string
	outputs map[string]string
	fails   map[string]bool
}

func (f *fakeRunner) run(_ context.Context, _ string, args ...string) (string, error) {
	key := strings.Join(args, " ")
	f.calls = append(f.calls, args)
	if f.fails[key] {
		return "", errors.New("CLI001", "命令執行失敗")
	}
	return f.outputs[key], nil
}

func newFakeCLI(fr *fakeRunner) *CLI {
	c := NewCLI(zap.NewNop(), "/usr/bin/syncthing")
	c.run = fr.run
	return c
}

func TestCLI_Version(t *testing.T) {
	fr := &fakeRunner{outputs: map[string]string{
		"--version": "syncthing v1.27.12 \"Gold Grasshopper\"\n",
	}}

	got, err := newFakeCLI(fr).Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v1.27.12", got)
}

func TestCLI_DeviceID(t *testing.T) {
	t.Run("新版子命令", func(t *testing.T) {
		fr := &fakeRunner{outputs: map[string]string{
			"device-id": "MFZWI3D-BONSGYC-2JMFXOB-5TQ2IRQ-EJMGIAR-7KCMVGR-QSCQWEX-KQAQXAA\n",
		}}

		id, err := newFakeCLI(fr).DeviceID(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "MFZWI3D-BONSGYC-2JMFXOB-5TQ2IRQ-EJMGIAR-7KCMVGR-QSCQWEX-KQAQXAA", id)
		assert.Len(t, fr.calls, 1)
	})

	t.Run("回退到舊旗標", func(t *testing.T) {
		fr := &fakeRunner{
			outputs: map[string]string{"--device-id": "MFZWI3D-AAAAAAA\n"},
			fails:   map[string]bool{"device-id": true},
		}

		id, err := newFakeCLI(fr).DeviceID(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "MFZWI3D-AAAAAAA", id)
		assert.Len(t, fr.calls, 2)
	})

	t.Run("兩種方式都失敗", func(t *testing.T) {
		fr := &fakeRunner{fails: map[string]bool{
			"device-id":   true,
			"--device-id": true,
		}}

		_, err := newFakeCLI(fr).DeviceID(context.Background())
		assert.Error(t, err)
	})
}

func TestCLI_GUIAddress(t *testing.T) {
	fr := &fakeRunner{outputs: map[string]string{
		"cli config gui raw-address get": "127.0.0.1:8384\n",
	}}
	c := newFakeCLI(fr)

	addr, err := c.GUIAddress(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8384", addr)

	require.NoError(t, c.SetGUIAddress(context.Background(), "0.0.0.0:8384"))
	assert.Equal(t,
		[]string{"cli", "config", "gui", "raw-address", "set", "0.0.0.0:8384"},
		fr.calls[len(fr.calls)-1])
}

func TestCLI_Restart(t *testing.T) {
	fr := &fakeRunner{outputs: map[string]string{}}
	c := newFakeCLI(fr)

	require.NoError(t, c.Restart(context.Background()))
	assert.Equal(t, []string{"cli", "operations", "restart"}, fr.calls[0])
}
