package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	t.Setenv("POSKEEPER_CONFIG", "")
	dir := t.TempDir()
	path := writeTempJSON(t, dir, "flag.json", map[string]any{
		"ipc_addr":              "127.0.0.1:6000",
		"online_check_interval": "10s",
		"check_timeout":         1500000000,
	})

	t.Run("loads from flag", func(t *testing.T) {
		cfg := &Config{ServerURL: "keep-me"}
		require.NoError(t, parseJson(cfg, []string{"-config", path}))

		assert.Equal(t, "127.0.0.1:6000", cfg.IPCAddr)
		assert.Equal(t, 10*time.Second, cfg.OnlineCheckInterval)
		assert.Equal(t, 1500*time.Millisecond, cfg.CheckTimeout)
		assert.Equal(t, "keep-me", cfg.ServerURL, "absent keys keep their value")
	})

	t.Run("loads from environment", func(t *testing.T) {
		t.Setenv("POSKEEPER_CONFIG", path)
		cfg := &Config{}
		require.NoError(t, parseJson(cfg, nil))
		assert.Equal(t, "127.0.0.1:6000", cfg.IPCAddr)
	})

	t.Run("no file, no changes", func(t *testing.T) {
		cfg := &Config{IPCAddr: "defaults:1234", OnlineCheckInterval: 42 * time.Second}
		require.NoError(t, parseJson(cfg, nil))

		assert.Equal(t, "defaults:1234", cfg.IPCAddr)
		assert.Equal(t, 42*time.Second, cfg.OnlineCheckInterval)
	})

	t.Run("yaml file", func(t *testing.T) {
		y := filepath.Join(dir, "cfg.yaml")
		require.NoError(t, os.WriteFile(y, []byte("data_dir: /srv/pos\ncheck_timeout: 3s\n"), 0o600))

		cfg := &Config{}
		require.NoError(t, parseJson(cfg, []string{"-c", y}))
		assert.Equal(t, "/srv/pos", cfg.DataDir)
		assert.Equal(t, 3*time.Second, cfg.CheckTimeout)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		assert.Error(t, parseJson(&Config{}, []string{"-config", bad}))
	})
}
