package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfigDir(t *testing.T) {
	if runtime.GOOS != "windows" && runtime.GOOS != "darwin" {
		t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")
	}

	configDir, err := GetConfigDir()
	require.NoError(t, err)
	assert.Contains(t, configDir, "poseul")

	switch runtime.GOOS {
	case "windows":
	case "darwin":
		assert.Contains(t, configDir, ".config")
	default:
		assert.Equal(t, filepath.Join("/tmp/xdg-test", "poseul"), configDir)
	}
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	require.NoError(t, err)
	assert.Equal(t, "config.yaml", filepath.Base(configPath))
}

func TestNew(t *testing.T) {
	cfg := New()

	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, DefaultServerURL, cfg.ServerURL)
	assert.Equal(t, 5*time.Second, cfg.Timeouts.Health)
	assert.Equal(t, 5*time.Second, cfg.Timeouts.Predict)
	assert.Equal(t, 10*time.Second, cfg.Timeouts.State)
	assert.Equal(t, 10*time.Second, cfg.Timeouts.Control)
	require.NotNil(t, cfg.Profile)
	assert.Equal(t, "male", cfg.Profile.Gender)
	assert.NotNil(t, cfg.Backends)
}

func TestLoadFrom_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultServerURL, cfg.ServerURL)
	assert.Equal(t, path, cfg.Path())
}

func TestLoadFrom_PartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `version: 1
server_url: http://192.168.0.20:5000
timeouts:
  predict: 2s
profile:
  heart_rate: 88
  gender: female
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "http://192.168.0.20:5000", cfg.ServerURL)
	assert.Equal(t, 2*time.Second, cfg.Timeouts.Predict)
	assert.Equal(t, 5*time.Second, cfg.Timeouts.Health, "unset timeouts keep defaults")
	assert.Equal(t, 10*time.Second, cfg.Timeouts.Control)

	in := cfg.Profile.Input()
	assert.Equal(t, 88, in.HeartRate)
	assert.Equal(t, "female", in.Gender)
	assert.Equal(t, 5*time.Second, cfg.Discovery.Timeout)
}

func TestLoadFrom_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad version", "version: 2\n", "unsupported config version"},
		{"missing version", "server_url: http://x\n", "unsupported config version"},
		{"bad yaml", "version: [1\n", "failed to parse"},
		{"bad duration", "version: 1\ntimeouts:\n  health: soon\n", "failed to parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0600))
			_, err := LoadFrom(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	cfg.ServerURL = "http://10.0.0.5:5000"
	cfg.Timeouts.Control = 3 * time.Second
	cfg.RememberBackend("poseul-sim", "http://10.0.0.7:5000")

	require.NoError(t, cfg.Save())
	assert.NoFileExists(t, path+".tmp", "temporary file should be gone after Save()")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# Poseul client configuration"), "saved file should start with the header comment")
	assert.Contains(t, string(data), "control: 3s", "durations are saved as strings")

	reloaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:5000", reloaded.ServerURL)
	assert.Equal(t, 3*time.Second, reloaded.Timeouts.Control)
	b := reloaded.Backends["poseul-sim"]
	require.NotNil(t, b)
	assert.Equal(t, "http://10.0.0.7:5000", b.URL)
	assert.False(t, b.LastSeen.IsZero())
}

func TestCreateDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	_, err := CreateDefault(path, false)
	require.NoError(t, err)
	_, err = CreateDefault(path, false)
	assert.Error(t, err, "CreateDefault() should refuse to overwrite")
	_, err = CreateDefault(path, true)
	assert.NoError(t, err)
}

func TestUseBackend(t *testing.T) {
	cfg := New()
	cfg.RememberBackend("living-room", "http://192.168.0.30:5000")

	assert.False(t, cfg.UseBackend("kitchen"))
	require.True(t, cfg.UseBackend("living-room"))
	assert.Equal(t, "http://192.168.0.30:5000", cfg.ServerURL)
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("LOCALAPPDATA", dir)
	t.Setenv(EnvServerURL, "http://env-host:5000")
	t.Setenv(EnvStateTimeout, "750ms")
	t.Setenv(EnvControlTimeout, "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://env-host:5000", cfg.ServerURL)
	assert.Equal(t, 750*time.Millisecond, cfg.Timeouts.State)
	assert.Equal(t, 10*time.Second, cfg.Timeouts.Control, "invalid env keeps the default")
}

func TestResolveServerURL(t *testing.T) {
	cfg := New()
	cfg.ServerURL = "http://from-file:5000"

	assert.Equal(t, "http://from-flag:5000", cfg.ResolveServerURL("http://from-flag:5000"))
	assert.Equal(t, "http://from-file:5000", cfg.ResolveServerURL(""))

	cfg.ServerURL = ""
	assert.Equal(t, DefaultServerURL, cfg.ResolveServerURL(""))
}
