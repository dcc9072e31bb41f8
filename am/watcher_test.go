package am

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("[log]\nlevel = \"INFO\"\n"), 0644))

	SetConfigFile(path)
	t.Cleanup(func() { SetConfigFile("") })

	cw, err := NewConfigWatcher(path)
	require.NoError(t, err)
	cw.debouncePeriod = 10 * time.Millisecond

	reloaded := make(chan *Config, 4)
	cw.OnReload(func(cfg *Config) error {
		reloaded <- cfg
		return nil
	})
	cw.Start()
	t.Cleanup(func() { cw.Stop() })

	require.NoError(t, os.WriteFile(path, []byte("[log]\nlevel = \"DEBUG\"\n"), 0644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, "DEBUG", cfg.Log.Level)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}
}

func TestConfigWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(""), 0644))

	cw, err := NewConfigWatcher(path)
	require.NoError(t, err)
	cw.debouncePeriod = time.Millisecond

	reloaded := make(chan struct{}, 1)
	cw.OnReload(func(*Config) error {
		reloaded <- struct{}{}
		return nil
	})
	cw.Start()
	defer cw.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x"), 0644))

	select {
	case <-reloaded:
		t.Fatal("unrelated file triggered a reload")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestConfigWatcher_StopWithoutStart(t *testing.T) {
	cw, err := NewConfigWatcher(filepath.Join(t.TempDir(), ConfigFileName))
	require.NoError(t, err)
	assert.NoError(t, cw.Stop())
}
