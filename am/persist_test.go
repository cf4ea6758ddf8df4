package am

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "am.toml")
	cfg := DefaultConfig()
	cfg.Conformance.Skip = []string{"orbit"}

	require.NoError(t, Save(cfg, path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSave_RotatesBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "am.toml")
	cfg := DefaultConfig()

	themes := []string{"everforest", "gruvbox", "everforest", "gruvbox", "everforest"}
	for _, theme := range themes {
		cfg.Log.Theme = theme
		require.NoError(t, Save(cfg, path))
	}

	for i, want := range []string{"gruvbox", "everforest", "gruvbox"} {
		backup := path + []string{".back1", ".back2", ".back3"}[i]
		data, err := os.ReadFile(backup)
		require.NoError(t, err, backup)
		assert.Contains(t, string(data), want, backup)
	}
	_, err := os.Stat(path + ".back4")
	assert.True(t, os.IsNotExist(err))
}

func TestCreateBackup_NoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "am.toml")
	require.NoError(t, createBackup(path))
	_, err := os.Stat(path + ".back1")
	assert.True(t, os.IsNotExist(err))
}
