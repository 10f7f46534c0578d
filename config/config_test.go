package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaths(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	dir, err := CacheDir()
	require.NoError(t, err)
	assert.Equal(t, AppID, filepath.Base(dir))

	assert.Equal(t, filepath.Join(dir, "registry.json"), RegistryPath(dir))
	assert.Equal(t, filepath.Join(dir, "extension.log"), LogPath(dir))
	assert.Equal(t, filepath.Join(dir, "extension-debug.log"), DebugLogPath(dir))
	assert.Equal(t, "/dev/pts/3", PtsPath(3))
}
