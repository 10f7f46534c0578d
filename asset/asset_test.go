package asset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetManager(t *testing.T) {
	am := NewManager()

	t.Run("GetIcon by name", func(t *testing.T) {
		icon, err := am.GetIcon("system-run")
		assert.NoError(t, err)
		require.NotNil(t, icon)
		assert.Equal(t, "system-run.svg", icon.Name())
		assert.NotEmpty(t, icon.Content())

		icon, err = am.GetIcon("system-run.svg")
		assert.NoError(t, err)
		assert.NotNil(t, icon)
	})

	t.Run("GetIcon by path", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "custom.svg")
		require.NoError(t, os.WriteFile(p, []byte("<svg/>"), 0644))

		icon, err := am.GetIcon(p)
		assert.NoError(t, err)
		require.NotNil(t, icon)
		assert.Equal(t, []byte("<svg/>"), icon.Content())

		_, err = am.GetIcon(filepath.Join(t.TempDir(), "missing.svg"))
		assert.Error(t, err)
	})

	t.Run("GetIcon missing", func(t *testing.T) {
		_, err := am.GetIcon("non-existent")
		assert.Error(t, err)

		_, err = am.GetIcon("")
		assert.Error(t, err)
	})

	t.Run("IconNames", func(t *testing.T) {
		assert.Contains(t, am.IconNames(), "system-run")
		assert.Contains(t, am.IconNames(), "preferences-system")
	})
}
