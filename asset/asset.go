package asset

import (
	"embed"
	"fmt"
	"path"
	"path/filepath"

	"fyne.io/fyne/v2"

	"github.com/kaedenn/kext/util/log"
)

//go:embed icons/*
var assets embed.FS

// iconExt is appended to icon names given without an extension.
const iconExt = ".svg"

// Manager manages the loading of UI assets.
type Manager struct{}

// NewManager creates a new asset manager.
func NewManager() *Manager {
	return &Manager{}
}

// GetIcon returns an icon by name or path. Absolute paths are loaded from
// disk; anything else is an embedded icon such as "system-run".
func (am *Manager) GetIcon(nameOrPath string) (fyne.Resource, error) {
	if nameOrPath == "" {
		return nil, fmt.Errorf("icon name is empty")
	}

	if filepath.IsAbs(nameOrPath) {
		res, err := fyne.LoadResourceFromPath(nameOrPath)
		if err != nil {
			log.Println("Error loading icon file:", err)
			return nil, err
		}
		return res, nil
	}

	name := nameOrPath
	if path.Ext(name) == "" {
		name += iconExt
	}
	iconData, err := assets.ReadFile("icons/" + name)
	if err != nil {
		log.Println("Error loading icon:", err)
		return nil, err
	}

	return fyne.NewStaticResource(name, iconData), nil
}

// IconNames returns the names of the embedded icons without extension.
func (am *Manager) IconNames() []string {
	entries, err := assets.ReadDir("icons")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		n := e.Name()
		names = append(names, n[:len(n)-len(path.Ext(n))])
	}
	return names
}
