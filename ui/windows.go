//go:build windows

package ui

import "fyne.io/fyne/v2"

// windowsOS implements the OS interface for Windows.
type windowsOS struct{}

// TransformToForeground is a no-op; Windows has no Dock.
func (w *windowsOS) TransformToForeground() {}

// TransformToBackground is a no-op; Windows has no Dock.
func (w *windowsOS) TransformToBackground() {}

// SetupLifecycle sets up OS-specific lifecycle hooks.
func (w *windowsOS) SetupLifecycle(app fyne.App, ka *KExtApp) {}

// getOS returns a new instance of the windowsOS struct.
func getOS() OS {
	return &windowsOS{}
}
