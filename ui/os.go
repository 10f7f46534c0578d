package ui

import "fyne.io/fyne/v2"

// OS hides platform differences in how a tray application presents itself.
type OS interface {
	TransformToForeground()                   // Show a regular window-owning app (Dock icon on macOS).
	TransformToBackground()                   // Return to a tray-only app.
	SetupLifecycle(app fyne.App, ka *KExtApp) // Install platform lifecycle hooks.
}
