package ui

import (
	"fyne.io/fyne/v2"
	"github.com/kaedenn/kext/asset"
	"github.com/kaedenn/kext/config"
)

// DialogConfig describes a modal confirmation dialog.
type DialogConfig struct {
	Title       string
	Message     string
	Detail      string
	OKLabel     string
	CancelLabel string
	OnConfirm   func() // Called only when the user confirms
}

// PluginManager is the interface that must be implemented by all UI plugin managers.
type PluginManager interface {
	Register(Plugin)                                            // Registers a plugin.
	Deregister(Plugin)                                          // Deregisters a plugin.
	NotifyUser(string, string)                                  // Notifies the user.
	RegisterNotifier(Notifier)                                  // Registers a notifier.
	InsertButton(PanelBox, string, fyne.Resource, func()) error // Places a button in a panel box.
	RemoveButton(string)                                        // Removes a button by label.
	OpenDialog(DialogConfig)                                    // Opens a confirmation dialog.
	GetPreferences() *config.AppConfig                          // Returns the preferences.
	GetAssetManager() *asset.Manager                            // Returns the asset manager.
}

// App is the interface that must be implemented by all applications.
type App interface {
	Start() // Start runs the application until it quits.
}
