//go:build linux

package ui

import (
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/kaedenn/kext/config"
)

// crosMarker exists only inside the Chrome OS Linux container.
const crosMarker = "/dev/.cros_milestone"

// linuxOS implements the OS interface for Linux.
type linuxOS struct{}

// TransformToForeground is a no-op; Linux apps have no separate Dock state.
func (l *linuxOS) TransformToForeground() {}

// TransformToBackground is a no-op on Linux.
func (l *linuxOS) TransformToBackground() {}

// SetupLifecycle is a no-op for standard Linux desktops.
func (l *linuxOS) SetupLifecycle(app fyne.App, ka *KExtApp) {}

// chromeOS implements the OS interface for Chrome OS (Crostini), which has
// no system tray. Clicking the shelf icon opens a window mirroring the tray menu.
type chromeOS struct {
	linuxOS
	trayWindow fyne.Window
}

func (c *chromeOS) SetupLifecycle(app fyne.App, ka *KExtApp) {
	app.Lifecycle().SetOnEnteredForeground(func() {
		if c.trayWindow == nil {
			c.trayWindow = c.createTrayWindow(app, ka)
		}
		c.trayWindow.Show()
		c.trayWindow.RequestFocus()
	})
}

func (c *chromeOS) createTrayWindow(app fyne.App, ka *KExtApp) fyne.Window {
	w := app.NewWindow(config.AppName)
	w.SetCloseIntercept(w.Hide)

	var items []fyne.CanvasObject
	for _, item := range ka.MenuItems() {
		if item.IsSeparator {
			items = append(items, widget.NewSeparator())
			continue
		}
		menuItem := item
		btn := widget.NewButtonWithIcon(menuItem.Label, menuItem.Icon, func() {
			w.Hide()
			if menuItem.Action != nil {
				menuItem.Action()
			}
		})
		if menuItem.Disabled {
			btn.Disable()
		}
		items = append(items, btn)
	}

	w.SetContent(container.NewPadded(container.NewVBox(items...)))
	w.CenterOnScreen()
	return w
}

// getOS returns the OS implementation for this Linux flavor.
func getOS() OS {
	if _, err := os.Stat(crosMarker); err == nil {
		return &chromeOS{}
	}
	return &linuxOS{}
}
