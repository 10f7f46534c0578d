package ui

import (
	"fmt"
	"slices"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"

	"github.com/kaedenn/kext/asset"
	"github.com/kaedenn/kext/config"
	"github.com/kaedenn/kext/pkg/env"
	kextui "github.com/kaedenn/kext/pkg/ui"
	"github.com/kaedenn/kext/pkg/ui/setting"
	"github.com/kaedenn/kext/util/log"
)

// Interface checks
var (
	_ kextui.PluginManager    = (*KExtApp)(nil)
	_ kextui.App              = (*KExtApp)(nil)
	_ setting.SettingsManager = (*SettingsManager)(nil)
)

// dialogSize is the size of the window hosting a confirmation dialog.
var dialogSize = fyne.NewSize(480, 320)

// RegistryViewer is implemented by plugins that can display the registry.
type RegistryViewer interface {
	ShowRegistry()
}

// trayButton is a panel button rendered as a tray menu item.
type trayButton struct {
	label   string
	icon    fyne.Resource
	onPress func()
}

// KExtApp hosts the plugins in a fyne system tray application. Panel boxes
// become groups of tray menu items, left box first.
type KExtApp struct {
	app      fyne.App
	env      *env.Env
	assetMgr *asset.Manager
	os       OS
	notify   func(*fyne.Notification)

	mu          sync.Mutex
	plugins     []kextui.Plugin
	boxes       map[kextui.PanelBox][]trayButton
	trayMenu    *fyne.Menu
	prefsWindow fyne.Window
}

var (
	instance *KExtApp  // Singleton instance of the application
	once     sync.Once // Ensures the singleton is created only once
)

// GetInstance returns the singleton instance of the application, or nil
// when the platform has no system tray.
func GetInstance(e *env.Env) *KExtApp {
	a := app.NewWithID(config.AppID)
	if _, ok := a.(desktop.App); !ok {
		log.Println("Tray icon not supported on this platform")
		return nil
	}
	once.Do(func() {
		instance = NewKExtApp(a, e)
	})
	return instance
}

// NewKExtApp creates the application host on top of a. It registers itself
// as the notifier of e.
func NewKExtApp(a fyne.App, e *env.Env) *KExtApp {
	ka := &KExtApp{
		app:      a,
		env:      e,
		assetMgr: asset.NewManager(),
		os:       getOS(),
		notify:   a.SendNotification,
		boxes:    make(map[kextui.PanelBox][]trayButton),
	}
	ka.RegisterNotifier(ka.NotifyUser)
	ka.refreshTray()
	return ka
}

// Register adds a plugin and hands it the manager.
func (ka *KExtApp) Register(p kextui.Plugin) {
	ka.mu.Lock()
	ka.plugins = append(ka.plugins, p)
	ka.mu.Unlock()
	p.Init(ka)
	ka.env.Cache.Logf("Registered plugin %s", p.Name())
}

// Deregister deactivates and removes a plugin.
func (ka *KExtApp) Deregister(p kextui.Plugin) {
	ka.mu.Lock()
	idx := slices.Index(ka.plugins, p)
	if idx >= 0 {
		ka.plugins = slices.Delete(ka.plugins, idx, idx+1)
	}
	ka.mu.Unlock()
	if idx < 0 {
		return
	}
	p.Deactivate()
	ka.env.Cache.Logf("Deregistered plugin %s", p.Name())
}

func (ka *KExtApp) pluginList() []kextui.Plugin {
	ka.mu.Lock()
	defer ka.mu.Unlock()
	return slices.Clone(ka.plugins)
}

// NotifyUser sends a desktop notification unless notifications are disabled.
func (ka *KExtApp) NotifyUser(title, message string) {
	if !ka.env.Config.GetNotificationsEnabled() {
		return
	}
	ka.notify(fyne.NewNotification(title, message))
}

// RegisterNotifier makes n the notification sink of every logger.
func (ka *KExtApp) RegisterNotifier(n kextui.Notifier) {
	ka.env.RegisterNotifier(log.Notifier(n))
}

// InsertButton places a button at the front of box. A button with the same
// label is replaced.
func (ka *KExtApp) InsertButton(box kextui.PanelBox, label string, icon fyne.Resource, onPress func()) error {
	if !slices.Contains(kextui.GetPanelBoxes(), box) {
		return fmt.Errorf("invalid panel box %d", int(box))
	}
	if label == "" {
		return fmt.Errorf("button label is empty")
	}

	ka.mu.Lock()
	ka.removeLocked(label)
	ka.boxes[box] = slices.Insert(ka.boxes[box], 0, trayButton{label: label, icon: icon, onPress: onPress})
	ka.mu.Unlock()

	ka.refreshTray()
	return nil
}

// RemoveButton removes the button with label from whichever box holds it.
func (ka *KExtApp) RemoveButton(label string) {
	ka.mu.Lock()
	removed := ka.removeLocked(label)
	ka.mu.Unlock()
	if removed {
		ka.refreshTray()
	}
}

func (ka *KExtApp) removeLocked(label string) bool {
	for box, buttons := range ka.boxes {
		idx := slices.IndexFunc(buttons, func(b trayButton) bool { return b.label == label })
		if idx >= 0 {
			ka.boxes[box] = slices.Delete(buttons, idx, idx+1)
			return true
		}
	}
	return false
}

// OpenDialog shows a confirmation dialog in its own window. The window
// closes before OnConfirm runs.
func (ka *KExtApp) OpenDialog(cfg kextui.DialogConfig) {
	w := ka.app.NewWindow(cfg.Title)
	d := dialog.NewConfirm(cfg.Title, dialogText(cfg), confirmHandler(cfg, w), w)
	if cfg.OKLabel != "" {
		d.SetConfirmText(cfg.OKLabel)
	}
	if cfg.CancelLabel != "" {
		d.SetDismissText(cfg.CancelLabel)
	}
	w.Resize(dialogSize)
	w.CenterOnScreen()
	w.Show()
	d.Show()
}

func dialogText(cfg kextui.DialogConfig) string {
	if cfg.Detail == "" {
		return cfg.Message
	}
	return cfg.Message + "\n" + cfg.Detail
}

func confirmHandler(cfg kextui.DialogConfig, w fyne.Window) func(bool) {
	return func(confirmed bool) {
		w.Close()
		if confirmed && cfg.OnConfirm != nil {
			cfg.OnConfirm()
		}
	}
}

// GetPreferences returns the typed preferences.
func (ka *KExtApp) GetPreferences() *config.AppConfig {
	return ka.env.Config
}

// GetAssetManager returns the asset manager.
func (ka *KExtApp) GetAssetManager() *asset.Manager {
	return ka.assetMgr
}

// MenuItems returns the current tray menu items.
func (ka *KExtApp) MenuItems() []*fyne.MenuItem {
	ka.mu.Lock()
	defer ka.mu.Unlock()
	if ka.trayMenu == nil {
		return nil
	}
	return slices.Clone(ka.trayMenu.Items)
}

// buildMenu lays out the buttons box by box, followed by the app items.
func (ka *KExtApp) buildMenu() (*fyne.Menu, fyne.Resource) {
	var items []*fyne.MenuItem
	var trayIcon fyne.Resource
	for _, box := range kextui.GetPanelBoxes() {
		buttons := ka.boxes[box]
		if len(buttons) == 0 {
			continue
		}
		if len(items) > 0 {
			items = append(items, fyne.NewMenuItemSeparator())
		}
		for _, b := range buttons {
			mi := fyne.NewMenuItem(b.label, b.onPress)
			mi.Icon = b.icon
			items = append(items, mi)
			if trayIcon == nil {
				trayIcon = b.icon
			}
		}
	}
	if len(items) > 0 {
		items = append(items, fyne.NewMenuItemSeparator())
	}
	items = append(items,
		ka.createMenuItem("Show Registry", ka.showRegistry, "document-properties"),
		ka.createMenuItem("Preferences", ka.CreatePreferencesWindow, "preferences-system"),
		fyne.NewMenuItemSeparator(),
		ka.createMenuItem("Quit", ka.app.Quit, "application-exit"),
	)
	return fyne.NewMenu(config.AppName, items...), trayIcon
}

func (ka *KExtApp) createMenuItem(label string, action func(), iconName string) *fyne.MenuItem {
	mi := fyne.NewMenuItem(label, action)
	icon, err := ka.assetMgr.GetIcon(iconName)
	if err != nil {
		log.Printf("Failed to load icon: %v", err)
		return mi
	}
	mi.Icon = icon
	return mi
}

// refreshTray rebuilds the tray menu. The tray icon follows the first button.
func (ka *KExtApp) refreshTray() {
	ka.mu.Lock()
	menu, trayIcon := ka.buildMenu()
	ka.trayMenu = menu
	ka.mu.Unlock()

	if trayIcon == nil {
		trayIcon, _ = ka.assetMgr.GetIcon(config.DefaultIcon)
	}
	if desk, ok := ka.app.(desktop.App); ok {
		desk.SetSystemTrayMenu(menu)
		if trayIcon != nil {
			desk.SetSystemTrayIcon(trayIcon)
		}
	}
	if trayIcon != nil {
		ka.app.SetIcon(trayIcon)
	}
}

// showRegistry asks the first plugin able to show the registry to do so.
func (ka *KExtApp) showRegistry() {
	for _, p := range ka.pluginList() {
		if rv, ok := p.(RegistryViewer); ok {
			rv.ShowRegistry()
			return
		}
	}
	ka.OpenDialog(kextui.DialogConfig{
		Title:       config.AppName + " Registry",
		Message:     ka.env.Store.Path(),
		Detail:      ka.env.Store.String(),
		OKLabel:     "OK",
		CancelLabel: "Close",
	})
}

// refreshPlugins re-activates every plugin so preference changes take effect.
func (ka *KExtApp) refreshPlugins() {
	for _, p := range ka.pluginList() {
		p.Deactivate()
		p.Activate()
	}
}

// Start activates the plugins and runs the application until it quits.
func (ka *KExtApp) Start() {
	ka.os.SetupLifecycle(ka.app, ka)
	for _, p := range ka.pluginList() {
		ka.env.Debugf("activating %s", p.Name())
		p.Activate()
	}
	ka.app.Run()
	for _, p := range ka.pluginList() {
		p.Deactivate()
	}
	ka.env.Cache.Logf("%s stopped", config.AppName)
}
