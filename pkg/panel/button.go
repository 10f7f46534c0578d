// Package panel implements the panel button plugin.
package panel

import (
	"sync"

	"fyne.io/fyne/v2"

	"github.com/kaedenn/kext/config"
	"github.com/kaedenn/kext/pkg/env"
	"github.com/kaedenn/kext/pkg/ui"
	"github.com/kaedenn/kext/util"
)

// ButtonLabel identifies the button in its panel box.
const ButtonLabel = config.AppName

// PressedMessage is sent to the user when the button is pressed.
const PressedMessage = "KExt button has been pressed"

// Button places one button in the panel and reacts to presses.
type Button struct {
	env     *env.Env
	manager ui.PluginManager
	presses util.SafeCounter

	mu     sync.Mutex
	placed bool
	box    ui.PanelBox
}

// NewButton creates the panel button plugin.
func NewButton(e *env.Env) *Button {
	e.Cache.Logf("Created %s", config.AppName)
	return &Button{env: e, box: ui.BoxRight}
}

// Name returns the plugin name.
func (b *Button) Name() string {
	return config.AppName
}

// Init injects the plugin manager.
func (b *Button) Init(manager ui.PluginManager) {
	b.manager = manager
}

// Activate places the button in the configured panel box.
func (b *Button) Activate() {
	b.env.Cache.Logf("Initializing %s button", config.AppName)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.place()
	b.env.Cache.Logf("Initialized %s button in the %s box", config.AppName, b.box)
}

// Deactivate removes the button.
func (b *Button) Deactivate() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.unplace()
}

// Box returns the box the button was last placed in.
func (b *Button) Box() ui.PanelBox {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.box
}

// Presses returns how many times the button has been pressed.
func (b *Button) Presses() int64 {
	return b.presses.Value()
}

// OnPress handles a button press.
func (b *Button) OnPress() {
	n := b.presses.Increment()
	b.env.Notify.Log(PressedMessage)
	b.env.Debugf("press #%d", n)
}

// ShowRegistry opens a dialog with the registry contents. Confirming
// resets the registry and re-places the button with the defaults.
func (b *Button) ShowRegistry() {
	b.manager.OpenDialog(ui.DialogConfig{
		Title:       config.AppName + " Registry",
		Message:     b.env.Store.Path(),
		Detail:      b.env.Store.String(),
		OKLabel:     "Reset",
		CancelLabel: "Close",
		OnConfirm:   b.resetRegistry,
	})
}

func (b *Button) resetRegistry() {
	if err := b.env.Store.Reset(); err != nil {
		return
	}
	b.env.Notify.Log("Registry reset to defaults")
	b.replace()
}

// MoveTo stores box as the panel preference and moves the button there.
func (b *Button) MoveTo(box ui.PanelBox) error {
	if err := b.env.Config.SetPanel(box.String()); err != nil {
		return err
	}
	b.replace()
	return nil
}

// SetIcon stores the icon preference, a name or an absolute path, and
// redraws the button.
func (b *Button) SetIcon(nameOrPath string) error {
	if err := b.env.Config.SetIcon(nameOrPath); err != nil {
		return err
	}
	b.replace()
	return nil
}

// replace re-places the button if it is currently shown.
func (b *Button) replace() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.placed {
		return
	}
	b.unplace()
	b.place()
}

// place must be called with mu held.
func (b *Button) place() {
	panel := b.env.Config.GetPanel()
	box, err := ui.ParsePanelBox(panel)
	if err != nil {
		b.env.Error.Logf("invalid panel box %s", panel)
	}

	icon := b.icon()
	if err := b.manager.InsertButton(box, ButtonLabel, icon, b.OnPress); err != nil {
		b.env.ErrorNotify.Logf("Failed to place button: %v", err)
		return
	}
	b.box = box
	b.placed = true
}

// unplace must be called with mu held.
func (b *Button) unplace() {
	if !b.placed {
		return
	}
	b.manager.RemoveButton(ButtonLabel)
	b.placed = false
}

// icon resolves the icon preference, falling back to the default icon.
func (b *Button) icon() fyne.Resource {
	am := b.manager.GetAssetManager()
	if am == nil {
		return nil
	}
	name := b.env.Config.GetIcon()
	res, err := am.GetIcon(name)
	if err == nil {
		return res
	}
	b.env.Error.Logf("Failed to load icon %s: %v", name, err)
	if name == config.DefaultIcon {
		return nil
	}
	res, err = am.GetIcon(config.DefaultIcon)
	if err != nil {
		return nil
	}
	return res
}
