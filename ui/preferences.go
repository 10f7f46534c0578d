package ui

import (
	"fmt"
	"slices"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"

	"github.com/kaedenn/kext/config"
	kextui "github.com/kaedenn/kext/pkg/ui"
	"github.com/kaedenn/kext/pkg/ui/setting"
)

// prefsWindowSize is the initial size of the preferences window.
var prefsWindowSize = fyne.NewSize(640, 480)

// CreatePreferencesWindow opens the preferences window, or focuses it if
// it is already open.
func (ka *KExtApp) CreatePreferencesWindow() {
	ka.mu.Lock()
	if ka.prefsWindow != nil {
		w := ka.prefsWindow
		ka.mu.Unlock()
		w.Show()
		w.RequestFocus()
		return
	}
	w := ka.app.NewWindow(config.AppName + " Preferences")
	ka.prefsWindow = w
	ka.mu.Unlock()

	ka.os.TransformToForeground()
	w.SetOnClosed(func() {
		ka.mu.Lock()
		ka.prefsWindow = nil
		ka.mu.Unlock()
		ka.os.TransformToBackground()
	})

	sm := NewSettingsManager(w)
	content := ka.createPreferences(sm)
	footer := container.NewHBox(layout.NewSpacer(), sm.GetApplySettingsButton())
	w.SetContent(container.NewBorder(nil, footer, nil, nil, container.NewVScroll(content)))
	w.Resize(prefsWindowSize)
	w.CenterOnScreen()
	w.Show()
}

// createPreferences builds the settings of the panel button, notifications
// and debugging. Changes are written when Apply is pressed; panel and icon
// changes re-activate the plugins.
func (ka *KExtApp) createPreferences(sm setting.SettingsManager) *fyne.Container {
	cfg := ka.env.Config
	header := container.NewVBox()
	sm.RegisterRefreshFunc(ka.refreshPlugins)

	header.Add(sm.CreateSectionTitleLabel("Panel Button"))
	header.Add(sm.CreateSettingDescriptionLabel("Where the button is placed and how it looks."))

	boxes := kextui.GetPanelBoxes()
	current, err := kextui.ParsePanelBox(cfg.GetPanel())
	if err != nil {
		ka.env.Error.Logf("invalid panel box %s", cfg.GetPanel())
	}
	sm.CreateSelectSetting(&setting.SelectConfig{
		Name:         "Panel",
		Options:      setting.StringOptions(boxes),
		InitialValue: slices.Index(boxes, current),
		Label:        sm.CreateSettingTitleLabel("Panel box:"),
		HelpContent:  sm.CreateSettingDescriptionLabel("The group of the panel the button is shown in."),
		ApplyFunc: func(idx int) {
			ka.setPreference(cfg.SetPanel(boxes[idx].String()))
		},
		NeedsRefresh: true,
	}, header)

	sm.CreateTextEntrySetting(&setting.TextEntrySettingConfig{
		Name:         "Icon",
		InitialValue: cfg.GetIcon(),
		PlaceHolder:  config.DefaultIcon,
		Label:        sm.CreateSettingTitleLabel("Button icon:"),
		HelpContent:  sm.CreateSettingDescriptionLabel("An icon name, or the absolute path of an image file."),
		PostValidateCheck: func(s string) error {
			if _, err := ka.assetMgr.GetIcon(s); err != nil {
				return fmt.Errorf("icon %q not found", s)
			}
			return nil
		},
		ApplyFunc: func(s string) {
			ka.setPreference(cfg.SetIcon(s))
		},
		NeedsRefresh: true,
	}, header)

	header.Add(sm.CreateSectionTitleLabel("Notifications"))
	sm.CreateBoolSetting(&setting.BoolConfig{
		Name:         "Notifications",
		InitialValue: cfg.GetNotificationsEnabled(),
		Label:        sm.CreateSettingTitleLabel("Show notifications:"),
		HelpContent:  sm.CreateSettingDescriptionLabel("Button presses and errors are shown as desktop notifications."),
		ApplyFunc: func(b bool) {
			ka.setPreference(cfg.SetNotificationsEnabled(b))
		},
	}, header)

	header.Add(sm.CreateSectionTitleLabel("Debugging"))
	sm.CreateBoolSetting(&setting.BoolConfig{
		Name:         "Debugging",
		InitialValue: cfg.GetDebugEnabled(),
		Label:        sm.CreateSettingTitleLabel("Debugging:"),
		HelpContent:  sm.CreateSettingDescriptionLabel("Write debugging output to " + config.DebugLogFile + "."),
		ApplyFunc: func(b bool) {
			ka.setPreference(cfg.SetDebugEnabled(b))
		},
	}, header)

	sm.CreateButtonWithConfirmationSetting(&setting.ButtonWithConfirmationConfig{
		Name:           "Reset",
		Label:          sm.CreateSettingTitleLabel("Registry:"),
		HelpContent:    sm.CreateSettingDescriptionLabel(ka.env.Store.Path()),
		ButtonText:     "Reset to Defaults",
		ConfirmTitle:   "Please Confirm",
		ConfirmMessage: "Are you sure you want to reset every preference?",
		OnPressed:      ka.resetRegistry,
	}, header)

	return header
}

// setPreference logs a failed preference write. The store has already
// reported it; the value is kept in memory for this session.
func (ka *KExtApp) setPreference(err error) {
	if err != nil {
		ka.env.Debugf("preference not saved: %v", err)
	}
}

func (ka *KExtApp) resetRegistry() {
	if err := ka.env.Store.Reset(); err != nil {
		return
	}
	ka.env.Notify.Logf("Registry reset to defaults")
	ka.refreshPlugins()
}
