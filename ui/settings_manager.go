package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/kaedenn/kext/pkg/ui/setting"
)

// SettingsManager handles UI elements for settings.
type SettingsManager struct {
	chgPrefsCallbacks map[string]func()
	refreshFlags      map[string]bool
	refreshFuncs      []func()
	applyButton       *widget.Button
	prefsWindow       fyne.Window
}

// NewSettingsManager creates a new SettingsManager.
func NewSettingsManager(window fyne.Window) *SettingsManager {
	sm := &SettingsManager{
		chgPrefsCallbacks: make(map[string]func()),
		refreshFlags:      make(map[string]bool),
		prefsWindow:       window,
	}
	sm.applyButton = createApplyButton(sm)
	return sm
}

// createApplyButton creates the Apply Changes button, disabled until a setting changes.
func createApplyButton(sm *SettingsManager) *widget.Button {
	var applyButton *widget.Button
	applyButton = widget.NewButton("Apply Changes", func() {
		originalText := applyButton.Text
		applyButton.Disable()
		applyButton.SetText("Applying changes, please wait...")
		sm.ApplyChanges()
		applyButton.SetText(originalText)
	})
	applyButton.Disable()
	return applyButton
}

// checkAndEnableApply enables the apply button while changes are pending.
func (sm *SettingsManager) checkAndEnableApply() {
	if sm.HasPendingChanges() {
		sm.applyButton.Enable()
	} else {
		sm.applyButton.Disable()
	}
	sm.applyButton.Refresh()
}

// HasPendingChanges reports whether Apply would do anything.
func (sm *SettingsManager) HasPendingChanges() bool {
	return len(sm.refreshFlags) > 0 || len(sm.chgPrefsCallbacks) > 0
}

// ApplyChanges runs the pending setting callbacks, then the refresh
// functions if any applied setting asked for a refresh.
func (sm *SettingsManager) ApplyChanges() {
	for _, callback := range sm.chgPrefsCallbacks {
		callback()
	}
	sm.chgPrefsCallbacks = make(map[string]func())

	if len(sm.refreshFlags) > 0 {
		for _, rf := range sm.refreshFuncs {
			rf()
		}
		sm.refreshFlags = make(map[string]bool)
	}
	sm.checkAndEnableApply()
}

// GetApplySettingsButton returns the Apply Changes button to be placed in the window.
func (sm *SettingsManager) GetApplySettingsButton() *widget.Button {
	return sm.applyButton
}

// track records or forgets the apply callback of a setting.
func (sm *SettingsManager) track(name string, changed, needsRefresh bool, apply func()) {
	if changed {
		sm.SetSettingChangedCallback(name, apply)
		if needsRefresh {
			sm.SetRefreshFlag(name)
		}
	} else {
		sm.RemoveSettingChangedCallback(name)
		if needsRefresh {
			sm.UnsetRefreshFlag(name)
		}
	}
	sm.checkAndEnableApply()
}

// CreateSelectSetting creates a select widget.
func (sm *SettingsManager) CreateSelectSetting(cfg *setting.SelectConfig, header *fyne.Container) *widget.Select {
	selectWidget := widget.NewSelect(cfg.Options, func(selected string) {})
	selectWidget.SetSelectedIndex(cfg.InitialValue)

	header.Add(NewSplitRow(cfg.Label, selectWidget, SplitProportion.OneThird))
	if cfg.HelpContent != nil {
		header.Add(cfg.HelpContent)
	}

	selectWidget.OnChanged = func(s string) {
		selectedIndex := selectWidget.SelectedIndex()
		sm.track(cfg.Name, selectedIndex != cfg.InitialValue, cfg.NeedsRefresh, func() {
			cfg.ApplyFunc(selectedIndex)
			cfg.InitialValue = selectedIndex
		})
		if cfg.OnChanged != nil {
			cfg.OnChanged(s, selectedIndex)
		}
	}
	return selectWidget
}

// CreateBoolSetting creates a boolean check setting.
func (sm *SettingsManager) CreateBoolSetting(cfg *setting.BoolConfig, header *fyne.Container) *widget.Check {
	check := widget.NewCheck("", func(b bool) {}) // Label is the row's CanvasObject
	check.SetChecked(cfg.InitialValue)

	header.Add(NewSplitRow(cfg.Label, check, SplitProportion.OneThird))
	if cfg.HelpContent != nil {
		header.Add(cfg.HelpContent)
	}

	check.OnChanged = func(b bool) {
		sm.track(cfg.Name, b != cfg.InitialValue, cfg.NeedsRefresh, func() {
			cfg.ApplyFunc(b)
			cfg.InitialValue = b
		})
		if cfg.OnChanged != nil {
			cfg.OnChanged(b)
		}
	}
	return check
}

// CreateTextEntrySetting creates a text entry setting with a status line.
func (sm *SettingsManager) CreateTextEntrySetting(cfg *setting.TextEntrySettingConfig, header *fyne.Container) *widget.Entry {
	entry := widget.NewEntry()
	entry.SetPlaceHolder(cfg.PlaceHolder)
	entry.SetText(cfg.InitialValue)
	if cfg.Validator != nil {
		entry.Validator = cfg.Validator
	}

	statusLabel := widget.NewLabel("")

	header.Add(NewSplitRow(cfg.Label, entry, SplitProportion.OneThird))
	if cfg.HelpContent != nil {
		header.Add(NewSplitRowWithAlignment(cfg.HelpContent, statusLabel, SplitProportion.TwoThirds, SplitAlign.Opposed))
	} else {
		header.Add(NewSplitRow(widget.NewLabel(""), statusLabel, SplitProportion.TwoThirds))
	}

	entry.OnChanged = func(s string) {
		var err error
		if cfg.Validator != nil {
			err = entry.Validate()
		}
		if err == nil && cfg.PostValidateCheck != nil {
			err = cfg.PostValidateCheck(s)
		}

		if err != nil {
			statusLabel.SetText(err.Error())
			statusLabel.Importance = widget.DangerImportance
			sm.track(cfg.Name, false, cfg.NeedsRefresh, nil)
		} else {
			statusLabel.SetText(fmt.Sprintf("%s OK", cfg.Name))
			statusLabel.Importance = widget.SuccessImportance
			sm.track(cfg.Name, s != cfg.InitialValue, cfg.NeedsRefresh, func() {
				cfg.ApplyFunc(s)
				cfg.InitialValue = s
			})
		}
		statusLabel.Refresh()
	}
	return entry
}

// CreateButtonWithConfirmationSetting creates a button that asks before acting.
func (sm *SettingsManager) CreateButtonWithConfirmationSetting(cfg *setting.ButtonWithConfirmationConfig, header *fyne.Container) {
	button := widget.NewButton(cfg.ButtonText, func() {
		if cfg.ConfirmTitle != "" && cfg.ConfirmMessage != "" {
			d := dialog.NewConfirm(cfg.ConfirmTitle, cfg.ConfirmMessage, func(b bool) {
				if b {
					cfg.OnPressed()
				}
			}, sm.prefsWindow)
			d.Show()
		} else {
			cfg.OnPressed()
		}
	})

	if cfg.Label != nil {
		header.Add(NewSplitRow(cfg.Label, button, SplitProportion.OneThird))
	} else {
		header.Add(button)
	}

	if cfg.HelpContent != nil {
		header.Add(cfg.HelpContent)
	}
}

// SetSettingChangedCallback sets a callback function to be called when a setting changes.
func (sm *SettingsManager) SetSettingChangedCallback(settingName string, callback func()) {
	sm.chgPrefsCallbacks[settingName] = callback
}

// RemoveSettingChangedCallback removes a callback function associated with a specific setting.
func (sm *SettingsManager) RemoveSettingChangedCallback(settingName string) {
	delete(sm.chgPrefsCallbacks, settingName)
}

// SetRefreshFlag sets a flag to indicate that a specific setting needs a refresh.
func (sm *SettingsManager) SetRefreshFlag(settingName string) {
	sm.refreshFlags[settingName] = true
}

// UnsetRefreshFlag removes the refresh flag for a specific setting.
func (sm *SettingsManager) UnsetRefreshFlag(settingName string) {
	delete(sm.refreshFlags, settingName)
}

// RegisterRefreshFunc registers a function to be called after settings that
// need a refresh are applied, such as re-placing the panel button.
func (sm *SettingsManager) RegisterRefreshFunc(refreshFunc func()) {
	sm.refreshFuncs = append(sm.refreshFuncs, refreshFunc)
}

// GetSettingsWindow returns the window associated with the SettingsManager.
func (sm *SettingsManager) GetSettingsWindow() fyne.Window {
	return sm.prefsWindow
}
