package config

import (
	"strconv"
)

// Preferences is the key/value store behind AppConfig.
type Preferences interface {
	Get(key string, fallback any) any
	Set(key string, value any) error
}

// IconKey is the key for the panel button icon preference (name or absolute path)
const IconKey = "icon"

// DefaultIcon is the icon used when no icon preference is stored.
const DefaultIcon = "system-run"

// PanelKey is the key for the panel box preference
const PanelKey = "panel"

// DefaultPanel is the panel box used when no panel preference is stored.
const DefaultPanel = "right"

// DebugEnabledKey is the key for the debugging preference
const DebugEnabledKey = "debug-enable"

// NotificationsEnabledKey is the key for the user notifications preference
const NotificationsEnabledKey = "notifications-enabled"

// AppConfig holds the extension-wide configuration
type AppConfig struct {
	prefs Preferences
}

// NewAppConfig creates a new AppConfig instance
func NewAppConfig(p Preferences) *AppConfig {
	return &AppConfig{prefs: p}
}

// GetIcon returns the icon name or path of the panel button
func (c *AppConfig) GetIcon() string {
	return c.stringWithFallback(IconKey, DefaultIcon)
}

// SetIcon sets the icon name or path of the panel button
func (c *AppConfig) SetIcon(icon string) error {
	return c.prefs.Set(IconKey, icon)
}

// GetPanel returns the stored panel box. Older registries store the box as
// an index, so numbers are returned in their decimal form.
func (c *AppConfig) GetPanel() string {
	switch v := c.prefs.Get(PanelKey, DefaultPanel).(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
	case int:
		return strconv.Itoa(v)
	}
	return DefaultPanel
}

// SetPanel sets the panel box
func (c *AppConfig) SetPanel(panel string) error {
	return c.prefs.Set(PanelKey, panel)
}

// GetDebugEnabled returns whether debugging output is enabled
func (c *AppConfig) GetDebugEnabled() bool {
	return c.boolWithFallback(DebugEnabledKey, false)
}

// SetDebugEnabled sets whether debugging output is enabled
func (c *AppConfig) SetDebugEnabled(enabled bool) error {
	return c.prefs.Set(DebugEnabledKey, enabled)
}

// GetNotificationsEnabled returns whether user notifications are shown
func (c *AppConfig) GetNotificationsEnabled() bool {
	return c.boolWithFallback(NotificationsEnabledKey, true)
}

// SetNotificationsEnabled sets whether user notifications are shown
func (c *AppConfig) SetNotificationsEnabled(enabled bool) error {
	return c.prefs.Set(NotificationsEnabledKey, enabled)
}

// The registry has no schema; a value of the wrong type reads as the fallback.
func (c *AppConfig) boolWithFallback(key string, fallback bool) bool {
	if b, ok := c.prefs.Get(key, fallback).(bool); ok {
		return b
	}
	return fallback
}

func (c *AppConfig) stringWithFallback(key string, fallback string) string {
	if s, ok := c.prefs.Get(key, fallback).(string); ok && s != "" {
		return s
	}
	return fallback
}
