//go:build !linux && !windows && !darwin

package ui

import "fyne.io/fyne/v2"

// otherOS implements the OS interface for platforms without special handling.
type otherOS struct{}

func (o *otherOS) TransformToForeground()                   {}
func (o *otherOS) TransformToBackground()                   {}
func (o *otherOS) SetupLifecycle(app fyne.App, ka *KExtApp) {}

func getOS() OS {
	return &otherOS{}
}
