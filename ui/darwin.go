//go:build darwin

package ui

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework Foundation -framework AppKit

#import <AppKit/AppKit.h>

// Regular apps have a Dock icon and a menu bar.
const NSApplicationActivationPolicy Regular = 0;

// Accessory apps have no Dock icon.
const NSApplicationActivationPolicy Accessory = 1;

// setActivationPolicy sets the policy and activates the app so the change
// takes effect.
void setActivationPolicy(long policy) {
    [NSApp setActivationPolicy:policy];
    [NSApp activateIgnoringOtherApps:YES];
}
*/
import "C"

import "fyne.io/fyne/v2"

// darwinOS implements the OS interface for macOS.
type darwinOS struct{}

// TransformToForeground shows the Dock icon while a window is open.
func (d *darwinOS) TransformToForeground() {
	C.setActivationPolicy(C.Regular)
}

// TransformToBackground hides the Dock icon.
func (d *darwinOS) TransformToBackground() {
	C.setActivationPolicy(C.Accessory)
}

// SetupLifecycle starts the app as a menu bar accessory.
func (d *darwinOS) SetupLifecycle(app fyne.App, ka *KExtApp) {
	app.Lifecycle().SetOnStarted(d.TransformToBackground)
}

// getOS returns a new instance of the darwinOS struct.
func getOS() OS {
	return &darwinOS{}
}
