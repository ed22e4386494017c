// Package platform carries inbound platform signals to the app state. The
// core does not depend on any delivery mechanism; each signal is a channel
// that fires zero or more times.
package platform

import (
	"context"

	"github.com/aoyama/taskvault/internal/state"
)

// Signals groups the platform events the app state mirrors.
type Signals struct {
	// Connectivity fires with the new online/offline flag.
	Connectivity chan bool
	// ColorScheme fires with the platform dark-mode preference. It only
	// affects the theme while the user has not saved one.
	ColorScheme chan bool
	// InstallPrompts fires when the platform captures a deferred install
	// handle; nil clears the slot.
	InstallPrompts chan state.InstallPrompt
}

// NewSignals allocates buffered signal channels.
func NewSignals() *Signals {
	return &Signals{
		Connectivity:   make(chan bool, 4),
		ColorScheme:    make(chan bool, 4),
		InstallPrompts: make(chan state.InstallPrompt, 1),
	}
}

// Bind forwards signals into the app state until ctx is done. Run it on its
// own goroutine.
func Bind(ctx context.Context, app *state.AppState, sig *Signals) {
	for {
		select {
		case <-ctx.Done():
			return
		case online := <-sig.Connectivity:
			app.SetOnline(online)
		case prefersDark := <-sig.ColorScheme:
			app.ApplySystemColorScheme(prefersDark)
		case prompt := <-sig.InstallPrompts:
			app.SetInstallPrompt(prompt)
		}
	}
}
