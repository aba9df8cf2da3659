// Package tray provides the system tray menu for mudra.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/mudra/internal/app"
)

const (
	titleEnabled  = "● Enabled"
	titleDisabled = "○ Disabled"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle    func(enabled bool)
	onDashboard func()
	onQuit      func()
	enabled     bool
	last        string
	accuracy    string
	mu          sync.RWMutex

	// Menu items stored for later updates
	menuToggle      *systray.MenuItem
	menuLastGesture *systray.MenuItem
	menuAccuracy    *systray.MenuItem
}

// New creates a new Tray instance with enabled state set to true by default.
func New() *Tray {
	return &Tray{
		enabled:  true,
		last:     "Last: none",
		accuracy: "Accuracy: no trials",
	}
}

// OnToggle sets the callback function to be called when the enabled state is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnDashboard sets the callback for the dashboard menu item. The item is
// only shown when a callback is set before Run.
func (t *Tray) OnDashboard(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDashboard = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application. It must be called from the main
// goroutine and blocks until Quit.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

// Quit stops Run.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Mudra")
	systray.SetTooltip("Mudra hand-gesture playback control")

	t.mu.Lock()
	toggleTitle := titleEnabled
	if !t.enabled {
		toggleTitle = titleDisabled
	}
	t.menuToggle = systray.AddMenuItem(toggleTitle, "Toggle gesture control")
	systray.AddSeparator()

	t.menuLastGesture = systray.AddMenuItem(t.last, "Last playback command")
	t.menuLastGesture.Disable()
	t.menuAccuracy = systray.AddMenuItem(t.accuracy, "Accuracy of this session")
	t.menuAccuracy.Disable()
	systray.AddSeparator()

	var dashboardCh chan struct{}
	if t.onDashboard != nil {
		dashboardCh = systray.AddMenuItem("Open Dashboard...", "Open the status page in a browser").ClickedCh
		systray.AddSeparator()
	}
	t.mu.Unlock()

	menuQuit := systray.AddMenuItem("Quit", "Quit Mudra")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-dashboardCh:
				t.handleDashboard()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	t.updateToggleLocked()
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) updateToggleLocked() {
	if t.menuToggle == nil {
		return
	}
	if t.enabled {
		t.menuToggle.SetTitle(titleEnabled)
	} else {
		t.menuToggle.SetTitle(titleDisabled)
	}
}

func (t *Tray) handleDashboard() {
	t.mu.RLock()
	callback := t.onDashboard
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// Publish implements app.Publisher, mirroring dispatches, trials and
// enable changes into the menu.
func (t *Tray) Publish(e app.Event) {
	switch data := e.Data.(type) {
	case *app.DispatchInfo:
		t.setLast(data)
	case app.TrialInfo:
		t.setItem(&t.accuracy, t.menuAccuracy,
			fmt.Sprintf("Accuracy: %d/%d (%.1f%%)", data.Hits, data.Total, data.Accuracy))
	case map[string]bool:
		if enabled, ok := data["enabled"]; ok && e.Type == app.EventState {
			t.SetEnabled(enabled)
		}
	}
}

func (t *Tray) setLast(d *app.DispatchInfo) {
	text := "Last: " + d.Label + " → " + d.Command
	if !d.Success {
		text += " (failed)"
	}
	t.setItem(&t.last, t.menuLastGesture, text)
}

func (t *Tray) setItem(field *string, item *systray.MenuItem, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	*field = text
	if item != nil {
		item.SetTitle(text)
	}
}

// SetEnabled syncs the toggle with a change made elsewhere.
func (t *Tray) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = enabled
	t.updateToggleLocked()
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// LastText returns the last-command menu text.
func (t *Tray) LastText() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}

// AccuracyText returns the accuracy menu text.
func (t *Tray) AccuracyText() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.accuracy
}
