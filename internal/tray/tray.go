// Package tray puts the gesture mouse in the system tray with enable, preview
// and quit entries.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Tray is the menu bar icon of rasoi-mouse. Enabled by default.
type Tray struct {
	mu        sync.RWMutex
	enabled   bool
	onToggle  func(enabled bool)
	onPreview func()
	onQuit    func()

	menuToggle      *systray.MenuItem
	menuLastGesture *systray.MenuItem
}

func New() *Tray {
	return &Tray{enabled: true}
}

// OnToggle is called with the new state after the user flips the toggle.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnPreview is called when "Open Preview" is clicked. Without it the entry is hidden.
func (t *Tray) OnPreview(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onPreview = fn
}

func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run blocks until Quit is clicked or Stop is called. On macOS it must run on
// the main thread.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

// Stop removes the tray icon and makes Run return.
func (t *Tray) Stop() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("Rasoi")
	systray.SetTooltip("Rasoi gesture mouse")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle gesture control")
	systray.AddSeparator()
	t.menuLastGesture = systray.AddMenuItem("Last: none", "Last gesture")
	t.menuLastGesture.Disable()
	systray.AddSeparator()
	menuPreview := systray.AddMenuItem("Open Preview...", "Open the camera preview in a browser")
	if t.onPreview == nil {
		menuPreview.Hide()
	}
	t.mu.Unlock()

	systray.AddSeparator()
	menuQuit := systray.AddMenuItem("Quit", "Quit rasoi-mouse")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuPreview.ClickedCh:
				t.handlePreview()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				systray.Quit()
				return
			}
		}
	}()
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Enabled"
	}
	return "○ Disabled"
}

func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	cb := t.onToggle
	t.mu.Unlock()

	if cb != nil {
		cb(enabled)
	}
}

func (t *Tray) handlePreview() {
	t.mu.RLock()
	cb := t.onPreview
	t.mu.RUnlock()

	if cb != nil {
		cb()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	cb := t.onQuit
	t.mu.RUnlock()

	if cb != nil {
		cb()
	}
}

// SetLastGesture shows name in the menu.
func (t *Tray) SetLastGesture(name string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuLastGesture == nil {
		return
	}
	if name == "" {
		name = "none"
	}
	t.menuLastGesture.SetTitle("Last: " + name)
}

func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}
