package tray

import (
	"fmt"

	"deepwork/internal/ui/view"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnShow        func()
	OnStart       func()
	OnTogglePause func()
	OnReset       func()
	OnQuit        func()
}

// Manager handles system tray state.
type Manager struct {
	app        desktop.App
	statusItem *fyne.MenuItem
	showItem   *fyne.MenuItem
	startItem  *fyne.MenuItem
	pauseItem  *fyne.MenuItem
	resetItem  *fyne.MenuItem
	quitItem   *fyne.MenuItem
	callbacks  Callbacks
}

// New creates a tray manager with the provided callbacks.
func New(app desktop.App, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		callbacks: callbacks,
	}

	manager.statusItem = fyne.NewMenuItem("Ready to start", nil)
	manager.statusItem.Disabled = true

	manager.showItem = fyne.NewMenuItem("Show timer", invoke(callbacks.OnShow))
	manager.startItem = fyne.NewMenuItem("Start", invoke(callbacks.OnStart))
	manager.pauseItem = fyne.NewMenuItem("Pause", invoke(callbacks.OnTogglePause))
	manager.pauseItem.Disabled = true
	manager.resetItem = fyne.NewMenuItem("Reset", invoke(callbacks.OnReset))
	manager.resetItem.Disabled = true
	manager.quitItem = fyne.NewMenuItem("Quit", invoke(callbacks.OnQuit))
	manager.quitItem.IsQuit = true

	manager.refreshMenu()
	return manager
}

// Render mirrors a view model into the tray menu.
func (manager *Manager) Render(model view.Model) {
	status := model.Status
	if !model.Finished && model.Controls.PauseEnabled {
		status = fmt.Sprintf("%s  %s", model.Clock, model.Status)
	}
	manager.statusItem.Label = status
	manager.startItem.Disabled = !model.Controls.StartEnabled
	manager.pauseItem.Disabled = !model.Controls.PauseEnabled
	manager.pauseItem.Label = model.Controls.PauseLabel
	manager.resetItem.Disabled = !model.Controls.ResetEnabled
	manager.refreshMenu()
}

func (manager *Manager) refreshMenu() {
	if manager.app == nil {
		return
	}
	manager.app.SetSystemTrayMenu(fyne.NewMenu("deepwork",
		manager.statusItem,
		fyne.NewMenuItemSeparator(),
		manager.showItem,
		manager.startItem,
		manager.pauseItem,
		manager.resetItem,
		fyne.NewMenuItemSeparator(),
		manager.quitItem,
	))
}

func invoke(handler func()) func() {
	return func() {
		if handler != nil {
			handler()
		}
	}
}
