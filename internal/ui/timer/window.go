package timer

import (
	"image/color"

	"deepwork/internal/ui/view"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// Callbacks defines the intents the window forwards.
type Callbacks struct {
	OnStart       func()
	OnTogglePause func()
	OnReset       func()
}

// Window is the main countdown window.
type Window struct {
	window       fyne.Window
	clockText    *canvas.Text
	statusLabel  *widget.Label
	counterLabel *widget.Label
	progress     *widget.ProgressBar
	startButton  *widget.Button
	pauseButton  *widget.Button
	resetButton  *widget.Button
}

// New creates the countdown window with idle controls.
func New(app fyne.App, callbacks Callbacks) *Window {
	window := app.NewWindow("Deep Work Timer")

	titleText := canvas.NewText(view.Title, color.NRGBA{R: 232, G: 190, B: 66, A: 255})
	titleText.Alignment = fyne.TextAlignCenter
	titleText.TextStyle = fyne.TextStyle{Bold: true}
	titleText.TextSize = 22

	clockText := canvas.NewText(view.FormatClock(0), theme.Color(theme.ColorNameForeground))
	clockText.Alignment = fyne.TextAlignCenter
	clockText.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	clockText.TextSize = 56

	statusLabel := widget.NewLabelWithStyle("Ready to start", fyne.TextAlignCenter, fyne.TextStyle{})
	counterLabel := widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{})
	progress := widget.NewProgressBar()

	startButton := widget.NewButtonWithIcon("Start", theme.MediaPlayIcon(), invoke(callbacks.OnStart))
	startButton.Importance = widget.HighImportance
	pauseButton := widget.NewButtonWithIcon("Pause", theme.MediaPauseIcon(), invoke(callbacks.OnTogglePause))
	resetButton := widget.NewButtonWithIcon("Reset", theme.MediaReplayIcon(), invoke(callbacks.OnReset))

	buttons := container.NewHBox(layout.NewSpacer(), startButton, pauseButton, resetButton, layout.NewSpacer())
	content := container.NewVBox(titleText, clockText, statusLabel, counterLabel, progress, buttons)

	window.SetContent(container.NewPadded(content))
	window.Resize(fyne.NewSize(380, 320))

	timer := &Window{
		window:       window,
		clockText:    clockText,
		statusLabel:  statusLabel,
		counterLabel: counterLabel,
		progress:     progress,
		startButton:  startButton,
		pauseButton:  pauseButton,
		resetButton:  resetButton,
	}
	timer.Render(view.Model{
		Clock:    view.FormatClock(0),
		Status:   "Ready to start",
		Controls: view.Controls{StartEnabled: true, PauseLabel: "Pause"},
	})
	return timer
}

// Show displays the window.
func (timer *Window) Show() {
	timer.window.Show()
	timer.window.RequestFocus()
}

// SetCloseIntercept overrides the window close behaviour.
func (timer *Window) SetCloseIntercept(handler func()) {
	timer.window.SetCloseIntercept(handler)
}

// Hide hides the window.
func (timer *Window) Hide() {
	timer.window.Hide()
}

// ShowError reports a rejected intent.
func (timer *Window) ShowError(err error) {
	dialog.ShowError(err, timer.window)
}

// Render draws one frame. Must be called on the fyne goroutine.
func (timer *Window) Render(model view.Model) {
	timer.clockText.Text = model.Clock
	timer.clockText.Refresh()
	timer.statusLabel.SetText(model.Status)
	timer.counterLabel.SetText(model.Counter)
	timer.progress.SetValue(model.Progress)

	setEnabled(timer.startButton, model.Controls.StartEnabled)
	setEnabled(timer.pauseButton, model.Controls.PauseEnabled)
	setEnabled(timer.resetButton, model.Controls.ResetEnabled)

	timer.pauseButton.SetText(model.Controls.PauseLabel)
	if model.Controls.PauseLabel == "Resume" {
		timer.pauseButton.SetIcon(theme.MediaPlayIcon())
	} else {
		timer.pauseButton.SetIcon(theme.MediaPauseIcon())
	}
}

func setEnabled(button *widget.Button, enabled bool) {
	if enabled {
		button.Enable()
		return
	}
	button.Disable()
}

func invoke(handler func()) func() {
	return func() {
		if handler != nil {
			handler()
		}
	}
}
