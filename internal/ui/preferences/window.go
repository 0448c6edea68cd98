package preferences

import (
	"fmt"

	"deepwork/internal/core/model"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Window collects a complete session configuration before a run starts.
type Window struct {
	window   fyne.Window
	settings Settings
	onSave   func(Settings)
	onCancel func()
	work     *widget.Entry
	brk      *widget.Entry
	sessions *widget.Entry
}

// New creates the session setup window.
func New(app fyne.App, settings Settings, onSave func(Settings)) *Window {
	window := app.NewWindow("Deep Work Session")

	work := widget.NewEntry()
	brk := widget.NewEntry()
	sessions := widget.NewEntry()

	work.Validator = minutesValidator(model.Bounds.WorkSeconds)
	brk.Validator = minutesValidator(model.Bounds.BreakSeconds)
	sessions.Validator = countValidator(model.Bounds.TotalSessions)

	form := container.NewVBox(
		widget.NewLabelWithStyle("New session", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewForm(
			widget.NewFormItem("Work time (min)", work),
			widget.NewFormItem("Break time (min)", brk),
			widget.NewFormItem("Sessions", sessions),
		),
		widget.NewLabel(boundsHint()),
	)

	startButton := widget.NewButton("Start", nil)
	startButton.Importance = widget.HighImportance
	cancelButton := widget.NewButton("Cancel", nil)
	buttons := container.NewHBox(startButton, layout.NewSpacer(), cancelButton)

	window.SetContent(container.NewBorder(nil, buttons, nil, nil, form))
	window.Resize(fyne.NewSize(360, 240))

	prefs := &Window{
		window:   window,
		onSave:   onSave,
		work:     work,
		brk:      brk,
		sessions: sessions,
	}
	prefs.UpdateSettings(settings)

	startButton.OnTapped = prefs.handleSave
	cancelButton.OnTapped = func() {
		window.Hide()
		if prefs.onCancel != nil {
			prefs.onCancel()
		}
	}
	window.SetCloseIntercept(cancelButton.OnTapped)

	return prefs
}

// Show displays the window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// SetOnCancel sets the handler invoked when the dialog is dismissed.
func (prefs *Window) SetOnCancel(handler func()) {
	prefs.onCancel = handler
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings Settings) {
	prefs.settings = settings
	workMinutes, breakMinutes := settings.Minutes()
	prefs.work.SetText(fmt.Sprintf("%d", workMinutes))
	prefs.brk.SetText(fmt.Sprintf("%d", breakMinutes))
	prefs.sessions.SetText(fmt.Sprintf("%d", settings.Sessions))
}

// handleSave hands the three values over atomically or reports why it cannot.
func (prefs *Window) handleSave() {
	settings, err := ParseSettings(prefs.work.Text, prefs.brk.Text, prefs.sessions.Text)
	if err != nil {
		dialog.ShowError(err, prefs.window)
		return
	}

	prefs.settings = settings
	prefs.window.Hide()
	if prefs.onSave != nil {
		prefs.onSave(settings)
	}
}

func minutesValidator(seconds model.Range) fyne.StringValidator {
	return func(text string) error {
		_, err := model.ParseMinutesField("minutes", text, seconds)
		return err
	}
}

func countValidator(r model.Range) fyne.StringValidator {
	return func(text string) error {
		_, err := model.ParseCount(model.FieldSessions, text, r)
		return err
	}
}

func boundsHint() string {
	work, brk := model.Bounds.WorkSeconds.Minutes(), model.Bounds.BreakSeconds.Minutes()
	return fmt.Sprintf("Work %d-%d min, break %d-%d min, %d-%d sessions",
		work.Min, work.Max,
		brk.Min, brk.Max,
		model.Bounds.TotalSessions.Min, model.Bounds.TotalSessions.Max)
}
