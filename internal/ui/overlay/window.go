package overlay

import (
	"image/color"

	"deepwork/internal/ui/view"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// Config defines overlay visuals.
type Config struct {
	Opacity uint8
	Title   string
	Message string
}

// DefaultConfig returns the completion notice shown after the last session.
func DefaultConfig() Config {
	return Config{
		Opacity: 230,
		Title:   view.CompletionTitle,
		Message: view.CompletionMessage,
	}
}

// Window is the undecorated completion notice.
type Window struct {
	window       fyne.Window
	config       Config
	background   *canvas.Rectangle
	titleLabel   *canvas.Text
	messageLabel *widget.Label
	counterLabel *canvas.Text
	newButton    *widget.Button
	closeButton  *widget.Button
	onNew        func()
}

const (
	overlayWidthFraction  = float32(0.28)
	overlayHeightFraction = float32(0.24)
	defaultScreenWidth    = float32(1920)
	defaultScreenHeight   = float32(1080)
)

var (
	accentColor = color.NRGBA{R: 232, G: 190, B: 66, A: 255}
	textColor   = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

type splashWindowDriver interface {
	CreateSplashWindow() fyne.Window
}

// New creates the completion overlay. It stays hidden until Show.
func New(app fyne.App, config Config) *Window {
	window := app.NewWindow(config.Title)
	if driver, ok := app.Driver().(splashWindowDriver); ok {
		window = driver.CreateSplashWindow()
	}
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}
	window.SetPadded(false)

	background := canvas.NewRectangle(color.NRGBA{A: config.Opacity})

	titleLabel := canvas.NewText(config.Title, accentColor)
	titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	titleLabel.TextSize = 21

	messageLabel := widget.NewLabel(config.Message)
	messageLabel.Wrapping = fyne.TextWrapWord

	counterLabel := canvas.NewText("", textColor)
	counterLabel.TextSize = 14

	newButton := widget.NewButton(view.NewSessionLabel, nil)
	newButton.Importance = widget.HighImportance
	closeButton := widget.NewButton("Close", nil)

	content := container.New(&panelLayout{}, titleLabel, messageLabel, counterLabel, container.NewHBox(newButton, closeButton))
	window.SetContent(container.NewStack(background, content))

	overlay := &Window{
		window:       window,
		config:       config,
		background:   background,
		titleLabel:   titleLabel,
		messageLabel: messageLabel,
		counterLabel: counterLabel,
		newButton:    newButton,
		closeButton:  closeButton,
	}
	newButton.OnTapped = func() {
		overlay.Hide()
		if overlay.onNew != nil {
			overlay.onNew()
		}
	}
	closeButton.OnTapped = overlay.Hide

	return overlay
}

// SetOnNewSession sets the handler for the new-session button.
func (overlay *Window) SetOnNewSession(handler func()) {
	overlay.onNew = handler
}

// Show displays the notice for a finished run.
func (overlay *Window) Show(model view.Model) {
	overlay.counterLabel.Text = model.Counter
	overlay.counterLabel.Refresh()
	overlay.resizeToScreenFraction()
	overlay.window.Show()
	overlay.window.RequestFocus()
}

// Hide closes the notice.
func (overlay *Window) Hide() {
	overlay.window.Hide()
}

// UpdateConfig updates overlay visuals.
func (overlay *Window) UpdateConfig(config Config) {
	overlay.config = config
	overlay.background.FillColor = color.NRGBA{A: config.Opacity}
	overlay.titleLabel.Text = config.Title
	overlay.messageLabel.SetText(config.Message)
	canvas.Refresh(overlay.background)
	overlay.titleLabel.Refresh()
}

func (overlay *Window) resizeToScreenFraction() {
	screenSize := fyne.NewSize(defaultScreenWidth, defaultScreenHeight)
	canvasSize := overlay.window.Canvas().Size()
	// A screen-sized canvas is the best monitor estimate fyne exposes.
	if canvasSize.Width >= 1024 && canvasSize.Height >= 720 {
		screenSize = canvasSize
	}

	width := screenSize.Width * overlayWidthFraction
	height := screenSize.Height * overlayHeightFraction
	minSize := overlay.window.Content().MinSize()
	if width < minSize.Width {
		width = minSize.Width
	}
	if height < minSize.Height {
		height = minSize.Height
	}

	overlay.window.Resize(fyne.NewSize(width, height))
	overlay.window.CenterOnScreen()
}

// panelLayout stacks title, message and counter from the top and pins the
// button row to the bottom edge.
type panelLayout struct{}

func (layout *panelLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	if len(objects) < 4 {
		return
	}
	title, message, counter, buttons := objects[0], objects[1], objects[2], objects[3]

	pad := size.Height * 0.06
	availableWidth := size.Width - pad*2
	if availableWidth < 0 {
		availableWidth = 0
	}

	titleSize := title.MinSize()
	title.Move(fyne.NewPos(pad, pad))
	title.Resize(fyne.NewSize(availableWidth, titleSize.Height))

	messageY := pad + titleSize.Height + 6
	messageHeight := message.MinSize().Height
	message.Move(fyne.NewPos(pad, messageY))
	message.Resize(fyne.NewSize(availableWidth, messageHeight))

	counterSize := counter.MinSize()
	counter.Move(fyne.NewPos(pad, messageY+messageHeight+8))
	counter.Resize(fyne.NewSize(availableWidth, counterSize.Height))

	buttonSize := buttons.MinSize()
	buttonY := size.Height - pad - buttonSize.Height
	if buttonY < 0 {
		buttonY = 0
	}
	buttonX := size.Width - pad - buttonSize.Width
	if buttonX < 0 {
		buttonX = 0
	}
	buttons.Move(fyne.NewPos(buttonX, buttonY))
	buttons.Resize(buttonSize)
}

func (layout *panelLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	if len(objects) < 4 {
		return fyne.NewSize(0, 0)
	}
	width := float32(0)
	height := float32(40)
	for _, object := range objects {
		size := object.MinSize()
		if size.Width > width {
			width = size.Width
		}
		height += size.Height
	}
	return fyne.NewSize(width+20, height)
}
