package terminal

import "github.com/charmbracelet/lipgloss"

var (
	gold    = lipgloss.Color("#e8be42")
	text    = lipgloss.Color("#cad3f5")
	subtle  = lipgloss.Color("#6e738d")
	green   = lipgloss.Color("#a6da95")
	blue    = lipgloss.Color("#8aadf4")
	red     = lipgloss.Color("#ed8796")
	surface = lipgloss.Color("#494d64")
)

// Styles holds the terminal front end styles.
type Styles struct {
	Frame     lipgloss.Style
	Title     lipgloss.Style
	Clock     lipgloss.Style
	Work      lipgloss.Style
	Break     lipgloss.Style
	Paused    lipgloss.Style
	Counter   lipgloss.Style
	Label     lipgloss.Style
	Focused   lipgloss.Style
	Error     lipgloss.Style
	Banner    lipgloss.Style
	Help      lipgloss.Style
	HelpKey   lipgloss.Style
	Separator lipgloss.Style
}

// NewStyles returns the default palette.
func NewStyles() Styles {
	return Styles{
		Frame: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(surface).
			Padding(1, 3),
		Title: lipgloss.NewStyle().
			Foreground(gold).
			Bold(true).
			MarginBottom(1),
		Clock: lipgloss.NewStyle().
			Foreground(text).
			Bold(true).
			Padding(0, 1),
		Work:    lipgloss.NewStyle().Foreground(blue).Bold(true),
		Break:   lipgloss.NewStyle().Foreground(green).Bold(true),
		Paused:  lipgloss.NewStyle().Foreground(subtle).Italic(true),
		Counter: lipgloss.NewStyle().Foreground(subtle),
		Label:   lipgloss.NewStyle().Foreground(text).Width(18),
		Focused: lipgloss.NewStyle().Foreground(gold).Bold(true).Width(18),
		Error:   lipgloss.NewStyle().Foreground(red),
		Banner: lipgloss.NewStyle().
			Foreground(gold).
			Bold(true).
			BorderStyle(lipgloss.DoubleBorder()).
			BorderForeground(gold).
			Padding(0, 2),
		Help:      lipgloss.NewStyle().Foreground(subtle),
		HelpKey:   lipgloss.NewStyle().Foreground(gold).Bold(true),
		Separator: lipgloss.NewStyle().Foreground(surface),
	}
}
