// Package terminal is the bubbletea front end for the session scheduler.
package terminal

import (
	"fmt"
	"strconv"
	"strings"

	"deepwork/internal/core/model"
	"deepwork/internal/core/scheduler"
	"deepwork/internal/ui/view"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Engine is the set of scheduler intents the terminal forwards.
type Engine interface {
	Configure(config model.SessionConfig) error
	Start() error
	PauseResume()
	Reset()
	Snapshot() scheduler.Snapshot
	Config() (model.SessionConfig, bool)
}

type snapshotMsg scheduler.Snapshot

type closedMsg struct{}

type mode int

const (
	modeTimer mode = iota
	modeConfigure
)

const (
	fieldWork = iota
	fieldBreak
	fieldSessions
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Work time (min)",
	"Break time (min)",
	"Sessions",
}

// Model is the bubbletea model for one terminal session.
type Model struct {
	engine       Engine
	updates      <-chan scheduler.Snapshot
	onConfigured func(model.SessionConfig)
	styles       Styles

	snapshot scheduler.Snapshot
	mode     mode
	inputs   [fieldCount]textinput.Model
	focus    int
	bar      progress.Model
	err      error
}

// New creates the terminal model. When engine has no configuration yet the
// model opens on the configuration form prefilled with defaults.
func New(engine Engine, updates <-chan scheduler.Snapshot, defaults model.SessionConfig, onConfigured func(model.SessionConfig)) *Model {
	m := &Model{
		engine:       engine,
		updates:      updates,
		onConfigured: onConfigured,
		styles:       NewStyles(),
		snapshot:     engine.Snapshot(),
		bar:          progress.New(progress.WithGradient("#8aadf4", "#e8be42"), progress.WithoutPercentage()),
	}
	m.bar.Width = 40

	if current, ok := engine.Config(); ok {
		defaults = current
	}
	values := [fieldCount]int{defaults.WorkSeconds / 60, defaults.BreakSeconds / 60, defaults.TotalSessions}
	for i := range m.inputs {
		input := textinput.New()
		input.CharLimit = 4
		input.Width = 6
		input.Prompt = ""
		input.SetValue(strconv.Itoa(values[i]))
		m.inputs[i] = input
	}

	if _, ok := engine.Config(); !ok {
		m.openForm()
	}
	return m
}

// Init starts listening for scheduler snapshots.
func (m *Model) Init() tea.Cmd {
	if m.mode == modeConfigure {
		return tea.Batch(waitForSnapshot(m.updates), textinput.Blink)
	}
	return waitForSnapshot(m.updates)
}

func waitForSnapshot(updates <-chan scheduler.Snapshot) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		snapshot, ok := <-updates
		if !ok {
			return closedMsg{}
		}
		return snapshotMsg(snapshot)
	}
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.snapshot = scheduler.Snapshot(msg)
		return m, waitForSnapshot(m.updates)

	case closedMsg:
		return m, tea.Quit

	case tea.WindowSizeMsg:
		width := msg.Width - 12
		if width > 60 {
			width = 60
		}
		if width < 10 {
			width = 10
		}
		m.bar.Width = width
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.mode == modeConfigure {
			return m.updateForm(msg)
		}
		return m.updateTimer(msg)
	}

	return m, nil
}

func (m *Model) updateTimer(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	finished := m.snapshot.Phase == scheduler.PhaseFinished

	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit

	case "s", "enter":
		if finished {
			m.engine.Reset()
			m.refresh()
			return m, m.openForm()
		}
		if _, ok := m.engine.Config(); !ok {
			return m, m.openForm()
		}
		m.err = m.engine.Start()
		m.refresh()

	case " ", "p":
		m.engine.PauseResume()
		m.refresh()

	case "r":
		m.engine.Reset()
		m.err = nil
		m.refresh()

	case "c", "n":
		if m.snapshot.Phase.Active() {
			return m, nil
		}
		if finished {
			m.engine.Reset()
			m.refresh()
		}
		return m, m.openForm()
	}

	return m, nil
}

func (m *Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if _, ok := m.engine.Config(); ok {
			m.closeForm()
			return m, nil
		}
		return m, tea.Quit

	case "tab", "down":
		return m, m.focusField((m.focus + 1) % fieldCount)

	case "shift+tab", "up":
		return m, m.focusField((m.focus + fieldCount - 1) % fieldCount)

	case "enter":
		if m.focus < fieldCount-1 {
			return m, m.focusField(m.focus + 1)
		}
		m.submit()
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// submit hands all three values over at once, then starts the run.
func (m *Model) submit() {
	config, err := model.ParseMinutes(
		m.inputs[fieldWork].Value(),
		m.inputs[fieldBreak].Value(),
		m.inputs[fieldSessions].Value(),
	)
	if err != nil {
		m.err = err
		return
	}
	if err := m.engine.Configure(config); err != nil {
		m.err = err
		return
	}
	if m.onConfigured != nil {
		m.onConfigured(config)
	}

	m.closeForm()
	m.err = m.engine.Start()
	m.refresh()
}

func (m *Model) openForm() tea.Cmd {
	m.mode = modeConfigure
	m.err = nil
	return m.focusField(fieldWork)
}

func (m *Model) closeForm() {
	m.mode = modeTimer
	m.err = nil
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
}

func (m *Model) focusField(field int) tea.Cmd {
	m.focus = field
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	return m.inputs[field].Focus()
}

func (m *Model) refresh() {
	m.snapshot = m.engine.Snapshot()
}

// View renders the model.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(strings.TrimSpace(view.Title)))
	b.WriteString("\n")

	if m.mode == modeConfigure {
		b.WriteString(m.viewForm())
	} else {
		b.WriteString(m.viewTimer())
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(m.styles.Error.Render(m.err.Error()))
	}
	b.WriteString("\n\n")
	b.WriteString(m.viewHelp())

	return m.styles.Frame.Render(b.String())
}

func (m *Model) viewTimer() string {
	frame := view.Render(m.snapshot)

	if frame.Finished {
		banner := m.styles.Banner.Render(view.CompletionTitle)
		return lipgloss.JoinVertical(lipgloss.Left,
			banner,
			"",
			view.CompletionMessage,
			m.styles.Counter.Render(frame.Counter),
		)
	}

	status := m.styles.Paused.Render(frame.Status)
	switch {
	case m.snapshot.IsPaused:
	case m.snapshot.Phase == scheduler.PhaseWork:
		status = m.styles.Work.Render(frame.Status)
	case m.snapshot.Phase == scheduler.PhaseBreak:
		status = m.styles.Break.Render(frame.Status)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Clock.Render(frame.Clock),
		status,
		m.styles.Counter.Render(frame.Counter),
		"",
		m.bar.ViewAs(frame.Progress),
	)
}

func (m *Model) viewForm() string {
	var rows []string
	for i, input := range m.inputs {
		label := m.styles.Label.Render(fieldLabels[i])
		if i == m.focus {
			label = m.styles.Focused.Render(fieldLabels[i])
		}
		rows = append(rows, label+input.View())
	}
	work, brk := model.Bounds.WorkSeconds.Minutes(), model.Bounds.BreakSeconds.Minutes()
	rows = append(rows, "", m.styles.Counter.Render(fmt.Sprintf(
		"work %d-%d min, break %d-%d min, %d-%d sessions",
		work.Min, work.Max,
		brk.Min, brk.Max,
		model.Bounds.TotalSessions.Min, model.Bounds.TotalSessions.Max,
	)))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) viewHelp() string {
	type hint struct{ key, desc string }
	var hints []hint

	switch {
	case m.mode == modeConfigure:
		hints = []hint{{"tab", "next"}, {"enter", "start"}, {"esc", "back"}}
	case m.snapshot.Phase == scheduler.PhaseFinished:
		hints = []hint{{"s", "new session"}, {"r", "reset"}, {"q", "quit"}}
	case m.snapshot.Phase == scheduler.PhaseIdle:
		hints = []hint{{"s", "start"}, {"c", "configure"}, {"q", "quit"}}
	default:
		pause := "pause"
		if m.snapshot.IsPaused {
			pause = "resume"
		}
		hints = []hint{{"space", pause}, {"r", "reset"}, {"q", "quit"}}
	}

	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		parts = append(parts, m.styles.HelpKey.Render(h.key)+" "+m.styles.Help.Render(h.desc))
	}
	return strings.Join(parts, m.styles.Separator.Render(" • "))
}
