package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-netviz/pkg/explorer"
	"github.com/dd0wney/cluso-netviz/pkg/graphmodel"
	"github.com/dd0wney/cluso-netviz/pkg/health"
	"github.com/dd0wney/cluso-netviz/pkg/render"
	"github.com/dd0wney/cluso-netviz/pkg/viewstate"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF79C6")).
			PaddingLeft(1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8F8F2")).
			Background(lipgloss.Color("#44475A")).
			PaddingLeft(1)

	errorBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#FF5555")).
			Foreground(lipgloss.Color("#FF5555")).
			Padding(1, 2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4")).
			PaddingLeft(1)
)

// chrome is the number of rows taken by title, status and help.
const chrome = 3

type keyMap struct {
	Quit    key.Binding
	Retry   key.Binding
	Help    key.Binding
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Fit     key.Binding
	Layout  key.Binding
	Center  key.Binding
	Clear   key.Binding
	Isol    key.Binding
	ZoomIn  key.Binding
	ZoomOut key.Binding
}

var keys = keyMap{
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Retry:   key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "retry view")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "pan up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "pan down")),
	Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "pan left")),
	Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "pan right")),
	Fit:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "fit")),
	Layout:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "re-layout")),
	Center:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "center selection")),
	Clear:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear selection")),
	Isol:    key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "isolate")),
	ZoomIn:  key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
	ZoomOut: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "zoom out")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Fit, k.Layout, k.Isol, k.Clear, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.ZoomIn, k.ZoomOut, k.Fit, k.Center},
		{k.Layout, k.Isol, k.Clear},
		{k.Retry, k.Help, k.Quit},
	}
}

// panStep is the keyboard pan distance in canvas pixels.
const panStep = 8

type frameMsg time.Time

func frameCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

type model struct {
	ex       *explorer.Explorer
	canvas   *render.TerminalCanvas
	health   *health.Reporter
	interval time.Duration
	title    string

	help    help.Model
	keys    keyMap
	spinner spinner.Model

	width, height int
	frame         string
	message       string
	messageErr    bool
}

func newModel(ex *explorer.Explorer, canvas *render.TerminalCanvas, title string, fps int) model {
	if fps <= 0 {
		fps = 30
	}
	return model{
		ex:       ex,
		canvas:   canvas,
		interval: time.Second / time.Duration(fps),
		title:    title,
		help:     help.New(),
		keys:     keys,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, frameCmd(m.interval))
}

// graphRows is the height of the drawing area in terminal rows.
func (m model) graphRows() int {
	return max(0, m.height-chrome)
}

// toCanvas maps a terminal cell to the center of its dot block in canvas
// pixels. The graph starts on the second row.
func toCanvas(col, row int) graphmodel.Point {
	return graphmodel.Point{
		X: float64(col*render.CellWidth) + render.CellWidth/2.0,
		Y: float64((row-1)*render.CellHeight) + render.CellHeight/2.0,
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		w, h := render.TerminalViewport(m.width, m.graphRows())
		m.ex.Resize(w, h)

	case frameMsg:
		// Frame errors surface through the surface state and its panel.
		if scene, err := m.ex.Frame(time.Time(msg)); err == nil && scene != nil {
			m.frame = m.canvas.String()
		}
		reportHealth(m.ex, m.health)
		return m, frameCmd(m.interval)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		m.mouse(msg)

	case tea.KeyMsg:
		return m.key(msg)
	}
	return m, nil
}

func (m *model) mouse(msg tea.MouseMsg) {
	in := m.ex.Input()
	if msg.Y < 1 || msg.Y > m.graphRows() {
		in.PointerLeave()
		return
	}
	p := toCanvas(msg.X, msg.Y)
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		in.Wheel(p, 1)
	case msg.Button == tea.MouseButtonWheelDown:
		in.Wheel(p, -1)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		in.PointerDown(p)
	case msg.Action == tea.MouseActionRelease:
		in.PointerUp(p)
	case msg.Action == tea.MouseActionMotion:
		in.PointerMove(p)
	}
}

func (m model) key(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cam := m.ex.Camera()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Retry):
		if m.ex.Retry() {
			m.setMessage("retrying the graph view")
		}
	case key.Matches(msg, m.keys.Up):
		cam.PanBy(0, panStep)
	case key.Matches(msg, m.keys.Down):
		cam.PanBy(0, -panStep)
	case key.Matches(msg, m.keys.Left):
		cam.PanBy(panStep, 0)
	case key.Matches(msg, m.keys.Right):
		cam.PanBy(-panStep, 0)
	default:
		a, err := m.ex.Key(msg.String())
		switch {
		case errors.Is(err, viewstate.ErrNoSelection):
			m.setErrorText("select a node first")
		case err != nil:
			m.setError(err)
		case a != "":
			m.setMessage(string(a))
		}
	}
	return m, nil
}

func (m *model) setMessage(s string) {
	m.message, m.messageErr = s, false
}

func (m *model) setError(err error) {
	m.setErrorText(err.Error())
}

func (m *model) setErrorText(s string) {
	m.message, m.messageErr = s, true
}

func (m model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render(m.title))
	s.WriteString("\n")

	surface := m.ex.Surface()
	switch surface.State() {
	case render.Failed:
		box := errorBoxStyle.Width(max(20, m.width-6)).Render(surface.Message() + "\n\nPress R to retry.")
		s.WriteString(lipgloss.Place(m.width, m.graphRows(), lipgloss.Center, lipgloss.Center, box))
	case render.Initialized:
		s.WriteString(lipgloss.NewStyle().Height(m.graphRows()).MaxHeight(m.graphRows()).Render(m.frame))
	default:
		s.WriteString(lipgloss.Place(m.width, m.graphRows(), lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" preparing view"))
	}
	s.WriteString("\n")
	s.WriteString(statusStyle.Width(m.width).Render(m.status()))
	s.WriteString("\n")
	s.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return s.String()
}

func (m model) status() string {
	var parts []string
	g := m.ex.Model()
	parts = append(parts, fmt.Sprintf("%d nodes · %d edges", g.Len(), g.EdgeCount()))

	if p := m.ex.LayoutProgress(); p.IsRunning {
		parts = append(parts, fmt.Sprintf("%s layout %3.0f%%", m.spinner.View(), p.Progress*100))
	}
	parts = append(parts, fmt.Sprintf("zoom %.2fx", m.ex.Camera().Transform().Scale))

	view := m.ex.View()
	if id := view.Selected(); id != "" {
		label := id
		if n, ok := g.Node(id); ok && n.Label != "" {
			label = n.Label
		}
		sel := "selected " + label
		if view.Isolation().Active {
			sel += " (isolated)"
		}
		parts = append(parts, sel)
	} else if id := view.Hovered(); id != "" {
		parts = append(parts, "over "+id)
	}

	if m.message != "" {
		if m.messageErr {
			parts = append(parts, errorStyle.Render(m.message))
		} else {
			parts = append(parts, m.message)
		}
	}
	return strings.Join(parts, " │ ")
}
