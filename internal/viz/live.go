package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/physicslab/internal/dynamo"
	"github.com/san-kum/physicslab/internal/kernel"
	"github.com/san-kum/physicslab/internal/metrics"
	"github.com/san-kum/physicslab/internal/sim"
)

const (
	shaftHeight     = 20
	historyCapacity = 120
	maxStepsFrame   = 1024
)

type TickMsg time.Time

// Model is the Bubble Tea model of the live view.
type Model struct {
	k             *kernel.Kernel
	session       *sim.Session
	cfg           sim.Config
	state         dynamo.State
	top           float64
	stepsPerFrame uint32
	frameRate     int
	running       bool
	heights       []float64
	drift         *metrics.EnergyDrift
	err           error
}

// NewModel opens a session on k with the initial conditions of cfg.
func NewModel(k *kernel.Kernel, cfg sim.Config, frameRate int) (Model, error) {
	if err := cfg.Validate(); err != nil {
		return Model{}, err
	}
	sess, err := sim.Open(k.NewCaller(), cfg.Y0, cfg.Vy0)
	if err != nil {
		return Model{}, err
	}
	if frameRate <= 0 {
		frameRate = 30
	}

	m := Model{
		k:             k,
		session:       sess,
		cfg:           cfg,
		stepsPerFrame: cfg.StepsPerFrame,
		frameRate:     frameRate,
		running:       true,
		heights:       make([]float64, 0, historyCapacity),
		drift:         metrics.NewEnergyDrift(k.Gravity()),
	}
	m.top = apex(cfg.Y0, cfg.Vy0, k.Gravity())
	m.observe(dynamo.Initial(cfg.Y0, cfg.Vy0))
	return m, nil
}

// apex is the highest point reached by a mass launched from y0 at vy0.
func apex(y0, vy0, g float64) float64 {
	top := y0
	if vy0 > 0 && g < 0 {
		top += vy0 * vy0 / (-2 * g)
	}
	return math.Max(top, 1)
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.frameRate), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.session.Close()
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "+", "=":
			if m.stepsPerFrame < maxStepsFrame {
				m.stepsPerFrame *= 2
			}
		case "-":
			if m.stepsPerFrame > 1 {
				m.stepsPerFrame /= 2
			}
		}
	case TickMsg:
		if m.running && m.err == nil {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) step() {
	if err := m.session.Step(m.cfg.Dt, m.stepsPerFrame); err != nil {
		m.err = err
		return
	}
	s, err := m.session.State()
	if err != nil {
		m.err = err
		return
	}
	m.observe(s)
}

func (m *Model) observe(s dynamo.State) {
	m.state = s
	m.drift.OnStep(s)
	if len(m.heights) == historyCapacity {
		copy(m.heights, m.heights[1:])
		m.heights = m.heights[:historyCapacity-1]
	}
	m.heights = append(m.heights, s.Y)
}

func (m *Model) reset() {
	m.err = m.session.Reset(m.cfg.Y0, m.cfg.Vy0)
	m.heights = m.heights[:0]
	m.drift.Reset()
	m.stepsPerFrame = m.cfg.StepsPerFrame
	m.observe(dynamo.Initial(m.cfg.Y0, m.cfg.Vy0))
}

func (m Model) State() dynamo.State { return m.state }

func (m Model) View() string {
	shaft := shaftStyle.Render(m.renderShaft())

	status := runStyle.Render("RUNNING")
	if !m.running {
		status = pausedStyle.Render("PAUSED")
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("physicslab · free fall"))
	b.WriteString("\n")
	b.WriteString(status)
	b.WriteString("\n\n")
	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}
	row("t", fmt.Sprintf("%.3f s", m.state.T))
	row("y", fmt.Sprintf("%.3f m", m.state.Y))
	row("vy", fmt.Sprintf("%.3f m/s", m.state.Vy))
	row("steps", fmt.Sprintf("%d × %.4g s", m.stepsPerFrame, m.cfg.Dt))
	row("drift", fmt.Sprintf("%.3e", m.drift.Value()))

	if len(m.heights) > 1 {
		b.WriteString("\n")
		b.WriteString(graphStyle.Render(asciigraph.Plot(m.heights, asciigraph.Height(6), asciigraph.Width(36))))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("space pause · r reset · +/- speed · q quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top, shaft, statsStyle.Render(b.String()))
}

// renderShaft draws the mass in a vertical shaft scaled from 0 to the apex.
// Heights below zero are pinned to the bottom row.
func (m Model) renderShaft() string {
	row := shaftHeight - 1 - int(math.Round(m.state.Y/m.top*float64(shaftHeight-1)))
	row = max(0, min(shaftHeight-1, row))

	lines := make([]string, shaftHeight)
	for i := range lines {
		if i == row {
			lines[i] = " ● "
		} else {
			lines[i] = " │ "
		}
	}
	return strings.Join(lines, "\n")
}

// Run starts the live view and blocks until the user quits.
func Run(k *kernel.Kernel, cfg sim.Config, frameRate int) error {
	m, err := NewModel(k, cfg, frameRate)
	if err != nil {
		return err
	}
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if fm, ok := final.(Model); ok {
		fm.session.Close()
	}
	return err
}
