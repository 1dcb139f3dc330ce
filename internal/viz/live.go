package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/odestep/internal/dynamo"
)

const (
	historyCapacity = 400
	frameInterval   = time.Second / 30
	maxStepsPerTick = 1 << 12
)

type TickMsg time.Time

// LiveConfig describes what Live integrates and how it is shown.
type LiveConfig struct {
	Title   string
	Stepper dynamo.Stepper
	// Energy may be nil; the drift panel is then hidden.
	Energy             dynamo.Hamiltonian
	Position, Velocity int
	Until              float64
	StepsPerTick       int
}

// Live is a Bubble Tea model stepping an integrator on every frame.
type Live struct {
	cfg     LiveConfig
	canvas  *Canvas
	running bool
	done    bool

	x0, e0    float64
	steps     int
	positions []float64
	velocity  []float64
	drift     []float64
}

func NewLive(cfg LiveConfig) *Live {
	if cfg.StepsPerTick < 1 {
		cfg.StepsPerTick = 1
	}
	l := &Live{
		cfg:       cfg,
		canvas:    NewCanvas(40, 12),
		running:   true,
		x0:        cfg.Stepper.IndependentVariable(),
		positions: make([]float64, 0, historyCapacity),
		velocity:  make([]float64, 0, historyCapacity),
		drift:     make([]float64, 0, historyCapacity),
	}
	if cfg.Energy != nil {
		l.e0 = cfg.Energy.Energy(cfg.Stepper.Values())
	}
	l.sample()
	return l
}

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (l *Live) Init() tea.Cmd { return tick() }

func (l *Live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return l, tea.Quit
		case " ":
			l.running = !l.running
		case "+", "=":
			l.cfg.StepsPerTick = min(2*l.cfg.StepsPerTick, maxStepsPerTick)
		case "-", "_":
			l.cfg.StepsPerTick = max(l.cfg.StepsPerTick/2, 1)
		}
	case TickMsg:
		if l.running && !l.done {
			l.advance()
		}
		return l, tick()
	}
	return l, nil
}

// advance takes up to StepsPerTick steps, stopping after the first step
// that passes Until.
func (l *Live) advance() {
	forward := l.cfg.Stepper.StepSize() > 0
	for i := 0; i < l.cfg.StepsPerTick; i++ {
		l.cfg.Stepper.Step()
		l.steps++
		x := l.cfg.Stepper.IndependentVariable()
		if (forward && x > l.cfg.Until) || (!forward && x < l.cfg.Until) {
			l.done = true
			break
		}
		if !dynamo.State(l.cfg.Stepper.Values()).IsValid() {
			l.done = true
			break
		}
	}
	l.sample()
}

func (l *Live) sample() {
	y := l.cfg.Stepper.Values()
	l.positions = push(l.positions, y[l.cfg.Position])
	l.velocity = push(l.velocity, y[l.cfg.Velocity])
	if l.cfg.Energy != nil && l.e0 != 0 {
		l.drift = push(l.drift, math.Abs(l.cfg.Energy.Energy(y)-l.e0)/math.Abs(l.e0))
	}
}

func push(buf []float64, v float64) []float64 {
	if len(buf) == historyCapacity {
		copy(buf, buf[1:])
		buf = buf[:len(buf)-1]
	}
	return append(buf, v)
}

func (l *Live) Done() bool { return l.done }
func (l *Live) Steps() int { return l.steps }

func (l *Live) View() string {
	var s strings.Builder
	s.WriteString(HeaderStyle.Render(strings.ToUpper(l.cfg.Title)) + "\n")

	switch {
	case l.done:
		s.WriteString(StatusDone.Render("DONE"))
	case l.running:
		s.WriteString(StatusRunning.Render("RUNNING"))
	default:
		s.WriteString(StatusPaused.Render("PAUSED"))
	}
	s.WriteString("\n")

	if len(l.positions) > 1 {
		chart := asciigraph.Plot(l.positions,
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Caption("position"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	x := l.cfg.Stepper.IndependentVariable()
	span := l.cfg.Until - l.x0
	progress := 1.0
	if span != 0 {
		progress = (x - l.x0) / span
	}

	stats := []struct{ label, value string }{
		{"x", fmt.Sprintf("%.4f", x)},
		{"step", fmt.Sprintf("%g", l.cfg.Stepper.StepSize())},
		{"steps", fmt.Sprintf("%d", l.steps)},
		{"steps/frame", fmt.Sprintf("%d", l.cfg.StepsPerTick)},
		{"progress", ProgressBar(progress, 20)},
	}
	if n := len(l.drift); n > 0 {
		stats = append(stats,
			struct{ label, value string }{"energy drift", fmt.Sprintf("%.3e", l.drift[n-1])},
			struct{ label, value string }{"", Sparkline(l.drift, 30)},
		)
	}
	var side strings.Builder
	for _, st := range stats {
		side.WriteString(LabelStyle.Render(st.label) + ValueStyle.Render(st.value) + "\n")
	}

	l.canvas.Plot(l.positions, l.velocity)
	phase := canvasStyle.Render("phase\n" + l.canvas.String())

	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, phase, "  ", side.String()))
	s.WriteString(helpStyle.Render("\nspace: pause  +/-: speed  q: quit"))
	return s.String()
}
