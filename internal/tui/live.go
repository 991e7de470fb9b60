// Package tui plays back a computed qubit trajectory in the terminal.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/averyparr/qpulse/internal/quantum"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

// Playback holds a precomputed trajectory to animate. Times and States
// must have equal length; States are lab-frame qubit states.
type Playback struct {
	Title  string
	Times  []float64
	States []quantum.State
}

type blochPoint struct {
	x, y, z float64
}

type model struct {
	title string
	times []float64
	pops  []float64
	bloch []blochPoint

	idx     int
	playing bool
	speed   int

	width  int
	height int
}

func newModel(pb Playback) model {
	pops := make([]float64, len(pb.States))
	bloch := make([]blochPoint, len(pb.States))
	for i, s := range pb.States {
		pops[i] = s.Prob(1)
		bloch[i] = blochFromState(s)
	}
	return model{
		title:   pb.Title,
		times:   pb.Times,
		pops:    pops,
		bloch:   bloch,
		playing: true,
		speed:   1,
		width:   80,
		height:  24,
	}
}

// blochFromState projects a two-level state onto the Bloch sphere.
func blochFromState(s quantum.State) blochPoint {
	if len(s) < 2 {
		return blochPoint{}
	}
	c := complexconj(s[0]) * s[1]
	return blochPoint{
		x: 2 * real(c),
		y: 2 * imag(c),
		z: real(complexconj(s[0])*s[0] - complexconj(s[1])*s[1]),
	}
}

func complexconj(c complex128) complex128 {
	return complex(real(c), -imag(c))
}

func (m model) Init() tea.Cmd { return tick() }

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(33*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.playing = !m.playing
			return m, nil
		case "r":
			m.idx = 0
			m.playing = true
			return m, nil
		case "+", "=":
			if m.speed < 16 {
				m.speed *= 2
			}
			return m, nil
		case "-":
			if m.speed > 1 {
				m.speed /= 2
			}
			return m, nil
		case "right":
			m.idx = min(m.idx+1, len(m.times)-1)
			return m, nil
		case "left":
			m.idx = max(m.idx-1, 0)
			return m, nil
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if m.playing {
			m.idx += m.speed
			if m.idx >= len(m.times)-1 {
				m.idx = len(m.times) - 1
				m.playing = false
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m model) View() string {
	if len(m.times) == 0 {
		return dim.Render("\n   no trajectory\n")
	}

	var b strings.Builder

	statusIcon := green.Render("●")
	statusText := green.Render("playing")
	if !m.playing {
		statusIcon = yellow.Render("○")
		statusText = yellow.Render("paused")
	}
	b.WriteString(fmt.Sprintf("\n   %s %s  %s  %s\n",
		statusIcon, cyan.Render(m.title), statusText, dim.Render(fmt.Sprintf("%dx", m.speed))))

	t := m.times[m.idx]
	duration := m.times[len(m.times)-1]
	progress := 0.0
	if duration > 0 {
		progress = t / duration
	}
	barWidth := 40
	filled := int(progress * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}
	bar := cyan.Render(strings.Repeat("━", filled)) + dimmer.Render(strings.Repeat("─", barWidth-filled))
	b.WriteString(fmt.Sprintf("   %s %s\n\n", bar, dim.Render(fmt.Sprintf("t=%.2f/%.0f", t, duration))))

	chartWidth := m.width - 14
	if chartWidth < 40 {
		chartWidth = 40
	}
	chartHeight := m.height - 14
	if chartHeight < 6 {
		chartHeight = 6
	}
	if chartHeight > 12 {
		chartHeight = 12
	}
	graph := asciigraph.Plot(m.pops[:m.idx+1],
		asciigraph.Height(chartHeight),
		asciigraph.Width(chartWidth),
		asciigraph.Caption("excited population"),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(1),
	)
	for _, line := range strings.Split(graph, "\n") {
		b.WriteString("   " + cyan.Render(line) + "\n")
	}

	pt := m.bloch[m.idx]
	b.WriteString("\n")
	b.WriteString(m.blochBar("⟨X⟩", pt.x, green))
	b.WriteString(m.blochBar("⟨Y⟩", pt.y, yellow))
	b.WriteString(m.blochBar("⟨Z⟩", pt.z, magenta))

	b.WriteString(fmt.Sprintf("\n   %s%s\n",
		dim.Render("P(1)="),
		white.Render(fmt.Sprintf("%.4f", m.pops[m.idx]))))

	b.WriteString("\n" + dim.Render("   space pause  ←→ step  ± speed  r restart  q quit") + "\n")

	return b.String()
}

// blochBar renders a signed component in [-1, 1] centred on zero.
func (m model) blochBar(label string, v float64, style lipgloss.Style) string {
	half := 14
	if v > 1 {
		v = 1
	}
	if v < -1 {
		v = -1
	}
	n := int(v * float64(half))

	var left, right string
	if n >= 0 {
		left = strings.Repeat(" ", half)
		right = strings.Repeat("█", n) + strings.Repeat(" ", half-n)
	} else {
		left = strings.Repeat(" ", half+n) + strings.Repeat("█", -n)
		right = strings.Repeat(" ", half)
	}
	return fmt.Sprintf("   %s %s%s%s %s\n",
		dim.Render(label),
		style.Render(left),
		dimmer.Render("│"),
		style.Render(right),
		white.Render(fmt.Sprintf("%+.3f", v)))
}

// Run animates the playback until the user quits.
func Run(pb Playback) error {
	p := tea.NewProgram(newModel(pb), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
