package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tuner/internal/analysis"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1).
			Bold(true)

	noteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065")).
			Bold(true)

	inTuneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065")).
			Bold(true)

	offPitchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#D08770"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B6B6B"))
)

// meterWidth is the number of cells on each side of the cents meter.
const meterWidth = 25

// inTuneCents is the deviation under which the display reads in tune.
const inTuneCents = 5.0

// keyMap defines the tuner screen key bindings.
type keyMap struct {
	Tone key.Binding
	Quit key.Binding
}

var keys = keyMap{
	Tone: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "reference tone"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// tickMsg drives the ~60 Hz polling of the reading source.
type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(16*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// ToneToggler starts and stops reference tone playback, implemented by
// the audio engine.
type ToneToggler interface {
	StartTone(frequency float64) error
	StopTone() error
}

// Model is the Bubble Tea model for the live tuner display.
type Model struct {
	source *analysis.ReadingSource
	tone   ToneToggler

	reading     analysis.Reading
	hasReading  bool
	tonePlaying bool
	err         error
}

// NewModel creates a tuner display over the given reading source. tone
// may be nil when no output device is available.
func NewModel(source *analysis.ReadingSource, tone ToneToggler) Model {
	return Model{source: source, tone: tone}
}

// Init starts the polling loop.
func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles key presses and poll ticks.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			if m.tonePlaying && m.tone != nil {
				m.tone.StopTone()
			}
			return m, tea.Quit
		case key.Matches(msg, keys.Tone):
			m = m.toggleTone()
		}
	case tickMsg:
		m.reading, m.hasReading = m.source.Latest()
		return m, tick()
	}
	return m, nil
}

func (m Model) toggleTone() Model {
	if m.tone == nil {
		return m
	}
	if m.tonePlaying {
		if err := m.tone.StopTone(); err != nil {
			m.err = err
			return m
		}
		m.tonePlaying = false
		return m
	}
	// Play the reference A4 as configured.
	if err := m.tone.StartTone(m.source.Calculator().MidiToFrequency(69)); err != nil {
		m.err = err
		return m
	}
	m.tonePlaying = true
	return m
}

// View renders the note, the cents meter and the raw reading.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("tuner"))
	b.WriteString(fmt.Sprintf("  A4 = %.1f Hz", m.source.Calculator().ReferenceA4()))
	if m.tonePlaying {
		b.WriteString(dimStyle.Render("  [tone]"))
	}
	b.WriteString("\n\n")

	if !m.hasReading {
		b.WriteString(noteStyle.Render("—"))
		b.WriteString("\n")
		b.WriteString(renderMeter(0, false))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("0.00 Hz"))
	} else {
		b.WriteString(noteStyle.Render(fmt.Sprintf("%s%d", m.reading.Note, m.reading.Octave)))
		centsStyle := offPitchStyle
		if math.Abs(m.reading.Cents) <= inTuneCents {
			centsStyle = inTuneStyle
		}
		b.WriteString(centsStyle.Render(fmt.Sprintf("  %+.1f cents", m.reading.Cents)))
		b.WriteString("\n")
		b.WriteString(renderMeter(m.reading.Cents, true))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(fmt.Sprintf("%.2f Hz  conf %.2f", m.reading.Frequency, m.reading.Confidence)))
	}

	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%s · %s",
		keys.Tone.Help().Key+" "+keys.Tone.Help().Desc,
		keys.Quit.Help().Key+" "+keys.Quit.Help().Desc)))
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(offPitchStyle.Render(m.err.Error()))
	}
	b.WriteString("\n")

	return b.String()
}

// renderMeter draws the cents needle: 50 cents full scale each way.
func renderMeter(cents float64, active bool) string {
	cells := make([]rune, 2*meterWidth+1)
	for i := range cells {
		cells[i] = '·'
	}
	cells[meterWidth] = '|'

	if active {
		pos := meterWidth + int(math.Round(cents/50.0*meterWidth))
		if pos < 0 {
			pos = 0
		}
		if pos > 2*meterWidth {
			pos = 2 * meterWidth
		}
		cells[pos] = '●'
	}

	return string(cells)
}
