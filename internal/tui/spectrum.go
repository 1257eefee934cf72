// SPDX-License-Identifier: MIT
// Package tui renders the live spectrum view in the terminal. The model
// polls the analysis side through a callback on every tick, so the TUI
// never holds references into the analyzer's buffers.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5"))

	barStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065"))

	beatStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F87")).
			Bold(true)
)

// Snapshot is one rendered frame's worth of analysis state. The Bars slice
// is owned by the TUI; the poll callback fills it in place.
type Snapshot struct {
	Bars   []float64 // per-bucket signal strength, already bucketed to bar count
	Volume float64   // RMS volume, 0..1-ish
	Beat   bool      // beat detected on this frame
	Time   float64   // seconds since the iterator started
	Frame  uint32    // frame counter
}

// PollFunc fills the snapshot with the latest analysis state.
type PollFunc func(s *Snapshot)

const (
	tickInterval = 33 * time.Millisecond // ~30 fps
	beatHold     = 150 * time.Millisecond
)

type tickMsg time.Time

// SpectrumModel is the Bubble Tea model for the live spectrum view.
type SpectrumModel struct {
	poll PollFunc
	snap Snapshot

	width  int
	height int
	ready  bool

	beatUntil time.Time // keeps the beat marker visible long enough to see
}

// NewSpectrumModel creates the model. The poll callback runs on every tick
// from the TUI goroutine.
func NewSpectrumModel(poll PollFunc) SpectrumModel {
	return SpectrumModel{poll: poll}
}

func (m SpectrumModel) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m SpectrumModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resizeBars()

	case tickMsg:
		if m.ready {
			m.poll(&m.snap)
			if m.snap.Beat {
				m.beatUntil = time.Now().Add(beatHold)
			}
		}
		return m, tick()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	}

	return m, nil
}

// resizeBars re-fits the bar slice to the terminal width, leaving room for
// a border column on each side.
func (m *SpectrumModel) resizeBars() {
	bars := m.width - 2
	if bars < 8 {
		bars = 8
	}
	if len(m.snap.Bars) != bars {
		m.snap.Bars = make([]float64, bars)
	}
}

func (m SpectrumModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var sb strings.Builder

	title := titleStyle.Render("Spectrum")
	if time.Now().Before(m.beatUntil) {
		title += " " + beatStyle.Render("● BEAT")
	}
	sb.WriteString(title)
	sb.WriteString("\n\n")

	sb.WriteString(barStyle.Render(m.renderBars()))
	sb.WriteString("\n")
	sb.WriteString(m.renderVolume())
	sb.WriteString("\n\n")

	sb.WriteString(infoStyle.Render(fmt.Sprintf(
		"frame %d • t=%.1fs • q: Quit", m.snap.Frame, m.snap.Time)))

	return sb.String()
}

// blocks from empty to full, eighth steps.
var levels = []rune(" ▁▂▃▄▅▆▇█")

// renderBars draws each bucket as a column of block characters. Bar height
// is scaled against the loudest bucket in the snapshot so the display stays
// readable across quiet and loud input.
func (m SpectrumModel) renderBars() string {
	rows := m.height - 7
	if rows < 4 {
		rows = 4
	}

	max := 0.0
	for _, v := range m.snap.Bars {
		if v > max {
			max = v
		}
	}
	if max == 0 {
		max = 1
	}

	var sb strings.Builder
	for row := rows; row > 0; row-- {
		for _, v := range m.snap.Bars {
			// height of this bar in eighths of a row
			h := v / max * float64(rows)
			switch {
			case h >= float64(row):
				sb.WriteRune(levels[8])
			case h > float64(row-1):
				frac := int((h - float64(row-1)) * 8)
				sb.WriteRune(levels[frac])
			default:
				sb.WriteRune(levels[0])
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m SpectrumModel) renderVolume() string {
	width := len(m.snap.Bars)
	filled := int(m.snap.Volume * float64(width) * 4) // volume rarely nears 1.0
	if filled > width {
		filled = width
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return infoStyle.Render("vol ") + barStyle.Render(bar)
}
