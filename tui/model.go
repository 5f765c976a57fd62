// Package tui is the terminal front end: it renders the engine state and
// feeds key presses into the desktop hardware's input registers. The engine
// ticks on the bubbletea event loop, which keeps the whole core
// single-threaded.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gruvbok/config"
	"gruvbok/desktop"
	"gruvbok/script"
	"gruvbok/sequencer"
)

// Engine ticks at ~60 Hz.
const tickInterval = 16 * time.Millisecond

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	activeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700"))
	inactiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	playheadStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")).Bold(true)
	cursorStyle   = lipgloss.NewStyle().Background(lipgloss.Color("#7D56F4"))
	ledStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4444")).Bold(true)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00AAFF"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Model drives one engine instance from the terminal.
type Model struct {
	engine *sequencer.Engine
	hw     *desktop.Hardware
	loader *script.Loader
	cfg    *config.Config

	songName string
	cursor   int // 0-15, the step the next toggle addresses
	message  string
}

// NewModel wires the TUI over an engine and its desktop hardware.
func NewModel(engine *sequencer.Engine, hw *desktop.Hardware, loader *script.Loader, cfg *config.Config, songName string) Model {
	return Model{
		engine:   engine,
		hw:       hw,
		loader:   loader,
		cfg:      cfg,
		songName: songName,
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.engine.Update()
		return m, tick()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.engine.Stop()
		return m, tea.Quit

	case " ":
		if m.engine.Playing() {
			m.engine.Stop()
			m.message = "stopped"
		} else {
			m.engine.Start()
			m.message = "playing"
		}

	case "left", "h":
		if m.cursor > 0 {
			m.cursor--
		}
	case "right", "l":
		if m.cursor < sequencer.StepsPerTrack-1 {
			m.cursor++
		}

	case "x", "enter":
		// A latched press; the engine toggles the step (and parameter-
		// locks the sliders) on its next poll.
		m.hw.PressButton(m.cursor)

	case "m":
		m.selectRotary(sequencer.PotMode, m.engine.CurrentMode()+1, sequencer.NumModes)
	case "M":
		m.selectRotary(sequencer.PotMode, m.engine.CurrentMode()-1, sequencer.NumModes)
	case "p":
		m.selectRotary(sequencer.PotPattern, m.engine.CurrentPattern()+1, sequencer.PatternsPerMode)
	case "P":
		m.selectRotary(sequencer.PotPattern, m.engine.CurrentPattern()-1, sequencer.PatternsPerMode)
	case "t":
		m.nudgeTrack(1)
	case "T":
		m.nudgeTrack(-1)

	case "+", "=":
		m.hw.NudgeRotaryPot(sequencer.PotTempo, 4)
	case "-", "_":
		m.hw.NudgeRotaryPot(sequencer.PotTempo, -4)

	case "a":
		m.hw.NudgeSliderPot(0, 4)
	case "z":
		m.hw.NudgeSliderPot(0, -4)
	case "s":
		m.hw.NudgeSliderPot(1, 4)
	case "w":
		m.hw.NudgeSliderPot(1, -4)
	case "d":
		m.hw.NudgeSliderPot(2, 4)
	case "c":
		m.hw.NudgeSliderPot(2, -4)
	case "f":
		m.hw.NudgeSliderPot(3, 4)
	case "v":
		m.hw.NudgeSliderPot(3, -4)

	case "S":
		if m.cfg.SongFile == "" {
			m.message = "no song file configured"
			break
		}
		if err := m.engine.Song().Save(m.cfg.SongFile, m.songName, m.engine.Tempo()); err != nil {
			m.message = fmt.Sprintf("save failed: %v", err)
			m.engine.TriggerLEDPattern(sequencer.ErrorBlink)
		} else {
			m.message = "saved " + m.cfg.SongFile
			m.engine.ClearDirty()
			m.engine.TriggerLEDPattern(sequencer.Saving)
		}

	case "L":
		if m.cfg.SongFile == "" {
			m.message = "no song file configured"
			break
		}
		m.engine.TriggerLEDPattern(sequencer.Loading)
		name, tempo, err := m.engine.Song().Load(m.cfg.SongFile)
		if err != nil {
			m.message = fmt.Sprintf("load failed: %v", err)
			m.engine.TriggerLEDPattern(sequencer.ErrorBlink)
		} else {
			m.songName = name
			if tempo > 0 {
				m.engine.SetTempo(tempo)
			}
			m.message = "loaded " + m.cfg.SongFile
		}
	}

	return m, nil
}

// selectRotary writes the rotary register value whose bucket maps back to
// the wanted index.
func (m *Model) selectRotary(pot, index, buckets int) {
	if index < 0 || index >= buckets {
		return
	}
	// Midpoint of the bucket, so pot scaling resolves to index.
	m.hw.SetRotaryPot(pot, index*128/buckets+64/buckets)
}

func (m *Model) nudgeTrack(delta int) {
	if m.engine.CurrentMode() == sequencer.SongLayer {
		// R4 addresses the target mode while the song layer is up.
		m.selectRotary(sequencer.PotTrack, m.engine.TargetMode()-1+delta, sequencer.NumModes-1)
		return
	}
	m.selectRotary(sequencer.PotTrack, m.engine.CurrentTrack()+delta, sequencer.TracksPerPattern)
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("GRUVBOK") + "  ")
	if m.songName != "" {
		b.WriteString(m.songName)
	}
	b.WriteString("\n\n")

	led := "  "
	if m.hw.LED() {
		led = ledStyle.Render("● ")
	}
	transport := "stopped"
	if m.engine.Playing() {
		transport = "playing"
	}
	b.WriteString(fmt.Sprintf("%s%s  %d BPM  song step %d/%d\n",
		led, transport, m.engine.Tempo(),
		m.engine.SongModeStep()+1, m.engine.SongLoopLength()))

	mode := m.engine.CurrentMode()
	modeName := "song"
	if sm := m.loader.Mode(mode); sm != nil && sm.Valid() {
		modeName = sm.ModeName()
	} else if mode != sequencer.SongLayer {
		modeName = "(no script)"
	}
	b.WriteString(statusStyle.Render(fmt.Sprintf(
		"mode %d %s  pattern %d  track %d", mode, modeName,
		m.engine.CurrentPattern(), m.engine.CurrentTrack())))
	if mode == sequencer.SongLayer {
		b.WriteString(statusStyle.Render(fmt.Sprintf("  target mode %d", m.engine.TargetMode())))
	}
	b.WriteString("\n\n")

	b.WriteString(m.renderGrid())
	b.WriteString("\n")
	b.WriteString(m.renderSliders())
	b.WriteString("\n")

	if m.message != "" {
		b.WriteString(m.message + "\n")
	}
	b.WriteString(helpStyle.Render("space: play/stop • ←→: cursor • x: toggle step • m/M p/P t/T: select • +/-: tempo"))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("a/z s/w d/c f/v: sliders • S: save • L: load • esc: quit"))

	return b.String()
}

// renderGrid draws the 16 steps of the addressed track. The song layer
// always shows its arrangement track.
func (m Model) renderGrid() string {
	mode := m.engine.CurrentMode()
	pattern := m.engine.CurrentPattern()
	track := m.engine.CurrentTrack()
	if mode == sequencer.SongLayer {
		pattern, track = 0, 0
	}

	var b strings.Builder
	for step := 0; step < sequencer.StepsPerTrack; step++ {
		ev := m.engine.Song().Event(mode, pattern, track, step)

		cell := "·"
		style := inactiveStyle
		if ev.Switch() {
			cell = "●"
			style = activeStyle
		}
		if m.engine.Playing() && step == m.engine.CurrentStep() {
			style = playheadStyle
		}
		if step == m.cursor {
			style = style.Background(cursorStyle.GetBackground())
		}

		b.WriteString(style.Render(" " + cell + " "))
		if step%4 == 3 && step != sequencer.StepsPerTrack-1 {
			b.WriteString(" ")
		}
	}
	return b.String()
}

// renderSliders draws the live slider values with script-provided labels.
func (m Model) renderSliders() string {
	labels := [4]string{"S1", "S2", "S3", "S4"}
	if sm := m.loader.Mode(m.engine.CurrentMode()); sm != nil && sm.Valid() {
		labels = sm.SliderLabels()
	}

	parts := make([]string, 0, 4)
	for i := 0; i < 4; i++ {
		parts = append(parts, fmt.Sprintf("%s:%3d", labels[i], m.hw.ReadSliderPot(i)))
	}
	return helpStyle.Render(strings.Join(parts, "  "))
}
