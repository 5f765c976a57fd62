// Package script hosts the per-channel Lua programs that turn step events
// into timed MIDI instructions. Each mode owns one interpreter state; the
// engine is the only caller, so no locking is needed.
package script

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"gruvbok/sequencer"
)

// Mode is one channel's loaded Lua script. A script must define two globals:
//
//	init(context)                -- called at load and after tempo changes
//	process_event(track, event)  -- called once per step per track
//
// process_event emits MIDI by calling the registered primitives; its return
// value is ignored. Optional globals MODE_NAME and SLIDER_LABELS feed the UI.
type Mode struct {
	l       *lua.LState
	valid   bool
	lastErr string

	channel uint8
	buf     []sequencer.Instruction
}

// New creates an empty interpreter with the MIDI primitives registered.
func New() *Mode {
	m := &Mode{}
	m.l = lua.NewState()

	m.l.SetGlobal("note", m.l.NewFunction(m.luaNote))
	m.l.SetGlobal("off", m.l.NewFunction(m.luaOff))
	m.l.SetGlobal("cc", m.l.NewFunction(m.luaCC))
	m.l.SetGlobal("stopall", m.l.NewFunction(m.luaStopAll))

	return m
}

// Close releases the interpreter.
func (m *Mode) Close() {
	if m.l != nil {
		m.l.Close()
		m.l = nil
	}
	m.valid = false
}

// LoadFile runs a script file and verifies the required entry points.
func (m *Mode) LoadFile(path string) error {
	return m.load(func() error { return m.l.DoFile(path) })
}

// LoadString runs script source and verifies the required entry points.
func (m *Mode) LoadString(src string) error {
	return m.load(func() error { return m.l.DoString(src) })
}

func (m *Mode) load(run func() error) error {
	m.valid = false
	if err := run(); err != nil {
		return m.fail(fmt.Errorf("loading script: %w", err))
	}
	for _, fn := range []string{"init", "process_event"} {
		if m.l.GetGlobal(fn).Type() != lua.LTFunction {
			return m.fail(fmt.Errorf("script missing required function %s()", fn))
		}
	}
	m.valid = true
	return nil
}

// Valid reports whether the script loaded and has not failed since.
func (m *Mode) Valid() bool { return m.valid }

// LastError returns the most recent load or call failure.
func (m *Mode) LastError() string { return m.lastErr }

// Init calls the script's init(context). It also fixes the output channel
// used by the MIDI primitives.
func (m *Mode) Init(ctx sequencer.InitContext) error {
	if !m.valid {
		return fmt.Errorf("script not loaded: %s", m.lastErr)
	}
	m.channel = uint8(ctx.MIDIChannel) & 0x0F

	tbl := m.l.NewTable()
	m.l.SetField(tbl, "tempo", lua.LNumber(ctx.Tempo))
	m.l.SetField(tbl, "mode_number", lua.LNumber(ctx.ModeNumber))
	m.l.SetField(tbl, "midi_channel", lua.LNumber(ctx.MIDIChannel))
	m.l.SetField(tbl, "scale_root", lua.LNumber(ctx.ScaleRoot))
	m.l.SetField(tbl, "scale_type", lua.LNumber(ctx.ScaleType))
	m.l.SetField(tbl, "velocity_offset", lua.LNumber(ctx.VelocityOffset))

	err := m.l.CallByParam(lua.P{
		Fn:      m.l.GetGlobal("init"),
		NRet:    0,
		Protect: true,
	}, tbl)
	if err != nil {
		return m.fail(fmt.Errorf("init(): %w", err))
	}
	return nil
}

// ProcessEvent calls process_event(track, event) and returns the
// instructions the script emitted. The slice is reused across calls. The
// event reaches Lua as {switch=bool, pots={p1,p2,p3,p4}}.
func (m *Mode) ProcessEvent(track int, ev sequencer.Event) []sequencer.Instruction {
	m.buf = m.buf[:0]
	if !m.valid {
		return nil
	}

	evTbl := m.l.NewTable()
	m.l.SetField(evTbl, "switch", lua.LBool(ev.Switch()))
	pots := m.l.NewTable()
	for i := 0; i < sequencer.NumPots; i++ {
		pots.RawSetInt(i+1, lua.LNumber(ev.Pot(i)))
	}
	m.l.SetField(evTbl, "pots", pots)

	err := m.l.CallByParam(lua.P{
		Fn:      m.l.GetGlobal("process_event"),
		NRet:    1,
		Protect: true,
	}, lua.LNumber(track), evTbl)
	if err != nil {
		m.lastErr = err.Error()
		return nil
	}
	m.l.Pop(1) // return value ignored

	return m.buf
}

// ModeName returns the script's MODE_NAME global, or "Unnamed".
func (m *Mode) ModeName() string {
	if !m.valid {
		return "Invalid"
	}
	if s, ok := m.l.GetGlobal("MODE_NAME").(lua.LString); ok {
		return string(s)
	}
	return "Unnamed"
}

// SliderLabels returns the script's SLIDER_LABELS global, defaulting to
// S1-S4.
func (m *Mode) SliderLabels() [4]string {
	labels := [4]string{"S1", "S2", "S3", "S4"}
	if !m.valid {
		return labels
	}
	tbl, ok := m.l.GetGlobal("SLIDER_LABELS").(*lua.LTable)
	if !ok {
		return labels
	}
	for i := 0; i < 4; i++ {
		if s, ok := tbl.RawGetInt(i + 1).(lua.LString); ok {
			labels[i] = string(s)
		}
	}
	return labels
}

func (m *Mode) fail(err error) error {
	m.lastErr = err.Error()
	m.valid = false
	return err
}

// MIDI primitives exposed to Lua. Each appends to the per-call instruction
// buffer that ProcessEvent hands back to the engine.

// note(pitch, velocity, [delta])
func (m *Mode) luaNote(l *lua.LState) int {
	pitch := uint8(l.CheckInt(1))
	velocity := uint8(l.CheckInt(2))
	delta := uint32(l.OptInt(3, 0))
	m.buf = append(m.buf, sequencer.NoteOn(pitch, velocity, m.channel, delta))
	return 0
}

// off(pitch, [delta])
func (m *Mode) luaOff(l *lua.LState) int {
	pitch := uint8(l.CheckInt(1))
	delta := uint32(l.OptInt(2, 0))
	m.buf = append(m.buf, sequencer.NoteOff(pitch, m.channel, delta))
	return 0
}

// cc(controller, value, [delta])
func (m *Mode) luaCC(l *lua.LState) int {
	controller := uint8(l.CheckInt(1))
	value := uint8(l.CheckInt(2))
	delta := uint32(l.OptInt(3, 0))
	m.buf = append(m.buf, sequencer.ControlChange(controller, value, m.channel, delta))
	return 0
}

// stopall([delta])
func (m *Mode) luaStopAll(l *lua.LState) int {
	delta := uint32(l.OptInt(1, 0))
	m.buf = append(m.buf, sequencer.AllNotesOff(m.channel, delta))
	return 0
}
