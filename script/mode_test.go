package script

import (
	"testing"

	"gruvbok/sequencer"
)

const testScript = `
MODE_NAME = "Test Keys"
SLIDER_LABELS = {"Pitch", "Vel", "Len", "FX"}

local channel = 0
local tempo = 0

function init(ctx)
    channel = ctx.midi_channel
    tempo = ctx.tempo
end

function process_event(track, event)
    if not event.switch then
        return false
    end
    note(event.pots[1], event.pots[2], 0)
    off(event.pots[1], 100)
    return true
end
`

func loadTestMode(t *testing.T) *Mode {
	t.Helper()
	m := New()
	t.Cleanup(m.Close)
	if err := m.LoadString(testScript); err != nil {
		t.Fatalf("load: %v", err)
	}
	return m
}

func TestModeLoadAndMetadata(t *testing.T) {
	m := loadTestMode(t)

	if !m.Valid() {
		t.Fatal("script should be valid")
	}
	if got := m.ModeName(); got != "Test Keys" {
		t.Errorf("mode name = %q", got)
	}
	want := [4]string{"Pitch", "Vel", "Len", "FX"}
	if got := m.SliderLabels(); got != want {
		t.Errorf("slider labels = %v, want %v", got, want)
	}
}

func TestModeRequiresEntryPoints(t *testing.T) {
	m := New()
	defer m.Close()

	if err := m.LoadString(`x = 1`); err == nil {
		t.Fatal("script without entry points accepted")
	}
	if m.Valid() {
		t.Error("script marked valid without entry points")
	}
	if m.ModeName() != "Invalid" {
		t.Errorf("mode name = %q, want Invalid", m.ModeName())
	}
}

func TestModeProcessEvent(t *testing.T) {
	m := loadTestMode(t)
	if err := m.Init(sequencer.InitContext{Tempo: 120, ModeNumber: 3, MIDIChannel: 2}); err != nil {
		t.Fatalf("init: %v", err)
	}

	ev := sequencer.NewEvent(true, 60, 100, 0, 0)
	instrs := m.ProcessEvent(0, ev)

	if len(instrs) != 2 {
		t.Fatalf("got %d instructions, want 2", len(instrs))
	}
	if want := sequencer.NoteOn(60, 100, 2, 0); instrs[0] != want {
		t.Errorf("instruction 0 = %+v, want %+v", instrs[0], want)
	}
	if want := sequencer.NoteOff(60, 2, 100); instrs[1] != want {
		t.Errorf("instruction 1 = %+v, want %+v", instrs[1], want)
	}
}

func TestModeInactiveEventIsSilent(t *testing.T) {
	m := loadTestMode(t)
	if err := m.Init(sequencer.InitContext{Tempo: 120}); err != nil {
		t.Fatalf("init: %v", err)
	}

	var off sequencer.Event
	if instrs := m.ProcessEvent(0, off); len(instrs) != 0 {
		t.Errorf("inactive event emitted %d instructions", len(instrs))
	}
}

func TestModeCCAndStopAll(t *testing.T) {
	m := New()
	defer m.Close()
	src := `
function init(ctx) end
function process_event(track, event)
    cc(1, 64, 5)
    stopall(10)
    return true
end
`
	if err := m.LoadString(src); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := m.Init(sequencer.InitContext{MIDIChannel: 9}); err != nil {
		t.Fatalf("init: %v", err)
	}

	instrs := m.ProcessEvent(0, sequencer.NewEvent(true, 0, 0, 0, 0))
	if len(instrs) != 2 {
		t.Fatalf("got %d instructions, want 2", len(instrs))
	}
	if want := sequencer.ControlChange(1, 64, 9, 5); instrs[0] != want {
		t.Errorf("instruction 0 = %+v, want %+v", instrs[0], want)
	}
	if want := sequencer.AllNotesOff(9, 10); instrs[1] != want {
		t.Errorf("instruction 1 = %+v, want %+v", instrs[1], want)
	}
}

func TestModeDefaultSliderLabels(t *testing.T) {
	m := New()
	defer m.Close()
	if err := m.LoadString("function init(c) end\nfunction process_event(t, e) end"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := m.SliderLabels(); got != [4]string{"S1", "S2", "S3", "S4"} {
		t.Errorf("default labels = %v", got)
	}
}
