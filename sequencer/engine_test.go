package sequencer

import "testing"

type scriptCall struct {
	track int
	ev    Event
}

type fakeScript struct {
	inits []InitContext
	calls []scriptCall
	out   []Instruction
}

func (s *fakeScript) Init(ctx InitContext) error {
	s.inits = append(s.inits, ctx)
	return nil
}

func (s *fakeScript) ProcessEvent(track int, ev Event) []Instruction {
	s.calls = append(s.calls, scriptCall{track, ev})
	if !ev.Switch() {
		return nil
	}
	return s.out
}

type fakeScriptSet struct {
	scripts [NumModes]*fakeScript
}

func (f *fakeScriptSet) Script(mode int) Script {
	if mode < 0 || mode >= NumModes || f.scripts[mode] == nil {
		return nil
	}
	return f.scripts[mode]
}

func newTestEngine() (*Engine, *fakeHardware, *fakeScriptSet) {
	hw := newFakeHardware()
	scripts := &fakeScriptSet{}
	e := NewEngine(NewSong(), hw, scripts)
	return e, hw, scripts
}

func TestEngineParameterLock(t *testing.T) {
	e, hw, _ := newTestEngine()

	// Toggling a gate on captures the live slider values into the step.
	hw.buttons[3] = true
	e.Update()

	ev := e.Song().Event(1, 0, 0, 3)
	if !ev.Switch() {
		t.Fatal("step gate not toggled on")
	}
	for pot := 0; pot < NumPots; pot++ {
		if got := ev.Pot(pot); got != 64 {
			t.Errorf("pot %d = %d, want locked 64", pot, got)
		}
	}

	// Later slider movement never rewrites the stored step.
	hw.buttons[3] = false
	for i := range hw.sliders {
		hw.sliders[i] = 0
	}
	e.Update()
	for pot := 0; pot < NumPots; pot++ {
		if got := ev.Pot(pot); got != 64 {
			t.Errorf("pot %d = %d after slider move, want 64", pot, got)
		}
	}

	// A second press is a new rising edge and toggles the gate off.
	hw.buttons[3] = true
	e.Update()
	if ev.Switch() {
		t.Error("second press did not toggle the gate off")
	}
}

func TestEngineButtonHeldIsOneEdge(t *testing.T) {
	e, hw, _ := newTestEngine()

	hw.buttons[0] = true
	e.Update()
	e.Update()
	e.Update()

	if !e.Song().Event(1, 0, 0, 0).Switch() {
		t.Error("held button retoggled the gate")
	}
}

func TestEngineSongLayerOverride(t *testing.T) {
	e, hw, scripts := newTestEngine()
	script := &fakeScript{out: []Instruction{NoteOn(60, 100, 0, 500)}}
	scripts.scripts[1] = script

	// Song step 0 publishes pattern 2 for every mode.
	songStep(e.Song(), 0, 10, 0, 0, 64)
	// A marker event in mode 1 / pattern 2.
	mark := e.Song().Event(1, 2, 0, 0)
	mark.SetSwitch(true)
	mark.SetPot(0, 99)

	hw.rotary[PotMode] = 0 // select the song layer
	e.Start()

	if len(script.inits) != 1 {
		t.Fatalf("script initialized %d times, want 1", len(script.inits))
	}
	if ctx := script.inits[0]; ctx.MIDIChannel != 0 || ctx.ModeNumber != 1 || ctx.Tempo != 120 {
		t.Errorf("init context = %+v", ctx)
	}

	hw.millis = 125
	e.Update()

	if e.CurrentMode() != SongLayer {
		t.Fatalf("mode = %d, want song layer", e.CurrentMode())
	}
	if len(script.calls) != TracksPerPattern {
		t.Fatalf("script saw %d track calls, want %d", len(script.calls), TracksPerPattern)
	}
	// Track 0's event must come from the overridden pattern 2.
	first := script.calls[0]
	if !first.ev.Switch() || first.ev.Pot(0) != 99 {
		t.Errorf("track 0 event = %+v, want the pattern 2 marker", first.ev)
	}
	if e.Scheduler().QueuedCount() == 0 {
		t.Error("script output was not scheduled")
	}
}

func TestEngineTempoPotHysteresis(t *testing.T) {
	e, hw, _ := newTestEngine()

	// 45 maps to 123 BPM, inside the 5 BPM window around 120.
	hw.rotary[PotTempo] = 45
	e.Update()
	if e.Tempo() != 120 {
		t.Errorf("tempo = %d after a small pot wiggle, want 120", e.Tempo())
	}

	// 50 maps to 130 BPM, outside the window.
	hw.rotary[PotTempo] = 50
	e.Update()
	if e.Tempo() != 130 {
		t.Errorf("tempo = %d, want 130", e.Tempo())
	}
}

func TestEngineTargetModeOnSongLayer(t *testing.T) {
	e, hw, _ := newTestEngine()

	hw.rotary[PotMode] = 0
	hw.rotary[PotTrack] = 64 // target mode 8
	e.Update()

	if e.CurrentMode() != SongLayer {
		t.Fatalf("mode = %d, want song layer", e.CurrentMode())
	}
	if e.TargetMode() != 8 {
		t.Errorf("target mode = %d, want 8", e.TargetMode())
	}
	if e.CurrentTrack() != 0 {
		t.Errorf("track = %d, want untouched 0", e.CurrentTrack())
	}
}

func TestEngineAutosave(t *testing.T) {
	e, hw, _ := newTestEngine()

	calls := 0
	e.SetAutosave(func() error {
		calls++
		return nil
	})

	e.MarkDirty()
	hw.millis = AutosaveIntervalMs - 1
	e.Update()
	if calls != 0 {
		t.Fatal("autosaved before the interval elapsed")
	}

	hw.millis = AutosaveIntervalMs
	e.Update()
	if calls != 1 {
		t.Fatalf("autosave ran %d times, want 1", calls)
	}
	if e.Dirty() {
		t.Error("dirty flag survived a successful autosave")
	}

	// A clean song never autosaves.
	hw.millis = 3 * AutosaveIntervalMs
	e.Update()
	if calls != 1 {
		t.Error("autosaved a clean song")
	}
}

func TestEngineSinkToggles(t *testing.T) {
	e, _, _ := newTestEngine()

	if !e.Scheduler().UsingExternalMIDI() || e.Scheduler().UsingInternalAudio() {
		t.Fatal("defaults: external on, internal off")
	}

	e.SetUseInternalAudio(true)
	e.SetUseExternalMIDI(false)
	if !e.Scheduler().UsingInternalAudio() {
		t.Error("internal sink toggle not forwarded")
	}
	if e.Scheduler().UsingExternalMIDI() {
		t.Error("external sink toggle not forwarded")
	}
}

func TestEngineStopClearsScheduler(t *testing.T) {
	e, hw, _ := newTestEngine()

	e.Start()
	e.Scheduler().Schedule(NoteOn(60, 100, 0, 1000))
	e.Stop()

	if e.Scheduler().QueuedCount() != 0 {
		t.Error("pending output survived Stop")
	}
	if hw.sentWithStatus(0xFC) == 0 {
		t.Error("no transport Stop emitted")
	}
}

func TestEngineProgramChange(t *testing.T) {
	e, hw, _ := newTestEngine()

	e.SetModeProgram(3, 42)

	last := hw.sent[len(hw.sent)-1]
	if len(last) != 2 || last[0] != 0xC2 || last[1] != 42 {
		t.Errorf("program change bytes = %v, want [C2 2A]", last)
	}
	if e.ModeProgram(3) != 42 {
		t.Errorf("stored program = %d, want 42", e.ModeProgram(3))
	}
}
