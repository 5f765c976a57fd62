package sequencer

import (
	"gruvbok/debug"
)

// AutosaveIntervalMs is how long the engine waits between autosaves of a
// dirty song.
const AutosaveIntervalMs = 20000

// Rotary pot assignments (R1-R4).
const (
	PotMode    = 0
	PotTempo   = 1
	PotPattern = 2
	PotTrack   = 3
)

// Rotary tempo window. The pot sweeps the musical 60-240 BPM range even
// though SetTempo itself accepts 1-1000.
const (
	potTempoMin  = 60
	potTempoSpan = 180

	tempoHysteresisBPM = 5
)

// defaultModePrograms are the General MIDI programs sent per mode on script
// reinit. Mode 0 is the song layer and never emits.
var defaultModePrograms = [NumModes]uint8{
	0,  // song layer, no output
	48, // strings
	33, // fingered bass
	38, // synth bass 1
	81, // saw lead
	24, // nylon guitar
	88, // new age pad
	56, // trumpet
	4,  // electric piano 1
	81, // saw lead
	0,  // drums (program ignored on the drum channel)
	40, // violin
	16, // drawbar organ
	65, // alto sax
	98, // crystal FX
}

// Engine is the orchestrator: one Update per caller tick flushes the
// scheduler, advances the LED, delivers debounced script reinits, polls
// input, emits clock pulses and, on step boundaries, evaluates every
// channel's script. Single logical thread of control; callers must
// serialize access.
type Engine struct {
	song    *Song
	hw      Hardware
	scripts ScriptSet

	scheduler *MidiScheduler
	led       *LEDController
	clock     *MidiClockManager
	mode0     *Mode0Sequencer
	playback  *PlaybackState

	modePrograms [NumModes]uint8

	prevButtons [StepsPerTrack]bool

	dirty        bool
	lastAutosave uint32
	autosave     func() error
}

// NewEngine wires the orchestrator over the shared song, the hardware and
// the loaded scripts. The song aggregate is owned by the caller and mutated
// in place; the engine is its single writer.
func NewEngine(song *Song, hw Hardware, scripts ScriptSet) *Engine {
	e := &Engine{
		song:         song,
		hw:           hw,
		scripts:      scripts,
		modePrograms: defaultModePrograms,
	}
	e.scheduler = NewMidiScheduler(hw)
	e.led = NewLEDController(hw)
	e.clock = NewMidiClockManager(e.scheduler, hw)
	e.mode0 = NewMode0Sequencer(song)
	e.playback = NewPlaybackState(hw)

	e.mode0.CalculateLoopLength()
	return e
}

// Start begins playback: position to step 0, rewind the arrangement, start
// the transport clock and reinitialize every script with the current tempo.
func (e *Engine) Start() {
	e.playback.Start()
	e.mode0.Start()
	e.clock.SetTempo(e.playback.Tempo())
	e.clock.Start()
	e.reinitScripts()
}

// Stop halts playback, emits a transport Stop and clears the scheduler
// buffer synchronously.
func (e *Engine) Stop() {
	e.playback.Stop()
	e.clock.Stop()
	e.scheduler.Clear()
}

// Update runs one orchestration tick. Call frequently (~60 Hz) from a single
// goroutine.
func (e *Engine) Update() {
	now := e.hw.Millis()

	e.scheduler.Update(now)
	e.led.Update(now)

	if e.playback.ReinitDue(now) {
		e.reinitScripts()
		e.playback.ClearReinitPending()
	}

	e.checkAutosave(now)
	e.handleInput()

	if !e.playback.Playing() {
		return
	}

	e.clock.Update(now)

	if e.playback.ShouldAdvanceStep(now) {
		e.processStep()
		e.playback.AdvanceStep(now)

		// The song layer runs at 1/16 rate: advance it when the step
		// counter wraps back to 0.
		if e.playback.CurrentStep() == 0 {
			e.mode0.AdvanceStep()
		}
	}
}

// SetTempo changes the tempo on playback state and clock together.
func (e *Engine) SetTempo(bpm int) {
	e.playback.SetTempo(bpm)
	e.clock.SetTempo(e.playback.Tempo())
}

// SetMode selects the active mode.
func (e *Engine) SetMode(mode int) { e.playback.SetMode(mode) }

// SetPattern selects the active pattern.
func (e *Engine) SetPattern(pattern int) { e.playback.SetPattern(pattern) }

// SetTrack selects the active track.
func (e *Engine) SetTrack(track int) { e.playback.SetTrack(track) }

func (e *Engine) Playing() bool       { return e.playback.Playing() }
func (e *Engine) Tempo() int          { return e.playback.Tempo() }
func (e *Engine) CurrentMode() int    { return e.playback.CurrentMode() }
func (e *Engine) CurrentPattern() int { return e.playback.CurrentPattern() }
func (e *Engine) CurrentTrack() int   { return e.playback.CurrentTrack() }
func (e *Engine) CurrentStep() int    { return e.playback.CurrentStep() }
func (e *Engine) TargetMode() int     { return e.playback.TargetMode() }
func (e *Engine) SongModeStep() int   { return e.mode0.CurrentStep() }
func (e *Engine) SongLoopLength() int { return e.mode0.LoopLength() }

// Song returns the shared song aggregate.
func (e *Engine) Song() *Song { return e.song }

// Scheduler exposes the scheduler for sink configuration.
func (e *Engine) Scheduler() *MidiScheduler { return e.scheduler }

// SetAudioSink routes scheduled output to an internal renderer as well.
func (e *Engine) SetAudioSink(sink AudioSink) { e.scheduler.SetAudioSink(sink) }

// SetUseInternalAudio toggles the internal sink.
func (e *Engine) SetUseInternalAudio(on bool) { e.scheduler.SetUseInternalAudio(on) }

// SetUseExternalMIDI toggles the external transport sink.
func (e *Engine) SetUseExternalMIDI(on bool) { e.scheduler.SetUseExternalMIDI(on) }

// TriggerLEDPattern switches the feedback LED pattern.
func (e *Engine) TriggerLEDPattern(p LEDPattern) { e.led.TriggerPattern(p) }

// TriggerLEDByName switches the LED pattern by script-facing name.
func (e *Engine) TriggerLEDByName(name string) { e.led.TriggerPatternByName(name) }

// SetAutosave installs the host save callback used by the dirty-flag
// autosave timer. Without one, autosave is disabled.
func (e *Engine) SetAutosave(fn func() error) { e.autosave = fn }

// Dirty reports unsaved edits.
func (e *Engine) Dirty() bool { return e.dirty }

// MarkDirty flags unsaved edits.
func (e *Engine) MarkDirty() { e.dirty = true }

// ClearDirty acknowledges a completed save.
func (e *Engine) ClearDirty() { e.dirty = false }

// ToggleCurrentSwitch flips the gate of the step addressed by the current
// position.
func (e *Engine) ToggleCurrentSwitch() {
	ev := e.currentEvent()
	ev.SetSwitch(!ev.Switch())
	e.MarkDirty()
}

// SetCurrentPot writes one pot of the step addressed by the current
// position.
func (e *Engine) SetCurrentPot(pot int, value uint8) {
	e.currentEvent().SetPot(pot, value)
	e.MarkDirty()
}

// SetEventPot writes one pot of an explicitly addressed step. Out-of-range
// indices are ignored.
func (e *Engine) SetEventPot(mode, pattern, track, step, pot int, value uint8) {
	if mode < 0 || mode >= NumModes ||
		pattern < 0 || pattern >= PatternsPerMode ||
		track < 0 || track >= TracksPerPattern ||
		step < 0 || step >= StepsPerTrack ||
		pot < 0 || pot >= NumPots {
		return
	}
	e.song.Event(mode, pattern, track, step).SetPot(pot, value)
	e.MarkDirty()
}

// SetModeProgram changes a mode's instrument program and pushes the Program
// Change immediately on its channel.
func (e *Engine) SetModeProgram(mode int, program uint8) {
	if mode < 0 || mode >= NumModes {
		return
	}
	e.modePrograms[mode] = program & 0x7F
	if mode > SongLayer {
		e.sendProgramChange(mode)
	}
	e.MarkDirty()
}

// ModeProgram returns a mode's instrument program.
func (e *Engine) ModeProgram(mode int) uint8 {
	if mode < 0 || mode >= NumModes {
		return 0
	}
	return e.modePrograms[mode]
}

func (e *Engine) currentEvent() *Event {
	return e.song.Event(
		e.playback.CurrentMode(),
		e.playback.CurrentPattern(),
		e.playback.CurrentTrack(),
		e.playback.CurrentStep(),
	)
}

// processStep evaluates one step across every channel: pick the pattern each
// mode plays, fetch the track events and hand them to the loaded scripts,
// scheduling whatever they return.
func (e *Engine) processStep() {
	step := e.playback.CurrentStep()
	currentMode := e.playback.CurrentMode()
	currentPattern := e.playback.CurrentPattern()

	// Republish song-layer parameters at each bar start while the song
	// layer is active.
	if step == 0 && currentMode == SongLayer {
		e.mode0.ApplyParameters()
	}

	for mode := 1; mode < NumModes; mode++ {
		patternToPlay := currentPattern
		if currentMode == SongLayer {
			// Follow the arrangement; fall back to the manual
			// selection when the song step published nothing.
			if override := e.mode0.PatternOverride(mode); override >= 0 {
				patternToPlay = override
			}
		}

		script := e.scripts.Script(mode)
		if script == nil {
			continue
		}

		pattern := e.song.Mode(mode).Pattern(patternToPlay)
		for track := 0; track < TracksPerPattern; track++ {
			ev := *pattern.Event(track, step)
			e.scheduler.ScheduleAll(script.ProcessEvent(track, ev))
		}
	}

	// Beat indicator on every quarter note.
	if step%4 == 0 {
		e.led.TriggerPattern(TempoBeat)
	}
}

// handleInput maps the rotary pots onto the global position/tempo and the
// step buttons onto gate toggles with parameter locking.
func (e *Engine) handleInput() {
	r1 := e.hw.ReadRotaryPot(PotMode)
	r2 := e.hw.ReadRotaryPot(PotTempo)
	r3 := e.hw.ReadRotaryPot(PotPattern)
	r4 := e.hw.ReadRotaryPot(PotTrack)

	if mode := scalePot(r1, NumModes); mode != e.playback.CurrentMode() {
		e.SetMode(mode)
	}

	tempo := potTempoMin + int(r2)*potTempoSpan/127
	if diff := tempo - e.playback.Tempo(); diff > tempoHysteresisBPM || diff < -tempoHysteresisBPM {
		e.SetTempo(tempo)
	}

	if pattern := scalePot(r3, PatternsPerMode); pattern != e.playback.CurrentPattern() {
		e.SetPattern(pattern)
	}

	currentMode := e.playback.CurrentMode()
	if currentMode == SongLayer {
		// While the song layer is selected, R4 picks the target mode
		// for arrangement edits instead of a track.
		if target := 1 + scalePot(r4, NumModes-1); target != e.playback.TargetMode() {
			e.playback.SetTargetMode(target)
		}
	} else {
		if track := scalePot(r4, TracksPerPattern); track != e.playback.CurrentTrack() {
			e.SetTrack(track)
		}
	}

	for btn := 0; btn < StepsPerTrack; btn++ {
		pressed := e.hw.ReadButton(btn)
		edge := pressed && !e.prevButtons[btn]
		e.prevButtons[btn] = pressed
		if !edge {
			continue
		}
		e.toggleStep(btn, currentMode)
	}
}

// toggleStep flips the addressed step's gate. Song-layer edits always land
// on Mode 0 / Pattern 0 / Track 0. Turning a gate on parameter-locks the
// four live slider values into the step; later slider movement never
// retroactively changes stored steps.
func (e *Engine) toggleStep(step, currentMode int) {
	var ev *Event
	if currentMode == SongLayer {
		ev = e.song.Event(SongLayer, 0, 0, step)
	} else {
		ev = e.song.Event(
			currentMode,
			e.playback.CurrentPattern(),
			e.playback.CurrentTrack(),
			step,
		)
	}

	ev.SetSwitch(!ev.Switch())
	if ev.Switch() {
		for pot := 0; pot < NumPots; pot++ {
			ev.SetPot(pot, e.hw.ReadSliderPot(pot))
		}
	}

	e.MarkDirty()
	if currentMode == SongLayer {
		e.mode0.CalculateLoopLength()
	}
}

// reinitScripts re-runs every loaded script's init with the current tempo
// and the song layer's published globals, then refreshes each channel's
// instrument via Program Change.
func (e *Engine) reinitScripts() {
	tempo := e.playback.Tempo()
	debug.Log("engine", "reinit scripts tempo=%d", tempo)

	for mode := 0; mode < NumModes; mode++ {
		script := e.scripts.Script(mode)
		if script == nil {
			continue
		}

		channel := 0
		if mode > SongLayer {
			channel = mode - 1
		}
		ctx := InitContext{
			Tempo:          tempo,
			ModeNumber:     mode,
			MIDIChannel:    channel,
			ScaleRoot:      e.mode0.ScaleRoot(),
			ScaleType:      e.mode0.ScaleType(),
			VelocityOffset: e.mode0.VelocityOffset(mode),
		}
		if err := script.Init(ctx); err != nil {
			debug.Log("engine", "script init mode=%d: %v", mode, err)
			continue
		}

		if mode > SongLayer {
			e.sendProgramChange(mode)
		}
	}
}

// sendProgramChange pushes the mode's instrument straight to the transport,
// bypassing the scheduler.
func (e *Engine) sendProgramChange(mode int) {
	pc := ProgramChange(e.modePrograms[mode], uint8(mode-1), 0)
	e.hw.SendMIDI(pc.Data[:pc.Len])
}

// checkAutosave saves a dirty song through the host callback at most once
// per interval, with LED feedback either way.
func (e *Engine) checkAutosave(now uint32) {
	if !e.dirty || e.autosave == nil {
		return
	}
	if now-e.lastAutosave < AutosaveIntervalMs {
		return
	}

	e.led.TriggerPattern(Saving)
	if err := e.autosave(); err != nil {
		debug.Log("engine", "autosave failed: %v", err)
		e.led.TriggerPattern(ErrorBlink)
		e.lastAutosave = now
		return
	}
	e.dirty = false
	e.lastAutosave = now
}
