package sequencer

// Tempo limits and timing constants.
const (
	TempoMinBPM     = 1
	TempoMaxBPM     = 1000
	TempoDefaultBPM = 120

	msPerMinute      = 60000
	divisionsPerBeat = 4 // sixteenth notes per quarter
	tempoDebounceMs  = 1000
)

// PlaybackState holds tempo, the current playback position and step-advance
// timing. It is the single writer of the position indices; everything else
// reads them through the getters.
type PlaybackState struct {
	hw Hardware

	playing bool
	tempo   int // BPM

	mode       int // 0-14
	pattern    int // 0-31
	track      int // 0-7
	step       int // 0-15
	targetMode int // 1-14, addressed mode while editing the song layer

	lastStepTime   uint32
	stepIntervalMs uint32

	// Debounced script reinit after a tempo change. Pending-flag plus
	// due-time, polled each tick; rapid changes coalesce into one
	// notification.
	reinitPending   bool
	lastTempoChange uint32
}

// NewPlaybackState returns playback state at 120 BPM, positioned on mode 1.
func NewPlaybackState(hw Hardware) *PlaybackState {
	p := &PlaybackState{
		hw:         hw,
		tempo:      TempoDefaultBPM,
		mode:       1,
		targetMode: 1,
	}
	p.calculateStepInterval()
	return p
}

// Start marks playback running from step 0 and stamps the step timer.
func (p *PlaybackState) Start() {
	p.playing = true
	p.step = 0
	p.lastStepTime = p.hw.Millis()
}

// Stop marks playback stopped. Position is retained.
func (p *PlaybackState) Stop() {
	p.playing = false
}

// ShouldAdvanceStep reports whether the step interval has elapsed.
func (p *PlaybackState) ShouldAdvanceStep(now uint32) bool {
	if !p.playing {
		return false
	}
	return now-p.lastStepTime >= p.stepIntervalMs
}

// AdvanceStep moves to the next step, wrapping mod 16, and restamps the
// step timer.
func (p *PlaybackState) AdvanceStep(now uint32) {
	p.lastStepTime = now
	p.step = (p.step + 1) % StepsPerTrack
}

// SetTempo clamps bpm into [1,1000], recomputes the step interval and arms
// the debounced reinit, due one second after the latest change.
func (p *PlaybackState) SetTempo(bpm int) {
	if bpm < TempoMinBPM {
		bpm = TempoMinBPM
	}
	if bpm > TempoMaxBPM {
		bpm = TempoMaxBPM
	}
	p.tempo = bpm
	p.calculateStepInterval()

	p.reinitPending = true
	p.lastTempoChange = p.hw.Millis()
}

// SetMode selects the active mode. Out-of-range values are ignored.
func (p *PlaybackState) SetMode(mode int) {
	if mode >= 0 && mode < NumModes {
		p.mode = mode
	}
}

// SetPattern selects the active pattern. Out-of-range values are ignored.
func (p *PlaybackState) SetPattern(pattern int) {
	if pattern >= 0 && pattern < PatternsPerMode {
		p.pattern = pattern
	}
}

// SetTrack selects the active track. Out-of-range values are ignored.
func (p *PlaybackState) SetTrack(track int) {
	if track >= 0 && track < TracksPerPattern {
		p.track = track
	}
}

// SetTargetMode selects which mode song-layer edits address (1-14, never the
// song layer itself). Out-of-range values are ignored.
func (p *PlaybackState) SetTargetMode(mode int) {
	if mode >= 1 && mode < NumModes {
		p.targetMode = mode
	}
}

// ReinitDue reports whether a tempo-change reinit is pending and its
// debounce window has elapsed.
func (p *PlaybackState) ReinitDue(now uint32) bool {
	if !p.reinitPending {
		return false
	}
	return now-p.lastTempoChange >= tempoDebounceMs
}

// ClearReinitPending acknowledges a delivered reinit.
func (p *PlaybackState) ClearReinitPending() {
	p.reinitPending = false
}

func (p *PlaybackState) Playing() bool       { return p.playing }
func (p *PlaybackState) Tempo() int          { return p.tempo }
func (p *PlaybackState) CurrentMode() int    { return p.mode }
func (p *PlaybackState) CurrentPattern() int { return p.pattern }
func (p *PlaybackState) CurrentTrack() int   { return p.track }
func (p *PlaybackState) CurrentStep() int    { return p.step }
func (p *PlaybackState) TargetMode() int     { return p.targetMode }

// StepIntervalMs returns the current sixteenth-note interval.
func (p *PlaybackState) StepIntervalMs() uint32 { return p.stepIntervalMs }

// calculateStepInterval derives the sixteenth-note interval: at 120 BPM one
// beat is 500 ms, so one step is 125 ms.
func (p *PlaybackState) calculateStepInterval() {
	p.stepIntervalMs = uint32((msPerMinute / p.tempo) / divisionsPerBeat)
}
