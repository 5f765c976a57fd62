package sequencer

// Song store geometry. One Mode per output channel; mode 0 is the reserved
// song layer. 15 x 32 x 8 x 16 events x 4 bytes = ~240 KB, allocated once as
// nested fixed arrays so the real-time path never touches the heap.
const (
	NumModes         = 15
	PatternsPerMode  = 32
	TracksPerPattern = 8
	StepsPerTrack    = 16

	// SongLayer is the reserved arrangement mode. It never emits
	// instrument instructions.
	SongLayer = 0
)

// clampIndex clamps n into [0, limit). Store accessors clamp rather than
// abort: on embedded hardware there is nothing sensible to abort into.
func clampIndex(n, limit int) int {
	if n < 0 {
		return 0
	}
	if n >= limit {
		return limit - 1
	}
	return n
}

// Track is 16 steps, owned exclusively by its Pattern.
type Track struct {
	events [StepsPerTrack]Event
}

// Event returns a pointer to the step, clamping the index into range.
func (t *Track) Event(step int) *Event {
	return &t.events[clampIndex(step, StepsPerTrack)]
}

// SetEvent overwrites a step, clamping the index into range.
func (t *Track) SetEvent(step int, e Event) {
	t.events[clampIndex(step, StepsPerTrack)] = e
}

// Clear zeroes every step.
func (t *Track) Clear() {
	for i := range t.events {
		t.events[i].Clear()
	}
}

// Pattern is 8 tracks, owned exclusively by its Mode.
type Pattern struct {
	tracks [TracksPerPattern]Track
}

// Track returns a pointer to a track, clamping the index into range.
func (p *Pattern) Track(track int) *Track {
	return &p.tracks[clampIndex(track, TracksPerPattern)]
}

// Event returns a pointer to a step addressed by (track, step).
func (p *Pattern) Event(track, step int) *Event {
	return p.Track(track).Event(step)
}

// SetEvent overwrites a step addressed by (track, step).
func (p *Pattern) SetEvent(track, step int, e Event) {
	p.Track(track).SetEvent(step, e)
}

// Clear zeroes every track.
func (p *Pattern) Clear() {
	for i := range p.tracks {
		p.tracks[i].Clear()
	}
}

// Mode is 32 patterns on one output channel.
type Mode struct {
	patterns [PatternsPerMode]Pattern
}

// Pattern returns a pointer to a pattern, clamping the index into range.
func (m *Mode) Pattern(pattern int) *Pattern {
	return &m.patterns[clampIndex(pattern, PatternsPerMode)]
}

// Clear zeroes every pattern.
func (m *Mode) Clear() {
	for i := range m.patterns {
		m.patterns[i].Clear()
	}
}

// Song is the single top-level aggregate: 15 modes, constructed once and
// mutated in place for the process lifetime. Every location is reachable by
// four small integers (mode, pattern, track, step).
type Song struct {
	modes [NumModes]Mode
}

// NewSong returns a zeroed song.
func NewSong() *Song {
	return &Song{}
}

// Mode returns a pointer to a mode, clamping the index into range.
func (s *Song) Mode(mode int) *Mode {
	return &s.modes[clampIndex(mode, NumModes)]
}

// Event returns a pointer to the step addressed by the full four-index path.
func (s *Song) Event(mode, pattern, track, step int) *Event {
	return s.Mode(mode).Pattern(pattern).Event(track, step)
}

// Clear zeroes the whole store.
func (s *Song) Clear() {
	for i := range s.modes {
		s.modes[i].Clear()
	}
}

// MemoryFootprint returns the fixed size of the event store in bytes.
func MemoryFootprint() int {
	return NumModes * PatternsPerMode * TracksPerPattern * StepsPerTrack * 4
}
