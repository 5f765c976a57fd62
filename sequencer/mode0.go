package sequencer

// Scale limits published by the song layer.
const (
	NumScaleRoots = 12
	NumScaleTypes = 8
)

// Mode0Sequencer interprets the reserved song layer. Mode 0 Track 0 is a
// 16-step arrangement list running at 1/16 rate: one song step spans one full
// pattern of every other mode. Each active step's pots select the pattern all
// other modes play and publish the global scale and velocity offset.
type Mode0Sequencer struct {
	song *Song

	step       int // 0-15, advances once per full bar
	loopLength int // 1-16, derived from the last active song step

	scaleRoot int // 0-11
	scaleType int // 0-7

	velocityOffsets  [NumModes]int // -64..+63 per mode
	patternOverrides [NumModes]int // 0-31, or -1 when no override published
}

// NewMode0Sequencer creates the song-layer sequencer over the shared song.
func NewMode0Sequencer(song *Song) *Mode0Sequencer {
	m := &Mode0Sequencer{
		song:       song,
		loopLength: StepsPerTrack,
	}
	for i := range m.patternOverrides {
		m.patternOverrides[i] = -1
	}
	return m
}

// Start rewinds the arrangement to its first step.
func (m *Mode0Sequencer) Start() {
	m.step = 0
}

// AdvanceStep moves to the next song step, wrapping at the loop length.
// Call once every 16 normal steps.
func (m *Mode0Sequencer) AdvanceStep() {
	m.step = (m.step + 1) % m.loopLength
}

// CalculateLoopLength rescans Mode 0 / Pattern 0 / Track 0 and sets the loop
// length to (last active step)+1, clamped into [1,16]. An empty track loops
// a single step. Call after every song-layer edit.
func (m *Mode0Sequencer) CalculateLoopLength() {
	track := m.song.Mode(SongLayer).Pattern(0).Track(0)

	maxStep := -1
	for step := 0; step < StepsPerTrack; step++ {
		if track.Event(step).Switch() {
			maxStep = step
		}
	}

	length := maxStep + 1
	if length < 1 {
		length = 1
	}
	if length > StepsPerTrack {
		length = StepsPerTrack
	}
	m.loopLength = length

	if m.step >= m.loopLength {
		m.step = 0
	}
}

// ApplyParameters reads the song-layer event at the current song step and,
// when it is active, republishes the pattern override, scale root/type and
// velocity offset for every non-song mode. An inactive step leaves the
// previously published values untouched, so a silent song step never
// interrupts the arrangement.
func (m *Mode0Sequencer) ApplyParameters() {
	if m.step < 0 || m.step >= StepsPerTrack {
		return
	}

	ev := m.song.Mode(SongLayer).Pattern(0).Event(0, m.step)
	if !ev.Switch() {
		return
	}

	pattern := scalePot(ev.Pot(0), PatternsPerMode)
	root := scalePot(ev.Pot(1), NumScaleRoots)
	scaleType := scalePot(ev.Pot(2), NumScaleTypes)
	offset := clampVelocityOffset(int(ev.Pot(3)) - 64)

	m.scaleRoot = root
	m.scaleType = scaleType
	for mode := 1; mode < NumModes; mode++ {
		m.patternOverrides[mode] = pattern
		m.velocityOffsets[mode] = offset
	}
}

// ParseEvent publishes a single song-layer event's parameters for one target
// mode, used while editing the song layer with a selected target mode. An
// inactive event publishes nothing.
func (m *Mode0Sequencer) ParseEvent(ev Event, targetMode int) {
	if targetMode < 0 || targetMode >= NumModes {
		return
	}
	if !ev.Switch() {
		return
	}

	m.patternOverrides[targetMode] = scalePot(ev.Pot(0), PatternsPerMode)
	m.scaleRoot = scalePot(ev.Pot(1), NumScaleRoots)
	m.scaleType = scalePot(ev.Pot(2), NumScaleTypes)
	m.velocityOffsets[targetMode] = clampVelocityOffset(int(ev.Pot(3)) - 64)
}

// CurrentStep returns the song step, 0-15.
func (m *Mode0Sequencer) CurrentStep() int { return m.step }

// LoopLength returns the arrangement length in song steps, 1-16.
func (m *Mode0Sequencer) LoopLength() int { return m.loopLength }

// ScaleRoot returns the published global scale root, 0-11.
func (m *Mode0Sequencer) ScaleRoot() int { return m.scaleRoot }

// ScaleType returns the published global scale type, 0-7.
func (m *Mode0Sequencer) ScaleType() int { return m.scaleType }

// PatternOverride returns the published pattern for a mode, or -1 when the
// song layer has not published one.
func (m *Mode0Sequencer) PatternOverride(mode int) int {
	if mode < 0 || mode >= NumModes {
		return -1
	}
	return m.patternOverrides[mode]
}

// VelocityOffset returns the published velocity offset for a mode.
func (m *Mode0Sequencer) VelocityOffset(mode int) int {
	if mode < 0 || mode >= NumModes {
		return 0
	}
	return m.velocityOffsets[mode]
}

// scalePot maps a 0-127 pot value onto [0, buckets).
func scalePot(value uint8, buckets int) int {
	n := int(value) * buckets / 128
	if n > buckets-1 {
		n = buckets - 1
	}
	return n
}

func clampVelocityOffset(n int) int {
	if n < -64 {
		return -64
	}
	if n > 63 {
		return 63
	}
	return n
}
