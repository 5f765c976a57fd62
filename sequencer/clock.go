package sequencer

// PulsesPerQuarter is the MIDI transport clock rate, 24 PPQN.
const PulsesPerQuarter = 24

// MidiClockManager emits the transport clock using absolute-time accounting:
// the Nth pulse is due at start + N*interval, so rounding never accumulates
// and the clock catches up after a late caller instead of drifting.
type MidiClockManager struct {
	scheduler *MidiScheduler
	hw        Hardware

	tempo      int
	startTime  uint32
	pulseCount uint32
	intervalMs float64
}

// NewMidiClockManager creates a clock at 120 BPM over the given scheduler.
func NewMidiClockManager(scheduler *MidiScheduler, hw Hardware) *MidiClockManager {
	c := &MidiClockManager{
		scheduler: scheduler,
		hw:        hw,
		tempo:     TempoDefaultBPM,
	}
	c.calculateInterval()
	return c
}

// Start stamps the clock origin, resets the pulse count and emits a
// transport Start.
func (c *MidiClockManager) Start() {
	c.startTime = c.hw.Millis()
	c.pulseCount = 0
	c.scheduler.SendStart()
}

// Stop emits a transport Stop.
func (c *MidiClockManager) Stop() {
	c.scheduler.SendStop()
}

// Update emits every pulse whose due time has passed, looping until the
// clock has caught up with now. Pulses are never skipped, only batched when
// the caller is late.
func (c *MidiClockManager) Update(now uint32) {
	next := c.startTime + uint32(float64(c.pulseCount)*c.intervalMs)
	for now >= next {
		c.scheduler.SendClock()
		c.pulseCount++
		next = c.startTime + uint32(float64(c.pulseCount)*c.intervalMs)
	}
}

// SetTempo recomputes the pulse interval.
func (c *MidiClockManager) SetTempo(bpm int) {
	c.tempo = bpm
	c.calculateInterval()
}

// Tempo returns the clock tempo in BPM.
func (c *MidiClockManager) Tempo() int { return c.tempo }

// PulseCount returns the number of pulses emitted since Start.
func (c *MidiClockManager) PulseCount() uint32 { return c.pulseCount }

// IntervalMs returns the pulse interval. At 120 BPM this is 60000/120/24 =
// 20.8333... ms; kept as float64 so truncation cannot accumulate.
func (c *MidiClockManager) IntervalMs() float64 { return c.intervalMs }

func (c *MidiClockManager) calculateInterval() {
	c.intervalMs = msPerMinute / float64(c.tempo) / PulsesPerQuarter
}
