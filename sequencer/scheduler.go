package sequencer

// MIDI status bytes used by the core.
const (
	statusNoteOff       = 0x80
	statusNoteOn        = 0x90
	statusControlChange = 0xB0
	statusProgramChange = 0xC0

	realtimeClock    = 0xF8
	realtimeStart    = 0xFA
	realtimeContinue = 0xFB
	realtimeStop     = 0xFC

	ccAllNotesOff = 123
)

// Instruction is a "fire these bytes in Delta ms" request, as produced by
// scripts and consumed by the scheduler. Fixed-size so scheduling never
// allocates.
type Instruction struct {
	Data    [3]byte
	Len     uint8
	Delta   uint32 // milliseconds from now
	Channel uint8  // MIDI channel 0-15, rewritten into the status byte
}

// NoteOn builds a note-on instruction. Pitch and velocity are masked into
// the 7-bit range.
func NoteOn(pitch, velocity, channel uint8, delta uint32) Instruction {
	return Instruction{
		Data:    [3]byte{statusNoteOn | channel&0x0F, pitch & 0x7F, velocity & 0x7F},
		Len:     3,
		Delta:   delta,
		Channel: channel,
	}
}

// NoteOff builds a note-off instruction. Release velocity is fixed at 0x40.
func NoteOff(pitch, channel uint8, delta uint32) Instruction {
	return Instruction{
		Data:    [3]byte{statusNoteOff | channel&0x0F, pitch & 0x7F, 0x40},
		Len:     3,
		Delta:   delta,
		Channel: channel,
	}
}

// ControlChange builds a CC instruction with controller and value masked
// into the 7-bit range.
func ControlChange(controller, value, channel uint8, delta uint32) Instruction {
	return Instruction{
		Data:    [3]byte{statusControlChange | channel&0x0F, controller & 0x7F, value & 0x7F},
		Len:     3,
		Delta:   delta,
		Channel: channel,
	}
}

// AllNotesOff builds a CC 123 instruction.
func AllNotesOff(channel uint8, delta uint32) Instruction {
	return ControlChange(ccAllNotesOff, 0, channel, delta)
}

// ProgramChange builds a two-byte program change instruction.
func ProgramChange(program, channel uint8, delta uint32) Instruction {
	return Instruction{
		Data:    [3]byte{statusProgramChange | channel&0x0F, program & 0x7F, 0},
		Len:     2,
		Delta:   delta,
		Channel: channel,
	}
}

// SchedulerCapacity is the fixed number of in-flight scheduled instructions.
// Typical load is 1-16 per step, so 64 slots leave generous headroom without
// dynamic growth.
const SchedulerCapacity = 64

type scheduledEvent struct {
	data   [3]byte
	length uint8
	dueAt  uint32 // absolute ms
	active bool
}

// MidiScheduler converts delta-timed instructions into absolute-time entries
// in a fixed-capacity buffer and flushes due entries, in nondecreasing time
// order, to the enabled sinks. A full buffer silently drops new entries
// rather than growing or blocking.
type MidiScheduler struct {
	hw    Hardware
	audio AudioSink

	useExternal bool
	useInternal bool

	buffer [SchedulerCapacity]scheduledEvent
	count  int
}

// NewMidiScheduler creates a scheduler dispatching to the hardware transport.
// External MIDI defaults on; the internal sink stays off until one is set.
func NewMidiScheduler(hw Hardware) *MidiScheduler {
	return &MidiScheduler{hw: hw, useExternal: true}
}

// SetAudioSink attaches the internal renderer sink.
func (s *MidiScheduler) SetAudioSink(sink AudioSink) { s.audio = sink }

// SetUseInternalAudio toggles dispatch to the internal sink.
func (s *MidiScheduler) SetUseInternalAudio(on bool) { s.useInternal = on }

// SetUseExternalMIDI toggles dispatch to the hardware transport.
func (s *MidiScheduler) SetUseExternalMIDI(on bool) { s.useExternal = on }

// UsingInternalAudio reports whether the internal sink is enabled.
func (s *MidiScheduler) UsingInternalAudio() bool { return s.useInternal }

// UsingExternalMIDI reports whether the external transport is enabled.
func (s *MidiScheduler) UsingExternalMIDI() bool { return s.useExternal }

// QueuedCount returns the number of pending entries.
func (s *MidiScheduler) QueuedCount() int { return s.count }

// Schedule converts an instruction to an absolute-time entry. The status
// byte is rewritten with the instruction's channel. When the buffer is full
// the instruction is dropped; already-scheduled output is preserved.
func (s *MidiScheduler) Schedule(instr Instruction) {
	slot := s.findFreeSlot()
	if slot < 0 {
		return
	}

	data := instr.Data
	if instr.Len > 0 {
		data[0] = data[0]&0xF0 | instr.Channel&0x0F
	}

	s.buffer[slot] = scheduledEvent{
		data:   data,
		length: instr.Len,
		dueAt:  s.hw.Millis() + instr.Delta,
		active: true,
	}
	s.count++

	if s.count > 1 {
		s.sortEvents()
	}
}

// ScheduleAll schedules a batch of instructions.
func (s *MidiScheduler) ScheduleAll(instrs []Instruction) {
	for _, in := range instrs {
		s.Schedule(in)
	}
}

// Update dispatches every due entry to the enabled sinks, walking the
// time-ordered buffer from the front and stopping at the first entry that is
// not yet due.
func (s *MidiScheduler) Update(now uint32) {
	for i := 0; i < SchedulerCapacity && s.count > 0; i++ {
		if !s.buffer[i].active {
			continue
		}
		if s.buffer[i].dueAt > now {
			// Buffer is sorted; everything beyond here is in the future.
			break
		}

		msg := s.buffer[i].data[:s.buffer[i].length]
		if s.useExternal {
			s.hw.SendMIDI(msg)
		}
		if s.useInternal && s.audio != nil {
			s.audio.SendMIDI(msg)
		}

		s.buffer[i].active = false
		s.count--
	}
}

// Clear frees every slot without dispatching.
func (s *MidiScheduler) Clear() {
	for i := range s.buffer {
		s.buffer[i].active = false
	}
	s.count = 0
}

// SendClock emits a transport clock pulse (0xF8) immediately.
func (s *MidiScheduler) SendClock() { s.sendRealtime(realtimeClock) }

// SendStart emits a transport start (0xFA) immediately.
func (s *MidiScheduler) SendStart() { s.sendRealtime(realtimeStart) }

// SendStop emits a transport stop (0xFC) immediately.
func (s *MidiScheduler) SendStop() { s.sendRealtime(realtimeStop) }

// SendContinue emits a transport continue (0xFB) immediately.
func (s *MidiScheduler) SendContinue() { s.sendRealtime(realtimeContinue) }

func (s *MidiScheduler) sendRealtime(status byte) {
	msg := [1]byte{status}
	s.hw.SendMIDI(msg[:])
}

func (s *MidiScheduler) findFreeSlot() int {
	for i := range s.buffer {
		if !s.buffer[i].active {
			return i
		}
	}
	return -1
}

// sortEvents keeps active entries time-ordered at the front of the buffer.
// Dispatch punches holes into the front, so active entries are compacted
// first; otherwise a new entry landing in a freed slot could sort ahead of an
// older one stranded behind a hole, and Update would dispatch out of order.
// Insertion sort after that: the buffer is small and nearly sorted.
func (s *MidiScheduler) sortEvents() {
	n := 0
	for i := 0; i < SchedulerCapacity; i++ {
		if !s.buffer[i].active {
			continue
		}
		if i != n {
			s.buffer[n] = s.buffer[i]
			s.buffer[i] = scheduledEvent{}
		}
		n++
	}

	for i := 1; i < n; i++ {
		tmp := s.buffer[i]
		j := i - 1
		for j >= 0 && s.buffer[j].dueAt > tmp.dueAt {
			s.buffer[j+1] = s.buffer[j]
			j--
		}
		s.buffer[j+1] = tmp
	}
}
