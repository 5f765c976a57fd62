package sequencer

// Hardware abstracts the physical groovebox: 16 step buttons, four rotary
// pots, four slider pots, one LED and a raw MIDI output. Implemented by the
// desktop host and by the microcontroller port. All values are polled; the
// core never blocks on hardware.
type Hardware interface {
	// Millis returns a monotonic millisecond clock.
	Millis() uint32

	// ReadButton reports whether button 0-15 registered a press since the
	// last read.
	ReadButton(button int) bool

	// ReadRotaryPot returns rotary pot 0-3 as a MIDI value 0-127.
	ReadRotaryPot(pot int) uint8

	// ReadSliderPot returns slider pot 0-3 as a MIDI value 0-127.
	ReadSliderPot(pot int) uint8

	// SetLED drives the feedback LED.
	SetLED(on bool)

	// SendMIDI writes raw MIDI bytes to the external transport.
	SendMIDI(msg []byte)
}

// AudioSink is the optional second scheduler destination: an internal
// renderer running on its own thread. Dispatch is fire-and-forget; the core
// never blocks on it.
type AudioSink interface {
	SendMIDI(msg []byte)
}

// InitContext is handed to a script's init entry point at load time and
// again after a debounced tempo change.
type InitContext struct {
	Tempo          int // BPM
	ModeNumber     int // 0-14
	MIDIChannel    int // 0-13 output channel (0 for the song layer)
	ScaleRoot      int // 0-11, published by the song layer
	ScaleType      int // 0-7, published by the song layer
	VelocityOffset int // -64..+63, published by the song layer
}

// Script is one channel's step logic. Implementations are opaque,
// single-threaded state invoked only from the engine's thread.
type Script interface {
	// Init is called once at load and after each debounced tempo change.
	Init(ctx InitContext) error

	// ProcessEvent translates one step's event into zero or more timed
	// instructions. The returned slice is only valid until the next call.
	ProcessEvent(track int, ev Event) []Instruction
}

// ScriptSet resolves the loaded script for a mode, or nil when that channel
// has no (valid) script.
type ScriptSet interface {
	Script(mode int) Script
}
