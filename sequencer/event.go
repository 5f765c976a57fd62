package sequencer

// Event is a single step: one gate switch plus four pot values (0-127),
// bit-packed into a uint32 so the full song store stays under the embedded
// memory ceiling.
//
// Layout:
//
//	bit 0      switch
//	bits 1-7   pot 0
//	bits 8-14  pot 1
//	bits 15-21 pot 2
//	bits 22-28 pot 3
//	bits 29-31 unused
type Event uint32

const (
	switchMask = 0x00000001

	pot0Shift = 1
	pot1Shift = 8
	pot2Shift = 15
	pot3Shift = 22

	potMask = 0x7F

	// NumPots is the number of pot values stored per event (S1-S4).
	NumPots = 4
)

var potShifts = [NumPots]uint{pot0Shift, pot1Shift, pot2Shift, pot3Shift}

// NewEvent builds an event from a switch state and four pot values.
func NewEvent(on bool, pot0, pot1, pot2, pot3 uint8) Event {
	var e Event
	e.SetSwitch(on)
	e.SetPot(0, pot0)
	e.SetPot(1, pot1)
	e.SetPot(2, pot2)
	e.SetPot(3, pot3)
	return e
}

// Switch reports whether the step's gate is on.
func (e Event) Switch() bool {
	return e&switchMask != 0
}

// SetSwitch sets the gate bit.
func (e *Event) SetSwitch(on bool) {
	if on {
		*e |= switchMask
	} else {
		*e &^= switchMask
	}
}

// Pot returns pot value index 0-3. Out-of-range indices read as 0.
func (e Event) Pot(index int) uint8 {
	if index < 0 || index >= NumPots {
		return 0
	}
	return uint8((e >> potShifts[index]) & potMask)
}

// SetPot stores a pot value, clamped to 0-127. Out-of-range indices are
// ignored.
func (e *Event) SetPot(index int, value uint8) {
	if index < 0 || index >= NumPots {
		return
	}
	if value > 127 {
		value = 127
	}
	shift := potShifts[index]
	*e = (*e &^ (potMask << shift)) | (Event(value) << shift)
}

// Clear zeroes the event.
func (e *Event) Clear() {
	*e = 0
}

// RawData returns the packed word for serialization.
func (e Event) RawData() uint32 {
	return uint32(e)
}

// SetRawData overwrites the event with a packed word.
func (e *Event) SetRawData(raw uint32) {
	*e = Event(raw)
}
