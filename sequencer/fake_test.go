package sequencer

// fakeHardware is a deterministic hardware stand-in: the test sets the
// millisecond counter and input registers directly and inspects everything
// the core sent.
type fakeHardware struct {
	millis  uint32
	buttons [StepsPerTrack]bool
	rotary  [4]uint8
	sliders [4]uint8
	led     bool
	sent    [][]byte
}

// newFakeHardware returns fake hardware whose pot registers resolve to the
// engine defaults: mode 1, 120 BPM, pattern 0, track 0, sliders centered.
func newFakeHardware() *fakeHardware {
	h := &fakeHardware{}
	h.rotary[PotMode] = 12
	h.rotary[PotTempo] = 43
	for i := range h.sliders {
		h.sliders[i] = 64
	}
	return h
}

func (h *fakeHardware) Millis() uint32 { return h.millis }

func (h *fakeHardware) ReadButton(button int) bool {
	if button < 0 || button >= len(h.buttons) {
		return false
	}
	return h.buttons[button]
}

func (h *fakeHardware) ReadRotaryPot(pot int) uint8 {
	if pot < 0 || pot >= len(h.rotary) {
		return 0
	}
	return h.rotary[pot]
}

func (h *fakeHardware) ReadSliderPot(pot int) uint8 {
	if pot < 0 || pot >= len(h.sliders) {
		return 0
	}
	return h.sliders[pot]
}

func (h *fakeHardware) SetLED(on bool) { h.led = on }

func (h *fakeHardware) SendMIDI(msg []byte) {
	h.sent = append(h.sent, append([]byte(nil), msg...))
}

// sentWithStatus counts sent messages whose status byte matches.
func (h *fakeHardware) sentWithStatus(status byte) int {
	n := 0
	for _, msg := range h.sent {
		if len(msg) > 0 && msg[0] == status {
			n++
		}
	}
	return n
}
