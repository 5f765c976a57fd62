// Package desktop implements the hardware contract for general-purpose
// hosts: a wall-clock millisecond timer, input registers written by the TUI
// and a pluggable raw-byte MIDI sink.
package desktop

import (
	"time"

	"gruvbok/sequencer"
)

// Sink receives raw MIDI bytes.
type Sink interface {
	Send(msg []byte)
}

// Hardware is the desktop stand-in for the groovebox panel. The TUI writes
// the button latches and pot registers; the engine polls them. Everything
// runs on the TUI event loop, so the single-writer rule of the core holds
// without locking.
type Hardware struct {
	start time.Time

	buttons [sequencer.StepsPerTrack]bool // one-shot latches
	rotary  [4]uint8
	sliders [4]uint8

	led  bool
	sink Sink
}

// NewHardware creates desktop hardware with pot registers matching the
// engine defaults (mode 1, 120 BPM, pattern 0, track 0, sliders centered).
func NewHardware(sink Sink) *Hardware {
	h := &Hardware{
		start: time.Now(),
		sink:  sink,
	}
	h.rotary[sequencer.PotMode] = 12    // maps to mode 1
	h.rotary[sequencer.PotTempo] = 43   // maps to 120 BPM
	h.rotary[sequencer.PotPattern] = 0
	h.rotary[sequencer.PotTrack] = 0
	for i := range h.sliders {
		h.sliders[i] = 64
	}
	return h
}

// Millis returns milliseconds since construction.
func (h *Hardware) Millis() uint32 {
	return uint32(time.Since(h.start).Milliseconds())
}

// ReadButton reports and clears a button latch.
func (h *Hardware) ReadButton(button int) bool {
	if button < 0 || button >= len(h.buttons) {
		return false
	}
	pressed := h.buttons[button]
	h.buttons[button] = false
	return pressed
}

// PressButton latches one button press for the next engine poll.
func (h *Hardware) PressButton(button int) {
	if button >= 0 && button < len(h.buttons) {
		h.buttons[button] = true
	}
}

// ReadRotaryPot returns rotary pot 0-3.
func (h *Hardware) ReadRotaryPot(pot int) uint8 {
	if pot < 0 || pot >= len(h.rotary) {
		return 0
	}
	return h.rotary[pot]
}

// SetRotaryPot writes rotary pot 0-3, clamped to 0-127.
func (h *Hardware) SetRotaryPot(pot int, value int) {
	if pot < 0 || pot >= len(h.rotary) {
		return
	}
	h.rotary[pot] = clampMIDI(value)
}

// NudgeRotaryPot moves a rotary pot by a signed amount.
func (h *Hardware) NudgeRotaryPot(pot int, delta int) {
	if pot < 0 || pot >= len(h.rotary) {
		return
	}
	h.rotary[pot] = clampMIDI(int(h.rotary[pot]) + delta)
}

// ReadSliderPot returns slider pot 0-3.
func (h *Hardware) ReadSliderPot(pot int) uint8 {
	if pot < 0 || pot >= len(h.sliders) {
		return 0
	}
	return h.sliders[pot]
}

// SetSliderPot writes slider pot 0-3, clamped to 0-127.
func (h *Hardware) SetSliderPot(pot int, value int) {
	if pot < 0 || pot >= len(h.sliders) {
		return
	}
	h.sliders[pot] = clampMIDI(value)
}

// NudgeSliderPot moves a slider pot by a signed amount.
func (h *Hardware) NudgeSliderPot(pot int, delta int) {
	if pot < 0 || pot >= len(h.sliders) {
		return
	}
	h.sliders[pot] = clampMIDI(int(h.sliders[pot]) + delta)
}

// SetLED mirrors the panel LED.
func (h *Hardware) SetLED(on bool) { h.led = on }

// LED returns the mirrored LED state for display.
func (h *Hardware) LED() bool { return h.led }

// SendMIDI forwards raw bytes to the sink, if any.
func (h *Hardware) SendMIDI(msg []byte) {
	if h.sink != nil {
		h.sink.Send(msg)
	}
}

func clampMIDI(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 127 {
		return 127
	}
	return uint8(v)
}
