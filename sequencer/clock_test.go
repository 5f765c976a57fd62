package sequencer

import (
	"math"
	"testing"
)

func TestClockInterval(t *testing.T) {
	hw := newFakeHardware()
	c := NewMidiClockManager(NewMidiScheduler(hw), hw)

	// 120 BPM at 24 PPQN is 20.8333... ms per pulse.
	if got := c.IntervalMs(); math.Abs(got-60000.0/120/24) > 1e-9 {
		t.Errorf("interval = %v ms, want 20.8333", got)
	}

	c.SetTempo(60)
	if got := c.IntervalMs(); math.Abs(got-41.666666) > 1e-3 {
		t.Errorf("interval at 60 BPM = %v ms, want 41.666", got)
	}
}

func TestClockEmitsPulsesOnSchedule(t *testing.T) {
	hw := newFakeHardware()
	c := NewMidiClockManager(NewMidiScheduler(hw), hw)

	c.Start()
	if hw.sentWithStatus(0xFA) != 1 {
		t.Fatal("start did not emit a transport Start")
	}

	// Pulses due at 0, 20, 41, 62, 83; the one at 104 is in the future.
	c.Update(100)
	if got := c.PulseCount(); got != 5 {
		t.Errorf("pulse count = %d after 100 ms, want 5", got)
	}
	if got := hw.sentWithStatus(0xF8); got != 5 {
		t.Errorf("sent %d clock bytes, want 5", got)
	}
}

func TestClockCatchesUpWithoutDrift(t *testing.T) {
	hw := newFakeHardware()
	c := NewMidiClockManager(NewMidiScheduler(hw), hw)

	c.Start()
	c.Update(100)

	// A late caller gets every missed pulse, none skipped: by 500 ms
	// exactly 25 pulses (0..24) are due at 120 BPM.
	c.Update(500)
	if got := c.PulseCount(); got != 25 {
		t.Errorf("pulse count = %d after 500 ms, want 25", got)
	}
}

func TestClockStop(t *testing.T) {
	hw := newFakeHardware()
	c := NewMidiClockManager(NewMidiScheduler(hw), hw)

	c.Start()
	c.Stop()
	if hw.sentWithStatus(0xFC) != 1 {
		t.Error("stop did not emit a transport Stop")
	}
}
