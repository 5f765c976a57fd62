package sequencer

import "testing"

func TestTempoBeatPulse(t *testing.T) {
	hw := newFakeHardware()
	l := NewLEDController(hw)

	l.TriggerPattern(TempoBeat)
	if !hw.led {
		t.Fatal("LED should be on at trigger")
	}
	l.Update(49)
	if !hw.led {
		t.Error("LED off before the 50 ms pulse ended")
	}
	l.Update(50)
	if hw.led {
		t.Error("LED still on after the 50 ms pulse")
	}
}

func TestSavingReturnsToTempoBeat(t *testing.T) {
	hw := newFakeHardware()
	l := NewLEDController(hw)

	l.TriggerPattern(Saving)
	l.Update(50)
	if !hw.led {
		t.Error("LED off during the first on-phase")
	}
	l.Update(150)
	if hw.led {
		t.Error("LED on during the first off-phase")
	}

	l.Update(950)
	if l.CurrentPattern() != Saving {
		t.Fatal("pattern ended before five cycles")
	}
	l.Update(1000)
	if l.CurrentPattern() != TempoBeat {
		t.Error("pattern did not return to TempoBeat after five cycles")
	}
	if hw.led {
		t.Error("LED left on after the pattern ended")
	}
}

func TestErrorBlinkTerminates(t *testing.T) {
	hw := newFakeHardware()
	l := NewLEDController(hw)

	l.TriggerPattern(ErrorBlink)
	l.Update(299)
	if l.CurrentPattern() != ErrorBlink {
		t.Fatal("pattern ended before three cycles")
	}
	l.Update(300)
	if l.CurrentPattern() != TempoBeat {
		t.Error("pattern did not return to TempoBeat after three cycles")
	}
}

func TestLoadingTogglesUntilReplaced(t *testing.T) {
	hw := newFakeHardware()
	l := NewLEDController(hw)

	l.TriggerPattern(Loading)
	l.Update(500)
	if !hw.led {
		t.Error("LED off during the first second")
	}
	l.Update(1500)
	if hw.led {
		t.Error("LED on during the second second")
	}
	l.Update(2500)
	if !hw.led {
		t.Error("LED off in the third second")
	}
	if l.CurrentPattern() != Loading {
		t.Error("loading pattern terminated on its own")
	}
}

func TestButtonHeldCycles(t *testing.T) {
	hw := newFakeHardware()
	l := NewLEDController(hw)

	l.TriggerPattern(ButtonHeld)
	l.Update(120)
	if hw.led {
		t.Error("LED on in the first gap")
	}
	l.Update(200)
	if !hw.led {
		t.Error("LED off in the second pulse")
	}
	l.Update(300)
	if hw.led {
		t.Error("LED on in the rest phase")
	}

	// Cycle restarts at 400 ms.
	l.Update(400)
	l.Update(450)
	if !hw.led {
		t.Error("LED off after the cycle restarted")
	}
}

func TestTriggerPatternByName(t *testing.T) {
	hw := newFakeHardware()
	l := NewLEDController(hw)

	tests := []struct {
		name string
		want LEDPattern
	}{
		{"held", ButtonHeld},
		{"saving", Saving},
		{"loading", Loading},
		{"error", ErrorBlink},
		{"mirror", MirrorMode},
		{"bogus", TempoBeat},
	}
	for _, tt := range tests {
		l.TriggerPatternByName(tt.name)
		if got := l.CurrentPattern(); got != tt.want {
			t.Errorf("%q selected pattern %d, want %d", tt.name, got, tt.want)
		}
	}
}
