package sequencer

import "testing"

// songStep activates one arrangement step with the given pots.
func songStep(s *Song, step int, pot0, pot1, pot2, pot3 uint8) {
	ev := s.Event(SongLayer, 0, 0, step)
	ev.SetSwitch(true)
	ev.SetPot(0, pot0)
	ev.SetPot(1, pot1)
	ev.SetPot(2, pot2)
	ev.SetPot(3, pot3)
}

func TestCalculateLoopLength(t *testing.T) {
	tests := []struct {
		name   string
		active []int
		want   int
	}{
		{"empty loops one step", nil, 1},
		{"last active step wins", []int{2, 5}, 6},
		{"full track", []int{15}, 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSong()
			for _, step := range tt.active {
				songStep(s, step, 0, 0, 0, 64)
			}
			m := NewMode0Sequencer(s)
			m.CalculateLoopLength()
			if got := m.LoopLength(); got != tt.want {
				t.Errorf("loop length = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCalculateLoopLengthResetsStep(t *testing.T) {
	s := NewSong()
	songStep(s, 15, 0, 0, 0, 64)
	m := NewMode0Sequencer(s)
	m.CalculateLoopLength()

	for i := 0; i < 10; i++ {
		m.AdvanceStep()
	}
	if m.CurrentStep() != 10 {
		t.Fatalf("step = %d, want 10", m.CurrentStep())
	}

	// Shrink the arrangement under the playhead.
	s.Event(SongLayer, 0, 0, 15).SetSwitch(false)
	songStep(s, 2, 0, 0, 0, 64)
	m.CalculateLoopLength()

	if m.LoopLength() != 3 {
		t.Errorf("loop length = %d, want 3", m.LoopLength())
	}
	if m.CurrentStep() != 0 {
		t.Errorf("step = %d, want reset to 0", m.CurrentStep())
	}
}

func TestApplyParameters(t *testing.T) {
	s := NewSong()
	// pot0 10 -> pattern 2, pot1 64 -> root 6, pot2 64 -> type 4,
	// pot3 0 -> offset -64.
	songStep(s, 0, 10, 64, 64, 0)
	m := NewMode0Sequencer(s)
	m.CalculateLoopLength()
	m.Start()

	m.ApplyParameters()

	for mode := 1; mode < NumModes; mode++ {
		if got := m.PatternOverride(mode); got != 2 {
			t.Errorf("mode %d override = %d, want 2", mode, got)
		}
		if got := m.VelocityOffset(mode); got != -64 {
			t.Errorf("mode %d velocity offset = %d, want -64", mode, got)
		}
	}
	if m.ScaleRoot() != 6 {
		t.Errorf("scale root = %d, want 6", m.ScaleRoot())
	}
	if m.ScaleType() != 4 {
		t.Errorf("scale type = %d, want 4", m.ScaleType())
	}
}

func TestApplyParametersStickyHold(t *testing.T) {
	s := NewSong()
	songStep(s, 0, 10, 0, 0, 64) // pattern 2
	songStep(s, 2, 40, 0, 0, 64) // pattern 10
	// Step 1 is inactive; its bar keeps playing step 0's parameters.
	m := NewMode0Sequencer(s)
	m.CalculateLoopLength()
	m.Start()

	m.ApplyParameters()
	if got := m.PatternOverride(1); got != 2 {
		t.Fatalf("bar 0 override = %d, want 2", got)
	}

	m.AdvanceStep()
	m.ApplyParameters()
	if got := m.PatternOverride(1); got != 2 {
		t.Errorf("inactive bar changed the override to %d, want held 2", got)
	}

	m.AdvanceStep()
	m.ApplyParameters()
	if got := m.PatternOverride(1); got != 10 {
		t.Errorf("bar 2 override = %d, want 10", got)
	}
}

func TestParseEvent(t *testing.T) {
	s := NewSong()
	m := NewMode0Sequencer(s)

	ev := NewEvent(true, 10, 64, 64, 127)
	m.ParseEvent(ev, 3)

	if got := m.PatternOverride(3); got != 2 {
		t.Errorf("target override = %d, want 2", got)
	}
	if got := m.PatternOverride(4); got != -1 {
		t.Errorf("untargeted mode override = %d, want -1", got)
	}
	if got := m.VelocityOffset(3); got != 63 {
		t.Errorf("velocity offset = %d, want 63", got)
	}

	// An inactive event publishes nothing.
	var off Event
	m.ParseEvent(off, 4)
	if got := m.PatternOverride(4); got != -1 {
		t.Errorf("inactive event published override %d", got)
	}
}
