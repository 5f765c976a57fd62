package sequencer

// LEDPattern names a feedback pattern for the single status LED.
type LEDPattern int

const (
	// TempoBeat is the default state: one short pulse per beat.
	TempoBeat LEDPattern = iota
	// ButtonHeld is a fast double-blink while a button is held.
	ButtonHeld
	// Saving blinks rapidly five times, then returns to TempoBeat.
	Saving
	// Loading pulses slowly until another pattern is triggered.
	Loading
	// ErrorBlink blinks fast three times, then returns to TempoBeat.
	ErrorBlink
	// MirrorMode alternates long-on/short-off until another pattern is
	// triggered.
	MirrorMode
)

// LED pattern timings in milliseconds.
const (
	ledTempoPulseMs = 50

	ledHeldOn1End   = 100
	ledHeldOff1End  = 150
	ledHeldOn2End   = 250
	ledHeldCycleEnd = 400

	ledSavingHalfMs  = 100
	ledSavingCycleMs = 200
	ledSavingCycles  = 5

	ledLoadingHalfMs = 1000

	ledErrorHalfMs  = 50
	ledErrorCycleMs = 100
	ledErrorCycles  = 3

	ledMirrorOnEnd    = 200
	ledMirrorCycleEnd = 300
)

// LEDController maps named feedback patterns to on/off timing on the
// hardware LED. Exactly one pattern is active at a time; self-terminating
// patterns fall back to TempoBeat after their fixed cycle count.
type LEDController struct {
	hw Hardware

	pattern    LEDPattern
	on         bool
	stateStart uint32
	phaseStart uint32
}

// NewLEDController creates the controller in the TempoBeat state.
func NewLEDController(hw Hardware) *LEDController {
	return &LEDController{hw: hw, pattern: TempoBeat}
}

// TriggerPattern switches state, resetting the phase timers and turning the
// LED on for the pattern's first phase.
func (l *LEDController) TriggerPattern(p LEDPattern) {
	l.pattern = p
	l.stateStart = l.hw.Millis()
	l.phaseStart = l.stateStart
	l.on = true
	l.hw.SetLED(true)
}

// TriggerPatternByName switches state by the name exposed to scripts.
// Unknown names fall back to TempoBeat.
func (l *LEDController) TriggerPatternByName(name string) {
	p := TempoBeat
	switch name {
	case "held":
		p = ButtonHeld
	case "saving":
		p = Saving
	case "loading":
		p = Loading
	case "error":
		p = ErrorBlink
	case "mirror":
		p = MirrorMode
	}
	l.TriggerPattern(p)
}

// CurrentPattern returns the active pattern.
func (l *LEDController) CurrentPattern() LEDPattern { return l.pattern }

// Update advances the state machine; the LED level is a pure function of
// elapsed time within the active pattern.
func (l *LEDController) Update(now uint32) {
	patternElapsed := now - l.stateStart
	phaseElapsed := now - l.phaseStart

	switch l.pattern {
	case TempoBeat:
		if l.on && phaseElapsed >= ledTempoPulseMs {
			l.set(false)
		}

	case ButtonHeld:
		switch {
		case patternElapsed < ledHeldOn1End:
			l.set(true)
		case patternElapsed < ledHeldOff1End:
			l.set(false)
		case patternElapsed < ledHeldOn2End:
			l.set(true)
		case patternElapsed < ledHeldCycleEnd:
			l.set(false)
		default:
			l.stateStart = now
		}

	case Saving:
		cycle := phaseElapsed / ledSavingCycleMs
		if cycle >= ledSavingCycles {
			l.pattern = TempoBeat
			l.set(false)
		} else {
			l.set(phaseElapsed%ledSavingCycleMs < ledSavingHalfMs)
		}

	case Loading:
		l.set(patternElapsed%(2*ledLoadingHalfMs) < ledLoadingHalfMs)

	case ErrorBlink:
		cycle := phaseElapsed / ledErrorCycleMs
		if cycle >= ledErrorCycles {
			l.pattern = TempoBeat
			l.set(false)
		} else {
			l.set(phaseElapsed%ledErrorCycleMs < ledErrorHalfMs)
		}

	case MirrorMode:
		switch {
		case patternElapsed < ledMirrorOnEnd:
			l.set(true)
		case patternElapsed < ledMirrorCycleEnd:
			l.set(false)
		default:
			l.stateStart = now
		}
	}
}

func (l *LEDController) set(on bool) {
	if on != l.on {
		l.hw.SetLED(on)
		l.on = on
	}
}
