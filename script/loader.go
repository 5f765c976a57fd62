package script

import (
	"fmt"
	"os"
	"path/filepath"

	"gruvbok/debug"
	"gruvbok/sequencer"
)

// Loader owns one Mode per channel and satisfies sequencer.ScriptSet.
// Channels whose script failed to load simply resolve to nil; the engine
// skips them and the rest keep playing.
type Loader struct {
	modes [sequencer.NumModes]*Mode
}

// NewLoader returns an empty loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load binds a script file to a mode number, replacing any previous script.
func (l *Loader) Load(mode int, path string) error {
	if mode < 0 || mode >= sequencer.NumModes {
		return fmt.Errorf("mode %d out of range", mode)
	}

	m := New()
	if err := m.LoadFile(path); err != nil {
		m.Close()
		return err
	}

	if old := l.modes[mode]; old != nil {
		old.Close()
	}
	l.modes[mode] = m
	return nil
}

// LoadDir loads modeN.lua files from a directory, one per channel. Missing
// or broken files leave that channel silent. Returns how many loaded.
func (l *Loader) LoadDir(dir string) int {
	loaded := 0
	for mode := 0; mode < sequencer.NumModes; mode++ {
		path := filepath.Join(dir, fmt.Sprintf("mode%d.lua", mode))
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := l.Load(mode, path); err != nil {
			debug.Log("script", "mode %d: %v", mode, err)
			continue
		}
		loaded++
	}
	return loaded
}

// Script resolves a mode's script, or nil when none is loaded and valid.
func (l *Loader) Script(mode int) sequencer.Script {
	if mode < 0 || mode >= sequencer.NumModes {
		return nil
	}
	m := l.modes[mode]
	if m == nil || !m.Valid() {
		return nil
	}
	return m
}

// Mode returns the raw script state for UI queries (name, slider labels).
func (l *Loader) Mode(mode int) *Mode {
	if mode < 0 || mode >= sequencer.NumModes {
		return nil
	}
	return l.modes[mode]
}

// Close releases every interpreter.
func (l *Loader) Close() {
	for i, m := range l.modes {
		if m != nil {
			m.Close()
			l.modes[i] = nil
		}
	}
}
