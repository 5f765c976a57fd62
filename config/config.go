package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config is the persisted desktop settings under ~/.config/gruvbok.
type Config struct {
	MIDIPort    string `json:"midiPort,omitempty"`    // output port name, empty = first available
	ScriptDir   string `json:"scriptDir,omitempty"`   // directory of modeN.lua files
	SongFile    string `json:"songFile,omitempty"`    // last opened song
	Tempo       int    `json:"tempo,omitempty"`       // startup tempo (BPM)
	ExternalOut bool   `json:"externalOut"`           // dispatch to external MIDI
	InternalOut bool   `json:"internalOut,omitempty"` // dispatch to internal renderer
	Debug       bool   `json:"debug,omitempty"`       // enable debug log
}

// DefaultConfig returns sensible desktop defaults.
func DefaultConfig() *Config {
	return &Config{
		ScriptDir:   defaultScriptDir(),
		Tempo:       120,
		ExternalOut: true,
	}
}

// ConfigDir returns the config directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "gruvbok"), nil
}

// ConfigPath returns the full path to config.json.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// AutosavePath returns the default binary autosave target.
func AutosavePath() string {
	dir, err := ConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "gruvbok_autosave.bin")
	}
	return filepath.Join(dir, "autosave.bin")
}

// Load reads the config from disk, falling back to defaults when missing.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to disk, creating the directory if needed.
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func defaultScriptDir() string {
	dir, err := ConfigDir()
	if err != nil {
		return "scripts"
	}
	return filepath.Join(dir, "scripts")
}
