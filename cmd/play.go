package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"gruvbok/config"
	"gruvbok/debug"
	"gruvbok/desktop"
	"gruvbok/midi"
	"gruvbok/script"
	"gruvbok/sequencer"
	"gruvbok/tui"
)

var (
	playPort    string
	playScripts string
	playTempo   int
	playDebug   bool
)

var playCmd = &cobra.Command{
	Use:   "play [song file]",
	Short: "Start the sequencer TUI",
	Long: `Start the interactive sequencer.

Loads mode scripts from the script directory (mode1.lua .. mode14.lua),
opens the configured MIDI output port and runs the groovebox on a terminal
front panel. A song file argument is loaded before playback; .bin files use
the binary format, anything else is parsed as JSON.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&playPort, "port", "", "MIDI output port name (default: first available)")
	playCmd.Flags().StringVar(&playScripts, "scripts", "", "mode script directory")
	playCmd.Flags().IntVar(&playTempo, "tempo", 0, "startup tempo in BPM")
	playCmd.Flags().BoolVar(&playDebug, "debug", false, "write a debug log")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if playPort != "" {
		cfg.MIDIPort = playPort
	}
	if playScripts != "" {
		cfg.ScriptDir = playScripts
	}
	if playTempo > 0 {
		cfg.Tempo = playTempo
	}
	if len(args) > 0 {
		cfg.SongFile = args[0]
	}

	if playDebug || cfg.Debug {
		if err := debug.Enable(); err != nil {
			fmt.Fprintf(os.Stderr, "debug log unavailable: %v\n", err)
		}
		defer debug.Disable()
	}

	out := midi.NewOut(cfg.MIDIPort)
	defer midi.Close()

	hw := desktop.NewHardware(out)

	loader := script.NewLoader()
	defer loader.Close()
	if n := loader.LoadDir(cfg.ScriptDir); n == 0 {
		fmt.Fprintf(os.Stderr, "no mode scripts found in %s\n", cfg.ScriptDir)
	}

	song := sequencer.NewSong()
	songName := ""
	if cfg.SongFile != "" {
		if name, tempo, err := loadSong(song, cfg.SongFile); err != nil {
			fmt.Fprintf(os.Stderr, "could not load %s: %v\n", cfg.SongFile, err)
		} else {
			songName = name
			if tempo > 0 && playTempo == 0 {
				cfg.Tempo = tempo
			}
		}
	}

	engine := sequencer.NewEngine(song, hw, loader)
	engine.SetUseExternalMIDI(cfg.ExternalOut)
	engine.SetUseInternalAudio(cfg.InternalOut)
	engine.SetTempo(cfg.Tempo)
	engine.SetAutosave(func() error {
		return song.SaveBinary(config.AutosavePath())
	})

	p := tea.NewProgram(tui.NewModel(engine, hw, loader, cfg, songName), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}

	return cfg.Save()
}

// loadSong reads a song file, picking the codec from the extension.
func loadSong(song *sequencer.Song, path string) (string, int, error) {
	if strings.EqualFold(filepath.Ext(path), ".bin") {
		return "", 0, song.LoadBinary(path)
	}
	return song.Load(path)
}
