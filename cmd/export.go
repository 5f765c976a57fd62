package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"gruvbok/midi"
	"gruvbok/sequencer"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <song file>",
	Short: "Render a song to a Standard MIDI File",
	Long: `Render a song's arrangement to a .mid file.

The song layer resolves which pattern each mode plays bar by bar, the same
way playback does, and each mode becomes one SMF track.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "output path (default: song name with .mid)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	path := args[0]

	song := sequencer.NewSong()
	tempo := sequencer.TempoDefaultBPM
	if strings.EqualFold(filepath.Ext(path), ".bin") {
		if err := song.LoadBinary(path); err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
	} else {
		_, t, err := song.Load(path)
		if err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
		if t > 0 {
			tempo = t
		}
	}

	out := exportOut
	if out == "" {
		out = strings.TrimSuffix(path, filepath.Ext(path)) + ".mid"
	}

	if err := midi.ExportSMF(song, tempo, out); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d BPM)\n", out, tempo)
	return nil
}
