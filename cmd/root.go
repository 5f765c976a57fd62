package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gruvbok",
	Short: "A scriptable groovebox step sequencer",
	Long: `gruvbok is a 16-step groovebox sequencer driven by per-mode Lua scripts.

It plays 14 instrument modes plus a song layer that arranges patterns bar
by bar, dispatching MIDI to real output ports with sample-independent
millisecond timing.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
