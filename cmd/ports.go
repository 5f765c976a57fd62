package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"gruvbok/midi"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List available MIDI output ports",
	Run:   runPorts,
}

func init() {
	rootCmd.AddCommand(portsCmd)
}

func runPorts(cmd *cobra.Command, args []string) {
	defer midi.Close()

	names := midi.OutPortNames()
	if len(names) == 0 {
		fmt.Println("no MIDI output ports found")
		return
	}
	for i, name := range names {
		fmt.Printf("%d: %s\n", i, name)
	}
}
