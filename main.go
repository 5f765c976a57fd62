package main

import "gruvbok/cmd"

func main() {
	cmd.Execute()
}
