package main

import (
	"os"
)

func main() {
	rootCmd := NewRootCommand()
	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewResumeCommand())
	rootCmd.AddCommand(NewGraphCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
