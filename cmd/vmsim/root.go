package main

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vmsim",
	Short: "VMSim simulates how an operating system manages virtual memory.",
	Long: `VMSim simulates how an operating system manages virtual memory. ` +
		`It runs scripted memory operations against a simulated kernel with ` +
		`two-level page tables, copy-on-write sharing, and processes forked ` +
		`on demand, and it records every operation for later inspection.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
