package cmd

import (
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:          "clauser",
		Short:        "clauser",
		SilenceUsage: true,
		Long:         `CLI tool for working with Clausewitz-style game data files: dump token streams, bind files into a generic form, check whole directories, and generate duplicate-key binding code.`,
	}

	verbose bool
)

// Execute executes the root command.
func Execute() error {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every file as it is processed")
	return rootCmd.Execute()
}
