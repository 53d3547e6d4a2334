package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the base command for the mtyhostal API server.
var rootCmd = &cobra.Command{
	Use:   "mtyhostal",
	Short: "mtyhostal lodging marketplace API server",
}

// Execute runs the root command and exits on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
