package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "options-dashboard",
	Short: "Live option predictions and portfolio tracking",
}

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(migrateCmd)
}

func Execute() error {
	return rootCmd.Execute()
}
