// Package cli implements the pm command tree and the interactive shell.
package cli

import (
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "pm",
	Short: "Hierarchical project tracking",
	Long: "pm is a project tracking tool built on a four-level hierarchy.\n" +
		"Projects contain phases, phases contain processes, processes contain\n" +
		"tasks. Completing tasks rolls progress up automatically.",
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default ~/.pm/config.yaml)")

	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(phaseCmd)
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(notificationsCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(boardCmd)
	rootCmd.AddCommand(shellCmd)
}
