package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "quill",
	Short: "Quill is a durable document approval workflow engine",
	Long: `Quill runs multi-party document approval workflows: a document is analyzed,
a human approves or rejects it, and signing and scheduling follow. Sessions
checkpoint at every pause and survive process restarts.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "quill.yaml", "Path to the configuration file")
}
