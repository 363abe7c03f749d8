// Package cmd defines the command-line interface.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "skiff",
	Short: "Skiff - local-model chat backend with tools",
	Long: `Skiff is the backend for a chat front-end running against a locally
hosted model. It routes messages to an OpenAI-compatible server (such as
Ollama), mediates tool calls for web search, encyclopedia lookups, weather,
and calculation, and offers a privileged computer-use mode for working
directly on the host.

Running skiff without a subcommand starts the HTTP API server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, args)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
