package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool

	// Admin subcommand flags: where to reach a running gateway's admin surface.
	adminServerURL string
	adminAPIKey    string
)

var rootCmd = &cobra.Command{
	Use:   "cligate",
	Short: "cligate - an OpenAI-compatible HTTP gateway fronting CLI model providers",
	Long: `cligate is an HTTP gateway that speaks the OpenAI chat-completions wire
protocol while dispatching requests to locally installed CLI tools instead of
HTTP-based model APIs.

It provides:
  - A fallback-chain dispatcher across CLI providers and their models
  - Structured output parsing of each provider's stdout (plain text, a final-line
    JSON contract, or a whole-output JSON contract)
  - Per-model health tracking with advisory cooldowns and suggested states
    (reported to operators; the dispatcher does not skip models on them)
  - Background job management for long-running CLI commands (e.g. login flows)

For more information, see the repository README.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&adminServerURL, "server-url", "http://127.0.0.1:8080", "base URL of a running cligate server's admin API")
	rootCmd.PersistentFlags().StringVar(&adminAPIKey, "api-key", "", "bearer token for the admin API, if the server requires one")

	rootCmd.CompletionOptions.DisableDefaultCmd = false
}
