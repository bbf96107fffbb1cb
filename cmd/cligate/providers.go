package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hearthline/cligate/pkg/cli"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Inspect and control configured CLI providers",
}

var providersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured providers and the models they own",
	RunE: func(cmd *cobra.Command, args []string) error {
		var out []struct {
			ID     string   `json:"id"`
			Models []string `json:"models"`
		}
		if err := newAdminClient(adminServerURL, adminAPIKey).get("/admin/providers", &out); err != nil {
			return err
		}
		return printJSON(out)
	},
}

var providersStatusCmd = &cobra.Command{
	Use:   "status <provider-id>",
	Short: "Show a provider's current authentication status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var out json.RawMessage
		if err := newAdminClient(adminServerURL, adminAPIKey).get("/admin/providers/"+args[0]+"/status", &out); err != nil {
			return err
		}
		return printJSON(out)
	},
}

var providersRateLimitCmd = &cobra.Command{
	Use:   "ratelimit <provider-id>",
	Short: "Show a provider's current rate-limit status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var out json.RawMessage
		if err := newAdminClient(adminServerURL, adminAPIKey).get("/admin/providers/"+args[0]+"/ratelimit", &out); err != nil {
			return err
		}
		return printJSON(out)
	},
}

var providersLoginCmd = &cobra.Command{
	Use:   "login <provider-id>",
	Short: "Start a provider's login command as a background job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var out struct {
			JobID string `json:"jobId"`
		}
		if err := newAdminClient(adminServerURL, adminAPIKey).post("/admin/providers/"+args[0]+"/login", &out); err != nil {
			return err
		}
		fmt.Printf("started login job %s\n", out.JobID)
		fmt.Printf("track it with: cligate jobs get %s\n", out.JobID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(providersCmd)
	providersCmd.AddCommand(providersListCmd, providersStatusCmd, providersRateLimitCmd, providersLoginCmd)
}

// printJSON renders v with the shared JSON formatter (matching the output
// other subcommands would use if --output were ever wired in).
func printJSON(v any) error {
	return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, v)
}
