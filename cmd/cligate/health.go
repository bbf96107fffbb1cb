package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Inspect per-model health state",
}

var healthSnapshotCmd = &cobra.Command{
	Use:   "snapshot [model-id]",
	Short: "Show the health snapshot for every model, or one model if given",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var out json.RawMessage
		path := "/admin/health"
		if len(args) == 1 {
			path = "/admin/health/" + args[0]
		}
		if err := newAdminClient(adminServerURL, adminAPIKey).get(path, &out); err != nil {
			return err
		}
		return printJSON(out)
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
	healthCmd.AddCommand(healthSnapshotCmd)
}
