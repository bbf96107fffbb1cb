package main

import (
	"encoding/json"
	"strconv"

	"github.com/spf13/cobra"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect background jobs (e.g. provider login flows)",
}

var jobsListLimit int

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent background jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		var out json.RawMessage
		path := "/admin/jobs?limit=" + strconv.Itoa(jobsListLimit)
		if err := newAdminClient(adminServerURL, adminAPIKey).get(path, &out); err != nil {
			return err
		}
		return printJSON(out)
	},
}

var jobsGetCmd = &cobra.Command{
	Use:   "get <job-id>",
	Short: "Show a job's status and captured output lines",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var out json.RawMessage
		if err := newAdminClient(adminServerURL, adminAPIKey).get("/admin/jobs/"+args[0], &out); err != nil {
			return err
		}
		return printJSON(out)
	},
}

func init() {
	rootCmd.AddCommand(jobsCmd)
	jobsCmd.AddCommand(jobsListCmd, jobsGetCmd)

	jobsListCmd.Flags().IntVar(&jobsListLimit, "limit", 50, "maximum number of jobs to list")
}
