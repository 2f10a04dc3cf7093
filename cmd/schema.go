package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"
	"github.com/vidctl/vidctl/event"
)

func init() {
	rootCmd.AddCommand(schemaCmd)
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of event records",
	Long:  "Print the JSON schema of the event records written by play --json.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		handleErr(encoder.Encode(event.Schema()))
	},
}
