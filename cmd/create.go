/*
Copyright © 2026 Paulo Suderio
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// createCmd represents the create command
var createCmd = &cobra.Command{
	Use:   "create <campaign_name>",
	Short: "Create a new campaign",
	Long: `Bootstraps a fresh append-only log.jsonl under
campaigns_dir/<campaign_name>. Shared variables can then be put in a
globals.yaml next to it.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		m := campaignManager()
		path := m.GetCampaignPath(args[0])
		if _, err := os.Stat(path); err == nil {
			fmt.Printf("Campaign already exists at %s\n", path)
			return
		}

		store, err := m.Create(args[0])
		if err != nil {
			fail(err)
		}
		defer store.Close()

		fmt.Printf("Successfully created campaign at %s\n", path)
	},
}

func init() {
	campaignCmd.AddCommand(createCmd)
}
