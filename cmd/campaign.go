/*
Copyright © 2026 Paulo Suderio
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// campaignCmd represents the campaign command
var campaignCmd = &cobra.Command{
	Use:   "campaign",
	Short: "Manage campaign journals",
	Long: `A campaign is a folder under campaigns_dir holding an append-only
journal of variable changes (log.jsonl), optional shared variables
(globals.yaml) and optional chat settings (telegram.yaml).

Use subcommands 'create', 'list', 'show' and 'telegram' to manage them.`,
}

var campaignListCmd = &cobra.Command{
	Use:   "list",
	Short: "List campaigns",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		names, err := campaignManager().List()
		if err != nil {
			fail(err)
		}
		if len(names) == 0 {
			fmt.Printf("No campaigns in %s\n", appCfg.CampaignsDir)
			return
		}
		for _, n := range names {
			fmt.Println(n)
		}
	},
}

func init() {
	rootCmd.AddCommand(campaignCmd)
	campaignCmd.AddCommand(campaignListCmd)
}
