/*
Copyright © 2026 Paulo Suderio
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/suderio/rolldice/internal/env"
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:     "show <campaign_name>",
	Aliases: []string{"load"},
	Short:   "Load a campaign and print its variables",
	Long: `Reads the log.jsonl of a campaign, projects the environment from its
events and prints every table as YAML.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s, err := openSession(args[0], newEngine(nil), false)
		if err != nil {
			fail(err)
		}
		defer s.Close()

		e := s.Environment()
		out, err := env.FromSnapshot(e.Snapshot()).Marshal()
		if err != nil {
			fail(err)
		}
		fmt.Printf("Successfully loaded campaign!\n")
		fmt.Printf("Users: %d\n\n", len(e.Users()))
		fmt.Print(string(out))

		compact, _ := cmd.Flags().GetBool("compact")
		if compact {
			if err := s.Compact(); err != nil {
				fail(err)
			}
			fmt.Println("\nJournal compacted.")
		}
	},
}

func init() {
	campaignCmd.AddCommand(showCmd)
	showCmd.Flags().Bool("compact", false, "rewrite the journal as a single snapshot afterwards")
}
