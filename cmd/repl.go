/*
Copyright © 2026 Paulo Suderio
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/suderio/rolldice/internal/persistence"
	"github.com/suderio/rolldice/internal/session"
)

var replCmd = &cobra.Command{
	Use:   "repl [campaign_name]",
	Short: "Start the interactive REPL shell",
	Long: `Starts the read-eval-print loop. Lines are dice expressions unless they
start with a command name:
	> 4d6k3
	> atk = d20 + prof
	> atk @adv
	> vars

Without a campaign, variables are forgotten on exit.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		user, _ := cmd.Flags().GetString("user")
		engine := newEngine(seededRoller(cmd))

		var (
			app   *session.Session
			err   error
			title = "scratch"
		)
		if len(args) == 1 {
			title = args[0]
			app, err = openSession(args[0], engine, true)
		} else {
			app, err = session.NewSession(engine, persistence.NewMemoryStore(), nil)
		}
		if err != nil {
			fmt.Printf("Failed to bootstrap session: %v\n", err)
			os.Exit(1)
		}
		defer app.Close()

		if err := RunTUI(app, title, user); err != nil {
			fmt.Printf("Fatal TUI Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
	replCmd.Flags().StringP("user", "u", "cli", "user the variables belong to")
	replCmd.Flags().Int64("seed", 0, "seed for reproducible rolls")
}
