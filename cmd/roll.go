package cmd

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/suderio/rolldice/internal/calc"
	"github.com/suderio/rolldice/internal/command"
	"github.com/suderio/rolldice/internal/dice"
)

var (
	detailColor = color.New(color.FgHiBlack)
	struckColor = color.New(color.FgRed, color.CrossedOut)
	totalColor  = color.New(color.FgGreen, color.Bold)
	errorColor  = color.New(color.FgRed)

	struckText = regexp.MustCompile(`~~(.*?)~~`)
)

// printLines shows every line but the last as detail and the last as the
// result.
func printLines(lines []string) {
	for i, l := range lines {
		if i == len(lines)-1 {
			totalColor.Println(l)
			continue
		}
		l = struckText.ReplaceAllStringFunc(l, func(s string) string {
			return struckColor.Sprint(strings.Trim(s, "~"))
		})
		detailColor.Println(l)
	}
}

func fail(err error) {
	errorColor.Fprintln(os.Stderr, command.Describe(err))
	os.Exit(1)
}

var rollCmd = &cobra.Command{
	Use:   "roll <expression>",
	Short: "Evaluate a dice expression",
	Long: `Evaluates one dice expression and prints the breakdown and total.

Without --campaign variables live only for this call. With --campaign the
expression runs as --user against that campaign's journal, so assignments
persist.

Examples:
	rolldice roll 4d6k3
	rolldice roll "d20 @adv + 5"
	rolldice roll --campaign tomb --user ana "atk = d20 + prof"`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		source := strings.Join(args, " ")
		engine := newEngine(seededRoller(cmd))
		campaign, _ := cmd.Flags().GetString("campaign")

		if campaign == "" {
			res, err := engine.Execute(source, dice.MapEnv{})
			if err != nil {
				fail(err)
			}
			lines := append(res.Texts(), fmt.Sprintf("%s = %d", res.Trace, res.Value))
			printLines(lines)
			return
		}

		user, _ := cmd.Flags().GetString("user")
		s, err := openSession(campaign, engine, false)
		if err != nil {
			fail(err)
		}
		defer s.Close()

		reply, err := s.Execute(user, "/roll "+source)
		if err != nil {
			fail(err)
		}
		printLines(reply.Lines)
	},
}

var calcCmd = &cobra.Command{
	Use:   "calc <expression>",
	Short: "Evaluate an arithmetic expression with decimals",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		source := strings.Join(args, " ")
		v, err := calc.Calculate(source)
		if err != nil {
			fail(err)
		}
		totalColor.Printf("%s = %g\n", source, v)
	},
}

func init() {
	rootCmd.AddCommand(rollCmd)
	rootCmd.AddCommand(calcCmd)

	rollCmd.Flags().Int64("seed", 0, "seed for reproducible rolls")
	rollCmd.Flags().String("campaign", "", "campaign whose variables to use")
	rollCmd.Flags().StringP("user", "u", "cli", "user the variables belong to")
}
