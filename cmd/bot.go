package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/suderio/rolldice/internal/telegram"
)

var botToken string

// botCmd represents the bot command
var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Manage global bot configurations",
}

// telegramBotCmd represents the telegram subcommand of bot
var telegramBotCmd = &cobra.Command{
	Use:   "telegram",
	Short: "Register a global Telegram bot",
	Long: `Saves the bot token used by 'serve'. Per-campaign chats and users are
set with 'campaign telegram'.`,
	Run: func(cmd *cobra.Command, args []string) {
		if botToken == "" {
			fmt.Println("---")
			fmt.Println("Create your Telegram Bot & Get Token")
			fmt.Println("Open Telegram and search for the official @BotFather.")
			fmt.Println("Send the /newbot command and follow the prompts to name your bot and choose a unique username.")
			fmt.Println("BotFather will provide you with an HTTP API token. Store this token securely, as it is required for all API interactions. We will need it to configure rolldice.")
			fmt.Println("For testing in a group, add the bot to a group and ensure its privacy settings allow it to read all messages (this can be configured in BotFather's settings).")
			fmt.Println("---")
			fmt.Print("token: ")

			scanner := bufio.NewScanner(os.Stdin)
			if scanner.Scan() {
				botToken = strings.TrimSpace(scanner.Text())
			}
		}

		if botToken != "" {
			viper.Set("telegram_token", botToken)
			err := saveConfig()
			if err == nil {
				fmt.Println("Telegram bot token saved successfully.")
			} else {
				fmt.Printf("Error saving configuration: %v\n", err)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(botCmd)
	botCmd.AddCommand(telegramBotCmd)
	botCmd.AddCommand(chatsCmd)

	telegramBotCmd.Flags().StringVarP(&botToken, "token", "t", "", "Telegram bot API token")
}

// chatsCmd lists the chats and users that recently wrote to the bot, which
// is where the IDs for 'campaign telegram' come from.
var chatsCmd = &cobra.Command{
	Use:   "chats",
	Short: "Show chat and user IDs from recent messages to the bot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		token := viper.GetString("telegram_token")
		if token == "" {
			return fmt.Errorf("no telegram_token configured, run 'bot telegram' first")
		}
		updates, err := telegram.NewClient(token).GetUpdates(cmd.Context(), 0, 0)
		if err != nil {
			return err
		}

		seen := map[string]bool{}
		for _, u := range updates {
			if u.Message == nil {
				continue
			}
			m := u.Message
			line := fmt.Sprintf("chat %d (%s)  user %d %s @%s", m.Chat.ID, m.Chat.Type, m.From.ID, m.From.FirstName, m.From.Username)
			if !seen[line] {
				seen[line] = true
				fmt.Println(line)
			}
		}
		if len(seen) == 0 {
			fmt.Println("No recent messages. Send /start to the bot and try again.")
		}
		return nil
	},
}
