package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/suderio/rolldice/internal/data"
)

var (
	tgChatIDs   []string
	tgUserPairs []string
)

var telegramCmd = &cobra.Command{
	Use:   "telegram <campaign_name>",
	Short: "Configure Telegram settings for a campaign",
	Long: `Stores which chats the bot answers in for a campaign and, optionally,
the name each Telegram user's variables are kept under. With no users
mapped anyone in the chat may roll; once one is mapped, only mapped users
are served.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		m := campaignManager()
		campaignPath := m.GetCampaignPath(args[0])
		if _, err := os.Stat(campaignPath); os.IsNotExist(err) {
			fmt.Printf("Error: campaign directory %s does not exist. Run 'campaign create' first.\n", campaignPath)
			os.Exit(1)
		}

		// Load existing config if it exists
		config, err := data.NewLoader([]string{campaignPath}).LoadTelegram()
		if err != nil {
			fail(err)
		}

		if len(tgChatIDs) == 0 && len(config.ChatIDs) == 0 {
			fmt.Println("---")
			fmt.Println("How to get your Telegram Chat ID:")
			fmt.Println("1. Add your bot to the group.")
			fmt.Println("2. Send a message in the group (e.g., /start).")
			fmt.Println("3. Access https://api.telegram.org/bot<TOKEN>/getUpdates in your browser.")
			fmt.Println("4. Look for the 'chat' object and its 'id' field (it usually starts with a minus sign).")
			fmt.Println("Leave empty to answer in any chat.")
			fmt.Println("---")
			fmt.Print("chat_id: ")
			scanner := bufio.NewScanner(os.Stdin)
			if scanner.Scan() {
				if id := strings.TrimSpace(scanner.Text()); id != "" {
					tgChatIDs = append(tgChatIDs, id)
				}
			}
		}

		for _, id := range tgChatIDs {
			if _, err := strconv.ParseInt(id, 10, 64); err != nil {
				fmt.Printf("Warning: chat id '%s' is not a number, skipping.\n", id)
				continue
			}
			if !contains(config.ChatIDs, id) {
				config.ChatIDs = append(config.ChatIDs, id)
			}
		}

		for _, pair := range tgUserPairs {
			parts := strings.Split(pair, ":")
			if len(parts) != 2 {
				fmt.Printf("Warning: invalid user pair format '%s'. Expected 'name:user_id'\n", pair)
				continue
			}
			name, userID := parts[0], parts[1]
			if _, err := strconv.ParseInt(userID, 10, 64); err != nil {
				fmt.Printf("Warning: user id '%s' is not a number, skipping.\n", userID)
				continue
			}
			config.Users[userID] = name
		}

		path := m.GetTelegramPath(args[0])
		if err := data.SaveTelegram(path, config); err != nil {
			fmt.Printf("Error saving config file: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Telegram campaign configuration saved to %s\n", path)
	},
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func init() {
	campaignCmd.AddCommand(telegramCmd)
	telegramCmd.Flags().StringSliceVarP(&tgChatIDs, "chat_id", "c", []string{}, "Telegram chat ID to answer in (repeatable)")
	telegramCmd.Flags().StringSliceVarP(&tgUserPairs, "user", "u", []string{}, "Map a Telegram user_id to a variable owner (format: name:user_id)")
}
