package data

import (
	"fmt"
	"strconv"
)

// TelegramConfig is the per-campaign chat setup.
type TelegramConfig struct {
	// ChatIDs lists the chats the bot answers in. Empty means every chat.
	ChatIDs []string `yaml:"chat_ids"`
	// Users maps a Telegram user id to the name its variables are kept under.
	Users map[string]string `yaml:"users"`
}

// Chats parses ChatIDs.
func (c *TelegramConfig) Chats() ([]int64, error) {
	out := make([]int64, 0, len(c.ChatIDs))
	for _, s := range c.ChatIDs {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid chat id %q: %w", s, err)
		}
		out = append(out, id)
	}
	return out, nil
}

// UserNames parses Users, skipping ids that are not numbers.
func (c *TelegramConfig) UserNames() map[int64]string {
	out := make(map[int64]string, len(c.Users))
	for idStr, name := range c.Users {
		if id, err := strconv.ParseInt(idStr, 10, 64); err == nil {
			out[id] = name
		}
	}
	return out
}
