// Package config binds the viper settings tree to typed structs.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/suderio/rolldice/internal/logger"
)

// Dice tunes the expression engine.
type Dice struct {
	MaxDice   int `mapstructure:"max_dice"`
	MaxDepth  int `mapstructure:"max_depth"`
	MaxSteps  int `mapstructure:"max_steps"`
	CacheSize int `mapstructure:"cache_size"`
}

// Bot tunes the chat front end.
type Bot struct {
	Filter      string  `mapstructure:"filter"`
	Rate        float64 `mapstructure:"rate"`
	Burst       int     `mapstructure:"burst"`
	PollTimeout int     `mapstructure:"poll_timeout"`
}

// Admin is the HTTP admin server.
type Admin struct {
	Address string `mapstructure:"address"`
}

// KeepAlive pings URL while there is recent activity.
type KeepAlive struct {
	URL        string        `mapstructure:"url"`
	Interval   time.Duration `mapstructure:"interval"`
	Heartbeats int           `mapstructure:"heartbeats"`
}

// Journal controls periodic compaction of campaign logs.
type Journal struct {
	CompactInterval  time.Duration `mapstructure:"compact_interval"`
	CompactThreshold int           `mapstructure:"compact_threshold"`
}

// Config is the whole settings tree.
type Config struct {
	CampaignsDir   string        `mapstructure:"campaigns_dir"`
	TelegramToken  string        `mapstructure:"telegram_token"`
	TelegramOffset int           `mapstructure:"tg_last_update_id"`
	Log            logger.Config `mapstructure:"log"`
	Dice           Dice          `mapstructure:"dice"`
	Bot            Bot           `mapstructure:"bot"`
	Admin          Admin         `mapstructure:"admin"`
	KeepAlive      KeepAlive     `mapstructure:"keepalive"`
	Journal        Journal       `mapstructure:"journal"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	l := logger.DefaultConfig()
	v.SetDefault("campaigns_dir", "./campaigns")
	v.SetDefault("log.level", l.Level)
	v.SetDefault("log.file", l.FileName)
	v.SetDefault("log.max_size", l.MaxSize)
	v.SetDefault("log.max_age", l.MaxAge)
	v.SetDefault("log.max_backups", l.MaxBackups)
	v.SetDefault("log.compress", l.Compress)
	v.SetDefault("log.stderr", false)
	v.SetDefault("dice.max_dice", 1000)
	v.SetDefault("dice.max_depth", 32)
	v.SetDefault("dice.max_steps", 100000)
	v.SetDefault("dice.cache_size", 512)
	v.SetDefault("bot.filter", "true")
	v.SetDefault("bot.rate", 1.0)
	v.SetDefault("bot.burst", 5)
	v.SetDefault("bot.poll_timeout", 25)
	v.SetDefault("admin.address", ":3000")
	v.SetDefault("keepalive.url", "")
	v.SetDefault("keepalive.interval", 20*time.Minute)
	v.SetDefault("keepalive.heartbeats", 6)
	v.SetDefault("journal.compact_interval", time.Hour)
	v.SetDefault("journal.compact_threshold", 500)
}

// Load decodes v into a Config.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if cfg.Dice.MaxDice <= 0 || cfg.Dice.MaxDepth <= 0 || cfg.Dice.MaxSteps <= 0 {
		return nil, fmt.Errorf("dice.max_dice, dice.max_depth and dice.max_steps must be positive")
	}
	if cfg.Bot.Rate <= 0 || cfg.Bot.Burst <= 0 {
		return nil, fmt.Errorf("bot.rate and bot.burst must be positive")
	}
	return &cfg, nil
}
