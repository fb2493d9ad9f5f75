package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "./campaigns", cfg.CampaignsDir)
	assert.Equal(t, "INFO", cfg.Log.Level)
	assert.Equal(t, 1000, cfg.Dice.MaxDice)
	assert.Equal(t, 32, cfg.Dice.MaxDepth)
	assert.Equal(t, 100000, cfg.Dice.MaxSteps)
	assert.Equal(t, "true", cfg.Bot.Filter)
	assert.Equal(t, ":3000", cfg.Admin.Address)
	assert.Equal(t, 20*time.Minute, cfg.KeepAlive.Interval)
	assert.Equal(t, 6, cfg.KeepAlive.Heartbeats)
	assert.Equal(t, time.Hour, cfg.Journal.CompactInterval)
}

func TestFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rolldice.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
campaigns_dir: /srv/campaigns
telegram_token: abc
tg_last_update_id: 41
dice:
  max_dice: 50
keepalive:
  url: http://localhost:3000/healthz
  interval: 5m
`), 0644))

	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "/srv/campaigns", cfg.CampaignsDir)
	assert.Equal(t, "abc", cfg.TelegramToken)
	assert.Equal(t, 41, cfg.TelegramOffset)
	assert.Equal(t, 50, cfg.Dice.MaxDice)
	assert.Equal(t, 32, cfg.Dice.MaxDepth)
	assert.Equal(t, 5*time.Minute, cfg.KeepAlive.Interval)
}

func TestLoadRejectsNonsense(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("dice.max_dice", 0)
	_, err := Load(v)
	assert.Error(t, err)

	v = viper.New()
	SetDefaults(v)
	v.Set("dice.max_steps", -5)
	_, err = Load(v)
	assert.Error(t, err)

	v = viper.New()
	SetDefaults(v)
	v.Set("bot.rate", -1)
	_, err = Load(v)
	assert.Error(t, err)
}
