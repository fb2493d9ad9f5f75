package cmd

import (
	"github.com/spf13/viper"
	"golang.org/x/time/rate"

	"github.com/suderio/rolldice/internal/rules"
	"github.com/suderio/rolldice/internal/server"
	"github.com/suderio/rolldice/internal/session"
	"github.com/suderio/rolldice/internal/telegram"
)

// newBot builds the Telegram front end of a campaign. It returns nil when no
// token is configured.
func newBot(campaign string, exec telegram.Executor, engineRoll rules.RollFunc) (*telegram.Bot, error) {
	if appCfg.TelegramToken == "" {
		return nil, nil
	}

	tg, err := campaignLoader(campaign).LoadTelegram()
	if err != nil {
		return nil, err
	}
	chats, err := tg.Chats()
	if err != nil {
		return nil, err
	}

	registry, err := rules.NewRegistry(engineRoll)
	if err != nil {
		return nil, err
	}
	filter, err := registry.Compile(appCfg.Bot.Filter)
	if err != nil {
		return nil, err
	}

	return telegram.NewBot(telegram.NewClient(appCfg.TelegramToken), exec, telegram.Options{
		Chats:       chats,
		Users:       tg.UserNames(),
		Filter:      filter,
		Rate:        rate.Limit(appCfg.Bot.Rate),
		Burst:       appCfg.Bot.Burst,
		PollTimeout: appCfg.Bot.PollTimeout,
		Config:      viper.GetViper(),
	}), nil
}

// botAdapter bridges session.Session to the telegram.Executor interface and
// counts every message as activity for the keep-alive pinger.
type botAdapter struct {
	session *session.Session
	pinger  *server.Pinger
}

func (a *botAdapter) Execute(user, input string) (*session.Reply, error) {
	if a.pinger != nil {
		a.pinger.Touch()
	}
	return a.session.Execute(user, input)
}
