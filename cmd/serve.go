package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-co-op/gocron/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/suderio/rolldice/internal/dice"
	"github.com/suderio/rolldice/internal/logger"
	"github.com/suderio/rolldice/internal/server"
	"github.com/suderio/rolldice/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve <campaign_name>",
	Short: "Run the Telegram bot and admin server for a campaign",
	Long: `Serves a campaign until interrupted:

  - the Telegram bot, when a token is configured
  - the admin page on admin.address (view and edit variables, /healthz,
    /pull to reload the journal, /push to compact it)
  - a keep-alive pinger hitting keepalive.url for a few heartbeats after
    each request or chat message
  - periodic journal compaction once it grows past journal.compact_threshold`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		campaign := args[0]
		engine := newEngine(nil)
		s, err := openSession(campaign, engine, true)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		pinger := server.NewPinger(appCfg.KeepAlive.URL, appCfg.KeepAlive.Heartbeats)
		pinger.Touch()

		scheduler, err := schedule(s, pinger)
		if err != nil {
			return err
		}
		scheduler.Start()
		defer func() {
			if err := scheduler.Shutdown(); err != nil {
				logger.Warn("scheduler shutdown", zap.Error(err))
			}
		}()

		bot, err := newBot(campaign, &botAdapter{session: s, pinger: pinger}, func(expr string) (int, error) {
			res, err := engine.Execute(expr, dice.MapEnv{})
			return res.Value, err
		})
		if err != nil {
			return err
		}
		if bot != nil {
			go func() {
				if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("telegram bot stopped", zap.Error(err))
				}
			}()
			fmt.Println("[Telegram Bot] Active")
		}

		srv := server.NewServer(appCfg.Admin.Address, s, pinger)
		errc := make(chan error, 1)
		go func() { errc <- srv.ListenAndServe() }()
		fmt.Printf("Serving campaign '%s' on %s\n", campaign, appCfg.Admin.Address)

		select {
		case err := <-errc:
			return err
		case <-ctx.Done():
		}
		logger.Info("shutting down")
		if err := srv.Shutdown(); err != nil {
			return err
		}
		if _, err := s.CompactIfLarger(appCfg.Journal.CompactThreshold); err != nil {
			logger.Warn("final compaction failed", zap.Error(err))
		}
		return nil
	},
}

// schedule registers the heartbeat and compaction jobs.
func schedule(s *session.Session, pinger *server.Pinger) (gocron.Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(appCfg.KeepAlive.Interval),
		gocron.NewTask(func() {
			if err := pinger.Beat(); err != nil {
				logger.Warn("heartbeat failed", zap.Error(err))
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, err
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(appCfg.Journal.CompactInterval),
		gocron.NewTask(func() {
			did, err := s.CompactIfLarger(appCfg.Journal.CompactThreshold)
			if err != nil {
				logger.Error("scheduled compaction failed", zap.Error(err))
				return
			}
			if did {
				logger.Info("scheduled compaction done")
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, err
	}
	return scheduler, nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("address", "", "admin server address (overrides admin.address)")
	_ = viper.BindPFlag("admin.address", serveCmd.Flags().Lookup("address"))
}
