/*
Copyright © 2026 Paulo Suderio
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/suderio/rolldice/internal/config"
	"github.com/suderio/rolldice/internal/data"
	"github.com/suderio/rolldice/internal/dice"
	"github.com/suderio/rolldice/internal/logger"
	"github.com/suderio/rolldice/internal/persistence"
	"github.com/suderio/rolldice/internal/session"
)

var (
	cfgFile string
	appCfg  *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rolldice",
	Short: "Dice roller with variables, a REPL and a Telegram bot",
	Long: `rolldice evaluates dice expressions such as 4d6k3 + 2, d20 @adv or
atk = d20 + prof, keeping per-user variables in campaign journals.

Use it one-shot from the shell, interactively through 'repl', or as a
chat bot and admin server through 'serve'.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}
		appCfg = cfg
		return logger.Init(&cfg.Log)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.rolldice.yaml)")
	rootCmd.PersistentFlags().String("campaigns_dir", "", "directory holding campaign folders")
	rootCmd.PersistentFlags().String("log_level", "", "log level (DEBUG, INFO, WARN, ERROR)")
	_ = viper.BindPFlag("campaigns_dir", rootCmd.PersistentFlags().Lookup("campaigns_dir"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log_level"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	config.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".rolldice")
	}

	viper.SetEnvPrefix("ROLLDICE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// saveConfig writes viper's settings back, creating $HOME/.rolldice.yaml
// when no config file exists yet.
func saveConfig() error {
	if err := viper.WriteConfig(); err == nil {
		return nil
	}
	if err := viper.SafeWriteConfig(); err == nil {
		return nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	return viper.WriteConfigAs(filepath.Join(home, ".rolldice.yaml"))
}

func newEngine(roller dice.Roller) *dice.Engine {
	opts := []dice.Option{
		dice.WithMaxDice(appCfg.Dice.MaxDice),
		dice.WithMaxDepth(appCfg.Dice.MaxDepth),
		dice.WithMaxSteps(appCfg.Dice.MaxSteps),
		dice.WithCacheSize(appCfg.Dice.CacheSize),
	}
	if roller != nil {
		opts = append(opts, dice.WithRoller(roller))
	}
	return dice.NewEngine(opts...)
}

func seededRoller(cmd *cobra.Command) dice.Roller {
	if !cmd.Flags().Changed("seed") {
		return nil
	}
	seed, _ := cmd.Flags().GetInt64("seed")
	return dice.NewSeededRoller(seed)
}

func campaignManager() *persistence.CampaignManager {
	return persistence.NewCampaignManager(appCfg.CampaignsDir)
}

// campaignLoader searches the campaign folder first, then the shared
// campaigns directory.
func campaignLoader(name string) *data.Loader {
	m := campaignManager()
	return data.NewLoader([]string{m.GetCampaignPath(name), m.CampaignsDir})
}

// openSession replays a campaign journal. The campaign is created when
// create is set and it does not exist yet.
func openSession(name string, engine *dice.Engine, create bool) (*session.Session, error) {
	m := campaignManager()
	store, err := m.Load(name)
	if err != nil && create {
		store, err = m.Create(name)
	}
	if err != nil {
		return nil, err
	}

	globals, err := campaignLoader(name).LoadGlobals()
	if err != nil {
		store.Close()
		return nil, err
	}
	s, err := session.NewSession(engine, store, globals)
	if err != nil {
		store.Close()
		return nil, err
	}
	return s, nil
}
