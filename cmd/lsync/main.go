package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/lsync/lsync/internal/config"
)

var (
	cfg      *config.Config
	cfgFile  string
	profiles *config.Profiles
)

var rootCmd = &cobra.Command{
	Use:   "lsync",
	Short: "Sync a local workspace with remote hosts over rsync",
	Long: `lsync keeps a local workspace directory in sync with one or more
remote hosts using rsync, showing each host's live transfer progress on
its own line of an in-place updating display.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if cfgFile != "" {
			cfg.ConfigFile = cfgFile
		}
		setupLogger(cfg)

		profiles, err = config.LoadProfiles(cfg.ConfigFile)
		if err != nil {
			return err
		}
		return nil
	},
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

// stdoutIsTerminal reports whether the fancy in-place display can be used.
func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func main() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "profile file (default $LSYNC_DIR/lsync_config.yaml)")
	rootCmd.AddCommand(syncCmd, historyCmd, doctorCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "lsync: %v\n", err)
		os.Exit(1)
	}
}
