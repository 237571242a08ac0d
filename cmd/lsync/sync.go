package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/lsync/lsync/internal/history"
	"github.com/lsync/lsync/internal/syncer"
)

var syncReq syncer.Request

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync the enclosing workspace (or a path inside it) with a server profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.Open(cfg.HistoryFile())
		if err != nil {
			// A broken history DB should not block syncing.
			log.Warn().Err(err).Msg("run history disabled")
			store = nil
		} else {
			defer store.Close()
		}

		runner := &syncer.Runner{
			Out:      os.Stdout,
			In:       os.Stdin,
			Config:   cfg,
			Profiles: profiles,
			History:  store,
			Plain:    !stdoutIsTerminal(),
		}
		return runner.Run(cmd.Context(), syncReq)
	},
}

func init() {
	f := syncCmd.Flags()
	f.StringVarP(&syncReq.Server, "server", "n", "", "server profile name (required)")
	f.StringVarP(&syncReq.FileOrPath, "file-or-path", "f", "", "sync only this file or directory")
	f.StringVarP(&syncReq.Master, "master", "m", "", "host to pull from when syncing back from multiple hosts")
	f.BoolVarP(&syncReq.Delete, "delete", "d", false, "delete remote files missing locally")
	f.BoolVar(&syncReq.Back, "back", false, "sync from remote to local")
	f.BoolVarP(&syncReq.GitRepo, "git", "g", false, "sync the .git directory too")
	f.BoolVarP(&syncReq.Yes, "yes", "y", false, "skip the confirmation prompt")
	_ = syncCmd.MarkFlagRequired("server")
}
