package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lsync/lsync/internal/remote"
	"github.com/lsync/lsync/internal/term"
)

var (
	doctorServer string
	doctorEnsure bool
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check SSH reachability, rsync and the base directory on a profile's hosts",
	RunE: func(cmd *cobra.Command, args []string) error {
		prof, err := profiles.Profile(doctorServer)
		if err != nil {
			return err
		}

		failed := 0
		for _, host := range prof.Hosts {
			tgt, err := remote.ParseTarget(host)
			if err != nil {
				fmt.Printf("%s %s: %v\n", term.RedText("FAIL"), host, err)
				failed++
				continue
			}

			rep := remote.Check(cmd.Context(), tgt, prof.BaseDir, doctorEnsure)
			if rep.Err != nil {
				fmt.Printf("%s %s: %v\n", term.RedText("FAIL"), tgt, rep.Err)
				failed++
				continue
			}
			fmt.Printf("  ok %s: %s, base dir %s present\n", tgt, rep.RsyncVersion, prof.BaseDir)
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d hosts failed preflight", failed, len(prof.Hosts))
		}
		return nil
	},
}

func init() {
	f := doctorCmd.Flags()
	f.StringVarP(&doctorServer, "server", "n", "", "server profile name (required)")
	f.BoolVar(&doctorEnsure, "ensure-base-dir", false, "create the remote base directory when missing")
	_ = doctorCmd.MarkFlagRequired("server")
}
