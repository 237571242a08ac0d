package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lsync/lsync/internal/history"
)

var historyCount int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent sync runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.Open(cfg.HistoryFile())
		if err != nil {
			return err
		}
		defer store.Close()

		recs, err := store.Recent(historyCount)
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			fmt.Println("no runs recorded yet")
			return nil
		}
		for i := range recs {
			fmt.Println(history.Format(&recs[i]))
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyCount, "count", "c", 10, "number of runs to show")
}
