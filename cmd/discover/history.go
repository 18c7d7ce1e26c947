package main

import (
	"errors"

	"github.com/spf13/cobra"

	"theo-discovery/internal/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the stored corpus snapshots, oldest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.History.Path
		if historyPath != "" {
			path = historyPath
		}
		if path == "" {
			return errors.New("no history file configured; set history.path or pass --history")
		}
		snapshots, err := history.NewFile(path).Recent(historyLimit)
		if err != nil {
			return err
		}
		printHistory(cmd.OutOrStdout(), snapshots)
		return nil
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyPath, "history", "", "Snapshot history file (overrides history.path)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of most recent snapshots to show")
	rootCmd.AddCommand(historyCmd)
}
