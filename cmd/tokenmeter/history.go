package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/tokenmeter/internal/config"
	"github.com/janekbaraniewski/tokenmeter/internal/history"
)

func NewHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print recent fetch results, newest first",
		RunE: func(_ *cobra.Command, _ []string) error {
			store, err := history.Open(filepath.Join(config.ConfigDir(), "history.db"))
			if err != nil {
				return fmt.Errorf("opening history store: %w", err)
			}
			defer store.Close()

			entries, err := store.Recent(limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("No fetches recorded yet.")
				return nil
			}

			for _, e := range entries {
				headline := "—"
				if e.Headline >= 0 {
					headline = fmt.Sprintf("%.0f%%", e.Headline)
				}
				fmt.Printf("%s  %-12s %-14s %s\n",
					e.FetchedAt.Local().Format("2006-01-02 15:04:05"),
					e.Provider, e.Status, headline)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum entries to print")
	return cmd
}
