package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/tokenmeter/internal/config"
	"github.com/janekbaraniewski/tokenmeter/internal/core"
	"github.com/janekbaraniewski/tokenmeter/internal/providers"
	"github.com/janekbaraniewski/tokenmeter/internal/render"
)

// NewFetchCommand does one fetch cycle and prints the dashboard lines to
// stdout. Scripts get the severity through the exit code: 0 for an OK fetch,
// 1 otherwise.
func NewFetchCommand(cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Fetch usage once and print the result",
		RunE: func(cmd *cobra.Command, _ []string) error {
			provider, ok := providers.ForID(cfg.Provider)
			if !ok {
				return fmt.Errorf("unknown provider %q in %s", cfg.Provider, config.ConfigPath())
			}

			engine := core.NewEngine(provider, buildAccount(cfg), time.Minute)
			engine.Refresh(cmd.Context())
			state := engine.State()

			payload := render.Build(render.Input{
				Metrics: provider.Metrics(),
				Policy:  provider.Policy(),
				State:   state,
				Now:     time.Now(),
			})

			fmt.Println(payload.Title)
			fmt.Println(payload.StatusLine)
			for _, row := range payload.Rows {
				fmt.Println(row.Text)
				if row.Bar != "" {
					fmt.Println(row.Bar)
				}
			}
			fmt.Println(payload.ResetLine)
			fmt.Println(payload.CheckedLine)

			if state.Outcome.Status != core.StatusOK {
				os.Exit(1)
			}
			return nil
		},
	}
}
