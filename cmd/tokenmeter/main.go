package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/tokenmeter/internal/appupdate"
	"github.com/janekbaraniewski/tokenmeter/internal/config"
	"github.com/janekbaraniewski/tokenmeter/internal/core"
	"github.com/janekbaraniewski/tokenmeter/internal/version"
)

func main() {
	if os.Getenv("TOKENMETER_DEBUG") != "" {
		log.SetOutput(os.Stderr)
	} else {
		log.SetOutput(io.Discard)
	}

	// A corrupt settings file degrades to defaults rather than refusing to
	// start; the warning tells the user which file to fix.
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v; using defaults\n", err)
	}

	root := cobra.Command{
		Use:   "tokenmeter",
		Short: "tokenmeter is a terminal status monitor for API rate limits and plan usage.",
		Run: func(_ *cobra.Command, _ []string) {
			RunDashboard(cfg)
		},
	}

	root.AddCommand(NewFetchCommand(cfg))
	root.AddCommand(NewHistoryCommand())
	root.AddCommand(newSetKeyCommand())
	root.AddCommand(newVersionCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildAccount turns the active config into the account the provider fetches
// with. Stored credentials win over the env var fallback.
func buildAccount(cfg config.Config) core.AccountConfig {
	acct := core.AccountConfig{
		ID:         cfg.Provider,
		Provider:   cfg.Provider,
		APIKeyEnv:  cfg.APIKeyEnv,
		ProbeModel: cfg.ProbeModel,
		BaseURL:    cfg.BaseURL,
	}

	creds, err := config.LoadCredentials()
	if err != nil {
		log.Printf("loading credentials: %v", err)
		return acct
	}
	acct.Token = creds.Keys[cfg.Provider]
	return acct
}

func newSetKeyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-key <provider> <api-key>",
		Short: "Store an API key for a provider",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			providerID := strings.TrimSpace(args[0])
			apiKey := strings.TrimSpace(args[1])
			if providerID == "" || apiKey == "" {
				return fmt.Errorf("provider and api-key must be non-empty")
			}
			if err := config.SaveCredential(providerID, apiKey); err != nil {
				return err
			}
			fmt.Printf("Stored key for %s in %s\n", providerID, config.CredentialsPath())
			return nil
		},
	}
}

func newVersionCommand() *cobra.Command {
	var checkUpdate bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Println(version.String())
			if !checkUpdate {
				return nil
			}

			res, err := appupdate.Check(cmd.Context(), appupdate.CheckOptions{
				CurrentVersion: version.Version,
			})
			if err != nil {
				return fmt.Errorf("checking for updates: %w", err)
			}
			if res.UpdateAvailable {
				fmt.Printf("Update available: %s -> %s\n", res.CurrentVersion, res.LatestVersion)
				fmt.Printf("  %s\n", res.UpgradeHint)
			} else {
				fmt.Println("You are up to date.")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&checkUpdate, "check-update", false, "check GitHub for a newer release")
	return cmd
}
