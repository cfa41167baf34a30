package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/janekbaraniewski/tokenmeter/internal/config"
	"github.com/janekbaraniewski/tokenmeter/internal/core"
	"github.com/janekbaraniewski/tokenmeter/internal/history"
	"github.com/janekbaraniewski/tokenmeter/internal/providers"
	"github.com/janekbaraniewski/tokenmeter/internal/tui"
)

const (
	historySparklineSeed = 120
	historyRetention     = 30 * 24 * time.Hour
)

func RunDashboard(cfg config.Config) {
	provider, ok := providers.ForID(cfg.Provider)
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown provider %q in %s\n", cfg.Provider, config.ConfigPath())
		os.Exit(1)
	}

	account := buildAccount(cfg)
	interval := time.Duration(cfg.RefreshIntervalSeconds) * time.Second
	engine := core.NewEngine(provider, account, interval)

	store := openHistoryStore()
	if store != nil {
		defer store.Close()
		if err := store.Prune(historyRetention); err != nil {
			log.Printf("pruning history: %v", err)
		}
	}

	var headlines []float64
	if store != nil {
		var err error
		if headlines, err = store.Headlines(historySparklineSeed); err != nil {
			log.Printf("loading history headlines: %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var program *tea.Program

	model := tui.NewModel(provider.Metrics(), provider.Policy(), cfg.RefreshIntervalSeconds, headlines, tui.Hooks{
		OnRefresh: func() {
			go engine.Refresh(ctx)
		},
		OnIntervalChange: func(seconds int) {
			engine.SetInterval(time.Duration(seconds) * time.Second)
			next := cfg
			next.RefreshIntervalSeconds = seconds
			if err := config.Save(next); err != nil {
				log.Printf("persisting interval: %v", err)
			}
		},
	})

	engine.OnUpdate(func(state core.State) {
		if program != nil {
			program.Send(tui.StateMsg(state))
		}
		recordFetch(store, provider, state)
	})

	// Config edits made outside the TUI (or by another instance) take effect
	// without a restart.
	go func() {
		err := config.Watch(ctx, config.ConfigPath(), func(next config.Config) {
			engine.SetInterval(time.Duration(next.RefreshIntervalSeconds) * time.Second)
			if program != nil {
				program.Send(tui.IntervalMsg(next.RefreshIntervalSeconds))
			}
		})
		if err != nil {
			log.Printf("watching config: %v", err)
		}
	}()

	// A key stored via set-key takes effect on the running dashboard: rebuild
	// the account and fetch right away.
	go func() {
		err := config.WatchFile(ctx, config.CredentialsPath(), func() {
			engine.SetAccount(buildAccount(cfg))
			go engine.Refresh(ctx)
		})
		if err != nil {
			log.Printf("watching credentials: %v", err)
		}
	}()

	program = tea.NewProgram(model, tea.WithAltScreen())

	go engine.Run(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
		program.Quit()
	}()

	if _, err := program.Run(); err != nil {
		log.SetOutput(os.Stderr)
		log.Fatalf("TUI error: %v", err)
	}
}

func openHistoryStore() *history.Store {
	dir := config.ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("creating config dir: %v", err)
		return nil
	}
	store, err := history.Open(filepath.Join(dir, "history.db"))
	if err != nil {
		log.Printf("opening history store: %v", err)
		return nil
	}
	return store
}

func recordFetch(store *history.Store, provider core.UsageProvider, state core.State) {
	if store == nil {
		return
	}

	// The headline reflects the snapshot currently on screen, which survives
	// failed fetches.
	headline := core.NoData
	if state.Snapshot != nil {
		headline = core.Aggregate(*state.Snapshot, provider.Policy()).HeadlinePercent
	}

	err := store.Append(history.Entry{
		FetchedAt: time.Now(),
		Provider:  provider.ID(),
		Status:    string(state.Outcome.Status),
		Headline:  headline,
	})
	if err != nil {
		log.Printf("recording fetch: %v", err)
	}
}
