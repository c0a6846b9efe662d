package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/swaplab/swap-history/internal/api"
	corecfg "github.com/swaplab/swap-history/internal/core/config"
	"github.com/swaplab/swap-history/internal/core/swap"
	"github.com/swaplab/swap-history/internal/history"
	"github.com/swaplab/swap-history/internal/poller"
	"github.com/swaplab/swap-history/internal/provider"
	"github.com/swaplab/swap-history/internal/server"
	"github.com/swaplab/swap-history/internal/store"
)

func main() {
	configPath := flag.String("config", "swaphistory.yaml", "Path to configuration file")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config", "config", cfg)

	loc, err := cfg.History.Location()
	if err != nil {
		slog.Error("Invalid history timezone", "error", err)
		os.Exit(1)
	}

	// 2. Load account snapshots from the account provider's seed file
	accounts, err := provider.LoadAccounts(cfg.Accounts.Path)
	if err != nil {
		slog.Error("Failed to load accounts", "path", cfg.Accounts.Path, "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded accounts", "count", len(accounts))

	// 3. Initialize store + history service (initial aggregation pass)
	operationStore := store.New(accounts)
	historySvc := history.NewService(operationStore, swap.PendingStatuses(), loc)

	// 4. Initialize the status poller
	refreshClient := provider.NewClient(cfg.Provider.Addr, cfg.Provider.ProviderTimeout())
	statusPoller := poller.New(historySvc, refreshClient, poller.Options{
		Interval:      cfg.Poll.PollInterval(),
		MaxConcurrent: cfg.Poll.MaxConcurrent,
	})

	if cfg.Poll.Enabled {
		if err := statusPoller.Start(); err != nil {
			slog.Error("Failed to start poller", "error", err)
			os.Exit(1)
		}
		defer statusPoller.Stop()
	} else {
		slog.Info("Status polling disabled by config")
	}

	// 5. Initialize the read/export API
	apiSvc := api.NewService(historySvc)
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), cfg.Server.Mode)
	apiSvc.RegisterRoutes(srv.Engine)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Signal handler → triggers the shutdown sequence below.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
