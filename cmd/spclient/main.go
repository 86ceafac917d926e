// Command spclient runs the SimplyPrint WebSocket client agent: it
// loads printer credentials from a config store, maintains a WebSocket
// connection (or one shared connection, in multi mode) to the
// SimplyPrint cloud, and drives the protocol scheduler until signalled
// to stop.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/simplyprint/ws-client/backend"
	"github.com/simplyprint/ws-client/client"
	"github.com/simplyprint/ws-client/configstore"
	"github.com/simplyprint/ws-client/connection"
	"github.com/simplyprint/ws-client/connmanager"
	"github.com/simplyprint/ws-client/diagnostics"
	"github.com/simplyprint/ws-client/printerconfig"
	"github.com/simplyprint/ws-client/scheduler"
)

func main() {
	configPath := flag.String("config", "spclient.yaml", "path to configuration file")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	cfg, err := LoadAppConfig(*configPath)
	if err != nil {
		sugar.Fatalw("failed to load app config", "err", err)
	}

	be, err := backend.Load()
	if err != nil {
		sugar.Fatalw("failed to load backend settings", "err", err)
	}
	host, err := be.WSHost()
	if err != nil {
		sugar.Fatalw("failed to resolve backend host", "err", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		sugar.Fatalw("failed to create data directory", "err", err)
	}

	store, err := openStore(cfg.Store, cfg.DataDir)
	if err != nil {
		sugar.Fatalw("failed to open config store", "err", err)
	}

	configs, err := store.Load()
	if err != nil {
		sugar.Fatalw("failed to load printer configs", "err", err)
	}
	if len(configs) == 0 {
		pc := printerconfig.New()
		if err := store.Persist(pc); err != nil {
			sugar.Fatalw("failed to persist new printer config", "err", err)
		}
		configs = append(configs, pc)
		sugar.Infow("created new pending printer", "unique_id", pc.UniqueID)
	}

	mode := connection.ModeMulti
	if cfg.Mode == "single" {
		mode = connection.ModeSingle
	}

	mgr := connmanager.New(mode, host, be.ProtocolVersion(), sugar)

	clients := make([]*client.Client, 0, len(configs))
	for _, pc := range configs {
		cl := client.New(pc, sugar)
		clients = append(clients, cl)
	}

	sched := scheduler.New(mgr, nil, sugar)
	for _, cl := range clients {
		sched.Manage(cl)
	}

	reportDir := filepath.Join(cfg.DataDir, cfg.Diagnostics.LogDir)
	reportStore, err := diagnostics.NewStore(reportDir, cfg.Diagnostics.MaxReports)
	if err != nil {
		sugar.Fatalw("failed to open diagnostics store", "err", err)
	}
	diagServer := diagnostics.NewServer(cfg.Diagnostics.Addr, reportStore, mgr, func() []*client.Client { return clients }, sugar)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		if err := diagServer.ListenAndServe(ctx); err != nil {
			sugar.Errorw("diagnostics server stopped", "err", err)
		}
	}()

	go func() {
		if err := sched.Run(ctx); err != nil && err != context.Canceled {
			sugar.Errorw("scheduler stopped", "err", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	sugar.Infow("received signal, shutting down", "signal", sig.String())

	cancel()
	sched.Stop()

	if err := store.Flush(configs); err != nil {
		sugar.Errorw("failed to flush config store on shutdown", "err", err)
	}

	time.Sleep(200 * time.Millisecond)
}

func openStore(cfg StoreConfig, dataDir string) (configstore.Store, error) {
	path := cfg.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(dataDir, path)
	}

	switch cfg.Kind {
	case "memory":
		return configstore.NewMemory(), nil
	case "sqlite":
		return configstore.NewSQLite(path)
	default:
		return configstore.NewJSON(path)
	}
}
