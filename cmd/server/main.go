package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/outliner/internal/api"
	"github.com/dgallion1/outliner/internal/config"
	"github.com/dgallion1/outliner/internal/heading"
	"github.com/dgallion1/outliner/internal/mcptool"
	"github.com/dgallion1/outliner/internal/pipeline"
	"github.com/dgallion1/outliner/internal/prefs"
	"github.com/dgallion1/outliner/internal/relay"
)

var version = "dev"

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := prefs.Open(cfg.PrefsPath, heading.Options{IncludeHiddenAT: cfg.DefaultIncludeHiddenAT})
	if err != nil {
		log.Error("open preferences", "path", cfg.PrefsPath, "error", err)
		os.Exit(1)
	}

	// Without a bridge, highlight requests are only logged.
	var bridge *relay.Client
	if cfg.BridgeURL != "" {
		bridge = relay.NewClient(cfg.BridgeURL, cfg.BridgeAPIKey)
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, log)
	orch.Start(ctx)

	var mcpHandler http.Handler
	if cfg.MCPEnabled {
		mcpHandler = mcptool.Handler(mcptool.NewServer(version, log), "/mcp")
	}

	// Initialize HTTP server.
	srv := api.NewServer(orch, store, bridge, mcpHandler, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if bridge != nil {
			bridge.Close()
		}
		if err := store.Close(); err != nil {
			log.Warn("close preferences", "error", err)
		}
	}()

	log.Info("starting outliner", "port", cfg.Port, "version", version, "bridge", cfg.BridgeURL != "", "mcp", cfg.MCPEnabled)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
