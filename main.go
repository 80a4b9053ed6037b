package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"docreplace/internal/config"
	"docreplace/internal/tmpstore"
	"docreplace/internal/webserver"
)

func main() {
	configPath := flag.String("config", "", "path to TOML config file")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(log)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	store, err := tmpstore.New(cfg.WorkDir, cfg.ScopeMaxAge.Duration, log)
	if err != nil {
		log.Error("failed to prepare working storage", "error", err)
		os.Exit(1)
	}

	store.StartJanitor(cfg.JanitorInterval.Duration)

	if err := webserver.LoadTranslations(); err != nil {
		log.Error("failed to load translations", "error", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: webserver.New(store, cfg.MaxUploadBytes, log).Routes(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("server started", "addr", cfg.ListenAddr)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}

	store.Stop()
	store.Purge()
}
