package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ncaceres/cardbot/internal/config"
	"github.com/ncaceres/cardbot/internal/dispatch"
	"github.com/ncaceres/cardbot/internal/generator"
	"github.com/ncaceres/cardbot/internal/guard"
	"github.com/ncaceres/cardbot/internal/logging"
	"github.com/ncaceres/cardbot/internal/lookup"
	"github.com/ncaceres/cardbot/internal/server"
	"github.com/ncaceres/cardbot/internal/service"
	"github.com/ncaceres/cardbot/internal/store"
	"github.com/ncaceres/cardbot/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	storeClient, err := store.NewBoltClient(store.Options{Path: cfg.Store.Path})
	if err != nil {
		logger.Error("failed to open record store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := storeClient.Close(context.Background()); err != nil {
			logger.Warn("closing record store failed", "error", err)
		}
	}()

	httpClient := &http.Client{Timeout: 20 * time.Second}
	binResolver := lookup.NewBinResolver(logger, buildBinProviders(cfg.Lookup, httpClient)...)
	registryClient := lookup.NewRegistryClient(logger, httpClient, lookup.RegistryOptions{
		BaseURL:          cfg.Lookup.RegistryURL,
		Timeout:          cfg.Lookup.RegistryTimeout,
		ThrottledBackoff: cfg.Lookup.ThrottledBackoff,
		UpstreamBackoff:  cfg.Lookup.UpstreamBackoff,
		NetworkBackoff:   cfg.Lookup.NetworkBackoff,
	})

	replier := transport.NewClient(cfg.Bot.APIBaseURL, cfg.Bot.Token)
	router := dispatch.NewRouter(logger, guard.New(cfg.Bot.Cooldown, cfg.Bot.DedupRetention), replier)

	commands := service.New(logger, generator.New(generator.Config{}), binResolver, registryClient, storeClient, replier)
	commands.Register(router)

	httpRouter := server.NewRouter(logger, server.RouterDependencies{
		Health:  server.StoreHealthService{Client: storeClient},
		Webhook: server.NewWebhookHandler(logger, router),
	})
	srv := server.New(logger, cfg.HTTP, httpRouter)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("server stopped unexpectedly", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func buildBinProviders(cfg config.LookupConfig, httpClient *http.Client) []lookup.BinProvider {
	providers := []lookup.BinProvider{
		&lookup.PrimaryBinProvider{BaseURL: cfg.PrimaryBinURL, HTTP: httpClient},
	}
	if cfg.SecondaryBinURL != "" {
		providers = append(providers, &lookup.SecondaryBinProvider{
			BaseURL: cfg.SecondaryBinURL,
			APIKey:  cfg.SecondaryBinKey,
			HTTP:    httpClient,
		})
	}
	return providers
}
