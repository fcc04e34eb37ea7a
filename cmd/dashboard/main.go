package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"txdash/internal/application"
	"txdash/internal/config"
	"txdash/internal/infrastructure/explorer"
	"txdash/internal/infrastructure/kafka"
	"txdash/internal/infrastructure/logging"
	"txdash/internal/infrastructure/storage"
	"txdash/internal/infrastructure/telemetry"
	"txdash/internal/infrastructure/walletrpc"
	"txdash/internal/interfaces/httpapi"
)

var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		slog.Error("config error", "err", err)
		os.Exit(1)
	}

	rotating, err := logging.Init(logging.Config{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		Service:    "txdash",
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
	})
	if err != nil {
		slog.Error("logger init error", "err", err)
	}
	if rotating != nil {
		defer rotating.Close()
	}

	shutdownTracing, err := telemetry.InitTracer(context.Background(), telemetry.TracerConfig{
		ServiceName:    "txdash",
		ServiceVersion: version,
		Endpoint:       cfg.OtelEndpoint,
	})
	if err != nil {
		slog.Warn("tracing init error", "err", err)
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(ctx); err != nil {
				slog.Warn("tracing shutdown error", "err", err)
			}
		}()
	}

	store, err := storage.Open(cfg)
	if err != nil {
		slog.Error("state store error", "backend", cfg.StateBackend, "err", err)
		os.Exit(1)
	}
	defer store.Close()

	explorerClient, err := explorer.NewClient(explorer.Config{
		APIURL:  cfg.ExplorerAPIURL,
		WebURL:  cfg.ExplorerWebURL,
		Timeout: cfg.ExplorerTimeout,
	})
	if err != nil {
		slog.Error("explorer client error", "err", err)
		os.Exit(1)
	}

	var publisher application.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewPublisher(kafka.PublisherConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
			ChainID: cfg.ChainID,
		})
		if err != nil {
			slog.Error("kafka error", "err", err)
			os.Exit(1)
		}
		defer producer.Close()
		publisher = producer
	}

	var provider application.WalletProvider
	if cfg.WalletProviderURL != "" {
		dialCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		walletClient, err := walletrpc.Dial(dialCtx, cfg.WalletProviderURL)
		cancel()
		if err != nil {
			slog.Warn("wallet provider unavailable", "url", cfg.WalletProviderURL, "err", err)
		} else {
			defer walletClient.Close()
			provider = walletClient
		}
	}

	wallet, err := application.NewWalletConnector(provider, store, application.Network{
		ChainID:      cfg.ChainID,
		Name:         cfg.ChainName,
		Symbol:       cfg.CurrencySymbol,
		Decimals:     cfg.CurrencyDecimals,
		RPCURLs:      cfg.ChainRPCURLs,
		ExplorerURLs: cfg.ChainExplorerURLs,
	})
	if err != nil {
		slog.Error("wallet error", "err", err)
		os.Exit(1)
	}

	metrics := httpapi.NewMetrics()
	fetcher, err := application.NewFetcher(explorerClient, application.NewAggregator(cfg.CurrencySymbol, cfg.CurrencyDecimals), metrics, publisher)
	if err != nil {
		slog.Error("fetcher error", "err", err)
		os.Exit(1)
	}

	server, err := httpapi.NewServer(cfg, fetcher, wallet, store, explorerClient, metrics, httpapi.BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
	})
	if err != nil {
		slog.Error("http server error", "err", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	slog.Info("dashboard listening",
		"addr", cfg.HTTPAddr,
		"explorer", cfg.ExplorerAPIURL,
		"chain_id", cfg.ChainID,
		"state", cfg.StateBackend,
		"kafka", len(cfg.KafkaBrokers) > 0,
		"wallet", provider != nil,
	)
	if err := server.ListenAndServe(ctx, cfg.HTTPAddr); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("http server stopped", "err", err)
	}
}
