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

	"github.com/vaultfolio/ledger-backend/internal/api"
	"github.com/vaultfolio/ledger-backend/internal/config"
	"github.com/vaultfolio/ledger-backend/internal/ethereum"
	"github.com/vaultfolio/ledger-backend/internal/external"
	"github.com/vaultfolio/ledger-backend/internal/ledger"
	"github.com/vaultfolio/ledger-backend/internal/logging"
	"github.com/vaultfolio/ledger-backend/internal/models"
	"github.com/vaultfolio/ledger-backend/internal/notifications"
	"github.com/vaultfolio/ledger-backend/internal/scheduler"
	"github.com/vaultfolio/ledger-backend/internal/store"
	"github.com/vaultfolio/ledger-backend/internal/stream"
)

const banner = `
╔══════════════════════════════════════╗
║     VAULTFOLIO Bot Ledger v0.3       ║
║                                      ║
╚══════════════════════════════════════╝
`

func main() {
	fmt.Print(banner)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	cfg.Print()

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	// Persistence
	logger.Info().Str("host", cfg.RedisHost).Int("port", cfg.RedisPort).Msg("connecting to redis")
	kv, err := store.ConnectRedis(store.RedisConfig{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	defer kv.Close()

	// Allocation updater: live vault or simulator
	var updater ledger.AllocationUpdater
	var chainClient *ethereum.Client
	if cfg.SimulateExecutions {
		updater = ethereum.NewSimulator()
		logger.Info().Msg("executions run against the simulator")
	} else {
		chainClient, err = ethereum.NewClient(
			cfg.EthereumAPIEndpoint, cfg.PrivateKey,
			int64(cfg.ChainID), cfg.GasLimit, cfg.GasMultiplier)
		if err != nil {
			logger.Fatal().Err(err).Msg("chain client init failed")
		}
		defer chainClient.Close()

		vault, err := ethereum.NewVault(chainClient, cfg.VaultAddress)
		if err != nil {
			logger.Fatal().Err(err).Msg("vault binding failed")
		}
		updater = vault
		logger.Info().Str("wallet", chainClient.WalletAddress().Hex()).Msg("live chain client ready")
	}

	// Notifications and event stream
	notify := notifications.NewSender(cfg.WebhookURL, cfg.AppName, logger)
	hub := stream.NewHub(logger)

	// The ledger
	led := ledger.New(kv, updater, ledger.Options{
		KeyPrefix: cfg.KeyPrefix,
		Logger:    logger,
		OnExecution: func(exec models.Execution) {
			hub.Broadcast("execution", exec)
			if notify.Enabled() {
				notify.NotifyExecution(exec.BotID, exec)
			}
		},
	})

	// Prices
	prices := external.NewPriceClient(external.PriceOptions{
		CacheTTL:    time.Duration(cfg.PriceCacheTTLSeconds) * time.Second,
		MinInterval: time.Duration(cfg.PriceMinIntervalSeconds) * time.Second,
		Logger:      logger,
	})

	// Graceful shutdown context
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. API server
	srv := api.NewServer(api.Deps{
		Ledger: led,
		Prices: prices,
		Hub:    hub,
		Store:  kv,
		Logger: logger,
	}, cfg.APIPort, cfg.APIKey, cfg.CORSAllowOrigin)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("api server error")
		}
	}()

	// 2. Auto-execute scheduler
	var autoExec *scheduler.AutoExecutor
	if cfg.SchedulerEnabled {
		autoExec = scheduler.NewAutoExecutor(led, scheduler.Config{
			TickInterval: time.Duration(cfg.SchedulerTickSeconds) * time.Second,
			Logger:       logger,
		})
		autoExec.Start()
	} else {
		logger.Info().Msg("scheduler disabled by config")
	}

	logger.Info().Msg("all services started")

	// Wait for shutdown signal
	<-ctx.Done()
	logger.Info().Msg("shutting down gracefully")

	if autoExec != nil {
		autoExec.Stop()
	}
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("api shutdown error")
	}
	logger.Info().Msg("shutdown complete")
}
