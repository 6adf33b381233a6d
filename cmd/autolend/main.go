package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"AutoLend/internal/config"
	"AutoLend/internal/exchange"
	"AutoLend/internal/lending"
	"AutoLend/internal/logging"
	"AutoLend/internal/metrics"
	"AutoLend/internal/notifier"
	"AutoLend/internal/scheduler"
)

// Set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	cfgPath := flag.String("config", "configs/config.yaml", "path to the YAML config")
	flag.Parse()

	if *showVersion {
		fmt.Printf("autolend %s\n", version)
		return
	}
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		*cfgPath = v
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(logging.Options{
		Level:      cfg.App.LogLevel,
		File:       cfg.App.LogFile,
		MaxSizeMB:  cfg.App.LogMaxSizeMB,
		MaxBackups: cfg.App.LogMaxBackups,
		MaxAgeDays: cfg.App.LogMaxAgeDays,
	})
	defer logger.Sync()

	logger.Info("AutoLend starting", zap.String("version", version))
	if err := cfg.Validate(); err != nil {
		logger.Fatal("config validation", zap.Error(err))
	}

	client, err := exchange.NewFTXClient(exchange.FTXOptions{
		BaseURL:    cfg.Account.BaseURL,
		APIKey:     cfg.Account.APIKey,
		APISecret:  cfg.Account.APISecret,
		Subaccount: cfg.Account.Subaccount,
		ProxyURL:   cfg.Proxy,
		Timeout:    cfg.App.RequestTimeout,
	}, logger)
	if err != nil {
		logger.Fatal("init exchange client", zap.Error(err))
	}
	logger.Info("exchange client ready", zap.String("exchange", client.Name()), zap.String("subaccount", cfg.Account.Subaccount))

	engine := lending.NewEngine(client, cfg, logger)

	var tn *notifier.TelegramNotifier
	var reports scheduler.Notifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, logger)
		reports = tn
	}

	if cfg.App.MetricsAddr != "" {
		srv, err := metrics.Serve(cfg.App.MetricsAddr, logger)
		if err != nil {
			logger.Fatal("start metrics server", zap.Error(err))
		}
		defer srv.Close()
		logger.Info("metrics listening", zap.String("addr", srv.Addr))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(engine, reports, cfg.Schedule.Interval, cfg.Schedule.ResetAfterCount, logger)
	if err := sched.Start(ctx); err != nil {
		logger.Fatal("start scheduler", zap.Error(err))
	}

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		logger.Info("telegram polling started")
	}

	logger.Info("AutoLend is running, press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received, stopping")
	cancel()
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	if err := sched.Stop(stopCtx); err != nil {
		logger.Warn("scheduler stop", zap.Error(err))
	}
	logger.Info("AutoLend stopped")
}
