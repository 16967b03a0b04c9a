package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alejandrodnm/polytrack/config"
	"github.com/alejandrodnm/polytrack/internal/adapters/notify"
	"github.com/alejandrodnm/polytrack/internal/adapters/polymarket"
	"github.com/alejandrodnm/polytrack/internal/adapters/storage"
	"github.com/alejandrodnm/polytrack/internal/application/ledger"
	"github.com/alejandrodnm/polytrack/internal/application/scanner"
	"github.com/alejandrodnm/polytrack/internal/application/tracker"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	hours := flag.Float64("hours", 24, "session duration in hours")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print open-positions table on status reports")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	slog.Info("polytrack starting",
		"config", *configPath,
		"hours", *hours,
		"poll_interval", cfg.PollInterval(),
		"initial_capital", cfg.Tracker.InitialCapital,
	)

	client := polymarket.NewClient(cfg.API.GammaBase)
	stateFile := storage.NewStateFile(cfg.Storage.StateFile)
	tradeLog := storage.NewTradeLog(cfg.Storage.TradeLog)
	defer tradeLog.Close()

	archive, err := storage.NewSQLiteArchive(cfg.Storage.ArchiveDSN)
	if err != nil {
		slog.Error("failed to open trade archive", "err", err, "path", cfg.Storage.ArchiveDSN)
		os.Exit(1)
	}
	defer archive.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	led := ledger.New(ledger.Config{
		InitialCapital:      cfg.Tracker.InitialCapital,
		MinTradeSpacing:     cfg.MinTradeSpacing(),
		MaxTradesPerHour:    cfg.Tracker.MaxTradesPerHour,
		MinPositionSize:     cfg.Tracker.MinPositionSize,
		MaxPositionFraction: cfg.Tracker.MaxPositionFraction,
		KellyMultiplier:     cfg.Tracker.KellyMultiplier,
		KellyCap:            cfg.Tracker.KellyCap,
	}, stateFile, tradeLog, time.Now())

	if st, found, err := stateFile.Load(); err != nil {
		slog.Warn("could not load previous state, starting fresh", "err", err)
	} else if found {
		settled, err := archive.ListSettled(ctx)
		if err != nil {
			slog.Warn("could not load settled history from archive", "err", err)
		}
		led.Restore(st, settled)
	}

	s := scanner.New(scanner.Config{
		MinEdge:       cfg.Tracker.MinEdge,
		VolumeFloor:   cfg.Tracker.VolumeFloor,
		PriceBandLow:  cfg.Tracker.PriceBandLow,
		PriceBandHigh: cfg.Tracker.PriceBandHigh,
	})

	notifier := notify.NewConsole(*table)

	engine := tracker.New(client, s, led, archive, notifier, tracker.Config{
		PollInterval:            cfg.PollInterval(),
		SettlementCheckInterval: cfg.SettlementCheckInterval(),
		StatusReportInterval:    cfg.StatusReportInterval(),
	})

	duration := time.Duration(*hours * float64(time.Hour))
	if err := engine.Run(ctx, duration); err != nil {
		slog.Error("tracker exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("polytrack stopped cleanly")
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
