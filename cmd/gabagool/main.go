package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/gabagool/config"
	"github.com/alejandrodnm/gabagool/internal/adapters/notify"
	"github.com/alejandrodnm/gabagool/internal/adapters/polymarket"
	"github.com/alejandrodnm/gabagool/internal/adapters/storage"
	"github.com/alejandrodnm/gabagool/internal/application/scanner"
	"github.com/alejandrodnm/gabagool/internal/domain"
	"github.com/alejandrodnm/gabagool/internal/ports"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one scan cycle and exit")
	dryRun := flag.Bool("dry-run", false, "detect and log but never submit orders")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print open positions as a table each cycle")
	positions := flag.Bool("positions", false, "print open positions and exit")
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
	if *dryRun {
		cfg.Dev.DryRun = true
	}
	setupLogger(cfg.Log)

	slog.Info("gabagool starting",
		"config", *configPath,
		"keyword", cfg.Market.Keyword,
		"poll", cfg.PollInterval(),
		"discovery", cfg.DiscoveryInterval(),
		"dry_run", cfg.Dev.DryRun,
		"once", *once,
	)

	ledger, err := storage.NewSQLiteLedger(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open ledger", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer ledger.Close()

	notifier := notify.NewConsole(*table, cfg.Trading.QtyBalanceTolerance)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *positions {
		showPositions(ctx, ledger, cfg.Trading.QtyBalanceTolerance)
		return
	}

	source := polymarket.NewClient(cfg.API.CLOBBase, cfg.API.GammaBase)

	var executor ports.OrderExecutor
	if !cfg.Dev.DryRun {
		auth, err := polymarket.NewAuthClient(cfg.API.CLOBBase, cfg.API.GammaBase, cfg.Wallet.PrivateKey)
		if err != nil {
			slog.Error("failed to init trading client", "err", err)
			os.Exit(1)
		}
		if err := auth.EnsureCreds(ctx); err != nil {
			slog.Error("failed to derive API credentials", "err", err)
			os.Exit(1)
		}
		slog.Info("trading enabled", "address", auth.Address())
		executor = polymarket.NewTradingClient(auth)
	}

	trader := scanner.NewTrader(scanner.TraderConfig{
		BankrollUSDC:         cfg.Trading.BankrollUSDC,
		MaxWalletUtilization: cfg.Trading.MaxWalletUtilization,
		QtyBalanceTolerance:  cfg.Trading.QtyBalanceTolerance,
		DryRun:               cfg.Dev.DryRun,
	}, executor, ledger)

	s := scanner.New(scanner.Config{
		PollInterval:         cfg.PollInterval(),
		DiscoveryInterval:    cfg.DiscoveryInterval(),
		MaxConsecutiveErrors: cfg.Trading.MaxConsecutiveErrors,
		DryRun:               cfg.Dev.DryRun,
		RunOnce:              *once,
		Filter:               ports.MarketFilter{Keyword: cfg.Market.Keyword},
		Detector: domain.DetectorConfig{
			TargetCombinedCost: cfg.Trading.TargetCombinedCost,
			MinProfitMargin:    cfg.Trading.MinProfitMargin,
			MinLiquidity:       cfg.Market.MinLiquidityUSDC,
			ExpiryBuffer:       cfg.ExpiryBuffer(),
		},
	}, scanner.NewCache(source), trader, ledger, notifier)

	if err := s.Run(ctx); err != nil {
		slog.Error("scanner exited with error", "err", err)
		os.Exit(1)
	}

	showPositions(ctx, ledger, cfg.Trading.QtyBalanceTolerance)
	slog.Info("gabagool stopped cleanly")
}

func showPositions(ctx context.Context, ledger ports.Ledger, tolerance float64) {
	positions, err := ledger.OpenPositions(ctx)
	if err != nil {
		slog.Warn("failed to load open positions", "err", err)
		return
	}
	table := notify.NewConsole(true, tolerance)
	if err := table.NotifyPositions(ctx, positions); err != nil {
		slog.Warn("failed to print positions", "err", err)
	}
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
