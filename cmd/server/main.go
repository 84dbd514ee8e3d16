package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/accounts"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/api"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/config"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/events"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/events/kafka"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/ledger"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/models"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/portfolio"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/quotes"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/storage"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/storage/memory"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/storage/postgres"
)

func main() {
	cfg, err := config.Read()
	if err != nil {
		logrus.Fatalf("could not read config: [%v]", err)
	}

	configureLogging(cfg)

	store, closeStore, err := buildStore(cfg)
	if err != nil {
		logrus.Fatalf("could not initialize store: [%v]", err)
	}
	defer closeStore()

	publisher := buildPublisher(cfg)
	provider := buildQuoteProvider(cfg)

	accountsSvc := accounts.NewService(store, cfg.StartingCash)
	ledgerSvc := ledger.NewLedger(store, provider, publisher, ledger.Config{
		DepositMin: cfg.DepositMin,
		DepositMax: cfg.DepositMax,
	})
	valuator := portfolio.NewValuator(store, provider)

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: api.NewServer(accountsSvc, ledgerSvc, valuator, provider).Router(),
	}

	go func() {
		logrus.Infof("starting server on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("server failed: [%v]", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logrus.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = server.Shutdown(ctx)
}

func configureLogging(cfg *config.Config) {
	if cfg.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	logrus.SetOutput(os.Stdout)
}

func buildStore(cfg *config.Config) (storage.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		logrus.Warn("DATABASE_URL not set, using in-memory store")
		return memory.NewStore(), func() {}, nil
	}

	if cfg.MigrationsDir != "" {
		if err := postgres.RunMigrations(cfg.MigrationsDir, cfg.DatabaseURL); err != nil {
			return nil, nil, err
		}
	}

	store, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}

func buildPublisher(cfg *config.Config) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		return events.Nop{}
	}
	return kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
}

func buildQuoteProvider(cfg *config.Config) quotes.Provider {
	if cfg.QuoteAPIURL == "" {
		logrus.Warn("QUOTE_API_URL not set, using static quote table")
		return quotes.NewStatic(
			models.Quote{Symbol: "AAPL", Name: "Apple Inc.", Price: decimal.RequireFromString("150.00")},
			models.Quote{Symbol: "MSFT", Name: "Microsoft Corporation", Price: decimal.RequireFromString("310.25")},
			models.Quote{Symbol: "NFLX", Name: "Netflix Inc.", Price: decimal.RequireFromString("402.10")},
		)
	}
	return quotes.NewClient(cfg.QuoteAPIURL, cfg.QuoteAPIToken)
}
