package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/checkout-lab/checkout-pipeline/internal/checkout"
	"github.com/checkout-lab/checkout-pipeline/internal/consumer"
	corecfg "github.com/checkout-lab/checkout-pipeline/internal/core/config"
	"github.com/checkout-lab/checkout-pipeline/internal/core/storage/postgres"
	"github.com/checkout-lab/checkout-pipeline/internal/enrich"
	"github.com/checkout-lab/checkout-pipeline/internal/migrations"
	"github.com/checkout-lab/checkout-pipeline/internal/query"
	"github.com/checkout-lab/checkout-pipeline/internal/server"
	"github.com/checkout-lab/checkout-pipeline/internal/transport"
	"github.com/checkout-lab/checkout-pipeline/internal/webhook"
)

func main() {
	configPath := flag.String("config", "checkout.yaml", "Path to configuration file")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config",
		"server", fmtAddr(cfg.Server.Host, cfg.Server.Port),
		"consumer_enabled", cfg.Consumer.Enabled)

	// 2. Initialize Storage (PostgreSQL)
	dbAdapter, err := postgres.NewAdapter(
		cfg.Database.DSN,
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
	)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer dbAdapter.Close()

	// 2.1. Run Database Migrations
	if err := migrations.RunMigrations(dbAdapter.DB(), cfg.Database.AutoMigrate); err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}
	if err := dbAdapter.ValidateSchema(); err != nil {
		slog.Error("Schema validation failed", "error", err)
		os.Exit(1)
	}

	ledger, err := postgres.NewLedgerAdapter(dbAdapter.DB())
	if err != nil {
		slog.Error("Failed to initialize ledger adapter", "error", err)
		os.Exit(1)
	}
	defer ledger.Close()

	payments, err := postgres.NewPaymentsAdapter(dbAdapter.DB())
	if err != nil {
		slog.Error("Failed to initialize payments adapter", "error", err)
		os.Exit(1)
	}
	defer payments.Close()

	// 3. Initialize Queue (SQS). Clients are built once and injected.
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Queue.Region),
	)
	if err != nil {
		slog.Error("Failed to load AWS config", "error", err)
		os.Exit(1)
	}
	queue := transport.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.Queue.URL)

	// 4. Initialize Enrichment (Stripe)
	provider := enrich.NewStripeProvider(cfg.Stripe.APIKey)
	enricher := enrich.NewEnricher(provider, cfg.Consumer.OpTimeoutDuration())

	// 5. Initialize Batch Consumer
	pipeline := consumer.New(ledger, enricher, payments,
		cfg.Consumer.WorkerCount, cfg.Consumer.OpTimeoutDuration())
	loop := consumer.NewLoop(queue, pipeline,
		cfg.Queue.MaxBatchSize, time.Duration(cfg.Queue.WaitTimeSeconds)*time.Second)

	// 6. Initialize Webhook Receiver + Checkout Redirect + Query API
	webhookSvc := webhook.NewService(queue, cfg.Stripe.WebhookSecret, cfg.Server.MaxBodySizeMB)
	checkoutSvc := checkout.NewService(
		checkout.NewStripeSessions(cfg.Stripe.APIKey, cfg.Checkout.SuccessURL))
	querySvc := query.NewService(payments)

	// 7. Initialize Server
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), dbAdapter, cfg.Server.Mode)
	webhookSvc.RegisterRoutes(srv.Engine)
	checkoutSvc.RegisterRoutes(srv.Engine)
	querySvc.RegisterRoutes(srv.Engine)

	// 8. Start Services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Consumer.Enabled {
		go func() {
			if err := loop.Start(ctx); err != nil {
				slog.Error("Consumer loop stopped with error", "error", err)
			}
		}()
	} else {
		slog.Info("Batch consumer disabled by config")
	}

	// Signal handler triggers the shutdown sequence below.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
