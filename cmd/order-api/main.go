package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"

	"github.com/joho/godotenv"

	"github.com/chemabeez/honey-orders/internal/mpesa"
	"github.com/chemabeez/honey-orders/internal/notify"
	"github.com/chemabeez/honey-orders/internal/orderapi/httpx"
	"github.com/chemabeez/honey-orders/internal/orderapi/infra/adapters/payment"
	"github.com/chemabeez/honey-orders/internal/paylog"
	"github.com/chemabeez/honey-orders/internal/paylog/sqlite"
	"github.com/chemabeez/honey-orders/internal/pkg/config"
	"github.com/chemabeez/honey-orders/internal/pkg/telemetry"
)

func main() {
	// Optional .env for local development; the environment wins in prod.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	telemetry.InitLogger("order-api")

	ctx := context.Background()
	shutdown, err := telemetry.SetupTracer(ctx, "order-api")
	if err != nil {
		slog.Warn("tracing disabled", "error", err)
	} else {
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				slog.Warn("tracer shutdown failed", "error", err)
			}
		}()
	}

	if !cfg.PaymentConfigured() {
		slog.Warn("m-pesa not fully configured; payment initiation will fail per order, orders still accepted")
	}

	var audit paylog.Repository
	if cfg.PaylogPath != "" {
		repo, err := sqlite.Open(cfg.PaylogPath)
		if err != nil {
			slog.Warn("gateway audit log disabled", "path", cfg.PaylogPath, "error", err)
		} else {
			defer repo.Close()
			audit = repo
		}
	}

	gateway := mpesa.NewClient(mpesa.Config{
		Environment:    cfg.Mpesa.Environment,
		ConsumerKey:    cfg.Mpesa.ConsumerKey,
		ConsumerSecret: cfg.Mpesa.ConsumerSecret,
		ShortCode:      cfg.Mpesa.ShortCode,
		PassKey:        cfg.Mpesa.PassKey,
		CallbackURL:    cfg.Mpesa.CallbackURL,
	})

	notifier := notify.New(notify.Config{
		Host:     cfg.Mail.SMTPHost,
		Port:     cfg.Mail.SMTPPort,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		To:       cfg.Mail.To,
	})

	handler := httpx.NewHandler(payment.NewMpesaInitiator(gateway), notifier, audit)
	router := httpx.NewRouter(handler)

	slog.Info("order API listening", "addr", cfg.ListenAddr, "mpesa_env", cfg.Mpesa.Environment)
	if err := http.ListenAndServe(cfg.ListenAddr, router); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}
