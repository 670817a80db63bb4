package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/nikolayk812/storefront/internal/api"
	"github.com/nikolayk812/storefront/internal/catalog"
	"github.com/nikolayk812/storefront/internal/checkout"
	"github.com/nikolayk812/storefront/internal/config"
	"github.com/nikolayk812/storefront/internal/notification"
	"github.com/nikolayk812/storefront/internal/paypal"
	"github.com/nikolayk812/storefront/internal/repository"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup(*configPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	store, err := repository.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("repository.Open: %w", err)
	}
	defer store.Close()

	products, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("catalog.Load: %w", err)
	}

	if cfg.PayPalClientID == "" || cfg.PayPalClientSecret == "" {
		logger.Warn("PAYPAL_CLIENT_ID or PAYPAL_CLIENT_SECRET is empty, provider calls will fail")
	}

	gateway, err := paypal.New(paypal.Config{
		ClientID:     cfg.PayPalClientID,
		ClientSecret: cfg.PayPalClientSecret,
		BaseURL:      cfg.PayPalBaseURL,
		Timeout:      cfg.PayPalTimeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("paypal.New: %w", err)
	}

	notifier, err := notification.New(notification.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.FromEmail,
		Admin:    cfg.AdminEmail,
		Timeout:  cfg.SMTPTimeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("notification.New: %w", err)
	}

	service, err := checkout.NewService(store.Orders, gateway, notifier, products, logger)
	if err != nil {
		return fmt.Errorf("checkout.NewService: %w", err)
	}

	router, err := api.NewRouter(service, api.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	}, logger)
	if err != nil {
		return fmt.Errorf("api.NewRouter: %w", err)
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// capture waits on the provider and then on SMTP
		WriteTimeout: cfg.PayPalTimeout + cfg.SMTPTimeout*2 + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.HTTPAddr, "paypal_mode", cfg.PayPalMode,
			"notifications", cfg.NotificationsEnabled())
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server.ListenAndServe: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}

	return nil
}
