package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventflow/internal/config"
	"eventflow/internal/handlers"
	"eventflow/internal/logging"
	"eventflow/internal/middleware"
	"eventflow/internal/notify"
	"eventflow/internal/repositories"
	"eventflow/internal/services"
)

const (
	shutdownTimeout       = 10 * time.Second
	checkoutSweepInterval = 5 * time.Minute
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logging.New(cfg.Log)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize repositories
	events, err := repositories.NewFixtureEventRepository()
	if err != nil {
		return err
	}
	tickets, err := repositories.NewFixtureTicketRepository()
	if err != nil {
		return err
	}
	orders := repositories.NewOrderRepository()

	notifier := notify.New(cfg.Notify, logger)
	defer notifier.Close()

	// Initialize services
	checkoutService := services.NewCheckoutService(services.CheckoutOptions{
		Pricing: services.Pricing{
			TaxRate:       cfg.Checkout.TaxRate,
			ProcessingFee: cfg.Checkout.ProcessingFee,
		},
		Payments:   services.NewMockPaymentService(cfg.Checkout.PaymentDelay, nil, logger),
		Notifier:   notifier,
		Orders:     orders,
		PromoDelay: cfg.Checkout.PromoDelay,
		Logger:     logger,
	})
	checkouts := repositories.NewCheckoutStore(checkoutService)

	discoveryService := services.NewEventDiscoveryService(events, services.DiscoveryOptions{
		PageSize:      cfg.Catalog.PageSize,
		LoadMoreDelay: cfg.Catalog.LoadMoreDelay,
		MaxPerOrder:   cfg.Catalog.MaxTicketsPerSelection,
		Logger:        logger,
	})
	ticketService := services.NewTicketService(tickets, services.TicketOptions{
		QRURLTemplate: cfg.Tickets.QRURLTemplate,
		TransferDelay: cfg.Tickets.TransferDelay,
		Logger:        logger,
	})
	adminService := services.NewAdminService(events, orders, nil, logger)

	trustedProxies, err := middleware.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		return fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}

	promoLimiter := middleware.NewRateLimiter(cfg.Checkout.PromoAttempts, cfg.Checkout.PromoWindow)
	go sweepLimiter(ctx, promoLimiter, cfg.Checkout.PromoWindow)
	go sweepCheckouts(ctx, checkouts, time.Duration(cfg.Session.MaxAge)*time.Second, logger)

	router := handlers.NewRouter(handlers.RouterConfig{
		Discovery:      discoveryService,
		Tickets:        ticketService,
		Admin:          adminService,
		Checkouts:      checkouts,
		Session:        middleware.NewCheckoutSession(cfg.Session.Secret, cfg.Session.MaxAge, !cfg.IsDevelopment()),
		PromoLimiter:   promoLimiter,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		TrustedProxies: trustedProxies,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:              cfg.Address(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "addr", srv.Addr, "env", cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}

// sweepLimiter drops idle rate limit entries once per window
func sweepLimiter(ctx context.Context, rl *middleware.RateLimiter, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.Cleanup()
		}
	}
}

// sweepCheckouts closes checkouts whose session cookie has expired
func sweepCheckouts(ctx context.Context, store *repositories.CheckoutStore, maxIdle time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(min(maxIdle, checkoutSweepInterval))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := store.Sweep(maxIdle); n > 0 {
				logger.Info("Checkout: swept idle checkouts", "count", n, "live", store.Len())
			}
		}
	}
}
