package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/milsabores/checkout/internal/domain/checkout"
	"github.com/milsabores/checkout/internal/domain/discount"
	"github.com/milsabores/checkout/internal/domain/order"
	"github.com/milsabores/checkout/internal/handler"
	"github.com/milsabores/checkout/internal/storage/postgres"
	"github.com/milsabores/checkout/pkg/health"
	"github.com/milsabores/checkout/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Repositories.
	productRepo := postgres.NewProductRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	auditLog := postgres.NewAuditLog(pool)
	promoRepo := postgres.NewPromotionRepository(pool)
	ledger := postgres.NewInventoryLedger(pool)

	// Discount engine over the current running promotions.
	promos, err := promoRepo.ListActive(ctx)
	if err != nil {
		return errors.Wrap(err, "load promotions")
	}
	birthdayWindow := discount.SameCalendarDay
	if cfg.Discounts.BirthdayWindow == "month" {
		birthdayWindow = discount.SameCalendarMonth
	}
	engine := discount.NewEngine(discount.EngineConfig{
		SeniorAge:      cfg.Discounts.SeniorAge,
		BirthdayWindow: birthdayWindow,
	}, promos)
	lg.Info("Loaded promotions", zap.Int("count", len(promos)))

	// Keep the engine's promotion set in sync with the database, so codes
	// upserted by seed-db or promo-ingest reach a running server.
	if cfg.Discounts.PromoRefresh > 0 {
		go func() {
			ticker := time.NewTicker(cfg.Discounts.PromoRefresh)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					refreshed, err := promoRepo.ListActive(ctx)
					if err != nil {
						lg.Warn("Refresh promotions", zap.Error(err))
						continue
					}
					engine.ReplacePromotions(refreshed)
				}
			}
		}()
	}

	// Domain services.
	orderService := order.NewService(productRepo, customerRepo, orderRepo)
	coordinator := checkout.NewCoordinator(customerRepo, engine, auditLog, lg.Named("checkout"))

	// HTTP routes: health endpoints + API handlers on one mux.
	h := handler.New(productRepo, orderService, coordinator, auditLog, ledger)
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	h.Register(mux)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("checkout-api", mux, m.TracerProvider(), m.MeterProvider()),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
