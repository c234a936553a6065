package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/sneakstore/storefront/internal/domain/cart"
	"github.com/sneakstore/storefront/internal/domain/catalog"
	"github.com/sneakstore/storefront/internal/domain/favorites"
	"github.com/sneakstore/storefront/internal/handler"
	"github.com/sneakstore/storefront/internal/storage/sqlite"
	"github.com/sneakstore/storefront/pkg/health"
	"github.com/sneakstore/storefront/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("db_path", cfg.DBPath),
		zap.String("catalog_url", cfg.CatalogURL),
	)

	// Local key-value store shared by the catalog cache and both collections.
	gw, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return errors.Wrap(err, "open local store")
	}
	defer gw.Close()

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("local-store", 5*time.Second, gw.Ping)
	healthSvc.AddReadinessCheck("catalog-endpoint", 5*time.Second,
		health.URLReachableCheck(nil, cfg.CatalogURL))
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Domain layer.
	source := catalog.NewHTTPSource(nil, cfg.CatalogURL)
	loader := catalog.NewLoader(source, gw, lg.Named("catalog"))
	favoritesStore := favorites.NewStore(gw, lg.Named("favorites"))
	cartStore := cart.NewStore(gw, lg.Named("cart"))

	// Load both collections once at startup; every view focus reloads them
	// through the handlers afterwards.
	if err := favoritesStore.Refresh(ctx); err != nil {
		lg.Warn("Initial favorites load failed", zap.Error(err))
	}
	if err := cartStore.Refresh(ctx); err != nil {
		lg.Warn("Initial cart load failed", zap.Error(err))
	}

	// HTTP surface: health endpoints + API routes on one server.
	h := handler.New(loader, favoritesStore, cartStore)

	root := chi.NewRouter()
	root.Get("/livez", healthSvc.LiveEndpoint)
	root.Get("/readyz", healthSvc.ReadyEndpoint)
	root.Mount("/api", h.Routes())

	wrapped := httpmiddleware.Wrap(root,
		httpmiddleware.Recovery(),
		httpmiddleware.CORS(httpmiddleware.CORSConfig{
			AllowOrigins:     cfg.CORS.Origins,
			AllowHeaders:     []string{"Content-Type", "Authorization"},
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           86400,
		}),
		httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
			Max:    cfg.RateLimit.Max,
			Window: cfg.RateLimit.Window,
		}),
		httpmiddleware.RequestID(),
		httpmiddleware.InjectLogger(zctx.From(ctx)),
		httpmiddleware.LogRequests(),
	)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: otelhttp.NewHandler(wrapped, "storefront-api",
			otelhttp.WithTracerProvider(m.TracerProvider()),
			otelhttp.WithMeterProvider(m.MeterProvider()),
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
