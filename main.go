package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/backend"
	"storefront/cart"
	"storefront/checkout"
	"storefront/config"
	"storefront/daterange"
	"storefront/db"
	"storefront/globals"
	"storefront/logging"
	"storefront/mq"
	"storefront/ratelim"
	"storefront/rdx"
	"storefront/receipt"
	"storefront/reports"
	"storefront/routes"

	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// securityHeaders applies a set of recommended HTTP security headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// XSS, content sniffing, framing
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "frame-ancestors 'none'")
		// HSTS (must be on HTTPS)
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		w.Header().Set("Referrer-Policy", "no-referrer")
		// Prevent caching
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
		next.ServeHTTP(w, r)
	})
}

// Index is a simple health check handler.
func Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}

// openBackend picks the sales backend from BACKEND_KIND. The close func releases it.
func openBackend(ctx context.Context, cfg config.Config, logger *zap.Logger) (backend.Backend, func(), error) {
	if cfg.BackendKind == config.BackendREST {
		client := backend.NewClient(backend.ClientConfig{
			BaseURL: cfg.BackendURL,
			APIKey:  cfg.BackendAPIKey,
			Retries: cfg.BackendRetries,
		}, logger)
		return client, func() {}, nil
	}

	mc, err := db.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return nil, nil, err
	}
	repo := db.NewSalesRepository(mc.Database(cfg.MongoDB))
	if err := repo.EnsureIndexes(ctx); err != nil {
		logger.Warn("sales indexes not ensured", zap.Error(err))
	}
	return repo, func() { _ = mc.Disconnect(context.Background()) }, nil
}

func main() {
	cfg, foundEnv, err := config.Load()
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	logger, closeLog, err := logging.New(cfg.Debug, cfg.LogFile)
	if err != nil {
		log.Fatalf("❌ logger: %v", err)
	}
	defer closeLog()
	if !foundEnv {
		logger.Info("no .env file found; using system environment")
	}

	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sales, closeBackend, err := openBackend(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("backend unavailable", zap.String("kind", cfg.BackendKind), zap.Error(err))
	}
	defer closeBackend()

	// carts, report cache and idempotency live in Redis; without it the register
	// still sells from process memory
	var (
		carts     cart.Store = cart.NewMemoryStore()
		cache     reports.Cache
		idem      *rdx.IdempotencyStore
		publisher checkout.Publisher
		conn      *redis.Client
	)
	conn, err = rdx.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Warn("redis unavailable; carts kept in memory", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	} else {
		defer conn.Close()
		reportCache := &rdx.ReportCache{Conn: conn, TTL: cfg.ReportCacheTTL}
		carts = &rdx.CartStore{Conn: conn, TTL: cfg.CartTTL}
		cache = reportCache
		idem = &rdx.IdempotencyStore{Conn: conn}
		publisher = &mq.Emitter{Conn: conn, Logger: logger.Named("mq")}
		go mq.StartSalesWorker(ctx, conn, reportCache, logger.Named("sales-worker"))
	}

	cartHandler := &cart.Handler{Store: carts, Logger: logger.Named("cart")}
	service := checkout.NewService(checkout.Options{
		Backend:   sales,
		Receipts:  receipt.NewRenderer(cfg.Currency),
		Publisher: publisher,
		Logger:    logger.Named("checkout"),
		Origin:    cfg.Origin,
		Location:  cfg.Location,
	})

	rateLimiter := ratelim.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go rateLimiter.Run(ctx.Done())

	deps := routes.Deps{
		Carts:    cartHandler,
		Checkout: &checkout.Handler{Service: service, Carts: cartHandler},
		Reports: &reports.Handler{
			Backend:  sales,
			Resolver: daterange.NewResolver(cfg.Location),
			Cache:    cache,
			Logger:   logger.Named("reports"),
		},
		RateLimiter:    rateLimiter,
		DefaultStoreID: cfg.DefaultStoreID,
		Logger:         logger,
	}
	if idem != nil {
		deps.Idempotency = idem
	}

	router := httprouter.New()
	router.GET("/health", Index)
	routes.RoutesWrapper(router, deps)

	// apply middleware: CORS → security headers → logging → router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{cfg.Origin},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Content-Type",
			globals.StoreIDHeader,
			globals.OperatorIDHeader,
			globals.OperatorNameHeader,
			globals.RequestIDHeader,
			globals.IdempotencyKeyHeader,
		},
		ExposedHeaders: []string{"Content-Disposition", globals.RequestIDHeader, "Idempotent-Replayed"},
	}).Handler(router)

	handler := logging.Middleware(logger.Named("http"), securityHeaders(corsHandler))

	server := &http.Server{
		Addr:              cfg.Port,
		Handler:           handler,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Port), zap.String("backend", cfg.BackendKind))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("ListenAndServe error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received; shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		return
	}
	logger.Info("server stopped cleanly")
}
