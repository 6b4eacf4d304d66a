package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/splitt/internal/auth"
	"github.com/mmynk/splitt/internal/config"
	"github.com/mmynk/splitt/internal/metrics"
	"github.com/mmynk/splitt/internal/middleware"
	"github.com/mmynk/splitt/internal/receipt"
	"github.com/mmynk/splitt/internal/service"
	"github.com/mmynk/splitt/internal/storage/sqlite"
	"github.com/mmynk/splitt/internal/web"
	"github.com/mmynk/splitt/pkg/api"
	"github.com/mmynk/splitt/pkg/logging"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	logging.Setup()

	cfg, err := config.Load(getEnv("SPLITT_CONFIG", "splitt.hcl"))
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.SetupWithLevel(cfg.Level())

	if cfg.JWTSecret == config.DevSecret {
		slog.Warn("Using the development token secret; set JWT_SECRET in production")
	}
	tokenTTL, _ := cfg.TokenDuration() // checked by config.Load

	// Initialize SQLite storage
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, tokenTTL)
	opts := []service.Option{service.WithMetrics(m)}

	parser, err := receipt.NewParser(context.Background(), cfg.ReceiptConfig())
	switch {
	case errors.Is(err, receipt.ErrNotConfigured):
		slog.Info("Receipt import disabled")
	case err != nil:
		slog.Error("Failed to initialize receipt parser", "error", err)
		os.Exit(1)
	default:
		slog.Info("Receipt import enabled", "provider", cfg.ReceiptConfig().Provider)
		opts = append(opts, service.WithReceiptParser(parser))
	}

	mux := http.NewServeMux()

	// Register Connect services
	interceptors := connect.WithInterceptors(
		middleware.LoggingInterceptor(m),
		middleware.BillAuth(jwtManager),
	)
	billPath, billHandler := api.NewBillServiceHandler(service.NewBillService(store, jwtManager, opts...), interceptors)
	mux.Handle(billPath, billHandler)

	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	staticDir, err := filepath.Abs(cfg.StaticPath)
	if err != nil {
		slog.Error("Failed to resolve static path", "error", err)
		os.Exit(1)
	}
	mux.Handle("/", web.Static(staticDir))
	slog.Info("Serving static files", "path", staticDir)

	// h2c serves HTTP/2 without TLS, which Connect's gRPC protocols need.
	handler := h2c.NewHandler(middleware.RequestLog(middleware.CORS(mux)), &http2.Server{})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Shutdown failed", "error", err)
		}
	}()

	slog.Info("Connect server starting", "address", srv.Addr, "url", fmt.Sprintf("http://localhost%s", srv.Addr), "currency", cfg.Currency)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped")
}
