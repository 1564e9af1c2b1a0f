package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/acme/storefront/internal/config"
	"github.com/acme/storefront/internal/gateway"
	"github.com/acme/storefront/internal/telemetry"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load("gateway")
	if cfg.OrdersServiceURL == "" {
		logger.Error("ORDERS_SERVICE_URL is required")
		os.Exit(1)
	}
	if cfg.InventoryServiceURL == "" {
		logger.Error("INVENTORY_SERVICE_URL is required")
		os.Exit(1)
	}

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, cfg.OTLPEndpoint, cfg.ServiceName, cfg.ServiceVersion)
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	httpClient := &http.Client{
		Timeout:   10 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	storefrontProxy := gateway.NewServiceProxy(cfg.OrdersServiceURL, httpClient)
	inventoryProxy := gateway.NewServiceProxy(cfg.InventoryServiceURL, httpClient)
	handler := gateway.NewHandler(storefrontProxy, inventoryProxy, logger)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /store/products", telemetry.WithHTTPRoute(handler.HandleStore))
	mux.HandleFunc("POST /store/products", telemetry.WithHTTPRoute(handler.HandleStore))
	mux.HandleFunc("GET /store/products/{id}", telemetry.WithHTTPRoute(handler.HandleStore))
	mux.HandleFunc("PATCH /store/products/{id}/price", telemetry.WithHTTPRoute(handler.HandleStore))
	mux.HandleFunc("DELETE /store/products/{id}", telemetry.WithHTTPRoute(handler.HandleStore))

	mux.HandleFunc("POST /store/carts", telemetry.WithHTTPRoute(handler.HandleStore))
	mux.HandleFunc("GET /store/carts/{cartId}", telemetry.WithHTTPRoute(handler.HandleStore))
	mux.HandleFunc("DELETE /store/carts/{cartId}", telemetry.WithHTTPRoute(handler.HandleStore))
	mux.HandleFunc("POST /store/carts/{cartId}/items", telemetry.WithHTTPRoute(handler.HandleStore))
	mux.HandleFunc("PATCH /store/carts/{cartId}/items/{productId}", telemetry.WithHTTPRoute(handler.HandleStore))
	mux.HandleFunc("DELETE /store/carts/{cartId}/items/{productId}", telemetry.WithHTTPRoute(handler.HandleStore))

	mux.HandleFunc("POST /store/orders", telemetry.WithHTTPRoute(handler.HandleStore))
	mux.HandleFunc("GET /store/orders", telemetry.WithHTTPRoute(handler.HandleStore))
	mux.HandleFunc("GET /store/orders/{id}", telemetry.WithHTTPRoute(handler.HandleStore))

	mux.HandleFunc("GET /inventory/stock", telemetry.WithHTTPRoute(handler.HandleInventory))
	mux.HandleFunc("GET /inventory/stock/{productId}", telemetry.WithHTTPRoute(handler.HandleInventory))

	server := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: otelhttp.NewHandler(mux, cfg.ServiceName,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Pattern
				}
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting gateway service", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
