// Command ticketsvc runs the Reservation Dispatcher. Depending on
// deployment_mode it either assembles a combined process that also owns the
// Stock Cell (co-located mode) or a standalone Dispatcher process that
// reaches the Inventory Engine over HTTP (split mode) — spec.md §4.3/§4.5.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flmendes/ticket-system/internal/config"
	"github.com/flmendes/ticket-system/internal/dispatch"
	"github.com/flmendes/ticket-system/internal/httpapi"
	"github.com/flmendes/ticket-system/internal/inventory"
	"github.com/flmendes/ticket-system/internal/logging"
	"github.com/flmendes/ticket-system/internal/stock"
	"github.com/flmendes/ticket-system/internal/tracing"
	"github.com/flmendes/ticket-system/internal/vacancy"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("problem loading config", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.LogLevel)
	slog.Info("Reservation Dispatcher starting", "deployment_mode", cfg.DeploymentMode)

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "ticket-dispatcher"
	}

	shutdownTracer, err := tracing.InitTracing(serviceName, cfg.OTLPEndpoint)
	if err != nil {
		slog.Error("failed to initialize tracing", "error", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracer(ctx)
	}()

	var (
		router  http.Handler
		addr    string
		closers []func()
	)

	switch cfg.DeploymentMode {
	case config.ModeCoLocated:
		if err := cfg.RequireSingleReplica(); err != nil {
			slog.Error("refusing to start", "error", err)
			os.Exit(1)
		}

		cell, err := stock.New(cfg.InitialStock, cfg.CacheTTL)
		if err != nil {
			slog.Error("failed to initialize stock cell", "error", err)
			os.Exit(1)
		}
		svc := inventory.New(cell)
		client := vacancy.NewLocal(svc)
		d := dispatch.New(client)

		router = httpapi.NewCombinedRouter(svc, d, serviceName)
		addr = ":" + cfg.CombinedPort

	case config.ModeSplit:
		// Remote variant owns a single process-wide HTTP transport,
		// created once here and never per call (spec.md §4.3/§5).
		httpClient := vacancy.NewHTTPClient(vacancy.TransportConfig{
			MaxConnections:       cfg.HTTPMaxConnections,
			KeepaliveConnections: cfg.HTTPKeepaliveConnections,
			RequestTimeout:       cfg.VacancyTimeout,
		})
		closers = append(closers, httpClient.CloseIdleConnections)

		client := vacancy.NewRemote(cfg.VacancyURL, httpClient, cfg.CircuitMaxFailures, cfg.CircuitTimeoutSeconds)
		d := dispatch.New(client)

		router = httpapi.NewPurchaseRouter(d, serviceName)
		addr = ":" + cfg.PurchasePort

	default:
		slog.Error("unrecognized deployment mode", "deployment_mode", cfg.DeploymentMode)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("Reservation Dispatcher is starting", "addr", addr, "deployment_mode", cfg.DeploymentMode)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("ListenAndServe error", "error", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	slog.Info("Reservation Dispatcher shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
	for _, close := range closers {
		close()
	}
}
