// Command engine runs the standalone Inventory Engine process: the Stock
// Cell and Inventory Service behind the reservation/availability HTTP
// Surface (spec.md §4.5), used in split deployment mode.
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
	"github.com/flmendes/ticket-system/internal/httpapi"
	"github.com/flmendes/ticket-system/internal/inventory"
	"github.com/flmendes/ticket-system/internal/logging"
	"github.com/flmendes/ticket-system/internal/stock"
	"github.com/flmendes/ticket-system/internal/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logging.Setup hasn't run yet; there is no config to read a
		// level from.
		slog.Error("problem loading config", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.LogLevel)
	slog.Info("Inventory Engine starting")

	if err := cfg.RequireSingleReplica(); err != nil {
		slog.Error("refusing to start", "error", err)
		os.Exit(1)
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "ticket-engine"
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

	cell, err := stock.New(cfg.InitialStock, cfg.CacheTTL)
	if err != nil {
		slog.Error("failed to initialize stock cell", "error", err)
		os.Exit(1)
	}
	svc := inventory.New(cell)

	router := httpapi.NewEngineRouter(svc, serviceName)

	server := &http.Server{
		Addr:    ":" + cfg.InventoryPort,
		Handler: router,
	}

	go func() {
		slog.Info("Inventory Engine is starting", "port", cfg.InventoryPort, "initial_stock", cfg.InitialStock)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("ListenAndServe error", "error", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	slog.Info("Inventory Engine shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}
