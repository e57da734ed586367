package httpapi

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/riandyrn/otelchi"

	"github.com/flmendes/ticket-system/internal/dispatch"
	"github.com/flmendes/ticket-system/internal/inventory"
	appmiddleware "github.com/flmendes/ticket-system/internal/middleware"
)

// NewEngineRouter assembles the HTTP Surface published by the process that
// owns the Stock Cell: the reservation and availability endpoints under
// /api/v1 (spec.md §4.5), grounded on the teacher's inventory
// server.registerRoutes.
func NewEngineRouter(svc *inventory.Service, serviceName string) *chi.Mux {
	handler := NewInventoryHandler(svc, serviceName)
	r := chi.NewRouter()

	r.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(r)))
	r.Use(appmiddleware.PrometheusMiddleware(serviceName))
	r.Use(appmiddleware.RequestID)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/api/v1/health", handler.Health)
	r.Get("/api/v1/available", handler.Available)
	r.Post("/api/v1/reserve", handler.Reserve)

	return r
}

// NewPurchaseRouter assembles the HTTP Surface published by the process
// that owns the Dispatcher: the purchase endpoint plus the availability
// forward and the readiness probe, grounded on the teacher's orders
// server.registerRoutes.
func NewPurchaseRouter(d *dispatch.Dispatcher, serviceName string) *chi.Mux {
	handler := NewPurchaseHandler(d, serviceName)
	r := chi.NewRouter()

	r.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(r)))
	r.Use(appmiddleware.PrometheusMiddleware(serviceName))
	r.Use(appmiddleware.RequestID)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/api/v1/health", handler.Health)
	r.Get("/ready", handler.Ready)
	r.Get("/api/v1/available", handler.Available)
	r.Post("/api/v1/purchase", handler.Purchase)

	return r
}

// NewCombinedRouter assembles both HTTP Surface shapes against the same
// in-process Inventory Service for co-located mode (spec.md §4.5): the
// Remote Vacancy Client is never instantiated and no client-side HTTP
// transport exists in this mode.
func NewCombinedRouter(svc *inventory.Service, d *dispatch.Dispatcher, serviceName string) *chi.Mux {
	inventoryHandler := NewInventoryHandler(svc, serviceName)
	purchaseHandler := NewPurchaseHandler(d, serviceName)
	r := chi.NewRouter()

	r.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(r)))
	r.Use(appmiddleware.PrometheusMiddleware(serviceName))
	r.Use(appmiddleware.RequestID)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/api/v1/health", inventoryHandler.Health)
	r.Get("/ready", purchaseHandler.Ready)
	r.Get("/api/v1/available", inventoryHandler.Available)
	r.Post("/api/v1/reserve", inventoryHandler.Reserve)
	r.Post("/api/v1/purchase", purchaseHandler.Purchase)

	return r
}
