package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/flmendes/ticket-system/internal/inventory"
	"github.com/flmendes/ticket-system/internal/tracing"
)

// InventoryHandler publishes the Inventory endpoints: reservation and
// availability, both under /api/v1 (spec.md §4.5), grounded on the
// teacher's InventoryHandler.ReserveProduct/GetProduct pair but generalized
// from a per-product row to the single process-wide Stock Cell.
type InventoryHandler struct {
	svc         *inventory.Service
	serviceName string
}

// NewInventoryHandler builds an InventoryHandler over svc.
func NewInventoryHandler(svc *inventory.Service, serviceName string) *InventoryHandler {
	return &InventoryHandler{svc: svc, serviceName: serviceName}
}

// Reserve handles POST /api/v1/reserve.
func (h *InventoryHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.StartSpan(r.Context(), h.serviceName, "InventoryHandler.Reserve")
	defer span.End()

	var body reservationRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		slog.Error("failed to decode request", "error", err, "traceID", tracing.GetTraceID(ctx))
		span.RecordError(err)
		span.SetStatus(codes.Error, "malformed body")
		writeError(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON")
		return
	}

	span.SetAttributes(attribute.Int("quantity", body.Qty))

	outcome, err := h.svc.Reserve(inventory.Request{Quantity: body.Qty})
	if err != nil {
		if errors.Is(err, inventory.ErrInvalidQuantity) {
			slog.Warn("invalid reserve quantity", "qty", body.Qty, "traceID", tracing.GetTraceID(ctx))
			span.SetStatus(codes.Error, "invalid quantity")
			writeError(w, http.StatusBadRequest, "invalid_quantity", "qty must be a positive integer")
			return
		}
		slog.Error("reserve failed", "error", err, "traceID", tracing.GetTraceID(ctx))
		span.RecordError(err)
		span.SetStatus(codes.Error, "internal error")
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}

	span.SetStatus(codes.Ok, "reserved")
	writeJSON(w, http.StatusOK, reservationResponseBody{
		Success:   outcome.Accepted,
		Remaining: outcome.Remaining,
		Message:   outcome.Message,
	})
}

// Available handles GET /api/v1/available.
func (h *InventoryHandler) Available(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.StartSpan(r.Context(), h.serviceName, "InventoryHandler.Available")
	defer span.End()

	qty := h.svc.Available()
	span.SetAttributes(attribute.Int("quantity", qty))
	writeJSON(w, http.StatusOK, availableResponseBody{Qty: qty})
}

// Health handles GET /api/v1/health.
func (h *InventoryHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponseBody{Status: "healthy", Service: h.serviceName})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, kind, detail string) {
	writeJSON(w, status, errorResponseBody{Error: kind, Detail: detail})
}
