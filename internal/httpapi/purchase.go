package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/flmendes/ticket-system/internal/dispatch"
	"github.com/flmendes/ticket-system/internal/tracing"
)

// PurchaseHandler publishes the Dispatcher's purchase endpoint, grounded on
// the teacher's handlers.CreateOrder shape but stripped of its database
// write and degraded-mode acceptance: spec.md §4.4 requires the Dispatcher
// to classify and report, never to silently accept a request it could not
// reserve.
type PurchaseHandler struct {
	dispatcher  *dispatch.Dispatcher
	serviceName string
}

// NewPurchaseHandler builds a PurchaseHandler over d.
func NewPurchaseHandler(d *dispatch.Dispatcher, serviceName string) *PurchaseHandler {
	return &PurchaseHandler{dispatcher: d, serviceName: serviceName}
}

// Purchase handles POST /api/v1/purchase.
func (h *PurchaseHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.StartSpan(r.Context(), h.serviceName, "PurchaseHandler.Purchase")
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

	result, err := h.dispatcher.Purchase(ctx, body.Qty)
	if err != nil {
		slog.Error("purchase failed", "error", err, "traceID", tracing.GetTraceID(ctx))
		writeDispatchError(w, span, err)
		return
	}

	span.SetStatus(codes.Ok, result.Message)
	writeJSON(w, http.StatusOK, reservationResponseBody{
		Success:   result.Success,
		Remaining: result.Remaining,
		Message:   result.Message,
	})
}

// Available handles GET /api/v1/available on the purchase side, forwarding
// through the Vacancy Client in either deployment mode.
func (h *PurchaseHandler) Available(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.StartSpan(r.Context(), h.serviceName, "PurchaseHandler.Available")
	defer span.End()

	qty, err := h.dispatcher.Available(ctx)
	if err != nil {
		slog.Error("available failed", "error", err, "traceID", tracing.GetTraceID(ctx))
		writeDispatchError(w, span, err)
		return
	}

	span.SetAttributes(attribute.Int("quantity", qty))
	writeJSON(w, http.StatusOK, availableResponseBody{Qty: qty})
}

// Health handles GET /api/v1/health.
func (h *PurchaseHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponseBody{Status: "healthy", Service: h.serviceName})
}

// Ready handles GET /ready: the purchase side reports ready unless the
// Vacancy Client's circuit breaker is open (spec.md §4.5), checked without
// making a network call.
func (h *PurchaseHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if !h.dispatcher.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, readyResponseBody{Status: "not_ready"})
		return
	}
	writeJSON(w, http.StatusOK, readyResponseBody{Status: "ready"})
}
