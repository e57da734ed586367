package httpapi

import (
	"errors"
	"net/http"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/flmendes/ticket-system/internal/dispatch"
)

// writeDispatchError maps a dispatch.Error's Kind to the status codes
// spec.md §7 fixes.
func writeDispatchError(w http.ResponseWriter, span trace.Span, err error) {
	span.RecordError(err)

	var derr *dispatch.Error
	if !errors.As(err, &derr) {
		span.SetStatus(codes.Error, "internal error")
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}

	switch derr.Kind {
	case dispatch.KindInvalidQuantity:
		span.SetStatus(codes.Error, "invalid quantity")
		writeError(w, http.StatusBadRequest, "invalid_quantity", "qty must be a positive integer")
	case dispatch.KindUpstreamUnavailable:
		span.SetStatus(codes.Error, "upstream unavailable")
		writeError(w, http.StatusServiceUnavailable, "upstream_unavailable", derr.Error())
	default:
		span.SetStatus(codes.Error, "internal error")
		writeError(w, http.StatusInternalServerError, "internal_error", derr.Error())
	}
}
