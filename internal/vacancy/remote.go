package vacancy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/flmendes/ticket-system/internal/inventory"
	"github.com/flmendes/ticket-system/internal/resilience"
	"github.com/flmendes/ticket-system/internal/tracing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
)

// tracerName identifies the Remote Vacancy Client's spans; it has no
// per-instance service name the way an HTTP Surface handler does.
const tracerName = "vacancy-remote"

// reserveRequestBody is the wire shape spec.md §6 fixes for /api/v1/reserve.
type reserveRequestBody struct {
	Qty int `json:"qty"`
}

// reserveResponseBody is the success wire shape for /api/v1/reserve.
type reserveResponseBody struct {
	Success   bool   `json:"success"`
	Remaining int    `json:"remaining"`
	Message   string `json:"message"`
}

// availableResponseBody is the wire shape for /api/v1/available.
type availableResponseBody struct {
	Qty int `json:"qty"`
}

// errorResponseBody is the error wire shape spec.md §6 fixes.
type errorResponseBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// TransportConfig bounds the process-wide HTTP transport shared by every
// Remote Vacancy Client call (spec.md §5): a total-connection cap, an
// idle-connection cap, and a per-request deadline. The transport is
// created once, at process startup, and never per call.
type TransportConfig struct {
	MaxConnections       int
	KeepaliveConnections int
	RequestTimeout       time.Duration
}

// NewHTTPClient builds the process-wide pooled *http.Client for the
// Remote Vacancy Client, grounded on the teacher's plain http.Client use
// in orders/clients/inventory_client.go, generalized with explicit pool
// bounds per spec.md §5.
func NewHTTPClient(cfg TransportConfig) *http.Client {
	transport := &http.Transport{
		MaxConnsPerHost:     cfg.MaxConnections,
		MaxIdleConnsPerHost: cfg.KeepaliveConnections,
		IdleConnTimeout:     90 * time.Second,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   cfg.RequestTimeout,
	}
}

// Remote holds a reference to a shared, long-lived HTTP transport and
// calls the peer's inventory endpoints. Unlike the teacher's
// InventoryClient, it never retries: spec.md §4.4 forbids automatic retry
// on the Dispatcher's transport-error path, to avoid duplicate-purchase
// risk. A circuit breaker still protects a struggling peer from repeated
// single attempts across many requests.
type Remote struct {
	baseURL string
	client  *http.Client
	breaker *resilience.CircuitBreaker
}

// NewRemote builds a Remote Vacancy Client against baseURL, sharing the
// given pooled HTTP client and a circuit breaker configured with
// cbMaxFailures/cbTimeout.
func NewRemote(baseURL string, client *http.Client, cbMaxFailures int, cbTimeout time.Duration) *Remote {
	return &Remote{
		baseURL: baseURL,
		client:  client,
		breaker: resilience.New("vacancy-remote", cbMaxFailures, cbTimeout),
	}
}

// Reserve serializes req, sends it to the peer's /api/v1/reserve, parses
// the response, and constructs a Reservation Outcome, or classifies the
// failure per spec.md §4.3.
func (r *Remote) Reserve(ctx context.Context, req inventory.Request) (inventory.Outcome, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "vacancy.Remote.Reserve")
	defer span.End()
	span.SetAttributes(attribute.Int("quantity", req.Quantity))

	var outcome inventory.Outcome
	err := r.breaker.Execute(ctx, func(ctx context.Context) error {
		var innerErr error
		outcome, innerErr = r.doReserve(ctx, req)
		return innerErr
	})

	if errors.Is(err, resilience.ErrCircuitOpen) {
		slog.Warn("vacancy reserve rejected: circuit open", "traceID", tracing.GetTraceID(ctx))
		span.RecordError(err)
		span.SetStatus(codes.Error, "circuit open")
		return inventory.Outcome{}, fmt.Errorf("%w: circuit open", ErrTransport)
	}
	if err != nil {
		slog.Warn("vacancy reserve failed", "error", err, "traceID", tracing.GetTraceID(ctx))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return inventory.Outcome{}, err
	}

	span.SetStatus(codes.Ok, "reserved")
	return outcome, nil
}

func (r *Remote) doReserve(ctx context.Context, req inventory.Request) (inventory.Outcome, error) {
	body, err := json.Marshal(reserveRequestBody{Qty: req.Quantity})
	if err != nil {
		return inventory.Outcome{}, fmt.Errorf("vacancy: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/api/v1/reserve", bytes.NewReader(body))
	if err != nil {
		return inventory.Outcome{}, fmt.Errorf("vacancy: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return inventory.Outcome{}, classifyTransportError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return inventory.Outcome{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if resp.StatusCode != http.StatusOK {
		return inventory.Outcome{}, classifyStatusError(resp.StatusCode, respBody)
	}

	var parsed reserveResponseBody
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return inventory.Outcome{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return inventory.Outcome{
		Accepted:  parsed.Success,
		Remaining: parsed.Remaining,
		Message:   parsed.Message,
	}, nil
}

// Available sends a GET to the peer's /api/v1/available and returns the
// parsed snapshot.
func (r *Remote) Available(ctx context.Context) (int, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "vacancy.Remote.Available")
	defer span.End()

	var qty int
	err := r.breaker.Execute(ctx, func(ctx context.Context) error {
		var innerErr error
		qty, innerErr = r.doAvailable(ctx)
		return innerErr
	})

	if errors.Is(err, resilience.ErrCircuitOpen) {
		slog.Warn("vacancy available rejected: circuit open", "traceID", tracing.GetTraceID(ctx))
		span.RecordError(err)
		return 0, fmt.Errorf("%w: circuit open", ErrTransport)
	}
	if err != nil {
		slog.Warn("vacancy available failed", "error", err, "traceID", tracing.GetTraceID(ctx))
		span.RecordError(err)
		return 0, err
	}

	return qty, nil
}

func (r *Remote) doAvailable(ctx context.Context) (int, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/api/v1/available", nil)
	if err != nil {
		return 0, fmt.Errorf("vacancy: build request: %w", err)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return 0, classifyTransportError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if resp.StatusCode != http.StatusOK {
		return 0, classifyStatusError(resp.StatusCode, respBody)
	}

	var parsed availableResponseBody
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return parsed.Qty, nil
}

// CircuitState exposes the breaker state, used by the /ready probe.
func (r *Remote) CircuitState() resilience.State {
	return r.breaker.State()
}

func classifyTransportError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrDeadlineExceeded, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrDeadlineExceeded, err)
	}
	return fmt.Errorf("%w: %v", ErrTransport, err)
}

func classifyStatusError(status int, body []byte) error {
	var parsed errorResponseBody
	detail := string(body)
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		detail = parsed.Detail
	}

	slog.Warn("inventory peer returned non-200 status", "status", status, "detail", detail)

	if status == http.StatusBadRequest {
		// A 400 here always means the peer rejected a well-formed
		// request with a bad quantity (any other 4xx falls through to
		// ErrUpstreamStatus below); that's surfaced as
		// InvalidQuantity by the Dispatcher layer, not as upstream
		// unavailability.
		return fmt.Errorf("inventory: %w: %s", inventory.ErrInvalidQuantity, detail)
	}

	return fmt.Errorf("%w: status %d: %s", ErrUpstreamStatus, status, detail)
}
