package vacancy

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/flmendes/ticket-system/internal/inventory"
)

func newTestRemote(t *testing.T, handler http.HandlerFunc) (*Remote, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	client := NewHTTPClient(TransportConfig{
		MaxConnections:       10,
		KeepaliveConnections: 5,
		RequestTimeout:       200 * time.Millisecond,
	})
	return NewRemote(srv.URL, client, 3, 30*time.Second), srv
}

func TestRemoteReserveSuccess(t *testing.T) {
	r, srv := newTestRemote(t, func(w http.ResponseWriter, req *http.Request) {
		var body reserveRequestBody
		_ = json.NewDecoder(req.Body).Decode(&body)
		_ = json.NewEncoder(w).Encode(reserveResponseBody{
			Success:   true,
			Remaining: 96,
			Message:   "reserved 4",
		})
	})
	defer srv.Close()

	outcome, err := r.Reserve(t.Context(), inventory.Request{Quantity: 4})
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if !outcome.Accepted || outcome.Remaining != 96 {
		t.Errorf("got %+v", outcome)
	}
}

func TestRemoteReserveUpstreamBadRequest(t *testing.T) {
	r, srv := newTestRemote(t, func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(errorResponseBody{Error: "invalid_quantity", Detail: "quantity must be positive"})
	})
	defer srv.Close()

	_, err := r.Reserve(t.Context(), inventory.Request{Quantity: -1})
	if !errors.Is(err, inventory.ErrInvalidQuantity) {
		t.Errorf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestRemoteReserveUpstreamServerError(t *testing.T) {
	r, srv := newTestRemote(t, func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal","detail":"boom"}`))
	})
	defer srv.Close()

	_, err := r.Reserve(t.Context(), inventory.Request{Quantity: 1})
	if !errors.Is(err, ErrUpstreamStatus) {
		t.Errorf("expected ErrUpstreamStatus, got %v", err)
	}
}

func TestRemoteReserveMalformedResponse(t *testing.T) {
	r, srv := newTestRemote(t, func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte("not json"))
	})
	defer srv.Close()

	_, err := r.Reserve(t.Context(), inventory.Request{Quantity: 1})
	if !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestRemoteReserveDeadlineExceeded(t *testing.T) {
	r, srv := newTestRemote(t, func(w http.ResponseWriter, req *http.Request) {
		time.Sleep(500 * time.Millisecond)
	})
	defer srv.Close()

	_, err := r.Reserve(t.Context(), inventory.Request{Quantity: 1})
	if !errors.Is(err, ErrDeadlineExceeded) {
		t.Errorf("expected ErrDeadlineExceeded, got %v", err)
	}
}

func TestRemoteReserveTransportError(t *testing.T) {
	client := NewHTTPClient(TransportConfig{
		MaxConnections:       10,
		KeepaliveConnections: 5,
		RequestTimeout:       200 * time.Millisecond,
	})
	r := NewRemote("http://127.0.0.1:1", client, 3, 30*time.Second)

	_, err := r.Reserve(t.Context(), inventory.Request{Quantity: 1})
	if !errors.Is(err, ErrTransport) {
		t.Errorf("expected ErrTransport, got %v", err)
	}
}

func TestRemoteAvailableSuccess(t *testing.T) {
	r, srv := newTestRemote(t, func(w http.ResponseWriter, req *http.Request) {
		_ = json.NewEncoder(w).Encode(availableResponseBody{Qty: 42})
	})
	defer srv.Close()

	qty, err := r.Available(t.Context())
	if err != nil {
		t.Fatalf("Available: %v", err)
	}
	if qty != 42 {
		t.Errorf("got %d, want 42", qty)
	}
}

func TestRemoteCircuitOpensAfterRepeatedFailures(t *testing.T) {
	r, srv := newTestRemote(t, func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer srv.Close()

	for i := 0; i < 3; i++ {
		_, _ = r.Reserve(t.Context(), inventory.Request{Quantity: 1})
	}

	_, err := r.Reserve(t.Context(), inventory.Request{Quantity: 1})
	if !errors.Is(err, ErrTransport) {
		t.Errorf("expected circuit-open to surface as ErrTransport, got %v", err)
	}
}
