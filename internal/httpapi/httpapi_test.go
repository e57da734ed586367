package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/flmendes/ticket-system/internal/dispatch"
	"github.com/flmendes/ticket-system/internal/inventory"
	"github.com/flmendes/ticket-system/internal/stock"
	"github.com/flmendes/ticket-system/internal/vacancy"
)

func newCombinedServer(t *testing.T, initialStock int) *httptest.Server {
	t.Helper()
	cell, err := stock.New(initialStock, time.Second)
	if err != nil {
		t.Fatalf("stock.New: %v", err)
	}
	svc := inventory.New(cell)
	d := dispatch.New(vacancy.NewLocal(svc))
	return httptest.NewServer(NewCombinedRouter(svc, d, "ticket-system-test"))
}

func purchase(t *testing.T, srv *httptest.Server, qty int) (*http.Response, map[string]any) {
	t.Helper()
	body, _ := json.Marshal(reservationRequestBody{Qty: qty})
	resp, err := http.Post(srv.URL+"/api/v1/purchase", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /api/v1/purchase: %v", err)
	}
	defer resp.Body.Close()
	var parsed map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, parsed
}

func available(t *testing.T, srv *httptest.Server) int {
	t.Helper()
	resp, err := http.Get(srv.URL + "/api/v1/available")
	if err != nil {
		t.Fatalf("GET /api/v1/available: %v", err)
	}
	defer resp.Body.Close()
	var parsed availableResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return parsed.Qty
}

// Scenario 1: cold start.
func TestScenarioColdStart(t *testing.T) {
	srv := newCombinedServer(t, 100)
	defer srv.Close()

	if qty := available(t, srv); qty != 100 {
		t.Errorf("got %d, want 100", qty)
	}
}

// Scenario 2: single purchase.
func TestScenarioSinglePurchase(t *testing.T) {
	srv := newCombinedServer(t, 100)
	defer srv.Close()

	resp, body := purchase(t, srv, 1)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got status %d", resp.StatusCode)
	}
	if body["success"] != true || body["remaining"].(float64) != 99 {
		t.Errorf("got %+v", body)
	}
}

// Scenario 3: drain.
func TestScenarioDrain(t *testing.T) {
	srv := newCombinedServer(t, 100)
	defer srv.Close()

	var last map[string]any
	for i := 0; i < 100; i++ {
		_, last = purchase(t, srv, 1)
	}
	if last["remaining"].(float64) != 0 {
		t.Errorf("after 100th purchase, got %+v", last)
	}

	resp, body := purchase(t, srv, 1)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("101st purchase got status %d", resp.StatusCode)
	}
	if body["success"] != false || body["remaining"].(float64) != 0 {
		t.Errorf("101st purchase got %+v", body)
	}
}

// Scenario 4: concurrent drain.
func TestScenarioConcurrentDrain(t *testing.T) {
	srv := newCombinedServer(t, 100)
	defer srv.Close()

	var wg sync.WaitGroup
	var mu sync.Mutex
	successes, failures := 0, 0

	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, body := purchase(t, srv, 1)
			if resp.StatusCode != http.StatusOK {
				t.Errorf("unexpected status %d", resp.StatusCode)
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if body["success"] == true {
				successes++
			} else {
				if body["remaining"].(float64) != 0 {
					t.Errorf("rejected purchase has nonzero remaining: %+v", body)
				}
				failures++
			}
		}()
	}
	wg.Wait()

	if successes != 100 || failures != 100 {
		t.Errorf("got successes=%d failures=%d, want 100/100", successes, failures)
	}

	time.Sleep(1100 * time.Millisecond)
	if qty := available(t, srv); qty != 0 {
		t.Errorf("final available got %d, want 0", qty)
	}
}

// Scenario 5: invalid quantity.
func TestScenarioInvalidQuantity(t *testing.T) {
	srv := newCombinedServer(t, 100)
	defer srv.Close()

	resp, _ := purchase(t, srv, 0)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("qty=0 got status %d, want 400", resp.StatusCode)
	}

	resp, _ = purchase(t, srv, -3)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("qty=-3 got status %d, want 400", resp.StatusCode)
	}

	if qty := available(t, srv); qty != 100 {
		t.Errorf("available after invalid purchases got %d, want 100 unchanged", qty)
	}
}

// Scenario 6: upstream down in split mode.
func TestScenarioUpstreamDownInSplitMode(t *testing.T) {
	cell, err := stock.New(100, time.Second)
	if err != nil {
		t.Fatalf("stock.New: %v", err)
	}
	engineSvc := inventory.New(cell)
	engineSrv := httptest.NewServer(NewEngineRouter(engineSvc, "engine-test"))

	client := vacancy.NewHTTPClient(vacancy.TransportConfig{
		MaxConnections:       10,
		KeepaliveConnections: 5,
		RequestTimeout:       200 * time.Millisecond,
	})
	remote := vacancy.NewRemote(engineSrv.URL, client, 3, 30*time.Second)
	d := dispatch.New(remote)
	purchaseSrv := httptest.NewServer(NewPurchaseRouter(d, "purchase-test"))
	defer purchaseSrv.Close()

	resp, _ := purchase(t, purchaseSrv, 1)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("engine up: got status %d", resp.StatusCode)
	}

	engineSrv.Close()

	resp, _ = purchase(t, purchaseSrv, 1)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("engine down: got status %d, want 503", resp.StatusCode)
	}
}
