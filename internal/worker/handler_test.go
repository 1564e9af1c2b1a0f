package worker

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/acme/storefront/internal/domain"
)

type capture struct {
	mu       sync.Mutex
	requests []map[string]string
}

func (c *capture) record(r *http.Request) {
	var fields map[string]string
	_ = json.NewDecoder(r.Body).Decode(&fields)
	c.mu.Lock()
	c.requests = append(c.requests, fields)
	c.mu.Unlock()
}

func (c *capture) all() []map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]map[string]string, len(c.requests))
	copy(out, c.requests)
	return out
}

func eventPayload(t *testing.T, productIDs ...string) []byte {
	t.Helper()

	items := make([]domain.OrderItem, 0, len(productIDs))
	for _, id := range productIDs {
		items = append(items, domain.OrderItem{ProductID: id, Quantity: 2, UnitPrice: decimal.RequireFromString("10.00")})
	}
	payload, err := json.Marshal(domain.OrderCreatedEvent{
		OrderID:    "order-1",
		CustomerID: "cust-1",
		Items:      items,
		PlacedAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return payload
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHandle_ReservesAndConfirms(t *testing.T) {
	emails := &capture{}
	emailServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		emails.record(r)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"status":"sent"}`)
	}))
	defer emailServer.Close()

	var reserveCalls []string
	inventoryServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reserveCalls = append(reserveCalls, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"product_id":"p","available":10,"reserved":2}`)
	}))
	defer inventoryServer.Close()

	handler := NewNotificationHandler(emailServer.URL, "http://orders.unused", inventoryServer.URL, &http.Client{Timeout: time.Second}, testLogger())

	if err := handler.Handle(t.Context(), eventPayload(t, "prod-a", "prod-b")); err != nil {
		t.Fatalf("handle failed: %v", err)
	}

	if len(reserveCalls) != 2 {
		t.Fatalf("expected 2 reserve calls, got %v", reserveCalls)
	}
	if reserveCalls[0] != "/stock/prod-a/reserve" {
		t.Errorf("unexpected reserve path: %s", reserveCalls[0])
	}

	sent := emails.all()
	if len(sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(sent))
	}
	if !strings.Contains(sent[0]["subject"], "Order received") {
		t.Errorf("expected confirmation subject, got %q", sent[0]["subject"])
	}
	if !strings.Contains(sent[0]["subject"], "order-1") {
		t.Errorf("expected subject to carry order id, got %q", sent[0]["subject"])
	}
}

func TestHandle_StockShortfallReleasesAndFlagsPayment(t *testing.T) {
	emails := &capture{}
	emailServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		emails.record(r)
		_, _ = io.WriteString(w, `{"status":"sent"}`)
	}))
	defer emailServer.Close()

	var releaseCalls, reserveCalls int
	inventoryServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/release"):
			releaseCalls++
			_, _ = io.WriteString(w, `{}`)
		case strings.HasSuffix(r.URL.Path, "/reserve"):
			reserveCalls++
			if reserveCalls > 1 {
				w.WriteHeader(http.StatusConflict)
				return
			}
			_, _ = io.WriteString(w, `{}`)
		}
	}))
	defer inventoryServer.Close()

	var paymentStatus string
	ordersServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		paymentStatus = req["payment_status"]
		_, _ = io.WriteString(w, `{}`)
	}))
	defer ordersServer.Close()

	handler := NewNotificationHandler(emailServer.URL, ordersServer.URL, inventoryServer.URL, &http.Client{Timeout: time.Second}, testLogger())

	if err := handler.Handle(t.Context(), eventPayload(t, "prod-a", "prod-b")); err != nil {
		t.Fatalf("handle failed: %v", err)
	}

	if releaseCalls != 1 {
		t.Errorf("expected the first reservation to be released, got %d release calls", releaseCalls)
	}
	if paymentStatus != string(domain.PaymentStatusFailed) {
		t.Errorf("expected payment status failed, got %q", paymentStatus)
	}

	sent := emails.all()
	if len(sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(sent))
	}
	if !strings.Contains(sent[0]["subject"], "Problem") {
		t.Errorf("expected problem email, got subject %q", sent[0]["subject"])
	}
}

func TestHandle_MalformedPayload(t *testing.T) {
	handler := NewNotificationHandler("http://unused", "http://unused", "http://unused", http.DefaultClient, testLogger())

	if err := handler.Handle(t.Context(), []byte("not json")); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
