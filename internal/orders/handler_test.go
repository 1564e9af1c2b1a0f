package orders

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testHandler() *Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(nil, nil, nil, nil, logger)
}

func TestHandlePlace_RejectsBeforeTouchingStore(t *testing.T) {
	t.Run("missing principal", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"cart_id":"8f14e45f-ceea-467f-a8d7-0d5dba6cde11"}`))
		rec := httptest.NewRecorder()

		testHandler().HandlePlace(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("invalid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{`))
		req.Header.Set(PrincipalHeader, "user-1")
		rec := httptest.NewRecorder()

		testHandler().HandlePlace(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})
}

func TestHandleUpdatePaymentStatus_Validation(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /orders/{id}/payment-status", testHandler().HandleUpdatePaymentStatus)

	t.Run("rejects unknown status", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPatch, "/orders/o1/payment-status", strings.NewReader(`{"payment_status":"shipped"}`))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("rejects invalid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPatch, "/orders/o1/payment-status", strings.NewReader(`not json`))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})
}
