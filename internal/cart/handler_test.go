package cart

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testHandler() *Handler {
	return NewHandler(nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHandleAddItem_Validation(t *testing.T) {
	t.Run("malformed cart token is not found", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("POST /carts/{cartId}/items", testHandler().HandleAddItem)

		req := httptest.NewRequest(http.MethodPost, "/carts/not-a-uuid/items", strings.NewReader(`{"product_id":"p1","quantity":1}`))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("invalid body", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("POST /carts/{cartId}/items", testHandler().HandleAddItem)

		req := httptest.NewRequest(http.MethodPost, "/carts/8f14e45f-ceea-467f-a8d7-0d5dba6cde11/items", strings.NewReader(`{not json`))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("missing product id", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("POST /carts/{cartId}/items", testHandler().HandleAddItem)

		req := httptest.NewRequest(http.MethodPost, "/carts/8f14e45f-ceea-467f-a8d7-0d5dba6cde11/items", strings.NewReader(`{"quantity":2}`))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}

func TestHandleGet_MalformedToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /carts/{cartId}", testHandler().HandleGet)

	req := httptest.NewRequest(http.MethodGet, "/carts/zzz", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
