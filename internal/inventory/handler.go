package inventory

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

type Handler struct {
	repo   *StockRepository
	logger *slog.Logger
}

func NewHandler(repo *StockRepository, logger *slog.Logger) *Handler {
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	levels, err := h.repo.ListAll(r.Context())
	if err != nil {
		h.logger.Error("failed to list stock", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if levels == nil {
		levels = []Stock{}
	}
	h.writeJSON(w, http.StatusOK, levels)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("productId")
	if productID == "" {
		h.writeError(w, http.StatusBadRequest, "missing product id")
		return
	}

	stock, err := h.repo.Get(r.Context(), productID)
	if err != nil {
		h.logger.Error("failed to get stock", "error", err, "product_id", productID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if stock == nil {
		h.writeError(w, http.StatusNotFound, "no stock record for product")
		return
	}

	h.writeJSON(w, http.StatusOK, stock)
}

type setStockRequest struct {
	Available int `json:"available"`
}

func (h *Handler) HandleSet(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("productId")
	if productID == "" {
		h.writeError(w, http.StatusBadRequest, "missing product id")
		return
	}

	var req setStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Available < 0 {
		h.writeError(w, http.StatusBadRequest, "available must not be negative")
		return
	}

	if err := h.repo.Set(r.Context(), productID, req.Available); err != nil {
		h.logger.Error("failed to set stock", "error", err, "product_id", productID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("stock set", "product_id", productID, "available", req.Available)
	h.respondWithStock(w, r, productID)
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) HandleReserve(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("productId")
	if productID == "" {
		h.writeError(w, http.StatusBadRequest, "missing product id")
		return
	}

	var req quantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Quantity <= 0 {
		h.writeError(w, http.StatusBadRequest, "quantity must be a positive integer")
		return
	}

	if err := h.repo.Reserve(r.Context(), productID, req.Quantity); err != nil {
		if errors.Is(err, ErrInsufficientStock) {
			h.writeError(w, http.StatusConflict, "insufficient stock")
			return
		}
		h.logger.Error("failed to reserve stock", "error", err, "product_id", productID, "quantity", req.Quantity)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("stock reserved", "product_id", productID, "quantity", req.Quantity)
	h.respondWithStock(w, r, productID)
}

func (h *Handler) HandleRelease(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("productId")
	if productID == "" {
		h.writeError(w, http.StatusBadRequest, "missing product id")
		return
	}

	var req quantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Quantity <= 0 {
		h.writeError(w, http.StatusBadRequest, "quantity must be a positive integer")
		return
	}

	if err := h.repo.Release(r.Context(), productID, req.Quantity); err != nil {
		if errors.Is(err, ErrNothingReserved) {
			h.writeError(w, http.StatusConflict, "insufficient reserved stock")
			return
		}
		h.logger.Error("failed to release stock", "error", err, "product_id", productID, "quantity", req.Quantity)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("stock released", "product_id", productID, "quantity", req.Quantity)
	h.respondWithStock(w, r, productID)
}

func (h *Handler) respondWithStock(w http.ResponseWriter, r *http.Request, productID string) {
	stock, err := h.repo.Get(r.Context(), productID)
	if err != nil || stock == nil {
		h.logger.Error("failed to read back stock", "error", err, "product_id", productID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.writeJSON(w, http.StatusOK, stock)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
