package cart

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/acme/storefront/internal/domain"
)

type Handler struct {
	repo   *CartRepository
	logger *slog.Logger
}

func NewHandler(repo *CartRepository, logger *slog.Logger) *Handler {
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	cart, err := h.repo.Create(r.Context())
	if err != nil {
		h.logger.Error("failed to create cart", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("cart created", "cart_id", cart.ID)
	h.writeJSON(w, http.StatusCreated, cart)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}

	cart, err := h.repo.Get(r.Context(), cartID)
	if err != nil {
		h.respondError(w, err, "failed to get cart", cartID)
		return
	}

	h.writeJSON(w, http.StatusOK, cart)
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ProductID == "" {
		h.writeError(w, http.StatusBadRequest, "product_id is required")
		return
	}

	item, err := h.repo.AddItem(r.Context(), cartID, req.ProductID, req.Quantity)
	if err != nil {
		h.respondError(w, err, "failed to add cart item", cartID)
		return
	}

	h.logger.Info("cart item added", "cart_id", cartID, "product_id", req.ProductID, "quantity", item.Quantity)
	h.writeJSON(w, http.StatusOK, item)
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) HandleUpdateItem(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}
	productID := r.PathValue("productId")

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.repo.SetItemQuantity(r.Context(), cartID, productID, req.Quantity); err != nil {
		h.respondError(w, err, "failed to update cart item", cartID)
		return
	}

	h.logger.Info("cart item updated", "cart_id", cartID, "product_id", productID, "quantity", req.Quantity)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}
	productID := r.PathValue("productId")

	if err := h.repo.RemoveItem(r.Context(), cartID, productID); err != nil {
		h.respondError(w, err, "failed to remove cart item", cartID)
		return
	}

	h.logger.Info("cart item removed", "cart_id", cartID, "product_id", productID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	cartID, ok := h.cartID(w, r)
	if !ok {
		return
	}

	if err := h.repo.Delete(r.Context(), cartID); err != nil {
		h.respondError(w, err, "failed to delete cart", cartID)
		return
	}

	h.logger.Info("cart deleted", "cart_id", cartID)
	w.WriteHeader(http.StatusNoContent)
}

// cartID extracts and validates the cart token from the path. A malformed
// token is reported the same way as an unknown one: not found.
func (h *Handler) cartID(w http.ResponseWriter, r *http.Request) (string, bool) {
	cartID := r.PathValue("cartId")
	if _, err := uuid.Parse(cartID); err != nil {
		h.writeError(w, http.StatusNotFound, "cart not found")
		return "", false
	}
	return cartID, true
}

func (h *Handler) respondError(w http.ResponseWriter, err error, msg, cartID string) {
	switch {
	case domain.NotFound(err):
		h.writeError(w, http.StatusNotFound, err.Error())
	case domain.Invalid(err):
		h.writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error(msg, "error", err, "cart_id", cartID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
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
