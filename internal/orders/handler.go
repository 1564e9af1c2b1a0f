package orders

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/acme/storefront/internal/customer"
	"github.com/acme/storefront/internal/domain"
	"github.com/acme/storefront/internal/messaging"
)

// PrincipalHeader carries the authenticated user id. Authentication itself
// happens upstream; an empty header means an unauthenticated caller.
const PrincipalHeader = "X-User-ID"

const publishTimeout = 5 * time.Second

type Handler struct {
	factory  *Factory
	repo     *OrderRepository
	resolver *customer.Resolver
	producer *messaging.Producer
	logger   *slog.Logger
}

func NewHandler(factory *Factory, repo *OrderRepository, resolver *customer.Resolver, producer *messaging.Producer, logger *slog.Logger) *Handler {
	return &Handler{
		factory:  factory,
		repo:     repo,
		resolver: resolver,
		producer: producer,
		logger:   logger,
	}
}

type placeOrderRequest struct {
	CartID string `json:"cart_id"`
}

func (h *Handler) HandlePlace(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(PrincipalHeader)
	if userID == "" {
		h.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.factory.PlaceOrder(r.Context(), userID, req.CartID)
	if err != nil {
		switch {
		case domain.NotFound(err):
			h.writeError(w, http.StatusNotFound, err.Error())
		case domain.Invalid(err):
			h.writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("failed to place order", "error", err, "cart_id", req.CartID)
			h.writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.publishOrderCreated(r.Context(), order)

	h.logger.Info("order placed", "order_id", order.ID, "customer_id", order.CustomerID, "items", len(order.Items))
	h.writeJSON(w, http.StatusCreated, order)
}

// publishOrderCreated hands the event to Kafka outside the request's fate:
// a detached context, a goroutine, and a swallowed error. The order is
// committed; nothing downstream may undo it or delay the response.
func (h *Handler) publishOrderCreated(ctx context.Context, order *domain.Order) {
	if h.producer == nil {
		return
	}

	event := domain.OrderCreatedEvent{
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		Items:      order.Items,
		PlacedAt:   order.PlacedAt,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()

		if err := h.producer.Publish(ctx, event.OrderID, event); err != nil {
			h.logger.Error("failed to publish order created event", "error", err, "order_id", event.OrderID)
		}
	}()
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(PrincipalHeader)
	if userID == "" {
		h.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	cust, err := h.resolver.Resolve(r.Context(), userID)
	if err != nil {
		h.respondResolveError(w, err)
		return
	}

	order, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if domain.NotFound(err) {
			h.writeError(w, http.StatusNotFound, "order not found")
			return
		}
		h.logger.Error("failed to get order", "error", err, "order_id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	// Another customer's order is indistinguishable from a missing one.
	if order.CustomerID != cust.ID {
		h.writeError(w, http.StatusNotFound, "order not found")
		return
	}

	h.writeJSON(w, http.StatusOK, order)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(PrincipalHeader)
	if userID == "" {
		h.writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	cust, err := h.resolver.Resolve(r.Context(), userID)
	if err != nil {
		h.respondResolveError(w, err)
		return
	}

	orders, err := h.repo.ListByCustomer(r.Context(), cust.ID)
	if err != nil {
		h.logger.Error("failed to list orders", "error", err, "customer_id", cust.ID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, orders)
}

type updatePaymentStatusRequest struct {
	PaymentStatus domain.PaymentStatus `json:"payment_status"`
}

// HandleUpdatePaymentStatus serves the payment pipeline, not customers;
// it is reachable on the internal listener only.
func (h *Handler) HandleUpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	var req updatePaymentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.PaymentStatus.Valid() {
		h.writeError(w, http.StatusBadRequest, "invalid payment status")
		return
	}

	order, err := h.repo.UpdatePaymentStatus(r.Context(), id, req.PaymentStatus)
	if err != nil {
		if domain.NotFound(err) {
			h.writeError(w, http.StatusNotFound, "order not found")
			return
		}
		h.logger.Error("failed to update payment status", "error", err, "order_id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("payment status updated", "order_id", order.ID, "payment_status", order.PaymentStatus)
	h.writeJSON(w, http.StatusOK, order)
}

func (h *Handler) respondResolveError(w http.ResponseWriter, err error) {
	if domain.NotFound(err) {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	h.logger.Error("failed to resolve customer", "error", err)
	h.writeError(w, http.StatusInternalServerError, "internal server error")
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
