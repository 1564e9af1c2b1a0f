package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/acme/storefront/internal/domain"
)

// NotificationHandler drains storefront.order.created. It applies the stock
// reservation policy and notifies the customer — both deliberately outside
// the conversion transaction, which has already committed by the time an
// event reaches us. Redelivery is expected; every step tolerates repeats.
type NotificationHandler struct {
	emailServiceURL     string
	ordersServiceURL    string
	inventoryServiceURL string
	httpClient          *http.Client
	emailBreaker        *gobreaker.CircuitBreaker[*http.Response]
	logger              *slog.Logger
}

func NewNotificationHandler(emailServiceURL, ordersServiceURL, inventoryServiceURL string, client *http.Client, logger *slog.Logger) *NotificationHandler {
	breaker := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:    "email-service",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &NotificationHandler{
		emailServiceURL:     emailServiceURL,
		ordersServiceURL:    ordersServiceURL,
		inventoryServiceURL: inventoryServiceURL,
		httpClient:          client,
		emailBreaker:        breaker,
		logger:              logger,
	}
}

type reservedLine struct {
	ProductID string
	Quantity  int
}

func (h *NotificationHandler) Handle(ctx context.Context, payload []byte) error {
	var event domain.OrderCreatedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal order created event: %w", err)
	}

	h.logger.Info("processing order created event", "order_id", event.OrderID, "customer_id", event.CustomerID)

	reserved, err := h.reserveStock(ctx, event)
	if err != nil {
		h.logger.Error("failed to reserve stock", "error", err, "order_id", event.OrderID)

		h.releaseStock(ctx, reserved)

		if err := h.setPaymentStatus(ctx, event.OrderID, domain.PaymentStatusFailed); err != nil {
			h.logger.Error("failed to mark payment failed", "error", err, "order_id", event.OrderID)
			return fmt.Errorf("mark payment failed after stock shortfall: %w", err)
		}

		if err := h.sendProblemEmail(ctx, event); err != nil {
			h.logger.Error("failed to send problem email", "error", err, "order_id", event.OrderID)
			return fmt.Errorf("send problem email: %w", err)
		}

		h.logger.Info("order flagged for stock shortfall", "order_id", event.OrderID)
		return nil
	}

	if err := h.sendConfirmationEmail(ctx, event); err != nil {
		h.logger.Error("failed to send confirmation email", "error", err, "order_id", event.OrderID)
		return fmt.Errorf("send confirmation email: %w", err)
	}

	h.logger.Info("order notification complete", "order_id", event.OrderID)
	return nil
}

func (h *NotificationHandler) reserveStock(ctx context.Context, event domain.OrderCreatedEvent) ([]reservedLine, error) {
	var reserved []reservedLine

	for _, item := range event.Items {
		body, err := json.Marshal(map[string]int{"quantity": item.Quantity})
		if err != nil {
			return reserved, fmt.Errorf("marshal reserve request: %w", err)
		}

		url := fmt.Sprintf("%s/stock/%s/reserve", h.inventoryServiceURL, item.ProductID)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return reserved, fmt.Errorf("create reserve request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := h.httpClient.Do(req)
		if err != nil {
			return reserved, fmt.Errorf("reserve stock for product %s: %w", item.ProductID, err)
		}
		_ = resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusOK:
			reserved = append(reserved, reservedLine{ProductID: item.ProductID, Quantity: item.Quantity})
		case http.StatusConflict:
			return reserved, fmt.Errorf("insufficient stock for product %s", item.ProductID)
		default:
			return reserved, fmt.Errorf("inventory service returned status %d for product %s", resp.StatusCode, item.ProductID)
		}
	}

	return reserved, nil
}

func (h *NotificationHandler) releaseStock(ctx context.Context, reserved []reservedLine) {
	for _, line := range reserved {
		body, err := json.Marshal(map[string]int{"quantity": line.Quantity})
		if err != nil {
			h.logger.Error("failed to marshal release request", "error", err, "product_id", line.ProductID)
			continue
		}

		url := fmt.Sprintf("%s/stock/%s/release", h.inventoryServiceURL, line.ProductID)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			h.logger.Error("failed to create release request", "error", err, "product_id", line.ProductID)
			continue
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := h.httpClient.Do(req)
		if err != nil {
			h.logger.Error("failed to release stock", "error", err, "product_id", line.ProductID)
			continue
		}
		_ = resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			h.logger.Error("failed to release stock", "status", resp.StatusCode, "product_id", line.ProductID)
		}
	}
}

func (h *NotificationHandler) setPaymentStatus(ctx context.Context, orderID string, status domain.PaymentStatus) error {
	body, err := json.Marshal(map[string]string{"payment_status": string(status)})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/orders/%s/payment-status", h.ordersServiceURL, orderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("orders service returned status %d", resp.StatusCode)
	}

	return nil
}

func (h *NotificationHandler) sendConfirmationEmail(ctx context.Context, event domain.OrderCreatedEvent) error {
	return h.sendEmail(ctx, map[string]string{
		"to":      event.CustomerID + "@customers.local",
		"subject": "Order received: " + event.OrderID,
		"body":    fmt.Sprintf("We received your order %s with %d items and will start preparing it.", event.OrderID, len(event.Items)),
	})
}

func (h *NotificationHandler) sendProblemEmail(ctx context.Context, event domain.OrderCreatedEvent) error {
	return h.sendEmail(ctx, map[string]string{
		"to":      event.CustomerID + "@customers.local",
		"subject": "Problem with order " + event.OrderID,
		"body":    fmt.Sprintf("Some items in your order %s are out of stock. Payment was not taken.", event.OrderID),
	})
}

// sendEmail goes through the circuit breaker so a dead email service fails
// fast instead of tying up the consumer on timeouts.
func (h *NotificationHandler) sendEmail(ctx context.Context, fields map[string]string) error {
	body, err := json.Marshal(fields)
	if err != nil {
		return err
	}

	resp, err := h.emailBreaker.Execute(func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.emailServiceURL+"/send", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := h.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("email service returned status %d", resp.StatusCode)
		}
		return resp, nil
	})
	if err != nil {
		return err
	}
	_ = resp.Body.Close()

	return nil
}
