package orders

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/acme/storefront/internal/domain"
)

// Factory converts a cart into an order exactly once. Everything between
// resolving the customer and deleting the cart happens inside a single
// transaction: either the order exists and the cart is gone, or nothing
// changed at all.
type Factory struct {
	db       *sql.DB
	placed   metric.Int64Counter
	rejected metric.Int64Counter
}

func NewFactory(db *sql.DB) (*Factory, error) {
	meter := otel.Meter("orders")

	placed, err := meter.Int64Counter("storefront.orders.placed",
		metric.WithDescription("Carts successfully converted into orders"))
	if err != nil {
		return nil, err
	}

	rejected, err := meter.Int64Counter("storefront.orders.rejected",
		metric.WithDescription("Conversion attempts rejected before commit"))
	if err != nil {
		return nil, err
	}

	return &Factory{db: db, placed: placed, rejected: rejected}, nil
}

// PlaceOrder runs the conversion for the cart on behalf of the principal.
//
// The cart row is locked with FOR UPDATE before any check, so two racing
// calls serialize: the second one finds the cart already deleted and gets
// domain.ErrCartNotFound. Prices are read from the live catalog under the
// same lock and frozen into the order items.
func (f *Factory) PlaceOrder(ctx context.Context, userID, cartID string) (*domain.Order, error) {
	order, err := f.placeOrder(ctx, userID, cartID)
	if err != nil {
		if domain.NotFound(err) || domain.Invalid(err) {
			f.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", err.Error())))
		}
		return nil, err
	}

	f.placed.Add(ctx, 1)
	return order, nil
}

func (f *Factory) placeOrder(ctx context.Context, userID, cartID string) (*domain.Order, error) {
	if _, err := uuid.Parse(cartID); err != nil {
		return nil, domain.ErrInvalidCartID
	}

	tx, err := f.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var customerID string
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM customers WHERE user_id = $1
	`, userID).Scan(&customerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, err
	}

	// Lock first, check after: the existence of the cart is only meaningful
	// while we hold its row lock.
	var lockedID string
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM carts WHERE id = $1 FOR UPDATE
	`, cartID).Scan(&lockedID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCartNotFound
		}
		return nil, err
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT ci.product_id, ci.quantity, p.unit_price
		FROM cart_items ci
		LEFT JOIN products p ON p.id = ci.product_id AND NOT p.archived
		WHERE ci.cart_id = $1
		ORDER BY ci.product_id
	`, cartID)
	if err != nil {
		return nil, err
	}

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		var unitPrice decimal.NullDecimal
		if err := rows.Scan(&item.ProductID, &item.Quantity, &unitPrice); err != nil {
			_ = rows.Close()
			return nil, err
		}
		if !unitPrice.Valid {
			// The product left the catalog after it was added to the cart.
			// Surfaced, never silently dropped.
			_ = rows.Close()
			return nil, domain.ErrProductNotFound
		}
		item.UnitPrice = unitPrice.Decimal
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	if len(items) == 0 {
		return nil, domain.ErrCartEmpty
	}

	order := &domain.Order{
		ID:            uuid.New().String(),
		CustomerID:    customerID,
		PaymentStatus: domain.PaymentStatusPending,
		PlacedAt:      time.Now().UTC(),
		Items:         items,
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, customer_id, payment_status, placed_at)
		VALUES ($1, $2, $3, $4)
	`, order.ID, order.CustomerID, order.PaymentStatus, order.PlacedAt)
	if err != nil {
		return nil, err
	}

	for _, item := range order.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.New().String(), order.ID, item.ProductID, item.Quantity, item.UnitPrice)
		if err != nil {
			return nil, err
		}
	}

	// Cart items go with the cart via cascade. After commit the token is
	// dead for good.
	if _, err := tx.ExecContext(ctx, `DELETE FROM carts WHERE id = $1`, cartID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return order, nil
}
