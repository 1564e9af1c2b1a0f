package cart

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/acme/storefront/internal/domain"
)

// CartRepository owns carts and their line items. All mutations of a given
// cart take the cart row lock first, so they serialize with each other and
// with the conversion transaction in the orders package.
type CartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) *CartRepository {
	return &CartRepository{db: db}
}

func (r *CartRepository) Create(ctx context.Context) (*domain.Cart, error) {
	cart := &domain.Cart{
		ID:         uuid.New().String(),
		CreatedAt:  time.Now().UTC(),
		Items:      []domain.CartItem{},
		TotalPrice: decimal.Zero,
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO carts (id, created_at)
		VALUES ($1, $2)
	`, cart.ID, cart.CreatedAt)
	if err != nil {
		return nil, err
	}

	return cart, nil
}

func (r *CartRepository) Get(ctx context.Context, cartID string) (*domain.Cart, error) {
	cart := &domain.Cart{Items: []domain.CartItem{}, TotalPrice: decimal.Zero}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, created_at
		FROM carts
		WHERE id = $1
	`, cartID).Scan(&cart.ID, &cart.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCartNotFound
		}
		return nil, err
	}

	items, err := r.listItems(ctx, r.db, cartID)
	if err != nil {
		return nil, err
	}

	cart.Items = items
	for _, item := range items {
		cart.TotalPrice = cart.TotalPrice.Add(item.TotalPrice)
	}

	return cart, nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// listItems returns the cart's lines joined with the live catalog, in a
// deterministic order. An archived product shows up with a zero price and
// keeps its line; placement is where its absence becomes an error.
func (r *CartRepository) listItems(ctx context.Context, q querier, cartID string) ([]domain.CartItem, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT ci.id, ci.product_id, ci.quantity, p.title, p.unit_price
		FROM cart_items ci
		LEFT JOIN products p ON p.id = ci.product_id AND NOT p.archived
		WHERE ci.cart_id = $1
		ORDER BY ci.product_id
	`, cartID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []domain.CartItem{}
	for rows.Next() {
		var item domain.CartItem
		var title sql.NullString
		var unitPrice decimal.NullDecimal
		if err := rows.Scan(&item.ID, &item.ProductID, &item.Quantity, &title, &unitPrice); err != nil {
			return nil, err
		}
		item.Title = title.String
		if unitPrice.Valid {
			item.UnitPrice = unitPrice.Decimal
		}
		item.TotalPrice = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

// AddItem validates the product against the live catalog and merges the
// quantity into an existing line for the same product, if any. The cart row
// lock closes the race against a concurrent conversion deleting the cart
// under our feet.
func (r *CartRepository) AddItem(ctx context.Context, cartID, productID string, quantity int) (*domain.CartItem, error) {
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

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

	item := &domain.CartItem{ProductID: productID}
	err = tx.QueryRowContext(ctx, `
		SELECT title, unit_price FROM products WHERE id = $1 AND NOT archived
	`, productID).Scan(&item.Title, &item.UnitPrice)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO cart_items (id, cart_id, product_id, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING id, quantity
	`, uuid.New().String(), cartID, productID, quantity).Scan(&item.ID, &item.Quantity)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	item.TotalPrice = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
	return item, nil
}

// SetItemQuantity replaces a line's quantity instead of merging.
func (r *CartRepository) SetItemQuantity(ctx context.Context, cartID, productID string, quantity int) error {
	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var lockedID string
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM carts WHERE id = $1 FOR UPDATE
	`, cartID).Scan(&lockedID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrCartNotFound
		}
		return err
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE cart_items SET quantity = $3
		WHERE cart_id = $1 AND product_id = $2
	`, cartID, productID, quantity)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrCartItemNotFound
	}

	return tx.Commit()
}

func (r *CartRepository) RemoveItem(ctx context.Context, cartID, productID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var lockedID string
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM carts WHERE id = $1 FOR UPDATE
	`, cartID).Scan(&lockedID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrCartNotFound
		}
		return err
	}

	result, err := tx.ExecContext(ctx, `
		DELETE FROM cart_items
		WHERE cart_id = $1 AND product_id = $2
	`, cartID, productID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrCartItemNotFound
	}

	return tx.Commit()
}

// Delete removes the cart and, by cascade, its items. The public surface
// reports an absent cart as not found; conversion deletes carts inside its
// own transaction and never calls this.
func (r *CartRepository) Delete(ctx context.Context, cartID string) error {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM carts WHERE id = $1
	`, cartID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrCartNotFound
	}

	return nil
}
