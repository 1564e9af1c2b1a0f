package inventory

import (
	"context"
	"database/sql"
	"errors"
)

// Stock tracks per-product availability. It lives outside the conversion
// transaction on purpose: placing an order never touches stock; the
// notification worker applies the reservation policy afterwards.
type Stock struct {
	ProductID string `json:"product_id"`
	Available int    `json:"available"`
	Reserved  int    `json:"reserved"`
}

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrNothingReserved   = errors.New("insufficient reserved stock to release")
)

type StockRepository struct {
	db *sql.DB
}

func NewStockRepository(db *sql.DB) *StockRepository {
	return &StockRepository{db: db}
}

func (r *StockRepository) ListAll(ctx context.Context) ([]Stock, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, available, reserved
		FROM stock
		ORDER BY product_id
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var levels []Stock
	for rows.Next() {
		var s Stock
		if err := rows.Scan(&s.ProductID, &s.Available, &s.Reserved); err != nil {
			return nil, err
		}
		levels = append(levels, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return levels, nil
}

func (r *StockRepository) Get(ctx context.Context, productID string) (*Stock, error) {
	s := &Stock{}

	err := r.db.QueryRowContext(ctx, `
		SELECT product_id, available, reserved
		FROM stock
		WHERE product_id = $1
	`, productID).Scan(&s.ProductID, &s.Available, &s.Reserved)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return s, nil
}

// Set seeds or replaces a product's stock level.
func (r *StockRepository) Set(ctx context.Context, productID string, available int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO stock (product_id, available, reserved)
		VALUES ($1, $2, 0)
		ON CONFLICT (product_id) DO UPDATE SET available = EXCLUDED.available
	`, productID, available)
	return err
}

// Reserve moves quantity from available to reserved, guarded so the counter
// never goes negative under concurrent reservations.
func (r *StockRepository) Reserve(ctx context.Context, productID string, quantity int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE stock
		SET available = available - $2, reserved = reserved + $2
		WHERE product_id = $1 AND available >= $2
	`, productID, quantity)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrInsufficientStock
	}

	return nil
}

func (r *StockRepository) Release(ctx context.Context, productID string, quantity int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE stock
		SET available = available + $2, reserved = reserved - $2
		WHERE product_id = $1 AND reserved >= $2
	`, productID, quantity)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNothingReserved
	}

	return nil
}
