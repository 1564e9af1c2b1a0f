package catalog

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/acme/storefront/internal/domain"
)

// ProductRepository is the catalog reader plus the small admin surface.
// Products leave the catalog by being archived, never hard-deleted, so order
// history keeps a valid product reference while placement can still surface
// a product that vanished between add-item and checkout.
type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, description, unit_price, inventory, last_update
		FROM products
		WHERE NOT archived
		ORDER BY title, id
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.UnitPrice, &p.Inventory, &p.LastUpdate); err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	p := &domain.Product{}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, title, description, unit_price, inventory, last_update
		FROM products
		WHERE id = $1 AND NOT archived
	`, id).Scan(&p.ID, &p.Title, &p.Description, &p.UnitPrice, &p.Inventory, &p.LastUpdate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}

	return p, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	p.ID = uuid.New().String()
	p.LastUpdate = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (id, title, description, unit_price, inventory, archived, last_update)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6)
	`, p.ID, p.Title, p.Description, p.UnitPrice, p.Inventory, p.LastUpdate)
	return err
}

// SetPrice updates the live catalog price. Existing order items keep their
// snapshot.
func (r *ProductRepository) SetPrice(ctx context.Context, id string, price decimal.Decimal) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE products SET unit_price = $2, last_update = NOW()
		WHERE id = $1 AND NOT archived
	`, id, price)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrProductNotFound
	}

	return nil
}

// Archive removes the product from the catalog without touching carts or
// order history that reference it.
func (r *ProductRepository) Archive(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE products SET archived = TRUE, last_update = NOW()
		WHERE id = $1 AND NOT archived
	`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrProductNotFound
	}

	return nil
}
