// Package customer maps authenticated principals to customer profiles.
// Profiles are provisioned elsewhere; this package only reads them.
package customer

import (
	"context"
	"database/sql"
	"errors"

	"github.com/acme/storefront/internal/domain"
)

type Resolver struct {
	db *sql.DB
}

func NewResolver(db *sql.DB) *Resolver {
	return &Resolver{db: db}
}

// Resolve returns the customer linked to the principal, or
// domain.ErrCustomerNotFound when no profile exists. It never creates one.
func (r *Resolver) Resolve(ctx context.Context, userID string) (*domain.Customer, error) {
	c := &domain.Customer{}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, email, membership
		FROM customers
		WHERE user_id = $1
	`, userID).Scan(&c.ID, &c.UserID, &c.Email, &c.Membership)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, err
	}

	return c, nil
}
