package domain

import "errors"

// A losing participant in a cart-conversion race also gets ErrCartNotFound:
// from its perspective the cart is simply gone.
var (
	ErrCartNotFound     = errors.New("cart not found")
	ErrCartEmpty        = errors.New("cart is empty")
	ErrCustomerNotFound = errors.New("no customer profile for user")
	ErrProductNotFound  = errors.New("product not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrInvalidQuantity  = errors.New("quantity must be greater than zero")
	ErrInvalidCartID    = errors.New("cart id must be a valid UUID")
)

// NotFound reports whether err maps to a 404 on the public surface.
func NotFound(err error) bool {
	return errors.Is(err, ErrCartNotFound) ||
		errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrCartItemNotFound)
}

// Invalid reports whether err maps to a 400 on the public surface.
func Invalid(err error) bool {
	return errors.Is(err, ErrCartEmpty) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInvalidCartID)
}
