package cart

import "errors"

var (
	ErrInvalidItem     = errors.New("cart item must have an id")
	ErrInvalidQuantity = errors.New("quantity must be between 1 and 99")
	ErrInvalidPrice    = errors.New("price must not be negative")
	ErrItemNotFound    = errors.New("item not in cart")
	ErrCartLocked      = errors.New("cart is locked while checkout is processing")
	ErrEmptyCart       = errors.New("cart is empty")
)
