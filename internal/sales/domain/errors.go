package domain

import "errors"

var (
	ErrNoLineItems          = errors.New("no_line_items")
	ErrInvalidQuantity      = errors.New("invalid_quantity")
	ErrInvalidPaymentMethod = errors.New("invalid_payment_method")
	ErrUnknownProduct       = errors.New("unknown_product_code")
	ErrUnknownTaxRate       = errors.New("unknown_tax_rate")
	ErrRejected             = errors.New("sale_rejected")
)
