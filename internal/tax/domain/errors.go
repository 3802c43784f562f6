package domain

import "errors"

var (
	ErrNotFound             = errors.New("tax_rate_not_found")
	ErrInvalidRateID        = errors.New("invalid_rate_id")
	ErrInvalidRate          = errors.New("invalid_rate")
	ErrInvalidAmount        = errors.New("invalid_amount")
	ErrDiscountExceedsPrice = errors.New("discount_exceeds_price")
)
